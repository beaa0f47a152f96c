package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediagrab/internal/models"
)

func newJob(id string) *models.Job {
	return &models.Job{
		ID:        id,
		Platform:  models.PlatformYouTube,
		Reference: "https://youtu.be/abc123",
		Format:    "mp3",
		Quality:   "320k",
	}
}

func TestCreateAndGet(t *testing.T) {
	s := NewJobStore()
	require.NoError(t, s.Create(newJob("j1")))

	job, err := s.Get("j1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Equal(t, 0, job.Progress)
	assert.False(t, job.CreatedAt.IsZero())

	// Reads are idempotent: two gets with no intervening write are identical.
	again, err := s.Get("j1")
	require.NoError(t, err)
	assert.Equal(t, job, again)
}

func TestGetUnknownID(t *testing.T) {
	s := NewJobStore()
	_, err := s.Get("nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateDuplicate(t *testing.T) {
	s := NewJobStore()
	require.NoError(t, s.Create(newJob("j1")))
	assert.ErrorIs(t, s.Create(newJob("j1")), ErrDuplicate)
}

func TestSnapshotIsolation(t *testing.T) {
	s := NewJobStore()
	require.NoError(t, s.Create(newJob("j1")))

	snap, err := s.Get("j1")
	require.NoError(t, err)
	snap.Status = models.JobStatusCompleted // mutating the copy

	stored, err := s.Get("j1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, stored.Status)
}

func TestTransitionOrdering(t *testing.T) {
	s := NewJobStore()
	require.NoError(t, s.Create(newJob("j1")))

	require.NoError(t, s.SetProcessing("j1", "working"))

	// SetProcessing is exactly-once.
	assert.ErrorIs(t, s.SetProcessing("j1", "again"), ErrConflict)

	require.NoError(t, s.Complete("j1", "f1", "song.mp3"))
	job, err := s.Get("j1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Equal(t, "f1", job.FileID)
	assert.Equal(t, "song.mp3", job.Filename)
	assert.Empty(t, job.ErrorDetail)
	assert.Equal(t, 100, job.Progress)
}

func TestProgressRequiresProcessing(t *testing.T) {
	s := NewJobStore()
	require.NoError(t, s.Create(newJob("j1")))
	assert.ErrorIs(t, s.SetProgress("j1", 10, ""), ErrConflict)
}

func TestProgressMonotonic(t *testing.T) {
	s := NewJobStore()
	require.NoError(t, s.Create(newJob("j1")))
	require.NoError(t, s.SetProcessing("j1", ""))

	require.NoError(t, s.SetProgress("j1", 40, ""))
	require.NoError(t, s.SetProgress("j1", 20, "")) // late report, ignored
	require.NoError(t, s.SetProgress("j1", 250, "")) // clamped

	job, err := s.Get("j1")
	require.NoError(t, err)
	assert.Equal(t, 100, job.Progress)
}

func TestTerminalIsImmutable(t *testing.T) {
	s := NewJobStore()
	require.NoError(t, s.Create(newJob("j1")))
	require.NoError(t, s.SetProcessing("j1", ""))
	require.NoError(t, s.Fail("j1", "source unavailable"))

	assert.ErrorIs(t, s.SetProgress("j1", 50, ""), ErrTerminal)
	assert.ErrorIs(t, s.Complete("j1", "f1", "x.mp3"), ErrTerminal)
	assert.ErrorIs(t, s.Fail("j1", "again"), ErrTerminal)

	job, err := s.Get("j1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusError, job.Status)
	assert.Equal(t, "source unavailable", job.ErrorDetail)
	assert.Empty(t, job.FileID)
}

func TestDeleteTerminalBefore(t *testing.T) {
	s := NewJobStore()
	require.NoError(t, s.Create(newJob("done")))
	require.NoError(t, s.SetProcessing("done", ""))
	require.NoError(t, s.Complete("done", "f1", "a.mp3"))
	require.NoError(t, s.Create(newJob("pending")))

	removed := s.DeleteTerminalBefore(time.Now().UTC().Add(time.Second))
	require.Len(t, removed, 1)
	assert.Equal(t, "done", removed[0].ID)

	// The pending job is never evicted, however old.
	_, err := s.Get("pending")
	assert.NoError(t, err)
	_, err = s.Get("done")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindByFileID(t *testing.T) {
	s := NewJobStore()
	require.NoError(t, s.Create(newJob("j1")))
	require.NoError(t, s.SetProcessing("j1", ""))
	require.NoError(t, s.Complete("j1", "file-1", "a.mp3"))

	job, ok := s.FindByFileID("file-1")
	require.True(t, ok)
	assert.Equal(t, "j1", job.ID)

	_, ok = s.FindByFileID("missing")
	assert.False(t, ok)
}
