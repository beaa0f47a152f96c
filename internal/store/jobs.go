package store

import (
	"sort"
	"sync"
	"time"

	"mediagrab/internal/models"
)

// JobStore is the in-memory index of jobs, shared by the HTTP surface and the
// orchestrator workers. Each job past pending has exactly one writer (the
// worker executing it), so the lock only guards the index and snapshot reads.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*models.Job)}
}

// Create inserts a newly allocated job. The job must be pending.
func (s *JobStore) Create(job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return ErrDuplicate
	}
	now := time.Now().UTC()
	job.Status = models.JobStatusPending
	job.CreatedAt = now
	job.UpdatedAt = now
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

// Get returns a snapshot of the job. Safe to call concurrently with an
// in-flight execution; the caller never observes a partially applied update.
func (s *JobStore) Get(id string) (models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return models.Job{}, ErrNotFound
	}
	return *job, nil
}

// List returns snapshots of all jobs, newest first.
func (s *JobStore) List() []models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// update applies fn to the stored job under the lock. Terminal jobs are
// immutable; any attempt to touch one is rejected.
func (s *JobStore) update(id string, fn func(*models.Job) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Terminal() {
		return ErrTerminal
	}
	if err := fn(job); err != nil {
		return err
	}
	job.UpdatedAt = time.Now().UTC()
	return nil
}

// SetProcessing moves a pending job to processing. Exactly-once: a job that
// already left pending is rejected with ErrConflict.
func (s *JobStore) SetProcessing(id, message string) error {
	return s.update(id, func(job *models.Job) error {
		if job.Status != models.JobStatusPending {
			return ErrConflict
		}
		job.Status = models.JobStatusProcessing
		job.Message = message
		return nil
	})
}

// SetProgress records adapter-reported progress. Progress is clamped to
// 0-100 and never moves backwards while processing.
func (s *JobStore) SetProgress(id string, progress int, message string) error {
	return s.update(id, func(job *models.Job) error {
		if job.Status != models.JobStatusProcessing {
			return ErrConflict
		}
		if progress > 100 {
			progress = 100
		}
		if progress > job.Progress {
			job.Progress = progress
		}
		if message != "" {
			job.Message = message
		}
		return nil
	})
}

// Complete moves the job to its completed terminal state with the result pair.
func (s *JobStore) Complete(id, fileID, filename string) error {
	return s.update(id, func(job *models.Job) error {
		job.Status = models.JobStatusCompleted
		job.Progress = 100
		job.Message = "Download completed"
		job.FileID = fileID
		job.Filename = filename
		return nil
	})
}

// Fail moves the job to its error terminal state with a human-readable detail.
func (s *JobStore) Fail(id, detail string) error {
	return s.update(id, func(job *models.Job) error {
		job.Status = models.JobStatusError
		job.Message = "Download failed"
		job.ErrorDetail = detail
		return nil
	})
}

// FindByFileID returns the job owning the given file identifier, if any.
func (s *JobStore) FindByFileID(fileID string) (models.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, job := range s.jobs {
		if job.FileID != "" && job.FileID == fileID {
			return *job, true
		}
	}
	return models.Job{}, false
}

// DeleteTerminalBefore evicts terminal jobs last updated before the cutoff
// and returns the removed snapshots so the caller can clean up their files.
// Non-terminal jobs are never evicted.
func (s *JobStore) DeleteTerminalBefore(cutoff time.Time) []models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []models.Job
	for id, job := range s.jobs {
		if job.Terminal() && job.UpdatedAt.Before(cutoff) {
			removed = append(removed, *job)
			delete(s.jobs, id)
		}
	}
	return removed
}
