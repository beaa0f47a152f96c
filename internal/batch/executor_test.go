package batch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediagrab/internal/models"
	"mediagrab/internal/orchestrator"
)

type fakeSubmitter struct {
	calls  []orchestrator.SubmitRequest
	reject map[string]error
}

func (f *fakeSubmitter) Submit(req orchestrator.SubmitRequest) (string, error) {
	f.calls = append(f.calls, req)
	if err, ok := f.reject[req.Reference]; ok {
		return "", err
	}
	return fmt.Sprintf("job-%d", len(f.calls)), nil
}

func TestExecuteSubmitsEveryIntention(t *testing.T) {
	sub := &fakeSubmitter{}
	exec := NewExecutor(sub)

	results := exec.Execute([]models.Intention{
		{Query: "lofi beats", Platform: models.PlatformYouTube, Format: "mp3", Quality: "320k"},
		{Query: "", URL: "https://youtu.be/abc", Platform: models.PlatformYouTube, Format: "mp4", Quality: "720p"},
	})

	require.Len(t, results, 2)
	assert.Equal(t, "job-1", results[0].JobID)
	assert.Equal(t, "job-2", results[1].JobID)
	assert.Empty(t, results[0].Err)

	// The URL wins over the query as the submitted reference.
	require.Len(t, sub.calls, 2)
	assert.Equal(t, "lofi beats", sub.calls[0].Reference)
	assert.Equal(t, "https://youtu.be/abc", sub.calls[1].Reference)
}

func TestExecuteIsolatesFailures(t *testing.T) {
	sub := &fakeSubmitter{reject: map[string]error{
		"bad": fmt.Errorf("%w: no extractor for platform %q", models.ErrValidation, "soundcloud"),
	}}
	exec := NewExecutor(sub)

	results := exec.Execute([]models.Intention{
		{Query: "good one", Platform: models.PlatformYouTube},
		{Query: "bad", Platform: "soundcloud"},
		{Query: "also good", Platform: models.PlatformYouTube},
	})

	require.Len(t, results, 3, "a rejected item must not abort the batch")
	assert.NotEmpty(t, results[0].JobID)
	assert.Empty(t, results[1].JobID)
	assert.Contains(t, results[1].Err, "no extractor")
	assert.NotEmpty(t, results[2].JobID, "items after a failure are still submitted")

	// Results come back in submission order.
	assert.Equal(t, "good one", results[0].Query)
	assert.Equal(t, "bad", results[1].Query)
	assert.Equal(t, "also good", results[2].Query)
}

func TestExecuteEmptyBatch(t *testing.T) {
	exec := NewExecutor(&fakeSubmitter{})
	results := exec.Execute(nil)
	assert.Empty(t, results)
	assert.NotNil(t, results)
}
