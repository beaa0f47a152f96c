package batch

import (
	log "github.com/sirupsen/logrus"

	"mediagrab/internal/models"
	"mediagrab/internal/orchestrator"
)

// Submitter is the slice of the orchestrator the executor uses.
type Submitter interface {
	Submit(req orchestrator.SubmitRequest) (string, error)
}

// ItemResult is the per-intention outcome: a pollable job id or an inline
// failure. A batch never produces an aggregate error that discards jobs
// already started.
type ItemResult struct {
	Query string `json:"query"`
	JobID string `json:"task_id,omitempty"`
	Err   string `json:"error,omitempty"`
}

// Executor fans a list of intentions out into individual jobs, isolating
// failures per item. Submission is sequential and in order; the underlying
// jobs still run concurrently and complete in any order, so callers correlate
// by job id, not by position.
type Executor struct {
	submitter Submitter
}

func NewExecutor(submitter Submitter) *Executor {
	return &Executor{submitter: submitter}
}

// Execute submits one job per intention. Jobs already started are never
// rolled back because a later intention failed to start.
func (e *Executor) Execute(intentions []models.Intention) []ItemResult {
	results := make([]ItemResult, 0, len(intentions))
	for _, in := range intentions {
		result := ItemResult{Query: in.Query}
		jobID, err := e.submitter.Submit(orchestrator.SubmitRequest{
			Platform:  in.Platform,
			Reference: in.Reference(),
			Format:    in.Format,
			Quality:   in.Quality,
		})
		if err != nil {
			result.Err = err.Error()
			log.Warnf("Batch item %q rejected: %v", in.Query, err)
		} else {
			result.JobID = jobID
		}
		results = append(results, result)
	}
	return results
}
