package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"mediagrab/internal/extractor"
	"mediagrab/internal/filestore"
	"mediagrab/internal/metrics"
	"mediagrab/internal/models"
	"mediagrab/internal/store"
)

const (
	defaultFormat  = "mp3"
	defaultQuality = "320k"
)

// SubmitRequest carries the parameters of one download submission.
type SubmitRequest struct {
	Platform  models.Platform
	Reference string
	Format    string
	Quality   string
}

// Orchestrator owns the job lifecycle: it validates submissions, allocates
// jobs, and drives each one through its platform's extractor on a worker
// goroutine. A buffered-channel semaphore caps how many jobs hold processing
// at once; jobs beyond the cap stay pending until a slot frees.
type Orchestrator struct {
	jobs       *store.JobStore
	files      *filestore.Store
	extractors *extractor.Registry
	slots      chan struct{}
	timeout    time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(jobs *store.JobStore, files *filestore.Store, extractors *extractor.Registry, concurrency int, timeout time.Duration) *Orchestrator {
	if concurrency <= 0 {
		concurrency = 3
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		jobs:       jobs,
		files:      files,
		extractors: extractors,
		slots:      make(chan struct{}, concurrency),
		timeout:    timeout,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Submit validates the request, allocates a pending job and schedules its
// execution. It returns the job id immediately; it never waits on the
// extractor. A validation failure creates no job.
func (o *Orchestrator) Submit(req SubmitRequest) (string, error) {
	if req.Reference == "" {
		return "", fmt.Errorf("%w: reference must not be empty", models.ErrValidation)
	}
	ext, ok := o.extractors.Get(req.Platform)
	if !ok {
		return "", fmt.Errorf("%w: no extractor for platform %q", models.ErrValidation, req.Platform)
	}
	if req.Format == "" {
		req.Format = defaultFormat
	}
	if req.Quality == "" {
		req.Quality = defaultQuality
	}
	if !models.SupportedFormat(req.Platform, req.Format) {
		return "", fmt.Errorf("%w: platform %s cannot produce format %q", models.ErrValidation, req.Platform, req.Format)
	}

	job := &models.Job{
		ID:        uuid.NewString(),
		Platform:  req.Platform,
		Reference: req.Reference,
		Format:    req.Format,
		Quality:   req.Quality,
		Message:   "Waiting for a free download slot",
	}
	if err := o.jobs.Create(job); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	metrics.JobsSubmitted.WithLabelValues(string(req.Platform)).Inc()
	log.Infof("Job %s submitted: platform=%s format=%s", job.ID, req.Platform, req.Format)

	o.wg.Add(1)
	go o.run(job.ID, req, ext)
	return job.ID, nil
}

// Status returns a read-only snapshot of the job.
func (o *Orchestrator) Status(id string) (models.Job, error) {
	return o.jobs.Get(id)
}

// run executes a single job. It is the job's only writer once the slot is
// acquired, and it releases the slot on every exit path.
func (o *Orchestrator) run(id string, req SubmitRequest, ext extractor.Extractor) {
	defer o.wg.Done()

	select {
	case o.slots <- struct{}{}:
	case <-o.ctx.Done():
		o.fail(id, req.Platform, "orchestrator shut down before the download started")
		return
	}
	metrics.JobsProcessing.Inc()
	defer func() {
		<-o.slots
		metrics.JobsProcessing.Dec()
	}()

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Job %s: panic during execution: %v", id, r)
			o.fail(id, req.Platform, fmt.Sprintf("internal fault: %v", r))
		}
	}()

	if err := o.jobs.SetProcessing(id, fmt.Sprintf("Downloading from %s...", req.Platform)); err != nil {
		log.Errorf("Job %s: cannot move to processing: %v", id, err)
		return
	}

	ctx, cancel := context.WithTimeout(o.ctx, o.timeout)
	defer cancel()

	result, err := ext.Fetch(ctx, extractor.Request{
		Reference: req.Reference,
		Format:    req.Format,
		Quality:   req.Quality,
	}, func(pct int) {
		// Best effort; a late callback after the terminal transition is dropped.
		_ = o.jobs.SetProgress(id, pct, "")
	})
	if err != nil {
		detail := err.Error()
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			detail = fmt.Sprintf("timed out: download exceeded %s", o.timeout)
		case errors.Is(err, context.Canceled):
			detail = "cancelled: orchestrator shut down during the download"
		}
		o.fail(id, req.Platform, detail)
		return
	}

	fileID := o.files.Register(result.Path, result.Filename)
	if err := o.jobs.Complete(id, fileID, result.Filename); err != nil {
		log.Errorf("Job %s: cannot record completion: %v", id, err)
		return
	}
	metrics.JobsCompleted.WithLabelValues(string(req.Platform)).Inc()
	log.Infof("Job %s completed: %s", id, result.Filename)
}

func (o *Orchestrator) fail(id string, platform models.Platform, detail string) {
	if err := o.jobs.Fail(id, detail); err != nil {
		log.Errorf("Job %s: cannot record failure: %v", id, err)
		return
	}
	metrics.JobsFailed.WithLabelValues(string(platform)).Inc()
	log.Warnf("Job %s failed: %s", id, detail)
}

// Shutdown stops accepting work from running executions and waits for the
// workers to finish recording their terminal states, so no job is left
// processing forever. It returns the context's error if the wait times out.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.cancel()
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
