package janitor

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"mediagrab/internal/filestore"
	"mediagrab/internal/store"
)

// Janitor evicts terminal jobs and their files after the retention window.
// A job is only removed once it has been terminal for the full TTL, which
// gives polling clients time to observe the outcome and fetch the file.
type Janitor struct {
	cron  *cron.Cron
	jobs  *store.JobStore
	files *filestore.Store
	ttl   time.Duration
}

func New(jobs *store.JobStore, files *filestore.Store, ttl time.Duration, schedule string) (*Janitor, error) {
	j := &Janitor{
		cron:  cron.New(),
		jobs:  jobs,
		files: files,
		ttl:   ttl,
	}
	if _, err := j.cron.AddFunc(schedule, j.Sweep); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return j, nil
}

func (j *Janitor) Start() {
	j.cron.Start()
	log.Infof("Janitor started (retention %s)", j.ttl)
}

func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

// Sweep removes terminal jobs older than the retention window together with
// their downloaded files. Non-terminal jobs are never touched.
func (j *Janitor) Sweep() {
	cutoff := time.Now().UTC().Add(-j.ttl)
	removed := j.jobs.DeleteTerminalBefore(cutoff)
	for _, job := range removed {
		if job.FileID == "" {
			continue
		}
		if err := j.files.Remove(job.FileID); err != nil {
			log.Warnf("Janitor: removing file %s for job %s: %v", job.FileID, job.ID, err)
		}
	}
	if len(removed) > 0 {
		log.Infof("Janitor: evicted %d terminal job(s)", len(removed))
	}
}
