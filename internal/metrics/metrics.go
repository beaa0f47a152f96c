package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Orchestrator counters, registered once on the default registry and scraped
// via GET /metrics.
var (
	JobsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediagrab_jobs_submitted_total",
		Help: "Number of download jobs accepted, by platform.",
	}, []string{"platform"})

	JobsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediagrab_jobs_completed_total",
		Help: "Number of download jobs that reached completed, by platform.",
	}, []string{"platform"})

	JobsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediagrab_jobs_failed_total",
		Help: "Number of download jobs that reached error, by platform.",
	}, []string{"platform"})

	JobsProcessing = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mediagrab_jobs_processing",
		Help: "Number of jobs currently holding a download slot.",
	})
)
