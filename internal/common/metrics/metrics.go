// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssessmentsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessments_scored_total",
			Help: "Total number of questionnaires scored, by risk tier and channel",
		},
		[]string{"tier", "channel"},
	)

	ReportsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_rendered_total",
			Help: "Total number of PDF reports produced, by outcome",
		},
		[]string{"status"}, // rendered, cached, failed
	)

	ReportRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "report_render_duration_seconds",
			Help:    "Duration of PDF report rendering in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"status"},
	)

	UploadsPreviewed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uploads_previewed_total",
			Help: "Total number of uploaded files previewed, by outcome",
		},
		[]string{"status"},
	)

	RequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "request_errors_total",
			Help: "User-visible request errors by error code",
		},
		[]string{"code"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)
