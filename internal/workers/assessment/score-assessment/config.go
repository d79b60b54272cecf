// internal/workers/assessment/score-assessment/config.go
package scoreassessment

import (
	"time"

	"sentinel-assessment/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	MaxJobsActive int
	// RecordOutcomes writes the total and tier to the audit table when a
	// recorder is available.
	RecordOutcomes bool
}

func LoadConfig(wc config.WorkerConfig) *Config {
	timeout := config.GetDuration(wc.Timeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxJobs := wc.MaxJobsActive
	if maxJobs <= 0 {
		maxJobs = 5
	}
	return &Config{
		Timeout:        timeout,
		MaxJobsActive:  maxJobs,
		RecordOutcomes: true,
	}
}
