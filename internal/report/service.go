// internal/report/service.go
package report

import (
	"context"
	"time"

	apperrors "sentinel-assessment/internal/common/errors"
	"sentinel-assessment/internal/common/logger"
	"sentinel-assessment/internal/common/metrics"
	"sentinel-assessment/internal/common/observability"
)

// Service renders reports, consulting an optional cache first. Cache
// failures are logged and never fail the request.
type Service struct {
	renderer *Renderer
	cache    Cache
	obs      *observability.Observability
	logger   logger.Logger
}

func NewService(renderer *Renderer, cache Cache, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{
		renderer: renderer,
		cache:    cache,
		obs:      obs,
		logger:   log,
	}
}

// Generate returns the PDF bytes for rep.
func (s *Service) Generate(ctx context.Context, rep Report) ([]byte, error) {
	start := time.Now()
	key := CacheKey(rep, s.renderer.Fingerprint())

	if s.cache != nil {
		data, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("Report cache read failed", map[string]interface{}{
				"error": apperrors.NewCacheUnavailableError(err).Details,
			})
		case ok:
			s.record(ctx, "cached", start)
			return data, nil
		}
	}

	data, err := s.renderer.Render(rep)
	if err != nil {
		s.record(ctx, "failed", start)
		stdErr := apperrors.Normalize(err)
		s.logger.Error("Report rendering failed", map[string]interface{}{
			"tier":      string(rep.Tier),
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
		return nil, err
	}
	s.record(ctx, "rendered", start)

	if s.cache != nil {
		if err := s.cache.Put(ctx, key, data); err != nil {
			s.logger.Warn("Report cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	s.logger.Debug("Report rendered", map[string]interface{}{
		"tier":  string(rep.Tier),
		"bytes": len(data),
	})
	return data, nil
}

func (s *Service) record(ctx context.Context, status string, start time.Time) {
	elapsed := time.Since(start)
	metrics.ReportsRendered.WithLabelValues(status).Inc()
	metrics.ReportRenderDuration.WithLabelValues(status).Observe(elapsed.Seconds())
	s.obs.RecordReportDuration(ctx, elapsed, status)
}
