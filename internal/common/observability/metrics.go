// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability owns the OpenTelemetry meter provider. A zero value is
// valid and records nothing.
type Observability struct {
	meterProvider     *metric.MeterProvider
	meter             otelmetric.Meter
	assessmentCounter otelmetric.Int64Counter
	reportDuration    otelmetric.Float64Histogram
	jobCounter        otelmetric.Int64Counter
	jobDuration       otelmetric.Float64Histogram
}

// New creates the meter provider backed by the prometheus exporter.
// Exporter options (for example a dedicated registerer) are passed through.
func New(serviceName string, opts ...prometheus.Option) *Observability {
	exporter, err := prometheus.New(opts...)
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	assessmentCounter, _ := meter.Int64Counter(
		"assessments.scored",
		otelmetric.WithDescription("Number of questionnaires scored"),
	)

	reportDuration, _ := meter.Float64Histogram(
		"reports.duration",
		otelmetric.WithDescription("Report generation duration"),
		otelmetric.WithUnit("ms"),
	)

	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)

	jobDuration, _ := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:     provider,
		meter:             meter,
		assessmentCounter: assessmentCounter,
		reportDuration:    reportDuration,
		jobCounter:        jobCounter,
		jobDuration:       jobDuration,
	}
}

func (o *Observability) RecordAssessment(ctx context.Context, channel, tier string) {
	if o == nil || o.assessmentCounter == nil {
		return
	}
	o.assessmentCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("tier", tier),
	))
}

func (o *Observability) RecordReportDuration(ctx context.Context, duration time.Duration, status string) {
	if o == nil || o.reportDuration == nil {
		return
	}
	o.reportDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("status", status),
	))
}

func (o *Observability) RecordJobProcessed(ctx context.Context, status string) {
	if o == nil || o.jobCounter == nil {
		return
	}
	o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("status", status),
	))
}

func (o *Observability) RecordJobDuration(ctx context.Context, duration time.Duration, status string) {
	if o == nil || o.jobDuration == nil {
		return
	}
	o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("status", status),
	))
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.meterProvider.Shutdown(ctx); err != nil {
		log.Printf("Failed to shut down meter provider: %v", err)
	}
}
