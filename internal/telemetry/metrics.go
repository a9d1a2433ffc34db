// Package telemetry provides OpenTelemetry metrics for reconciliation passes.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetricsMeterName is the name used for the reconciliation meter.
const SyncMetricsMeterName = "course-enrol-sync/sync"

// SyncMetrics holds the instruments recorded by the engine.
// A nil *SyncMetrics is valid and records nothing.
type SyncMetrics struct {
	passDuration   metric.Float64Histogram
	coursesCreated metric.Int64Counter
	coursesUpdated metric.Int64Counter
	enrolments     metric.Int64Counter
	notFound       metric.Int64Counter
}

// NewSyncMetrics creates the instruments on the given provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	passDuration, err := meter.Float64Histogram(
		"enrolsync_pass_duration_seconds",
		metric.WithDescription("Duration of reconciliation passes in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, err
	}
	coursesCreated, err := meter.Int64Counter(
		"enrolsync_courses_created_total",
		metric.WithDescription("Courses created from the feed"),
		metric.WithUnit("{course}"),
	)
	if err != nil {
		return nil, err
	}
	coursesUpdated, err := meter.Int64Counter(
		"enrolsync_courses_updated_total",
		metric.WithDescription("Existing courses whose enrolment was reconciled"),
		metric.WithUnit("{course}"),
	)
	if err != nil {
		return nil, err
	}
	enrolments, err := meter.Int64Counter(
		"enrolsync_enrolments_total",
		metric.WithDescription("Enrolments created"),
		metric.WithUnit("{enrolment}"),
	)
	if err != nil {
		return nil, err
	}
	notFound, err := meter.Int64Counter(
		"enrolsync_users_not_found_total",
		metric.WithDescription("Distinct participants that did not resolve to a user"),
		metric.WithUnit("{user}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		passDuration:   passDuration,
		coursesCreated: coursesCreated,
		coursesUpdated: coursesUpdated,
		enrolments:     enrolments,
		notFound:       notFound,
	}, nil
}

// PassCounts is what a finished pass contributes to the counters.
type PassCounts struct {
	CoursesCreated int
	CoursesUpdated int
	Enrolments     int
	NotFound       int
}

// RecordPass records the duration and counts of one pass for the named feed source.
func (m *SyncMetrics) RecordPass(ctx context.Context, source string, duration time.Duration, success bool, c PassCounts) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("source", source))

	if m.passDuration != nil {
		m.passDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
			attribute.String("source", source),
			attribute.Bool("success", success),
		))
	}
	if m.coursesCreated != nil {
		m.coursesCreated.Add(ctx, int64(c.CoursesCreated), attrs)
	}
	if m.coursesUpdated != nil {
		m.coursesUpdated.Add(ctx, int64(c.CoursesUpdated), attrs)
	}
	if m.enrolments != nil {
		m.enrolments.Add(ctx, int64(c.Enrolments), attrs)
	}
	if m.notFound != nil {
		m.notFound.Add(ctx, int64(c.NotFound), attrs)
	}
}
