// Package observe provides application-wide observability primitives for
// dictascribe: OpenTelemetry metrics and tracing for the transcript parse
// pipeline.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([Default]) is provided for convenience; tests should
// use [NewMetrics] with a custom [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/carevox/dictascribe"

// Metrics holds all OpenTelemetry metric instruments for the parse pipeline.
// All fields are safe for concurrent use.
type Metrics struct {
	// ParseDuration tracks the latency of one full transcript pass.
	// Use with attribute.String("workflow", ...).
	ParseDuration metric.Float64Histogram

	// SegmentsDetected counts field segments produced per pass.
	SegmentsDetected metric.Int64Counter

	// FieldsExtracted counts typed domain extractions per pass.
	FieldsExtracted metric.Int64Counter

	// FieldsUpdated counts form-field updates emitted to callers.
	FieldsUpdated metric.Int64Counter

	// RangeRejections counts numeric matches dropped for falling outside
	// their physiological validation range. Out-of-range values are still
	// rejected silently; this counter is how operators see them.
	RangeRejections metric.Int64Counter

	// ReviewFlags counts fields flagged for manual review.
	ReviewFlags metric.Int64Counter

	// ActiveSessions tracks the number of open documentation sessions.
	ActiveSessions metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) for the
// in-memory parse pass; everything is string work, so the scale is small.
var latencyBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ParseDuration, err = m.Float64Histogram("dictascribe.parse.duration",
		metric.WithDescription("Latency of one full transcript parse pass."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SegmentsDetected, err = m.Int64Counter("dictascribe.segments.detected",
		metric.WithDescription("Field segments produced by the segmenter."),
	); err != nil {
		return nil, err
	}
	if met.FieldsExtracted, err = m.Int64Counter("dictascribe.extract.fields",
		metric.WithDescription("Typed values recognised by domain extractors."),
	); err != nil {
		return nil, err
	}
	if met.FieldsUpdated, err = m.Int64Counter("dictascribe.merge.updates",
		metric.WithDescription("Form-field updates emitted by the merge policy."),
	); err != nil {
		return nil, err
	}
	if met.RangeRejections, err = m.Int64Counter("dictascribe.extract.range_rejections",
		metric.WithDescription("Numeric matches rejected for being out of physiological range."),
	); err != nil {
		return nil, err
	}
	if met.ReviewFlags, err = m.Int64Counter("dictascribe.merge.review_flags",
		metric.WithDescription("Fields flagged for manual review."),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("dictascribe.sessions.active",
		metric.WithDescription("Open documentation sessions."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// Default returns the process-wide [Metrics] instance backed by the global
// OTel meter provider. Instruments are created on first use.
func Default() *Metrics {
	defaultMetricsOnce.Do(func() {
		m, err := NewMetrics(otel.GetMeterProvider())
		if err != nil {
			// Instrument creation only fails on invalid names, which is a
			// programming error.
			panic(err)
		}
		defaultMetrics = m
	})
	return defaultMetrics
}
