package observe_test

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/carevox/dictascribe/internal/observe"
)

func TestNewMetrics(t *testing.T) {
	t.Parallel()

	m, err := observe.NewMetrics(sdkmetric.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	if m.ParseDuration == nil {
		t.Errorf("ParseDuration is nil")
	}
	if m.SegmentsDetected == nil {
		t.Errorf("SegmentsDetected is nil")
	}
	if m.FieldsExtracted == nil {
		t.Errorf("FieldsExtracted is nil")
	}
	if m.FieldsUpdated == nil {
		t.Errorf("FieldsUpdated is nil")
	}
	if m.RangeRejections == nil {
		t.Errorf("RangeRejections is nil")
	}
	if m.ReviewFlags == nil {
		t.Errorf("ReviewFlags is nil")
	}
	if m.ActiveSessions == nil {
		t.Errorf("ActiveSessions is nil")
	}

	// Instruments must be usable without a configured exporter.
	ctx := context.Background()
	m.ParseDuration.Record(ctx, 0.001)
	m.SegmentsDetected.Add(ctx, 1)
	m.ActiveSessions.Add(ctx, 1)
	m.ActiveSessions.Add(ctx, -1)
}

func TestDefault_ReturnsSameInstance(t *testing.T) {
	t.Parallel()

	a := observe.Default()
	b := observe.Default()
	if a != b {
		t.Errorf("Default() returned different instances")
	}
}

func TestInitProvider(t *testing.T) {
	shutdown, err := observe.InitProvider(context.Background(), observe.ProviderConfig{
		ServiceName:    "dictascribe-test",
		ServiceVersion: "test",
	})
	if err != nil {
		t.Fatalf("InitProvider: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}
