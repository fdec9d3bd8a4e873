package match_test

import (
	"testing"

	"github.com/carevox/dictascribe/pkg/match"
	"github.com/carevox/dictascribe/pkg/workflow"
)

func TestFieldLabel_ExactPrimary(t *testing.T) {
	t.Parallel()

	m := match.New()
	r, ok := m.FieldLabel("Blood Pressure", workflow.VitalSigns)
	if !ok {
		t.Fatalf("FieldLabel: ok=false, want true")
	}
	if r.FieldKey != "bloodPressure" {
		t.Errorf("FieldKey = %q, want bloodPressure", r.FieldKey)
	}
	if r.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", r.Confidence)
	}
}

func TestFieldLabel_Alias(t *testing.T) {
	t.Parallel()

	m := match.New()
	r, ok := m.FieldLabel("pulse", workflow.VitalSigns)
	if !ok {
		t.Fatalf("FieldLabel: ok=false, want true")
	}
	if r.FieldKey != "heartRate" {
		t.Errorf("FieldKey = %q, want heartRate", r.FieldKey)
	}
	if r.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", r.Confidence)
	}
}

func TestFieldLabel_TermContainment(t *testing.T) {
	t.Parallel()

	m := match.New()
	r, ok := m.FieldLabel("checking the pulse ox", workflow.VitalSigns)
	if !ok {
		t.Fatalf("FieldLabel: ok=false, want true")
	}
	if r.FieldKey != "oxygenSaturation" {
		t.Errorf("FieldKey = %q, want oxygenSaturation", r.FieldKey)
	}
	if r.Confidence != 0.85 {
		t.Errorf("Confidence = %v, want 0.85", r.Confidence)
	}
}

func TestFieldLabel_MisheardRewrite(t *testing.T) {
	t.Parallel()

	// "assess meant" is normalized to "assessment" before any tier runs, so
	// it hits the primary label at full confidence.
	m := match.New()
	r, ok := m.FieldLabel("assess meant", workflow.PatientAssessment)
	if !ok {
		t.Fatalf("FieldLabel: ok=false, want true")
	}
	if r.FieldKey != "assessment" {
		t.Errorf("FieldKey = %q, want assessment", r.FieldKey)
	}
	if r.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", r.Confidence)
	}
}

func TestFieldLabel_Fuzzy(t *testing.T) {
	t.Parallel()

	m := match.New()
	r, ok := m.FieldLabel("hart rate", workflow.VitalSigns)
	if !ok {
		t.Fatalf("FieldLabel(%q): ok=false, want true", "hart rate")
	}
	if r.FieldKey != "heartRate" {
		t.Errorf("FieldKey = %q, want heartRate", r.FieldKey)
	}
	if r.Confidence < 0.7 || r.Confidence >= 1.0 {
		t.Errorf("Confidence = %v, want in [0.7, 1.0)", r.Confidence)
	}
}

func TestFieldLabel_FuzzyThreshold(t *testing.T) {
	t.Parallel()

	// At a stricter threshold the same near-miss no longer qualifies.
	m := match.New(match.WithThreshold(0.95))
	if r, ok := m.FieldLabel("hart rate", workflow.VitalSigns); ok {
		t.Errorf("FieldLabel = %+v, want no match at threshold 0.95", r)
	}
}

func TestFieldLabel_NoMatch(t *testing.T) {
	t.Parallel()

	m := match.New()
	for _, spoken := range []string{"xylophone", "", "   "} {
		if r, ok := m.FieldLabel(spoken, workflow.VitalSigns); ok {
			t.Errorf("FieldLabel(%q) = %+v, want no match", spoken, r)
		}
	}
}
