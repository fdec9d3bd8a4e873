package catalog_test

import (
	"testing"

	"github.com/carevox/dictascribe/pkg/catalog"
	"github.com/carevox/dictascribe/pkg/workflow"
)

func TestFields_EveryWorkflowHasCatalog(t *testing.T) {
	t.Parallel()

	for _, wf := range workflow.All() {
		fields := catalog.Fields(wf)
		if len(fields) == 0 {
			t.Errorf("Fields(%q) is empty", wf)
			continue
		}
		for _, f := range fields {
			if f.FieldKey == "" {
				t.Errorf("%s: field with empty key", wf)
			}
			if !f.Kind.IsValid() {
				t.Errorf("%s.%s: invalid kind %q", wf, f.FieldKey, f.Kind)
			}
			if len(f.PrimaryLabels) == 0 {
				t.Errorf("%s.%s: no primary labels", wf, f.FieldKey)
			}
		}
	}
}

func TestMapping(t *testing.T) {
	t.Parallel()

	m, ok := catalog.Mapping(workflow.VitalSigns, "heartRate")
	if !ok {
		t.Fatalf("Mapping(vital-signs, heartRate): ok=false, want true")
	}
	if m.Kind != workflow.KindNumber {
		t.Errorf("heartRate kind = %q, want %q", m.Kind, workflow.KindNumber)
	}

	if _, ok := catalog.Mapping(workflow.VitalSigns, "nope"); ok {
		t.Errorf("Mapping(vital-signs, nope): ok=true, want false")
	}
}

func TestLabelPhrases_LongestFirst(t *testing.T) {
	t.Parallel()

	phrases := catalog.LabelPhrases(workflow.VitalSigns)
	if len(phrases) == 0 {
		t.Fatalf("LabelPhrases(vital-signs) is empty")
	}
	for i := 1; i < len(phrases); i++ {
		if len(phrases[i].Phrase) > len(phrases[i-1].Phrase) {
			t.Fatalf("phrases not sorted longest-first: %q after %q", phrases[i].Phrase, phrases[i-1].Phrase)
		}
	}
}

func TestLabelPhrases_TierConfidences(t *testing.T) {
	t.Parallel()

	want := map[string]float64{
		"blood pressure": catalog.PrimaryConfidence,
		"bp":             catalog.AliasConfidence,
	}
	got := map[string]float64{}
	for _, p := range catalog.LabelPhrases(workflow.VitalSigns) {
		if _, interested := want[p.Phrase]; interested {
			got[p.Phrase] = p.Confidence
		}
	}
	for phrase, conf := range want {
		if got[phrase] != conf {
			t.Errorf("phrase %q confidence = %v, want %v", phrase, got[phrase], conf)
		}
	}
}

func TestLabelPhrases_IncludesMisheardVariants(t *testing.T) {
	t.Parallel()

	// "blood presser" is a known speech-recognition mishearing and must scan
	// directly as the blood pressure field.
	for _, p := range catalog.LabelPhrases(workflow.VitalSigns) {
		if p.Phrase == "blood presser" {
			if p.FieldKey != "bloodPressure" {
				t.Errorf("blood presser bound to %q, want bloodPressure", p.FieldKey)
			}
			if p.Confidence != catalog.TermConfidence {
				t.Errorf("blood presser confidence = %v, want %v", p.Confidence, catalog.TermConfidence)
			}
			return
		}
	}
	t.Fatalf("misheard variant %q missing from vital-signs phrases", "blood presser")
}
