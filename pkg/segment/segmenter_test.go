package segment_test

import (
	"strings"
	"testing"

	"github.com/carevox/dictascribe/pkg/segment"
	"github.com/carevox/dictascribe/pkg/workflow"
)

// segmentByField indexes a result's segments by field key.
func segmentByField(res segment.Result) map[string]segment.Segment {
	out := make(map[string]segment.Segment, len(res.Segments))
	for _, s := range res.Segments {
		out[s.FieldKey] = s
	}
	return out
}

func TestScan_SlicesContentBetweenLabels(t *testing.T) {
	t.Parallel()

	res := segment.Scan("blood pressure 120 over 80 heart rate 72", workflow.VitalSigns)
	if len(res.Warnings) != 0 {
		t.Fatalf("Warnings = %v, want none", res.Warnings)
	}
	segs := segmentByField(res)

	bp, ok := segs["bloodPressure"]
	if !ok {
		t.Fatalf("no bloodPressure segment, got %+v", res.Segments)
	}
	if bp.Content != "120 over 80" {
		t.Errorf("bloodPressure content = %q, want %q", bp.Content, "120 over 80")
	}
	if bp.Confidence != 1.0 {
		t.Errorf("bloodPressure confidence = %v, want 1.0", bp.Confidence)
	}

	hr, ok := segs["heartRate"]
	if !ok {
		t.Fatalf("no heartRate segment, got %+v", res.Segments)
	}
	if hr.Content != "72" {
		t.Errorf("heartRate content = %q, want %q", hr.Content, "72")
	}
}

func TestScan_LongestPhraseClaimsSpanFirst(t *testing.T) {
	t.Parallel()

	// "pulse rate" must claim its span before the shorter alias "pulse" can
	// re-match inside it and eat "rate 72" as content.
	res := segment.Scan("pulse rate 72", workflow.VitalSigns)
	if len(res.Segments) != 1 {
		t.Fatalf("Segments = %+v, want exactly one", res.Segments)
	}
	got := res.Segments[0]
	if got.FieldKey != "heartRate" {
		t.Errorf("FieldKey = %q, want heartRate", got.FieldKey)
	}
	if got.Content != "72" {
		t.Errorf("Content = %q, want %q", got.Content, "72")
	}
	if got.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9 (alias)", got.Confidence)
	}
}

func TestScan_LastMentionWins(t *testing.T) {
	t.Parallel()

	res := segment.Scan("pain level 7 actually pain level 5", workflow.VitalSigns)
	segs := segmentByField(res)

	pain, ok := segs["painLevel"]
	if !ok {
		t.Fatalf("no painLevel segment, got %+v", res.Segments)
	}
	if pain.Content != "5" {
		t.Errorf("painLevel content = %q, want %q (last mention)", pain.Content, "5")
	}

	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "painLevel") && strings.Contains(w, "again") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want a duplicate-mention warning for painLevel", res.Warnings)
	}
}

func TestScan_LabelWithoutContent(t *testing.T) {
	t.Parallel()

	res := segment.Scan("heart rate", workflow.VitalSigns)
	if len(res.Segments) != 0 {
		t.Errorf("Segments = %+v, want none", res.Segments)
	}
	if res.Unmatched != "" {
		t.Errorf("Unmatched = %q, want empty (a label was found)", res.Unmatched)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "no content") {
		t.Errorf("Warnings = %v, want one no-content warning", res.Warnings)
	}
}

func TestScan_NoLabels(t *testing.T) {
	t.Parallel()

	res := segment.Scan("patient resting comfortably", workflow.VitalSigns)
	if len(res.Segments) != 0 {
		t.Errorf("Segments = %+v, want none", res.Segments)
	}
	if res.Unmatched != "patient resting comfortably" {
		t.Errorf("Unmatched = %q, want the whole transcript", res.Unmatched)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("Warnings = %v, want exactly one", res.Warnings)
	}
}

func TestScan_EmptyTranscript(t *testing.T) {
	t.Parallel()

	res := segment.Scan("   ", workflow.VitalSigns)
	if len(res.Segments) != 0 || res.Unmatched != "" || len(res.Warnings) != 0 {
		t.Errorf("Scan(blank) = %+v, want zero result", res)
	}
}

func TestScan_HandoffNarrative(t *testing.T) {
	t.Parallel()

	transcript := "situation patient admitted for chest pain background hypertensive longstanding " +
		"assessment vitals stable pain controlled recommendation continue telemetry monitoring"
	res := segment.Scan(transcript, workflow.ShiftHandoff)
	segs := segmentByField(res)

	want := map[string]string{
		"situation":      "patient admitted for chest pain",
		"background":     "hypertensive longstanding",
		"assessment":     "vitals stable pain controlled",
		"recommendation": "continue telemetry monitoring",
	}
	for key, content := range want {
		got, ok := segs[key]
		if !ok {
			t.Errorf("no %s segment, got %+v", key, res.Segments)
			continue
		}
		if got.Content != content {
			t.Errorf("%s content = %q, want %q", key, got.Content, content)
		}
	}
}

func TestScan_MisheardLabelForm(t *testing.T) {
	t.Parallel()

	// The raw transcript still contains the mishearing; the scan phrase set
	// carries it as a variant of the intended field.
	res := segment.Scan("blood presser 130 over 85", workflow.VitalSigns)
	segs := segmentByField(res)

	bp, ok := segs["bloodPressure"]
	if !ok {
		t.Fatalf("no bloodPressure segment, got %+v", res.Segments)
	}
	if bp.Content != "130 over 85" {
		t.Errorf("content = %q, want %q", bp.Content, "130 over 85")
	}
	if bp.Confidence != 0.85 {
		t.Errorf("confidence = %v, want 0.85", bp.Confidence)
	}
}

func TestScan_LabelInsideWordDoesNotMatch(t *testing.T) {
	t.Parallel()

	// "pulsed" must not match the alias "pulse".
	res := segment.Scan("lavage pulsed irrigation used", workflow.VitalSigns)
	if len(res.Segments) != 0 {
		t.Errorf("Segments = %+v, want none (no word-boundary match)", res.Segments)
	}
}
