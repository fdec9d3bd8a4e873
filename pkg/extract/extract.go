// Package extract recognises typed clinical values in a raw transcript,
// independent of explicit field labels. One extractor family exists per
// documentation domain (vital signs, medication administration, patient
// assessment, wound care); free-text workflows carry no extractors at all.
//
// Every family runs ordered candidate patterns against the entire current
// transcript and keeps the last range-valid match per field, because users
// correct themselves mid-dictation and intend the latest mention to win.
// Pattern ordering is correctness-relevant: more specific patterns are listed
// first and must stay first.
//
// Extractors never fail. A missing pattern match or an out-of-range value
// simply leaves the field unset; out-of-range rejections are counted in
// [Stats] so callers can observe them.
package extract

import (
	"regexp"
	"strings"

	"github.com/carevox/dictascribe/pkg/workflow"
)

// Extraction is one typed value recognised in the transcript.
type Extraction struct {
	// Value is the extracted value: float64 for numeric fields, string for
	// enumerated and formatted values.
	Value any

	// Confidence is the extractor's confidence in the value (0..1).
	Confidence float64

	// Raw is the transcript text the value was derived from.
	Raw string
}

// Set maps field keys to their extracted values.
type Set map[string]Extraction

// Stats carries per-pass extraction counters.
type Stats struct {
	// RangeRejections counts numeric matches discarded for falling outside
	// the physiological validation range.
	RangeRejections int
}

// Extractor confidence levels. Direct digit matches score highest; spoken
// number words and vocabulary hits score slightly lower.
const (
	DigitConfidence   = 0.90
	SpokenConfidence  = 0.85
	KeywordConfidence = 0.85
)

// Range is an inclusive physiological validation range.
type Range struct {
	Min, Max float64
}

// Ranges holds the validation range per numeric field. Matches outside the
// range are rejected silently and the extractor continues with the next
// candidate.
var Ranges = map[string]Range{
	"systolic":         {Min: 70, Max: 250},
	"diastolic":        {Min: 40, Max: 150},
	"heartRate":        {Min: 30, Max: 250},
	"temperature":      {Min: 95, Max: 107},
	"respiratoryRate":  {Min: 8, Max: 60},
	"oxygenSaturation": {Min: 70, Max: 100},
	"painLevel":        {Min: 0, Max: 10},
}

// InRange reports whether v is valid for field. Fields without a declared
// range accept any value.
func InRange(field string, v float64) bool {
	r, ok := Ranges[field]
	if !ok {
		return true
	}
	return v >= r.Min && v <= r.Max
}

// ForWorkflow runs the extractor family for t over transcript. Workflows
// without a domain extractor family (SBAR handoff, admission, discharge,
// general notes) return an empty set: their fields are narrative and are only
// ever filled from explicit labels.
func ForWorkflow(t workflow.Type, transcript string) (Set, Stats) {
	switch t {
	case workflow.VitalSigns:
		return vitals(transcript)
	case workflow.MedicationAdministration:
		return medication(transcript)
	case workflow.PatientAssessment:
		return assessment(transcript)
	case workflow.WoundCare:
		return wound(transcript)
	case workflow.ShiftHandoff, workflow.Admission, workflow.Discharge, workflow.GeneralNote:
		return Set{}, Stats{}
	}
	return Set{}, Stats{}
}

// NumericConfidence scores a captured number: plain digit literals score
// [DigitConfidence], spoken number words score [SpokenConfidence].
func NumericConfidence(raw string) float64 {
	return numericConfidence(raw)
}

// numericConfidence scores a captured number: plain digits beat spoken words.
func numericConfidence(raw string) float64 {
	for _, r := range raw {
		if (r < '0' || r > '9') && r != '.' {
			return SpokenConfidence
		}
	}
	return DigitConfidence
}

// vocabEntry binds a spoken phrase to its canonical value.
type vocabEntry struct {
	phrase string
	value  string
}

// lastVocabulary finds the rightmost word-bounded occurrence of any entry
// phrase in text. Entries must be ordered longest phrase first; a claimed
// span blocks shorter phrases from re-matching inside it.
func lastVocabulary(text string, entries []vocabEntry) (value, raw string, ok bool) {
	lower := strings.ToLower(text)
	claimed := make([]bool, len(lower))

	bestPos := -1
	for _, e := range entries {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(e.phrase) + `\b`)
		for _, loc := range re.FindAllStringIndex(lower, -1) {
			if overlapsClaim(claimed, loc[0], loc[1]) {
				continue
			}
			for i := loc[0]; i < loc[1]; i++ {
				claimed[i] = true
			}
			if loc[0] > bestPos {
				bestPos = loc[0]
				value = e.value
				raw = text[loc[0]:loc[1]]
			}
		}
	}
	if bestPos < 0 {
		return "", "", false
	}
	return value, raw, true
}

func overlapsClaim(claimed []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if claimed[i] {
			return true
		}
	}
	return false
}
