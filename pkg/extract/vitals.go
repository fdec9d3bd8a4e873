package extract

import (
	"regexp"
	"strconv"

	"github.com/carevox/dictascribe/pkg/normalize"
)

// Compiled candidate patterns for the vital-signs family. Within each slice
// the most specific pattern comes first; the first pattern that yields a
// range-valid match wins, taking its last such match.
var (
	num = normalize.NumberPattern()

	bpPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:blood pressure|bp)(?:\s+(?:is|was|of|reading))?\s+(` + num + `)\s+over\s+(` + num + `)`),
		regexp.MustCompile(`\b(\d{2,3})\s*/\s*(\d{2,3})\b`),
		regexp.MustCompile(`(?i)\b(` + num + `)\s+over\s+(` + num + `)\b`),
	}

	heartRatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:heart rate|pulse rate|pulse|hr)(?:\s+(?:is|was|of))?\s+(` + num + `)`),
	}

	temperaturePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:temperature|temp)(?:\s+(?:is|was|of))?\s+(` + num + `)`),
	}

	respiratoryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:respiratory rate|respirations|resp rate|rr)(?:\s+(?:is|was|of))?\s+(` + num + `)`),
	}

	oxygenPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:oxygen saturation|oxygen sat|o2 sat|sats|sat|pulse ox|spo2)(?:\s+(?:is|was|of))?\s+(` + num + `)\s*(?:percent|%)?`),
	}

	painPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bpain(?:\s+(?:level|score|scale))?(?:\s+(?:is|was|of|at))?\s+(` + num + `)(?:\s+(?:out of|over)\s+(?:ten|10))?`),
	}
)

// vitals extracts blood pressure, heart rate, temperature, respiratory rate,
// oxygen saturation, and pain level.
func vitals(transcript string) (Set, Stats) {
	set := Set{}
	var st Stats

	extractBloodPressure(transcript, set, &st)
	extractNumeric(transcript, "heartRate", heartRatePatterns, set, &st)
	extractNumeric(transcript, "temperature", temperaturePatterns, set, &st)
	extractNumeric(transcript, "respiratoryRate", respiratoryPatterns, set, &st)
	extractNumeric(transcript, "oxygenSaturation", oxygenPatterns, set, &st)
	extractNumeric(transcript, "painLevel", painPatterns, set, &st)

	return set, st
}

// extractNumeric applies the candidate patterns for field in order and keeps
// the last range-valid match of the first pattern that produces one.
func extractNumeric(transcript, field string, patterns []*regexp.Regexp, set Set, st *Stats) {
	for _, re := range patterns {
		matches := re.FindAllStringSubmatch(transcript, -1)
		for i := len(matches) - 1; i >= 0; i-- {
			raw := matches[i][1]
			v, ok := normalize.TextToNumber(raw)
			if !ok {
				continue
			}
			if !InRange(field, v) {
				st.RangeRejections++
				continue
			}
			set[field] = Extraction{Value: v, Confidence: numericConfidence(raw), Raw: raw}
			return
		}
	}
}

// extractBloodPressure handles the paired systolic/diastolic reading. A match
// is only accepted when both halves are range-valid; the composite
// bloodPressure field carries the conventional "120/80" rendering.
func extractBloodPressure(transcript string, set Set, st *Stats) {
	for _, re := range bpPatterns {
		matches := re.FindAllStringSubmatch(transcript, -1)
		for i := len(matches) - 1; i >= 0; i-- {
			rawSys, rawDia := matches[i][1], matches[i][2]
			sys, okS := normalize.TextToNumber(rawSys)
			dia, okD := normalize.TextToNumber(rawDia)
			if !okS || !okD {
				continue
			}
			if !InRange("systolic", sys) || !InRange("diastolic", dia) {
				st.RangeRejections++
				continue
			}
			conf := numericConfidence(rawSys)
			if c := numericConfidence(rawDia); c < conf {
				conf = c
			}
			raw := matches[i][0]
			set["systolic"] = Extraction{Value: sys, Confidence: conf, Raw: raw}
			set["diastolic"] = Extraction{Value: dia, Confidence: conf, Raw: raw}
			set["bloodPressure"] = Extraction{
				Value:      formatNumber(sys) + "/" + formatNumber(dia),
				Confidence: conf,
				Raw:        raw,
			}
			return
		}
	}
}

// formatNumber renders a float without a trailing ".0" for whole values.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
