package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// locVocab recognises level-of-consciousness descriptors, longest phrase
// first so "alert and oriented" claims its span before bare "alert".
var locVocab = []vocabEntry{
	{phrase: "alert and oriented", value: "alert and oriented"},
	{phrase: "unresponsive", value: "unresponsive"},
	{phrase: "stuporous", value: "stuporous"},
	{phrase: "lethargic", value: "lethargic"},
	{phrase: "obtunded", value: "obtunded"},
	{phrase: "comatose", value: "comatose"},
	{phrase: "confused", value: "confused"},
	{phrase: "sedated", value: "sedated"},
	{phrase: "drowsy", value: "drowsy"},
	{phrase: "alert", value: "alert"},
}

var (
	orientedTimes = regexp.MustCompile(`(?i)\boriented\s*(?:x|times)\s*([1-4]|one|two|three|four)\b`)
	orientedTo    = regexp.MustCompile(`(?i)\boriented(?:\s+to)?\b`)
)

// orientationFactors are the explicit factors counted after an "oriented"
// mention: "oriented to person, place, and time" yields "x3".
var orientationFactors = []*regexp.Regexp{
	regexp.MustCompile(`\bperson\b`),
	regexp.MustCompile(`\bplace\b`),
	regexp.MustCompile(`\btime\b`),
	regexp.MustCompile(`\bsituation\b`),
}

// spokenCounts maps spoken multiplier words for the "oriented times three" form.
var spokenCounts = map[string]int{"one": 1, "two": 2, "three": 3, "four": 4}

// assessment extracts level of consciousness and orientation.
func assessment(transcript string) (Set, Stats) {
	set := Set{}
	var st Stats

	if loc, raw, ok := lastVocabulary(transcript, locVocab); ok {
		set["levelOfConsciousness"] = Extraction{Value: loc, Confidence: KeywordConfidence, Raw: raw}
	}
	if o, raw, ok := extractOrientation(transcript); ok {
		set["orientation"] = Extraction{Value: o, Confidence: KeywordConfidence, Raw: raw}
	}

	return set, st
}

// extractOrientation recognises either the explicit multiplier form
// ("oriented x3", "oriented times three") or counts named factors after the
// last "oriented" mention.
func extractOrientation(transcript string) (string, string, bool) {
	if m := lastMatch(orientedTimes, transcript); m != nil {
		n := spokenCounts[strings.ToLower(m[1])]
		if n == 0 {
			n = int(m[1][0] - '0')
		}
		return fmt.Sprintf("x%d", n), m[0], true
	}

	locs := orientedTo.FindAllStringIndex(transcript, -1)
	if len(locs) == 0 {
		return "", "", false
	}
	last := locs[len(locs)-1]

	// Count distinct factors in the window following the mention.
	window := transcript[last[1]:]
	if len(window) > 60 {
		window = window[:60]
	}
	lower := strings.ToLower(window)
	n := 0
	for _, f := range orientationFactors {
		if f.MatchString(lower) {
			n++
		}
	}
	if n == 0 {
		return "", "", false
	}
	return fmt.Sprintf("x%d", n), strings.TrimSpace(transcript[last[0]:last[1]] + strings.TrimRight(window, " ")), true
}
