package extract

import (
	"fmt"
	"regexp"

	"github.com/carevox/dictascribe/pkg/normalize"
)

// siteVocab recognises anatomical wound locations, longest phrase first so
// "left heel" wins over "heel".
var siteVocab = []vocabEntry{
	{phrase: "left lower extremity", value: "left lower extremity"},
	{phrase: "right lower extremity", value: "right lower extremity"},
	{phrase: "left buttock", value: "left buttock"},
	{phrase: "right buttock", value: "right buttock"},
	{phrase: "left forearm", value: "left forearm"},
	{phrase: "right forearm", value: "right forearm"},
	{phrase: "lower back", value: "lower back"},
	{phrase: "left heel", value: "left heel"},
	{phrase: "right heel", value: "right heel"},
	{phrase: "left hip", value: "left hip"},
	{phrase: "right hip", value: "right hip"},
	{phrase: "abdomen", value: "abdomen"},
	{phrase: "shoulder", value: "shoulder"},
	{phrase: "buttock", value: "buttock"},
	{phrase: "sacrum", value: "sacrum"},
	{phrase: "coccyx", value: "coccyx"},
	{phrase: "ankle", value: "ankle"},
	{phrase: "elbow", value: "elbow"},
	{phrase: "thigh", value: "thigh"},
	{phrase: "heel", value: "heel"},
	{phrase: "calf", value: "calf"},
	{phrase: "foot", value: "foot"},
	{phrase: "knee", value: "knee"},
}

// appearanceVocab recognises wound-bed descriptors.
var appearanceVocab = []vocabEntry{
	{phrase: "granulation tissue", value: "granulating"},
	{phrase: "epithelializing", value: "epithelializing"},
	{phrase: "granulating", value: "granulating"},
	{phrase: "macerated", value: "macerated"},
	{phrase: "necrotic", value: "necrotic"},
	{phrase: "beefy red", value: "granulating"},
	{phrase: "slough", value: "slough"},
	{phrase: "eschar", value: "eschar"},
}

// drainageVocab recognises drainage types. "no drainage" and "dry" collapse
// to "none".
var drainageVocab = []vocabEntry{
	{phrase: "serosanguineous", value: "serosanguineous"},
	{phrase: "no drainage", value: "none"},
	{phrase: "sanguineous", value: "sanguineous"},
	{phrase: "purulent", value: "purulent"},
	{phrase: "serous", value: "serous"},
	{phrase: "dry", value: "none"},
}

var sizePattern = regexp.MustCompile(
	`(?i)\b(` + num + `)\s*(?:by|x)\s*(` + num + `)\s*(?:centimeters?|centimetres?|cm)?\b`)

// wound extracts location, size, wound-bed appearance, drainage type, and
// pain level.
func wound(transcript string) (Set, Stats) {
	set := Set{}
	var st Stats

	if site, raw, ok := lastVocabulary(transcript, siteVocab); ok {
		set["woundLocation"] = Extraction{Value: site, Confidence: KeywordConfidence, Raw: raw}
	}
	extractWoundSize(transcript, set)
	if app, raw, ok := lastVocabulary(transcript, appearanceVocab); ok {
		set["woundAppearance"] = Extraction{Value: app, Confidence: KeywordConfidence, Raw: raw}
	}
	if d, raw, ok := lastVocabulary(transcript, drainageVocab); ok {
		set["drainage"] = Extraction{Value: d, Confidence: KeywordConfidence, Raw: raw}
	}
	extractNumeric(transcript, "painLevel", painPatterns, set, &st)

	return set, st
}

// extractWoundSize keeps the last length-by-width mention, rendered in
// centimeters.
func extractWoundSize(transcript string, set Set) {
	matches := sizePattern.FindAllStringSubmatch(transcript, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		l, okL := normalize.TextToNumber(matches[i][1])
		w, okW := normalize.TextToNumber(matches[i][2])
		if !okL || !okW || l <= 0 || w <= 0 {
			continue
		}
		conf := numericConfidence(matches[i][1])
		if c := numericConfidence(matches[i][2]); c < conf {
			conf = c
		}
		set["woundSize"] = Extraction{
			Value:      fmt.Sprintf("%sx%s cm", formatNumber(l), formatNumber(w)),
			Confidence: conf,
			Raw:        matches[i][0],
		}
		return
	}
}
