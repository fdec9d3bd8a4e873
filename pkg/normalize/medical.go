package normalize

import (
	"regexp"
	"sort"
	"strings"
)

// abbreviations maps spoken/lowercased medical shorthand to its standard
// written form. Applied by [MedicalTerms] with word boundaries, longest
// key first.
var abbreviations = map[string]string{
	"po":            "PO",
	"p o":           "PO",
	"bid":           "BID",
	"b i d":         "BID",
	"tid":           "TID",
	"t i d":         "TID",
	"qid":           "QID",
	"q i d":         "QID",
	"prn":           "PRN",
	"p r n":         "PRN",
	"iv":            "IV",
	"i v":           "IV",
	"im":            "IM",
	"i m":           "IM",
	"subq":          "SubQ",
	"sub q":         "SubQ",
	"sublingual":    "SL",
	"stat":          "STAT",
	"npo":           "NPO",
	"milligrams":    "mg",
	"milligram":     "mg",
	"micrograms":    "mcg",
	"microgram":     "mcg",
	"milliliters":   "mL",
	"milliliter":    "mL",
	"blood sugar":   "blood glucose",
	"sats":          "SpO2",
	"o2 sat":        "SpO2",
	"oxygen sat":    "SpO2",
	"twice a day":   "BID",
	"twice daily":   "BID",
	"three times a day":  "TID",
	"three times daily":  "TID",
	"four times a day":   "QID",
	"four times daily":   "QID",
	"as needed":          "PRN",
	"by mouth":           "PO",
	"every four hours":   "q4h",
	"every six hours":    "q6h",
	"every eight hours":  "q8h",
	"every twelve hours": "q12h",
}

// routes maps spoken route phrases to the canonical administration route.
// Keys are matched with word boundaries, longest key first, so "by mouth"
// wins over a later bare "mouth".
var routes = map[string]string{
	"by mouth":        "PO",
	"orally":          "PO",
	"oral":            "PO",
	"po":              "PO",
	"intravenous":     "IV",
	"intravenously":   "IV",
	"iv push":         "IV",
	"iv":              "IV",
	"intramuscular":   "IM",
	"intramuscularly": "IM",
	"im":              "IM",
	"subcutaneous":    "SubQ",
	"subcutaneously":  "SubQ",
	"sub q":           "SubQ",
	"subq":            "SubQ",
	"sublingual":      "SL",
	"under the tongue": "SL",
	"topical":         "topical",
	"topically":       "topical",
	"inhaled":         "inhaled",
	"inhalation":      "inhaled",
	"nebulizer":       "inhaled",
	"rectal":          "PR",
	"rectally":        "PR",
	"transdermal":     "transdermal",
	"patch":           "transdermal",
}

// frequencies maps spoken dosing frequency phrases to standard notation.
var frequencies = map[string]string{
	"once a day":          "daily",
	"once daily":          "daily",
	"daily":               "daily",
	"every day":           "daily",
	"twice a day":         "BID",
	"twice daily":         "BID",
	"two times a day":     "BID",
	"three times a day":   "TID",
	"three times daily":   "TID",
	"four times a day":    "QID",
	"four times daily":    "QID",
	"every four hours":    "q4h",
	"every six hours":     "q6h",
	"every eight hours":   "q8h",
	"every twelve hours":  "q12h",
	"at bedtime":          "qHS",
	"as needed":           "PRN",
	"when needed":         "PRN",
}

// misrecognitions maps common speech-recognition mishearings of field labels
// to the phrase the speaker intended. Applied before label matching and when
// building the segmenter's scan phrase set.
var misrecognitions = map[string]string{
	"assess meant":    "assessment",
	"assess ment":     "assessment",
	"citation":        "situation",
	"sit uation":      "situation",
	"blood pleasure":  "blood pressure",
	"blood presser":   "blood pressure",
	"hard rate":       "heart rate",
	"heart grate":     "heart rate",
	"temp richer":     "temperature",
	"oxygen sad":      "oxygen sat",
	"oxygen set":      "oxygen sat",
	"wound sight":     "wound site",
	"pane level":      "pain level",
	"back ground":     "background",
	"recommend ation": "recommendation",
	"medi cation":     "medication",
	"aller gees":      "allergies",
	"allergy's":       "allergies",
}

// replacement is one compiled longest-match substitution rule.
type replacement struct {
	re   *regexp.Regexp
	with string
}

var (
	abbrevRules   = compileRules(abbreviations)
	misheardRules = compileRules(misrecognitions)
)

// compileRules turns a substitution map into word-boundary regex rules,
// ordered longest key first so specific phrases win over their substrings.
func compileRules(table map[string]string) []replacement {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	rules := make([]replacement, 0, len(keys))
	for _, k := range keys {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(k) + `\b`)
		rules = append(rules, replacement{re: re, with: table[k]})
	}
	return rules
}

// MedicalTerms rewrites recognised medical shorthand in text to its standard
// form ("po" to "PO", "twice a day" to "BID"). Matching is case-insensitive
// with word boundaries; longer phrases are substituted before shorter ones.
func MedicalTerms(text string) string {
	for _, r := range abbrevRules {
		text = r.re.ReplaceAllString(text, r.with)
	}
	return text
}

// Route returns the canonical administration route named anywhere in text,
// preferring the last mention. The second return value is false when no
// route keyword occurs.
func Route(text string) (string, bool) {
	return lastKeyword(text, routes)
}

// Frequency returns the standard notation for the last dosing frequency
// phrase in text, or false when none occurs.
func Frequency(text string) (string, bool) {
	return lastKeyword(text, frequencies)
}

// lastKeyword finds the table key whose final word-bounded occurrence in text
// is rightmost and returns its mapped value. Longer keys claim their span
// first so "by mouth" is not shadowed by an overlapping shorter key.
func lastKeyword(text string, table map[string]string) (string, bool) {
	lower := strings.ToLower(text)

	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	bestPos := -1
	var bestVal string
	claimed := make([]bool, len(lower))
	for _, k := range keys {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`)
		for _, loc := range re.FindAllStringIndex(lower, -1) {
			if claimed[loc[0]] {
				continue
			}
			for i := loc[0]; i < loc[1]; i++ {
				claimed[i] = true
			}
			if loc[0] > bestPos {
				bestPos = loc[0]
				bestVal = table[k]
			}
		}
	}
	if bestPos < 0 {
		return "", false
	}
	return bestVal, true
}

// punctStripper removes everything except letters, digits, and whitespace.
var punctStripper = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// Label canonicalises a spoken field label for matching: lowercase, strip
// punctuation, collapse runs of whitespace, and undo known speech-recognition
// mishearings ("assess meant" becomes "assessment").
func Label(s string) string {
	s = strings.ToLower(s)
	s = punctStripper.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	for _, r := range misheardRules {
		s = r.re.ReplaceAllString(s, r.with)
	}
	return s
}

// Misrecognitions returns a copy of the mishearing table. The segmenter uses
// it to scan for misheard label forms directly in running transcript text.
func Misrecognitions() map[string]string {
	out := make(map[string]string, len(misrecognitions))
	for k, v := range misrecognitions {
		out[k] = v
	}
	return out
}
