package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/carevox/dictascribe/pkg/normalize"
)

// drugSynonyms standardises brand names to their generic form. Generic names
// map to themselves so a generic mention is recognised directly.
var drugSynonyms = map[string]string{
	"tylenol":       "acetaminophen",
	"acetaminophen": "acetaminophen",
	"paracetamol":   "acetaminophen",
	"advil":         "ibuprofen",
	"motrin":        "ibuprofen",
	"ibuprofen":     "ibuprofen",
	"aleve":         "naproxen",
	"naproxen":      "naproxen",
	"aspirin":       "aspirin",
	"zofran":        "ondansetron",
	"ondansetron":   "ondansetron",
	"ativan":        "lorazepam",
	"lorazepam":     "lorazepam",
	"lasix":         "furosemide",
	"furosemide":    "furosemide",
	"coumadin":      "warfarin",
	"warfarin":      "warfarin",
	"glucophage":    "metformin",
	"metformin":     "metformin",
	"lipitor":       "atorvastatin",
	"atorvastatin":  "atorvastatin",
	"norco":         "hydrocodone",
	"vicodin":       "hydrocodone",
	"hydrocodone":   "hydrocodone",
	"oxycontin":     "oxycodone",
	"oxycodone":     "oxycodone",
	"morphine":      "morphine",
	"dilaudid":      "hydromorphone",
	"hydromorphone": "hydromorphone",
	"heparin":       "heparin",
	"lovenox":       "enoxaparin",
	"enoxaparin":    "enoxaparin",
	"insulin":       "insulin",
	"protonix":      "pantoprazole",
	"pantoprazole":  "pantoprazole",
	"zosyn":         "piperacillin-tazobactam",
	"vancomycin":    "vancomycin",
	"keflex":        "cephalexin",
	"cephalexin":    "cephalexin",
	"amoxicillin":   "amoxicillin",
	"prednisone":    "prednisone",
	"albuterol":     "albuterol",
	"metoprolol":    "metoprolol",
	"lopressor":     "metoprolol",
	"lisinopril":    "lisinopril",
	"amlodipine":    "amlodipine",
	"norvasc":       "amlodipine",
}

// dosageUnits normalises spoken and abbreviated dose units.
var dosageUnits = map[string]string{
	"milligrams":  "mg",
	"milligram":   "mg",
	"mg":          "mg",
	"micrograms":  "mcg",
	"microgram":   "mcg",
	"mcg":         "mcg",
	"milliliters": "mL",
	"milliliter":  "mL",
	"mls":         "mL",
	"ml":          "mL",
	"grams":       "g",
	"gram":        "g",
	"g":           "g",
	"units":       "units",
	"unit":        "units",
}

var (
	drugVocab = buildDrugVocab()

	dosagePattern = regexp.MustCompile(
		`(?i)\b(` + num + `)\s*(milligrams?|mg|micrograms?|mcg|milliliters?|mls?|grams?|g|units?)\b`)

	// Administration time candidates, most specific first.
	clockPattern   = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	meridiemDigits = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(a\.?m\.?|p\.?m\.?)\b`)
	spokenClock    = regexp.MustCompile(`(?i)\b(` + num + `)\s+o'?\s?clock(?:\s+in the (morning|afternoon|evening))?`)
	nowPattern     = regexp.MustCompile(`(?i)\b(?:right\s+)?now\b|\bjust\s+given\b`)
)

// buildDrugVocab flattens drugSynonyms into a longest-first vocabulary.
func buildDrugVocab() []vocabEntry {
	entries := make([]vocabEntry, 0, len(drugSynonyms))
	for brand, generic := range drugSynonyms {
		entries = append(entries, vocabEntry{phrase: brand, value: generic})
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].phrase) != len(entries[j].phrase) {
			return len(entries[i].phrase) > len(entries[j].phrase)
		}
		return entries[i].phrase < entries[j].phrase
	})
	return entries
}

// medication extracts the drug name (standardised to generic), dosage with a
// normalised unit, administration route, dosing frequency, and administration
// time. Patient response is narrative and is never extracted.
func medication(transcript string) (Set, Stats) {
	set := Set{}
	var st Stats

	if generic, raw, ok := lastVocabulary(transcript, drugVocab); ok {
		set["medicationName"] = Extraction{Value: generic, Confidence: DigitConfidence, Raw: raw}
	}

	extractDosage(transcript, set, &st)

	if route, ok := normalize.Route(transcript); ok {
		set["route"] = Extraction{Value: route, Confidence: KeywordConfidence, Raw: route}
	}
	if freq, ok := normalize.Frequency(transcript); ok {
		set["frequency"] = Extraction{Value: freq, Confidence: KeywordConfidence, Raw: freq}
	}

	extractTime(transcript, set)

	return set, st
}

// extractDosage keeps the last dose mention, rendered as "<amount> <unit>".
func extractDosage(transcript string, set Set, st *Stats) {
	matches := dosagePattern.FindAllStringSubmatch(transcript, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		raw := matches[i][1]
		v, ok := normalize.TextToNumber(raw)
		if !ok || v <= 0 {
			continue
		}
		unit, ok := dosageUnits[strings.ToLower(matches[i][2])]
		if !ok {
			continue
		}
		set["dosage"] = Extraction{
			Value:      fmt.Sprintf("%s %s", formatNumber(v), unit),
			Confidence: numericConfidence(raw),
			Raw:        matches[i][0],
		}
		return
	}
}

// extractTime recognises 24-hour clock, am/pm, spoken o'clock, and "now"
// forms, in that priority order, keeping the last match of the first form
// that occurs.
func extractTime(transcript string, set Set) {
	if m := lastMatch(clockPattern, transcript); m != nil {
		set["time"] = Extraction{Value: m[1] + ":" + m[2], Confidence: DigitConfidence, Raw: m[0]}
		return
	}
	if m := lastMatch(meridiemDigits, transcript); m != nil {
		h, _ := normalize.TextToNumber(m[1])
		minutes := m[2]
		if minutes == "" {
			minutes = "00"
		}
		set["time"] = Extraction{
			Value:      fmt.Sprintf("%02d:%s", to24Hour(int(h), m[3]), minutes),
			Confidence: DigitConfidence,
			Raw:        m[0],
		}
		return
	}
	if m := lastMatch(spokenClock, transcript); m != nil {
		h, ok := normalize.TextToNumber(m[1])
		if ok && h >= 0 && h <= 23 {
			hour := int(h)
			if strings.EqualFold(m[2], "afternoon") || strings.EqualFold(m[2], "evening") {
				hour = to24Hour(hour, "pm")
			}
			set["time"] = Extraction{
				Value:      fmt.Sprintf("%02d:00", hour),
				Confidence: SpokenConfidence,
				Raw:        m[0],
			}
			return
		}
	}
	if m := lastMatch(nowPattern, transcript); m != nil {
		set["time"] = Extraction{Value: "now", Confidence: DigitConfidence, Raw: m[0]}
	}
}

// to24Hour converts an am/pm hour to 24-hour form.
func to24Hour(hour int, meridiem string) int {
	pm := strings.HasPrefix(strings.ToLower(meridiem), "p")
	switch {
	case pm && hour < 12:
		return hour + 12
	case !pm && hour == 12:
		return 0
	default:
		return hour % 24
	}
}

// lastMatch returns the submatches of the final occurrence of re in text.
func lastMatch(re *regexp.Regexp, text string) []string {
	all := re.FindAllStringSubmatch(text, -1)
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}
