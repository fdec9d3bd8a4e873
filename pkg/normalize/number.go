// Package normalize converts spoken clinical language into canonical form:
// number words into digits, medical abbreviations into their standard
// casing, and common speech-recognition mishearings into the phrase the
// speaker intended.
//
// Everything in this package is a pure function over static tables. There is
// no I/O and no state, so all functions are safe for concurrent use.
package normalize

import (
	"strconv"
	"strings"
)

// wordValues maps spoken number words to their numeric value.
// "oh" is included because STT engines commonly emit it for a spoken zero
// ("one oh five" for 105 is handled by the juxtaposition rule below).
var wordValues = map[string]float64{
	"zero": 0, "oh": 0,
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// numberWordAlt is the regex alternation of every token [TextToNumber]
// understands. Kept in sync with wordValues plus the scale and decimal words.
const numberWordAlt = `(?:zero|oh|one|two|three|four|five|six|seven|eight|nine|ten|` +
	`eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen|` +
	`twenty|thirty|forty|fifty|sixty|seventy|eighty|ninety|hundred|thousand|point)`

// NumberPattern returns an uncompiled, non-capturing regex fragment that
// matches either a digit literal ("98.6") or a run of spoken number words
// ("ninety eight point six"). Extractor patterns embed it and pass the
// captured span to [TextToNumber].
func NumberPattern() string {
	return `(?:\d+(?:\.\d+)?|` + numberWordAlt + `(?:[\s-]+` + numberWordAlt + `)*)`
}

// TextToNumber converts text to a numeric value. It accepts digit literals
// ("72", "98.6"), compound number words ("one twenty" is 120, "three hundred"
// is 300) and spoken decimals ("ninety eight point six" is 98.6, each word
// after "point" contributing one decimal place).
//
// Leading non-numeric tokens are skipped; parsing stops at the first
// non-numeric token after a number has started. The second return value is
// false when no numeric token is recognised at all.
func TextToNumber(text string) (float64, bool) {
	text = strings.ToLower(strings.ReplaceAll(text, "-", " "))
	tokens := strings.Fields(text)

	var total, current float64
	found := false
	i := 0

scan:
	for ; i < len(tokens); i++ {
		tok := strings.Trim(tokens[i], ".,;:!?%")
		if tok == "" {
			continue
		}
		if tok == "point" && found {
			break
		}
		if v, err := strconv.ParseFloat(tok, 64); err == nil {
			current += v
			found = true
			continue
		}
		switch tok {
		case "hundred":
			if !found {
				return 0, false
			}
			if current == 0 {
				current = 1
			}
			current *= 100
		case "thousand":
			if !found {
				return 0, false
			}
			if current == 0 {
				current = 1
			}
			total += current * 1000
			current = 0
		case "and":
			// Connective inside a compound ("one hundred and five").
			if !found {
				continue
			}
		default:
			v, ok := wordValues[tok]
			if !ok {
				if found {
					break scan
				}
				continue
			}
			// Juxtaposition carry: "one twenty" means 120, "one oh five"
			// means 105. A small leading value followed by a larger word
			// implies an elided "hundred".
			if current > 0 && current < 10 && (v >= 10 || v == 0) {
				current = current*100 + v
			} else {
				current += v
			}
			found = true
		}
	}

	if !found {
		return 0, false
	}
	whole := total + current

	// Fractional part: "point six" appends ".6", "point six five" ".65".
	if i < len(tokens) && strings.Trim(tokens[i], ".,;:!?%") == "point" {
		var frac strings.Builder
		for _, tok := range tokens[i+1:] {
			tok = strings.Trim(tok, ".,;:!?%")
			if v, ok := wordValues[tok]; ok && v < 10 && tok != "oh" {
				frac.WriteByte(byte('0' + int(v)))
				continue
			}
			if tok == "oh" || tok == "zero" {
				frac.WriteByte('0')
				continue
			}
			if isDigits(tok) {
				frac.WriteString(tok)
				continue
			}
			break
		}
		if frac.Len() > 0 {
			f, err := strconv.ParseFloat("0."+frac.String(), 64)
			if err == nil {
				whole += f
			}
		}
	}

	return whole, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
