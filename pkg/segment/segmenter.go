// Package segment slices a raw, punctuation-free speech transcript into
// per-field content spans by locating spoken field labels.
//
// The scan works on the lowercased transcript with the workflow's label
// phrases ordered longest-first, so a specific label ("blood pressure")
// claims its character span before a generic one ("pressure") can re-match
// inside it. A label occurrence is only valid on word boundaries. The content
// attributed to a field runs from the end of its label to the start of the
// next label (or the end of the transcript).
//
// Dictated corrections are honoured transcript-wide: when a field is
// mentioned more than once, the last mention wins and a warning is emitted
// per collapse. A transcript with no labels at all degrades to
// [Result.Unmatched] plus a warning; upstream may store it as free-form
// notes.
package segment

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/carevox/dictascribe/pkg/catalog"
	"github.com/carevox/dictascribe/pkg/workflow"
)

// Segment is one transcript span attributed to a field.
type Segment struct {
	// FieldKey is the canonical field the span belongs to.
	FieldKey string

	// Content is the dictated text between this field's label and the next
	// label, trimmed of surrounding whitespace and punctuation.
	Content string

	// Confidence reflects how the label was recognised (primary label 1.0,
	// alias 0.9, medical term or misheard variant 0.85).
	Confidence float64

	// Start and End are byte offsets of the content span in the transcript.
	Start, End int
}

// Result is the output of one segmentation pass.
type Result struct {
	// Segments holds one entry per field, in transcript order. Duplicate
	// mentions are already collapsed to the last occurrence.
	Segments []Segment

	// Unmatched is the entire transcript when no label was found, empty
	// otherwise.
	Unmatched string

	// Warnings lists non-fatal anomalies: empty field content, duplicate
	// mentions, or a label-free transcript.
	Warnings []string
}

// marker is a located label occurrence.
type marker struct {
	start, end int
	fieldKey   string
	confidence float64
}

// Scan locates every field-label occurrence in transcript and slices the
// text between labels into per-field content. It never fails; anomalies are
// reported as warnings.
func Scan(transcript string, t workflow.Type) Result {
	var res Result

	trimmed := strings.TrimSpace(transcript)
	if trimmed == "" {
		return res
	}

	lower := strings.ToLower(transcript)
	markers := findMarkers(lower, catalog.LabelPhrases(t))

	if len(markers) == 0 {
		res.Unmatched = trimmed
		res.Warnings = append(res.Warnings, "no field labels detected; transcript kept as unmatched content")
		return res
	}

	sort.Slice(markers, func(i, j int) bool { return markers[i].start < markers[j].start })

	// Slice content spans and collapse duplicate fields to the last mention.
	byField := make(map[string]int, len(markers))
	var segments []Segment
	for i, m := range markers {
		contentStart := m.end
		contentEnd := len(transcript)
		if i+1 < len(markers) {
			contentEnd = markers[i+1].start
		}

		content, start, end := trimSpan(transcript, contentStart, contentEnd)
		if content == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("field %q mentioned but no content provided", m.fieldKey))
			continue
		}

		seg := Segment{
			FieldKey:   m.fieldKey,
			Content:    content,
			Confidence: m.confidence,
			Start:      start,
			End:        end,
		}
		if prev, dup := byField[m.fieldKey]; dup {
			segments[prev] = seg
			res.Warnings = append(res.Warnings, fmt.Sprintf("field %q mentioned again; updated to latest value", m.fieldKey))
			continue
		}
		byField[m.fieldKey] = len(segments)
		segments = append(segments, seg)
	}

	res.Segments = segments
	return res
}

// findMarkers scans lower for every phrase occurrence, longest phrase first.
// A match must sit on word boundaries, and a claimed span blocks shorter
// phrases from re-matching inside it.
func findMarkers(lower string, phrases []catalog.LabelPhrase) []marker {
	claimed := make([]bool, len(lower))
	var markers []marker

	for _, p := range phrases {
		from := 0
		for {
			idx := strings.Index(lower[from:], p.Phrase)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(p.Phrase)
			from = start + 1

			if !wordBoundary(lower, start, end) {
				continue
			}
			if spanClaimed(claimed, start, end) {
				continue
			}
			for i := start; i < end; i++ {
				claimed[i] = true
			}
			markers = append(markers, marker{start: start, end: end, fieldKey: p.FieldKey, confidence: p.Confidence})
		}
	}
	return markers
}

// wordBoundary reports whether s[start:end] is flanked by non-alphanumeric
// runes or the string edges.
func wordBoundary(s string, start, end int) bool {
	if start > 0 {
		r := rune(s[start-1])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(s) {
		r := rune(s[end])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// spanClaimed reports whether any byte in [start, end) is already claimed.
func spanClaimed(claimed []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if claimed[i] {
			return true
		}
	}
	return false
}

// trimSpan trims whitespace and leading/trailing punctuation from
// transcript[start:end] and returns the trimmed text with its adjusted
// offsets.
func trimSpan(transcript string, start, end int) (string, int, int) {
	cut := func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '.' || r == ';' || r == ':' || r == '-'
	}
	for start < end && cut(rune(transcript[start])) {
		start++
	}
	for end > start && cut(rune(transcript[end-1])) {
		end--
	}
	return transcript[start:end], start, end
}
