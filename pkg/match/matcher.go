// Package match resolves spoken phrases to canonical form-field keys.
//
// Matching runs in four tiers, first hit wins:
//
//  1. Exact match against a normalized primary label (confidence 1.0).
//  2. Exact match against an alias (confidence 0.9).
//  3. Substring containment against a medical-term variant (confidence 0.85).
//  4. Levenshtein similarity against the union of all label variants,
//     accepted only when similarity meets the configured threshold
//     (similarity = 1 - editDistance/max(len1, len2)).
//
// Input is normalized first: lowercased, punctuation stripped, and known
// speech-recognition mishearings rewritten ("assess meant" becomes
// "assessment" before any tier runs).
//
// A Matcher is read-only after construction and safe for concurrent use.
package match

import (
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/carevox/dictascribe/pkg/catalog"
	"github.com/carevox/dictascribe/pkg/normalize"
	"github.com/carevox/dictascribe/pkg/workflow"
)

// defaultThreshold is the minimum Levenshtein similarity for a tier-4 match.
const defaultThreshold = 0.70

// Result describes a successful label match.
type Result struct {
	// FieldKey is the canonical field the phrase names.
	FieldKey string

	// Confidence is 1.0/0.9/0.85 for the exact tiers, or the Levenshtein
	// similarity for a fuzzy match.
	Confidence float64

	// MatchedPhrase is the catalog phrase that matched.
	MatchedPhrase string
}

// Option is a functional option for configuring a [Matcher].
type Option func(*Matcher)

// WithThreshold sets the minimum similarity for tier-4 fuzzy matches.
// Default: 0.70.
func WithThreshold(threshold float64) Option {
	return func(m *Matcher) {
		if threshold > 0 {
			m.threshold = threshold
		}
	}
}

// Matcher resolves spoken text to field keys using the static catalogs.
type Matcher struct {
	threshold float64
}

// New returns a [Matcher] with the supplied options applied.
func New(opts ...Option) *Matcher {
	m := &Matcher{threshold: defaultThreshold}
	for _, o := range opts {
		o(m)
	}
	return m
}

// FieldLabel resolves spoken to a field of workflow t. The second return
// value is false when no tier produces a match at or above the threshold.
func (m *Matcher) FieldLabel(spoken string, t workflow.Type) (Result, bool) {
	normalized := normalize.Label(spoken)
	if normalized == "" {
		return Result{}, false
	}

	fields := catalog.Fields(t)

	// Tier 1: primary labels.
	for _, f := range fields {
		for _, l := range f.PrimaryLabels {
			if normalize.Label(l) == normalized {
				return Result{FieldKey: f.FieldKey, Confidence: catalog.PrimaryConfidence, MatchedPhrase: l}, true
			}
		}
	}

	// Tier 2: aliases.
	for _, f := range fields {
		for _, a := range f.Aliases {
			if normalize.Label(a) == normalized {
				return Result{FieldKey: f.FieldKey, Confidence: catalog.AliasConfidence, MatchedPhrase: a}, true
			}
		}
	}

	// Tier 3: medical-term containment in either direction.
	for _, f := range fields {
		for _, term := range f.MedicalTerms {
			nt := normalize.Label(term)
			if nt == "" {
				continue
			}
			if strings.Contains(normalized, nt) || strings.Contains(nt, normalized) {
				return Result{FieldKey: f.FieldKey, Confidence: catalog.TermConfidence, MatchedPhrase: term}, true
			}
		}
	}

	// Tier 4: Levenshtein similarity over every phrase variant. The highest
	// similarity wins, accepted only at or above the threshold.
	var best Result
	for _, f := range fields {
		for _, variant := range phraseVariants(f) {
			nv := normalize.Label(variant)
			if nv == "" {
				continue
			}
			sim := similarity(normalized, nv)
			if sim >= m.threshold && sim > best.Confidence {
				best = Result{FieldKey: f.FieldKey, Confidence: sim, MatchedPhrase: variant}
			}
		}
	}
	if best.FieldKey != "" {
		return best, true
	}
	return Result{}, false
}

// phraseVariants returns every spoken phrase bound to f.
func phraseVariants(f catalog.FieldMapping) []string {
	out := make([]string, 0, len(f.PrimaryLabels)+len(f.Aliases)+len(f.MedicalTerms))
	out = append(out, f.PrimaryLabels...)
	out = append(out, f.Aliases...)
	out = append(out, f.MedicalTerms...)
	return out
}

// similarity converts Levenshtein edit distance into a 0..1 score.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	dist := matchr.Levenshtein(a, b)
	return 1 - float64(dist)/float64(longest)
}
