// Package catalog holds the static per-workflow field catalogs: for every
// form field, the spoken phrases that name it and the kind of value it
// stores. The catalogs are embedded YAML, parsed once at package
// initialisation, and read-only afterwards, so every accessor is safe for
// concurrent use.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/carevox/dictascribe/pkg/normalize"
	"github.com/carevox/dictascribe/pkg/workflow"
)

//go:embed catalogs.yaml
var catalogsYAML []byte

// FieldMapping describes one form field of a workflow and the spoken phrases
// that name it.
type FieldMapping struct {
	// FieldKey is the canonical form-field identifier (e.g., "heartRate").
	FieldKey string `yaml:"field"`

	// Kind classifies the field's value for the merge policy.
	Kind workflow.FieldKind `yaml:"kind"`

	// PrimaryLabels are the canonical spoken names. Exact match yields
	// confidence 1.0.
	PrimaryLabels []string `yaml:"labels"`

	// Aliases are accepted shorthand forms. Exact match yields 0.9.
	Aliases []string `yaml:"aliases"`

	// MedicalTerms are clinical variants matched by containment, 0.85.
	MedicalTerms []string `yaml:"terms"`
}

// Tier confidences for the three catalog phrase classes.
const (
	PrimaryConfidence = 1.0
	AliasConfidence   = 0.9
	TermConfidence    = 0.85
)

// LabelPhrase is one scannable spoken phrase bound to a field.
type LabelPhrase struct {
	// Phrase is the normalized (lowercased, punctuation-free) phrase.
	Phrase string

	// FieldKey is the field the phrase names.
	FieldKey string

	// Confidence reflects the phrase class: primary 1.0, alias 0.9,
	// medical term or misheard variant 0.85.
	Confidence float64
}

var (
	catalogs map[workflow.Type][]FieldMapping
	phrases  map[workflow.Type][]LabelPhrase
)

func init() {
	var err error
	catalogs, err = parseCatalogs(catalogsYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalogs.yaml is invalid: %v", err))
	}
	phrases = buildPhrases(catalogs)
}

// parseCatalogs decodes and validates the embedded catalog data.
func parseCatalogs(data []byte) (map[workflow.Type][]FieldMapping, error) {
	raw := map[workflow.Type][]FieldMapping{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	for _, t := range workflow.All() {
		fields, ok := raw[t]
		if !ok || len(fields) == 0 {
			return nil, fmt.Errorf("workflow %q has no field catalog", t)
		}
		seen := make(map[string]struct{}, len(fields))
		for i, f := range fields {
			if f.FieldKey == "" {
				return nil, fmt.Errorf("%s[%d]: field key is empty", t, i)
			}
			if _, dup := seen[f.FieldKey]; dup {
				return nil, fmt.Errorf("%s: duplicate field %q", t, f.FieldKey)
			}
			seen[f.FieldKey] = struct{}{}
			if !f.Kind.IsValid() {
				return nil, fmt.Errorf("%s.%s: kind %q is invalid", t, f.FieldKey, f.Kind)
			}
			if len(f.PrimaryLabels) == 0 {
				return nil, fmt.Errorf("%s.%s: at least one primary label is required", t, f.FieldKey)
			}
		}
	}
	for t := range raw {
		if !t.IsValid() {
			return nil, fmt.Errorf("unknown workflow %q", t)
		}
	}
	return raw, nil
}

// buildPhrases flattens each catalog into a deduplicated phrase list sorted
// longest-first, so the segmenter tries "blood pressure" before "pressure".
// Known speech-recognition mishearings of catalog phrases are added as
// scannable variants bound to the same field.
func buildPhrases(cats map[workflow.Type][]FieldMapping) map[workflow.Type][]LabelPhrase {
	misheard := normalize.Misrecognitions()

	out := make(map[workflow.Type][]LabelPhrase, len(cats))
	for t, fields := range cats {
		seen := map[string]struct{}{}
		var list []LabelPhrase

		add := func(phrase, key string, conf float64) {
			p := normalize.Label(phrase)
			if p == "" {
				return
			}
			if _, dup := seen[p]; dup {
				return
			}
			seen[p] = struct{}{}
			list = append(list, LabelPhrase{Phrase: p, FieldKey: key, Confidence: conf})
		}

		for _, f := range fields {
			for _, l := range f.PrimaryLabels {
				add(l, f.FieldKey, PrimaryConfidence)
			}
			for _, a := range f.Aliases {
				add(a, f.FieldKey, AliasConfidence)
			}
			for _, m := range f.MedicalTerms {
				add(m, f.FieldKey, TermConfidence)
			}
		}

		// Misheard forms: "assess meant" scans as the field that
		// "assessment" names. normalize.Label already rewrites them, but the
		// raw transcript scan needs the misheard surface form too.
		for wrong, right := range misheard {
			for _, p := range list {
				if p.Phrase == normalize.Label(right) {
					if _, dup := seen[wrong]; !dup {
						seen[wrong] = struct{}{}
						list = append(list, LabelPhrase{Phrase: wrong, FieldKey: p.FieldKey, Confidence: TermConfidence})
					}
					break
				}
			}
		}

		sort.SliceStable(list, func(i, j int) bool {
			if len(list[i].Phrase) != len(list[j].Phrase) {
				return len(list[i].Phrase) > len(list[j].Phrase)
			}
			return list[i].Phrase < list[j].Phrase
		})
		out[t] = list
	}
	return out
}

// Fields returns the field catalog for t. The returned slice is shared and
// must be treated as read-only. Unknown workflows return nil.
func Fields(t workflow.Type) []FieldMapping {
	return catalogs[t]
}

// Mapping returns the catalog entry for key within workflow t.
func Mapping(t workflow.Type, key string) (FieldMapping, bool) {
	for _, f := range catalogs[t] {
		if f.FieldKey == key {
			return f, true
		}
	}
	return FieldMapping{}, false
}

// LabelPhrases returns every scannable label phrase for t, longest first.
// The returned slice is shared and must be treated as read-only.
func LabelPhrases(t workflow.Type) []LabelPhrase {
	return phrases[t]
}
