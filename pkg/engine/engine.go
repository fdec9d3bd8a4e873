// Package engine reconciles transcript segmentation and domain extraction
// into form-field updates.
//
// One [Engine.Process] call is a pure function of (transcript, workflow,
// current form data) plus the processing cursor: the longest transcript
// prefix already merged into form state. The whole transcript is re-parsed on
// every call so that dictated corrections anywhere in it are honoured, but
// only fields whose value actually changed are emitted. The cursor resets
// whenever the workflow type changes, giving each documentation session a
// clean slate.
//
// Merge priority per field, first applicable rule wins:
//
//  1. Explicit mention (a spoken field label) always overwrites, enabling
//     voice re-entry of a field that was already filled.
//  2. A domain extraction fills the field only when it is not free text
//     (not a textarea) and its current value is empty or zero. Extraction
//     never overwrites user-entered or previously dictated values.
//  3. Otherwise the field stays untouched. Free-text fields never receive
//     extractor output, so the same phrase is never duplicated across
//     multiple narrative fields.
//
// The engine never fails during a pass; anomalies surface as warnings and
// low-confidence fields are listed for manual review.
package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/carevox/dictascribe/pkg/catalog"
	"github.com/carevox/dictascribe/pkg/extract"
	"github.com/carevox/dictascribe/pkg/match"
	"github.com/carevox/dictascribe/pkg/normalize"
	"github.com/carevox/dictascribe/pkg/segment"
	"github.com/carevox/dictascribe/pkg/workflow"
)

// defaultReviewThreshold is the confidence below which a field is flagged
// for manual review.
const defaultReviewThreshold = 0.70

// reviewConfidence is assigned when explicitly dictated content cannot be
// coerced to the field's type; the raw text is kept and flagged.
const reviewConfidence = 0.50

// Source describes how a field value was produced.
type Source string

const (
	// SourceLabel marks a value dictated after an explicit field label.
	SourceLabel Source = "label"

	// SourceExtractor marks a value recognised by a domain pattern.
	SourceExtractor Source = "extractor"
)

// ParseResult is the aggregate output of one full-transcript pass. It is
// recomputed from scratch every pass and never partially mutated.
type ParseResult struct {
	// StructuredData maps field keys to typed values: float64 for numeric
	// fields, string otherwise.
	StructuredData map[string]any

	// Confidence maps each populated field to a 0..1 score.
	Confidence map[string]float64

	// Sources records whether each field came from an explicit label or a
	// domain extraction.
	Sources map[string]Source

	// NeedsReview lists fields whose confidence fell below the review
	// threshold, sorted for stable output.
	NeedsReview []string

	// Warnings carries segmentation warnings (duplicate mentions, labels
	// without content, label-free transcripts).
	Warnings []string

	// Unmatched is the whole transcript when no field label was detected.
	Unmatched string

	// RangeRejections counts numeric matches dropped for being outside
	// their physiological range.
	RangeRejections int
}

// Update is the set of form changes produced by one [Engine.Process] call.
type Update struct {
	// Updates holds only the fields whose value differs from the current
	// form data.
	Updates map[string]any

	// Confidence scores the updated fields.
	Confidence map[string]float64

	// AutoFilled lists updated fields that came from domain extraction
	// rather than an explicit label.
	AutoFilled []string

	// NeedsReview lists updated fields below the review threshold.
	NeedsReview []string

	// Warnings carries the pass's segmentation warnings.
	Warnings []string

	// Unmatched is the whole transcript when no field label was detected.
	Unmatched string

	// RangeRejections counts out-of-range numeric matches seen this pass.
	RangeRejections int

	// Segments and Extractions count the fields populated from explicit
	// labels and from domain patterns during the underlying pass.
	Segments    int
	Extractions int
}

// Option is a functional option for configuring an [Engine].
type Option func(*Engine)

// WithReviewThreshold sets the confidence below which updated fields are
// flagged for manual review. Default: 0.70.
func WithReviewThreshold(threshold float64) Option {
	return func(e *Engine) {
		if threshold > 0 {
			e.review = threshold
		}
	}
}

// WithMatchThreshold sets the minimum fuzzy-match similarity used when the
// scan finds no exact field label. Default: 0.70.
func WithMatchThreshold(threshold float64) Option {
	return func(e *Engine) {
		if threshold > 0 {
			e.matcher = match.New(match.WithThreshold(threshold))
		}
	}
}

// Engine merges segmentation and extraction results into form updates. It is
// stateless apart from the processing cursor and safe for concurrent use,
// though callers are expected to invoke it serially per session; when calls
// race, the consuming layer must let the last invocation's output win.
type Engine struct {
	// cfgMu guards the tunables, which may be swapped at runtime by a config
	// reload via [Engine.SetThresholds].
	cfgMu   sync.RWMutex
	review  float64
	matcher *match.Matcher

	mu       sync.Mutex
	cursor   string
	workflow workflow.Type
}

// New returns an [Engine] with the supplied options applied.
func New(opts ...Option) *Engine {
	e := &Engine{
		review:  defaultReviewThreshold,
		matcher: match.New(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// SetThresholds swaps the review and fuzzy-match thresholds at runtime.
// Non-positive values leave the corresponding threshold unchanged. Safe to
// call while passes are in flight; the next pass sees the new values.
func (e *Engine) SetThresholds(review, matchThreshold float64) {
	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()
	if review > 0 {
		e.review = review
	}
	if matchThreshold > 0 {
		e.matcher = match.New(match.WithThreshold(matchThreshold))
	}
}

func (e *Engine) reviewThreshold() float64 {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.review
}

func (e *Engine) labelMatcher() *match.Matcher {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.matcher
}

// Parse runs one full segmentation and extraction pass over transcript
// without touching the cursor or any form state. Repeated calls with the
// same input yield identical results.
func (e *Engine) Parse(transcript string, t workflow.Type) ParseResult {
	res := ParseResult{
		StructuredData: map[string]any{},
		Confidence:     map[string]float64{},
		Sources:        map[string]Source{},
	}

	segRes := segment.Scan(transcript, t)
	extSet, stats := extract.ForWorkflow(t, transcript)

	// When the exact scan found nothing, the label may simply have been
	// garbled by speech recognition ("blood pressor"). Try resolving the
	// leading words fuzzily before giving up on the transcript.
	if segRes.Unmatched != "" {
		if seg, ok := e.fuzzyLeadingLabel(transcript, t); ok {
			segRes.Segments = []segment.Segment{seg}
			segRes.Unmatched = ""
			segRes.Warnings = nil
		}
	}

	res.Warnings = segRes.Warnings
	res.Unmatched = segRes.Unmatched
	res.RangeRejections = stats.RangeRejections

	// Explicit mentions first: coerce dictated content to the field's kind,
	// preferring the typed extraction when one exists for the same field.
	for _, seg := range segRes.Segments {
		mapping, ok := catalog.Mapping(t, seg.FieldKey)
		if !ok {
			continue
		}
		value, conf, ok := coerceSegment(mapping, seg, extSet)
		if !ok {
			// Numeric content outside the physiological range is rejected
			// the same way extractor matches are.
			res.RangeRejections++
			continue
		}
		res.StructuredData[seg.FieldKey] = value
		res.Confidence[seg.FieldKey] = conf
		res.Sources[seg.FieldKey] = SourceLabel
	}

	// Extractions for fields not explicitly mentioned. Only fields the
	// workflow's catalog knows about are kept.
	for key, ext := range extSet {
		if _, explicit := res.Sources[key]; explicit {
			continue
		}
		mapping, ok := catalog.Mapping(t, key)
		if !ok || mapping.Kind == workflow.KindTextarea {
			continue
		}
		res.StructuredData[key] = ext.Value
		res.Confidence[key] = ext.Confidence
		res.Sources[key] = SourceExtractor
	}

	review := e.reviewThreshold()
	for key, conf := range res.Confidence {
		if conf < review {
			res.NeedsReview = append(res.NeedsReview, key)
		}
	}
	sort.Strings(res.NeedsReview)

	return res
}

// fuzzyLeadingLabel attempts to read the first one to three words of a
// label-free transcript as a misrecognised field label. Longer prefixes are
// tried first so "blood pressor" beats a single-word near-miss. At least one
// word of content must remain after the label.
func (e *Engine) fuzzyLeadingLabel(transcript string, t workflow.Type) (segment.Segment, bool) {
	words := strings.Fields(transcript)
	if len(words) < 2 {
		return segment.Segment{}, false
	}

	matcher := e.labelMatcher()
	maxPrefix := 3
	if len(words)-1 < maxPrefix {
		maxPrefix = len(words) - 1
	}
	for n := maxPrefix; n >= 1; n-- {
		prefix := strings.Join(words[:n], " ")
		r, ok := matcher.FieldLabel(prefix, t)
		if !ok {
			continue
		}
		return segment.Segment{
			FieldKey:   r.FieldKey,
			Content:    strings.Join(words[n:], " "),
			Confidence: r.Confidence,
		}, true
	}
	return segment.Segment{}, false
}

// Process runs a full pass over transcript and returns only the fields whose
// value differs from form. The cursor suppresses duplicate passes over a
// transcript that was already merged; it resets when the workflow changes.
func (e *Engine) Process(transcript string, t workflow.Type, form map[string]any) Update {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t != e.workflow {
		e.cursor = ""
		e.workflow = t
	}
	if transcript == e.cursor {
		return Update{Updates: map[string]any{}, Confidence: map[string]float64{}}
	}

	pr := e.Parse(transcript, t)
	up := Update{
		Updates:         map[string]any{},
		Confidence:      map[string]float64{},
		Warnings:        pr.Warnings,
		Unmatched:       pr.Unmatched,
		RangeRejections: pr.RangeRejections,
	}
	for _, src := range pr.Sources {
		switch src {
		case SourceLabel:
			up.Segments++
		case SourceExtractor:
			up.Extractions++
		}
	}

	review := e.reviewThreshold()
	for key, value := range pr.StructuredData {
		switch pr.Sources[key] {
		case SourceLabel:
			// Rule 1: explicit mentions overwrite unconditionally.
			if valuesEqual(form[key], value) {
				continue
			}
		case SourceExtractor:
			// Rule 2: extraction only fills empty non-free-text fields.
			if !isEmpty(form[key]) {
				continue
			}
			up.AutoFilled = append(up.AutoFilled, key)
		}
		up.Updates[key] = value
		up.Confidence[key] = pr.Confidence[key]
		if pr.Confidence[key] < review {
			up.NeedsReview = append(up.NeedsReview, key)
		}
	}
	sort.Strings(up.AutoFilled)
	sort.Strings(up.NeedsReview)

	e.cursor = transcript
	return up
}

// Reset clears the processing cursor, starting a fresh documentation
// session with the current workflow.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursor = ""
}

// Workflow returns the workflow type of the current session.
func (e *Engine) Workflow() workflow.Type {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.workflow
}

// coerceSegment turns dictated segment content into the field's typed value.
// A typed extraction for the same field wins over re-interpreting the raw
// content, since the extractor has already validated it. The third return
// value is false when numeric content falls outside the field's valid range;
// such mentions are rejected like any other out-of-range match.
func coerceSegment(mapping catalog.FieldMapping, seg segment.Segment, extSet extract.Set) (any, float64, bool) {
	ext, hasExt := extSet[seg.FieldKey]

	switch mapping.Kind {
	case workflow.KindNumber:
		if hasExt {
			return ext.Value, ext.Confidence, true
		}
		if v, ok := normalize.TextToNumber(seg.Content); ok {
			if !extract.InRange(seg.FieldKey, v) {
				return nil, 0, false
			}
			conf := extract.NumericConfidence(seg.Content)
			if seg.Confidence < conf {
				conf = seg.Confidence
			}
			return v, conf, true
		}
		// Content with no recognisable number is kept raw and flagged.
		return seg.Content, reviewConfidence, true

	case workflow.KindSelect:
		if hasExt {
			return ext.Value, ext.Confidence, true
		}
		return seg.Content, reviewConfidence, true

	case workflow.KindText:
		if hasExt {
			return ext.Value, maxConf(ext.Confidence, seg.Confidence), true
		}
		return normalize.MedicalTerms(seg.Content), seg.Confidence, true

	default: // textarea
		return seg.Content, seg.Confidence, true
	}
}

func maxConf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// isEmpty reports whether a form value counts as unset: nil, the empty
// string, or numeric zero.
func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case float64:
		return x == 0
	case float32:
		return x == 0
	case int:
		return x == 0
	case int64:
		return x == 0
	}
	return false
}

// valuesEqual compares a form value with a candidate update loosely, so a
// numeric 120 matches a previously stored "120".
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	return render(a) == render(b)
}

func render(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	return fmt.Sprintf("%v", v)
}
