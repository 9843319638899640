// Package anonymizer replaces detected entity spans in free text with labeled
// placeholders like <EMAIL_1>, and restores the exact original text from the
// placeholders plus the recorded metadata.
//
// The package is detector-agnostic: any source of raw spans (a pretrained NER
// model, a rule engine, a remote service) plugs in through the Detector
// interface, and the codec only guarantees mechanical correctness of the span
// bookkeeping, never semantic correctness of the labels.
package anonymizer

import (
	"context"

	"github.com/pkg/errors"
)

// RawSpan is a detected entity span as produced by a Detector. Offsets are
// byte offsets into the text handed to the detector. Text is optional: the
// codec always re-reads the surface form from the source text, since detector
// output may be whitespace-normalized or otherwise stale.
type RawSpan struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
	Text  string `json:"text,omitempty"`
}

// Detector finds entity spans in text. Implementations are treated as opaque
// and possibly inaccurate oracles: spans with End <= Start are discarded by
// the codec, and accuracy of offsets and labels is not verified.
//
// Detectors are expected to return non-overlapping spans. Overlapping output
// is not rejected by default and corrupts the anonymized text; see
// Anonymizer.StrictOverlap for the opt-in guard.
type Detector interface {
	Predict(ctx context.Context, text string) ([]RawSpan, error)
}

// Anonymizer is a detector-backed client implementing the anonymize /
// deanonymize wire contract used by the evaluation harness.
type Anonymizer struct {
	// Detector supplies raw entity spans for each text.
	Detector Detector
	// StrictOverlap makes Anonymize fail with ErrOverlappingSpans when the
	// detector returns overlapping spans, instead of silently producing
	// corrupted output. Off by default.
	StrictOverlap bool
}

// New returns an Anonymizer backed by the given detector.
func New(detector Detector) *Anonymizer {
	return &Anonymizer{Detector: detector}
}

// Anonymize runs the detector on text and substitutes every detected span
// with a placeholder. The returned Metadata is sufficient to restore the
// original text exactly with Deanonymize.
func (a *Anonymizer) Anonymize(ctx context.Context, text string) (string, *Metadata, error) {
	raw, err := a.Detector.Predict(ctx, text)
	if err != nil {
		return "", nil, errors.WithMessage(err, "detector failed")
	}
	if a.StrictOverlap {
		return AnonymizeSpansStrict(text, raw)
	}
	anonymized, metadata := AnonymizeSpans(text, raw)
	return anonymized, metadata, nil
}

// Deanonymize restores the original text from anonymized text and metadata.
func (a *Anonymizer) Deanonymize(anonymized string, metadata *Metadata) (string, error) {
	return Deanonymize(anonymized, metadata)
}
