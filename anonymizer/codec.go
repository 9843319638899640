package anonymizer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrOverlappingSpans is returned by AnonymizeSpansStrict when the sorted
// span list contains overlapping spans.
var ErrOverlappingSpans = errors.New("overlapping entity spans")

// ErrPlaceholderNotFound is returned by Deanonymize when an entity's
// replacement string does not occur in the anonymized text, typically because
// the text was edited after anonymization.
var ErrPlaceholderNotFound = errors.New("placeholder not found in anonymized text")

// AnonymizeSpans substitutes each raw span in text with a placeholder of the
// form "<LABEL_n>", n counting from 1 in left-to-right span order, and
// returns the anonymized text plus the metadata needed to reverse it.
//
// Degenerate spans (End <= Start) and spans falling outside the text bounds
// are discarded. Remaining spans are sorted by Start with a stable sort, so
// placeholder indices are deterministic even when a detector emits identical
// start offsets. The recorded entity text is always the source substring
// text[Start:End]; the detector-supplied Text field is ignored.
//
// Overlapping spans are neither resolved nor rejected: the copy loop assumes
// non-overlap, and overlapping input produces corrupted output. Use
// AnonymizeSpansStrict to fail instead.
func AnonymizeSpans(text string, raw []RawSpan) (string, *Metadata) {
	spans := sortedValidSpans(text, raw)
	var sb strings.Builder
	entities := make([]Entity, 0, len(spans))
	cursor := 0
	for idx, span := range spans {
		replacement := fmt.Sprintf("<%s_%d>", span.Label, idx+1)
		if span.Start >= cursor {
			sb.WriteString(text[cursor:span.Start])
		}
		sb.WriteString(replacement)
		cursor = span.End
		entities = append(entities, Entity{
			Start:       span.Start,
			End:         span.End,
			Label:       span.Label,
			Text:        text[span.Start:span.End],
			Replacement: replacement,
		})
	}
	sb.WriteString(text[cursor:])
	return sb.String(), &Metadata{Entities: entities}
}

// AnonymizeSpansStrict is AnonymizeSpans with overlap detection: it returns
// ErrOverlappingSpans instead of producing corrupted output.
func AnonymizeSpansStrict(text string, raw []RawSpan) (string, *Metadata, error) {
	spans := sortedValidSpans(text, raw)
	for i := 1; i < len(spans); i++ {
		if spans[i].Start < spans[i-1].End {
			return "", nil, errors.Wrapf(ErrOverlappingSpans,
				"span [%d,%d) overlaps [%d,%d)",
				spans[i].Start, spans[i].End, spans[i-1].Start, spans[i-1].End)
		}
	}
	anonymized, metadata := AnonymizeSpans(text, raw)
	return anonymized, metadata, nil
}

// sortedValidSpans drops degenerate and out-of-bounds spans and stable-sorts
// the rest by Start.
func sortedValidSpans(text string, raw []RawSpan) []RawSpan {
	spans := make([]RawSpan, 0, len(raw))
	for _, span := range raw {
		if span.End > span.Start && span.Start >= 0 && span.End <= len(text) {
			spans = append(spans, span)
		}
	}
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].Start < spans[j].Start
	})
	return spans
}

// Deanonymize restores the original text from the anonymized text and its
// metadata by substituting each placeholder back with its recorded source
// substring.
//
// Entities are processed in reverse creation order and each replacement
// targets only the first occurrence of its placeholder, exactly once.
// Substitution is a lexical string search, not offset-based: reverse order
// prevents an earlier (leftward) placeholder whose string happens to occur
// inside a later entity's restored text from being matched prematurely, and
// the single-occurrence limit prevents over-replacing accidental duplicates.
func Deanonymize(anonymized string, metadata *Metadata) (string, error) {
	if metadata == nil {
		return anonymized, nil
	}
	result := anonymized
	for i := len(metadata.Entities) - 1; i >= 0; i-- {
		entity := metadata.Entities[i]
		if !strings.Contains(result, entity.Replacement) {
			return "", errors.Wrapf(ErrPlaceholderNotFound, "%q", entity.Replacement)
		}
		result = strings.Replace(result, entity.Replacement, entity.Text, 1)
	}
	return result, nil
}
