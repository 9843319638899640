// Package spans reconstructs flat text from pre-tokenized datasets and maps
// per-token tags to character-level entity spans.
//
// Offsets are byte offsets (not rune offsets), suitable for slicing Go
// strings directly: text[span.Start:span.End]. Every downstream consumer
// (placeholder substitution, scoring) relies on these offsets being exact,
// so detokenization is deterministic and byte-exact by construction.
package spans

import (
	"strings"

	"github.com/pkg/errors"
)

// TokenSpan represents the byte span of a token in the reconstructed text.
// Start is inclusive, End is exclusive.
type TokenSpan struct {
	Start int // start byte position (inclusive)
	End   int // end byte position (exclusive)
}

// Span is a labeled character-level entity span with its surface text.
// Text always equals the reconstructed text sliced at [Start:End).
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Detokenize reconstructs the flat text from tokens and per-token
// "space follows" flags, returning the text and the byte span of each token.
//
// A single space is appended after token i (except the last) when
// spaceAfter[i] is true; that space belongs to no token's span. spaceAfter
// may carry one flag per token (the last is ignored) or one per token pair.
// An empty token list yields empty text and no spans.
func Detokenize(tokens []string, spaceAfter []bool) (string, []TokenSpan, error) {
	if len(spaceAfter) != len(tokens) && len(spaceAfter) != len(tokens)-1 {
		return "", nil, errors.Errorf(
			"spaceAfter length %d does not match %d tokens (want %d or %d)",
			len(spaceAfter), len(tokens), len(tokens), len(tokens)-1)
	}
	var sb strings.Builder
	tokenSpans := make([]TokenSpan, 0, len(tokens))
	for i, tok := range tokens {
		start := sb.Len()
		sb.WriteString(tok)
		tokenSpans = append(tokenSpans, TokenSpan{Start: start, End: sb.Len()})
		if i < len(tokens)-1 && spaceAfter[i] {
			sb.WriteByte(' ')
		}
	}
	return sb.String(), tokenSpans, nil
}

// FromBIO2 converts a BIO2 tag sequence into character-level entity spans.
//
// A span opens at a "B-<LABEL>" tag and greedily extends over contiguous
// "I-<LABEL>" tags with the same label. An "I-" tag with no matching opener
// immediately before it is skipped without producing a span; gold datasets
// contain such artifacts and they must not be promoted to span starts.
// Returned spans are ordered left to right and never overlap.
func FromBIO2(tokens, tags []string, spaceAfter []bool) ([]Span, error) {
	if len(tags) != len(tokens) {
		return nil, errors.Errorf("got %d tags for %d tokens", len(tags), len(tokens))
	}
	text, tokenSpans, err := Detokenize(tokens, spaceAfter)
	if err != nil {
		return nil, err
	}
	var result []Span
	i := 0
	for i < len(tokens) {
		tag := tags[i]
		if !strings.HasPrefix(tag, "B-") {
			i++
			continue
		}
		label := tag[2:]
		j := i + 1
		for j < len(tokens) && strings.HasPrefix(tags[j], "I-") && tags[j][2:] == label {
			j++
		}
		start, end := tokenSpans[i].Start, tokenSpans[j-1].End
		result = append(result, Span{
			Start: start,
			End:   end,
			Label: label,
			Text:  text[start:end],
		})
		i = j
	}
	return result, nil
}
