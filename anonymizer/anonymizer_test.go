package anonymizer

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// detectorFunc adapts a function to the Detector interface.
type detectorFunc func(ctx context.Context, text string) ([]RawSpan, error)

func (f detectorFunc) Predict(ctx context.Context, text string) ([]RawSpan, error) {
	return f(ctx, text)
}

var _ Detector = detectorFunc(nil)

func TestAnonymizerRoundTrip(t *testing.T) {
	client := New(detectorFunc(func(_ context.Context, text string) ([]RawSpan, error) {
		return []RawSpan{{Start: 0, End: 3, Label: "PERSON"}}, nil
	}))
	anonymized, metadata, err := client.Anonymize(context.Background(), "Ana merge acasă")
	require.NoError(t, err)
	assert.Equal(t, "<PERSON_1> merge acasă", anonymized)

	restored, err := client.Deanonymize(anonymized, metadata)
	require.NoError(t, err)
	assert.Equal(t, "Ana merge acasă", restored)
}

func TestAnonymizerDetectorError(t *testing.T) {
	boom := errors.New("model unavailable")
	client := New(detectorFunc(func(context.Context, string) ([]RawSpan, error) {
		return nil, boom
	}))
	_, _, err := client.Anonymize(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestAnonymizerStrictOverlap(t *testing.T) {
	client := New(detectorFunc(func(context.Context, string) ([]RawSpan, error) {
		return []RawSpan{
			{Start: 0, End: 5, Label: "A"},
			{Start: 3, End: 8, Label: "B"},
		}, nil
	}))
	client.StrictOverlap = true
	_, _, err := client.Anonymize(context.Background(), "0123456789")
	assert.ErrorIs(t, err, ErrOverlappingSpans)
}
