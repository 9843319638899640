package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictOffsets(t *testing.T) {
	text := "Scrie la ana.pop@example.com sau suna la +40 721 123 456."
	result, err := New().Predict(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, "EMAIL", result[0].Label)
	assert.Equal(t, "ana.pop@example.com", result[0].Text)
	assert.Equal(t, "PHONE", result[1].Label)

	// Offsets must slice back to the reported surface text.
	for _, span := range result {
		assert.Equal(t, text[span.Start:span.End], span.Text)
	}
}

func TestPredictNonOverlapping(t *testing.T) {
	// A CNP is also 13 digits of which 12 look like part of a card pattern;
	// whatever matches, spans must never overlap.
	text := "CNP 1960712345678 card 4111 1111 1111 1111 ip 10.0.0.1"
	result, err := New().Predict(context.Background(), text)
	require.NoError(t, err)
	require.NotEmpty(t, result)
	for i := 1; i < len(result); i++ {
		assert.GreaterOrEqual(t, result[i].Start, result[i-1].End)
	}
}

func TestPredictNoMatches(t *testing.T) {
	result, err := New().Predict(context.Background(), "nimic sensibil aici")
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestPredictIBAN(t *testing.T) {
	text := "plata in RO49AAAA1B31007593840000 azi"
	result, err := New().Predict(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "IBAN", result[0].Label)
	assert.Equal(t, "RO49AAAA1B31007593840000", result[0].Text)
}
