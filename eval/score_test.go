package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/privmask/go-anonymizer/anonymizer"
	"github.com/privmask/go-anonymizer/spans"
)

func TestScoreScenario(t *testing.T) {
	gold := []spans.Span{{Start: 0, End: 3, Label: "PERSON"}}
	predicted := []anonymizer.Entity{
		{Start: 0, End: 3, Label: "PERSON"},
		{Start: 10, End: 14, Label: "ORG"},
	}
	c := Score(gold, predicted, false)
	assert.Equal(t, 1, c.TruePositives)
	assert.Equal(t, 1, c.FalsePositives)
	assert.Equal(t, 0, c.FalseNegatives)

	c.Samples = 1
	m := c.Metrics("test")
	assert.Equal(t, 0.5, m.Precision)
	assert.Equal(t, 1.0, m.Recall)
	assert.InDelta(t, 0.667, m.F1, 0.001)
}

func TestScoreLabelMismatch(t *testing.T) {
	gold := []spans.Span{{Start: 0, End: 3, Label: "PERSON"}}
	predicted := []anonymizer.Entity{{Start: 0, End: 3, Label: "ORG"}}

	c := Score(gold, predicted, false)
	assert.Equal(t, Counts{FalsePositives: 1, FalseNegatives: 1}, c)

	// Same spans compared offsets-only are a match.
	c = Score(gold, predicted, true)
	assert.Equal(t, Counts{TruePositives: 1}, c)
}

func TestScorePartialOverlapNeverCounts(t *testing.T) {
	gold := []spans.Span{{Start: 0, End: 5, Label: "PERSON"}}
	predicted := []anonymizer.Entity{{Start: 0, End: 4, Label: "PERSON"}}
	c := Score(gold, predicted, false)
	assert.Equal(t, Counts{FalsePositives: 1, FalseNegatives: 1}, c)
}

func TestScoreDuplicatesCollapse(t *testing.T) {
	gold := []spans.Span{
		{Start: 0, End: 3, Label: "PERSON"},
		{Start: 0, End: 3, Label: "PERSON"},
	}
	predicted := []anonymizer.Entity{
		{Start: 0, End: 3, Label: "PERSON"},
		{Start: 0, End: 3, Label: "PERSON"},
	}
	c := Score(gold, predicted, false)
	assert.Equal(t, Counts{TruePositives: 1}, c)
}

func TestScoreIdempotent(t *testing.T) {
	gold := []spans.Span{{Start: 2, End: 8, Label: "ORG"}}
	predicted := []anonymizer.Entity{{Start: 2, End: 8, Label: "ORG"}}
	first := Score(gold, predicted, false)
	second := Score(gold, predicted, false)
	assert.Equal(t, first, second)
}

func TestScoreEmpty(t *testing.T) {
	c := Score(nil, nil, false)
	assert.Equal(t, Counts{}, c)

	m := c.Metrics("empty")
	assert.Equal(t, 0.0, m.Precision)
	assert.Equal(t, 0.0, m.Recall)
	assert.Equal(t, 0.0, m.F1)
	assert.Equal(t, 0.0, m.Fidelity)
}

func TestCountsAdd(t *testing.T) {
	a := Counts{Samples: 1, TruePositives: 2, FalsePositives: 3, FalseNegatives: 4, DeanonymOK: 1}
	b := Counts{Samples: 1, TruePositives: 1, FalsePositives: 1, FalseNegatives: 1}
	assert.Equal(t,
		Counts{Samples: 2, TruePositives: 3, FalsePositives: 4, FalseNegatives: 5, DeanonymOK: 1},
		a.Add(b))
}
