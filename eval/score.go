// Package eval scores anonymization quality against a gold-labeled corpus.
//
// Scoring is set-based and micro-averaged: per-example true/false
// positive/negative counts are pooled across the corpus before computing
// precision, recall and F1. A predicted span counts as a true positive only
// when it matches a gold span exactly on every compared field; partial
// character overlap never counts.
package eval

import (
	"github.com/privmask/go-anonymizer/anonymizer"
	"github.com/privmask/go-anonymizer/spans"
)

// Counts holds pooled confusion counters plus per-run bookkeeping. It is a
// plain value: per-example (or per-worker) counts merge with Add, which keeps
// scoring free of shared mutable state.
type Counts struct {
	Samples        int `json:"samples"`
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
	DeanonymOK     int `json:"deanonym_ok"`
}

// Add returns the element-wise sum of c and other.
func (c Counts) Add(other Counts) Counts {
	return Counts{
		Samples:        c.Samples + other.Samples,
		TruePositives:  c.TruePositives + other.TruePositives,
		FalsePositives: c.FalsePositives + other.FalsePositives,
		FalseNegatives: c.FalseNegatives + other.FalseNegatives,
		DeanonymOK:     c.DeanonymOK + other.DeanonymOK,
	}
}

// spanKey identifies a span for set comparison. label stays empty when
// labels are ignored.
type spanKey struct {
	start, end int
	label      string
}

// Score compares one example's gold spans against the predicted entities and
// returns the confusion counts. Both sides collapse to sets, so duplicate
// spans count once. With ignoreLabels set, spans compare on offsets only,
// which is useful when the gold and detector label taxonomies differ.
func Score(gold []spans.Span, predicted []anonymizer.Entity, ignoreLabels bool) Counts {
	goldSet := make(map[spanKey]struct{}, len(gold))
	for _, s := range gold {
		goldSet[makeKey(s.Start, s.End, s.Label, ignoreLabels)] = struct{}{}
	}
	predictedSet := make(map[spanKey]struct{}, len(predicted))
	for _, e := range predicted {
		predictedSet[makeKey(e.Start, e.End, e.Label, ignoreLabels)] = struct{}{}
	}

	var c Counts
	for key := range predictedSet {
		if _, ok := goldSet[key]; ok {
			c.TruePositives++
		} else {
			c.FalsePositives++
		}
	}
	for key := range goldSet {
		if _, ok := predictedSet[key]; !ok {
			c.FalseNegatives++
		}
	}
	return c
}

func makeKey(start, end int, label string, ignoreLabels bool) spanKey {
	if ignoreLabels {
		return spanKey{start: start, end: end}
	}
	return spanKey{start: start, end: end, label: label}
}

// Metrics is the final corpus-level evaluation report.
type Metrics struct {
	// RunID uniquely identifies one evaluation run.
	RunID string `json:"run_id"`
	Counts
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	// Fidelity is the exact-match rate of restoring the original text from
	// anonymized text plus metadata.
	Fidelity float64 `json:"fidelity"`
}

// Metrics derives micro precision/recall/F1 and fidelity from the pooled
// counts. Every ratio is 0.0 when its denominator is zero, never an error.
func (c Counts) Metrics(runID string) Metrics {
	m := Metrics{RunID: runID, Counts: c}
	if c.TruePositives+c.FalsePositives > 0 {
		m.Precision = float64(c.TruePositives) / float64(c.TruePositives+c.FalsePositives)
	}
	if c.TruePositives+c.FalseNegatives > 0 {
		m.Recall = float64(c.TruePositives) / float64(c.TruePositives+c.FalseNegatives)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	if c.Samples > 0 {
		m.Fidelity = float64(c.DeanonymOK) / float64(c.Samples)
	}
	return m
}
