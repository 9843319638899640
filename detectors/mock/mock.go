// Package mock implements a detector that emulates a model with prior
// knowledge of gold entity placements for a fixed corpus.
//
// For each gold span of a known text, the detector reports the span with
// probability 1-errorRate and additionally injects a random non-overlapping
// false positive with probability errorRate. Texts outside the corpus yield
// no spans. With errorRate 0 the detector is a perfect oracle, which the
// evaluation harness uses to sanity-check its own span bookkeeping.
package mock

import (
	"context"
	"math/rand"
	"sync"

	"github.com/privmask/go-anonymizer/anonymizer"
	"github.com/privmask/go-anonymizer/dataset"
)

// Detector replays gold spans with configurable noise. Safe for concurrent
// use; the rand source is guarded by a mutex.
type Detector struct {
	goldByText map[string][]anonymizer.RawSpan
	errorRate  float64

	mu  sync.Mutex
	rng *rand.Rand
}

// Compile time assert that Detector implements anonymizer.Detector.
var _ anonymizer.Detector = &Detector{}

// New builds a Detector over the given gold corpus. errorRate in [0,1] is
// both the per-entity drop probability and the per-entity false-positive
// injection probability. A nil rng gets a fixed seed, so runs are
// reproducible by default.
func New(examples []dataset.Example, errorRate float64, rng *rand.Rand) (*Detector, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	goldByText := make(map[string][]anonymizer.RawSpan, len(examples))
	for i := range examples {
		text, err := examples[i].Text()
		if err != nil {
			return nil, err
		}
		gold, err := examples[i].GoldSpans()
		if err != nil {
			return nil, err
		}
		raw := make([]anonymizer.RawSpan, 0, len(gold))
		for _, g := range gold {
			raw = append(raw, anonymizer.RawSpan{Start: g.Start, End: g.End, Label: g.Label, Text: g.Text})
		}
		goldByText[text] = raw
	}
	return &Detector{goldByText: goldByText, errorRate: errorRate, rng: rng}, nil
}

// Predict returns the gold spans for text, degraded by the configured error
// rate. Returned spans never overlap; injected false positives may appear
// out of start order, which the placeholder codec sorts anyway.
func (d *Detector) Predict(_ context.Context, text string) ([]anonymizer.RawSpan, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	gold := d.goldByText[text]
	predicted := make([]anonymizer.RawSpan, 0, len(gold))
	for _, span := range gold {
		if d.errorRate == 0 || d.rng.Float64() >= d.errorRate {
			predicted = append(predicted, span)
		}
	}
	if len(gold) > 0 && d.errorRate > 0 {
		predicted = d.injectFalsePositives(text, gold, predicted)
	}
	return predicted, nil
}

// injectFalsePositives adds up to len(gold) fake spans, each with probability
// errorRate, sampling only regions that overlap neither gold nor already
// predicted spans so the output stays well-formed.
func (d *Detector) injectFalsePositives(text string, gold, predicted []anonymizer.RawSpan) []anonymizer.RawSpan {
	labels := make([]string, 0, len(gold))
	seen := make(map[string]bool)
	for _, g := range gold {
		if !seen[g.Label] {
			seen[g.Label] = true
			labels = append(labels, g.Label)
		}
	}
	occupied := make([][2]int, 0, len(gold)+len(predicted))
	for _, s := range predicted {
		occupied = append(occupied, [2]int{s.Start, s.End})
	}
	for _, s := range gold {
		occupied = append(occupied, [2]int{s.Start, s.End})
	}
	overlapsAny := func(start, end int) bool {
		for _, occ := range occupied {
			if start < occ[1] && occ[0] < end {
				return true
			}
		}
		return false
	}
	for range gold {
		if d.rng.Float64() >= d.errorRate || len(text) < 2 {
			continue
		}
		for attempt := 0; attempt < 20; attempt++ {
			start := d.rng.Intn(len(text) - 1)
			end := start + 1 + d.rng.Intn(min(12, len(text)-start))
			if overlapsAny(start, end) {
				continue
			}
			predicted = append(predicted, anonymizer.RawSpan{
				Start: start,
				End:   end,
				Label: labels[d.rng.Intn(len(labels))],
				Text:  text[start:end],
			})
			occupied = append(occupied, [2]int{start, end})
			break
		}
	}
	return predicted
}
