// Package rules implements a regex-based PII detector for structured
// patterns (emails, phone numbers, IBANs, personal numeric codes, IPs, card
// numbers). It needs no model runtime, which makes it a useful baseline and
// a fast first pass in front of heavier detectors.
//
// Every returned span satisfies text[span.Start:span.End] == span.Text, and
// the detector never emits overlapping spans: when two patterns match
// overlapping regions, the earlier match wins, with pattern order breaking
// ties at equal start offsets.
package rules

import (
	"context"
	"regexp"
	"sort"

	"github.com/privmask/go-anonymizer/anonymizer"
)

// rule pairs a compiled regex with the label assigned to its matches.
type rule struct {
	label string
	re    *regexp.Regexp
}

// Pattern order doubles as priority for equal-start overlaps: more specific
// patterns come first.
var defaultRules = []rule{
	{"EMAIL", regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)},
	{"IBAN", regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{11,28}\b`)},
	{"IP_ADDRESS", regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)},
	{"CNP", regexp.MustCompile(`\b[1-8]\d{12}\b`)},
	{"CARD_NUMBER", regexp.MustCompile(`\b\d{4}[ -]?\d{4}[ -]?\d{4}[ -]?\d{4}\b`)},
	{"PHONE", regexp.MustCompile(`(?:\+|00)\d{1,3}[ .-]?\d{2,3}(?:[ .-]?\d{2,3}){2,3}|\b0\d{2}[ .-]?\d{3}[ .-]?\d{3}\b`)},
}

// Detector finds structured PII via regex rules.
type Detector struct {
	rules []rule
}

// Compile time assert that Detector implements anonymizer.Detector.
var _ anonymizer.Detector = &Detector{}

// New returns a Detector with the default rule set.
func New() *Detector {
	return &Detector{rules: defaultRules}
}

// Predict returns non-overlapping spans for all rule matches in text,
// ordered by start offset.
func (d *Detector) Predict(_ context.Context, text string) ([]anonymizer.RawSpan, error) {
	type candidate struct {
		anonymizer.RawSpan
		priority int
	}
	var candidates []candidate
	for priority, r := range d.rules {
		for _, loc := range r.re.FindAllStringIndex(text, -1) {
			candidates = append(candidates, candidate{
				RawSpan: anonymizer.RawSpan{
					Start: loc[0],
					End:   loc[1],
					Label: r.label,
					Text:  text[loc[0]:loc[1]],
				},
				priority: priority,
			})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Start != candidates[j].Start {
			return candidates[i].Start < candidates[j].Start
		}
		return candidates[i].priority < candidates[j].priority
	})

	var result []anonymizer.RawSpan
	lastEnd := 0
	for _, c := range candidates {
		if c.Start < lastEnd {
			continue
		}
		result = append(result, c.RawSpan)
		lastEnd = c.End
	}
	return result, nil
}
