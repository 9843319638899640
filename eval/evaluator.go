package eval

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/privmask/go-anonymizer/anonymizer"
	"github.com/privmask/go-anonymizer/dataset"
)

// Client is the anonymizer wire contract consumed by the evaluator: any
// detector-backed implementation that produces placeholder metadata
// sufficient for exact restoration.
type Client interface {
	Anonymize(ctx context.Context, text string) (string, *anonymizer.Metadata, error)
	Deanonymize(anonymized string, metadata *anonymizer.Metadata) (string, error)
}

// Compile time assert that anonymizer.Anonymizer satisfies Client.
var _ Client = &anonymizer.Anonymizer{}

// Evaluator runs a Client over a gold-labeled corpus and accumulates
// micro-averaged span metrics plus deanonymization fidelity.
type Evaluator struct {
	// Client is the anonymizer under evaluation.
	Client Client
	// IgnoreLabels compares spans on offsets only; useful when the gold and
	// detector label taxonomies differ.
	IgnoreLabels bool
	// Workers sets the number of examples evaluated concurrently. Values
	// below 2 keep evaluation sequential. Examples are independent, so the
	// pooled counts are identical either way (for deterministic clients).
	Workers int
}

// Evaluate scores every example and returns the corpus-level metrics.
//
// Per-example deanonymization failures, mismatches included, only lower the
// fidelity rate; the run always completes. Structurally invalid examples and
// anonymization failures abort with an error.
func (e *Evaluator) Evaluate(ctx context.Context, examples []dataset.Example) (Metrics, error) {
	runID := uuid.NewString()
	klog.V(1).Infof("evaluation %s: %d examples, ignoreLabels=%v, workers=%d",
		runID, len(examples), e.IgnoreLabels, e.Workers)

	perExample := make([]Counts, len(examples))
	if e.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.Workers)
		for i := range examples {
			g.Go(func() error {
				c, err := e.evaluateOne(gctx, &examples[i])
				if err != nil {
					return err
				}
				perExample[i] = c
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Metrics{}, err
		}
	} else {
		for i := range examples {
			c, err := e.evaluateOne(ctx, &examples[i])
			if err != nil {
				return Metrics{}, err
			}
			perExample[i] = c
		}
	}

	var total Counts
	for _, c := range perExample {
		total = total.Add(c)
	}
	return total.Metrics(runID), nil
}

// evaluateOne anonymizes one example, checks round-trip fidelity and scores
// the predicted entities against gold.
func (e *Evaluator) evaluateOne(ctx context.Context, example *dataset.Example) (Counts, error) {
	text, err := example.Text()
	if err != nil {
		return Counts{}, err
	}
	gold, err := example.GoldSpans()
	if err != nil {
		return Counts{}, err
	}

	anonymized, metadata, err := e.Client.Anonymize(ctx, text)
	if err != nil {
		return Counts{}, err
	}

	c := Counts{Samples: 1}
	restored, err := e.Client.Deanonymize(anonymized, metadata)
	switch {
	case err != nil:
		// Not fatal: a failed restoration is a fidelity miss, the run goes on.
		klog.V(2).Infof("deanonymization failed: %v", err)
	case restored == text:
		c.DeanonymOK = 1
	}

	var predicted []anonymizer.Entity
	if metadata != nil {
		predicted = metadata.Entities
	}
	return c.Add(Score(gold, predicted, e.IgnoreLabels)), nil
}
