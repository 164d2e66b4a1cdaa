package events

import (
	"fmt"

	"github.com/cognicore/nerc/pkg/nerc/span"
)

// Classifier is an external model mapping a token's features to an outcome
type Classifier interface {
	Classify(features []string) (string, error)
}

// ClassifierFunc adapts a function to Classifier
type ClassifierFunc func(features []string) (string, error)

func (f ClassifierFunc) Classify(features []string) (string, error) {
	return f(features)
}

// Sequence tags tokens greedily from left to right. Each prediction is
// visible to the features of the following tokens. The predicted outcomes
// are recorded as adaptive data once the sentence is complete.
func Sequence(tokens []string, g Generator, c Classifier) ([]string, error) {
	outcomes := make([]string, 0, len(tokens))
	var buf []string

	for i := range tokens {
		buf = g.Generate(buf[:0], tokens, i, outcomes)
		outcome, err := c.Classify(buf)
		if err != nil {
			return nil, fmt.Errorf("classify token %d: %w", i, err)
		}
		outcomes = append(outcomes, outcome)
	}

	g.UpdateAdaptiveData(tokens, outcomes)
	return outcomes, nil
}

// Annotate tags tokens with Sequence and decodes the outcomes into spans
func Annotate(tokens []string, g Generator, c Classifier, d span.Decoder) ([]span.Span, error) {
	outcomes, err := Sequence(tokens, g, c)
	if err != nil {
		return nil, err
	}
	return d.Decode(outcomes)
}
