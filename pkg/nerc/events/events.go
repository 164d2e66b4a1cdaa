// Package events turns annotated samples into training events, one per
// token, and runs greedy left-to-right tagging against an external model.
package events

import (
	"fmt"

	"github.com/cognicore/nerc/pkg/nerc/corpus"
	"github.com/cognicore/nerc/pkg/nerc/features"
	"github.com/cognicore/nerc/pkg/nerc/span"
)

// Event is the outcome of one token together with its features
type Event struct {
	Position int      `json:"position"`
	Token    string   `json:"token"`
	Outcome  string   `json:"outcome"`
	Features []string `json:"features"`
}

// Generator is a feature generator with adaptive state
type Generator interface {
	features.Generator
	features.Adaptive
}

// Stream reads samples and produces their events, applying the adaptive
// reset policy carried by each sample
type Stream struct {
	r       corpus.SampleReader
	g       Generator
	samples int
}

// NewStream creates an event stream over r using g
func NewStream(r corpus.SampleReader, g Generator) *Stream {
	return &Stream{r: r, g: g}
}

// Next returns the next sample and its events, or io.EOF at the end of the
// corpus
func (s *Stream) Next() (corpus.Sample, []Event, error) {
	sample, err := s.r.Read()
	if err != nil {
		return corpus.Sample{}, nil, err
	}

	events, err := SampleEvents(sample, s.g)
	if err != nil {
		return corpus.Sample{}, nil, fmt.Errorf("sample %d: %w", s.samples, err)
	}
	s.samples++

	return sample, events, nil
}

// Samples returns the number of samples consumed so far
func (s *Stream) Samples() int {
	return s.samples
}

// SampleEvents generates the events of one sample. Adaptive data is
// cleared first when the sample requires it and updated with the gold
// outcomes afterwards.
func SampleEvents(sample corpus.Sample, g Generator) ([]Event, error) {
	if sample.ResetAdaptiveState {
		g.ClearAdaptiveData()
	}

	outcomes, err := span.Encode(sample.Spans, len(sample.Tokens))
	if err != nil {
		return nil, err
	}

	events := make([]Event, len(sample.Tokens))
	for i, tok := range sample.Tokens {
		events[i] = Event{
			Position: i,
			Token:    tok,
			Outcome:  outcomes[i],
			Features: g.Generate(nil, sample.Tokens, i, outcomes[:i]),
		}
	}

	g.UpdateAdaptiveData(sample.Tokens, outcomes)
	return events, nil
}
