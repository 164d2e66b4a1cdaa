package events

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/nerc/pkg/nerc/corpus"
	"github.com/cognicore/nerc/pkg/nerc/features"
	"github.com/cognicore/nerc/pkg/nerc/internalerr"
	"github.com/cognicore/nerc/pkg/nerc/span"
)

const twoSentences = "Berlin\tB-LOC\nis\tO\nbig\tO\n\nBerlin\tB-LOC\nagain\tO\n"

func newStream(t *testing.T, text, lang string) *Stream {
	t.Helper()
	g, err := features.Build(features.DefaultDescriptor(), features.Resources{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	r := corpus.NewReader(corpus.NewStringSource(text), corpus.Options{
		Language: lang,
		Policy:   corpus.DefaultPolicy(),
	})
	return NewStream(r, g)
}

func hasFeature(fs []string, prefix string) bool {
	for _, f := range fs {
		if strings.HasPrefix(f, prefix) {
			return true
		}
	}
	return false
}

func TestStreamEvents(t *testing.T) {
	s := newStream(t, twoSentences, "en")

	sample, evs, err := s.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if len(evs) != len(sample.Tokens) {
		t.Fatalf("Expected one event per token, got %d", len(evs))
	}

	outcomes := make([]string, len(evs))
	for i, ev := range evs {
		if ev.Position != i || ev.Token != sample.Tokens[i] {
			t.Errorf("Event %d out of place: %+v", i, ev)
		}
		outcomes[i] = ev.Outcome
	}
	if !reflect.DeepEqual(outcomes, []string{"B-LOC", "O", "O"}) {
		t.Errorf("Unexpected outcomes %v", outcomes)
	}

	// the outcome of the previous token is a feature of the next one
	if !hasFeature(evs[1].Features, "po=B-LOC") {
		t.Errorf("Expected po=B-LOC in %v", evs[1].Features)
	}
	if !hasFeature(evs[0].Features, "po=bos") {
		t.Errorf("Expected po=bos in %v", evs[0].Features)
	}

	if _, _, err := s.Next(); err != nil {
		t.Fatalf("Second Next failed: %v", err)
	}
	if _, _, err := s.Next(); err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}
	if s.Samples() != 2 {
		t.Errorf("Expected 2 samples, got %d", s.Samples())
	}
}

func TestStreamAdaptiveResetOff(t *testing.T) {
	s := newStream(t, twoSentences, "en")

	first, _, _ := s.Next()
	if first.ResetAdaptiveState {
		t.Fatal("English should not reset")
	}
	_, evs, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !hasFeature(evs[0].Features, "pd=B-LOC") {
		t.Errorf("Berlin should carry its previous outcome, got %v", evs[0].Features)
	}
}

func TestStreamAdaptiveResetOn(t *testing.T) {
	s := newStream(t, twoSentences, "de")

	first, _, _ := s.Next()
	if !first.ResetAdaptiveState {
		t.Fatal("German should reset")
	}
	_, evs, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if hasFeature(evs[0].Features, "pd=") {
		t.Errorf("Reset should forget previous outcomes, got %v", evs[0].Features)
	}
}

func TestStreamPropagatesErrors(t *testing.T) {
	s := newStream(t, "a\tB-\n", "en")

	_, _, err := s.Next()
	var tagErr *span.MalformedTagError
	if !errors.As(err, &tagErr) {
		t.Fatalf("Expected MalformedTagError, got %v", err)
	}
}

func TestSampleEventsRejectsBadSpans(t *testing.T) {
	g := features.NewCachedGenerator(features.NewTokenGenerator())
	sample := corpus.Sample{
		Tokens: []string{"a"},
		Spans:  []span.Span{{Start: 0, End: 2, Type: "PER"}},
	}
	if _, err := SampleEvents(sample, g); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

// capitalized is a toy model: capitalized words are persons
func capitalized(fs []string) (string, error) {
	upper, cont := false, false
	for _, f := range fs {
		switch f {
		case "wc=ic":
			upper = true
		case "po=B-PER", "po=I-PER":
			cont = true
		}
	}
	switch {
	case upper && cont:
		return "I-PER", nil
	case upper:
		return "B-PER", nil
	}
	return "O", nil
}

func TestSequence(t *testing.T) {
	g, err := features.Build(features.DefaultDescriptor(), features.Resources{})
	if err != nil {
		t.Fatal(err)
	}

	tokens := []string{"met", "John", "Smith", "today"}
	outcomes, err := Sequence(tokens, g, ClassifierFunc(capitalized))
	if err != nil {
		t.Fatalf("Sequence failed: %v", err)
	}
	want := []string{"O", "B-PER", "I-PER", "O"}
	if !reflect.DeepEqual(outcomes, want) {
		t.Errorf("Expected %v, got %v", want, outcomes)
	}

	// predictions become adaptive data
	fs := g.Generate(nil, []string{"John"}, 0, nil)
	if !hasFeature(fs, "pd=B-PER") {
		t.Errorf("Expected pd=B-PER after tagging, got %v", fs)
	}
}

func TestAnnotate(t *testing.T) {
	g, err := features.Build(features.DefaultDescriptor(), features.Resources{})
	if err != nil {
		t.Fatal(err)
	}

	spans, err := Annotate([]string{"John", "Smith", "left"}, g, ClassifierFunc(capitalized), span.Decoder{})
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	want := []span.Span{{Start: 0, End: 2, Type: "PER"}}
	if !reflect.DeepEqual(spans, want) {
		t.Errorf("Expected %v, got %v", want, spans)
	}
}

func TestSequenceClassifierError(t *testing.T) {
	g := features.NewCachedGenerator(features.NewTokenGenerator())
	boom := errors.New("model unavailable")

	_, err := Sequence([]string{"a"}, g, ClassifierFunc(func([]string) (string, error) {
		return "", boom
	}))
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped classifier error, got %v", err)
	}
}
