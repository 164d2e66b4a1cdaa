package features

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/nerc/pkg/nerc/internalerr"
)

// DefaultWindow is the default context window on each side
const DefaultWindow = 2

// Window is a [-Prev, +Next] context window. In YAML it is written either
// as "2:2" or as a mapping with prev and next keys.
type Window struct {
	Prev int `yaml:"prev"`
	Next int `yaml:"next"`
}

func (w *Window) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		a, b, err := parsePair(value.Value)
		if err != nil {
			return fmt.Errorf("window %q: %w", value.Value, err)
		}
		w.Prev, w.Next = a, b
		return nil
	}

	raw := struct {
		Prev int `yaml:"prev"`
		Next int `yaml:"next"`
	}{w.Prev, w.Next}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	w.Prev, w.Next = raw.Prev, raw.Next
	return nil
}

func (w Window) MarshalYAML() (interface{}, error) {
	return fmt.Sprintf("%d:%d", w.Prev, w.Next), nil
}

// Range is an inclusive [Min, Max] length range, written "2:5" in YAML
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

func (r *Range) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		a, b, err := parsePair(value.Value)
		if err != nil {
			return fmt.Errorf("range %q: %w", value.Value, err)
		}
		r.Min, r.Max = a, b
		return nil
	}

	raw := struct {
		Min int `yaml:"min"`
		Max int `yaml:"max"`
	}{r.Min, r.Max}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	r.Min, r.Max = raw.Min, raw.Max
	return nil
}

func (r Range) MarshalYAML() (interface{}, error) {
	return fmt.Sprintf("%d:%d", r.Min, r.Max), nil
}

// parsePair reads "a:b", "a b" or "a-b". The dash form is only tried for
// unsigned input, so "-1:2" keeps its sign and fails validation.
func parsePair(s string) (int, int, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ':' || r == ' '
	})
	if len(parts) == 1 && !strings.HasPrefix(parts[0], "-") {
		if a, b, ok := strings.Cut(parts[0], "-"); ok {
			parts = []string{a, b}
		}
	}
	if len(parts) != 2 {
		return 0, 0, errors.New("expected two numbers")
	}
	a, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// Descriptor selects and parameterizes the extractors of a generator
type Descriptor struct {
	Window          Window `yaml:"window"`
	Token           bool   `yaml:"token"`
	TokenClass      bool   `yaml:"token_class"`
	WordAndClass    bool   `yaml:"word_and_class"`
	OutcomePrior    bool   `yaml:"outcome_prior"`
	PreviousMap     bool   `yaml:"previous_map"`
	PreviousOutcome bool   `yaml:"previous_outcome"`
	OutcomeBigram   bool   `yaml:"outcome_bigram"`
	TokenBigram     bool   `yaml:"token_bigram"`
	SentenceBegin   bool   `yaml:"sentence_begin"`
	SentenceEnd     bool   `yaml:"sentence_end"`
	Prefix          int    `yaml:"prefix"`
	Suffix          int    `yaml:"suffix"`
	CharNgram       bool   `yaml:"char_ngram"`
	CharNgramRange  Range  `yaml:"char_ngram_range"`
	Dictionary      bool   `yaml:"dictionary"`
	Clusters        bool   `yaml:"clusters"`
}

// DefaultDescriptor returns the baseline configuration: a 2:2 window over
// tokens and token classes, outcome prior, previous map, previous outcome,
// token bigrams, sentence begin, 4-character affixes and 2..5 n-grams.
// Dictionary and cluster features are on, but only fire when resources
// are supplied.
func DefaultDescriptor() Descriptor {
	return Descriptor{
		Window:          Window{Prev: DefaultWindow, Next: DefaultWindow},
		Token:           true,
		TokenClass:      true,
		WordAndClass:    true,
		OutcomePrior:    true,
		PreviousMap:     true,
		PreviousOutcome: true,
		TokenBigram:     true,
		SentenceBegin:   true,
		Prefix:          DefaultAffixLength,
		Suffix:          DefaultAffixLength,
		CharNgram:       true,
		CharNgramRange:  Range{Min: DefaultMinCharNgram, Max: DefaultMaxCharNgram},
		Dictionary:      true,
		Clusters:        true,
	}
}

// Validate checks the numeric parameters
func (d Descriptor) Validate() error {
	if d.Window.Prev < 0 || d.Window.Next < 0 {
		return fmt.Errorf("window %d:%d must not be negative: %w", d.Window.Prev, d.Window.Next, internalerr.ErrInvalidConfig)
	}
	if d.Prefix < 0 || d.Suffix < 0 {
		return fmt.Errorf("affix lengths must not be negative: %w", internalerr.ErrInvalidConfig)
	}
	if d.CharNgram && (d.CharNgramRange.Min < 1 || d.CharNgramRange.Max < d.CharNgramRange.Min) {
		return fmt.Errorf("char n-gram range %d:%d is invalid: %w", d.CharNgramRange.Min, d.CharNgramRange.Max, internalerr.ErrInvalidConfig)
	}
	return nil
}

// Resources are the lexical resources shared by generators built from the
// same configuration
type Resources struct {
	Dictionaries []*Dictionary
	Clusters     []*ClusterLexicon
}

// Build creates a new generator for desc. Extractors are always added in
// the same order so that equal descriptors yield identical features.
func Build(desc Descriptor, res Resources) (*CachedGenerator, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	var gens []Generator
	if desc.Token {
		gens = append(gens, NewWindowGenerator(NewTokenGenerator(), desc.Window.Prev, desc.Window.Next))
	}
	if desc.TokenClass {
		gens = append(gens, NewWindowGenerator(NewTokenClassGenerator(desc.WordAndClass), desc.Window.Prev, desc.Window.Next))
	}
	if desc.OutcomePrior {
		gens = append(gens, NewOutcomePriorGenerator())
	}
	if desc.PreviousMap {
		gens = append(gens, NewPreviousMapGenerator())
	}
	if desc.PreviousOutcome {
		gens = append(gens, NewPreviousOutcomeGenerator(desc.OutcomeBigram))
	}
	if desc.TokenBigram {
		gens = append(gens, NewTokenBigramGenerator())
	}
	if desc.SentenceBegin || desc.SentenceEnd {
		gens = append(gens, NewSentenceGenerator(desc.SentenceBegin, desc.SentenceEnd))
	}
	if desc.Prefix > 0 {
		gens = append(gens, NewPrefixGenerator(desc.Prefix))
	}
	if desc.Suffix > 0 {
		gens = append(gens, NewSuffixGenerator(desc.Suffix))
	}
	if desc.CharNgram {
		gens = append(gens, NewCharNgramGenerator(desc.CharNgramRange.Min, desc.CharNgramRange.Max))
	}
	if desc.Dictionary {
		for _, d := range res.Dictionaries {
			gens = append(gens, NewDictionaryGenerator(d))
		}
	}
	if desc.Clusters {
		for _, c := range res.Clusters {
			gens = append(gens, NewClusterGenerator(c))
		}
	}

	if len(gens) == 0 {
		return nil, fmt.Errorf("no feature extractors enabled: %w", internalerr.ErrInvalidConfig)
	}

	return NewCachedGenerator(gens...), nil
}
