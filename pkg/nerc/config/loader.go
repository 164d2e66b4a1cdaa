package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/nerc/pkg/nerc/corpus"
	"github.com/cognicore/nerc/pkg/nerc/features"
	"github.com/cognicore/nerc/pkg/nerc/internalerr"
	"github.com/cognicore/nerc/pkg/nerc/span"
)

// Loader loads a parameters file and the resources it names
type Loader struct {
	ParamsPath string
	// Language overrides the language of the parameters file when set
	Language string
}

// Components holds everything a run needs, loaded once and read-only
type Components struct {
	Params      Params
	Policy      corpus.Policy
	Resources   features.Resources
	Fingerprint string
}

// Load reads the parameters file (defaults when ParamsPath is empty) and
// loads dictionaries and cluster lexicons
func (l *Loader) Load() (*Components, error) {
	params := DefaultParams()
	if l.ParamsPath != "" {
		p, err := readParams(l.ParamsPath)
		if err != nil {
			return nil, fmt.Errorf("load params: %w", err)
		}
		params = *p
	}

	if l.Language != "" {
		params.Language = l.Language
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("load params: %w", err)
	}

	comp := &Components{
		Params: params,
		Policy: corpus.NewPolicy(params.ResetPolicy),
	}

	for _, r := range params.Dictionaries {
		d, err := loadDictionary(r)
		if err != nil {
			return nil, fmt.Errorf("load dictionary: %w", err)
		}
		comp.Resources.Dictionaries = append(comp.Resources.Dictionaries, d)
	}

	for _, r := range params.Clusters {
		c, err := loadClusters(r)
		if err != nil {
			return nil, fmt.Errorf("load clusters: %w", err)
		}
		comp.Resources.Clusters = append(comp.Resources.Clusters, c)
	}

	fp, err := Fingerprint(params.Features, params.Language, comp.ResetAdaptiveState())
	if err != nil {
		return nil, err
	}
	comp.Fingerprint = fp

	return comp, nil
}

func loadDictionary(r Resource) (*features.Dictionary, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return features.LoadDictionary(r.name(), f)
}

func loadClusters(r Resource) (*features.ClusterLexicon, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return features.LoadClusterLexicon(r.name(), r.format(), f)
}

// ResetAdaptiveState reports whether the configured language clears
// adaptive data every sentence
func (c *Components) ResetAdaptiveState() bool {
	return c.Policy.ResetEverySentence(c.Params.Language)
}

// ReaderOptions returns the corpus reader options for this configuration
func (c *Components) ReaderOptions() corpus.Options {
	return corpus.Options{
		Language: c.Params.Language,
		Policy:   c.Policy,
		Decoder:  span.Decoder{Strict: c.Params.StrictTags},
	}
}

// NewGenerator builds a fresh generator. Each worker needs its own.
func (c *Components) NewGenerator() (*features.CachedGenerator, error) {
	return features.Build(c.Params.Features, c.Resources)
}

// Fingerprint identifies a feature configuration: the BLAKE3 digest of the
// YAML-encoded descriptor, the language and the reset flag. Runs with equal
// fingerprints produce comparable features.
func Fingerprint(desc features.Descriptor, language string, reset bool) (string, error) {
	data, err := yaml.Marshal(desc)
	if err != nil {
		return "", fmt.Errorf("encode descriptor: %v: %w", err, internalerr.ErrInvalidConfig)
	}

	h := blake3.New()
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(language))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatBool(reset)))

	return hex.EncodeToString(h.Sum(nil)), nil
}
