package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/nerc/pkg/nerc/features"
	"github.com/cognicore/nerc/pkg/nerc/internalerr"
)

// FormatCoNLL02 is the two-column token<TAB>tag corpus format
const FormatCoNLL02 = "conll02"

// DefaultBeamSize is the beam width recorded for decoders that use one
const DefaultBeamSize = 3

// Params is the parameters file of a training or tagging run
type Params struct {
	Language     string              `yaml:"language"`
	TrainSet     string              `yaml:"train_set"`
	TestSet      string              `yaml:"test_set"`
	OutputModel  string              `yaml:"output_model"`
	CorpusFormat string              `yaml:"corpus_format"`
	BeamSize     int                 `yaml:"beamsize"`
	StrictTags   bool                `yaml:"strict_tags"`
	ResetPolicy  map[string]bool     `yaml:"reset_policy"`
	Features     features.Descriptor `yaml:"features"`
	Dictionaries []Resource          `yaml:"dictionaries"`
	Clusters     []Resource          `yaml:"clusters"`
}

// Resource points at a dictionary or cluster lexicon on disk
type Resource struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// DefaultParams returns parameters with every optional field at its default
func DefaultParams() Params {
	return Params{
		CorpusFormat: FormatCoNLL02,
		BeamSize:     DefaultBeamSize,
		Features:     features.DefaultDescriptor(),
	}
}

// ParseParams decodes a parameters file. Fields missing from data keep
// their defaults.
func ParseParams(data []byte) (*Params, error) {
	p := DefaultParams()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse params: %v: %w", err, internalerr.ErrInvalidConfig)
	}
	return &p, nil
}

// LoadParams reads and validates a parameters file. Relative resource
// paths are resolved against the file's directory.
func LoadParams(path string) (*Params, error) {
	p, err := readParams(path)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func readParams(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	p, err := ParseParams(data)
	if err != nil {
		return nil, err
	}
	p.resolve(filepath.Dir(path))
	return p, nil
}

func (p *Params) resolve(dir string) {
	for i := range p.Dictionaries {
		p.Dictionaries[i].Path = resolvePath(dir, p.Dictionaries[i].Path)
	}
	for i := range p.Clusters {
		p.Clusters[i].Path = resolvePath(dir, p.Clusters[i].Path)
	}
}

func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Validate checks required fields and value ranges
func (p *Params) Validate() error {
	if strings.TrimSpace(p.Language) == "" {
		return fmt.Errorf("language is required: %w", internalerr.ErrInvalidConfig)
	}
	if p.CorpusFormat != FormatCoNLL02 {
		return fmt.Errorf("corpus format %q is not supported: %w", p.CorpusFormat, internalerr.ErrInvalidConfig)
	}
	if p.BeamSize < 1 {
		return fmt.Errorf("beamsize must be positive, got %d: %w", p.BeamSize, internalerr.ErrInvalidConfig)
	}
	for _, r := range append(append([]Resource{}, p.Dictionaries...), p.Clusters...) {
		if r.Path == "" {
			return fmt.Errorf("resource %q has no path: %w", r.Name, internalerr.ErrInvalidConfig)
		}
	}
	return p.Features.Validate()
}

// name returns the resource name, defaulting to the file name without
// extensions
func (r Resource) name() string {
	if r.Name != "" {
		return r.Name
	}
	base := filepath.Base(r.Path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

// format returns the lexicon format, inferring YAML from the extension
func (r Resource) format() string {
	if r.Format != "" {
		return r.Format
	}
	switch filepath.Ext(r.Path) {
	case ".yaml", ".yml":
		return features.FormatYAML
	}
	return features.FormatClark
}
