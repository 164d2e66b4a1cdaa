package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/nerc/pkg/nerc/features"
	"github.com/cognicore/nerc/pkg/nerc/internalerr"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoaderNoParams(t *testing.T) {
	loader := Loader{Language: "eu"}

	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Loader with only a language should succeed: %v", err)
	}

	if comp.Params.CorpusFormat != FormatCoNLL02 {
		t.Errorf("Expected default corpus format, got %q", comp.Params.CorpusFormat)
	}
	if comp.Params.BeamSize != DefaultBeamSize {
		t.Errorf("Expected default beamsize, got %d", comp.Params.BeamSize)
	}
	if !comp.ResetAdaptiveState() {
		t.Error("Basque should reset adaptive state every sentence")
	}
	if comp.Fingerprint == "" {
		t.Error("Fingerprint should be set")
	}

	g, err := comp.NewGenerator()
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	if len(g.Generators()) == 0 {
		t.Error("Default generator should have extractors")
	}
}

func TestLoaderMissingLanguage(t *testing.T) {
	_, err := (&Loader{}).Load()
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoaderNonExistentParams(t *testing.T) {
	_, err := (&Loader{ParamsPath: "/nonexistent/params.yaml"}).Load()
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}

func TestLoaderValidFiles(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, tmpDir, "gazetteer.txt", "Donostia\tLOC\nReal Sociedad\tORG\n")
	writeFile(t, tmpDir, "brown.txt", "0010110\tdonostia\t30\n")
	writeFile(t, tmpDir, "w2v.yaml", "donostia: c12\n")

	params := writeFile(t, tmpDir, "params.yaml", `
language: es
train_set: train.conll
beamsize: 5
strict_tags: true
reset_policy:
  ES: true
features:
  window: "1:1"
  char_ngram: false
dictionaries:
  - path: gazetteer.txt
clusters:
  - name: brown
    path: brown.txt
    format: brown
  - path: w2v.yaml
`)

	comp, err := (&Loader{ParamsPath: params}).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if comp.Params.Language != "es" || comp.Params.BeamSize != 5 {
		t.Errorf("Unexpected params %+v", comp.Params)
	}
	if comp.Params.Features.Window != (features.Window{Prev: 1, Next: 1}) {
		t.Errorf("Unexpected window %+v", comp.Params.Features.Window)
	}
	if !comp.Params.Features.Token {
		t.Error("Unset descriptor fields should keep their defaults")
	}
	if !comp.ResetAdaptiveState() {
		t.Error("Override should make es reset every sentence")
	}
	if !comp.ReaderOptions().Decoder.Strict {
		t.Error("strict_tags should select the strict decoder")
	}

	if len(comp.Resources.Dictionaries) != 1 || comp.Resources.Dictionaries[0].Name() != "gazetteer" {
		t.Fatalf("Unexpected dictionaries %+v", comp.Resources.Dictionaries)
	}
	if len(comp.Resources.Clusters) != 2 {
		t.Fatalf("Expected 2 cluster lexicons, got %d", len(comp.Resources.Clusters))
	}
	if comp.Resources.Clusters[1].Name() != "w2v" {
		t.Errorf("Expected name from file, got %q", comp.Resources.Clusters[1].Name())
	}

	g, err := comp.NewGenerator()
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	got := g.Generate(nil, []string{"Donostia"}, 0, nil)
	for _, want := range []string{"dict:gazetteer=B-LOC", "brown=0010", "w2v=c12"} {
		found := false
		for _, f := range got {
			if f == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Missing %q in %v", want, got)
		}
	}
}

func TestLoaderLanguageOverride(t *testing.T) {
	params := writeFile(t, t.TempDir(), "params.yaml", "beamsize: 2\n")

	comp, err := (&Loader{ParamsPath: params, Language: "de"}).Load()
	if err != nil {
		t.Fatalf("Language override should satisfy the required field: %v", err)
	}
	if comp.Params.Language != "de" || comp.Params.BeamSize != 2 {
		t.Errorf("Unexpected params %+v", comp.Params)
	}
}

func TestLoaderMissingResource(t *testing.T) {
	params := writeFile(t, t.TempDir(), "params.yaml", `
language: en
dictionaries:
  - name: gaz
    path: missing.txt
`)

	_, err := (&Loader{ParamsPath: params}).Load()
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}

func TestLoadParamsInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"format.yaml":  "language: en\ncorpus_format: conllu\n",
		"beam.yaml":    "language: en\nbeamsize: 0\n",
		"window.yaml":  "language: en\nfeatures:\n  window: \"-1\"\n",
		"syntax.yaml":  "language: [\n",
		"nopath.yaml":  "language: en\nclusters:\n  - name: x\n",
		"ngrams.yaml":  "language: en\nfeatures:\n  char_ngram_range: 5:2\n",
		"nolang.yaml":  "beamsize: 3\n",
		"affixes.yaml": "language: en\nfeatures:\n  prefix: -1\n",
	}

	for name, content := range cases {
		path := writeFile(t, dir, name, content)
		if _, err := LoadParams(path); !errors.Is(err, internalerr.ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestFingerprint(t *testing.T) {
	desc := features.DefaultDescriptor()

	a, err := Fingerprint(desc, "en", false)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Fingerprint(desc, "en", false)
	if a != b {
		t.Error("Fingerprint should be stable")
	}
	if len(a) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(a))
	}

	if c, _ := Fingerprint(desc, "en", true); c == a {
		t.Error("Reset flag should change the fingerprint")
	}
	if c, _ := Fingerprint(desc, "nl", false); c == a {
		t.Error("Language should change the fingerprint")
	}

	desc.Suffix = 3
	if c, _ := Fingerprint(desc, "en", false); c == a {
		t.Error("Descriptor should change the fingerprint")
	}
}
