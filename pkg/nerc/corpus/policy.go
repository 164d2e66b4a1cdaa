package corpus

import (
	"sort"
	"strings"
)

// Policy maps a language code to whether adaptive feature state must be
// cleared after every sentence. Corpora without document boundaries
// (GermEval for German, Egunkaria for Basque, Evalita for Italian) reset
// every sentence; CoNLL 2002/2003 corpora do not.
//
// A Policy is immutable once built and safe to share.
type Policy struct {
	reset map[string]bool
}

var defaultResets = map[string]bool{
	"de": true,
	"eu": true,
	"it": true,
	"en": false,
	"es": false,
	"nl": false,
}

// DefaultPolicy returns the built-in language table
func DefaultPolicy() Policy {
	return NewPolicy(nil)
}

// NewPolicy returns the built-in table with overrides applied on top
func NewPolicy(overrides map[string]bool) Policy {
	reset := make(map[string]bool, len(defaultResets)+len(overrides))
	for lang, v := range defaultResets {
		reset[lang] = v
	}
	for lang, v := range overrides {
		reset[strings.ToLower(lang)] = v
	}
	return Policy{reset: reset}
}

// ResetEverySentence reports whether adaptive data is cleared per sentence
// for lang. Unknown languages never reset.
func (p Policy) ResetEverySentence(lang string) bool {
	return p.reset[strings.ToLower(lang)]
}

// Languages returns the configured language codes in sorted order
func (p Policy) Languages() []string {
	langs := make([]string, 0, len(p.reset))
	for lang := range p.reset {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
