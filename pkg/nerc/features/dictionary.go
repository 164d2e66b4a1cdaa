package features

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	iradix "github.com/hashicorp/go-immutable-radix"

	"github.com/cognicore/nerc/pkg/nerc/internalerr"
)

// Dictionary is a gazetteer of multi-token phrases labeled with an entity
// type. Phrases are stored normalized, tokens joined by a single space.
// A Dictionary is immutable and may be shared between generators.
type Dictionary struct {
	name   string
	tree   *iradix.Tree
	maxLen int
}

// NewDictionary builds a dictionary from phrase -> type entries
func NewDictionary(name string, entries map[string]string) *Dictionary {
	txn := iradix.New().Txn()
	maxLen := 0
	for phrase, typ := range entries {
		words := strings.Fields(phrase)
		if len(words) == 0 || typ == "" {
			continue
		}
		for i, w := range words {
			words[i] = Normalize(w)
		}
		txn.Insert([]byte(strings.Join(words, " ")), typ)
		if len(words) > maxLen {
			maxLen = len(words)
		}
	}
	return &Dictionary{name: name, tree: txn.Commit(), maxLen: maxLen}
}

// LoadDictionary reads "phrase<TAB>TYPE" lines. Blank lines and lines
// starting with # are ignored.
func LoadDictionary(name string, r io.Reader) (*Dictionary, error) {
	entries := make(map[string]string)
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return nil, fmt.Errorf("dictionary %s line %d: expected phrase<TAB>type: %w", name, lineNumber, internalerr.ErrInvalidInput)
		}
		entries[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewDictionary(name, entries), nil
}

// Name returns the dictionary name used in feature strings
func (d *Dictionary) Name() string {
	return d.name
}

// Len returns the number of phrases
func (d *Dictionary) Len() int {
	return d.tree.Len()
}

// Lookup returns the type of a phrase given as tokens
func (d *Dictionary) Lookup(tokens []string) (string, bool) {
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = Normalize(t)
	}
	v, ok := d.tree.Get([]byte(strings.Join(words, " ")))
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Match tags the sentence with BIO tags for the longest dictionary phrases,
// scanning left to right. Unmatched tokens get "".
func (d *Dictionary) Match(tokens []string) []string {
	tags := make([]string, len(tokens))
	var key []byte

	i := 0
	for i < len(tokens) {
		matchLen, matchType := 0, ""
		key = key[:0]

		for n := 1; n <= d.maxLen && i+n <= len(tokens); n++ {
			if n > 1 {
				key = append(key, ' ')
			}
			key = append(key, Normalize(tokens[i+n-1])...)
			if v, ok := d.tree.Get(key); ok {
				matchLen, matchType = n, v.(string)
			}
			if !d.hasPrefix(key) {
				break
			}
		}

		if matchLen == 0 {
			i++
			continue
		}
		tags[i] = "B-" + matchType
		for j := i + 1; j < i+matchLen; j++ {
			tags[j] = "I-" + matchType
		}
		i += matchLen
	}

	return tags
}

// hasPrefix reports whether some phrase continues past prefix
func (d *Dictionary) hasPrefix(prefix []byte) bool {
	it := d.tree.Root().Iterator()
	it.SeekPrefix(append(prefix, ' '))
	_, _, ok := it.Next()
	return ok
}

// DictionaryGenerator emits dict:<name>=<B-TYPE|I-TYPE> for tokens covered
// by a dictionary phrase
type DictionaryGenerator struct {
	dict *Dictionary
	seq  sequence
	buf  []byte
	tags []string
}

// NewDictionaryGenerator creates a gazetteer extractor
func NewDictionaryGenerator(dict *Dictionary) *DictionaryGenerator {
	return &DictionaryGenerator{dict: dict}
}

func (g *DictionaryGenerator) Generate(dst []string, tokens []string, index int, _ []string) []string {
	var seq sequence
	seq, g.buf = sequenceOf(tokens, g.buf)
	if seq != g.seq {
		g.seq = seq
		g.tags = g.dict.Match(tokens)
	}
	if tag := g.tags[index]; tag != "" {
		dst = append(dst, "dict:"+g.dict.name+"="+tag)
	}
	return dst
}

// UpdateAdaptiveData drops the match memo of the finished sentence
func (g *DictionaryGenerator) UpdateAdaptiveData(_, _ []string) {
	g.seq, g.tags = sequence{}, nil
}

func (g *DictionaryGenerator) ClearAdaptiveData() {
	g.seq, g.tags = sequence{}, nil
}
