// Package features generates the per-token feature strings consumed by a
// sequence tagging model.
//
// Every extractor implements Generator. Extractors that remember data
// across sentences also implement Adaptive. The extractors for one run are
// composed into a CachedGenerator, which is what training and tagging use.
//
// Generators are not safe for concurrent use. Each worker builds its own.
package features

import "github.com/cespare/xxhash"

const sep = '\xff'

// Generator appends the features for tokens[index] to dst and returns the
// extended slice. previousOutcomes holds the outcomes already assigned to
// the positions before index in the current pass.
type Generator interface {
	Generate(dst []string, tokens []string, index int, previousOutcomes []string) []string
}

// Adaptive is implemented by generators that keep state across sentences
type Adaptive interface {
	// UpdateAdaptiveData records the outcomes of a finished sentence
	UpdateAdaptiveData(tokens []string, outcomes []string)
	// ClearAdaptiveData forgets everything recorded so far
	ClearAdaptiveData()
}

// Update forwards a finished sentence to g if it is adaptive
func Update(g Generator, tokens, outcomes []string) {
	if a, ok := g.(Adaptive); ok {
		a.UpdateAdaptiveData(tokens, outcomes)
	}
}

// Clear resets the adaptive state of g, if any
func Clear(g Generator) {
	if a, ok := g.(Adaptive); ok {
		a.ClearAdaptiveData()
	}
}

// sequence identifies a sentence by its length and an xxhash of its
// tokens, so a buffer refilled in place counts as a new sentence
type sequence struct {
	set  bool
	n    int
	hash uint64
}

// sequenceOf computes the identity of tokens, reusing buf as scratch space
func sequenceOf(tokens []string, buf []byte) (sequence, []byte) {
	buf = buf[:0]
	for _, t := range tokens {
		buf = append(buf, t...)
		buf = append(buf, sep)
	}
	return sequence{set: true, n: len(tokens), hash: xxhash.Sum64(buf)}, buf
}

const bos = "bos"

// outcomeAt returns the outcome at position i, "bos" before the sentence
// start, and false if i has not been assigned yet
func outcomeAt(previousOutcomes []string, i int) (string, bool) {
	if i < 0 {
		return bos, true
	}
	if i >= len(previousOutcomes) {
		return "", false
	}
	return previousOutcomes[i], true
}
