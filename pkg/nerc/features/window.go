package features

import "strconv"

// WindowGenerator runs an inner generator over the current token and its
// neighbours. Features of the token k positions back are prefixed with
// p<k>, features of the token k positions ahead with n<k>. Positions
// outside the sentence are skipped.
type WindowGenerator struct {
	inner   Generator
	prev    int
	next    int
	scratch []string
}

// NewWindowGenerator wraps inner with a [-prev, +next] window
func NewWindowGenerator(inner Generator, prev, next int) *WindowGenerator {
	return &WindowGenerator{inner: inner, prev: prev, next: next}
}

func (w *WindowGenerator) Generate(dst []string, tokens []string, index int, previousOutcomes []string) []string {
	dst = w.inner.Generate(dst, tokens, index, previousOutcomes)

	for k := 1; k <= w.prev; k++ {
		if index-k < 0 {
			break
		}
		dst = w.prefixed(dst, "p"+strconv.Itoa(k), tokens, index-k, previousOutcomes)
	}

	for k := 1; k <= w.next; k++ {
		if index+k >= len(tokens) {
			break
		}
		dst = w.prefixed(dst, "n"+strconv.Itoa(k), tokens, index+k, previousOutcomes)
	}

	return dst
}

func (w *WindowGenerator) prefixed(dst []string, prefix string, tokens []string, index int, previousOutcomes []string) []string {
	w.scratch = w.inner.Generate(w.scratch[:0], tokens, index, previousOutcomes)
	for _, f := range w.scratch {
		dst = append(dst, prefix+f)
	}
	return dst
}

func (w *WindowGenerator) UpdateAdaptiveData(tokens, outcomes []string) {
	Update(w.inner, tokens, outcomes)
}

func (w *WindowGenerator) ClearAdaptiveData() {
	Clear(w.inner)
}
