package features

// Default character n-gram range
const (
	DefaultMinCharNgram = 2
	DefaultMaxCharNgram = 5
)

// CharNgramGenerator emits every distinct lowercase character n-gram of the
// token with min <= n <= max: ng=<ngram>. N-grams are ordered by length,
// then by position.
type CharNgramGenerator struct {
	min int
	max int
}

// NewCharNgramGenerator creates an n-gram extractor over [min, max]
func NewCharNgramGenerator(min, max int) *CharNgramGenerator {
	if min <= 0 {
		min = DefaultMinCharNgram
	}
	if max < min {
		max = min
	}
	return &CharNgramGenerator{min: min, max: max}
}

func (g *CharNgramGenerator) Generate(dst []string, tokens []string, index int, _ []string) []string {
	runes := []rune(Normalize(tokens[index]))
	seen := make(map[string]struct{})

	for n := g.min; n <= g.max && n <= len(runes); n++ {
		for i := 0; i+n <= len(runes); i++ {
			ngram := string(runes[i : i+n])
			if _, dup := seen[ngram]; dup {
				continue
			}
			seen[ngram] = struct{}{}
			dst = append(dst, "ng="+ngram)
		}
	}

	return dst
}
