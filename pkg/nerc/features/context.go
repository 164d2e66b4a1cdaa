package features

// TokenBigramGenerator emits the token paired with its neighbours, both as
// words and as token classes
type TokenBigramGenerator struct{}

// NewTokenBigramGenerator creates a token bigram extractor
func NewTokenBigramGenerator() *TokenBigramGenerator {
	return &TokenBigramGenerator{}
}

func (g *TokenBigramGenerator) Generate(dst []string, tokens []string, index int, _ []string) []string {
	w := Normalize(tokens[index])
	wc := TokenClass(tokens[index])

	if index > 0 {
		pw := Normalize(tokens[index-1])
		dst = append(dst,
			"pw,w="+pw+","+w,
			"pwc,wc="+TokenClass(tokens[index-1])+","+wc,
		)
	}
	if index+1 < len(tokens) {
		nw := Normalize(tokens[index+1])
		dst = append(dst,
			"w,nw="+w+","+nw,
			"wc,nc="+wc+","+TokenClass(tokens[index+1]),
		)
	}
	return dst
}

// Sentence boundary features
const (
	SentenceBegin = "S=begin"
	SentenceEnd   = "S=end"
)

// SentenceGenerator marks the first and/or last token of a sentence
type SentenceGenerator struct {
	begin bool
	end   bool
}

// NewSentenceGenerator creates a sentence position extractor
func NewSentenceGenerator(begin, end bool) *SentenceGenerator {
	return &SentenceGenerator{begin: begin, end: end}
}

func (g *SentenceGenerator) Generate(dst []string, tokens []string, index int, _ []string) []string {
	if g.begin && index == 0 {
		dst = append(dst, SentenceBegin)
	}
	if g.end && index == len(tokens)-1 {
		dst = append(dst, SentenceEnd)
	}
	return dst
}
