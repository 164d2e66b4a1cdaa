package features

// DefaultAffixLength is the prefix and suffix length used by default
const DefaultAffixLength = 4

// PrefixGenerator emits the first n runes of the token, or the whole
// token when it is shorter: pre=<prefix>
type PrefixGenerator struct {
	length int
}

// NewPrefixGenerator creates a prefix extractor; length <= 0 selects
// DefaultAffixLength
func NewPrefixGenerator(length int) *PrefixGenerator {
	if length <= 0 {
		length = DefaultAffixLength
	}
	return &PrefixGenerator{length: length}
}

func (g *PrefixGenerator) Generate(dst []string, tokens []string, index int, _ []string) []string {
	runes := []rune(tokens[index])
	if len(runes) == 0 {
		return dst
	}
	return append(dst, "pre="+string(runes[:min(g.length, len(runes))]))
}

// SuffixGenerator emits the last n runes of the token, or the whole
// token when it is shorter: suf=<suffix>
type SuffixGenerator struct {
	length int
}

// NewSuffixGenerator creates a suffix extractor; length <= 0 selects
// DefaultAffixLength
func NewSuffixGenerator(length int) *SuffixGenerator {
	if length <= 0 {
		length = DefaultAffixLength
	}
	return &SuffixGenerator{length: length}
}

func (g *SuffixGenerator) Generate(dst []string, tokens []string, index int, _ []string) []string {
	runes := []rune(tokens[index])
	if len(runes) == 0 {
		return dst
	}
	return append(dst, "suf="+string(runes[len(runes)-min(g.length, len(runes)):]))
}
