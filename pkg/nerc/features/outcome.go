package features

// OutcomePriorGenerator emits a constant feature so the model can learn the
// prior distribution of outcomes
type OutcomePriorGenerator struct{}

// PriorFeature is the constant emitted for every token
const PriorFeature = "def"

// NewOutcomePriorGenerator creates a prior extractor
func NewOutcomePriorGenerator() *OutcomePriorGenerator {
	return &OutcomePriorGenerator{}
}

func (g *OutcomePriorGenerator) Generate(dst []string, _ []string, _ int, _ []string) []string {
	return append(dst, PriorFeature)
}

// PreviousOutcomeGenerator emits the outcome of the previous token,
// po=<outcome>, and with bigram enabled the two previous outcomes,
// ppo=<outcome-2>,<outcome-1>. Positions before the sentence are "bos".
type PreviousOutcomeGenerator struct {
	bigram bool
}

// NewPreviousOutcomeGenerator creates a previous-outcome extractor
func NewPreviousOutcomeGenerator(bigram bool) *PreviousOutcomeGenerator {
	return &PreviousOutcomeGenerator{bigram: bigram}
}

func (g *PreviousOutcomeGenerator) Generate(dst []string, _ []string, index int, previousOutcomes []string) []string {
	prev, ok := outcomeAt(previousOutcomes, index-1)
	if !ok {
		return dst
	}
	dst = append(dst, "po="+prev)

	if g.bigram && index > 0 {
		if prev2, ok := outcomeAt(previousOutcomes, index-2); ok {
			dst = append(dst, "ppo="+prev2+","+prev)
		}
	}
	return dst
}

// PreviousMapGenerator remembers the outcome last assigned to each token in
// earlier sentences and emits it: pd=<outcome>. Tokens never seen emit
// nothing.
type PreviousMapGenerator struct {
	previous map[string]string
}

// NewPreviousMapGenerator creates an empty cross-sentence memory
func NewPreviousMapGenerator() *PreviousMapGenerator {
	return &PreviousMapGenerator{previous: make(map[string]string)}
}

func (g *PreviousMapGenerator) Generate(dst []string, tokens []string, index int, _ []string) []string {
	if outcome, ok := g.previous[tokens[index]]; ok {
		dst = append(dst, "pd="+outcome)
	}
	return dst
}

func (g *PreviousMapGenerator) UpdateAdaptiveData(tokens, outcomes []string) {
	for i := 0; i < len(tokens) && i < len(outcomes); i++ {
		g.previous[tokens[i]] = outcomes[i]
	}
}

func (g *PreviousMapGenerator) ClearAdaptiveData() {
	clear(g.previous)
}

// Len returns the number of remembered tokens
func (g *PreviousMapGenerator) Len() int {
	return len(g.previous)
}
