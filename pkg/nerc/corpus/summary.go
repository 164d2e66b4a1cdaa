package corpus

import "sort"

// Summary holds corpus-level counts
type Summary struct {
	Sentences int
	Tokens    int
	Entities  int
	ByType    map[string]int
}

// TypeCount is an entity type with its number of spans
type TypeCount struct {
	Type  string
	Count int
}

// Summarize counts sentences, tokens and entity spans per type
func Summarize(samples []Sample) Summary {
	s := Summary{ByType: make(map[string]int)}
	for _, sample := range samples {
		s.Sentences++
		s.Tokens += len(sample.Tokens)
		s.Entities += len(sample.Spans)
		for _, sp := range sample.Spans {
			s.ByType[sp.Type]++
		}
	}
	return s
}

// Types returns entity types by descending count, ties broken by name
func (s Summary) Types() []TypeCount {
	counts := make([]TypeCount, 0, len(s.ByType))
	for t, c := range s.ByType {
		counts = append(counts, TypeCount{Type: t, Count: c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Type < counts[j].Type
	})
	return counts
}
