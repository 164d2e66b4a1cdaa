// Package span converts per-token BIO tags into typed entity spans and back.
package span

import (
	"fmt"
	"strings"

	"github.com/cognicore/nerc/pkg/nerc/internalerr"
)

// Tag prefixes and the outside tag
const (
	BeginPrefix  = "B-"
	InsidePrefix = "I-"
	Outside      = "O"
)

// Span is a half-open token range [Start, End) labeled with an entity type
type Span struct {
	Start int
	End   int
	Type  string
}

// Len returns the number of tokens covered by the span
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether the two spans share at least one token
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

func (s Span) String() string {
	return fmt.Sprintf("[%d..%d) %s", s.Start, s.End, s.Type)
}

// MalformedTagError reports a tag that is not O, B-<TYPE> or I-<TYPE>
type MalformedTagError struct {
	Tag      string
	Position int
}

func (e *MalformedTagError) Error() string {
	return fmt.Sprintf("invalid tag %q at position %d", e.Tag, e.Position)
}

// Is makes MalformedTagError match internalerr.ErrInvalidInput
func (e *MalformedTagError) Is(target error) bool {
	return target == internalerr.ErrInvalidInput
}

// Decoder turns tag sequences into spans.
//
// An I- tag with no entity open is an orphan. By default it opens a new
// entity as if it were a B- tag; with Strict set it is rejected with a
// MalformedTagError.
type Decoder struct {
	Strict bool
}

// Decode converts tags with the default (lenient) decoder
func Decode(tags []string) ([]Span, error) {
	return Decoder{}.Decode(tags)
}

// Decode converts a per-token tag sequence into non-overlapping spans
// ordered by Start. The type of each span comes from its opening tag.
func (d Decoder) Decode(tags []string) ([]Span, error) {
	var spans []Span
	begin, end := -1, -1

	closeOpen := func() {
		if begin != -1 {
			spans = append(spans, Span{Start: begin, End: end, Type: tags[begin][2:]})
			begin, end = -1, -1
		}
	}

	for i, tag := range tags {
		switch {
		case strings.HasPrefix(tag, BeginPrefix):
			if len(tag) == len(BeginPrefix) {
				return nil, &MalformedTagError{Tag: tag, Position: i}
			}
			closeOpen()
			begin, end = i, i+1
		case strings.HasPrefix(tag, InsidePrefix):
			if len(tag) == len(InsidePrefix) {
				return nil, &MalformedTagError{Tag: tag, Position: i}
			}
			if begin == -1 {
				if d.Strict {
					return nil, &MalformedTagError{Tag: tag, Position: i}
				}
				begin = i
			}
			end = i + 1
		case tag == Outside:
			closeOpen()
		default:
			return nil, &MalformedTagError{Tag: tag, Position: i}
		}
	}
	closeOpen()

	return spans, nil
}

// Encode renders spans as BIO tags over a sentence of the given length.
// Spans must be non-empty, inside [0, length) and must not overlap.
func Encode(spans []Span, length int) ([]string, error) {
	tags := make([]string, length)
	for i := range tags {
		tags[i] = Outside
	}

	for _, s := range spans {
		if s.Start < 0 || s.End > length || s.Start >= s.End {
			return nil, fmt.Errorf("span %v outside sentence of %d tokens: %w", s, length, internalerr.ErrInvalidInput)
		}
		if s.Type == "" {
			return nil, fmt.Errorf("span %v has no type: %w", s, internalerr.ErrInvalidInput)
		}
		for i := s.Start; i < s.End; i++ {
			if tags[i] != Outside {
				return nil, fmt.Errorf("span %v overlaps another span: %w", s, internalerr.ErrInvalidInput)
			}
			if i == s.Start {
				tags[i] = BeginPrefix + s.Type
			} else {
				tags[i] = InsidePrefix + s.Type
			}
		}
	}

	return tags, nil
}

// Types returns the distinct entity types of the spans in first-seen order
func Types(spans []Span) []string {
	seen := make(map[string]struct{}, len(spans))
	var types []string
	for _, s := range spans {
		if _, ok := seen[s.Type]; ok {
			continue
		}
		seen[s.Type] = struct{}{}
		types = append(types, s.Type)
	}
	return types
}
