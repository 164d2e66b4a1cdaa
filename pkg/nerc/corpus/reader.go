// Package corpus reads two-column token/tag corpora (CoNLL 2002 style) into
// sentence samples.
package corpus

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cognicore/nerc/pkg/nerc/internalerr"
	"github.com/cognicore/nerc/pkg/nerc/span"
)

// Sample is one sentence with its gold entity spans. Samples are handed
// off by value and must not be modified after Read returns them.
type Sample struct {
	Tokens             []string
	Spans              []span.Span
	ResetAdaptiveState bool
}

// Validate checks that every span lies inside the sentence and that spans
// are ordered and non-overlapping
func (s *Sample) Validate() error {
	if len(s.Tokens) == 0 {
		return errors.New("sample has no tokens")
	}

	for i, sp := range s.Spans {
		if sp.Start < 0 || sp.End > len(s.Tokens) || sp.Start >= sp.End {
			return fmt.Errorf("span %v outside sentence of %d tokens: %w", sp, len(s.Tokens), internalerr.ErrInvalidInput)
		}
		if i > 0 && s.Spans[i-1].End > sp.Start {
			return fmt.Errorf("span %v overlaps or precedes %v: %w", sp, s.Spans[i-1], internalerr.ErrInvalidInput)
		}
	}

	return nil
}

// MalformedRecordError reports a data line without exactly two
// tab-separated fields
type MalformedRecordError struct {
	Line       string
	LineNumber int
	Fields     int
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("expected two fields per line, got %d at line %d: %q", e.Fields, e.LineNumber, e.Line)
}

// Is makes MalformedRecordError match internalerr.ErrInvalidInput
func (e *MalformedRecordError) Is(target error) bool {
	return target == internalerr.ErrInvalidInput
}

// SampleReader yields samples until io.EOF
type SampleReader interface {
	Read() (Sample, error)
}

// Options configures a Reader
type Options struct {
	Language string
	Policy   Policy
	Decoder  span.Decoder
}

// Reader turns token<TAB>tag lines into samples, one per sentence.
// A Reader is not safe for concurrent use.
type Reader struct {
	src        LineSource
	decoder    span.Decoder
	reset      bool
	lineNumber int
	closed     bool
}

// NewReader creates a reader over src
func NewReader(src LineSource, opts Options) *Reader {
	return &Reader{
		src:     src,
		decoder: opts.Decoder,
		reset:   opts.Policy.ResetEverySentence(opts.Language),
	}
}

// Read returns the next sentence, or io.EOF when the source is exhausted.
// Runs of blank lines never produce empty samples. Malformed records and
// tags abort the read; errors from the line source are returned as is.
func (r *Reader) Read() (Sample, error) {
	if r.closed {
		return Sample{}, internalerr.ErrClosed
	}

	for {
		var tokens, tags []string
		eof := false

		for {
			line, err := r.src.Read()
			if err == io.EOF {
				eof = true
				break
			}
			if err != nil {
				return Sample{}, err
			}
			r.lineNumber++

			if strings.TrimSpace(line) == "" {
				break
			}

			fields := strings.Split(line, "\t")
			if len(fields) != 2 {
				return Sample{}, &MalformedRecordError{Line: line, LineNumber: r.lineNumber, Fields: len(fields)}
			}
			tokens = append(tokens, fields[0])
			tags = append(tags, fields[1])
		}

		if len(tokens) > 0 {
			spans, err := r.decoder.Decode(tags)
			if err != nil {
				return Sample{}, fmt.Errorf("sentence ending at line %d: %w", r.lineNumber, err)
			}
			return Sample{Tokens: tokens, Spans: spans, ResetAdaptiveState: r.reset}, nil
		}

		if eof {
			return Sample{}, io.EOF
		}
	}
}

// Reset rewinds the underlying source to the first line
func (r *Reader) Reset() error {
	if r.closed {
		return internalerr.ErrClosed
	}
	if err := r.src.Reset(); err != nil {
		return err
	}
	r.lineNumber = 0
	return nil
}

// Close releases the underlying source. Closing twice is a no-op.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.src.Close()
}

// ReadAll drains r into a slice
func ReadAll(r SampleReader) ([]Sample, error) {
	var samples []Sample
	for {
		s, err := r.Read()
		if err == io.EOF {
			return samples, nil
		}
		if err != nil {
			return samples, err
		}
		samples = append(samples, s)
	}
}
