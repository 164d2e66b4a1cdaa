package corpus

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/ulikunitz/xz"

	"github.com/cognicore/nerc/pkg/nerc/internalerr"
)

// maxLineSize bounds a single corpus line
const maxLineSize = 1 << 20

// LineSource produces an ordered sequence of text lines.
// Read returns io.EOF once the source is exhausted; an empty line is
// returned as "" with a nil error.
type LineSource interface {
	Read() (string, error)
	Reset() error
	Close() error
}

// SliceSource serves lines from memory
type SliceSource struct {
	lines  []string
	pos    int
	closed bool
}

// NewSliceSource creates a source over the given lines
func NewSliceSource(lines []string) *SliceSource {
	return &SliceSource{lines: lines}
}

// NewStringSource splits text on newlines. A single trailing newline does
// not produce an extra empty line.
func NewStringSource(text string) *SliceSource {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return NewSliceSource(nil)
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return NewSliceSource(lines)
}

func (s *SliceSource) Read() (string, error) {
	if s.closed {
		return "", internalerr.ErrClosed
	}
	if s.pos >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.pos]
	s.pos++
	return line, nil
}

func (s *SliceSource) Reset() error {
	if s.closed {
		return internalerr.ErrClosed
	}
	s.pos = 0
	return nil
}

func (s *SliceSource) Close() error {
	s.closed = true
	return nil
}

// FileSource reads lines from a file. Files ending in .xz are decoded with
// xz, files ending in .sz or .snappy with the snappy framing format.
type FileSource struct {
	path    string
	file    *os.File
	scanner *bufio.Scanner
}

// OpenFile opens path as a line source
func OpenFile(path string) (*FileSource, error) {
	s := &FileSource{path: path}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileSource) open() error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}

	r, err := decompress(s.path, f)
	if err != nil {
		f.Close()
		return err
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	s.file = f
	s.scanner = scanner
	return nil
}

func decompress(path string, r io.Reader) (io.Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xz":
		return xz.NewReader(bufio.NewReader(r))
	case ".sz", ".snappy":
		return snappy.NewReader(r), nil
	default:
		return r, nil
	}
}

// Path returns the file the source reads from
func (s *FileSource) Path() string {
	return s.path
}

func (s *FileSource) Read() (string, error) {
	if s.file == nil {
		return "", internalerr.ErrClosed
	}
	if s.scanner.Scan() {
		return strings.TrimSuffix(s.scanner.Text(), "\r"), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Reset re-opens the file from the beginning
func (s *FileSource) Reset() error {
	if s.file == nil {
		return internalerr.ErrClosed
	}
	if err := s.file.Close(); err != nil {
		return err
	}
	s.file = nil
	return s.open()
}

func (s *FileSource) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.scanner = nil
	return err
}
