// Package source holds source files and the positions diagnostics point at.
package source

import (
	"fmt"
	"os"
)

// Pos is a point in a file. Line and Column are 1-based, Offset is a byte offset.
type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) Before(o Pos) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// Span is a half-open range [Start, End) in one file.
type Span struct {
	File  string
	Start Pos
	End   Pos
}

// String renders the start of the span as file:line:col.
func (s Span) String() string {
	if s.File == "" {
		return fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Start.Line, s.Start.Column)
}

func (s Span) IsValid() bool {
	return s.Start.IsValid()
}

// Contains reports whether o lies entirely inside s.
func (s Span) Contains(o Span) bool {
	if s.File != o.File || !s.IsValid() || !o.IsValid() {
		return false
	}
	return s.Start.Offset <= o.Start.Offset && o.End.Offset <= s.End.Offset
}

// Join returns the smallest span covering both a and b.
func Join(a, b Span) Span {
	if !a.IsValid() {
		return b
	}
	if !b.IsValid() {
		return a
	}
	out := a
	if b.Start.Offset < out.Start.Offset {
		out.Start = b.Start
	}
	if b.End.Offset > out.End.Offset {
		out.End = b.End
	}
	return out
}

// File is one unit of source text.
type File struct {
	Name    string
	Content []byte
}

// ReadFile loads a file from disk.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return File{Name: path, Content: data}, nil
}

// Line returns the text of the 1-based line n without its newline.
func (f File) Line(n int) string {
	if n < 1 {
		return ""
	}
	line := 1
	start := 0
	for i, b := range f.Content {
		if b != '\n' {
			continue
		}
		if line == n {
			return string(f.Content[start:i])
		}
		line++
		start = i + 1
	}
	if line == n {
		return string(f.Content[start:])
	}
	return ""
}
