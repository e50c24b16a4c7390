// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package common holds types shared by every compiler and runtime stage:
// the source text, its location map, and the accumulated diagnostics used
// by the parser, checker, and interpreter.
package common

import (
	"strings"

	"golang.org/x/text/width"
)

// Location is a one-based (line, column) pair. The zero value (0, 0)
// denotes an unknown location.
type Location struct {
	line int
	col  int
}

// NoLocation is returned when a node's position cannot be determined.
var NoLocation = Location{line: 0, col: 0}

// NewLocation creates a Location from a one-based line and column.
func NewLocation(line, col int) Location {
	return Location{line: line, col: col}
}

// Line returns the one-based line number, or 0 if unknown.
func (l Location) Line() int {
	return l.line
}

// Column returns the one-based column number, or 0 if unknown.
func (l Location) Column() int {
	return l.col
}

// IsValid reports whether the location refers to a real position.
func (l Location) IsValid() bool {
	return l != NoLocation
}

// Compare orders locations by line then column, used to sort diagnostics.
func (l Location) Compare(other Location) int {
	if l.line != other.line {
		return l.line - other.line
	}
	return l.col - other.col
}

// Source wraps the original expression text and exposes the byte-offset to
// (line, column) mapping diagnostics need. It is built once, at parse time,
// and reused by the checker and by error formatting.
type Source interface {
	// Content returns the full source text.
	Content() string
	// Description names the source, e.g. a file path or "<input>".
	Description() string
	// OffsetLocation converts a zero-based byte offset into a one-based
	// (line, column) location.
	OffsetLocation(offset int32) (Location, bool)
	// LocationOffset converts a (line, column) location back to a
	// zero-based byte offset.
	LocationOffset(loc Location) (int32, bool)
	// Snippet returns the text of the given one-based line number.
	Snippet(line int) (string, bool)
	// NewLocation builds a Location from a byte offset without requiring
	// the caller to walk the line table themselves.
	NewLocation(offset int32) Location
}

// textSource is the default Source implementation: a flat string plus a
// monotonically increasing set of line-start byte offsets.
type textSource struct {
	content     string
	description string
	// lineOffsets[i] is the byte offset of the first character of
	// line i+1 (lines are one-based).
	lineOffsets []int32
	// size is the length of content in bytes.
	size int32
}

// NewTextSource creates a Source over the given text, named by description
// for use in diagnostic messages.
func NewTextSource(content, description string) Source {
	s := &textSource{content: content, description: description}
	s.index()
	return s
}

func (s *textSource) index() {
	s.lineOffsets = append(s.lineOffsets, 0)
	for i := 0; i < len(s.content); i++ {
		if s.content[i] == '\n' {
			s.lineOffsets = append(s.lineOffsets, int32(i+1))
		}
	}
	s.size = int32(len(s.content))
}

func (s *textSource) Content() string     { return s.content }
func (s *textSource) Description() string { return s.description }

func (s *textSource) OffsetLocation(offset int32) (Location, bool) {
	if offset < 0 || offset > s.size {
		return NoLocation, false
	}
	line := 1
	for i := len(s.lineOffsets) - 1; i >= 0; i-- {
		if s.lineOffsets[i] <= offset {
			line = i + 1
			return NewLocation(line, int(offset-s.lineOffsets[i])+1), true
		}
	}
	return NewLocation(line, int(offset)+1), true
}

func (s *textSource) NewLocation(offset int32) Location {
	loc, ok := s.OffsetLocation(offset)
	if !ok {
		return NoLocation
	}
	return loc
}

func (s *textSource) LocationOffset(loc Location) (int32, bool) {
	if loc.line < 1 || loc.line > len(s.lineOffsets) {
		return 0, false
	}
	return s.lineOffsets[loc.line-1] + int32(loc.col-1), true
}

func (s *textSource) Snippet(line int) (string, bool) {
	if line < 1 || line > len(s.lineOffsets) {
		return "", false
	}
	lines := strings.Split(s.content, "\n")
	if line-1 >= len(lines) {
		return "", false
	}
	return lines[line-1], true
}

// CodePointCount returns the size of text in the unit the parser's
// max_expression_code_point_size limit is measured in: one per code point,
// plus one extra for each fullwidth or wide East Asian code point. Those
// forms render and cost roughly twice a narrow code point, so counting
// them at parity would let an expression evade the limit while still
// costing the parser and checker double.
func CodePointCount(text string) int {
	n := 0
	for _, r := range text {
		n++
		switch width.LookupRune(r).Kind() {
		case width.EastAsianFullwidth, width.EastAsianWide:
			n++
		}
	}
	return n
}
