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

package common

import "testing"

func TestLocationCompareOrdersByLineThenColumn(t *testing.T) {
	a := NewLocation(1, 5)
	b := NewLocation(2, 1)
	if a.Compare(b) >= 0 {
		t.Error("line 1 should sort before line 2 regardless of column")
	}
	c := NewLocation(1, 2)
	d := NewLocation(1, 9)
	if c.Compare(d) >= 0 {
		t.Error("column 2 should sort before column 9 on the same line")
	}
}

func TestNoLocationIsInvalid(t *testing.T) {
	if NoLocation.IsValid() {
		t.Error("NoLocation should not be valid")
	}
	if !NewLocation(1, 1).IsValid() {
		t.Error("a real location should be valid")
	}
}

func TestTextSourceOffsetLocationRoundTrips(t *testing.T) {
	src := NewTextSource("ab\ncd\nef", "<test>")
	loc, ok := src.OffsetLocation(3)
	if !ok {
		t.Fatal("OffsetLocation(3) should succeed")
	}
	if loc.Line() != 2 || loc.Column() != 1 {
		t.Errorf("OffsetLocation(3) = %d:%d, want 2:1", loc.Line(), loc.Column())
	}
	offset, ok := src.LocationOffset(loc)
	if !ok {
		t.Fatal("LocationOffset should succeed")
	}
	if offset != 3 {
		t.Errorf("LocationOffset(2:1) = %d, want 3", offset)
	}
}

func TestTextSourceOffsetLocationOutOfRange(t *testing.T) {
	src := NewTextSource("abc", "<test>")
	if _, ok := src.OffsetLocation(-1); ok {
		t.Error("negative offset should fail")
	}
	if _, ok := src.OffsetLocation(100); ok {
		t.Error("out-of-range offset should fail")
	}
}

func TestTextSourceSnippetReturnsRequestedLine(t *testing.T) {
	src := NewTextSource("first\nsecond\nthird", "<test>")
	snippet, ok := src.Snippet(2)
	if !ok || snippet != "second" {
		t.Errorf("Snippet(2) = %q, %v, want \"second\", true", snippet, ok)
	}
	if _, ok := src.Snippet(0); ok {
		t.Error("Snippet(0) should fail, lines are one-based")
	}
	if _, ok := src.Snippet(4); ok {
		t.Error("Snippet(4) should fail, source only has 3 lines")
	}
}

func TestTextSourceNewLocationFallsBackToNoLocation(t *testing.T) {
	src := NewTextSource("abc", "<test>")
	if loc := src.NewLocation(-1); loc != NoLocation {
		t.Errorf("NewLocation(-1) = %v, want NoLocation", loc)
	}
}

func TestCodePointCountNarrowText(t *testing.T) {
	if n := CodePointCount("hello"); n != 5 {
		t.Errorf("CodePointCount(\"hello\") = %d, want 5", n)
	}
}

func TestCodePointCountWeightsFullwidthRunesDouble(t *testing.T) {
	narrow := CodePointCount("a")
	fullwidth := CodePointCount("Ａ") // fullwidth Latin 'A'
	if fullwidth != narrow*2 {
		t.Errorf("CodePointCount(fullwidth) = %d, want %d (double a narrow rune)", fullwidth, narrow*2)
	}
}

func TestDescriptionIsPreserved(t *testing.T) {
	src := NewTextSource("x", "my-file.cel")
	if src.Description() != "my-file.cel" {
		t.Errorf("Description() = %q, want %q", src.Description(), "my-file.cel")
	}
	if src.Content() != "x" {
		t.Errorf("Content() = %q, want %q", src.Content(), "x")
	}
}
