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

package types

import (
	"math"
	"testing"
	"time"

	celtypes "celcore/types"
)

func TestIntEqualAcrossNumericKinds(t *testing.T) {
	if Int(5).Equal(Uint(5)) != Bool(true) {
		t.Error("Int(5) should equal Uint(5)")
	}
	if Int(5).Equal(Double(5.0)) != Bool(true) {
		t.Error("Int(5) should equal Double(5.0)")
	}
	if Int(-1).Equal(Uint(1)) != Bool(false) {
		t.Error("Int(-1) should not equal Uint(1)")
	}
}

func TestAddIntOverflow(t *testing.T) {
	got := AddInt(math.MaxInt64, 1)
	if !IsError(got) {
		t.Fatalf("AddInt(MaxInt64, 1) = %v, want overflow error", got)
	}
}

func TestMulIntOverflow(t *testing.T) {
	got := MulInt(math.MaxInt64, 2)
	if !IsError(got) {
		t.Fatalf("MulInt(MaxInt64, 2) = %v, want overflow error", got)
	}
}

func TestDivIntByZero(t *testing.T) {
	got := DivInt(1, 0)
	if !IsError(got) {
		t.Fatalf("DivInt(1, 0) = %v, want divide-by-zero error", got)
	}
}

func TestNegateIntMinOverflows(t *testing.T) {
	got := NegateInt(math.MinInt64)
	if !IsError(got) {
		t.Fatalf("NegateInt(MinInt64) = %v, want overflow error", got)
	}
}

func TestCompareNumericHeterogeneous(t *testing.T) {
	order, errv := CompareNumeric(Int(1), Uint(2), false)
	if errv == nil || !IsError(errv) {
		t.Fatal("expected int/uint comparison to be rejected when heterogeneous is false")
	}
	order, errv = CompareNumeric(Int(1), Uint(2), true)
	if errv != nil {
		t.Fatalf("unexpected error: %v", errv)
	}
	if order != -1 {
		t.Errorf("CompareNumeric(1, 2u) = %d, want -1", order)
	}
}

func TestCompareNumericNaN(t *testing.T) {
	order, _ := CompareNumeric(Double(math.NaN()), Double(1), true)
	if !IsNaNCompare(order) {
		t.Fatalf("CompareNumeric with NaN = %d, want the NaN sentinel", order)
	}
}

func TestListGetOutOfBounds(t *testing.T) {
	l := NewList(celtypes.IntType, []Value{Int(1), Int(2)})
	if got := l.Get(5); !IsError(got) {
		t.Fatalf("Get(5) = %v, want an out-of-bounds error", got)
	}
	if got := l.Get(-1); !IsError(got) {
		t.Fatalf("Get(-1) = %v, want an out-of-bounds error", got)
	}
}

func TestListContains(t *testing.T) {
	l := NewList(celtypes.IntType, []Value{Int(1), Int(2), Int(3)})
	if l.Contains(Int(2)) != Bool(true) {
		t.Error("Contains(2) should be true")
	}
	if l.Contains(Int(9)) != Bool(false) {
		t.Error("Contains(9) should be false")
	}
}

func TestListAddConcatenates(t *testing.T) {
	a := NewList(celtypes.IntType, []Value{Int(1)})
	b := NewList(celtypes.IntType, []Value{Int(2)})
	c := a.Add(b)
	if c.Size() != Int(2) {
		t.Fatalf("Add() size = %d, want 2", c.Size())
	}
}

func TestListEqualIgnoresBackingCapacity(t *testing.T) {
	a := NewList(celtypes.IntType, []Value{Int(1), Int(2)})
	b := NewList(celtypes.IntType, []Value{Int(1), Int(2)})
	if a.Equal(b) != Bool(true) {
		t.Error("structurally equal lists should compare equal")
	}
}

func TestMapNumericKeysCollide(t *testing.T) {
	m, errv := NewMap(celtypes.IntType, celtypes.StringType,
		[]Value{Int(1)}, []Value{String("a")})
	if errv != nil {
		t.Fatalf("NewMap() failed: %v", errv)
	}
	if got := m.Get(Uint(1)); got != String("a") {
		t.Errorf("Get(1u) = %v, want 'a' (int/uint keys collide)", got)
	}
}

func TestMapDuplicateKeyKeepsLastValue(t *testing.T) {
	m, errv := NewMap(celtypes.IntType, celtypes.StringType,
		[]Value{Int(1), Int(1)}, []Value{String("a"), String("b")})
	if errv != nil {
		t.Fatalf("NewMap() failed: %v", errv)
	}
	if m.Size() != Int(1) {
		t.Fatalf("Size() = %d, want 1", m.Size())
	}
	if got := m.Get(Int(1)); got != String("b") {
		t.Errorf("Get(1) = %v, want the last-written value 'b'", got)
	}
}

func TestMapGetMissingKey(t *testing.T) {
	m, _ := NewMap(celtypes.IntType, celtypes.StringType, nil, nil)
	if got := m.Get(Int(1)); !IsError(got) {
		t.Fatalf("Get(1) on empty map = %v, want a no-such-key error", got)
	}
}

func TestMapEqualIgnoresOrder(t *testing.T) {
	a, _ := NewMap(celtypes.IntType, celtypes.StringType,
		[]Value{Int(1), Int(2)}, []Value{String("a"), String("b")})
	b, _ := NewMap(celtypes.IntType, celtypes.StringType,
		[]Value{Int(2), Int(1)}, []Value{String("b"), String("a")})
	if a.Equal(b) != Bool(true) {
		t.Error("maps with the same entries in different insertion order should be equal")
	}
}

func TestStringSizeCountsCodePoints(t *testing.T) {
	if String("héllo").Size() != Int(5) {
		t.Errorf("Size() = %d, want 5 code points", String("héllo").Size())
	}
}

func TestStringMatchesInvalidPattern(t *testing.T) {
	got := String("abc").Matches("[")
	if !IsError(got) {
		t.Fatalf("Matches('[') = %v, want a bad-format error", got)
	}
}

func TestStringMatchesValidPattern(t *testing.T) {
	if String("abc123").Matches(`\d+`) != Bool(true) {
		t.Error(`expected "abc123" to match \d+`)
	}
}

func TestTimestampAddSub(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	d := NewDuration(24 * time.Hour)
	next := ts.Add(d)
	if next.Time().Day() != 2 {
		t.Errorf("Add(24h).Day() = %d, want 2", next.Time().Day())
	}
	back := next.Sub(d)
	if back.Compare(ts) != 0 {
		t.Error("Sub should undo Add")
	}
}

func TestTimestampZoneOffsetFallback(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC))
	shifted := ts.In("-01:00")
	if shifted.Hour() != 23 {
		t.Errorf("In(-01:00).Hour() = %d, want 23 (previous day)", shifted.Hour())
	}
}

func TestTimestampUnknownZoneFallsBackToUTC(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	shifted := ts.In("Not/A/Real/Zone")
	if shifted.Hour() != 12 {
		t.Errorf("In(bogus zone).Hour() = %d, want UTC fallback of 12", shifted.Hour())
	}
}

func TestParseTimestampRejectsMalformed(t *testing.T) {
	_, errv := ParseTimestamp("not-a-timestamp")
	if errv == nil {
		t.Fatal("expected a parse error")
	}
}

func TestOptionalOfNonZeroValue(t *testing.T) {
	if OptionalOfNonZeroValue(Int(0)).HasValue() != Bool(false) {
		t.Error("OptionalOfNonZeroValue(0) should be absent")
	}
	if OptionalOfNonZeroValue(Int(5)).HasValue() != Bool(true) {
		t.Error("OptionalOfNonZeroValue(5) should be present")
	}
}

func TestOptionalOrValue(t *testing.T) {
	none := OptionalNone(celtypes.IntType)
	if got := none.OrValue(Int(42)); got != Int(42) {
		t.Errorf("OrValue() = %v, want the fallback 42", got)
	}
	some := OptionalOf(Int(1))
	if got := some.OrValue(Int(42)); got != Int(1) {
		t.Errorf("OrValue() = %v, want the wrapped value 1", got)
	}
}

func TestOptionalGetValueOnNone(t *testing.T) {
	none := OptionalNone(celtypes.IntType)
	if got := none.GetValue(); !IsError(got) {
		t.Fatalf("GetValue() on none = %v, want a no-such-key error", got)
	}
}

func TestMaybeMergeUnknownsMerges(t *testing.T) {
	u1 := NewUnknownSet(1)
	u2 := NewUnknownSet(2)
	merged, found := MaybeMergeUnknowns(Int(1), u1, u2)
	if !found {
		t.Fatal("expected unknowns to be found")
	}
	if len(merged.NodeIDs) != 2 {
		t.Errorf("merged NodeIDs = %v, want 2 entries", merged.NodeIDs)
	}
}

func TestMaybeMergeUnknownsNoneFound(t *testing.T) {
	_, found := MaybeMergeUnknowns(Int(1), Bool(true))
	if found {
		t.Error("expected no unknowns to be found")
	}
}
