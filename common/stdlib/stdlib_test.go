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

package stdlib

import (
	"testing"

	"celcore/common/types"
)

func findImpl(t *testing.T, lib *Library, overloadID string) Impl {
	t.Helper()
	for _, f := range lib.Functions {
		if impl, found := f.FindImpl(overloadID); found {
			return impl
		}
	}
	t.Fatalf("overload %q not found in library %q", overloadID, lib.Name)
	return nil
}

func TestStandardArithmeticOverloads(t *testing.T) {
	std := Standard()
	add := findImpl(t, std, "add_int64")
	if got := add([]types.Value{types.Int(2), types.Int(3)}); got != types.Int(5) {
		t.Errorf("add_int64(2, 3) = %v, want 5", got)
	}
	div := findImpl(t, std, "divide_int64")
	if got := div([]types.Value{types.Int(1), types.Int(0)}); !types.IsError(got) {
		t.Errorf("divide_int64(1, 0) = %v, want a divide-by-zero error", got)
	}
}

func TestStandardComparisonOverloads(t *testing.T) {
	std := Standard()
	lt := findImpl(t, std, "less_int64")
	if got := lt([]types.Value{types.Int(1), types.Int(2)}); got != types.Bool(true) {
		t.Errorf("less_int64(1, 2) = %v, want true", got)
	}
	eq := findImpl(t, std, "equals")
	if got := eq([]types.Value{types.Int(1), types.Int(1)}); got != types.Bool(true) {
		t.Errorf("equals(1, 1) = %v, want true", got)
	}
}

func TestStandardSizeOverload(t *testing.T) {
	std := Standard()
	size := findImpl(t, std, "size_string")
	if got := size([]types.Value{types.String("hello")}); got != types.Int(5) {
		t.Errorf("size_string('hello') = %v, want 5", got)
	}
}

func TestStandardInOverload(t *testing.T) {
	std := Standard()
	in := findImpl(t, std, "in_list")
	list := types.NewList(nil, []types.Value{types.Int(1), types.Int(2)})
	if got := in([]types.Value{types.Int(1), list}); got != types.Bool(true) {
		t.Errorf("in_list(1, [1, 2]) = %v, want true", got)
	}
}

func TestStandardConversionOverloads(t *testing.T) {
	std := Standard()
	intConv := findImpl(t, std, "string_to_int64")
	if got := intConv([]types.Value{types.String("42")}); got != types.Int(42) {
		t.Errorf("int('42') = %v, want 42", got)
	}
	if got := intConv([]types.Value{types.String("not-a-number")}); !types.IsError(got) {
		t.Errorf("int('not-a-number') = %v, want a bad-format error", got)
	}
}

func TestStandardConditionalOverload(t *testing.T) {
	std := Standard()
	cond := findImpl(t, std, "conditional")
	if got := cond([]types.Value{types.Bool(true), types.Int(1), types.Int(2)}); got != types.Int(1) {
		t.Errorf("conditional(true, 1, 2) = %v, want 1", got)
	}
	if got := cond([]types.Value{types.Bool(false), types.Int(1), types.Int(2)}); got != types.Int(2) {
		t.Errorf("conditional(false, 1, 2) = %v, want 2", got)
	}
}

func TestHeterogeneousComparisonOverloads(t *testing.T) {
	het := Heterogeneous()
	lt := findImpl(t, het, "less_int64_uint64")
	if got := lt([]types.Value{types.Int(1), types.Uint(2)}); got != types.Bool(true) {
		t.Errorf("less_int64_uint64(1, 2u) = %v, want true", got)
	}
}

func TestTimestampEpochOverload(t *testing.T) {
	lib := TimestampEpoch()
	conv := findImpl(t, lib, "int64_to_timestamp")
	got := conv([]types.Value{types.Int(1000000000)})
	ts, ok := got.(types.Timestamp)
	if !ok {
		t.Fatalf("int64_to_timestamp(1e9) = %v, want a Timestamp", got)
	}
	if ts.Time().Year() != 2001 {
		t.Errorf("timestamp(1e9).Year() = %d, want 2001", ts.Time().Year())
	}
}
