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
	"fmt"
	"math"

	"celcore/common"
	celtypes "celcore/types"
)

// Int is a 64-bit signed integer value.
type Int int64

func (i Int) Type() *celtypes.Type { return celtypes.IntType }
func (i Int) Value() any           { return int64(i) }
func (i Int) String() string       { return fmt.Sprintf("%d", int64(i)) }
func (i Int) Equal(other Value) Value {
	switch o := other.(type) {
	case Int:
		return Bool(i == o)
	case Uint:
		return Bool(o <= Uint(math.MaxInt64) && Int(o) == i)
	case Double:
		return Bool(float64(i) == float64(o))
	}
	return Bool(false)
}

// Uint is a 64-bit unsigned integer value.
type Uint uint64

func (u Uint) Type() *celtypes.Type { return celtypes.UintType }
func (u Uint) Value() any           { return uint64(u) }
func (u Uint) String() string       { return fmt.Sprintf("%d", uint64(u)) }
func (u Uint) Equal(other Value) Value {
	switch o := other.(type) {
	case Uint:
		return Bool(u == o)
	case Int:
		return o.Equal(u)
	case Double:
		return Bool(float64(u) == float64(o))
	}
	return Bool(false)
}

// Double is a 64-bit floating point value.
type Double float64

func (d Double) Type() *celtypes.Type { return celtypes.DoubleType }
func (d Double) Value() any           { return float64(d) }
func (d Double) String() string       { return fmt.Sprintf("%g", float64(d)) }
func (d Double) Equal(other Value) Value {
	switch o := other.(type) {
	case Double:
		// NaN comparisons yield false for equality (spec §4.F).
		return Bool(float64(d) == float64(o))
	case Int:
		return Bool(float64(d) == float64(o))
	case Uint:
		return Bool(float64(d) == float64(o))
	}
	return Bool(false)
}

// AddInt implements int+int with overflow detection (spec §4.F: arithmetic
// overflow fails rather than wraps).
func AddInt(a, b Int) Value {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return NewErr(common.KindOverflow, "integer overflow: %d + %d", a, b)
	}
	return a + b
}

// SubInt implements int-int with overflow detection.
func SubInt(a, b Int) Value {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return NewErr(common.KindOverflow, "integer overflow: %d - %d", a, b)
	}
	return a - b
}

// MulInt implements int*int with overflow detection.
func MulInt(a, b Int) Value {
	if a == 0 || b == 0 {
		return Int(0)
	}
	r := a * b
	if r/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return NewErr(common.KindOverflow, "integer overflow: %d * %d", a, b)
	}
	return r
}

// DivInt implements int/int with divide-by-zero and overflow detection.
func DivInt(a, b Int) Value {
	if b == 0 {
		return NewErr(common.KindDivideByZero, "division by zero")
	}
	if a == math.MinInt64 && b == -1 {
		return NewErr(common.KindOverflow, "integer overflow: %d / %d", a, b)
	}
	return a / b
}

// ModInt implements int%int with divide-by-zero detection.
func ModInt(a, b Int) Value {
	if b == 0 {
		return NewErr(common.KindDivideByZero, "modulus by zero")
	}
	if a == math.MinInt64 && b == -1 {
		return Int(0)
	}
	return a % b
}

// NegateInt implements unary `-` with overflow detection (negating
// math.MinInt64 overflows the positive range).
func NegateInt(a Int) Value {
	if a == math.MinInt64 {
		return NewErr(common.KindOverflow, "integer overflow: -(%d)", a)
	}
	return -a
}

// AddUint implements uint+uint with overflow detection.
func AddUint(a, b Uint) Value {
	r := a + b
	if r < a {
		return NewErr(common.KindOverflow, "unsigned integer overflow: %d + %d", a, b)
	}
	return r
}

// SubUint implements uint-uint with underflow detection.
func SubUint(a, b Uint) Value {
	if b > a {
		return NewErr(common.KindOverflow, "unsigned integer overflow: %d - %d", a, b)
	}
	return a - b
}

// MulUint implements uint*uint with overflow detection.
func MulUint(a, b Uint) Value {
	if a == 0 || b == 0 {
		return Uint(0)
	}
	r := a * b
	if r/b != a {
		return NewErr(common.KindOverflow, "unsigned integer overflow: %d * %d", a, b)
	}
	return r
}

// DivUint implements uint/uint with divide-by-zero detection.
func DivUint(a, b Uint) Value {
	if b == 0 {
		return NewErr(common.KindDivideByZero, "division by zero")
	}
	return a / b
}

// ModUint implements uint%uint with divide-by-zero detection.
func ModUint(a, b Uint) Value {
	if b == 0 {
		return NewErr(common.KindDivideByZero, "modulus by zero")
	}
	return a % b
}

// AddDouble, SubDouble, MulDouble, DivDouble follow IEEE-754 semantics
// directly (spec's non-goal: "floating-point reproducibility beyond
// IEEE-754" means no overflow detection layered on top of what the
// hardware already does: overflow silently produces +/-Inf).
func AddDouble(a, b Double) Value { return a + b }
func SubDouble(a, b Double) Value { return a - b }
func MulDouble(a, b Double) Value { return a * b }
func DivDouble(a, b Double) Value {
	return a / b
}
func NegateDouble(a Double) Value { return -a }

// CompareNumeric orders two numeric values, honoring
// heterogeneous_numeric_comparisons (spec §4.F): when het is false, mixed
// int/uint/double comparisons are a type error; when true, they compare by
// mathematical value. NaN always compares as neither-less-nor-greater.
func CompareNumeric(a, b Value, heterogeneous bool) (int, Value) {
	sameKind := a.Type().TypeName() == b.Type().TypeName()
	if !sameKind && !heterogeneous {
		return 0, NewErr(common.KindNoMatchingOverload, "no such overload: comparison of %s and %s", a.Type(), b.Type())
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if !aok || !bok {
		return 0, NewErr(common.KindNoMatchingOverload, "no such overload: comparison of %s and %s", a.Type(), b.Type())
	}
	if math.IsNaN(af) || math.IsNaN(bf) {
		return nanCompareSentinel, Bool(false)
	}
	switch {
	case af < bf:
		return -1, nil
	case af > bf:
		return 1, nil
	default:
		return 0, nil
	}
}

// nanCompareSentinel is CompareNumeric's ordering result when either
// operand is NaN: neither less, equal, nor greater. Callers that only need
// a bool predicate (the `<`, `<=`, `>`, `>=` overloads) use IsNaNCompare to
// treat it as "comparison not satisfied" without inspecting the raw int.
const nanCompareSentinel = 2

// IsNaNCompare reports whether an (order, _) pair returned by CompareNumeric
// came from a NaN comparison, for which every ordering predicate is false.
func IsNaNCompare(order int) bool { return order == nanCompareSentinel }

func asFloat(v Value) (float64, bool) {
	switch t := v.(type) {
	case Int:
		return float64(t), true
	case Uint:
		return float64(t), true
	case Double:
		return float64(t), true
	}
	return 0, false
}
