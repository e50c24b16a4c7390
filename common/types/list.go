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
	"strings"

	"celcore/common"
	celtypes "celcore/types"
)

// List is an ordered, positional CEL list value. It is a shallow,
// immutable view over its backing slice: callers must not mutate the
// slice handed to NewList after construction (spec §3).
type List struct {
	elems    []Value
	elemType *celtypes.Type
}

// NewList wraps elems as a CEL list, recording elemType for the value's
// static type (dyn if the elements are heterogeneous or the caller does
// not know a uniform type).
func NewList(elemType *celtypes.Type, elems []Value) *List {
	return &List{elems: elems, elemType: elemType}
}

func (l *List) Type() *celtypes.Type { return celtypes.NewListType(l.elemType) }
func (l *List) Value() any {
	out := make([]any, len(l.elems))
	for i, e := range l.elems {
		out[i] = e.Value()
	}
	return out
}

func (l *List) String() string {
	parts := make([]string, len(l.elems))
	for i, e := range l.elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Size returns the number of elements.
func (l *List) Size() Int { return Int(len(l.elems)) }

// Get returns the element at idx, or a KindIndexOutOfBounds error if idx is
// negative or >= the list's length (spec §4.F).
func (l *List) Get(idx int64) Value {
	if idx < 0 || idx >= int64(len(l.elems)) {
		return NewErr(common.KindIndexOutOfBounds, "index %d out of range [0, %d)", idx, len(l.elems))
	}
	return l.elems[idx]
}

// Slice exposes the backing elements for iteration (comprehensions,
// equality, stdlib functions). Callers must treat the result as read-only.
func (l *List) Slice() []Value { return l.elems }

// Contains implements the `in` membership test against a list: equality
// against each element, short-circuiting on the first match.
func (l *List) Contains(v Value) Value {
	sawUnknown := false
	for _, e := range l.elems {
		eq := e.Equal(v)
		if b, ok := eq.(Bool); ok && bool(b) {
			return Bool(true)
		}
		if IsUnknown(eq) {
			sawUnknown = true
		}
	}
	if sawUnknown {
		return NewUnknownSet(0)
	}
	return Bool(false)
}

// Add implements list concatenation for the `+` overload.
func (l *List) Add(other *List) *List {
	elemType := l.elemType
	if elemType == nil {
		elemType = other.elemType
	}
	combined := make([]Value, 0, len(l.elems)+len(other.elems))
	combined = append(combined, l.elems...)
	combined = append(combined, other.elems...)
	return NewList(elemType, combined)
}

func (l *List) Equal(other Value) Value {
	o, ok := other.(*List)
	if !ok {
		return Bool(false)
	}
	if len(l.elems) != len(o.elems) {
		return Bool(false)
	}
	for i, e := range l.elems {
		eq := e.Equal(o.elems[i])
		if IsUnknown(eq) || IsError(eq) {
			return eq
		}
		if b, ok := eq.(Bool); !ok || !bool(b) {
			return Bool(false)
		}
	}
	return Bool(true)
}
