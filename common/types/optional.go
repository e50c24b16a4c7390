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
	"celcore/common"
	celtypes "celcore/types"
)

// Optional is the runtime value behind CEL's optional library (SPEC_FULL
// §12): `optional.of(v)`, `optional.none()`, `.hasValue()`,
// `.value()`/`.orValue(default)`, and the `?.`/`[?]` short-circuiting
// selectors all produce or consume this type.
type Optional struct {
	value    Value
	hasValue bool
	// valueType records the wrapped type even when absent, so that
	// `optional.none()` used in a typed context (e.g. assigned to
	// optional<int>) keeps a meaningful static type.
	valueType *celtypes.Type
}

// OptionalOf wraps v as a present optional value.
func OptionalOf(v Value) *Optional {
	return &Optional{value: v, hasValue: true, valueType: v.Type()}
}

// OptionalOfNonZeroValue wraps v as present only if v is not its type's
// zero value (CEL's `optional.ofNonZeroValue`); otherwise returns an
// absent optional.
func OptionalOfNonZeroValue(v Value) *Optional {
	if isZeroValue(v) {
		return OptionalNone(v.Type())
	}
	return OptionalOf(v)
}

func isZeroValue(v Value) bool {
	switch t := v.(type) {
	case Int:
		return t == 0
	case Uint:
		return t == 0
	case Double:
		return t == 0
	case String:
		return t == ""
	case Bytes:
		return len(t) == 0
	case Bool:
		return !bool(t)
	case Null:
		return true
	case *List:
		return len(t.elems) == 0
	case *Map:
		return len(t.keys) == 0
	}
	return false
}

// OptionalNone creates an absent optional whose static wrapped type is t.
func OptionalNone(t *celtypes.Type) *Optional {
	return &Optional{valueType: t}
}

func (o *Optional) Type() *celtypes.Type { return celtypes.NewOptionalType(o.valueType) }
func (o *Optional) Value() any {
	if !o.hasValue {
		return nil
	}
	return o.value.Value()
}
func (o *Optional) String() string {
	if !o.hasValue {
		return "optional.none()"
	}
	return "optional.of(" + o.value.String() + ")"
}
func (o *Optional) Equal(other Value) Value {
	oo, ok := other.(*Optional)
	if !ok {
		return Bool(false)
	}
	if o.hasValue != oo.hasValue {
		return Bool(false)
	}
	if !o.hasValue {
		return Bool(true)
	}
	return o.value.Equal(oo.value)
}

// HasValue reports whether the optional holds a value.
func (o *Optional) HasValue() Bool { return Bool(o.hasValue) }

// GetValue returns the wrapped value, or a KindNoSuchKey error if absent.
func (o *Optional) GetValue() Value {
	if !o.hasValue {
		return NewErr(common.KindNoSuchKey, "optional.none() has no value")
	}
	return o.value
}

// OrValue returns the wrapped value if present, else def.
func (o *Optional) OrValue(def Value) Value {
	if o.hasValue {
		return o.value
	}
	return def
}

// OrOptional returns o if present, else the alternative optional.
func (o *Optional) OrOptional(alt *Optional) *Optional {
	if o.hasValue {
		return o
	}
	return alt
}
