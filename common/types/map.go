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
	"strings"

	"celcore/common"
	celtypes "celcore/types"
)

// mapKey canonicalizes a Value for use as a Go map key: CEL permits any
// hashable scalar (bool, int, uint, string) as a map key, other types
// (double included) are rejected, and int/uint keys that are numerically
// equal must collide (e.g. {1: 'a'} and {1u: 'a'} describe the same
// entry), so every integer key normalizes through its mathematical value.
type mapKey struct {
	kind string
	ival int64
	sval string
}

func toMapKey(v Value) (mapKey, Value) {
	switch k := v.(type) {
	case Bool:
		if k {
			return mapKey{kind: "bool", ival: 1}, nil
		}
		return mapKey{kind: "bool", ival: 0}, nil
	case Int:
		return mapKey{kind: "num", ival: int64(k)}, nil
	case Uint:
		if uint64(k) > 1<<63-1 {
			// Above the int range: no int key can equal it.
			return mapKey{kind: "bigu", ival: int64(k)}, nil
		}
		return mapKey{kind: "num", ival: int64(k)}, nil
	case String:
		return mapKey{kind: "string", sval: string(k)}, nil
	}
	return mapKey{}, NewErr(common.KindNoSuchKey, "unsupported map key type: %s", v.Type())
}

// Map is a CEL map value, keyed by any hashable Value. Iteration order is
// insertion order (spec §9 open question: "a faithful reimplementation
// should document the exact behavior it chooses" — celcore chooses
// insertion order so that comprehensions over map literals are
// deterministic given identical source, even though CEL tests must
// tolerate either choice).
type Map struct {
	keys      []Value
	index     map[mapKey]int
	vals      []Value
	keyType   *celtypes.Type
	valueType *celtypes.Type
}

// NewMap builds a Map from parallel keys/vals slices, in insertion order.
// Duplicate keys keep the last value written, matching map-literal
// construction semantics.
func NewMap(keyType, valueType *celtypes.Type, keys, vals []Value) (*Map, Value) {
	m := &Map{index: make(map[mapKey]int, len(keys)), keyType: keyType, valueType: valueType}
	for i, k := range keys {
		mk, errv := toMapKey(k)
		if errv != nil {
			return nil, errv
		}
		if pos, found := m.index[mk]; found {
			m.keys[pos] = k
			m.vals[pos] = vals[i]
			continue
		}
		m.index[mk] = len(m.keys)
		m.keys = append(m.keys, k)
		m.vals = append(m.vals, vals[i])
	}
	return m, nil
}

func (m *Map) Type() *celtypes.Type { return celtypes.NewMapType(m.keyType, m.valueType) }

func (m *Map) Value() any {
	out := make(map[any]any, len(m.keys))
	for i, k := range m.keys {
		out[k.Value()] = m.vals[i].Value()
	}
	return out
}

func (m *Map) String() string {
	parts := make([]string, len(m.keys))
	for i, k := range m.keys {
		parts[i] = fmt.Sprintf("%s: %s", k, m.vals[i])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Size returns the number of entries.
func (m *Map) Size() Int { return Int(len(m.keys)) }

// Get looks up key, returning a KindNoSuchKey error if absent (spec §4.F).
func (m *Map) Get(key Value) Value {
	mk, errv := toMapKey(key)
	if errv != nil {
		return errv
	}
	pos, found := m.index[mk]
	if !found {
		return NewErr(common.KindNoSuchKey, "key not found: %s", key)
	}
	return m.vals[pos]
}

// Find looks up key without producing an error, for has()/`in` semantics.
func (m *Map) Find(key Value) (Value, bool) {
	mk, errv := toMapKey(key)
	if errv != nil {
		return nil, false
	}
	pos, found := m.index[mk]
	if !found {
		return nil, false
	}
	return m.vals[pos], true
}

// Contains implements the `in` membership test against a map's key set.
func (m *Map) Contains(key Value) Value {
	_, found := m.Find(key)
	return Bool(found)
}

// Keys returns the map's keys in insertion order, for comprehension
// iteration.
func (m *Map) Keys() []Value { return m.keys }

// Equal implements structural map equality: same key set, pointwise-equal
// values, independent of iteration order (spec §4.F).
func (m *Map) Equal(other Value) Value {
	o, ok := other.(*Map)
	if !ok {
		return Bool(false)
	}
	if len(m.keys) != len(o.keys) {
		return Bool(false)
	}
	for i, k := range m.keys {
		ov, found := o.Find(k)
		if !found {
			return Bool(false)
		}
		eq := m.vals[i].Equal(ov)
		if IsUnknown(eq) || IsError(eq) {
			return eq
		}
		if b, ok := eq.(Bool); !ok || !bool(b) {
			return Bool(false)
		}
	}
	return Bool(true)
}
