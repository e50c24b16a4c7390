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
	"github.com/stoewer/go-strcase"

	"celcore/common"
	celtypes "celcore/types"
)

// FieldType describes one field of a registered struct type: its declared
// CEL type and whether a presence test (`has(msg.field)`) is meaningful
// for it.
type FieldType struct {
	Name             string
	Type             *celtypes.Type
	SupportsPresence bool
}

// StructDescriptor is the narrow adapter interface spec §9 calls for in
// place of reflection-based proto conversion: a message-type provider
// keyed by fully qualified type name plugs in one of these per struct
// type, giving the checker field types and the interpreter value
// construction/access without either package needing to know about
// protobuf reflection.
type StructDescriptor interface {
	// TypeName is the struct's fully qualified name.
	TypeName() string
	// FieldType looks up a declared field by name.
	FieldType(name string) (FieldType, bool)
	// Fields lists every declared field, for struct-literal validation.
	Fields() []FieldType
	// ZeroValue returns the typed zero value for a missing field, used by
	// safe traversal on Select (spec §4.G).
	ZeroValue(name string) Value
	// NewMessage constructs a Message of this type from field values
	// (already type-checked by the caller).
	NewMessage(fields map[string]Value) *Message
}

// Provider resolves struct type descriptors by fully qualified name: the
// single extension point both the checker (field type lookup) and the
// interpreter (struct construction, field access) go through.
type Provider interface {
	// FindStructType looks up a descriptor by name.
	FindStructType(typeName string) (StructDescriptor, bool)
	// FindIdent resolves a well-known identifier to a constant Value, used
	// for type names referenced as identifiers (e.g. `int` as a value) and
	// enum constants.
	FindIdent(name string) (Value, bool)
}

// structField is a simple field descriptor used by the registry-backed
// Provider implementation below.
type structField struct {
	name             string
	typ              *celtypes.Type
	supportsPresence bool
}

// simpleStructType is a Provider-registered struct type built up via
// NewStructRegistry/RegisterType — the in-memory equivalent of a compiled
// proto descriptor, sufficient for embedding and policy-validation use
// cases that do not need full protobuf reflection.
type simpleStructType struct {
	name   string
	fields map[string]structField
	order  []string
}

func (s *simpleStructType) TypeName() string { return s.name }

func (s *simpleStructType) FieldType(name string) (FieldType, bool) {
	f, found := s.fields[canonicalFieldName(name)]
	if !found {
		return FieldType{}, false
	}
	return FieldType{Name: f.name, Type: f.typ, SupportsPresence: f.supportsPresence}, true
}

func (s *simpleStructType) Fields() []FieldType {
	out := make([]FieldType, 0, len(s.order))
	for _, n := range s.order {
		f := s.fields[n]
		out = append(out, FieldType{Name: f.name, Type: f.typ, SupportsPresence: f.supportsPresence})
	}
	return out
}

func (s *simpleStructType) ZeroValue(name string) Value {
	f, found := s.fields[canonicalFieldName(name)]
	if !found {
		return NullValue
	}
	return zeroValueForType(f.typ)
}

func (s *simpleStructType) NewMessage(fields map[string]Value) *Message {
	canon := make(map[string]Value, len(fields))
	for name, v := range fields {
		canon[canonicalFieldName(name)] = v
	}
	return &Message{typeName: s.name, descriptor: s, fields: canon}
}

// canonicalFieldName normalizes a field reference to snake_case so that
// `msg.fooBar` and `msg.foo_bar` resolve to the same declared field,
// mirroring the teacher's common/types/pb field-name adapter which uses
// the same go-strcase dependency for the reverse (camelCase) direction.
func canonicalFieldName(name string) string {
	return strcase.SnakeCase(name)
}

func zeroValueForType(t *celtypes.Type) Value {
	switch t.Kind {
	case celtypes.BoolKind:
		return Bool(false)
	case celtypes.IntKind:
		return Int(0)
	case celtypes.UintKind:
		return Uint(0)
	case celtypes.DoubleKind:
		return Double(0)
	case celtypes.StringKind:
		return String("")
	case celtypes.BytesKind:
		return Bytes(nil)
	case celtypes.ListKind:
		return NewList(elemOrDyn(t, 0), nil)
	case celtypes.MapKind:
		m, _ := NewMap(elemOrDyn(t, 0), elemOrDyn(t, 1), nil, nil)
		return m
	default:
		return NullValue
	}
}

func elemOrDyn(t *celtypes.Type, i int) *celtypes.Type {
	if i < len(t.Parameters) {
		return t.Parameters[i]
	}
	return celtypes.DynType
}

// StructRegistry is an in-memory Provider: a plain map from type name to
// descriptor, populated by RegisterType. It also resolves primitive type
// names (`int`, `string`, ...) as identifiers, the way `int` can appear as
// a value in a CEL expression (e.g. as the argument to a conversion
// function looked up dynamically).
type StructRegistry struct {
	types  map[string]StructDescriptor
	idents map[string]Value
}

// NewStructRegistry creates an empty registry pre-populated with the
// primitive type names as identifiers.
func NewStructRegistry() *StructRegistry {
	r := &StructRegistry{types: make(map[string]StructDescriptor), idents: make(map[string]Value)}
	for name, t := range map[string]*celtypes.Type{
		"bool": celtypes.BoolType, "int": celtypes.IntType, "uint": celtypes.UintType,
		"double": celtypes.DoubleType, "string": celtypes.StringType, "bytes": celtypes.BytesType,
		"list": celtypes.NewListType(celtypes.DynType), "map": celtypes.NewMapType(celtypes.DynType, celtypes.DynType),
		"null_type": celtypes.NullType, "type": celtypes.TypeType,
		"timestamp": celtypes.TimestampType, "duration": celtypes.DurationType,
	} {
		r.idents[name] = &TypeValue{T: t}
	}
	return r
}

// RegisterType declares a new struct type by name with the given fields,
// in declaration order (order affects only Fields(), not correctness).
func (r *StructRegistry) RegisterType(name string, fields ...FieldType) {
	sf := make(map[string]structField, len(fields))
	order := make([]string, 0, len(fields))
	for _, f := range fields {
		key := canonicalFieldName(f.Name)
		sf[key] = structField{name: f.Name, typ: f.Type, supportsPresence: f.SupportsPresence}
		order = append(order, key)
	}
	st := &simpleStructType{name: name, fields: sf, order: order}
	r.types[name] = st
	r.idents[name] = &TypeValue{T: celtypes.NewObjectType(name)}
}

func (r *StructRegistry) FindStructType(typeName string) (StructDescriptor, bool) {
	t, found := r.types[typeName]
	return t, found
}

func (r *StructRegistry) FindIdent(name string) (Value, bool) {
	v, found := r.idents[name]
	return v, found
}

// Message is a runtime struct value: a nominal, field-typed value
// conceptually equivalent to a protobuf message, produced by a
// StructDescriptor and consulted via field access/presence tests.
type Message struct {
	typeName   string
	descriptor StructDescriptor
	fields     map[string]Value
}

func (m *Message) Type() *celtypes.Type { return celtypes.NewObjectType(m.typeName) }
func (m *Message) Value() any           { return m }
func (m *Message) String() string       { return m.typeName + "{...}" }

func (m *Message) Equal(other Value) Value {
	o, ok := other.(*Message)
	if !ok || o.typeName != m.typeName {
		return Bool(false)
	}
	for name, v := range m.fields {
		ov, found := o.fields[name]
		if !found {
			return Bool(false)
		}
		eq := v.Equal(ov)
		if b, ok := eq.(Bool); !ok || !bool(b) {
			return eq
		}
	}
	return Bool(len(m.fields) == len(o.fields))
}

// GetField implements safe field selection: a declared-but-unset field
// yields its typed zero value rather than an error (spec §4.G).
func (m *Message) GetField(name string) Value {
	key := canonicalFieldName(name)
	if v, found := m.fields[key]; found {
		return v
	}
	if _, declared := m.descriptor.FieldType(name); declared {
		return m.descriptor.ZeroValue(name)
	}
	return NewErr(common.KindNoSuchField, "no such field: %s", name)
}

// HasField implements the `has(msg.field)` presence test.
func (m *Message) HasField(name string) (Value, bool) {
	ft, declared := m.descriptor.FieldType(name)
	if !declared {
		return NewErr(common.KindNoSuchField, "no such field: %s", name), false
	}
	if !ft.SupportsPresence {
		return NewErr(common.KindTypeCheck, "field does not support presence check: %s", name), false
	}
	_, set := m.fields[canonicalFieldName(name)]
	return Bool(set), true
}
