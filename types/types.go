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

// Package types implements the CEL static type system: a tagged variant
// with assignability, unification, and substitution (spec §4.C). It is
// deliberately independent of the runtime value representation in
// common/types — a Type describes what the checker reasons about, a Value
// is what the interpreter produces.
package types

import (
	"fmt"
	"strings"
)

// Kind discriminates the category of a Type.
type Kind int

const (
	UnspecifiedKind Kind = iota
	NullKind
	BoolKind
	IntKind
	UintKind
	DoubleKind
	StringKind
	BytesKind
	TimestampKind
	DurationKind
	DynKind
	ErrorKind
	TypeKind
	ListKind
	MapKind
	OptionalKind
	TypeParamKind
	StructKind
)

var kindNames = map[Kind]string{
	NullKind:      "null_type",
	BoolKind:      "bool",
	IntKind:       "int",
	UintKind:      "uint",
	DoubleKind:    "double",
	StringKind:    "string",
	BytesKind:     "bytes",
	TimestampKind: "timestamp",
	DurationKind:  "duration",
	DynKind:       "dyn",
	ErrorKind:     "error",
	TypeKind:      "type",
	ListKind:      "list",
	MapKind:       "map",
	OptionalKind:  "optional",
}

// Type is the single concrete representation for every kind of CEL type:
// primitive, abstract (dyn/error/type), parameterized (list/map/optional/
// type), type-parameter, and nominal message type.
type Type struct {
	Kind       Kind
	Parameters []*Type
	// name is the runtime/nominal type name: the kind name for primitives
	// and abstracts, the fully qualified message name for StructKind, and
	// the parameter's own name for TypeParamKind.
	name string
}

// Primitive and abstract singletons.
var (
	NullType      = &Type{Kind: NullKind, name: "null_type"}
	BoolType      = &Type{Kind: BoolKind, name: "bool"}
	IntType       = &Type{Kind: IntKind, name: "int"}
	UintType      = &Type{Kind: UintKind, name: "uint"}
	DoubleType    = &Type{Kind: DoubleKind, name: "double"}
	StringType    = &Type{Kind: StringKind, name: "string"}
	BytesType     = &Type{Kind: BytesKind, name: "bytes"}
	TimestampType = &Type{Kind: TimestampKind, name: "timestamp"}
	DurationType  = &Type{Kind: DurationKind, name: "duration"}
	DynType       = &Type{Kind: DynKind, name: "dyn"}
	ErrorType     = &Type{Kind: ErrorKind, name: "error"}
	TypeType      = &Type{Kind: TypeKind, name: "type"}
)

// NewListType creates a parameterized list<elem> type.
func NewListType(elem *Type) *Type {
	return &Type{Kind: ListKind, name: "list", Parameters: []*Type{elem}}
}

// NewMapType creates a parameterized map<key,value> type.
func NewMapType(key, value *Type) *Type {
	return &Type{Kind: MapKind, name: "map", Parameters: []*Type{key, value}}
}

// NewOptionalType creates a parameterized optional<wrapped> type.
func NewOptionalType(wrapped *Type) *Type {
	return &Type{Kind: OptionalKind, name: "optional", Parameters: []*Type{wrapped}}
}

// NewTypeParamType creates a type-parameter that unifies by first-use
// during overload resolution.
func NewTypeParamType(name string) *Type {
	return &Type{Kind: TypeParamKind, name: name}
}

// NewObjectType creates a nominal message type referenced by fully
// qualified name.
func NewObjectType(name string) *Type {
	return &Type{Kind: StructKind, name: name}
}

// NewTypeType creates the meta-type `type(param)`, the type of a type
// literal used as an identifier (e.g. referencing a message type by name).
func NewTypeType(param *Type) *Type {
	if param == nil {
		return TypeType
	}
	return &Type{Kind: TypeKind, name: "type", Parameters: []*Type{param}}
}

// TypeName returns the type's runtime (erased) name.
func (t *Type) TypeName() string {
	if t == nil {
		return "<nil>"
	}
	return t.name
}

// String renders the type's deterministic diagnostic form (spec §4.C
// `format`), e.g. "list(int)" or "map(string, dyn)".
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	if len(t.Parameters) == 0 {
		return t.TypeName()
	}
	parts := make([]string, len(t.Parameters))
	for i, p := range t.Parameters {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s(%s)", t.TypeName(), strings.Join(parts, ", "))
}

// isDyn reports whether t behaves as the universal `dyn` escape hatch.
func (t *Type) isDyn() bool {
	return t.Kind == DynKind || t.Kind == TypeParamKind
}

// IsError reports whether t is the error type, which absorbs in joins.
func (t *Type) IsError() bool {
	return t != nil && t.Kind == ErrorKind
}

// IsAssignableFrom reports whether a value statically typed as from may be
// used wherever t is expected (spec §4.C `assignable_from`):
//   - reflexive
//   - dyn unifies with anything in either direction
//   - error absorbs
//   - parameterized types decompose structurally
//   - optional<T> is invariant in T
func (t *Type) IsAssignableFrom(from *Type) bool {
	if t == nil || from == nil {
		return false
	}
	if t.isDyn() || from.isDyn() {
		return true
	}
	if t.IsError() || from.IsError() {
		return true
	}
	if t.Kind != from.Kind || t.TypeName() != from.TypeName() {
		return false
	}
	if len(t.Parameters) != len(from.Parameters) {
		return false
	}
	for i, tp := range t.Parameters {
		fp := from.Parameters[i]
		if t.Kind == OptionalKind {
			// optional<T> is invariant in T: neither side may widen.
			if !tp.IsExactly(fp) {
				return false
			}
			continue
		}
		if !tp.IsAssignableFrom(fp) {
			return false
		}
	}
	return true
}

// IsExactly reports structural type equality, treating dyn/type-param as
// opaque names rather than universal matches; used where invariance is
// required (e.g. optional's parameter).
func (t *Type) IsExactly(other *Type) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	if t.Kind != other.Kind || t.TypeName() != other.TypeName() || len(t.Parameters) != len(other.Parameters) {
		return false
	}
	for i, p := range t.Parameters {
		if !p.IsExactly(other.Parameters[i]) {
			return false
		}
	}
	return true
}

// Substitution maps a type-parameter name to the concrete Type it was
// unified with during overload resolution.
type Substitution map[string]*Type

// NewSubstitution creates an empty Substitution.
func NewSubstitution() Substitution { return make(Substitution) }

// Substitute replaces every type-parameter occurrence in t according to
// bindings, recursively. Types with no parameter occurrences are returned
// unchanged (spec §4.C `substitute`).
func Substitute(bindings Substitution, t *Type) *Type {
	if t == nil {
		return nil
	}
	if t.Kind == TypeParamKind {
		if bound, found := bindings[t.name]; found {
			// Follow chains, e.g. A -> B -> int.
			return Substitute(bindings, bound)
		}
		return t
	}
	if len(t.Parameters) == 0 {
		return t
	}
	params := make([]*Type, len(t.Parameters))
	changed := false
	for i, p := range t.Parameters {
		sp := Substitute(bindings, p)
		params[i] = sp
		if sp != p {
			changed = true
		}
	}
	if !changed {
		return t
	}
	cp := *t
	cp.Parameters = params
	return &cp
}

// Unify attempts to unify pattern (which may contain type-parameters)
// against concrete, extending bindings in place. On failure it returns
// false, and bindings may still hold parameter bindings made earlier in
// the same call; the checker unifies each candidate overload against a
// fresh substitution and drops it when unification fails, matching the
// teacher's checker.go isAssignable/mapping rollback-by-replacement
// pattern.
func Unify(bindings Substitution, pattern, concrete *Type) bool {
	if pattern == nil || concrete == nil {
		return false
	}
	pattern = Substitute(bindings, pattern)
	if pattern.Kind == TypeParamKind {
		if existing, found := bindings[pattern.name]; found {
			return Unify(bindings, existing, concrete)
		}
		bindings[pattern.name] = concrete
		return true
	}
	if pattern.isDyn() || concrete.isDyn() || pattern.IsError() || concrete.IsError() {
		return true
	}
	if pattern.Kind != concrete.Kind || pattern.TypeName() != concrete.TypeName() {
		return false
	}
	if len(pattern.Parameters) != len(concrete.Parameters) {
		return false
	}
	for i, pp := range pattern.Parameters {
		if !Unify(bindings, pp, concrete.Parameters[i]) {
			return false
		}
	}
	return true
}

// MostGeneral returns whichever of a, b is assignable from the other,
// preferring the more general (wider) type, and dyn when neither is; used
// when joining element types of a list/map literal.
func MostGeneral(a, b *Type) *Type {
	if a.isDyn() {
		return a
	}
	if b.isDyn() {
		return b
	}
	if a.IsAssignableFrom(b) {
		return a
	}
	if b.IsAssignableFrom(a) {
		return b
	}
	return DynType
}
