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

// Package types implements the CEL runtime value model (spec §4.F): an
// immutable tagged union with equality, ordering, conversion, and the
// arithmetic/string/collection/time operations the standard library
// dispatches to.
package types

import (
	"fmt"

	"celcore/common"
	celtypes "celcore/types"
)

// Value is the interface every runtime CEL value implements. Containers
// never mutate after being handed to the evaluator (spec §3).
type Value interface {
	// Type returns the value's static CEL type.
	Type() *celtypes.Type
	// Value returns the native Go value this wraps, for host interop.
	Value() any
	// Equal implements CEL structural equality; the result is itself a
	// Value since comparisons against incompatible types or unknowns must
	// propagate rather than panic.
	Equal(other Value) Value
	// String renders a debug form; not used for CEL's own string()
	// conversion function.
	String() string
}

// Null is the singleton null value.
type Null struct{}

// NullValue is the sole instance of Null.
var NullValue = Null{}

func (Null) Type() *celtypes.Type { return celtypes.NullType }
func (Null) Value() any           { return nil }
func (Null) String() string       { return "null" }
func (n Null) Equal(other Value) Value {
	if _, ok := other.(Null); ok {
		return Bool(true)
	}
	return Bool(false)
}

// Bool is a boolean value.
type Bool bool

func (b Bool) Type() *celtypes.Type { return celtypes.BoolType }
func (b Bool) Value() any           { return bool(b) }
func (b Bool) String() string       { return fmt.Sprintf("%v", bool(b)) }
func (b Bool) Equal(other Value) Value {
	o, ok := other.(Bool)
	return Bool(ok && b == o)
}

// Negate implements unary `!`.
func (b Bool) Negate() Bool { return !b }

// Err represents a CEL evaluation error as a first-class value so that it
// can flow through expressions and be inspected/suppressed by the
// short-circuit operators (spec §4.G, §7).
type Err struct {
	Kind     common.Kind
	Message  string
	NodeID   int64
	Location common.Location
}

// NewErr creates an Err of kind with a formatted message.
func NewErr(kind common.Kind, format string, args ...any) *Err {
	return &Err{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithNode attaches the offending node's ID and location (spec §7
// propagation: "errors carry the offending node's ID and source
// location").
func (e *Err) WithNode(id int64, loc common.Location) *Err {
	cp := *e
	cp.NodeID = id
	cp.Location = loc
	return &cp
}

func (e *Err) Type() *celtypes.Type { return celtypes.ErrorType }
func (e *Err) Value() any           { return e }
func (e *Err) String() string       { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }
func (e *Err) Error() string        { return e.Message }
func (e *Err) Equal(other Value) Value {
	// Errors are never equal to anything, including another error — an
	// error comparison itself yields an error rather than a bool.
	return e
}

// IsError reports whether v is an *Err.
func IsError(v Value) bool {
	_, ok := v.(*Err)
	return ok
}

// MaybeErr returns v's underlying *Err and true if v is an error, or nil
// and false otherwise; a convenience for call sites that need the
// concrete type.
func MaybeErr(v Value) (*Err, bool) {
	e, ok := v.(*Err)
	return e, ok
}

// UnknownSet is the set of node IDs an evaluation could not resolve, used
// when enable_unknown_tracking is set (spec §4.G); attribute paths are not
// recorded. It is represented as a Value so it can be threaded through
// ordinary evaluation the same way an Err is.
type UnknownSet struct {
	NodeIDs map[int64]bool
}

// NewUnknownSet creates an UnknownSet containing a single node ID.
func NewUnknownSet(id int64) *UnknownSet {
	return &UnknownSet{NodeIDs: map[int64]bool{id: true}}
}

func (u *UnknownSet) Type() *celtypes.Type { return celtypes.DynType }
func (u *UnknownSet) Value() any           { return u }
func (u *UnknownSet) String() string       { return "unknown" }
func (u *UnknownSet) Equal(other Value) Value {
	return u
}

// Merge returns the union of u and other's node IDs as a new UnknownSet.
func (u *UnknownSet) Merge(other *UnknownSet) *UnknownSet {
	merged := &UnknownSet{NodeIDs: make(map[int64]bool, len(u.NodeIDs)+len(other.NodeIDs))}
	for id := range u.NodeIDs {
		merged.NodeIDs[id] = true
	}
	for id := range other.NodeIDs {
		merged.NodeIDs[id] = true
	}
	return merged
}

// IsUnknown reports whether v is an *UnknownSet.
func IsUnknown(v Value) bool {
	_, ok := v.(*UnknownSet)
	return ok
}

// MaybeMergeUnknowns inspects vals for *UnknownSet members and, if any are
// found, returns their union; used by arithmetic and call evaluation to
// propagate unknowns (spec §4.G).
func MaybeMergeUnknowns(vals ...Value) (*UnknownSet, bool) {
	var merged *UnknownSet
	for _, v := range vals {
		if u, ok := v.(*UnknownSet); ok {
			if merged == nil {
				merged = u
			} else {
				merged = merged.Merge(u)
			}
		}
	}
	return merged, merged != nil
}

// TypeValue wraps a celtypes.Type as a runtime Value, letting a type
// literal (e.g. `int` used in an expression context, or a struct type name
// resolved during construction) flow through the interpreter like any
// other value.
type TypeValue struct {
	T *celtypes.Type
}

func (t *TypeValue) Type() *celtypes.Type { return celtypes.NewTypeType(t.T) }
func (t *TypeValue) Value() any           { return t.T }
func (t *TypeValue) String() string       { return t.T.String() }
func (t *TypeValue) Equal(other Value) Value {
	o, ok := other.(*TypeValue)
	return Bool(ok && t.T.TypeName() == o.T.TypeName())
}
