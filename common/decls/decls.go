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

// Package decls holds the declaration types the checker resolves names
// against: variables and functions, the latter as a set of overloads each
// with its own parameter/result types (spec §4.C "Declarations").
package decls

import (
	"fmt"
	"strings"

	celtypes "celcore/types"
)

// VariableDecl declares a single identifier's static type.
type VariableDecl struct {
	Name string
	Type *celtypes.Type
}

// NewVariable declares a variable of the given type.
func NewVariable(name string, t *celtypes.Type) *VariableDecl {
	return &VariableDecl{Name: name, Type: t}
}

// NewConstant declares a variable whose value is already known, used for
// enum-like constants; celcore tracks only the static type at this layer,
// the constant's Value itself lives in the type provider's ident table.
func NewConstant(name string, t *celtypes.Type) *VariableDecl {
	return NewVariable(name, t)
}

// Overload is one signature of an overloaded function: either a global
// function `f(a, b)` or a receiver-style method `a.f(b)`, distinguished by
// MemberFunction. TypeParams lists the type-parameter names introduced by
// this overload, bound fresh on every call-site unification.
type Overload struct {
	ID             string
	ArgTypes       []*celtypes.Type
	ResultType     *celtypes.Type
	MemberFunction bool
	TypeParams     []string
	// NonStrict marks an overload (such as the conditional operator's
	// internal lowering) whose arguments may themselves be errors or
	// unknowns without short-circuiting evaluation of the call itself; the
	// stdlib uses this only internally, ordinary function declarations
	// leave it false (spec §4.G strict-by-default evaluation).
	NonStrict bool
}

// NewOverload declares a non-member overload.
func NewOverload(id string, resultType *celtypes.Type, argTypes ...*celtypes.Type) *Overload {
	return &Overload{ID: id, ArgTypes: argTypes, ResultType: resultType}
}

// NewMemberOverload declares a receiver-style overload; argTypes[0] is the
// receiver's type.
func NewMemberOverload(id string, resultType *celtypes.Type, argTypes ...*celtypes.Type) *Overload {
	return &Overload{ID: id, ArgTypes: argTypes, ResultType: resultType, MemberFunction: true}
}

// WithTypeParams records the overload's free type-parameter names, so the
// checker knows which argument-type names must be unified rather than
// matched exactly.
func (o *Overload) WithTypeParams(names ...string) *Overload {
	o.TypeParams = names
	return o
}

// FunctionDecl declares a function name together with every overload
// registered for it; overload IDs must be unique within an Env (spec §4.C).
type FunctionDecl struct {
	Name      string
	Overloads []*Overload
}

// NewFunction declares a function with the given overloads.
func NewFunction(name string, overloads ...*Overload) *FunctionDecl {
	return &FunctionDecl{Name: name, Overloads: overloads}
}

// FindOverload looks up one of this function's overloads by ID.
func (f *FunctionDecl) FindOverload(id string) (*Overload, bool) {
	for _, o := range f.Overloads {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}

// Signature renders a human-readable signature for diagnostics, e.g.
// "add_int64(int, int) -> int".
func (o *Overload) Signature(name string) string {
	args := make([]string, len(o.ArgTypes))
	for i, t := range o.ArgTypes {
		args[i] = t.String()
	}
	sep := ""
	if o.MemberFunction && len(args) > 0 {
		return fmt.Sprintf("%s.%s(%s) -> %s", args[0], name, strings.Join(args[1:], ", "), o.ResultType)
	}
	return fmt.Sprintf("%s%s(%s) -> %s", name, sep, strings.Join(args, ", "), o.ResultType)
}
