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

// Package interpreter evaluates a checked (or unchecked) AST against an
// Activation, producing a runtime Value (spec §4.E). Unlike the teacher's
// attribute/qualifier planner, celcore's planner walks the tree directly:
// Select and Index resolve their operand eagerly rather than building a
// lazy attribute chain, trading the teacher's field-pruning optimization
// for a much simpler evaluator appropriate to celcore's scope.
package interpreter

import "celcore/common/types"

// Activation supplies variable bindings during evaluation.
type Activation interface {
	// ResolveName returns the bound value for name, or false if unbound.
	ResolveName(name string) (types.Value, bool)
	// Parent returns the enclosing Activation, or nil at the root; used so
	// comprehension loop variables can shadow outer bindings without
	// copying the whole binding set per iteration.
	Parent() Activation
}

// mapActivation is the common case: a flat set of name->value bindings
// supplied by the caller of Program.Eval.
type mapActivation struct {
	bindings map[string]types.Value
}

// NewActivation wraps bindings as a root Activation.
func NewActivation(bindings map[string]types.Value) Activation {
	return &mapActivation{bindings: bindings}
}

func (a *mapActivation) ResolveName(name string) (types.Value, bool) {
	v, found := a.bindings[name]
	return v, found
}

func (a *mapActivation) Parent() Activation { return nil }

// varActivation binds a single additional name (a comprehension's iterVar
// or accuVar) in front of a parent Activation, avoiding a map allocation
// per loop iteration.
type varActivation struct {
	name   string
	val    types.Value
	parent Activation
}

// NewVarActivation layers a single binding in front of parent.
func NewVarActivation(name string, val types.Value, parent Activation) Activation {
	return &varActivation{name: name, val: val, parent: parent}
}

func (a *varActivation) ResolveName(name string) (types.Value, bool) {
	if name == a.name {
		return a.val, true
	}
	if a.parent != nil {
		return a.parent.ResolveName(name)
	}
	return nil, false
}

func (a *varActivation) Parent() Activation { return a.parent }

// partialActivation resolves a declared subset of known bindings and
// reports every other name as unknown rather than unbound, so an
// expression referencing a not-yet-available variable evaluates to an
// *types.UnknownSet instead of erroring (SPEC_FULL §12's partial/unknown
// evaluation). Names outside both the known bindings and the declared
// unknown set remain genuinely unbound, matching a plain Activation.
type partialActivation struct {
	known   map[string]types.Value
	unknown map[string]bool
}

// NewPartialActivation builds an Activation over known bindings where the
// variables named in unknownVars resolve to an unknown value rather than
// an unbound error; every other undeclared name is still unbound.
func NewPartialActivation(known map[string]types.Value, unknownVars ...string) Activation {
	u := make(map[string]bool, len(unknownVars))
	for _, n := range unknownVars {
		u[n] = true
	}
	return &partialActivation{known: known, unknown: u}
}

func (a *partialActivation) ResolveName(name string) (types.Value, bool) {
	if v, found := a.known[name]; found {
		return v, true
	}
	if a.unknown[name] {
		return types.NewUnknownSet(0), true
	}
	return nil, false
}

func (a *partialActivation) Parent() Activation { return nil }
