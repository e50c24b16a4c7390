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

// Package checker implements CEL's static type checker (spec §4.C): name
// resolution against a Container, overload resolution via unification, and
// a family of opt-in AST validators.
package checker

import (
	"celcore/common/containers"
	"celcore/common/decls"
	"celcore/common/types"
)

// Env holds every declaration the checker resolves identifiers and calls
// against: variables, functions (each with potentially many overloads),
// and the struct-type provider for message field lookups.
type Env struct {
	container *containers.Container
	vars      map[string]*decls.VariableDecl
	funcs     map[string]*decls.FunctionDecl
	provider  types.Provider
}

// NewEnv creates an Env scoped to container (nil means the root namespace),
// backed by provider for struct-type/field resolution.
func NewEnv(container *containers.Container, provider types.Provider) *Env {
	if container == nil {
		container, _ = containers.NewContainer()
	}
	return &Env{container: container, vars: make(map[string]*decls.VariableDecl), funcs: make(map[string]*decls.FunctionDecl), provider: provider}
}

// AddVariable declares a variable (or overwrites a previous declaration of
// the same name — the caller, not the Env, decides whether that is an
// error).
func (e *Env) AddVariable(v *decls.VariableDecl) { e.vars[v.Name] = v }

// AddFunction declares or extends a function's overload set; overloads
// already present under the same ID are replaced, new ones appended.
func (e *Env) AddFunction(f *decls.FunctionDecl) {
	existing, found := e.funcs[f.Name]
	if !found {
		e.funcs[f.Name] = f
		return
	}
	byID := make(map[string]*decls.Overload, len(f.Overloads))
	for _, o := range f.Overloads {
		byID[o.ID] = o
	}
	merged := &decls.FunctionDecl{Name: f.Name}
	for _, o := range existing.Overloads {
		if replacement, found := byID[o.ID]; found {
			o = replacement
			delete(byID, o.ID)
		}
		merged.Overloads = append(merged.Overloads, o)
	}
	for _, o := range f.Overloads {
		if _, pending := byID[o.ID]; pending {
			merged.Overloads = append(merged.Overloads, o)
			delete(byID, o.ID)
		}
	}
	e.funcs[f.Name] = merged
}

// Extend returns a child Env narrowed to a nested container segment
// (e.g. entering a comprehension's loop body does not need a new Env,
// but a nested package declaration would).
func (e *Env) Extend(segment string) *Env {
	child := &Env{container: e.container.Extend(segment), vars: make(map[string]*decls.VariableDecl), funcs: e.funcs, provider: e.provider}
	for k, v := range e.vars {
		child.vars[k] = v
	}
	return child
}

// LookupVariable resolves name through container-qualified candidate
// search (spec §4.C), returning the first declared match.
func (e *Env) LookupVariable(name string) (*decls.VariableDecl, bool) {
	for _, candidate := range e.container.ResolveName(name) {
		if v, found := e.vars[candidate]; found {
			return v, true
		}
	}
	return nil, false
}

// LookupFunction resolves a function name the same way variables are
// resolved.
func (e *Env) LookupFunction(name string) (*decls.FunctionDecl, bool) {
	for _, candidate := range e.container.ResolveName(name) {
		if f, found := e.funcs[candidate]; found {
			return f, true
		}
	}
	return nil, false
}

// Provider exposes the struct-type provider for field resolution.
func (e *Env) Provider() types.Provider { return e.provider }

// Container exposes the current namespace, for diagnostics and nested
// Env construction.
func (e *Env) Container() *containers.Container { return e.container }
