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

package interpreter

import (
	"celcore/common"
	"celcore/common/decls"
	"celcore/common/stdlib"
	"celcore/common/types"
	celtypes "celcore/types"
)

// Dispatcher resolves a function call's overload(s) to a concrete
// implementation at evaluation time. When the checker already recorded a
// single resolved overload ID (the static-dispatch case), the dispatcher
// looks that up directly; otherwise (an unchecked AST, or a reference with
// several candidate overloads left by the checker) it falls back to
// dynamic dispatch over every registered overload of the function name,
// picking the first whose declared argument kinds accept the runtime
// arguments' kinds and whose Impl does not itself report
// KindNoMatchingOverload. Only type kinds are compared, not type
// parameters or message names.
type Dispatcher struct {
	functions map[string]*stdlib.Function
}

// NewDispatcher builds a Dispatcher from the given libraries. A later
// library's overloads merge into an earlier library's function of the same
// name by overload ID (a later overload of the same ID replaces the
// earlier one; distinct IDs accumulate), the same layering rule
// checker.Env.AddFunction applies, so an extension library can add
// overloads to a standard function without hiding the ones already there.
func NewDispatcher(libs ...*stdlib.Library) *Dispatcher {
	d := &Dispatcher{functions: make(map[string]*stdlib.Function)}
	for _, lib := range libs {
		for _, f := range lib.Functions {
			existing, found := d.functions[f.Decl.Name]
			if !found {
				d.functions[f.Decl.Name] = f
				continue
			}
			d.functions[f.Decl.Name] = mergeFunctions(existing, f)
		}
	}
	return d
}

// mergeFunctions combines a and b's declarations and Impls by overload ID,
// b's entries taking precedence over a's on collision.
func mergeFunctions(a, b *stdlib.Function) *stdlib.Function {
	overloads := make(map[string]*decls.Overload, len(a.Decl.Overloads)+len(b.Decl.Overloads))
	for _, o := range a.Decl.Overloads {
		overloads[o.ID] = o
	}
	for _, o := range b.Decl.Overloads {
		overloads[o.ID] = o
	}
	merged := &decls.FunctionDecl{Name: a.Decl.Name}
	for _, o := range overloads {
		merged.Overloads = append(merged.Overloads, o)
	}
	impls := make(map[string]stdlib.Impl, len(a.Impls)+len(b.Impls))
	for id, impl := range a.Impls {
		impls[id] = impl
	}
	for id, impl := range b.Impls {
		impls[id] = impl
	}
	return &stdlib.Function{Decl: merged, Impls: impls}
}

// Dispatch invokes function on args, calling the checker's static
// resolution directly when overloadIDs holds exactly one ID, else trying
// every overload of the function whose argument kinds accept args.
func (d *Dispatcher) Dispatch(function string, overloadIDs []string, args []types.Value) types.Value {
	f, found := d.functions[function]
	if !found {
		return types.NewErr(common.KindNoMatchingOverload, "no such function: %s", function)
	}
	if len(overloadIDs) == 1 {
		var last types.Value
		for _, id := range overloadIDs {
			impl, found := f.FindImpl(id)
			if !found {
				continue
			}
			result := impl(args)
			if !types.IsError(result) {
				return result
			}
			last = result
		}
		if last != nil {
			return last
		}
		return types.NewErr(common.KindNoMatchingOverload, "no matching overload for %s", function)
	}
	for _, o := range f.Decl.Overloads {
		match := len(o.ArgTypes) == len(args)
		for i := 0; match && i < len(args); i++ {
			want, got := o.ArgTypes[i].Kind, args[i].Type().Kind
			match = want == got || want == celtypes.DynKind || want == celtypes.TypeParamKind || got == celtypes.DynKind
		}
		if !match {
			continue
		}
		impl, found := f.FindImpl(o.ID)
		if !found {
			continue
		}
		result := impl(args)
		if e, isErr := types.MaybeErr(result); !isErr || e.Kind != common.KindNoMatchingOverload {
			return result
		}
	}
	return types.NewErr(common.KindNoMatchingOverload, "no matching overload for %s(%d args)", function, len(args))
}
