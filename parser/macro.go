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

package parser

import (
	"fmt"

	"celcore/ast"
	"celcore/common"
	"celcore/operators"
)

// Macro recognizes one standard-library call shape and lowers it to its
// canonical expansion (spec §4.D): `has` lowers to a test-only Select,
// the quantifiers and `map`/`filter` lower to a Comprehension.
type Macro struct {
	function       string
	argCount       int
	receiverStyle  bool
	expand         func(fac *ast.Factory, target ast.Expr, args []ast.Expr, loc common.Location) (ast.Expr, error)
}

// NewGlobalMacro registers an extension macro for the global call form
// `function(args...)` (SPEC_FULL §12's macro extension registration),
// expanded the same way the standard family is.
func NewGlobalMacro(function string, argCount int, expand func(fac *ast.Factory, target ast.Expr, args []ast.Expr, loc common.Location) (ast.Expr, error)) Macro {
	return Macro{function: function, argCount: argCount, receiverStyle: false, expand: expand}
}

// NewReceiverMacro registers an extension macro for the receiver call form
// `target.function(args...)`.
func NewReceiverMacro(function string, argCount int, expand func(fac *ast.Factory, target ast.Expr, args []ast.Expr, loc common.Location) (ast.Expr, error)) Macro {
	return Macro{function: function, argCount: argCount, receiverStyle: true, expand: expand}
}

func (m Macro) key() string {
	style := "g"
	if m.receiverStyle {
		style = "m"
	}
	return fmt.Sprintf("%s/%d/%s", m.function, m.argCount, style)
}

// macroSource mirrors ast.MacroSource but keeps the parser package free of
// depending on the exported ast.MacroSource field layout until it is ready
// to be recorded.
type macroSource struct {
	name string
	call ast.Expr
}

// accuVarName is the reserved accumulator variable every standard macro's
// comprehension uses; CEL reserves this name so user expressions may not
// legally declare a variable of the same name inside a macro's arguments
// (spec §4.D).
const accuVarName = "__result__"

// standardMacros returns the `has`, `all`, `exists`, `exists_one`, `map`
// (2- and 3-arg), and `filter` macros (spec §4.D).
func standardMacros() map[string]Macro {
	macros := []Macro{
		{function: operators.Has, argCount: 1, receiverStyle: false, expand: expandHas},
		{function: operators.All, argCount: 2, receiverStyle: true, expand: expandAll},
		{function: operators.Exists, argCount: 2, receiverStyle: true, expand: expandExists},
		{function: operators.ExistsOne, argCount: 2, receiverStyle: true, expand: expandExistsOne},
		{function: operators.Map, argCount: 2, receiverStyle: true, expand: expandMap2},
		{function: operators.Map, argCount: 3, receiverStyle: true, expand: expandMap3},
		{function: operators.Filter, argCount: 2, receiverStyle: true, expand: expandFilter},
	}
	out := make(map[string]Macro, len(macros))
	for _, m := range macros {
		out[m.key()] = m
	}
	return out
}

// expandMacros walks expr bottom-up, replacing any Call node that matches a
// registered macro with its canonical lowering. Subtrees untouched by a
// macro keep their original node identity (and thus their parser-assigned
// IDs); a replaced call's expansion, and every ancestor rebuilt to hold a
// rewritten child, receive fresh IDs from fac.
func expandMacros(fac *ast.Factory, expr ast.Expr, macros map[string]Macro, errs *common.Errors) (ast.Expr, map[int64]macroSource) {
	sources := make(map[int64]macroSource)
	result := rewrite(fac, expr, macros, errs, sources)
	return result, sources
}

func rewrite(fac *ast.Factory, e ast.Expr, macros map[string]Macro, errs *common.Errors, sources map[int64]macroSource) ast.Expr {
	switch e.Kind() {
	case ast.CallKind:
		c := e.AsCall()
		var target ast.Expr
		changed := false
		if c.Target() != nil {
			target = rewrite(fac, c.Target(), macros, errs, sources)
			changed = target != c.Target()
		}
		args := make([]ast.Expr, len(c.Args()))
		for i, a := range c.Args() {
			args[i] = rewrite(fac, a, macros, errs, sources)
			if args[i] != a {
				changed = true
			}
		}
		style := "g"
		if c.IsMemberFunction() {
			style = "m"
		}
		key := fmt.Sprintf("%s/%d/%s", c.FunctionName(), len(args), style)
		if m, found := macros[key]; found {
			expanded, err := m.expand(fac, target, args, e.Location())
			if err != nil {
				errs.ReportError(e.Location(), common.KindSyntax, "%s", err.Error())
				return e
			}
			original := e
			if changed {
				if c.IsMemberFunction() {
					original = fac.NewMemberCall(e.Location(), c.FunctionName(), target, args...)
				} else {
					original = fac.NewCall(e.Location(), c.FunctionName(), args...)
				}
			}
			sources[expanded.ID()] = macroSource{name: m.function, call: original}
			return expanded
		}
		if !changed {
			return e
		}
		if c.IsMemberFunction() {
			return fac.NewMemberCall(e.Location(), c.FunctionName(), target, args...)
		}
		return fac.NewCall(e.Location(), c.FunctionName(), args...)
	case ast.SelectKind:
		s := e.AsSelect()
		operand := rewrite(fac, s.Operand(), macros, errs, sources)
		if operand == s.Operand() {
			return e
		}
		return fac.NewSelect(e.Location(), operand, s.FieldName(), s.IsTestOnly())
	case ast.ListKind:
		l := e.AsList()
		elems := make([]ast.Expr, len(l.Elements()))
		changed := false
		for i, el := range l.Elements() {
			elems[i] = rewrite(fac, el, macros, errs, sources)
			if elems[i] != el {
				changed = true
			}
		}
		if !changed {
			return e
		}
		return fac.NewList(e.Location(), elems, l.OptionalIndices())
	case ast.MapKind:
		m := e.AsMap()
		entries := make([]ast.MapEntry, len(m.Entries()))
		changed := false
		for i, ent := range m.Entries() {
			k := rewrite(fac, ent.Key(), macros, errs, sources)
			v := rewrite(fac, ent.Value(), macros, errs, sources)
			if k != ent.Key() || v != ent.Value() {
				changed = true
				entries[i] = fac.NewMapEntry(ent.Key().Location(), k, v, ent.IsOptional())
			} else {
				entries[i] = ent
			}
		}
		if !changed {
			return e
		}
		return fac.NewMap(e.Location(), entries)
	case ast.StructKind:
		s := e.AsStruct()
		fields := make([]ast.StructField, len(s.Fields()))
		changed := false
		for i, fl := range s.Fields() {
			v := rewrite(fac, fl.Value(), macros, errs, sources)
			if v != fl.Value() {
				changed = true
				fields[i] = fac.NewStructField(v.Location(), fl.Name(), v, fl.IsOptional())
			} else {
				fields[i] = fl
			}
		}
		if !changed {
			return e
		}
		return fac.NewStruct(e.Location(), s.TypeName(), fields)
	default:
		return e
	}
}

// expandHas lowers `has(operand.field)` to a test-only Select; the single
// argument must itself be a (non-macro) field selection (spec §4.D).
func expandHas(fac *ast.Factory, target ast.Expr, args []ast.Expr, loc common.Location) (ast.Expr, error) {
	if args[0].Kind() != ast.SelectKind {
		return nil, fmt.Errorf("has() requires a field selection argument")
	}
	s := args[0].AsSelect()
	return fac.NewSelect(loc, s.Operand(), s.FieldName(), true), nil
}

func identName(e ast.Expr) (string, error) {
	if e.Kind() != ast.IdentKind {
		return "", fmt.Errorf("expected a simple identifier for the iteration variable")
	}
	return e.AsIdent(), nil
}

// expandAll lowers `range.all(v, predicate)` to:
//
//	__result__ = true; for v in range: __result__ = __result__ && predicate
//
// short-circuiting to false as soon as one iteration fails (spec §4.D).
func expandAll(fac *ast.Factory, target ast.Expr, args []ast.Expr, loc common.Location) (ast.Expr, error) {
	v, err := identName(args[0])
	if err != nil {
		return nil, err
	}
	pred := args[1]
	accuInit := fac.NewLiteral(loc, ast.BoolLiteral(true))
	loopCond := fac.NewIdent(loc, accuVarName)
	step := fac.NewCall(loc, operators.LogicalAnd, fac.NewIdent(loc, accuVarName), pred)
	result := fac.NewIdent(loc, accuVarName)
	return fac.NewComprehension(loc, v, target, accuVarName, accuInit, loopCond, step, result), nil
}

// expandExists lowers `range.exists(v, predicate)` to the existential dual
// of all(): short-circuits to true as soon as one iteration succeeds.
func expandExists(fac *ast.Factory, target ast.Expr, args []ast.Expr, loc common.Location) (ast.Expr, error) {
	v, err := identName(args[0])
	if err != nil {
		return nil, err
	}
	pred := args[1]
	accuInit := fac.NewLiteral(loc, ast.BoolLiteral(false))
	loopCond := fac.NewCall(loc, operators.LogicalNot, fac.NewIdent(loc, accuVarName))
	step := fac.NewCall(loc, operators.LogicalOr, fac.NewIdent(loc, accuVarName), pred)
	result := fac.NewIdent(loc, accuVarName)
	return fac.NewComprehension(loc, v, target, accuVarName, accuInit, loopCond, step, result), nil
}

// expandExistsOne lowers `range.exists_one(v, predicate)` to a count of
// matching iterations, with the comprehension's result testing count == 1;
// unlike all/exists it always visits every element (no short-circuit),
// since the count is only known after the full pass (spec §4.D).
func expandExistsOne(fac *ast.Factory, target ast.Expr, args []ast.Expr, loc common.Location) (ast.Expr, error) {
	v, err := identName(args[0])
	if err != nil {
		return nil, err
	}
	pred := args[1]
	accuInit := fac.NewLiteral(loc, ast.IntLiteral(0))
	loopCond := fac.NewLiteral(loc, ast.BoolLiteral(true))
	increment := fac.NewCall(loc, operators.Add, fac.NewIdent(loc, accuVarName), fac.NewLiteral(loc, ast.IntLiteral(1)))
	step := fac.NewCall(loc, operators.Conditional, pred, increment, fac.NewIdent(loc, accuVarName))
	result := fac.NewCall(loc, operators.Equals, fac.NewIdent(loc, accuVarName), fac.NewLiteral(loc, ast.IntLiteral(1)))
	return fac.NewComprehension(loc, v, target, accuVarName, accuInit, loopCond, step, result), nil
}

// expandMap2 lowers `range.map(v, transform)` to a list built by appending
// `transform` for every element (spec §4.D).
func expandMap2(fac *ast.Factory, target ast.Expr, args []ast.Expr, loc common.Location) (ast.Expr, error) {
	v, err := identName(args[0])
	if err != nil {
		return nil, err
	}
	transform := args[1]
	accuInit := fac.NewList(loc, nil, nil)
	loopCond := fac.NewLiteral(loc, ast.BoolLiteral(true))
	step := fac.NewCall(loc, operators.Add, fac.NewIdent(loc, accuVarName), fac.NewList(loc, []ast.Expr{transform}, nil))
	result := fac.NewIdent(loc, accuVarName)
	return fac.NewComprehension(loc, v, target, accuVarName, accuInit, loopCond, step, result), nil
}

// expandMap3 lowers the 3-arg `range.map(v, filterPred, transform)` form:
// only elements passing filterPred contribute a (transformed) element to
// the result list (spec §4.D).
func expandMap3(fac *ast.Factory, target ast.Expr, args []ast.Expr, loc common.Location) (ast.Expr, error) {
	v, err := identName(args[0])
	if err != nil {
		return nil, err
	}
	filterPred := args[1]
	transform := args[2]
	accuInit := fac.NewList(loc, nil, nil)
	loopCond := fac.NewLiteral(loc, ast.BoolLiteral(true))
	appended := fac.NewCall(loc, operators.Add, fac.NewIdent(loc, accuVarName), fac.NewList(loc, []ast.Expr{transform}, nil))
	step := fac.NewCall(loc, operators.Conditional, filterPred, appended, fac.NewIdent(loc, accuVarName))
	result := fac.NewIdent(loc, accuVarName)
	return fac.NewComprehension(loc, v, target, accuVarName, accuInit, loopCond, step, result), nil
}

// expandFilter lowers `range.filter(v, predicate)` to a list of the
// elements of range for which predicate holds (spec §4.D).
func expandFilter(fac *ast.Factory, target ast.Expr, args []ast.Expr, loc common.Location) (ast.Expr, error) {
	v, err := identName(args[0])
	if err != nil {
		return nil, err
	}
	pred := args[1]
	accuInit := fac.NewList(loc, nil, nil)
	loopCond := fac.NewLiteral(loc, ast.BoolLiteral(true))
	appended := fac.NewCall(loc, operators.Add, fac.NewIdent(loc, accuVarName), fac.NewList(loc, []ast.Expr{fac.NewIdent(loc, v)}, nil))
	step := fac.NewCall(loc, operators.Conditional, pred, appended, fac.NewIdent(loc, accuVarName))
	result := fac.NewIdent(loc, accuVarName)
	return fac.NewComprehension(loc, v, target, accuVarName, accuInit, loopCond, step, result), nil
}
