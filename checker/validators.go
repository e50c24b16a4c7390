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

package checker

import (
	"regexp"
	"time"

	"celcore/ast"
	"celcore/common"
	celtypes "celcore/types"
)

// Validator is an opt-in AST pass run after Check succeeds (spec §4.G):
// unlike the core checker, a validator never changes the type/reference
// annotations, it only reports additional diagnostics against the already
// checked tree.
type Validator func(tree *ast.AST, errs *common.Errors)

// AstDepthLimit rejects expressions whose navigable height exceeds max,
// guarding the interpreter (and anything that recurses over the tree)
// against stack exhaustion from pathologically nested input.
func AstDepthLimit(max int) Validator {
	return func(tree *ast.AST, errs *common.Errors) {
		root := ast.Navigate(tree.Expr())
		if h := root.Height(); h > max {
			errs.ReportError(tree.Expr().Location(), common.KindSyntax,
				"expression depth %d exceeds the configured maximum of %d", h, max)
		}
	}
}

// ComprehensionNestingLimit rejects expressions with more than max
// comprehension nodes on any single root-to-leaf path, independent of the
// overall AST depth limit (a shallow expression can still nest
// comprehensions expensively via `all`/`exists`/`map`/`filter` chains).
func ComprehensionNestingLimit(max int) Validator {
	return func(tree *ast.AST, errs *common.Errors) {
		var walk func(n *ast.NavigableExpr, depth int)
		walk = func(n *ast.NavigableExpr, depth int) {
			if n.Kind() == ast.ComprehensionKind {
				depth++
				if depth > max {
					errs.ReportError(n.Location(), common.KindSyntax,
						"comprehension nesting depth %d exceeds the configured maximum of %d", depth, max)
				}
			}
			for _, c := range n.Children() {
				walk(c, depth)
			}
		}
		walk(ast.Navigate(tree.Expr()), 0)
	}
}

// typeOf fetches the checker-recorded type of e, defaulting to dyn if the
// tree was never checked (validators are expected to run after Check, but
// degrade gracefully rather than panic).
func typeOf(tree *ast.AST, e ast.Expr) *celtypes.Type {
	v, found := tree.TypeMap()[e.ID()]
	if !found {
		return celtypes.DynType
	}
	t, ok := v.(*celtypes.Type)
	if !ok {
		return celtypes.DynType
	}
	return t
}

// HomogeneousLiteral rejects list and map literals whose element types are
// not exactly identical (dyn excepted), catching mixed-type literals the
// checker's looser MostGeneral join would otherwise silently widen away
// (spec §4.G).
func HomogeneousLiteral() Validator {
	return func(tree *ast.AST, errs *common.Errors) {
		for _, n := range ast.Navigate(tree.Expr()).AllNodes(ast.PreOrder) {
			switch n.Kind() {
			case ast.ListKind:
				checkHomogeneous(tree, errs, n.Location(), elementTypes(tree, n.AsList().Elements()))
			case ast.MapKind:
				entries := n.AsMap().Entries()
				keys := make([]ast.Expr, len(entries))
				vals := make([]ast.Expr, len(entries))
				for i, ent := range entries {
					keys[i], vals[i] = ent.Key(), ent.Value()
				}
				checkHomogeneous(tree, errs, n.Location(), elementTypes(tree, keys))
				checkHomogeneous(tree, errs, n.Location(), elementTypes(tree, vals))
			}
		}
	}
}

func elementTypes(tree *ast.AST, elems []ast.Expr) []*celtypes.Type {
	out := make([]*celtypes.Type, len(elems))
	for i, e := range elems {
		out[i] = typeOf(tree, e)
	}
	return out
}

func checkHomogeneous(tree *ast.AST, errs *common.Errors, loc common.Location, types []*celtypes.Type) {
	var first *celtypes.Type
	for _, t := range types {
		if t.Kind == celtypes.DynKind {
			continue
		}
		if first == nil {
			first = t
			continue
		}
		if !first.IsExactly(t) {
			errs.ReportError(loc, common.KindTypeCheck, "literal has mixed element types %s and %s", first, t)
			return
		}
	}
}

// RegexLiteral validates that every string-literal argument to the
// standard `matches` function compiles as a valid RE2 expression at check
// time rather than failing at evaluation.
func RegexLiteral() Validator {
	return func(tree *ast.AST, errs *common.Errors) {
		for _, n := range ast.Navigate(tree.Expr()).AllNodes(ast.PreOrder) {
			if n.Kind() != ast.CallKind {
				continue
			}
			call := n.AsCall()
			if call.FunctionName() != "matches" {
				continue
			}
			args := call.Args()
			if call.Target() != nil && len(args) != 1 {
				continue
			}
			pattern := args[len(args)-1]
			if pattern.Kind() != ast.LiteralKind || pattern.AsLiteral().Type() != ast.LiteralString {
				continue
			}
			if _, err := regexp.Compile(pattern.AsLiteral().StringValue()); err != nil {
				errs.ReportError(pattern.Location(), common.KindBadFormat, "invalid regular expression: %s", err)
			}
		}
	}
}

// TimestampDurationLiteral validates that every string-literal argument to
// the standard `timestamp`/`duration` conversion functions parses
// successfully at check time.
func TimestampDurationLiteral() Validator {
	return func(tree *ast.AST, errs *common.Errors) {
		for _, n := range ast.Navigate(tree.Expr()).AllNodes(ast.PreOrder) {
			if n.Kind() != ast.CallKind {
				continue
			}
			call := n.AsCall()
			if call.Target() != nil || len(call.Args()) != 1 {
				continue
			}
			arg := call.Args()[0]
			if arg.Kind() != ast.LiteralKind || arg.AsLiteral().Type() != ast.LiteralString {
				continue
			}
			s := arg.AsLiteral().StringValue()
			switch call.FunctionName() {
			case "timestamp":
				if _, err := time.Parse(time.RFC3339, s); err != nil {
					errs.ReportError(arg.Location(), common.KindBadFormat, "invalid timestamp literal %q: %s", s, err)
				}
			case "duration":
				if _, err := time.ParseDuration(s); err != nil {
					errs.ReportError(arg.Location(), common.KindBadFormat, "invalid duration literal %q: %s", s, err)
				}
			}
		}
	}
}
