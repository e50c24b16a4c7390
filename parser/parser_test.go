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
	"testing"

	"celcore/ast"
	"celcore/common"
)

func parse(t *testing.T, expr string, opts ...Option) *ast.AST {
	t.Helper()
	p := NewParser(opts...)
	src := common.NewTextSource(expr, "<test>")
	tree, errs := p.Parse(src)
	if errs.HasErrors() {
		t.Fatalf("Parse(%q) failed: %s", expr, errs.ToDisplayString())
	}
	return tree
}

func TestParseValidExpressions(t *testing.T) {
	exprs := []string{
		`1 + 2 * 3`,
		`(1 + 2) * 3`,
		`"a" + "b"`,
		`true && false || true`,
		`!true`,
		`-1`,
		`a.b.c`,
		`a.b(c, d)`,
		`[1, 2, 3]`,
		`{"a": 1, "b": 2}`,
		`a[0]`,
		`a in b`,
		`x > 0 ? 1 : 2`,
		`has(a.b)`,
		`[1, 2].all(x, x > 0)`,
		`[1, 2].exists(x, x > 1)`,
		`[1, 2].exists_one(x, x == 1)`,
		`[1, 2].map(x, x * 2)`,
		`[1, 2].map(x, x > 0, x * 2)`,
		`[1, 2].filter(x, x > 0)`,
		`1u`,
		`1.5`,
		`0xFF`,
		`b"bytes"`,
		`null`,
	}
	for _, e := range exprs {
		t.Run(e, func(t *testing.T) {
			parse(t, e)
		})
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	exprs := []string{
		`1 +`,
		`(1 + 2`,
		`[1, 2`,
		`1 2`,
		``,
	}
	for _, e := range exprs {
		t.Run(e, func(t *testing.T) {
			p := NewParser()
			src := common.NewTextSource(e, "<test>")
			_, errs := p.Parse(src)
			if !errs.HasErrors() {
				t.Fatalf("Parse(%q) expected a syntax error, got none", e)
			}
		})
	}
}

func TestParseAssignsUniqueNonZeroIDs(t *testing.T) {
	tree := parse(t, "1 + 2 * 3")
	seen := map[int64]bool{}
	for _, n := range ast.Navigate(tree.Expr()).AllNodes(ast.PreOrder) {
		if n.ID() == 0 {
			t.Errorf("node %#v has id 0", n)
		}
		if seen[n.ID()] {
			t.Errorf("duplicate node id %d", n.ID())
		}
		seen[n.ID()] = true
	}
}

func TestMaxExpressionCodePointSize(t *testing.T) {
	p := NewParser(MaxExpressionCodePointSize(3))
	src := common.NewTextSource("12345", "<test>")
	_, errs := p.Parse(src)
	if !errs.HasErrors() {
		t.Fatal("expected a code-point-size error")
	}
}

func TestMacroExpansionLowersToComprehension(t *testing.T) {
	tree := parse(t, "[1, 2].all(x, x > 0)")
	if tree.Expr().Kind() != ast.ComprehensionKind {
		t.Fatalf("expected all() to lower to a Comprehension, got kind %v", tree.Expr().Kind())
	}
}

func TestPopulateMacroCallsRecordsMacroSource(t *testing.T) {
	tree := parse(t, "[1, 2].all(x, x > 0)", PopulateMacroCalls(true))
	if len(tree.MacroCalls()) == 0 {
		t.Fatal("expected a recorded macro call site")
	}
}

func TestUnparseRoundTripsMacros(t *testing.T) {
	tree := parse(t, "[1, 2].all(x, x > 0)", PopulateMacroCalls(true))
	got := Unparse(tree)
	want := "[1, 2].all(x, x > 0)"
	if got != want {
		t.Errorf("Unparse() = %q, want %q", got, want)
	}
}

func TestCustomMacroRegistration(t *testing.T) {
	double := NewGlobalMacro("double", 1, func(fac *ast.Factory, target ast.Expr, args []ast.Expr, loc common.Location) (ast.Expr, error) {
		return fac.NewCall(loc, "_+_", args[0], fac.CopyExpr(args[0])), nil
	})
	tree := parse(t, "double(21)", Macros(double))
	if tree.Expr().Kind() != ast.CallKind || tree.Expr().AsCall().FunctionName() != "_+_" {
		t.Fatalf("expected double(21) to expand to a _+_ call, got %#v", tree.Expr())
	}
}
