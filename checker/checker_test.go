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
	"testing"

	"celcore/common"
	"celcore/common/decls"
	"celcore/common/stdlib"
	"celcore/parser"
	celtypes "celcore/types"
)

func checkedTree(t *testing.T, expr string, vars ...*decls.VariableDecl) (*Env, *common.Errors) {
	t.Helper()
	p := parser.NewParser()
	src := common.NewTextSource(expr, "<test>")
	tree, perrs := p.Parse(src)
	if perrs.HasErrors() {
		t.Fatalf("Parse(%q) failed: %s", expr, perrs.ToDisplayString())
	}
	env := NewEnv(nil, nil)
	for _, v := range vars {
		env.AddVariable(v)
	}
	for _, f := range stdlib.Standard().Functions {
		env.AddFunction(f.Decl)
	}
	return env, Check(tree, env)
}

func mustCheck(t *testing.T, expr string, vars ...*decls.VariableDecl) *common.Errors {
	t.Helper()
	_, errs := checkedTree(t, expr, vars...)
	return errs
}

func TestCheckAcceptsValidExpressions(t *testing.T) {
	exprs := []string{
		`1 + 2`,
		`1.0 + 2.0`,
		`"a" + "b"`,
		`1 < 2`,
		`true && false`,
		`[1, 2, 3][0]`,
		`{"a": 1}["a"]`,
		`x + y`,
	}
	vars := []*decls.VariableDecl{
		decls.NewVariable("x", celtypes.IntType),
		decls.NewVariable("y", celtypes.IntType),
	}
	for _, e := range exprs {
		t.Run(e, func(t *testing.T) {
			if errs := mustCheck(t, e, vars...); errs.HasErrors() {
				t.Errorf("Check(%q) = %s, want no errors", e, errs.ToDisplayString())
			}
		})
	}
}

func TestCheckRejectsUndeclaredIdent(t *testing.T) {
	errs := mustCheck(t, "undeclared + 1")
	if !errs.HasErrors() {
		t.Fatal("expected an undeclared-identifier error")
	}
}

func TestCheckRejectsOverloadMismatch(t *testing.T) {
	errs := mustCheck(t, `1 + "a"`)
	if !errs.HasErrors() {
		t.Fatal("expected a type mismatch error for int + string")
	}
}

func TestCheckResolvesComprehensionScoping(t *testing.T) {
	errs := mustCheck(t, "[1, 2, 3].all(x, x > 0)")
	if errs.HasErrors() {
		t.Fatalf("unexpected error: %s", errs.ToDisplayString())
	}
}

func TestCheckRejectsLoopVarLeakingOutsideComprehension(t *testing.T) {
	errs := mustCheck(t, "[1, 2].all(x, x > 0) && x > 0")
	if !errs.HasErrors() {
		t.Fatal("expected x to be out of scope outside its comprehension")
	}
}

func TestAstDepthLimit(t *testing.T) {
	p := parser.NewParser()
	tree, perrs := p.Parse(common.NewTextSource("((((1 + 1) + 1) + 1) + 1)", "<test>"))
	if perrs.HasErrors() {
		t.Fatalf("unexpected parse error: %s", perrs.ToDisplayString())
	}
	errs := common.NewErrors(tree.Source())
	AstDepthLimit(2)(tree, errs)
	if !errs.HasErrors() {
		t.Fatal("expected a depth-limit violation")
	}
}

func TestComprehensionNestingLimit(t *testing.T) {
	p := parser.NewParser()
	tree, perrs := p.Parse(common.NewTextSource("[1].all(x, [2].all(y, x < y))", "<test>"))
	if perrs.HasErrors() {
		t.Fatalf("unexpected parse error: %s", perrs.ToDisplayString())
	}
	errs := common.NewErrors(tree.Source())
	ComprehensionNestingLimit(1)(tree, errs)
	if !errs.HasErrors() {
		t.Fatal("expected a comprehension-nesting violation")
	}
}

func TestHomogeneousLiteralValidator(t *testing.T) {
	p := parser.NewParser()
	tree, perrs := p.Parse(common.NewTextSource(`[1, "a"]`, "<test>"))
	if perrs.HasErrors() {
		t.Fatalf("unexpected parse error: %s", perrs.ToDisplayString())
	}
	env := NewEnv(nil, nil)
	if errs := Check(tree, env); errs.HasErrors() {
		t.Fatalf("unexpected check error: %s", errs.ToDisplayString())
	}
	errs := common.NewErrors(tree.Source())
	HomogeneousLiteral()(tree, errs)
	if !errs.HasErrors() {
		t.Fatal("expected a mixed-literal-type violation")
	}
}

func TestRegexLiteralValidator(t *testing.T) {
	p := parser.NewParser()
	tree, perrs := p.Parse(common.NewTextSource(`"a".matches("[")`, "<test>"))
	if perrs.HasErrors() {
		t.Fatalf("unexpected parse error: %s", perrs.ToDisplayString())
	}
	env := NewEnv(nil, nil)
	for _, f := range stdlib.Standard().Functions {
		env.AddFunction(f.Decl)
	}
	if errs := Check(tree, env); errs.HasErrors() {
		t.Fatalf("unexpected check error: %s", errs.ToDisplayString())
	}
	errs := common.NewErrors(tree.Source())
	RegexLiteral()(tree, errs)
	if !errs.HasErrors() {
		t.Fatal("expected an invalid-regex violation")
	}
}

func TestTimestampDurationLiteralValidator(t *testing.T) {
	p := parser.NewParser()
	tree, perrs := p.Parse(common.NewTextSource(`timestamp("not-a-timestamp")`, "<test>"))
	if perrs.HasErrors() {
		t.Fatalf("unexpected parse error: %s", perrs.ToDisplayString())
	}
	env := NewEnv(nil, nil)
	for _, f := range stdlib.Standard().Functions {
		env.AddFunction(f.Decl)
	}
	if errs := Check(tree, env); errs.HasErrors() {
		t.Fatalf("unexpected check error: %s", errs.ToDisplayString())
	}
	errs := common.NewErrors(tree.Source())
	TimestampDurationLiteral()(tree, errs)
	if !errs.HasErrors() {
		t.Fatal("expected an invalid-timestamp-literal violation")
	}
}
