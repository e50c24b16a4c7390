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
	"context"
	"testing"

	"celcore/checker"
	"celcore/common"
	"celcore/common/decls"
	"celcore/common/stdlib"
	"celcore/common/types"
	"celcore/parser"
	celtypes "celcore/types"
)

func planExpr(t *testing.T, expr string, vars ...*decls.VariableDecl) *Program {
	t.Helper()
	p := parser.NewParser()
	tree, perrs := p.Parse(common.NewTextSource(expr, "<test>"))
	if perrs.HasErrors() {
		t.Fatalf("Parse(%q) failed: %s", expr, perrs.ToDisplayString())
	}
	env := checker.NewEnv(nil, nil)
	for _, v := range vars {
		env.AddVariable(v)
	}
	std := stdlib.Standard()
	for _, f := range std.Functions {
		env.AddFunction(f.Decl)
	}
	if errs := checker.Check(tree, env); errs.HasErrors() {
		t.Fatalf("Check(%q) failed: %s", expr, errs.ToDisplayString())
	}
	d := NewDispatcher(std)
	return Compile(tree, d, nil, 0)
}

func TestActivationLookupThroughParentChain(t *testing.T) {
	root := NewActivation(map[string]types.Value{"x": types.Int(1)})
	inner := NewVarActivation("y", types.Int(2), root)
	if v, found := inner.ResolveName("y"); !found || v != types.Int(2) {
		t.Fatalf("ResolveName(y) = %v, %v", v, found)
	}
	if v, found := inner.ResolveName("x"); !found || v != types.Int(1) {
		t.Fatalf("ResolveName(x) = %v, %v", v, found)
	}
	if _, found := inner.ResolveName("z"); found {
		t.Fatal("ResolveName(z) unexpectedly found")
	}
}

func TestVarActivationShadowsParent(t *testing.T) {
	root := NewActivation(map[string]types.Value{"x": types.Int(1)})
	inner := NewVarActivation("x", types.Int(99), root)
	if v, _ := inner.ResolveName("x"); v != types.Int(99) {
		t.Fatalf("ResolveName(x) = %v, want shadowed 99", v)
	}
}

func TestPartialActivationUnknownVsUnbound(t *testing.T) {
	act := NewPartialActivation(map[string]types.Value{"x": types.Int(1)}, "y")
	if v, found := act.ResolveName("x"); !found || v != types.Int(1) {
		t.Fatalf("ResolveName(x) = %v, %v", v, found)
	}
	v, found := act.ResolveName("y")
	if !found {
		t.Fatal("ResolveName(y) should resolve to an unknown, not be unbound")
	}
	if !types.IsUnknown(v) {
		t.Fatalf("ResolveName(y) = %v, want an UnknownSet", v)
	}
	if _, found := act.ResolveName("z"); found {
		t.Fatal("ResolveName(z) should be unbound, not unknown")
	}
}

func TestDispatcherMergesOverloadsAcrossLibraries(t *testing.T) {
	double := func(args []types.Value) types.Value {
		return args[0].(types.Int) * 2
	}
	triple := func(args []types.Value) types.Value {
		return args[0].(types.Int) * 3
	}
	libA := &stdlib.Library{
		Name: "a",
		Functions: []*stdlib.Function{{
			Decl:  decls.NewFunction("scale", decls.NewOverload("scale_double", celtypes.IntType, celtypes.IntType)),
			Impls: map[string]stdlib.Impl{"scale_double": double},
		}},
	}
	libB := &stdlib.Library{
		Name: "b",
		Functions: []*stdlib.Function{{
			Decl:  decls.NewFunction("scale", decls.NewOverload("scale_triple", celtypes.IntType, celtypes.IntType)),
			Impls: map[string]stdlib.Impl{"scale_triple": triple},
		}},
	}
	d := NewDispatcher(libA, libB)
	got := d.Dispatch("scale", []string{"scale_double"}, []types.Value{types.Int(5)})
	if got != types.Int(10) {
		t.Errorf("Dispatch(scale_double) = %v, want 10", got)
	}
	got = d.Dispatch("scale", []string{"scale_triple"}, []types.Value{types.Int(5)})
	if got != types.Int(15) {
		t.Errorf("Dispatch(scale_triple) = %v, want 15", got)
	}
}

func TestDispatchUnknownFunctionErrors(t *testing.T) {
	d := NewDispatcher()
	got := d.Dispatch("nope", nil, nil)
	if !types.IsError(got) {
		t.Fatalf("Dispatch(nope) = %v, want an error", got)
	}
}

func TestPlanAndEvalArithmetic(t *testing.T) {
	prog := planExpr(t, "1 + 2 * 3")
	got := prog.Eval(context.Background(), NewActivation(nil))
	if got != types.Int(7) {
		t.Errorf("Eval() = %v, want 7", got)
	}
}

func TestPlanAndEvalComprehension(t *testing.T) {
	prog := planExpr(t, "[1, 2, 3].exists(x, x == 2)")
	got := prog.Eval(context.Background(), NewActivation(nil))
	if got != types.Bool(true) {
		t.Errorf("Eval() = %v, want true", got)
	}
}

func TestEvalRespectsIterationBudget(t *testing.T) {
	p := parser.NewParser()
	tree, perrs := p.Parse(common.NewTextSource("[1, 2, 3, 4, 5].all(x, x > 0)", "<test>"))
	if perrs.HasErrors() {
		t.Fatalf("unexpected parse error: %s", perrs.ToDisplayString())
	}
	env := checker.NewEnv(nil, nil)
	std := stdlib.Standard()
	for _, f := range std.Functions {
		env.AddFunction(f.Decl)
	}
	if errs := checker.Check(tree, env); errs.HasErrors() {
		t.Fatalf("unexpected check error: %s", errs.ToDisplayString())
	}
	prog := Compile(tree, NewDispatcher(std), nil, 2)
	got := prog.Eval(context.Background(), NewActivation(nil))
	if !types.IsError(got) {
		t.Fatalf("Eval() = %v, want an iteration-budget error", got)
	}
}

func TestEvalRespectsContextCancellation(t *testing.T) {
	prog := planExpr(t, "[1, 2, 3].all(x, x > 0)")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := prog.Eval(ctx, NewActivation(nil))
	if !types.IsError(got) {
		t.Fatalf("Eval() with a cancelled context = %v, want an error", got)
	}
}
