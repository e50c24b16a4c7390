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

package cel

import (
	"context"
	"testing"

	"celcore/common/decls"
	"celcore/common/types"
	celtypes "celcore/types"
)

func mustEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()
	env, err := NewEnv(opts...)
	if err != nil {
		t.Fatalf("NewEnv() failed: %v", err)
	}
	return env
}

func TestCompileAndEval(t *testing.T) {
	tests := []struct {
		name string
		expr string
		vars []*decls.VariableDecl
		in   map[string]types.Value
		want types.Value
	}{
		{
			name: "arithmetic",
			expr: "1 + 2 * 3",
			want: types.Int(7),
		},
		{
			name: "string concat",
			expr: `"Hello " + name`,
			vars: []*decls.VariableDecl{decls.NewVariable("name", celtypes.StringType)},
			in:   map[string]types.Value{"name": types.String("world")},
			want: types.String("Hello world"),
		},
		{
			name: "logical and short circuit",
			expr: "false && (1 / 0 > 0)",
			want: types.Bool(false),
		},
		{
			name: "logical or short circuit",
			expr: "true || (1 / 0 > 0)",
			want: types.Bool(true),
		},
		{
			name: "ternary",
			expr: "x > 0 ? 'positive' : 'non-positive'",
			vars: []*decls.VariableDecl{decls.NewVariable("x", celtypes.IntType)},
			in:   map[string]types.Value{"x": types.Int(5)},
			want: types.String("positive"),
		},
		{
			name: "list literal and index",
			expr: "[1, 2, 3][1]",
			want: types.Int(2),
		},
		{
			name: "map literal and index",
			expr: `{"a": 1, "b": 2}["b"]`,
			want: types.Int(2),
		},
		{
			name: "has macro true",
			expr: `has({"a": 1}.a)`,
			want: types.Bool(true),
		},
		{
			name: "has macro false",
			expr: `has({"a": 1}.b)`,
			want: types.Bool(false),
		},
		{
			name: "all macro",
			expr: "[1, 2, 3].all(x, x > 0)",
			want: types.Bool(true),
		},
		{
			name: "exists macro",
			expr: "[1, 2, 3].exists(x, x == 2)",
			want: types.Bool(true),
		},
		{
			name: "exists_one macro",
			expr: "[1, 2, 3].exists_one(x, x == 2)",
			want: types.Bool(true),
		},
		{
			name: "map macro",
			expr: "[1, 2, 3].map(x, x * 2) == [2, 4, 6]",
			want: types.Bool(true),
		},
		{
			name: "filter macro",
			expr: "[1, 2, 3, 4].filter(x, x % 2 == 0) == [2, 4]",
			want: types.Bool(true),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := mustEnv(t, Declarations(tc.vars...))
			tree, issues := env.Compile(tc.expr)
			if issues.HasErrors() {
				t.Fatalf("Compile(%q) failed: %s", tc.expr, issues.ToDisplayString())
			}
			prog := env.Program(tree)
			got := Eval(context.Background(), prog, tc.in)
			if types.IsError(got) {
				t.Fatalf("Eval(%q) returned error: %v", tc.expr, got)
			}
			if got.Equal(tc.want) != types.Bool(true) {
				t.Errorf("Eval(%q) = %v, want %v", tc.expr, got, tc.want)
			}
		})
	}
}

func TestCheckRejectsUndeclaredIdentifier(t *testing.T) {
	env := mustEnv(t)
	_, issues := env.Compile("undeclared_var + 1")
	if !issues.HasErrors() {
		t.Fatal("expected a type-check error for an undeclared identifier")
	}
}

func TestCheckRejectsTypeMismatch(t *testing.T) {
	env := mustEnv(t)
	_, issues := env.Compile(`1 + "a"`)
	if !issues.HasErrors() {
		t.Fatal("expected a type-check error for int + string")
	}
}

func TestHeterogeneousComparisonsOptional(t *testing.T) {
	strict := mustEnv(t)
	if _, issues := strict.Compile("1 < 2u"); !issues.HasErrors() {
		t.Fatal("expected int < uint to be a type error without EnableHeterogeneousNumericComparisons")
	}

	loose := mustEnv(t, EnableHeterogeneousNumericComparisons(true))
	tree, issues := loose.Compile("1 < 2u")
	if issues.HasErrors() {
		t.Fatalf("unexpected type-check error: %s", issues.ToDisplayString())
	}
	got := Eval(context.Background(), loose.Program(tree), nil)
	if got.Equal(types.Bool(true)) != types.Bool(true) {
		t.Errorf("1 < 2u = %v, want true", got)
	}
}

func TestTimestampEpochOptional(t *testing.T) {
	strict := mustEnv(t)
	if _, issues := strict.Compile("timestamp(1000000000)"); !issues.HasErrors() {
		t.Fatal("expected timestamp(int) to be a type error without EnableTimestampEpoch")
	}

	loose := mustEnv(t, EnableTimestampEpoch(true))
	tree, issues := loose.Compile("timestamp(1000000000)")
	if issues.HasErrors() {
		t.Fatalf("unexpected type-check error: %s", issues.ToDisplayString())
	}
	got := Eval(context.Background(), loose.Program(tree), nil)
	if types.IsError(got) {
		t.Fatalf("unexpected eval error: %v", got)
	}
}

func TestComprehensionIterationBudgetExceeded(t *testing.T) {
	env := mustEnv(t, ComprehensionMaxIterations(2))
	tree, issues := env.Compile("[1, 2, 3].all(x, x > 0)")
	if issues.HasErrors() {
		t.Fatalf("unexpected type-check error: %s", issues.ToDisplayString())
	}
	got := Eval(context.Background(), env.Program(tree), nil)
	if !types.IsError(got) {
		t.Fatalf("expected an iteration-budget error, got %v", got)
	}
}

func TestUnparseRoundTrip(t *testing.T) {
	env := mustEnv(t)
	tree, issues := env.Parse("1 + 2 * 3")
	if issues.HasErrors() {
		t.Fatalf("unexpected parse error: %s", issues.ToDisplayString())
	}
	got := Unparse(tree)
	want := "1 + 2 * 3"
	if got != want {
		t.Errorf("Unparse() = %q, want %q", got, want)
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	env := mustEnv(t)
	tree, issues := env.Compile("1 + 2")
	if issues.HasErrors() {
		t.Fatalf("unexpected compile error: %s", issues.ToDisplayString())
	}
	data, err := Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	restored, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	prog := env.Program(restored)
	got := Eval(context.Background(), prog, nil)
	if got.Equal(types.Int(3)) != types.Bool(true) {
		t.Errorf("restored program evaluated to %v, want 3", got)
	}
}

func TestEvalPartialReturnsUnknownForMissingVar(t *testing.T) {
	env := mustEnv(t, Declarations(
		decls.NewVariable("x", celtypes.IntType),
		decls.NewVariable("y", celtypes.IntType),
	))
	tree, issues := env.Compile("x + y")
	if issues.HasErrors() {
		t.Fatalf("unexpected compile error: %s", issues.ToDisplayString())
	}
	prog := env.Program(tree)
	got := EvalPartial(context.Background(), prog, map[string]types.Value{"x": types.Int(1)}, "y")
	if !types.IsUnknown(got) {
		t.Fatalf("expected an unknown result when y is undetermined, got %v", got)
	}
}

func TestCostEstimate(t *testing.T) {
	env := mustEnv(t)
	tree, issues := env.Compile("1 + 2")
	if issues.HasErrors() {
		t.Fatalf("unexpected compile error: %s", issues.ToDisplayString())
	}
	cost := env.Cost(tree)
	if cost.Min == 0 || cost.Max == 0 {
		t.Errorf("Cost() = %+v, want a non-zero estimate", cost)
	}
}
