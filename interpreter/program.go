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

	"celcore/ast"
	"celcore/common/types"
)

// Program is a compiled, repeatedly evaluable plan for a single AST.
type Program struct {
	plan          Interpretable
	maxIterations int64
}

// Compile plans tree through p, d, and provider, producing a Program ready
// for repeated Eval calls. maxIterations bounds the total number of
// comprehension loop iterations across the whole evaluation (<=0 means
// unlimited).
func Compile(tree *ast.AST, d *Dispatcher, provider types.Provider, maxIterations int64) *Program {
	planner := NewPlanner(d, provider)
	return &Program{plan: planner.PlanTree(tree), maxIterations: maxIterations}
}

// Eval runs the program against act, honoring ctx cancellation/deadline
// between comprehension iterations.
func (prog *Program) Eval(ctx context.Context, act Activation) types.Value {
	cancelled := func() bool { return false }
	if ctx != nil {
		cancelled = func() bool { return ctx.Err() != nil }
	}
	ec := NewEvalContext(act, prog.maxIterations, cancelled)
	return prog.plan.Eval(ec)
}
