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

	"celcore/ast"
	"celcore/common/types"
	"celcore/interpreter"
)

// Eval is a convenience for running a compiled program once against a
// plain variable map; a caller evaluating the same expression repeatedly
// should reuse the *interpreter.Program returned by Env.Program directly
// instead of rebuilding an Activation each time through this wrapper.
func Eval(ctx context.Context, prog *interpreter.Program, vars map[string]types.Value) types.Value {
	return prog.Eval(ctx, interpreter.NewActivation(vars))
}

// Marshal encodes a checked AST into its binary wire form, so it can be
// cached or shipped to another process and planned there without
// reparsing (spec §6's checked-AST serialization).
func Marshal(tree *ast.AST) ([]byte, error) {
	return ast.Marshal(tree)
}

// Unmarshal restores an AST previously produced by Marshal.
func Unmarshal(data []byte) (*ast.AST, error) {
	return ast.Unmarshal(data)
}

// EvalPartial runs prog against known bindings, treating every name in
// unknownVars as an unresolved variable rather than an unbound one: a
// subexpression that depends on one of them evaluates to an
// *types.UnknownSet instead of erroring (SPEC_FULL §12's partial
// evaluation), letting a caller re-run the same program once the rest of
// its inputs become available.
func EvalPartial(ctx context.Context, prog *interpreter.Program, known map[string]types.Value, unknownVars ...string) types.Value {
	return prog.Eval(ctx, interpreter.NewPartialActivation(known, unknownVars...))
}
