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
	"github.com/golang/glog"

	"celcore/ast"
	"celcore/checker"
	"celcore/common"
	"celcore/common/stdlib"
	"celcore/interpreter"
	"celcore/parser"
)

// Env is the compiled configuration every Parse/Check/Program call runs
// against: a parser, a checker Env (variables, functions, struct
// provider), and an interpreter Dispatcher built from the same function
// declarations (spec §6).
type Env struct {
	cfg        *config
	parser     *parser.Parser
	checkerEnv *checker.Env
	dispatcher *interpreter.Dispatcher
}

// NewEnv builds an Env from the given options, starting from the standard
// library and no declared variables.
func NewEnv(opts ...EnvOption) (*Env, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cEnv := checker.NewEnv(nil, cfg.provider)
	for _, v := range cfg.variables {
		cEnv.AddVariable(v)
	}
	if cfg.enableHeterogeneousComparisons {
		cfg.libraries = append(cfg.libraries, stdlib.Heterogeneous())
	}
	if cfg.enableTimestampEpoch {
		cfg.libraries = append(cfg.libraries, stdlib.TimestampEpoch())
	}
	if cfg.enableOptionalTypes {
		cfg.libraries = append(cfg.libraries, stdlib.Optional())
		cfg.parserOpts = append(cfg.parserOpts, parser.EnableOptionalSyntax(true))
	}
	for _, lib := range cfg.libraries {
		for _, v := range lib.Vars {
			cEnv.AddVariable(v)
		}
		for _, f := range lib.Functions {
			cEnv.AddFunction(f.Decl)
		}
	}
	return &Env{
		cfg:        cfg,
		parser:     parser.NewParser(cfg.parserOpts...),
		checkerEnv: cEnv,
		dispatcher: interpreter.NewDispatcher(cfg.libraries...),
	}, nil
}

// Parse compiles text into an AST without type-checking it.
func (e *Env) Parse(text string) (*ast.AST, *common.Errors) {
	src := common.NewTextSource(text, "<input>")
	return e.parser.Parse(src)
}

// Check type-checks a parsed AST and runs every configured validator,
// returning accumulated diagnostics (empty iff successful).
func (e *Env) Check(tree *ast.AST) *common.Errors {
	errs := checker.Check(tree, e.checkerEnv)
	if errs.HasErrors() {
		return errs
	}
	errs.Append(depthLimitIssues(tree, e.cfg.astDepthLimit))
	errs.Append(nestingLimitIssues(tree, e.cfg.comprehensionNestingLimit))
	for _, v := range e.cfg.validators {
		v(tree, errs)
	}
	return errs
}

func depthLimitIssues(tree *ast.AST, max int) []*common.Issue {
	errs := common.NewErrors(tree.Source())
	checker.AstDepthLimit(max)(tree, errs)
	return errs.Issues()
}

func nestingLimitIssues(tree *ast.AST, max int) []*common.Issue {
	errs := common.NewErrors(tree.Source())
	checker.ComprehensionNestingLimit(max)(tree, errs)
	return errs.Issues()
}

// Compile parses and checks text in one step, the common case.
func (e *Env) Compile(text string) (*ast.AST, *common.Errors) {
	tree, errs := e.Parse(text)
	if errs.HasErrors() {
		return nil, errs
	}
	return tree, e.Check(tree)
}

// Cost returns a structural [Min, Max] evaluation-step estimate for tree,
// the optional post-check cost pass (SPEC_FULL §12), off by default since
// most callers only need it ahead of running an expression budget-gated.
func (e *Env) Cost(tree *ast.AST) checker.CostEstimate {
	return checker.Cost(tree)
}

// Program plans tree into a repeatedly evaluable interpreter.Program.
func (e *Env) Program(tree *ast.AST) *interpreter.Program {
	if glog.V(1) {
		glog.Infof("building program with iteration budget %d", e.cfg.comprehensionMaxIterations)
	}
	return interpreter.Compile(tree, e.dispatcher, e.cfg.provider, e.cfg.comprehensionMaxIterations)
}

// Unparse renders tree back to CEL source (spec §6's `unparse`).
func Unparse(tree *ast.AST) string {
	return parser.Unparse(tree)
}
