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

// Package cel is the public facade: it wires the parser, checker, and
// interpreter packages into a single compile/eval pipeline (spec §6),
// the way the teacher's top-level cel package wires its own env/program.
package cel

import (
	"celcore/checker"
	"celcore/common/decls"
	"celcore/common/stdlib"
	"celcore/common/types"
	"celcore/parser"
)

// config holds every tunable of env construction, gathered via the
// functional-option pattern the teacher uses throughout (parser.Option,
// cel.EnvOption).
type config struct {
	parserOpts                     []parser.Option
	variables                      []*decls.VariableDecl
	libraries                      []*stdlib.Library
	provider                       types.Provider
	astDepthLimit                  int
	comprehensionNestingLimit      int
	comprehensionMaxIterations     int64
	enableHeterogeneousComparisons bool
	enableTimestampEpoch           bool
	enableOptionalTypes            bool
	validators                     []checker.Validator
}

func defaultConfig() *config {
	return &config{
		libraries:                  []*stdlib.Library{stdlib.Standard()},
		astDepthLimit:              250,
		comprehensionNestingLimit:  16,
		comprehensionMaxIterations: 1_000_000,
		validators: []checker.Validator{
			checker.RegexLiteral(),
			checker.TimestampDurationLiteral(),
		},
	}
}

// EnvOption configures env construction.
type EnvOption func(*config)

// Declarations registers variables resolvable in expressions.
func Declarations(vars ...*decls.VariableDecl) EnvOption {
	return func(c *config) { c.variables = append(c.variables, vars...) }
}

// Library layers an additional function/variable library onto the
// standard one (spec §12's extension mechanism).
func Library(lib *stdlib.Library) EnvOption {
	return func(c *config) { c.libraries = append(c.libraries, lib) }
}

// Types registers a struct-type provider for message field resolution.
func Types(provider types.Provider) EnvOption {
	return func(c *config) { c.provider = provider }
}

// ParserOption passes one or more options straight through to the parser.
func ParserOption(opts ...parser.Option) EnvOption {
	return func(c *config) { c.parserOpts = append(c.parserOpts, opts...) }
}

// ASTDepthLimit bounds the navigable height of a compiled expression.
func ASTDepthLimit(max int) EnvOption {
	return func(c *config) { c.astDepthLimit = max }
}

// ComprehensionNestingLimit bounds how many comprehensions may nest on a
// single root-to-leaf path.
func ComprehensionNestingLimit(max int) EnvOption {
	return func(c *config) { c.comprehensionNestingLimit = max }
}

// ComprehensionMaxIterations bounds the number of loop iterations a single
// Eval call may perform across every comprehension combined.
func ComprehensionMaxIterations(max int64) EnvOption {
	return func(c *config) { c.comprehensionMaxIterations = max }
}

// EnableHeterogeneousNumericComparisons allows `<`,`<=`,`>`,`>=` between
// differently-typed numeric operands (int/uint/double) rather than
// treating the mix as a type error.
func EnableHeterogeneousNumericComparisons(enabled bool) EnvOption {
	return func(c *config) { c.enableHeterogeneousComparisons = enabled }
}

// EnableTimestampEpoch adds a timestamp(int) overload that reads its
// argument as Unix epoch seconds; uint and double arguments are not
// accepted.
func EnableTimestampEpoch(enabled bool) EnvOption {
	return func(c *config) { c.enableTimestampEpoch = enabled }
}

// EnableOptionalTypes turns on optional(T) as a first-class value: the
// `.?field`/`[?index]` short-circuiting selectors, and the
// `optional.of`/`optional.none`/`optional.ofNonZeroValue`/`.hasValue()`/
// `.value()`/`.orValue(default)`/`.or(alt)` functions (stdlib.Optional),
// together with the parser productions that produce them (spec §6's
// enable_optional_syntax option generalized to a single switch).
func EnableOptionalTypes(enabled bool) EnvOption {
	return func(c *config) { c.enableOptionalTypes = enabled }
}

// DisableStandardValidators clears the default RegexLiteral/
// TimestampDurationLiteral validators, for callers that want to opt back
// in individually via Validators.
func DisableStandardValidators() EnvOption {
	return func(c *config) { c.validators = nil }
}

// Validators appends custom AST validators run after every successful
// Check.
func Validators(vs ...checker.Validator) EnvOption {
	return func(c *config) { c.validators = append(c.validators, vs...) }
}
