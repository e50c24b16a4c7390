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

// config collects every Parser tunable (spec §6's options table), built up
// functional-options style the way the teacher's cel.Env options work.
type config struct {
	maxCodePointSize      int
	maxRecursionDepth     int
	populateMacroCalls    bool
	enableOptionalSyntax  bool
	enableQuotedIdentSyntax bool
	macros                map[string]Macro
}

// Option configures a Parser at construction time.
type Option func(*config)

func defaultConfig() *config {
	return &config{
		maxCodePointSize:  100_000,
		maxRecursionDepth: 250,
		macros:            standardMacros(),
	}
}

// MaxExpressionCodePointSize bounds source length in Unicode code points.
func MaxExpressionCodePointSize(n int) Option {
	return func(c *config) { c.maxCodePointSize = n }
}

// MaxParseRecursionDepth bounds nested-expression depth during parsing, the
// static guard against unbounded stack growth on adversarial input (spec
// §5 resource model).
func MaxParseRecursionDepth(n int) Option {
	return func(c *config) { c.maxRecursionDepth = n }
}

// PopulateMacroCalls controls whether expanded macro call sites are
// recorded in AST.MacroCalls (needed for round-trip unparsing, spec §8 U1).
func PopulateMacroCalls(enabled bool) Option {
	return func(c *config) { c.populateMacroCalls = enabled }
}

// EnableOptionalSyntax turns on `?` optional map/list/struct entries and
// the `[?]`/`.?` optional selectors (SPEC_FULL §12).
func EnableOptionalSyntax(enabled bool) Option {
	return func(c *config) { c.enableOptionalSyntax = enabled }
}

// EnableQuotedIdentifierSyntax turns on backtick-quoted identifiers for
// field names that collide with reserved keywords.
func EnableQuotedIdentifierSyntax(enabled bool) Option {
	return func(c *config) { c.enableQuotedIdentSyntax = enabled }
}

// Macros adds extension macros to the registered set, which always starts
// with the standard family (SPEC_FULL §12). A macro with the same name,
// argument count and call style as one already registered replaces it;
// such collisions are not rejected.
func Macros(macros ...Macro) Option {
	return func(c *config) {
		for _, m := range macros {
			c.macros[m.key()] = m
		}
	}
}
