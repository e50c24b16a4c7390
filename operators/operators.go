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

// Package operators defines the canonical function names used for operator
// call expressions, so that the parser, checker, and interpreter all key
// off the same strings rather than re-deriving them from surface syntax.
package operators

// Unary operators.
const (
	LogicalNot = "!_"
	Negate     = "-_"
)

// Binary operators.
const (
	Add           = "_+_"
	Subtract      = "_-_"
	Multiply      = "_*_"
	Divide        = "_/_"
	Modulo        = "_%_"
	LogicalAnd    = "_&&_"
	LogicalOr     = "_||_"
	Less          = "_<_"
	LessEquals    = "_<=_"
	Greater       = "_>_"
	GreaterEquals = "_>=_"
	Equals        = "_==_"
	NotEquals     = "_!=_"
	In            = "@in"
	Index         = "_[_]"
	OptIndex      = "_[?_]"
	OptSelect     = "_?._"
)

// Ternary operator.
const Conditional = "_?_:_"

// Macro-only names: these never appear as interpreter overloads, they key
// macro expansion in the parser (spec §4.D).
const (
	Has       = "has"
	All       = "all"
	Exists    = "exists"
	ExistsOne = "exists_one"
	Map       = "map"
	Filter    = "filter"
)

// precedence maps an operator function name to its parse precedence, from
// spec §4.D's table (lowest number binds tightest).
var precedence = map[string]int{
	Conditional:   8,
	LogicalOr:     7,
	LogicalAnd:    6,
	Equals:        5,
	NotEquals:     5,
	Less:          5,
	LessEquals:    5,
	Greater:       5,
	GreaterEquals: 5,
	In:            5,
	Add:           4,
	Subtract:      4,
	Multiply:      3,
	Divide:        3,
	Modulo:        3,
	LogicalNot:    2,
	Negate:        2,
	Index:         1,
	OptIndex:      1,
	OptSelect:     1,
}

// Precedence returns the binding strength of an operator, or 0 if op is not
// a recognized operator (e.g. a plain function call).
func Precedence(op string) int {
	return precedence[op]
}

// IsOperator reports whether a function name corresponds to a syntax-level
// operator (used by the unparser to decide whether to print infix/prefix
// form instead of call-with-arguments form).
func IsOperator(fn string) bool {
	_, found := precedence[fn]
	return found
}

// rightAssociative holds operators that are right-associative per spec
// §4.D; all others listed in precedence are left-associative.
var rightAssociative = map[string]bool{
	Conditional: true,
	LogicalAnd:  true,
	LogicalOr:   true,
}

// IsRightAssociative reports whether operator op associates to the right.
func IsRightAssociative(op string) bool {
	return rightAssociative[op]
}

// symbolToOperator maps surface-syntax infix/prefix tokens to their
// canonical function name, used by the parser.
var symbolToOperator = map[string]string{
	"+":  Add,
	"-":  Subtract,
	"*":  Multiply,
	"/":  Divide,
	"%":  Modulo,
	"&&": LogicalAnd,
	"||": LogicalOr,
	"<":  Less,
	"<=": LessEquals,
	">":  Greater,
	">=": GreaterEquals,
	"==": Equals,
	"!=": NotEquals,
	"in": In,
}

// FindReverse maps a canonical function name back to its surface operator
// token, for the unparser.
func FindReverse(op string) (string, bool) {
	for k, v := range symbolToOperator {
		if v == op {
			return k, true
		}
	}
	return "", false
}

// Find maps a surface operator token to its canonical function name.
func Find(token string) (string, bool) {
	op, found := symbolToOperator[token]
	return op, found
}
