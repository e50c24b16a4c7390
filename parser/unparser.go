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
	"fmt"
	"strconv"
	"strings"

	"celcore/ast"
	"celcore/operators"
)

// Unparse renders tree back to CEL source text (spec §8 property U1:
// re-parsing the result must produce a semantically identical AST). When a
// node's ID is present in macroCalls, the original macro call is printed
// instead of the expanded comprehension form, so the output is legible
// surface syntax rather than the canonical `__result__` lowering.
func Unparse(tree *ast.AST) string {
	u := &unparser{macroCalls: tree.MacroCalls()}
	return u.expr(tree.Expr(), 0)
}

type unparser struct {
	macroCalls map[int64]ast.MacroSource
}

func (u *unparser) expr(e ast.Expr, parentPrec int) string {
	if src, found := u.macroCalls[e.ID()]; found {
		return u.expr(src.Call, parentPrec)
	}
	switch e.Kind() {
	case ast.LiteralKind:
		return u.literal(e.AsLiteral())
	case ast.IdentKind:
		return e.AsIdent()
	case ast.SelectKind:
		s := e.AsSelect()
		if s.IsTestOnly() {
			return fmt.Sprintf("has(%s.%s)", u.expr(s.Operand(), 0), s.FieldName())
		}
		return fmt.Sprintf("%s.%s", u.expr(s.Operand(), 1), s.FieldName())
	case ast.CallKind:
		return u.call(e, parentPrec)
	case ast.ListKind:
		l := e.AsList()
		optSet := make(map[int]bool, len(l.OptionalIndices()))
		for _, i := range l.OptionalIndices() {
			optSet[int(i)] = true
		}
		parts := make([]string, len(l.Elements()))
		for i, el := range l.Elements() {
			prefix := ""
			if optSet[i] {
				prefix = "?"
			}
			parts[i] = prefix + u.expr(el, 0)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ast.MapKind:
		m := e.AsMap()
		parts := make([]string, len(m.Entries()))
		for i, ent := range m.Entries() {
			prefix := ""
			if ent.IsOptional() {
				prefix = "?"
			}
			parts[i] = fmt.Sprintf("%s%s: %s", prefix, u.expr(ent.Key(), 0), u.expr(ent.Value(), 0))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case ast.StructKind:
		s := e.AsStruct()
		parts := make([]string, len(s.Fields()))
		for i, fl := range s.Fields() {
			prefix := ""
			if fl.IsOptional() {
				prefix = "?"
			}
			parts[i] = fmt.Sprintf("%s%s: %s", prefix, fl.Name(), u.expr(fl.Value(), 0))
		}
		return fmt.Sprintf("%s{%s}", s.TypeName(), strings.Join(parts, ", "))
	case ast.ComprehensionKind:
		// No macro-source entry means this comprehension was authored
		// directly (or populate_macro_calls was off); render its canonical
		// form rather than guessing at a macro call.
		c := e.AsComprehension()
		return fmt.Sprintf("__comprehension__(%s, %s, %s, %s, %s, %s, %s)",
			c.IterVar(), u.expr(c.IterRange(), 0), c.AccuVar(), u.expr(c.AccuInit(), 0),
			u.expr(c.LoopCondition(), 0), u.expr(c.LoopStep(), 0), u.expr(c.Result(), 0))
	}
	return ""
}

func (u *unparser) literal(l ast.Literal) string {
	switch l.Type() {
	case ast.LiteralNull:
		return "null"
	case ast.LiteralBool:
		return strconv.FormatBool(l.BoolValue())
	case ast.LiteralInt:
		return strconv.FormatInt(l.IntValue(), 10)
	case ast.LiteralUint:
		return strconv.FormatUint(l.UintValue(), 10) + "u"
	case ast.LiteralDouble:
		return strconv.FormatFloat(l.DoubleValue(), 'g', -1, 64)
	case ast.LiteralString:
		return strconv.Quote(l.StringValue())
	case ast.LiteralBytes:
		return "b" + strconv.Quote(string(l.BytesValue()))
	}
	return ""
}

func (u *unparser) call(e ast.Expr, parentPrec int) string {
	c := e.AsCall()
	fn := c.FunctionName()
	if fn == operators.Conditional && len(c.Args()) == 3 {
		prec := operators.Precedence(fn)
		s := fmt.Sprintf("%s ? %s : %s", u.expr(c.Args()[0], prec), u.expr(c.Args()[1], prec), u.expr(c.Args()[2], prec+1))
		return parenthesize(s, prec, parentPrec)
	}
	if fn == operators.LogicalNot || fn == operators.Negate {
		sym, _ := operators.FindReverse(fn)
		if sym == "" {
			sym = strings.TrimSuffix(fn, "_")
		}
		prec := operators.Precedence(fn)
		return parenthesize(sym+u.expr(c.Args()[0], prec), prec, parentPrec)
	}
	if operators.IsOperator(fn) && len(c.Args()) == 2 && fn != operators.Index && fn != operators.OptIndex && fn != operators.In {
		sym, found := operators.FindReverse(fn)
		if found {
			prec := operators.Precedence(fn)
			// The parser nests equal-precedence chains to the left, so only
			// a right operand of equal precedence keeps its parentheses.
			s := fmt.Sprintf("%s %s %s", u.expr(c.Args()[0], prec), sym, u.expr(c.Args()[1], prec-1))
			return parenthesize(s, prec, parentPrec)
		}
	}
	if fn == operators.In && len(c.Args()) == 2 {
		prec := operators.Precedence(fn)
		s := fmt.Sprintf("%s in %s", u.expr(c.Args()[0], prec), u.expr(c.Args()[1], prec-1))
		return parenthesize(s, prec, parentPrec)
	}
	if fn == operators.Index && len(c.Args()) == 2 {
		return fmt.Sprintf("%s[%s]", u.expr(c.Args()[0], 1), u.expr(c.Args()[1], 0))
	}
	if fn == operators.OptIndex && len(c.Args()) == 2 {
		return fmt.Sprintf("%s[?%s]", u.expr(c.Args()[0], 1), u.expr(c.Args()[1], 0))
	}
	if fn == operators.OptSelect && len(c.Args()) == 2 {
		field := ""
		if c.Args()[1].Kind() == ast.LiteralKind {
			field = c.Args()[1].AsLiteral().StringValue()
		}
		return fmt.Sprintf("%s.?%s", u.expr(c.Args()[0], 1), field)
	}
	args := make([]string, len(c.Args()))
	for i, a := range c.Args() {
		args[i] = u.expr(a, 0)
	}
	if c.Target() != nil {
		return fmt.Sprintf("%s.%s(%s)", u.expr(c.Target(), 1), fn, strings.Join(args, ", "))
	}
	return fmt.Sprintf("%s(%s)", strings.TrimPrefix(fn, "."), strings.Join(args, ", "))
}

func parenthesize(s string, prec, parentPrec int) string {
	if parentPrec > 0 && prec > 0 && prec > parentPrec {
		return "(" + s + ")"
	}
	return s
}
