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
	"strings"

	"celcore/ast"
	"celcore/common"
	"celcore/operators"
)

// Parser turns source text into an ast.AST via recursive-descent,
// precedence-climbing parsing of the grammar in spec §4.B/§4.D, followed by
// standard-macro expansion.
type Parser struct {
	cfg *config
}

// NewParser builds a Parser, applying opts over the documented defaults.
func NewParser(opts ...Option) *Parser {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Parser{cfg: cfg}
}

// parseState is the mutable cursor over one parse call; Parser itself stays
// immutable and reusable across calls (spec §9: no hidden globals).
type parseState struct {
	toks  []token
	pos   int
	fac   *ast.Factory
	errs  *common.Errors
	src   common.Source
	cfg   *config
	depth int
}

// Parse compiles src into an AST plus any syntax diagnostics. A non-empty,
// error-severity Errors means the AST is unusable (spec §8 scenario 1).
func (p *Parser) Parse(src common.Source) (*ast.AST, *common.Errors) {
	errs := common.NewErrors(src)
	if n := common.CodePointCount(src.Content()); n > p.cfg.maxCodePointSize {
		errs.ReportError(common.NoLocation, common.KindSyntax,
			"expression of %d code points exceeds the configured maximum of %d", n, p.cfg.maxCodePointSize)
		return nil, errs
	}
	toks, lexErrs := lex(src.Content())
	for _, le := range lexErrs {
		errs.ReportError(src.NewLocation(le.offset), common.KindSyntax, "%s", le.msg)
	}
	st := &parseState{toks: toks, fac: ast.NewFactory(), errs: errs, src: src, cfg: p.cfg}
	expr := st.parseExpr()
	if !st.atEOF() {
		st.errorf(st.cur(), "unexpected trailing input: %q", st.cur().text)
	}
	if errs.HasErrors() {
		return nil, errs
	}
	expanded, macroSources := expandMacros(st.fac, expr, p.cfg.macros, errs)
	if errs.HasErrors() {
		return nil, errs
	}
	tree := ast.NewAST(expanded, src, st.fac.NextID())
	if p.cfg.populateMacroCalls {
		for id, ms := range macroSources {
			tree.SetMacroCall(id, ms.name, ms.call)
		}
	}
	return tree, errs
}

func (st *parseState) cur() token {
	if st.pos >= len(st.toks) {
		return st.toks[len(st.toks)-1]
	}
	return st.toks[st.pos]
}

func (st *parseState) atEOF() bool { return st.cur().kind == tokEOF }

func (st *parseState) advance() token {
	t := st.cur()
	if st.pos < len(st.toks)-1 {
		st.pos++
	}
	return t
}

func (st *parseState) isPunct(s string) bool {
	t := st.cur()
	return t.kind == tokPunct && t.text == s
}

func (st *parseState) isIdent(s string) bool {
	t := st.cur()
	return t.kind == tokIdent && t.text == s
}

func (st *parseState) loc(t token) common.Location { return common.NewLocation(t.line, t.col) }

func (st *parseState) errorf(t token, format string, args ...any) {
	st.errs.ReportError(st.loc(t), common.KindSyntax, format, args...)
}

func (st *parseState) enter() bool {
	st.depth++
	if st.depth > st.cfg.maxRecursionDepth {
		st.errorf(st.cur(), "expression nested too deeply (max depth %d)", st.cfg.maxRecursionDepth)
		return false
	}
	return true
}

func (st *parseState) leave() { st.depth-- }

// expect consumes a punctuation token matching s, recording a syntax error
// if the current token does not match.
func (st *parseState) expect(s string) bool {
	if st.isPunct(s) {
		st.advance()
		return true
	}
	st.errorf(st.cur(), "expected %q, got %q", s, st.cur().text)
	return false
}

// parseExpr parses the lowest-precedence production: the conditional
// (ternary) operator, right-associative (spec §4.D).
func (st *parseState) parseExpr() ast.Expr {
	if !st.enter() {
		defer st.leave()
		return st.errExpr()
	}
	defer st.leave()
	cond := st.parseConditionalOr()
	if st.isPunct("?") {
		tok := st.cur()
		st.advance()
		thenExpr := st.parseConditionalOr()
		if !st.expect(":") {
			return cond
		}
		elseExpr := st.parseExpr()
		return st.fac.NewCall(st.loc(tok), operators.Conditional, cond, thenExpr, elseExpr)
	}
	return cond
}

func (st *parseState) errExpr() ast.Expr {
	return st.fac.NewLiteral(st.loc(st.cur()), ast.NullLiteral())
}

func (st *parseState) parseConditionalOr() ast.Expr {
	left := st.parseConditionalAnd()
	for st.isPunct("||") {
		tok := st.advance()
		right := st.parseConditionalAnd()
		left = st.fac.NewCall(st.loc(tok), operators.LogicalOr, left, right)
	}
	return left
}

func (st *parseState) parseConditionalAnd() ast.Expr {
	left := st.parseRelation()
	for st.isPunct("&&") {
		tok := st.advance()
		right := st.parseRelation()
		left = st.fac.NewCall(st.loc(tok), operators.LogicalAnd, left, right)
	}
	return left
}

// relationOps maps surface tokens to canonical operator names for the
// single relation level (spec §4.D): `a < b < c` is two binary calls
// joined left-to-right, the same as any other left-associative level, and
// is never semantically special-cased.
var relationOps = map[string]string{
	"==": operators.Equals, "!=": operators.NotEquals,
	"<": operators.Less, "<=": operators.LessEquals,
	">": operators.Greater, ">=": operators.GreaterEquals,
}

func (st *parseState) parseRelation() ast.Expr {
	left := st.parseAddition()
	for {
		if op, found := relationOps[st.cur().text]; found && st.cur().kind == tokPunct {
			tok := st.advance()
			right := st.parseAddition()
			left = st.fac.NewCall(st.loc(tok), op, left, right)
			continue
		}
		if st.isIdent("in") {
			tok := st.advance()
			right := st.parseAddition()
			left = st.fac.NewCall(st.loc(tok), operators.In, left, right)
			continue
		}
		break
	}
	return left
}

func (st *parseState) parseAddition() ast.Expr {
	left := st.parseMultiplication()
	for st.isPunct("+") || st.isPunct("-") {
		tok := st.advance()
		op := operators.Add
		if tok.text == "-" {
			op = operators.Subtract
		}
		right := st.parseMultiplication()
		left = st.fac.NewCall(st.loc(tok), op, left, right)
	}
	return left
}

func (st *parseState) parseMultiplication() ast.Expr {
	left := st.parseUnary()
	for st.isPunct("*") || st.isPunct("/") || st.isPunct("%") {
		tok := st.advance()
		var op string
		switch tok.text {
		case "*":
			op = operators.Multiply
		case "/":
			op = operators.Divide
		case "%":
			op = operators.Modulo
		}
		right := st.parseUnary()
		left = st.fac.NewCall(st.loc(tok), op, left, right)
	}
	return left
}

// parseUnary handles prefix `!` and `-`. Runs of the same operator are not
// collapsed: `!!x` and `--x` each parse as nested unary calls, left as a
// checker/interpreter concern rather than folded away here.
func (st *parseState) parseUnary() ast.Expr {
	if st.isPunct("!") {
		tok := st.advance()
		operand := st.parseUnary()
		return st.fac.NewCall(st.loc(tok), operators.LogicalNot, operand)
	}
	if st.isPunct("-") {
		tok := st.advance()
		operand := st.parseUnary()
		return st.fac.NewCall(st.loc(tok), operators.Negate, operand)
	}
	return st.parseMember()
}

// parseMember parses a primary expression followed by any chain of
// selectors, index operations, and call-argument lists (spec §4.D's
// highest-precedence level).
func (st *parseState) parseMember() ast.Expr {
	e := st.parsePrimary()
	for {
		switch {
		case st.isPunct("."):
			tok := st.advance()
			optional := false
			if st.cfg.enableOptionalSyntax && st.isPunct("?") {
				optional = true
				st.advance()
			}
			if st.cur().kind != tokIdent {
				st.errorf(st.cur(), "expected field or method name after '.'")
				return e
			}
			name := st.advance().text
			if strings.HasPrefix(name, "`") {
				if !st.cfg.enableQuotedIdentSyntax {
					st.errorf(tok, "quoted identifiers are not enabled: %s", name)
				}
				name = quotedIdent(name)
			}
			if st.isPunct("(") {
				args := st.parseArgList()
				e = st.fac.NewMemberCall(st.loc(tok), name, e, args...)
				continue
			}
			sel := st.fac.NewSelect(st.loc(tok), e, name, false)
			if optional {
				e = st.fac.NewCall(st.loc(tok), operators.OptSelect, e, st.fac.NewLiteral(st.loc(tok), ast.StringLiteral(name)))
				continue
			}
			e = sel
		case st.isPunct("["):
			tok := st.advance()
			optional := false
			if st.cfg.enableOptionalSyntax && st.isPunct("?") {
				optional = true
				st.advance()
			}
			idx := st.parseExpr()
			st.expect("]")
			op := operators.Index
			if optional {
				op = operators.OptIndex
			}
			e = st.fac.NewCall(st.loc(tok), op, e, idx)
		default:
			return e
		}
	}
}

// parseArgList parses a parenthesized, comma-separated argument list,
// assuming the current token is the opening '('.
func (st *parseState) parseArgList() []ast.Expr {
	st.advance() // consume '('
	var args []ast.Expr
	if st.isPunct(")") {
		st.advance()
		return args
	}
	for {
		args = append(args, st.parseExpr())
		if st.isPunct(",") {
			st.advance()
			continue
		}
		break
	}
	st.expect(")")
	return args
}

func (st *parseState) parsePrimary() ast.Expr {
	if !st.enter() {
		defer st.leave()
		return st.errExpr()
	}
	defer st.leave()
	t := st.cur()
	switch t.kind {
	case tokInt:
		st.advance()
		return st.fac.NewLiteral(st.loc(t), ast.IntLiteral(t.value.(int64)))
	case tokUint:
		st.advance()
		return st.fac.NewLiteral(st.loc(t), ast.UintLiteral(t.value.(uint64)))
	case tokDouble:
		st.advance()
		return st.fac.NewLiteral(st.loc(t), ast.DoubleLiteral(t.value.(float64)))
	case tokString:
		st.advance()
		return st.fac.NewLiteral(st.loc(t), ast.StringLiteral(t.value.(string)))
	case tokBytes:
		st.advance()
		return st.fac.NewLiteral(st.loc(t), ast.BytesLiteral(t.value.([]byte)))
	}
	if t.kind == tokPunct && t.text == "(" {
		st.advance()
		e := st.parseExpr()
		st.expect(")")
		return e
	}
	if t.kind == tokPunct && t.text == "[" {
		return st.parseListLiteral()
	}
	if t.kind == tokPunct && t.text == "{" {
		return st.parseMapLiteral()
	}
	if t.kind == tokPunct && t.text == "." {
		// Absolute (root-qualified) identifier reference, e.g. `.pkg.Type`.
		st.advance()
		return st.parseQualifiedIdent(true)
	}
	if t.kind == tokIdent {
		if t.text == "true" {
			st.advance()
			return st.fac.NewLiteral(st.loc(t), ast.BoolLiteral(true))
		}
		if t.text == "false" {
			st.advance()
			return st.fac.NewLiteral(st.loc(t), ast.BoolLiteral(false))
		}
		if t.text == "null" {
			st.advance()
			return st.fac.NewLiteral(st.loc(t), ast.NullLiteral())
		}
		return st.parseQualifiedIdent(false)
	}
	st.errorf(t, "unexpected token %q", t.text)
	st.advance()
	return st.errExpr()
}

// parseQualifiedIdent parses a (possibly dotted, possibly struct-literal,
// possibly call) identifier reference. `absolute` marks a leading '.' that
// pins resolution to the root namespace (spec §4.C container resolution).
func (st *parseState) parseQualifiedIdent(absolute bool) ast.Expr {
	tok := st.cur()
	if tok.kind != tokIdent {
		st.errorf(tok, "expected identifier")
		return st.errExpr()
	}
	st.advance()
	name := tok.text
	if strings.HasPrefix(name, "`") {
		if !st.cfg.enableQuotedIdentSyntax {
			st.errorf(tok, "quoted identifiers are not enabled: %s", name)
		}
		name = quotedIdent(name)
	}
	if absolute {
		name = "." + name
	}
	// A bare call: `f(args)`.
	if st.isPunct("(") {
		args := st.parseArgList()
		return st.fac.NewCall(st.loc(tok), name, args...)
	}
	// A struct literal: `T{field: value, ...}`.
	if st.isPunct("{") {
		return st.parseStructLiteral(name, tok)
	}
	// Dotted names are not accumulated here: the plain Ident is returned
	// and parseMember turns each following `.segment` into a Select (or a
	// member call).
	return st.fac.NewIdent(st.loc(tok), name)
}

// parseStructLiteral parses `T{name: value, ?name: value, ...}`.
func (st *parseState) parseStructLiteral(typeName string, tok token) ast.Expr {
	st.advance() // consume '{'
	var fields []ast.StructField
	for !st.isPunct("}") {
		optional := false
		if st.cfg.enableOptionalSyntax && st.isPunct("?") {
			optional = true
			st.advance()
		}
		if st.cur().kind != tokIdent {
			st.errorf(st.cur(), "expected field name in struct literal")
			break
		}
		fieldTok := st.advance()
		st.expect(":")
		val := st.parseExpr()
		fields = append(fields, st.fac.NewStructField(st.loc(fieldTok), fieldTok.text, val, optional))
		if st.isPunct(",") {
			st.advance()
			continue
		}
		break
	}
	st.expect("}")
	return st.fac.NewStruct(st.loc(tok), typeName, fields)
}

// parseListLiteral parses `[e1, ?e2, ...]`.
func (st *parseState) parseListLiteral() ast.Expr {
	tok := st.advance() // consume '['
	var elems []ast.Expr
	var optIdx []int32
	for !st.isPunct("]") {
		optional := false
		if st.cfg.enableOptionalSyntax && st.isPunct("?") {
			optional = true
			st.advance()
		}
		elems = append(elems, st.parseExpr())
		if optional {
			optIdx = append(optIdx, int32(len(elems)-1))
		}
		if st.isPunct(",") {
			st.advance()
			continue
		}
		break
	}
	st.expect("]")
	return st.fac.NewList(st.loc(tok), elems, optIdx)
}

// parseMapLiteral parses `{k: v, ?k2: v2, ...}`.
func (st *parseState) parseMapLiteral() ast.Expr {
	tok := st.advance() // consume '{'
	var entries []ast.MapEntry
	for !st.isPunct("}") {
		optional := false
		if st.cfg.enableOptionalSyntax && st.isPunct("?") {
			optional = true
			st.advance()
		}
		key := st.parseExpr()
		st.expect(":")
		val := st.parseExpr()
		entries = append(entries, st.fac.NewMapEntry(key.Location(), key, val, optional))
		if st.isPunct(",") {
			st.advance()
			continue
		}
		break
	}
	st.expect("}")
	return st.fac.NewMap(st.loc(tok), entries)
}

// quotedIdent strips backtick quoting when enable_quoted_identifier_syntax
// is set, letting a field named like a reserved word (e.g. `` `in` ``) be
// referenced; unused unless that option is set, kept here rather than in
// the lexer since it is purely a parse-time convenience, not a distinct
// token kind.
func quotedIdent(s string) string {
	return strings.Trim(s, "`")
}
