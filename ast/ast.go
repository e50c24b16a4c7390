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

// Package ast defines the expression tree produced by the parser: an
// immutable, tagged-variant value rather than a class hierarchy, plus a
// navigable view that adds parent/child traversal without mutating the
// tree (spec §4.B).
package ast

import (
	"celcore/common"
)

// Kind tags which variant an Expr node carries.
type Kind int

const (
	UnspecifiedKind Kind = iota
	LiteralKind
	IdentKind
	SelectKind
	CallKind
	ListKind
	MapKind
	StructKind
	ComprehensionKind
)

// Literal is the constant value carried by a LiteralKind node. Exactly one
// field is meaningful, discriminated by LiteralType.
type Literal struct {
	typ   LiteralType
	boolV bool
	intV  int64
	uintV uint64
	dblV  float64
	strV  string
	bytV  []byte
	// nullV has no payload: typ == LiteralNull suffices.
}

// LiteralType discriminates the payload of a Literal.
type LiteralType int

const (
	LiteralNull LiteralType = iota
	LiteralBool
	LiteralInt
	LiteralUint
	LiteralDouble
	LiteralString
	LiteralBytes
)

func NullLiteral() Literal                { return Literal{typ: LiteralNull} }
func BoolLiteral(v bool) Literal          { return Literal{typ: LiteralBool, boolV: v} }
func IntLiteral(v int64) Literal          { return Literal{typ: LiteralInt, intV: v} }
func UintLiteral(v uint64) Literal        { return Literal{typ: LiteralUint, uintV: v} }
func DoubleLiteral(v float64) Literal     { return Literal{typ: LiteralDouble, dblV: v} }
func StringLiteral(v string) Literal      { return Literal{typ: LiteralString, strV: v} }
func BytesLiteral(v []byte) Literal       { return Literal{typ: LiteralBytes, bytV: v} }

func (l Literal) Type() LiteralType { return l.typ }
func (l Literal) BoolValue() bool   { return l.boolV }
func (l Literal) IntValue() int64   { return l.intV }
func (l Literal) UintValue() uint64 { return l.uintV }
func (l Literal) DoubleValue() float64 { return l.dblV }
func (l Literal) StringValue() string  { return l.strV }
func (l Literal) BytesValue() []byte   { return l.bytV }

// Select is the SelectKind payload: `operand.field`, or, when TestOnly is
// set, the lowered form of `has(operand.field)`.
type Select struct {
	operand  Expr
	field    string
	testOnly bool
}

func (s Select) Operand() Expr    { return s.operand }
func (s Select) FieldName() string { return s.field }
func (s Select) IsTestOnly() bool  { return s.testOnly }

// Call is the CallKind payload. Target is nil for the global call form
// `function(args...)`; non-nil for the receiver form `target.function(args...)`.
type Call struct {
	target   Expr
	function string
	args     []Expr
}

func (c Call) Target() Expr          { return c.target }
func (c Call) IsMemberFunction() bool { return c.target != nil }
func (c Call) FunctionName() string  { return c.function }
func (c Call) Args() []Expr          { return c.args }

// CreateList is the ListKind payload.
type CreateList struct {
	elements        []Expr
	optionalIndices []int32
}

func (l CreateList) Elements() []Expr        { return l.elements }
func (l CreateList) OptionalIndices() []int32 { return l.optionalIndices }

// EntryOptional is implemented by MapEntry and StructField to expose the
// `?key: value` optional-entry bit.
type EntryOptional interface {
	IsOptional() bool
}

// MapEntry is one `key: value` pair of a CreateMap node. It has its own ID,
// independent of the containing map's ID, so the checker can attach a
// per-entry diagnostic (spec §3 invariants).
type MapEntry struct {
	id       int64
	key      Expr
	value    Expr
	optional bool
}

func (e MapEntry) ID() int64       { return e.id }
func (e MapEntry) Key() Expr       { return e.key }
func (e MapEntry) Value() Expr     { return e.value }
func (e MapEntry) IsOptional() bool { return e.optional }

// CreateMap is the MapKind payload.
type CreateMap struct {
	entries []MapEntry
}

func (m CreateMap) Entries() []MapEntry { return m.entries }

// StructField is one `field: value` initializer of a CreateStruct node,
// with its own ID for per-field diagnostics.
type StructField struct {
	id       int64
	name     string
	value    Expr
	optional bool
}

func (f StructField) ID() int64       { return f.id }
func (f StructField) Name() string    { return f.name }
func (f StructField) Value() Expr     { return f.value }
func (f StructField) IsOptional() bool { return f.optional }

// CreateStruct is the StructKind payload: a proto-message-literal-style
// construction `T{field: value, ...}`.
type CreateStruct struct {
	typeName string
	fields   []StructField
}

func (s CreateStruct) TypeName() string       { return s.typeName }
func (s CreateStruct) Fields() []StructField { return s.fields }

// Comprehension is the ComprehensionKind payload: the canonical iterative
// form every macro in spec §4.D's standard family lowers to.
type Comprehension struct {
	iterVar       string
	iterVar2      string // second iteration variable, unused by the standard macros; reserved for two-variable comprehensions.
	iterRange     Expr
	accuVar       string
	accuInit      Expr
	loopCondition Expr
	loopStep      Expr
	result        Expr
}

func (c Comprehension) IterVar() string      { return c.iterVar }
func (c Comprehension) IterVar2() string     { return c.iterVar2 }
func (c Comprehension) IterRange() Expr      { return c.iterRange }
func (c Comprehension) AccuVar() string      { return c.accuVar }
func (c Comprehension) AccuInit() Expr       { return c.accuInit }
func (c Comprehension) LoopCondition() Expr  { return c.loopCondition }
func (c Comprehension) LoopStep() Expr       { return c.loopStep }
func (c Comprehension) Result() Expr         { return c.result }

// Expr is the single, shared interface over every node. Implementations
// never grow new variants: adding a node kind means adding a case to Kind
// and a payload accessor here, not a new type in the Expr hierarchy
// (spec §9's "deep inheritance" redesign note).
type Expr interface {
	// ID is the node's parser-assigned identifier: unique within a tree,
	// non-zero, and preserved by every later pass (spec §3 invariant).
	ID() int64
	// Kind reports which payload accessor is valid.
	Kind() Kind
	// Location is this node's position in the originating Source.
	Location() common.Location

	AsLiteral() Literal
	AsIdent() string
	AsSelect() Select
	AsCall() Call
	AsList() CreateList
	AsMap() CreateMap
	AsStruct() CreateStruct
	AsComprehension() Comprehension
}

// exprImpl is the single concrete Expr implementation; which payload field
// is populated is determined by kind.
type exprImpl struct {
	id       int64
	kind     Kind
	loc      common.Location
	literal  Literal
	ident    string
	sel      Select
	call     Call
	list     CreateList
	m        CreateMap
	strct    CreateStruct
	compre   Comprehension
}

func (e *exprImpl) ID() int64              { return e.id }
func (e *exprImpl) Kind() Kind             { return e.kind }
func (e *exprImpl) Location() common.Location { return e.loc }

func (e *exprImpl) AsLiteral() Literal           { return e.literal }
func (e *exprImpl) AsIdent() string              { return e.ident }
func (e *exprImpl) AsSelect() Select              { return e.sel }
func (e *exprImpl) AsCall() Call                  { return e.call }
func (e *exprImpl) AsList() CreateList            { return e.list }
func (e *exprImpl) AsMap() CreateMap              { return e.m }
func (e *exprImpl) AsStruct() CreateStruct        { return e.strct }
func (e *exprImpl) AsComprehension() Comprehension { return e.compre }

// MacroSource records, for a node produced by macro expansion, the
// original call expression it replaced. It is stored in a side table
// keyed by node ID (spec §9's note on cyclic back-pointers: never a
// pointer field on the node itself).
type MacroSource struct {
	MacroName string
	Call      Expr
}

// AST is the immutable value produced by parsing: the root expression plus
// every side table later passes need. It is safe to share across threads.
type AST struct {
	expr        Expr
	source      common.Source
	macroCalls  map[int64]MacroSource
	typeMap     map[int64]any // populated by the checker; any to avoid an import cycle on types.Type
	refMap      map[int64]*ReferenceInfo
	nextID      int64
}

// ReferenceInfo records what an identifier or call node resolved to: a
// constant value reference (e.g. an enum constant), a variable name, or one
// or more candidate overload IDs for a call.
type ReferenceInfo struct {
	Name        string
	OverloadIDs []string
	Value       any // a resolved constant reference, e.g. for enum identifiers
}

// NewAST wraps a parsed root expression and its Source.
func NewAST(expr Expr, source common.Source, nextID int64) *AST {
	return &AST{
		expr:       expr,
		source:     source,
		macroCalls: make(map[int64]MacroSource),
		typeMap:    make(map[int64]any),
		refMap:     make(map[int64]*ReferenceInfo),
		nextID:     nextID,
	}
}

func (a *AST) Expr() Expr              { return a.expr }
func (a *AST) Source() common.Source   { return a.source }
func (a *AST) MacroCalls() map[int64]MacroSource { return a.macroCalls }
func (a *AST) NextID() int64           { return a.nextID }

// SetMacroCall records the macro-source back-reference for id, enabling
// round-trip unparsing when populate_macro_calls is enabled.
func (a *AST) SetMacroCall(id int64, name string, call Expr) {
	a.macroCalls[id] = MacroSource{MacroName: name, Call: call}
}

// TypeMap exposes the checker's node-id -> type annotations. Stored as
// `any` here to keep this package free of a dependency on the types
// package; the checker/cel packages use TypeMapTyped for a concrete view.
func (a *AST) TypeMap() map[int64]any { return a.typeMap }

// ReferenceMap exposes the checker's node-id -> overload/identifier
// resolution.
func (a *AST) ReferenceMap() map[int64]*ReferenceInfo { return a.refMap }

// SetType records the checked type of node id.
func (a *AST) SetType(id int64, t any) { a.typeMap[id] = t }

// SetReference records the checked reference of node id.
func (a *AST) SetReference(id int64, ref *ReferenceInfo) { a.refMap[id] = ref }

// IsChecked reports whether the checker has annotated every node (spec §8
// P2): a cheap proxy is that the type map is non-empty and covers the
// root.
func (a *AST) IsChecked() bool {
	_, found := a.typeMap[a.expr.ID()]
	return found
}
