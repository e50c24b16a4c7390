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

package ast

import "celcore/common"

// Factory builds Expr values with monotonically increasing, source-bound
// IDs. Threading a Factory explicitly through parsing and macro expansion
// replaces the teacher's thread-local ID counter with a context object that
// is passed explicitly (as a *Factory), per spec §9's guidance against
// hidden globals.
type Factory struct {
	nextID int64
}

// NewFactory creates a Factory whose first issued ID is 1 (0 is reserved to
// mean "no node").
func NewFactory() *Factory {
	return &Factory{nextID: 1}
}

// NextID returns the counter's current value without consuming it; used by
// AST to record where the next parse/macro pass should resume numbering.
func (f *Factory) NextID() int64 { return f.nextID }

func (f *Factory) id() int64 {
	id := f.nextID
	f.nextID++
	return id
}

// NewLiteral creates a LiteralKind node.
func (f *Factory) NewLiteral(loc common.Location, lit Literal) Expr {
	return &exprImpl{id: f.id(), kind: LiteralKind, loc: loc, literal: lit}
}

// NewLiteralID creates a LiteralKind node with an explicit, caller-supplied
// ID; used by macro expansion to graft nodes whose ID was already reserved.
func (f *Factory) NewLiteralID(id int64, loc common.Location, lit Literal) Expr {
	return &exprImpl{id: id, kind: LiteralKind, loc: loc, literal: lit}
}

// NewIdent creates an IdentKind node.
func (f *Factory) NewIdent(loc common.Location, name string) Expr {
	return &exprImpl{id: f.id(), kind: IdentKind, loc: loc, ident: name}
}

// NewSelect creates a SelectKind node. testOnly marks the lowered form of
// `has(operand.field)`.
func (f *Factory) NewSelect(loc common.Location, operand Expr, field string, testOnly bool) Expr {
	return &exprImpl{id: f.id(), kind: SelectKind, loc: loc, sel: Select{operand: operand, field: field, testOnly: testOnly}}
}

// NewCall creates a global-form CallKind node (no receiver).
func (f *Factory) NewCall(loc common.Location, function string, args ...Expr) Expr {
	return &exprImpl{id: f.id(), kind: CallKind, loc: loc, call: Call{function: function, args: args}}
}

// NewMemberCall creates a receiver-form CallKind node `target.function(args...)`.
func (f *Factory) NewMemberCall(loc common.Location, function string, target Expr, args ...Expr) Expr {
	return &exprImpl{id: f.id(), kind: CallKind, loc: loc, call: Call{target: target, function: function, args: args}}
}

// NewList creates a ListKind node; optionalIndices marks which elements are
// `?expr` optional entries.
func (f *Factory) NewList(loc common.Location, elements []Expr, optionalIndices []int32) Expr {
	return &exprImpl{id: f.id(), kind: ListKind, loc: loc, list: CreateList{elements: elements, optionalIndices: optionalIndices}}
}

// NewMapEntry creates a MapEntry with its own node ID.
func (f *Factory) NewMapEntry(loc common.Location, key, value Expr, optional bool) MapEntry {
	return MapEntry{id: f.id(), key: key, value: value, optional: optional}
}

// NewMap creates a MapKind node.
func (f *Factory) NewMap(loc common.Location, entries []MapEntry) Expr {
	return &exprImpl{id: f.id(), kind: MapKind, loc: loc, m: CreateMap{entries: entries}}
}

// NewStructField creates a StructField with its own node ID.
func (f *Factory) NewStructField(loc common.Location, name string, value Expr, optional bool) StructField {
	return StructField{id: f.id(), name: name, value: value, optional: optional}
}

// NewStruct creates a StructKind node: a message literal `T{...}`.
func (f *Factory) NewStruct(loc common.Location, typeName string, fields []StructField) Expr {
	return &exprImpl{id: f.id(), kind: StructKind, loc: loc, strct: CreateStruct{typeName: typeName, fields: fields}}
}

// NewComprehension creates a ComprehensionKind node: the canonical form
// every standard macro lowers to.
func (f *Factory) NewComprehension(loc common.Location, iterVar string, iterRange Expr, accuVar string, accuInit, loopCondition, loopStep, result Expr) Expr {
	return &exprImpl{
		id:   f.id(),
		kind: ComprehensionKind,
		loc:  loc,
		compre: Comprehension{
			iterVar:       iterVar,
			iterRange:     iterRange,
			accuVar:       accuVar,
			accuInit:      accuInit,
			loopCondition: loopCondition,
			loopStep:      loopStep,
			result:        result,
		},
	}
}

// CopyExpr performs a structural copy of e, reassigning every node in the
// subtree a fresh ID from f. This is used when a macro needs to duplicate
// an operand (e.g. an extension macro that expands `double(x)` to
// `x + x`) without creating ID collisions.
func (f *Factory) CopyExpr(e Expr) Expr {
	switch e.Kind() {
	case LiteralKind:
		return f.NewLiteral(e.Location(), e.AsLiteral())
	case IdentKind:
		return f.NewIdent(e.Location(), e.AsIdent())
	case SelectKind:
		s := e.AsSelect()
		return f.NewSelect(e.Location(), f.CopyExpr(s.Operand()), s.FieldName(), s.IsTestOnly())
	case CallKind:
		c := e.AsCall()
		args := make([]Expr, len(c.Args()))
		for i, a := range c.Args() {
			args[i] = f.CopyExpr(a)
		}
		if c.Target() != nil {
			return f.NewMemberCall(e.Location(), c.FunctionName(), f.CopyExpr(c.Target()), args...)
		}
		return f.NewCall(e.Location(), c.FunctionName(), args...)
	case ListKind:
		l := e.AsList()
		elems := make([]Expr, len(l.Elements()))
		for i, el := range l.Elements() {
			elems[i] = f.CopyExpr(el)
		}
		return f.NewList(e.Location(), elems, l.OptionalIndices())
	case MapKind:
		m := e.AsMap()
		entries := make([]MapEntry, len(m.Entries()))
		for i, ent := range m.Entries() {
			entries[i] = f.NewMapEntry(ent.Key().Location(), f.CopyExpr(ent.Key()), f.CopyExpr(ent.Value()), ent.IsOptional())
		}
		return f.NewMap(e.Location(), entries)
	case StructKind:
		s := e.AsStruct()
		fields := make([]StructField, len(s.Fields()))
		for i, fl := range s.Fields() {
			fields[i] = f.NewStructField(fl.Value().Location(), fl.Name(), f.CopyExpr(fl.Value()), fl.IsOptional())
		}
		return f.NewStruct(e.Location(), s.TypeName(), fields)
	case ComprehensionKind:
		c := e.AsComprehension()
		return f.NewComprehension(e.Location(), c.IterVar(), f.CopyExpr(c.IterRange()), c.AccuVar(),
			f.CopyExpr(c.AccuInit()), f.CopyExpr(c.LoopCondition()), f.CopyExpr(c.LoopStep()), f.CopyExpr(c.Result()))
	}
	return e
}
