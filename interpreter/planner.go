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
	"github.com/golang/glog"

	"celcore/ast"
	"celcore/common/types"
	"celcore/operators"
)

// Planner compiles a parsed (optionally checked) AST into an Interpretable
// plan. It is deliberately a single direct recursive descent rather than
// the teacher's attribute/qualifier factory: celcore has no proto field
// masks or cost-based pruning to exploit, so the extra indirection the
// teacher pays for lazy attribute resolution buys nothing here.
type Planner struct {
	dispatcher *Dispatcher
	provider   types.Provider
	refs       map[int64]*ast.ReferenceInfo
}

// NewPlanner builds a Planner dispatching calls through d and resolving
// struct-type construction through p (nil provider disables struct
// literals).
func NewPlanner(d *Dispatcher, p types.Provider) *Planner {
	return &Planner{dispatcher: d, provider: p}
}

// PlanTree compiles tree's root expression, consulting its
// checker-recorded reference map (if any) to statically bind each call to
// the overload(s) the checker resolved instead of falling back to the
// dispatcher's by-arity search.
func (p *Planner) PlanTree(tree *ast.AST) Interpretable {
	p.refs = tree.ReferenceMap()
	if glog.V(1) {
		glog.Infof("planning expression %d with %d resolved references", tree.Expr().ID(), len(p.refs))
	}
	return p.Plan(tree.Expr())
}

// Plan compiles expr into an Interpretable.
func (p *Planner) Plan(expr ast.Expr) Interpretable {
	switch expr.Kind() {
	case ast.LiteralKind:
		return &constNode{id: expr.ID(), val: literalValue(expr.AsLiteral())}
	case ast.IdentKind:
		if ref, found := p.refs[expr.ID()]; found {
			if v, ok := ref.Value.(types.Value); ok {
				return &constNode{id: expr.ID(), val: v}
			}
			return &identNode{id: expr.ID(), name: ref.Name}
		}
		return &identNode{id: expr.ID(), name: expr.AsIdent()}
	case ast.SelectKind:
		s := expr.AsSelect()
		return &selectNode{id: expr.ID(), operand: p.Plan(s.Operand()), field: s.FieldName(), testOnly: s.IsTestOnly()}
	case ast.CallKind:
		return p.planCall(expr)
	case ast.ListKind:
		l := expr.AsList()
		elems := make([]Interpretable, len(l.Elements()))
		for i, e := range l.Elements() {
			elems[i] = p.Plan(e)
		}
		var optional map[int]bool
		if idxs := l.OptionalIndices(); len(idxs) > 0 {
			optional = make(map[int]bool, len(idxs))
			for _, idx := range idxs {
				optional[int(idx)] = true
			}
		}
		return &createListNode{id: expr.ID(), elems: elems, optional: optional}
	case ast.MapKind:
		m := expr.AsMap()
		entries := make([]mapEntryNode, len(m.Entries()))
		for i, ent := range m.Entries() {
			entries[i] = mapEntryNode{key: p.Plan(ent.Key()), val: p.Plan(ent.Value()), optional: ent.IsOptional()}
		}
		return &createMapNode{id: expr.ID(), entries: entries}
	case ast.StructKind:
		s := expr.AsStruct()
		fields := make([]structFieldNode, len(s.Fields()))
		for i, f := range s.Fields() {
			fields[i] = structFieldNode{name: f.Name(), val: p.Plan(f.Value()), optional: f.IsOptional()}
		}
		return &createStructNode{id: expr.ID(), typeName: s.TypeName(), fields: fields, provider: p.provider}
	case ast.ComprehensionKind:
		c := expr.AsComprehension()
		return &comprehensionNode{
			id:            expr.ID(),
			iterVar:       c.IterVar(),
			accuVar:       c.AccuVar(),
			iterRange:     p.Plan(c.IterRange()),
			accuInit:      p.Plan(c.AccuInit()),
			loopCondition: p.Plan(c.LoopCondition()),
			loopStep:      p.Plan(c.LoopStep()),
			result:        p.Plan(c.Result()),
		}
	}
	return &constNode{id: expr.ID(), val: types.NullValue}
}

// planCall special-cases the operators that must short-circuit rather than
// always invoking a stdlib Impl over fully evaluated arguments.
func (p *Planner) planCall(expr ast.Expr) Interpretable {
	c := expr.AsCall()
	switch {
	case c.FunctionName() == operators.LogicalAnd && len(c.Args()) == 2:
		return &andNode{id: expr.ID(), lhs: p.Plan(c.Args()[0]), rhs: p.Plan(c.Args()[1])}
	case c.FunctionName() == operators.LogicalOr && len(c.Args()) == 2:
		return &orNode{id: expr.ID(), lhs: p.Plan(c.Args()[0]), rhs: p.Plan(c.Args()[1])}
	case c.FunctionName() == operators.LogicalNot && len(c.Args()) == 1:
		return &notNode{id: expr.ID(), arg: p.Plan(c.Args()[0])}
	case c.FunctionName() == operators.Conditional && len(c.Args()) == 3:
		return &condNode{id: expr.ID(), cond: p.Plan(c.Args()[0]), truthy: p.Plan(c.Args()[1]), falsy: p.Plan(c.Args()[2])}
	}
	var target Interpretable
	if c.Target() != nil {
		target = p.Plan(c.Target())
	}
	args := make([]Interpretable, len(c.Args()))
	for i, a := range c.Args() {
		args[i] = p.Plan(a)
	}
	var overloadIDs []string
	if ref, found := p.refs[expr.ID()]; found {
		overloadIDs = ref.OverloadIDs
	}
	return &callNode{id: expr.ID(), function: c.FunctionName(), overloadIDs: overloadIDs, target: target, args: args, dispatcher: p.dispatcher}
}

func literalValue(l ast.Literal) types.Value {
	switch l.Type() {
	case ast.LiteralNull:
		return types.NullValue
	case ast.LiteralBool:
		return types.Bool(l.BoolValue())
	case ast.LiteralInt:
		return types.Int(l.IntValue())
	case ast.LiteralUint:
		return types.Uint(l.UintValue())
	case ast.LiteralDouble:
		return types.Double(l.DoubleValue())
	case ast.LiteralString:
		return types.String(l.StringValue())
	case ast.LiteralBytes:
		return types.Bytes(l.BytesValue())
	}
	return types.NullValue
}
