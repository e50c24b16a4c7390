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
	"celcore/common"
	"celcore/common/types"
	celtypes "celcore/types"
)

// EvalContext threads everything an Interpretable needs beyond the current
// node's own children: the variable bindings in scope, the iteration
// budget shared by every comprehension on this call (spec §4.E:
// comprehension_max_iterations bounds the whole evaluation, not each loop
// independently), and a cancellation check.
type EvalContext struct {
	act       Activation
	budget    *int64
	cancelled func() bool
}

// NewEvalContext creates the root EvalContext for one Program.Eval call.
// maxIterations <= 0 means unlimited.
func NewEvalContext(act Activation, maxIterations int64, cancelled func() bool) *EvalContext {
	var budget *int64
	if maxIterations > 0 {
		b := maxIterations
		budget = &b
	}
	if cancelled == nil {
		cancelled = func() bool { return false }
	}
	return &EvalContext{act: act, budget: budget, cancelled: cancelled}
}

// WithVar layers one additional binding (a comprehension's iterVar or
// accuVar) over ec's current Activation, preserving the shared budget and
// cancellation check.
func (ec *EvalContext) WithVar(name string, val types.Value) *EvalContext {
	return &EvalContext{act: NewVarActivation(name, val, ec.act), budget: ec.budget, cancelled: ec.cancelled}
}

// consumeIteration decrements the shared budget, returning an error once
// it is exhausted.
func (ec *EvalContext) consumeIteration() *types.Err {
	if ec.cancelled() {
		return types.NewErr(common.KindCancelled, "evaluation was cancelled")
	}
	if ec.budget == nil {
		return nil
	}
	if *ec.budget <= 0 {
		return types.NewErr(common.KindIterationBudgetExceeded, "comprehension exceeded the configured iteration budget")
	}
	*ec.budget--
	return nil
}

// Interpretable is one node of the evaluation plan built from a checked (or
// unchecked) AST. Every concrete node type below corresponds to exactly
// one ast.Kind.
type Interpretable interface {
	ID() int64
	Eval(ec *EvalContext) types.Value
}

type constNode struct {
	id  int64
	val types.Value
}

func (n *constNode) ID() int64                    { return n.id }
func (n *constNode) Eval(ec *EvalContext) types.Value { return n.val }

type identNode struct {
	id   int64
	name string
}

func (n *identNode) ID() int64 { return n.id }
func (n *identNode) Eval(ec *EvalContext) types.Value {
	if v, found := ec.act.ResolveName(n.name); found {
		return v
	}
	return types.NewErr(common.KindTypeCheck, "unbound variable: %s", n.name).WithNode(n.id, common.NoLocation)
}

type selectNode struct {
	id       int64
	operand  Interpretable
	field    string
	testOnly bool
}

func (n *selectNode) ID() int64 { return n.id }
func (n *selectNode) Eval(ec *EvalContext) types.Value {
	operand := n.operand.Eval(ec)
	if types.IsError(operand) || types.IsUnknown(operand) {
		return operand
	}
	switch v := operand.(type) {
	case *types.Message:
		if n.testOnly {
			val, _ := v.HasField(n.field)
			return val
		}
		return v.GetField(n.field)
	case *types.Map:
		if n.testOnly {
			return v.Contains(types.String(n.field))
		}
		return v.Get(types.String(n.field))
	}
	return types.NewErr(common.KindTypeCheck, "type %s does not support field selection", operand.Type()).WithNode(n.id, common.NoLocation)
}

type callNode struct {
	id          int64
	function    string
	overloadIDs []string
	target      Interpretable // nil for a global call
	args        []Interpretable
	dispatcher  *Dispatcher
}

func (n *callNode) ID() int64 { return n.id }
func (n *callNode) Eval(ec *EvalContext) types.Value {
	var evaluated []types.Value
	if n.target != nil {
		evaluated = append(evaluated, n.target.Eval(ec))
	}
	for _, a := range n.args {
		evaluated = append(evaluated, a.Eval(ec))
	}
	if merged, found := types.MaybeMergeUnknowns(evaluated...); found {
		return merged
	}
	for _, v := range evaluated {
		if types.IsError(v) {
			return v
		}
	}
	return n.dispatcher.Dispatch(n.function, n.overloadIDs, evaluated)
}

// andNode/orNode/notNode/condNode implement CEL's short-circuit logical
// operators directly rather than always invoking a stdlib Impl (spec §4.E:
// "&&, ||, and the conditional must short-circuit"), including the
// commutative-error rule: `false && err` is false, `true || err` is true.

type andNode struct {
	id       int64
	lhs, rhs Interpretable
}

func (n *andNode) ID() int64 { return n.id }
func (n *andNode) Eval(ec *EvalContext) types.Value {
	l := n.lhs.Eval(ec)
	if b, ok := l.(types.Bool); ok && !bool(b) {
		return types.Bool(false)
	}
	r := n.rhs.Eval(ec)
	if b, ok := r.(types.Bool); ok && !bool(b) {
		return types.Bool(false)
	}
	if types.IsError(l) || types.IsUnknown(l) {
		return l
	}
	if types.IsError(r) || types.IsUnknown(r) {
		return r
	}
	lb, lok := l.(types.Bool)
	rb, rok := r.(types.Bool)
	if lok && rok {
		return types.Bool(bool(lb) && bool(rb))
	}
	return types.NewErr(common.KindNoMatchingOverload, "no such overload: %s && %s", l.Type(), r.Type()).WithNode(n.id, common.NoLocation)
}

type orNode struct {
	id       int64
	lhs, rhs Interpretable
}

func (n *orNode) ID() int64 { return n.id }
func (n *orNode) Eval(ec *EvalContext) types.Value {
	l := n.lhs.Eval(ec)
	if b, ok := l.(types.Bool); ok && bool(b) {
		return types.Bool(true)
	}
	r := n.rhs.Eval(ec)
	if b, ok := r.(types.Bool); ok && bool(b) {
		return types.Bool(true)
	}
	if types.IsError(l) || types.IsUnknown(l) {
		return l
	}
	if types.IsError(r) || types.IsUnknown(r) {
		return r
	}
	lb, lok := l.(types.Bool)
	rb, rok := r.(types.Bool)
	if lok && rok {
		return types.Bool(bool(lb) || bool(rb))
	}
	return types.NewErr(common.KindNoMatchingOverload, "no such overload: %s || %s", l.Type(), r.Type()).WithNode(n.id, common.NoLocation)
}

type notNode struct {
	id  int64
	arg Interpretable
}

func (n *notNode) ID() int64 { return n.id }
func (n *notNode) Eval(ec *EvalContext) types.Value {
	v := n.arg.Eval(ec)
	if b, ok := v.(types.Bool); ok {
		return b.Negate()
	}
	if types.IsError(v) || types.IsUnknown(v) {
		return v
	}
	return types.NewErr(common.KindNoMatchingOverload, "no such overload: !%s", v.Type()).WithNode(n.id, common.NoLocation)
}

type condNode struct {
	id                  int64
	cond, truthy, falsy Interpretable
}

func (n *condNode) ID() int64 { return n.id }
func (n *condNode) Eval(ec *EvalContext) types.Value {
	c := n.cond.Eval(ec)
	if b, ok := c.(types.Bool); ok {
		if b {
			return n.truthy.Eval(ec)
		}
		return n.falsy.Eval(ec)
	}
	if types.IsError(c) || types.IsUnknown(c) {
		return c
	}
	return types.NewErr(common.KindNoMatchingOverload, "no such overload: %s ? _ : _", c.Type()).WithNode(n.id, common.NoLocation)
}

type createListNode struct {
	id    int64
	elems []Interpretable
	// optional marks indices populated via `[?x]` (spec §4.D): an absent
	// optional value there is simply omitted from the built list, rather
	// than being an error or appearing as a wrapped optional element.
	optional map[int]bool
}

func (n *createListNode) ID() int64 { return n.id }
func (n *createListNode) Eval(ec *EvalContext) types.Value {
	vals := make([]types.Value, len(n.elems))
	for i, e := range n.elems {
		vals[i] = e.Eval(ec)
	}
	if merged, found := types.MaybeMergeUnknowns(vals...); found {
		return merged
	}
	for _, v := range vals {
		if types.IsError(v) {
			return v
		}
	}
	out := make([]types.Value, 0, len(vals))
	for i, v := range vals {
		if !n.optional[i] {
			out = append(out, v)
			continue
		}
		opt, ok := v.(*types.Optional)
		if !ok {
			return types.NewErr(common.KindTypeCheck, "optional list element must be an optional value, got %s", v.Type()).WithNode(n.id, common.NoLocation)
		}
		if !bool(opt.HasValue()) {
			continue
		}
		out = append(out, opt.GetValue())
	}
	return types.NewList(dynElemType(out), out)
}

type mapEntryNode struct {
	key, val Interpretable
	// optional marks a `?key: value` entry (spec §4.D): an absent optional
	// value drops the entire entry rather than producing an error.
	optional bool
}

type createMapNode struct {
	id      int64
	entries []mapEntryNode
}

func (n *createMapNode) ID() int64 { return n.id }
func (n *createMapNode) Eval(ec *EvalContext) types.Value {
	keys := make([]types.Value, len(n.entries))
	vals := make([]types.Value, len(n.entries))
	for i, ent := range n.entries {
		keys[i] = ent.key.Eval(ec)
		vals[i] = ent.val.Eval(ec)
	}
	if merged, found := types.MaybeMergeUnknowns(append(append([]types.Value{}, keys...), vals...)...); found {
		return merged
	}
	for _, v := range keys {
		if types.IsError(v) {
			return v
		}
	}
	for _, v := range vals {
		if types.IsError(v) {
			return v
		}
	}
	outKeys := make([]types.Value, 0, len(keys))
	outVals := make([]types.Value, 0, len(vals))
	for i, ent := range n.entries {
		if !ent.optional {
			outKeys = append(outKeys, keys[i])
			outVals = append(outVals, vals[i])
			continue
		}
		opt, ok := vals[i].(*types.Optional)
		if !ok {
			return types.NewErr(common.KindTypeCheck, "optional map entry value must be an optional value, got %s", vals[i].Type()).WithNode(n.id, common.NoLocation)
		}
		if !bool(opt.HasValue()) {
			continue
		}
		outKeys = append(outKeys, keys[i])
		outVals = append(outVals, opt.GetValue())
	}
	m, errv := types.NewMap(dynElemType(outKeys), dynElemType(outVals), outKeys, outVals)
	if errv != nil {
		return errv
	}
	return m
}

type structFieldNode struct {
	name string
	val  Interpretable
	// optional marks a `?field: value` initializer (spec §4.D): an absent
	// optional value leaves the field entirely unset rather than assigning
	// it, preserving has()'s presence semantics.
	optional bool
}

type createStructNode struct {
	id       int64
	typeName string
	fields   []structFieldNode
	provider types.Provider
}

func (n *createStructNode) ID() int64 { return n.id }
func (n *createStructNode) Eval(ec *EvalContext) types.Value {
	if n.provider == nil {
		return types.NewErr(common.KindTypeCheck, "unknown message type: %s", n.typeName).WithNode(n.id, common.NoLocation)
	}
	desc, found := n.provider.FindStructType(n.typeName)
	if !found {
		return types.NewErr(common.KindTypeCheck, "unknown message type: %s", n.typeName).WithNode(n.id, common.NoLocation)
	}
	fields := make(map[string]types.Value, len(n.fields))
	for _, f := range n.fields {
		v := f.val.Eval(ec)
		if types.IsError(v) || types.IsUnknown(v) {
			return v
		}
		if !f.optional {
			fields[f.name] = v
			continue
		}
		opt, ok := v.(*types.Optional)
		if !ok {
			return types.NewErr(common.KindTypeCheck, "optional field initializer must be an optional value, got %s", v.Type()).WithNode(n.id, common.NoLocation)
		}
		if !bool(opt.HasValue()) {
			continue
		}
		fields[f.name] = opt.GetValue()
	}
	return desc.NewMessage(fields)
}

// comprehensionNode evaluates the canonical iterative form every standard
// macro lowers to (spec §4.D), consuming one unit of the shared iteration
// budget per element visited.
type comprehensionNode struct {
	id            int64
	iterVar       string
	accuVar       string
	iterRange     Interpretable
	accuInit      Interpretable
	loopCondition Interpretable
	loopStep      Interpretable
	result        Interpretable
}

func (n *comprehensionNode) ID() int64 { return n.id }
func (n *comprehensionNode) Eval(ec *EvalContext) types.Value {
	rangeVal := n.iterRange.Eval(ec)
	if types.IsError(rangeVal) || types.IsUnknown(rangeVal) {
		return rangeVal
	}
	var elems []types.Value
	switch v := rangeVal.(type) {
	case *types.List:
		elems = v.Slice()
	case *types.Map:
		elems = v.Keys()
	default:
		return types.NewErr(common.KindTypeCheck, "comprehension range must be a list or map, got %s", rangeVal.Type()).WithNode(n.id, common.NoLocation)
	}

	accu := n.accuInit.Eval(ec)
	if types.IsError(accu) || types.IsUnknown(accu) {
		return accu
	}

	for _, elem := range elems {
		loopEC := ec.WithVar(n.accuVar, accu).WithVar(n.iterVar, elem)
		cond := n.loopCondition.Eval(loopEC)
		if b, ok := cond.(types.Bool); ok && !bool(b) {
			break
		}
		if types.IsError(cond) || types.IsUnknown(cond) {
			return cond
		}
		if errv := ec.consumeIteration(); errv != nil {
			return errv
		}
		accu = n.loopStep.Eval(loopEC)
		if types.IsError(accu) || types.IsUnknown(accu) {
			return accu
		}
	}
	return n.result.Eval(ec.WithVar(n.accuVar, accu))
}

// dynElemType reports a uniform element type if every value shares one, or
// dyn otherwise; used for literals assembled at eval time since the
// interpreter does not carry the checker's static list/map type forward
// into the plan.
func dynElemType(vals []types.Value) *celtypes.Type {
	var t *celtypes.Type
	for _, v := range vals {
		if t == nil {
			t = v.Type()
			continue
		}
		if t.TypeName() != v.Type().TypeName() {
			return celtypes.DynType
		}
	}
	if t == nil {
		return celtypes.DynType
	}
	return t
}
