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

package checker

import (
	"strings"

	"celcore/ast"
	"celcore/common"
	"celcore/common/decls"
	"celcore/common/types"
	celtypes "celcore/types"
)

// checker carries the mutable state of a single Check pass: the
// environment being resolved against, the accumulated diagnostics, and a
// stack of block-local scopes introduced by comprehensions.
type checker struct {
	env    *Env
	errs   *common.Errors
	tree   *ast.AST
	scopes []map[string]*celtypes.Type
}

// Check type-checks tree against env, annotating every node's type and
// (where applicable) resolved overload/reference in the AST's side tables
// (spec §4.C). The returned Errors is empty iff checking succeeded.
func Check(tree *ast.AST, env *Env) *common.Errors {
	c := &checker{env: env, errs: common.NewErrors(tree.Source()), tree: tree}
	c.pushScope()
	c.checkExpr(tree.Expr())
	c.popScope()
	return c.errs
}

func (c *checker) pushScope() { c.scopes = append(c.scopes, make(map[string]*celtypes.Type)) }
func (c *checker) popScope()  { c.scopes = c.scopes[:len(c.scopes)-1] }

func (c *checker) declareLocal(name string, t *celtypes.Type) {
	c.scopes[len(c.scopes)-1][name] = t
}

func (c *checker) lookupLocal(name string) (*celtypes.Type, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if t, found := c.scopes[i][name]; found {
			return t, true
		}
	}
	return nil, false
}

func (c *checker) setType(e ast.Expr, t *celtypes.Type) *celtypes.Type {
	c.tree.SetType(e.ID(), t)
	return t
}

func (c *checker) errorf(e ast.Expr, kind common.Kind, format string, args ...any) *celtypes.Type {
	c.errs.ReportError(e.Location(), kind, format, args...)
	return c.setType(e, celtypes.ErrorType)
}

// checkExpr dispatches on node kind, returning (and recording) e's static
// type.
func (c *checker) checkExpr(e ast.Expr) *celtypes.Type {
	switch e.Kind() {
	case ast.LiteralKind:
		return c.checkLiteral(e)
	case ast.IdentKind:
		return c.checkIdent(e)
	case ast.SelectKind:
		return c.checkSelect(e)
	case ast.CallKind:
		return c.checkCall(e)
	case ast.ListKind:
		return c.checkList(e)
	case ast.MapKind:
		return c.checkMap(e)
	case ast.StructKind:
		return c.checkStruct(e)
	case ast.ComprehensionKind:
		return c.checkComprehension(e)
	}
	return c.setType(e, celtypes.DynType)
}

func (c *checker) checkLiteral(e ast.Expr) *celtypes.Type {
	l := e.AsLiteral()
	var t *celtypes.Type
	switch l.Type() {
	case ast.LiteralNull:
		t = celtypes.NullType
	case ast.LiteralBool:
		t = celtypes.BoolType
	case ast.LiteralInt:
		t = celtypes.IntType
	case ast.LiteralUint:
		t = celtypes.UintType
	case ast.LiteralDouble:
		t = celtypes.DoubleType
	case ast.LiteralString:
		t = celtypes.StringType
	case ast.LiteralBytes:
		t = celtypes.BytesType
	default:
		t = celtypes.DynType
	}
	return c.setType(e, t)
}

func (c *checker) checkIdent(e ast.Expr) *celtypes.Type {
	name := e.AsIdent()
	if t, found := c.lookupLocal(name); found {
		c.tree.SetReference(e.ID(), &ast.ReferenceInfo{Name: name})
		return c.setType(e, t)
	}
	if v, found := c.env.LookupVariable(name); found {
		c.tree.SetReference(e.ID(), &ast.ReferenceInfo{Name: v.Name})
		return c.setType(e, v.Type)
	}
	if c.env.Provider() != nil {
		if val, found := c.env.Provider().FindIdent(name); found {
			c.tree.SetReference(e.ID(), &ast.ReferenceInfo{Name: name, Value: val})
			return c.setType(e, val.Type())
		}
	}
	return c.errorf(e, common.KindTypeCheck, "undeclared reference to %q", name)
}

// toQualifiedName renders e as a dotted identifier chain ("a.b.c") if every
// node from the root down to e is an Ident or a (non-presence-test) Select,
// the way a namespaced variable, enum constant, or function name parses
// (spec §4.E step 1's container-prefix resolution generalizes to any dotted
// reference, not just the leftmost identifier).
func toQualifiedName(e ast.Expr) (string, bool) {
	switch e.Kind() {
	case ast.IdentKind:
		return e.AsIdent(), true
	case ast.SelectKind:
		s := e.AsSelect()
		if s.IsTestOnly() {
			return "", false
		}
		if qname, found := toQualifiedName(s.Operand()); found {
			return qname + "." + s.FieldName(), true
		}
	}
	return "", false
}

// lookupQualifiedIdent resolves name as a declared variable or provider
// constant, without consulting local (comprehension-scoped) bindings: a
// dotted chain can never refer to a loop variable.
func (c *checker) lookupQualifiedIdent(name string) (*celtypes.Type, *ast.ReferenceInfo, bool) {
	if v, found := c.env.LookupVariable(name); found {
		return v.Type, &ast.ReferenceInfo{Name: v.Name}, true
	}
	if c.env.Provider() != nil {
		if val, found := c.env.Provider().FindIdent(name); found {
			return val.Type(), &ast.ReferenceInfo{Name: name, Value: val}, true
		}
	}
	return nil, nil, false
}

func (c *checker) checkSelect(e ast.Expr) *celtypes.Type {
	s := e.AsSelect()
	if !s.IsTestOnly() {
		if qname, found := toQualifiedName(e); found {
			if t, ref, ok := c.lookupQualifiedIdent(qname); ok {
				c.tree.SetReference(e.ID(), ref)
				return c.setType(e, t)
			}
		}
	}
	operandType := c.checkExpr(s.Operand())
	if operandType.IsError() {
		return c.setType(e, celtypes.ErrorType)
	}
	if operandType.Kind == celtypes.DynKind || operandType.Kind == celtypes.TypeParamKind {
		return c.setType(e, celtypes.DynType)
	}
	if operandType.Kind == celtypes.MapKind && len(operandType.Parameters) == 2 {
		if celtypes.StringType.IsAssignableFrom(operandType.Parameters[0]) {
			return c.setType(e, operandType.Parameters[1])
		}
	}
	if operandType.Kind != celtypes.StructKind {
		if s.IsTestOnly() {
			return c.setType(e, celtypes.BoolType)
		}
		return c.errorf(e, common.KindTypeCheck, "type %s does not support field selection", operandType)
	}
	if c.env.Provider() == nil {
		return c.errorf(e, common.KindNoSuchField, "no type provider registered, cannot resolve field %q", s.FieldName())
	}
	desc, found := c.env.Provider().FindStructType(operandType.TypeName())
	if !found {
		return c.errorf(e, common.KindTypeCheck, "unknown type %q", operandType.TypeName())
	}
	field, found := desc.FieldType(s.FieldName())
	if !found {
		return c.errorf(e, common.KindNoSuchField, "no such field %q on %s", s.FieldName(), operandType)
	}
	if s.IsTestOnly() {
		if !field.SupportsPresence {
			return c.errorf(e, common.KindTypeCheck, "field %q does not support presence test", s.FieldName())
		}
		return c.setType(e, celtypes.BoolType)
	}
	return c.setType(e, field.Type)
}

// unwrapOptional checks that t is optional(U) when isOptional is set (a
// `?x`/`?key: value` entry must evaluate to an optional, spec §4.D), and
// returns the type the entry actually contributes to the enclosing
// list/map/struct: the wrapped U, or t unchanged when isOptional is false.
func (c *checker) unwrapOptional(loc common.Location, t *celtypes.Type, isOptional bool) *celtypes.Type {
	if !isOptional {
		return t
	}
	if t.Kind == celtypes.DynKind {
		return t
	}
	if t.Kind == celtypes.OptionalKind && len(t.Parameters) == 1 {
		return t.Parameters[0]
	}
	c.errs.ReportError(loc, common.KindTypeCheck, "expected optional value, got %s", t)
	return celtypes.DynType
}

func (c *checker) checkList(e ast.Expr) *celtypes.Type {
	l := e.AsList()
	optIdx := make(map[int]bool, len(l.OptionalIndices()))
	for _, idx := range l.OptionalIndices() {
		optIdx[int(idx)] = true
	}
	var elemType *celtypes.Type
	for i, el := range l.Elements() {
		t := c.unwrapOptional(el.Location(), c.checkExpr(el), optIdx[i])
		if elemType == nil {
			elemType = t
			continue
		}
		elemType = celtypes.MostGeneral(elemType, t)
	}
	if elemType == nil {
		elemType = celtypes.DynType
	}
	return c.setType(e, celtypes.NewListType(elemType))
}

func (c *checker) checkMap(e ast.Expr) *celtypes.Type {
	m := e.AsMap()
	var keyType, valType *celtypes.Type
	for _, ent := range m.Entries() {
		kt := c.checkExpr(ent.Key())
		vt := c.unwrapOptional(ent.Value().Location(), c.checkExpr(ent.Value()), ent.IsOptional())
		if keyType == nil {
			keyType, valType = kt, vt
			continue
		}
		keyType = celtypes.MostGeneral(keyType, kt)
		valType = celtypes.MostGeneral(valType, vt)
	}
	if keyType == nil {
		keyType, valType = celtypes.DynType, celtypes.DynType
	}
	return c.setType(e, celtypes.NewMapType(keyType, valType))
}

func (c *checker) checkStruct(e ast.Expr) *celtypes.Type {
	s := e.AsStruct()
	resultType := celtypes.NewObjectType(s.TypeName())
	var desc types.StructDescriptor
	found := false
	if c.env.Provider() != nil {
		desc, found = c.env.Provider().FindStructType(s.TypeName())
	}
	for _, fl := range s.Fields() {
		valType := c.unwrapOptional(fl.Value().Location(), c.checkExpr(fl.Value()), fl.IsOptional())
		if !found {
			continue
		}
		field, fieldFound := desc.FieldType(fl.Name())
		if !fieldFound {
			c.errs.ReportError(fl.Value().Location(), common.KindNoSuchField, "no such field %q on %s", fl.Name(), s.TypeName())
			continue
		}
		if !field.Type.IsAssignableFrom(valType) {
			c.errs.ReportError(fl.Value().Location(), common.KindTypeCheck, "field %q expects %s, got %s", fl.Name(), field.Type, valType)
		}
	}
	if !found {
		c.errs.ReportError(e.Location(), common.KindTypeCheck, "unknown message type %q", s.TypeName())
	}
	return c.setType(e, resultType)
}

// checkComprehension type-checks the canonical comprehension form every
// standard macro lowers to (spec §4.D): iterVar is bound to iterRange's
// element (or map key) type, accuVar to accuInit's type, for the duration
// of loopCondition/loopStep/result.
func (c *checker) checkComprehension(e ast.Expr) *celtypes.Type {
	comp := e.AsComprehension()
	rangeType := c.checkExpr(comp.IterRange())
	var iterType *celtypes.Type
	switch rangeType.Kind {
	case celtypes.ListKind:
		iterType = rangeType.Parameters[0]
	case celtypes.MapKind:
		iterType = rangeType.Parameters[0]
	case celtypes.DynKind:
		iterType = celtypes.DynType
	default:
		c.errs.ReportError(comp.IterRange().Location(), common.KindTypeCheck, "comprehension range must be a list or map, got %s", rangeType)
		iterType = celtypes.DynType
	}
	accuInitType := c.checkExpr(comp.AccuInit())

	c.pushScope()
	c.declareLocal(comp.IterVar(), iterType)
	c.declareLocal(comp.AccuVar(), accuInitType)

	condType := c.checkExpr(comp.LoopCondition())
	if !celtypes.BoolType.IsAssignableFrom(condType) && condType.Kind != celtypes.DynKind {
		c.errs.ReportError(comp.LoopCondition().Location(), common.KindTypeCheck, "loop condition must be bool, got %s", condType)
	}
	stepType := c.checkExpr(comp.LoopStep())
	if !accuInitType.IsAssignableFrom(stepType) && accuInitType.Kind != celtypes.DynKind {
		c.errs.ReportError(comp.LoopStep().Location(), common.KindTypeCheck, "loop step type %s is not assignable to accumulator type %s", stepType, accuInitType)
	}
	resultType := c.checkExpr(comp.Result())
	c.popScope()
	return c.setType(e, resultType)
}

// checkCall resolves the function name (first as a qualified name built
// from a receiver chain such as `a.b.f()`, then as a plain name with the
// receiver's type prepended to the argument types) and hands the overload
// choice to resolveOverload. The logical operators are resolved like any
// other declared function.
func (c *checker) checkCall(e ast.Expr) *celtypes.Type {
	call := e.AsCall()
	argTypes := make([]*celtypes.Type, len(call.Args()))
	for i, a := range call.Args() {
		argTypes[i] = c.checkExpr(a)
	}

	if call.Target() != nil {
		if qname, found := toQualifiedName(call.Target()); found {
			if fn, found := c.env.LookupFunction(qname + "." + call.FunctionName()); found {
				return c.resolveOverload(e, fn, argTypes, false)
			}
		}
	}

	isMember := call.Target() != nil
	if isMember {
		targetType := c.checkExpr(call.Target())
		argTypes = append([]*celtypes.Type{targetType}, argTypes...)
	}

	fn, found := c.env.LookupFunction(call.FunctionName())
	if !found {
		return c.errorf(e, common.KindNoMatchingOverload, "no such function: %s", call.FunctionName())
	}
	return c.resolveOverload(e, fn, argTypes, isMember)
}

// resolveOverload enumerates fn's overloads compatible with isMember,
// unifying each against argTypes (spec §4.E step 3):
//   - exactly one consistent overload: its substituted result type wins.
//   - more than one consistent overload with every argument typed dyn:
//     dispatch is deferred to runtime and the call's static type widens to
//     dyn, the teacher's resolveOverload narrowing (CEL-Go checker.go).
//   - more than one consistent overload otherwise: the call is genuinely
//     ambiguous at compile time and fails with kind TypeCheck.
func (c *checker) resolveOverload(e ast.Expr, fn *decls.FunctionDecl, argTypes []*celtypes.Type, isMember bool) *celtypes.Type {
	allArgsDyn := true
	for _, t := range argTypes {
		if t.Kind != celtypes.DynKind {
			allArgsDyn = false
			break
		}
	}
	sig := func() string {
		parts := make([]string, len(argTypes))
		for i, t := range argTypes {
			parts[i] = t.String()
		}
		return strings.Join(parts, ", ")
	}

	var matched []string
	var resultType *celtypes.Type
	for _, o := range fn.Overloads {
		if o.MemberFunction != isMember {
			continue
		}
		if len(o.ArgTypes) != len(argTypes) {
			continue
		}
		bindings := celtypes.NewSubstitution()
		ok := true
		for i, want := range o.ArgTypes {
			if !celtypes.Unify(bindings, want, argTypes[i]) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		matched = append(matched, o.ID)
		substituted := celtypes.Substitute(bindings, o.ResultType)
		switch {
		case resultType == nil:
			resultType = substituted
		case allArgsDyn:
			resultType = celtypes.DynType
		default:
			return c.errorf(e, common.KindTypeCheck, "ambiguous call to %s(%s): more than one overload matches", fn.Name, sig())
		}
	}
	if len(matched) == 0 {
		return c.errorf(e, common.KindNoMatchingOverload, "no matching overload for %s(%s)", fn.Name, sig())
	}
	c.tree.SetReference(e.ID(), &ast.ReferenceInfo{Name: fn.Name, OverloadIDs: matched})
	return c.setType(e, resultType)
}
