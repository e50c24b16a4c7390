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

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"celcore/common"
)

// typeStringer is satisfied by *celtypes.Type without this package
// importing celtypes (which would cycle back through common/types).
type typeStringer interface {
	String() string
}

// Marshal encodes a checked or unchecked AST into a stable binary form (spec
// §6's checked-AST serialization), so a plan can be cached or shipped across
// a process boundary and replanned without reparsing. It uses structpb
// rather than a bespoke schema: the tree's shape already varies per node
// kind, which is exactly the semi-structured, schema-less data
// structpb.Struct exists to carry.
func Marshal(tree *AST) ([]byte, error) {
	root := &structpb.Struct{Fields: map[string]*structpb.Value{
		"description": structpb.NewStringValue(tree.Source().Description()),
		"content":     structpb.NewStringValue(tree.Source().Content()),
		"nextId":      structpb.NewNumberValue(float64(tree.NextID())),
		"expr":        exprToValue(tree.Expr()),
		"types":       typeMapToValue(tree.typeMap),
		"references":  refMapToValue(tree.refMap),
	}}
	return proto.Marshal(root)
}

// Unmarshal decodes data produced by Marshal back into an AST carrying the
// same node IDs and type/reference side tables as the original. Types come
// back as their String() form rather than the original *types.Type value,
// since reconstructing a generic celtypes.Type losslessly from a display
// string is this package's one accepted round-trip gap (see DESIGN.md); a
// restored AST is meant for planning, not re-checking, so its Source
// exposes content but not a line/column table.
func Unmarshal(data []byte) (*AST, error) {
	root := &structpb.Struct{}
	if err := proto.Unmarshal(data, root); err != nil {
		return nil, fmt.Errorf("ast: unmarshal: %w", err)
	}
	fields := root.GetFields()
	expr, err := valueToExpr(fields["expr"])
	if err != nil {
		return nil, err
	}
	src := &serializedSource{
		description: fields["description"].GetStringValue(),
		content:     fields["content"].GetStringValue(),
	}
	tree := NewAST(expr, src, int64(fields["nextId"].GetNumberValue()))
	for idStr, v := range fields["types"].GetStructValue().GetFields() {
		var id int64
		fmt.Sscan(idStr, &id)
		tree.typeMap[id] = v.GetStringValue()
	}
	for idStr, v := range fields["references"].GetStructValue().GetFields() {
		var id int64
		fmt.Sscan(idStr, &id)
		refFields := v.GetStructValue().GetFields()
		ref := &ReferenceInfo{Name: refFields["name"].GetStringValue()}
		for _, o := range refFields["overloadIds"].GetListValue().GetValues() {
			ref.OverloadIDs = append(ref.OverloadIDs, o.GetStringValue())
		}
		tree.refMap[id] = ref
	}
	return tree, nil
}

func typeMapToValue(typeMap map[int64]any) *structpb.Value {
	fields := make(map[string]*structpb.Value, len(typeMap))
	for id, t := range typeMap {
		s := fmt.Sprint(t)
		if ts, ok := t.(typeStringer); ok {
			s = ts.String()
		}
		fields[fmt.Sprint(id)] = structpb.NewStringValue(s)
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: fields})
}

func refMapToValue(refMap map[int64]*ReferenceInfo) *structpb.Value {
	fields := make(map[string]*structpb.Value, len(refMap))
	for id, ref := range refMap {
		overloads := make([]*structpb.Value, len(ref.OverloadIDs))
		for i, o := range ref.OverloadIDs {
			overloads[i] = structpb.NewStringValue(o)
		}
		fields[fmt.Sprint(id)] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"name":        structpb.NewStringValue(ref.Name),
			"overloadIds": structpb.NewListValue(&structpb.ListValue{Values: overloads}),
		}})
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: fields})
}

func exprToValue(e Expr) *structpb.Value {
	if e == nil {
		return structpb.NewNullValue()
	}
	fields := map[string]*structpb.Value{
		"id":   structpb.NewNumberValue(float64(e.ID())),
		"kind": structpb.NewNumberValue(float64(e.Kind())),
	}
	switch e.Kind() {
	case LiteralKind:
		fields["literal"] = literalToValue(e.AsLiteral())
	case IdentKind:
		fields["ident"] = structpb.NewStringValue(e.AsIdent())
	case SelectKind:
		s := e.AsSelect()
		fields["operand"] = exprToValue(s.Operand())
		fields["field"] = structpb.NewStringValue(s.FieldName())
		fields["testOnly"] = structpb.NewBoolValue(s.IsTestOnly())
	case CallKind:
		c := e.AsCall()
		args := make([]*structpb.Value, len(c.Args()))
		for i, a := range c.Args() {
			args[i] = exprToValue(a)
		}
		fields["target"] = exprToValue(c.Target())
		fields["function"] = structpb.NewStringValue(c.FunctionName())
		fields["args"] = structpb.NewListValue(&structpb.ListValue{Values: args})
	case ListKind:
		l := e.AsList()
		elems := make([]*structpb.Value, len(l.Elements()))
		for i, el := range l.Elements() {
			elems[i] = exprToValue(el)
		}
		opts := make([]*structpb.Value, len(l.OptionalIndices()))
		for i, idx := range l.OptionalIndices() {
			opts[i] = structpb.NewNumberValue(float64(idx))
		}
		fields["elements"] = structpb.NewListValue(&structpb.ListValue{Values: elems})
		fields["optionalIndices"] = structpb.NewListValue(&structpb.ListValue{Values: opts})
	case MapKind:
		entries := make([]*structpb.Value, len(e.AsMap().Entries()))
		for i, en := range e.AsMap().Entries() {
			entries[i] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
				"id":       structpb.NewNumberValue(float64(en.ID())),
				"key":      exprToValue(en.Key()),
				"value":    exprToValue(en.Value()),
				"optional": structpb.NewBoolValue(en.IsOptional()),
			}})
		}
		fields["entries"] = structpb.NewListValue(&structpb.ListValue{Values: entries})
	case StructKind:
		s := e.AsStruct()
		fs := make([]*structpb.Value, len(s.Fields()))
		for i, f := range s.Fields() {
			fs[i] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
				"id":       structpb.NewNumberValue(float64(f.ID())),
				"name":     structpb.NewStringValue(f.Name()),
				"value":    exprToValue(f.Value()),
				"optional": structpb.NewBoolValue(f.IsOptional()),
			}})
		}
		fields["typeName"] = structpb.NewStringValue(s.TypeName())
		fields["fields"] = structpb.NewListValue(&structpb.ListValue{Values: fs})
	case ComprehensionKind:
		c := e.AsComprehension()
		fields["iterVar"] = structpb.NewStringValue(c.IterVar())
		fields["iterVar2"] = structpb.NewStringValue(c.IterVar2())
		fields["iterRange"] = exprToValue(c.IterRange())
		fields["accuVar"] = structpb.NewStringValue(c.AccuVar())
		fields["accuInit"] = exprToValue(c.AccuInit())
		fields["loopCondition"] = exprToValue(c.LoopCondition())
		fields["loopStep"] = exprToValue(c.LoopStep())
		fields["result"] = exprToValue(c.Result())
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: fields})
}

func literalToValue(l Literal) *structpb.Value {
	fields := map[string]*structpb.Value{"type": structpb.NewNumberValue(float64(l.Type()))}
	switch l.Type() {
	case LiteralBool:
		fields["value"] = structpb.NewBoolValue(l.BoolValue())
	case LiteralInt:
		fields["value"] = structpb.NewStringValue(fmt.Sprint(l.IntValue()))
	case LiteralUint:
		fields["value"] = structpb.NewStringValue(fmt.Sprint(l.UintValue()))
	case LiteralDouble:
		fields["value"] = structpb.NewNumberValue(l.DoubleValue())
	case LiteralString:
		fields["value"] = structpb.NewStringValue(l.StringValue())
	case LiteralBytes:
		fields["value"] = structpb.NewStringValue(string(l.BytesValue()))
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: fields})
}

// valueToExpr rebuilds an exprImpl directly (rather than through Factory)
// because every node must keep the ID it was serialized with, and Factory
// only issues fresh, monotonically increasing ones.
func valueToExpr(v *structpb.Value) (Expr, error) {
	s := v.GetStructValue()
	if s == nil {
		return nil, nil
	}
	id := int64(s.Fields["id"].GetNumberValue())
	kind := Kind(s.Fields["kind"].GetNumberValue())
	e := &exprImpl{id: id, kind: kind, loc: common.NoLocation}
	switch kind {
	case LiteralKind:
		e.literal = valueToLiteral(s.Fields["literal"])
	case IdentKind:
		e.ident = s.Fields["ident"].GetStringValue()
	case SelectKind:
		operand, err := valueToExpr(s.Fields["operand"])
		if err != nil {
			return nil, err
		}
		e.sel = Select{operand: operand, field: s.Fields["field"].GetStringValue(), testOnly: s.Fields["testOnly"].GetBoolValue()}
	case CallKind:
		target, err := valueToExpr(s.Fields["target"])
		if err != nil {
			return nil, err
		}
		argVals := s.Fields["args"].GetListValue().GetValues()
		args := make([]Expr, len(argVals))
		for i, av := range argVals {
			a, err := valueToExpr(av)
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		e.call = Call{target: target, function: s.Fields["function"].GetStringValue(), args: args}
	case ListKind:
		elemVals := s.Fields["elements"].GetListValue().GetValues()
		elems := make([]Expr, len(elemVals))
		for i, ev := range elemVals {
			el, err := valueToExpr(ev)
			if err != nil {
				return nil, err
			}
			elems[i] = el
		}
		optVals := s.Fields["optionalIndices"].GetListValue().GetValues()
		opts := make([]int32, len(optVals))
		for i, ov := range optVals {
			opts[i] = int32(ov.GetNumberValue())
		}
		e.list = CreateList{elements: elems, optionalIndices: opts}
	case MapKind:
		entryVals := s.Fields["entries"].GetListValue().GetValues()
		entries := make([]MapEntry, len(entryVals))
		for i, ev := range entryVals {
			ef := ev.GetStructValue().GetFields()
			key, err := valueToExpr(ef["key"])
			if err != nil {
				return nil, err
			}
			val, err := valueToExpr(ef["value"])
			if err != nil {
				return nil, err
			}
			entries[i] = MapEntry{id: int64(ef["id"].GetNumberValue()), key: key, value: val, optional: ef["optional"].GetBoolValue()}
		}
		e.m = CreateMap{entries: entries}
	case StructKind:
		fieldVals := s.Fields["fields"].GetListValue().GetValues()
		sfields := make([]StructField, len(fieldVals))
		for i, fv := range fieldVals {
			ff := fv.GetStructValue().GetFields()
			val, err := valueToExpr(ff["value"])
			if err != nil {
				return nil, err
			}
			sfields[i] = StructField{id: int64(ff["id"].GetNumberValue()), name: ff["name"].GetStringValue(), value: val, optional: ff["optional"].GetBoolValue()}
		}
		e.strct = CreateStruct{typeName: s.Fields["typeName"].GetStringValue(), fields: sfields}
	case ComprehensionKind:
		iterRange, err := valueToExpr(s.Fields["iterRange"])
		if err != nil {
			return nil, err
		}
		accuInit, err := valueToExpr(s.Fields["accuInit"])
		if err != nil {
			return nil, err
		}
		loopCond, err := valueToExpr(s.Fields["loopCondition"])
		if err != nil {
			return nil, err
		}
		loopStep, err := valueToExpr(s.Fields["loopStep"])
		if err != nil {
			return nil, err
		}
		result, err := valueToExpr(s.Fields["result"])
		if err != nil {
			return nil, err
		}
		e.compre = Comprehension{
			iterVar:       s.Fields["iterVar"].GetStringValue(),
			iterVar2:      s.Fields["iterVar2"].GetStringValue(),
			iterRange:     iterRange,
			accuVar:       s.Fields["accuVar"].GetStringValue(),
			accuInit:      accuInit,
			loopCondition: loopCond,
			loopStep:      loopStep,
			result:        result,
		}
	default:
		return nil, fmt.Errorf("ast: unknown node kind %d", kind)
	}
	return e, nil
}

func valueToLiteral(v *structpb.Value) Literal {
	s := v.GetStructValue()
	typ := LiteralType(s.Fields["type"].GetNumberValue())
	val := s.Fields["value"]
	switch typ {
	case LiteralBool:
		return BoolLiteral(val.GetBoolValue())
	case LiteralInt:
		var n int64
		fmt.Sscan(val.GetStringValue(), &n)
		return IntLiteral(n)
	case LiteralUint:
		var n uint64
		fmt.Sscan(val.GetStringValue(), &n)
		return UintLiteral(n)
	case LiteralDouble:
		return DoubleLiteral(val.GetNumberValue())
	case LiteralString:
		return StringLiteral(val.GetStringValue())
	case LiteralBytes:
		return BytesLiteral([]byte(val.GetStringValue()))
	}
	return NullLiteral()
}

// serializedSource backs an AST restored by Unmarshal: it carries the
// original content and description but no line/column table, since a
// restored tree is meant for planning, not re-checking or diagnostics.
type serializedSource struct {
	description string
	content     string
}

func (s *serializedSource) Content() string     { return s.content }
func (s *serializedSource) Description() string { return s.description }
func (s *serializedSource) OffsetLocation(int32) (common.Location, bool) {
	return common.NoLocation, false
}
func (s *serializedSource) LocationOffset(common.Location) (int32, bool) { return 0, false }
func (s *serializedSource) Snippet(int) (string, bool)                  { return "", false }
func (s *serializedSource) NewLocation(int32) common.Location            { return common.NoLocation }
