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

package stdlib

import (
	"celcore/common"
	"celcore/common/decls"
	"celcore/common/types"
	"celcore/operators"
	celtypes "celcore/types"
)

// Optional returns the library that backs CEL's optional-value surface
// syntax and functions (SPEC_FULL §12): `.?field`/`[?index]` short-circuit
// selection, `optional.of`/`optional.none`/`optional.ofNonZeroValue`
// construction, and the `.hasValue()`/`.value()`/`.orValue(default)`/`.or(alt)`
// member functions on the resulting optional(T) value. Off by default, the
// same way Heterogeneous and TimestampEpoch are: the `.?`/`[?]` parser
// productions themselves are also gated, so enabling this library without
// also enabling the parser's optional syntax would leave half the surface
// unreachable (cel.EnableOptionalTypes turns on both together).
func Optional() *Library {
	selectOptionalField := func(a []types.Value) types.Value {
		field := string(a[1].(types.String))
		switch v := a[0].(type) {
		case *types.Map:
			if val, found := v.Find(types.String(field)); found {
				return types.OptionalOf(val)
			}
			return types.OptionalNone(celtypes.DynType)
		case *types.Message:
			hv, ok := v.HasField(field)
			if !ok {
				return hv
			}
			if b, _ := hv.(types.Bool); bool(b) {
				return types.OptionalOf(v.GetField(field))
			}
			return types.OptionalNone(celtypes.DynType)
		}
		return types.NewErr(common.KindTypeCheck, "type %s does not support optional field selection", a[0].Type())
	}
	listIndexOptional := func(a []types.Value) types.Value {
		l := a[0].(*types.List)
		idx := int64(a[1].(types.Int))
		if idx < 0 || idx >= int64(l.Size()) {
			return types.OptionalNone(l.Type().Parameters[0])
		}
		return types.OptionalOf(l.Get(idx))
	}
	mapIndexOptional := func(a []types.Value) types.Value {
		m := a[0].(*types.Map)
		if val, found := m.Find(a[1]); found {
			return types.OptionalOf(val)
		}
		return types.OptionalNone(m.Type().Parameters[1])
	}

	return &Library{
		Name: "optional",
		Functions: []*Function{
			fn(decls.NewFunction(operators.OptSelect,
				decls.NewOverload("select_optional_field", celtypes.NewOptionalType(celtypes.DynType), celtypes.DynType, celtypes.StringType),
			), map[string]Impl{"select_optional_field": selectOptionalField}),
			fn(decls.NewFunction(operators.OptIndex,
				decls.NewOverload("list_index_optional", celtypes.NewOptionalType(celtypes.NewTypeParamType("T")),
					celtypes.NewListType(celtypes.NewTypeParamType("T")), celtypes.IntType).WithTypeParams("T"),
				decls.NewOverload("map_index_optional", celtypes.NewOptionalType(celtypes.NewTypeParamType("V")),
					celtypes.NewMapType(celtypes.DynType, celtypes.NewTypeParamType("V")), celtypes.DynType).WithTypeParams("V"),
			), map[string]Impl{
				"list_index_optional": listIndexOptional,
				"map_index_optional":  mapIndexOptional,
			}),
			fn(decls.NewFunction("optional.of",
				decls.NewOverload("optional_of", celtypes.NewOptionalType(celtypes.NewTypeParamType("T")), celtypes.NewTypeParamType("T")).WithTypeParams("T"),
			), map[string]Impl{"optional_of": func(a []types.Value) types.Value { return types.OptionalOf(a[0]) }}),
			fn(decls.NewFunction("optional.ofNonZeroValue",
				decls.NewOverload("optional_ofNonZeroValue", celtypes.NewOptionalType(celtypes.NewTypeParamType("T")), celtypes.NewTypeParamType("T")).WithTypeParams("T"),
			), map[string]Impl{"optional_ofNonZeroValue": func(a []types.Value) types.Value { return types.OptionalOfNonZeroValue(a[0]) }}),
			fn(decls.NewFunction("optional.none",
				decls.NewOverload("optional_none", celtypes.NewOptionalType(celtypes.DynType)),
			), map[string]Impl{"optional_none": func(a []types.Value) types.Value { return types.OptionalNone(celtypes.DynType) }}),
			fn(decls.NewFunction("hasValue",
				decls.NewMemberOverload("optional_hasValue", celtypes.BoolType, celtypes.NewOptionalType(celtypes.DynType)),
			), map[string]Impl{"optional_hasValue": func(a []types.Value) types.Value { return a[0].(*types.Optional).HasValue() }}),
			fn(decls.NewFunction("value",
				decls.NewMemberOverload("optional_value", celtypes.DynType, celtypes.NewOptionalType(celtypes.DynType)),
			), map[string]Impl{"optional_value": func(a []types.Value) types.Value { return a[0].(*types.Optional).GetValue() }}),
			fn(decls.NewFunction("orValue",
				decls.NewMemberOverload("optional_orValue", celtypes.DynType, celtypes.NewOptionalType(celtypes.DynType), celtypes.DynType),
			), map[string]Impl{"optional_orValue": func(a []types.Value) types.Value { return a[0].(*types.Optional).OrValue(a[1]) }}),
			fn(decls.NewFunction("or",
				decls.NewMemberOverload("optional_or", celtypes.NewOptionalType(celtypes.DynType), celtypes.NewOptionalType(celtypes.DynType), celtypes.NewOptionalType(celtypes.DynType)),
			), map[string]Impl{"optional_or": func(a []types.Value) types.Value { return a[0].(*types.Optional).OrOptional(a[1].(*types.Optional)) }}),
		},
	}
}
