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

// Package stdlib declares and implements CEL's standard library: the
// arithmetic, comparison, string, collection, time, and conversion
// functions every Env starts out with (spec §4.F/§4.C). Each function
// couples a decls.FunctionDecl the checker resolves overloads against with
// an Impl the interpreter dispatches to at evaluation time.
package stdlib

import (
	"fmt"

	"celcore/common"
	"celcore/common/decls"
	"celcore/common/types"
	"celcore/operators"
	celtypes "celcore/types"
)

// Impl evaluates one overload given its already-evaluated arguments (the
// receiver, for a member overload, is args[0]).
type Impl func(args []types.Value) types.Value

// Function couples a checker-facing declaration with its overloads'
// runtime implementations, keyed by overload ID.
type Function struct {
	Decl  *decls.FunctionDecl
	Impls map[string]Impl
}

// FindImpl looks up the implementation for overloadID.
func (f *Function) FindImpl(overloadID string) (Impl, bool) {
	impl, found := f.Impls[overloadID]
	return impl, found
}

// Library is a named, self-contained set of function and variable
// declarations that can be layered onto an Env (spec §12 "macro/library
// extension registration").
type Library struct {
	Name      string
	Functions []*Function
	Vars      []*decls.VariableDecl
}

func fn(decl *decls.FunctionDecl, impls map[string]Impl) *Function {
	return &Function{Decl: decl, Impls: impls}
}

// Standard returns CEL's always-available standard library: arithmetic,
// comparison, logical, string, collection, and time operations plus the
// primitive type-conversion functions (spec §4.F).
func Standard() *Library {
	lib := &Library{Name: "standard"}
	lib.Functions = append(lib.Functions,
		arithmeticFunctions()...)
	lib.Functions = append(lib.Functions,
		comparisonFunctions()...)
	lib.Functions = append(lib.Functions,
		logicalFunctions()...)
	lib.Functions = append(lib.Functions,
		stringFunctions()...)
	lib.Functions = append(lib.Functions,
		collectionFunctions()...)
	lib.Functions = append(lib.Functions,
		timeFunctions()...)
	lib.Functions = append(lib.Functions,
		conversionFunctions()...)
	return lib
}

func arithmeticFunctions() []*Function {
	numBinary := func(name, id string, t *celtypes.Type, impl Impl) *Function {
		return fn(decls.NewFunction(name, decls.NewOverload(id, t, t, t)),
			map[string]Impl{id: impl})
	}
	return []*Function{
		fn(decls.NewFunction(operators.Add,
			decls.NewOverload("add_int64", celtypes.IntType, celtypes.IntType, celtypes.IntType),
			decls.NewOverload("add_uint64", celtypes.UintType, celtypes.UintType, celtypes.UintType),
			decls.NewOverload("add_double", celtypes.DoubleType, celtypes.DoubleType, celtypes.DoubleType),
			decls.NewOverload("add_string", celtypes.StringType, celtypes.StringType, celtypes.StringType),
			decls.NewOverload("add_bytes", celtypes.BytesType, celtypes.BytesType, celtypes.BytesType),
			decls.NewOverload("add_list", celtypes.NewListType(celtypes.NewTypeParamType("T")),
				celtypes.NewListType(celtypes.NewTypeParamType("T")), celtypes.NewListType(celtypes.NewTypeParamType("T"))).WithTypeParams("T"),
		), map[string]Impl{
			"add_int64":   func(a []types.Value) types.Value { return types.AddInt(a[0].(types.Int), a[1].(types.Int)) },
			"add_uint64":  func(a []types.Value) types.Value { return types.AddUint(a[0].(types.Uint), a[1].(types.Uint)) },
			"add_double":  func(a []types.Value) types.Value { return types.AddDouble(a[0].(types.Double), a[1].(types.Double)) },
			"add_string":  func(a []types.Value) types.Value { return a[0].(types.String).Add(a[1].(types.String)) },
			"add_bytes":   func(a []types.Value) types.Value { return a[0].(types.Bytes).Add(a[1].(types.Bytes)) },
			"add_list":    func(a []types.Value) types.Value { return a[0].(*types.List).Add(a[1].(*types.List)) },
		}),
		numBinary(operators.Subtract, "subtract_int64", celtypes.IntType, func(a []types.Value) types.Value {
			return types.SubInt(a[0].(types.Int), a[1].(types.Int))
		}),
		numBinary(operators.Multiply, "multiply_int64", celtypes.IntType, func(a []types.Value) types.Value {
			return types.MulInt(a[0].(types.Int), a[1].(types.Int))
		}),
		numBinary(operators.Divide, "divide_int64", celtypes.IntType, func(a []types.Value) types.Value {
			return types.DivInt(a[0].(types.Int), a[1].(types.Int))
		}),
		numBinary(operators.Modulo, "modulo_int64", celtypes.IntType, func(a []types.Value) types.Value {
			return types.ModInt(a[0].(types.Int), a[1].(types.Int))
		}),
		fn(decls.NewFunction(operators.Subtract,
			decls.NewOverload("subtract_uint64", celtypes.UintType, celtypes.UintType, celtypes.UintType),
			decls.NewOverload("subtract_double", celtypes.DoubleType, celtypes.DoubleType, celtypes.DoubleType),
		), map[string]Impl{
			"subtract_uint64": func(a []types.Value) types.Value { return types.SubUint(a[0].(types.Uint), a[1].(types.Uint)) },
			"subtract_double": func(a []types.Value) types.Value { return types.SubDouble(a[0].(types.Double), a[1].(types.Double)) },
		}),
		fn(decls.NewFunction(operators.Multiply,
			decls.NewOverload("multiply_uint64", celtypes.UintType, celtypes.UintType, celtypes.UintType),
			decls.NewOverload("multiply_double", celtypes.DoubleType, celtypes.DoubleType, celtypes.DoubleType),
		), map[string]Impl{
			"multiply_uint64": func(a []types.Value) types.Value { return types.MulUint(a[0].(types.Uint), a[1].(types.Uint)) },
			"multiply_double": func(a []types.Value) types.Value { return types.MulDouble(a[0].(types.Double), a[1].(types.Double)) },
		}),
		fn(decls.NewFunction(operators.Divide,
			decls.NewOverload("divide_uint64", celtypes.UintType, celtypes.UintType, celtypes.UintType),
			decls.NewOverload("divide_double", celtypes.DoubleType, celtypes.DoubleType, celtypes.DoubleType),
		), map[string]Impl{
			"divide_uint64": func(a []types.Value) types.Value { return types.DivUint(a[0].(types.Uint), a[1].(types.Uint)) },
			"divide_double": func(a []types.Value) types.Value { return types.DivDouble(a[0].(types.Double), a[1].(types.Double)) },
		}),
		fn(decls.NewFunction(operators.Modulo,
			decls.NewOverload("modulo_uint64", celtypes.UintType, celtypes.UintType, celtypes.UintType),
		), map[string]Impl{
			"modulo_uint64": func(a []types.Value) types.Value { return types.ModUint(a[0].(types.Uint), a[1].(types.Uint)) },
		}),
		fn(decls.NewFunction(operators.Negate,
			decls.NewOverload("negate_int64", celtypes.IntType, celtypes.IntType),
			decls.NewOverload("negate_double", celtypes.DoubleType, celtypes.DoubleType),
		), map[string]Impl{
			"negate_int64":  func(a []types.Value) types.Value { return types.NegateInt(a[0].(types.Int)) },
			"negate_double": func(a []types.Value) types.Value { return types.NegateDouble(a[0].(types.Double)) },
		}),
	}
}

// compareToBool turns an ordering result (negative, zero or positive) into
// the Bool that want reports for it; with nanSafe set, the NaN ordering
// sentinel yields false.
func compareToBool(order int, nanSafe bool, want func(int) bool) types.Value {
	if nanSafe && types.IsNaNCompare(order) {
		return types.Bool(false)
	}
	return types.Bool(want(order))
}

func comparisonFunctions() []*Function {
	mk := func(op, id string, t *celtypes.Type, want func(int) bool, het bool) *Function {
		return fn(decls.NewFunction(op, decls.NewOverload(id, celtypes.BoolType, t, t)), map[string]Impl{
			id: func(a []types.Value) types.Value {
				order, errv := types.CompareNumeric(a[0], a[1], het)
				if errv != nil {
					return errv
				}
				return compareToBool(order, true, want)
			},
		})
	}
	lt := func(o int) bool { return o < 0 }
	le := func(o int) bool { return o <= 0 }
	gt := func(o int) bool { return o > 0 }
	ge := func(o int) bool { return o >= 0 }

	fns := []*Function{}
	numSuffix := map[*celtypes.Type]string{celtypes.IntType: "int64", celtypes.UintType: "uint64", celtypes.DoubleType: "double"}
	for _, numT := range []*celtypes.Type{celtypes.IntType, celtypes.UintType, celtypes.DoubleType} {
		suffix := numSuffix[numT]
		fns = append(fns,
			mk(operators.Less, "less_"+suffix, numT, lt, false),
			mk(operators.LessEquals, "less_equals_"+suffix, numT, le, false),
			mk(operators.Greater, "greater_"+suffix, numT, gt, false),
			mk(operators.GreaterEquals, "greater_equals_"+suffix, numT, ge, false),
		)
	}
	strOrd := func(op, id string, want func(int) bool) *Function {
		return fn(decls.NewFunction(op, decls.NewOverload(id, celtypes.BoolType, celtypes.StringType, celtypes.StringType)), map[string]Impl{
			id: func(a []types.Value) types.Value {
				return types.Bool(want(a[0].(types.String).Compare(a[1].(types.String))))
			},
		})
	}
	fns = append(fns,
		strOrd(operators.Less, "less_string", lt),
		strOrd(operators.LessEquals, "less_equals_string", le),
		strOrd(operators.Greater, "greater_string", gt),
		strOrd(operators.GreaterEquals, "greater_equals_string", ge),
	)
	bytesOrd := func(op, id string, want func(int) bool) *Function {
		return fn(decls.NewFunction(op, decls.NewOverload(id, celtypes.BoolType, celtypes.BytesType, celtypes.BytesType)), map[string]Impl{
			id: func(a []types.Value) types.Value {
				return types.Bool(want(a[0].(types.Bytes).Compare(a[1].(types.Bytes))))
			},
		})
	}
	fns = append(fns,
		bytesOrd(operators.Less, "less_bytes", lt),
		bytesOrd(operators.LessEquals, "less_equals_bytes", le),
		bytesOrd(operators.Greater, "greater_bytes", gt),
		bytesOrd(operators.GreaterEquals, "greater_equals_bytes", ge),
	)
	timeOrd := func(op, id string, want func(int) bool) *Function {
		return fn(decls.NewFunction(op, decls.NewOverload(id, celtypes.BoolType, celtypes.TimestampType, celtypes.TimestampType)), map[string]Impl{
			id: func(a []types.Value) types.Value {
				return types.Bool(want(a[0].(types.Timestamp).Compare(a[1].(types.Timestamp))))
			},
		})
	}
	fns = append(fns,
		timeOrd(operators.Less, "less_timestamp", lt),
		timeOrd(operators.LessEquals, "less_equals_timestamp", le),
		timeOrd(operators.Greater, "greater_timestamp", gt),
		timeOrd(operators.GreaterEquals, "greater_equals_timestamp", ge),
	)
	durOrd := func(op, id string, want func(int) bool) *Function {
		return fn(decls.NewFunction(op, decls.NewOverload(id, celtypes.BoolType, celtypes.DurationType, celtypes.DurationType)), map[string]Impl{
			id: func(a []types.Value) types.Value {
				return types.Bool(want(a[0].(types.Duration).Compare(a[1].(types.Duration))))
			},
		})
	}
	fns = append(fns,
		durOrd(operators.Less, "less_duration", lt),
		durOrd(operators.LessEquals, "less_equals_duration", le),
		durOrd(operators.Greater, "greater_duration", gt),
		durOrd(operators.GreaterEquals, "greater_equals_duration", ge),
	)

	eq := decls.NewFunction(operators.Equals,
		decls.NewOverload("equals", celtypes.BoolType, celtypes.NewTypeParamType("A"), celtypes.NewTypeParamType("A")).WithTypeParams("A"))
	neq := decls.NewFunction(operators.NotEquals,
		decls.NewOverload("not_equals", celtypes.BoolType, celtypes.NewTypeParamType("A"), celtypes.NewTypeParamType("A")).WithTypeParams("A"))
	fns = append(fns,
		fn(eq, map[string]Impl{"equals": func(a []types.Value) types.Value { return a[0].Equal(a[1]) }}),
		fn(neq, map[string]Impl{"not_equals": func(a []types.Value) types.Value {
			eq := a[0].Equal(a[1])
			if b, ok := eq.(types.Bool); ok {
				return !b
			}
			return eq
		}}),
	)
	return fns
}

// logicalFunctions declares && || ! for the checker; the interpreter
// short-circuits these itself rather than calling through Impl (spec
// §4.G), so their Impls exist only to serve direct, non-short-circuited
// calls (e.g. from a user-supplied dispatcher override).
func logicalFunctions() []*Function {
	return []*Function{
		fn(decls.NewFunction(operators.LogicalAnd, decls.NewOverload("logical_and", celtypes.BoolType, celtypes.BoolType, celtypes.BoolType)),
			map[string]Impl{"logical_and": func(a []types.Value) types.Value { return a[0].(types.Bool) && a[1].(types.Bool) }}),
		fn(decls.NewFunction(operators.LogicalOr, decls.NewOverload("logical_or", celtypes.BoolType, celtypes.BoolType, celtypes.BoolType)),
			map[string]Impl{"logical_or": func(a []types.Value) types.Value { return a[0].(types.Bool) || a[1].(types.Bool) }}),
		fn(decls.NewFunction(operators.LogicalNot, decls.NewOverload("logical_not", celtypes.BoolType, celtypes.BoolType)),
			map[string]Impl{"logical_not": func(a []types.Value) types.Value { return a[0].(types.Bool).Negate() }}),
		fn(decls.NewFunction(operators.Conditional,
			decls.NewOverload("conditional", celtypes.NewTypeParamType("A"), celtypes.BoolType, celtypes.NewTypeParamType("A"), celtypes.NewTypeParamType("A")).WithTypeParams("A")),
			map[string]Impl{"conditional": func(a []types.Value) types.Value {
				if bool(a[0].(types.Bool)) {
					return a[1]
				}
				return a[2]
			}}),
	}
}

func stringFunctions() []*Function {
	sizeFn := decls.NewFunction("size",
		decls.NewOverload("size_string", celtypes.IntType, celtypes.StringType),
		decls.NewOverload("size_bytes", celtypes.IntType, celtypes.BytesType),
		decls.NewOverload("size_list", celtypes.IntType, celtypes.NewListType(celtypes.DynType)),
		decls.NewOverload("size_map", celtypes.IntType, celtypes.NewMapType(celtypes.DynType, celtypes.DynType)),
		decls.NewMemberOverload("string_size", celtypes.IntType, celtypes.StringType),
		decls.NewMemberOverload("bytes_size", celtypes.IntType, celtypes.BytesType),
		decls.NewMemberOverload("list_size", celtypes.IntType, celtypes.NewListType(celtypes.DynType)),
		decls.NewMemberOverload("map_size", celtypes.IntType, celtypes.NewMapType(celtypes.DynType, celtypes.DynType)),
	)
	sizeImpl := func(a []types.Value) types.Value {
		switch v := a[0].(type) {
		case types.String:
			return v.Size()
		case types.Bytes:
			return v.Size()
		case *types.List:
			return v.Size()
		case *types.Map:
			return v.Size()
		}
		return types.NewErr(common.KindNoMatchingOverload, "no matching overload for size(%T)", a[0])
	}
	return []*Function{
		fn(sizeFn, map[string]Impl{
			"size_string": sizeImpl, "size_bytes": sizeImpl, "size_list": sizeImpl, "size_map": sizeImpl,
			"string_size": sizeImpl, "bytes_size": sizeImpl, "list_size": sizeImpl, "map_size": sizeImpl,
		}),
		fn(decls.NewFunction("matches",
			decls.NewOverload("matches", celtypes.BoolType, celtypes.StringType, celtypes.StringType),
			decls.NewMemberOverload("matches_string", celtypes.BoolType, celtypes.StringType, celtypes.StringType),
		), map[string]Impl{
			"matches":        func(a []types.Value) types.Value { return a[0].(types.String).Matches(string(a[1].(types.String))) },
			"matches_string": func(a []types.Value) types.Value { return a[0].(types.String).Matches(string(a[1].(types.String))) },
		}),
	}
}

func collectionFunctions() []*Function {
	inFn := decls.NewFunction(operators.In,
		decls.NewOverload("in_list", celtypes.BoolType, celtypes.NewTypeParamType("T"), celtypes.NewListType(celtypes.NewTypeParamType("T"))).WithTypeParams("T"),
		decls.NewOverload("in_map", celtypes.BoolType, celtypes.NewTypeParamType("K"), celtypes.NewMapType(celtypes.NewTypeParamType("K"), celtypes.DynType)).WithTypeParams("K"),
	)
	return []*Function{
		fn(inFn, map[string]Impl{
			"in_list": func(a []types.Value) types.Value { return a[1].(*types.List).Contains(a[0]) },
			"in_map":  func(a []types.Value) types.Value { return a[1].(*types.Map).Contains(a[0]) },
		}),
		fn(decls.NewFunction(operators.Index,
			decls.NewOverload("index_list", celtypes.NewTypeParamType("T"), celtypes.NewListType(celtypes.NewTypeParamType("T")), celtypes.IntType).WithTypeParams("T"),
			decls.NewOverload("index_map", celtypes.NewTypeParamType("V"), celtypes.NewMapType(celtypes.DynType, celtypes.NewTypeParamType("V")), celtypes.DynType).WithTypeParams("V"),
		), map[string]Impl{
			"index_list": func(a []types.Value) types.Value { return a[0].(*types.List).Get(int64(a[1].(types.Int))) },
			"index_map":  func(a []types.Value) types.Value { return a[0].(*types.Map).Get(a[1]) },
		}),
	}
}

func timeFunctions() []*Function {
	tzArg := func(a []types.Value) string {
		if len(a) > 1 {
			return string(a[1].(types.String))
		}
		return ""
	}
	timeAccessor := func(name, id string, get func(types.Timestamp, string) types.Int) *Function {
		return fn(decls.NewFunction(name,
			decls.NewMemberOverload(id, celtypes.IntType, celtypes.TimestampType),
			decls.NewMemberOverload(id+"_with_tz", celtypes.IntType, celtypes.TimestampType, celtypes.StringType),
		), map[string]Impl{
			id:         func(a []types.Value) types.Value { return get(a[0].(types.Timestamp), "") },
			id + "_with_tz": func(a []types.Value) types.Value { return get(a[0].(types.Timestamp), tzArg(a)) },
		})
	}
	durAccessor := func(name, id string, get func(types.Duration) types.Int) *Function {
		return fn(decls.NewFunction(name, decls.NewMemberOverload(id, celtypes.IntType, celtypes.DurationType)),
			map[string]Impl{id: func(a []types.Value) types.Value { return get(a[0].(types.Duration)) }})
	}
	fns := []*Function{
		timeAccessor("getFullYear", "timestamp_get_full_year", types.GetFullYear),
		timeAccessor("getMonth", "timestamp_get_month", types.GetMonth),
		timeAccessor("getDayOfYear", "timestamp_get_day_of_year", types.GetDayOfYear),
		timeAccessor("getDayOfMonth", "timestamp_get_day_of_month", types.GetDayOfMonth),
		timeAccessor("getDate", "timestamp_get_date", types.GetDate),
		timeAccessor("getDayOfWeek", "timestamp_get_day_of_week", types.GetDayOfWeek),
		timeAccessor("getHours", "timestamp_get_hours", types.GetHours),
		timeAccessor("getMinutes", "timestamp_get_minutes", types.GetMinutes),
		timeAccessor("getSeconds", "timestamp_get_seconds", types.GetSeconds),
		timeAccessor("getMilliseconds", "timestamp_get_milliseconds", types.GetMilliseconds),
		durAccessor("getHours", "duration_get_hours", types.DurationGetHours),
		durAccessor("getMinutes", "duration_get_minutes", types.DurationGetMinutes),
		durAccessor("getSeconds", "duration_get_seconds", types.DurationGetSeconds),
		durAccessor("getMilliseconds", "duration_get_milliseconds", types.DurationGetMilliseconds),
	}
	fns = append(fns,
		fn(decls.NewFunction(operators.Add,
			decls.NewOverload("add_timestamp_duration", celtypes.TimestampType, celtypes.TimestampType, celtypes.DurationType),
			decls.NewOverload("add_duration_timestamp", celtypes.TimestampType, celtypes.DurationType, celtypes.TimestampType),
			decls.NewOverload("add_duration_duration", celtypes.DurationType, celtypes.DurationType, celtypes.DurationType),
		), map[string]Impl{
			"add_timestamp_duration": func(a []types.Value) types.Value { return a[0].(types.Timestamp).Add(a[1].(types.Duration)) },
			"add_duration_timestamp": func(a []types.Value) types.Value { return a[1].(types.Timestamp).Add(a[0].(types.Duration)) },
			"add_duration_duration":  func(a []types.Value) types.Value { return a[0].(types.Duration).Add(a[1].(types.Duration)) },
		}),
		fn(decls.NewFunction(operators.Subtract,
			decls.NewOverload("subtract_timestamp_duration", celtypes.TimestampType, celtypes.TimestampType, celtypes.DurationType),
			decls.NewOverload("subtract_timestamp_timestamp", celtypes.DurationType, celtypes.TimestampType, celtypes.TimestampType),
			decls.NewOverload("subtract_duration_duration", celtypes.DurationType, celtypes.DurationType, celtypes.DurationType),
		), map[string]Impl{
			"subtract_timestamp_duration":  func(a []types.Value) types.Value { return a[0].(types.Timestamp).Sub(a[1].(types.Duration)) },
			"subtract_timestamp_timestamp": func(a []types.Value) types.Value { return a[0].(types.Timestamp).Diff(a[1].(types.Timestamp)) },
			"subtract_duration_duration":   func(a []types.Value) types.Value { return a[0].(types.Duration).Sub(a[1].(types.Duration)) },
		}),
	)
	return fns
}

// conversionFunctions implements int(), uint(), double(), string(),
// bytes(), timestamp(), duration(), type() (spec §4.F type conversions).
func conversionFunctions() []*Function {
	intConv := func(a []types.Value) types.Value {
		switch v := a[0].(type) {
		case types.Int:
			return v
		case types.Uint:
			if v > 1<<63-1 {
				return types.NewErr(common.KindOverflow, "uint to int overflow: %d", v)
			}
			return types.Int(v)
		case types.Double:
			return types.Int(v)
		case types.String:
			var out int64
			if _, err := fmt.Sscanf(string(v), "%d", &out); err != nil {
				return types.NewErr(common.KindBadFormat, "invalid int literal: %q", v)
			}
			return types.Int(out)
		}
		return types.NewErr(common.KindNoMatchingOverload, "no such overload: int(%T)", a[0])
	}
	uintConv := func(a []types.Value) types.Value {
		switch v := a[0].(type) {
		case types.Uint:
			return v
		case types.Int:
			if v < 0 {
				return types.NewErr(common.KindOverflow, "int to uint overflow: %d", v)
			}
			return types.Uint(v)
		case types.Double:
			return types.Uint(v)
		case types.String:
			var out uint64
			if _, err := fmt.Sscanf(string(v), "%d", &out); err != nil {
				return types.NewErr(common.KindBadFormat, "invalid uint literal: %q", v)
			}
			return types.Uint(out)
		}
		return types.NewErr(common.KindNoMatchingOverload, "no such overload: uint(%T)", a[0])
	}
	doubleConv := func(a []types.Value) types.Value {
		switch v := a[0].(type) {
		case types.Double:
			return v
		case types.Int:
			return types.Double(v)
		case types.Uint:
			return types.Double(v)
		case types.String:
			var out float64
			if _, err := fmt.Sscanf(string(v), "%g", &out); err != nil {
				return types.NewErr(common.KindBadFormat, "invalid double literal: %q", v)
			}
			return types.Double(out)
		}
		return types.NewErr(common.KindNoMatchingOverload, "no such overload: double(%T)", a[0])
	}
	stringConv := func(a []types.Value) types.Value {
		switch v := a[0].(type) {
		case types.String:
			return v
		case types.Bytes:
			return types.String(v)
		default:
			return types.String(v.String())
		}
	}
	bytesConv := func(a []types.Value) types.Value {
		switch v := a[0].(type) {
		case types.Bytes:
			return v
		case types.String:
			return types.Bytes(v)
		}
		return types.NewErr(common.KindNoMatchingOverload, "no such overload: bytes(%T)", a[0])
	}
	timestampConv := func(a []types.Value) types.Value {
		s, ok := a[0].(types.String)
		if !ok {
			return types.NewErr(common.KindNoMatchingOverload, "no such overload: timestamp(%T)", a[0])
		}
		t, errv := types.ParseTimestamp(string(s))
		if errv != nil {
			return errv
		}
		return t
	}
	durationConv := func(a []types.Value) types.Value {
		s, ok := a[0].(types.String)
		if !ok {
			return types.NewErr(common.KindNoMatchingOverload, "no such overload: duration(%T)", a[0])
		}
		d, errv := types.ParseDuration(string(s))
		if errv != nil {
			return errv
		}
		return d
	}
	dynConv := func(a []types.Value) types.Value { return a[0] }
	typeConv := func(a []types.Value) types.Value { return &types.TypeValue{T: a[0].Type()} }

	return []*Function{
		fn(decls.NewFunction("int",
			decls.NewOverload("int64_to_int64", celtypes.IntType, celtypes.IntType),
			decls.NewOverload("uint64_to_int64", celtypes.IntType, celtypes.UintType),
			decls.NewOverload("double_to_int64", celtypes.IntType, celtypes.DoubleType),
			decls.NewOverload("string_to_int64", celtypes.IntType, celtypes.StringType),
		), map[string]Impl{
			"int64_to_int64": intConv, "uint64_to_int64": intConv, "double_to_int64": intConv, "string_to_int64": intConv,
		}),
		fn(decls.NewFunction("uint",
			decls.NewOverload("uint64_to_uint64", celtypes.UintType, celtypes.UintType),
			decls.NewOverload("int64_to_uint64", celtypes.UintType, celtypes.IntType),
			decls.NewOverload("double_to_uint64", celtypes.UintType, celtypes.DoubleType),
			decls.NewOverload("string_to_uint64", celtypes.UintType, celtypes.StringType),
		), map[string]Impl{
			"uint64_to_uint64": uintConv, "int64_to_uint64": uintConv, "double_to_uint64": uintConv, "string_to_uint64": uintConv,
		}),
		fn(decls.NewFunction("double",
			decls.NewOverload("double_to_double", celtypes.DoubleType, celtypes.DoubleType),
			decls.NewOverload("int64_to_double", celtypes.DoubleType, celtypes.IntType),
			decls.NewOverload("uint64_to_double", celtypes.DoubleType, celtypes.UintType),
			decls.NewOverload("string_to_double", celtypes.DoubleType, celtypes.StringType),
		), map[string]Impl{
			"double_to_double": doubleConv, "int64_to_double": doubleConv, "uint64_to_double": doubleConv, "string_to_double": doubleConv,
		}),
		fn(decls.NewFunction("string",
			decls.NewOverload("string_to_string", celtypes.StringType, celtypes.StringType),
			decls.NewOverload("bytes_to_string", celtypes.StringType, celtypes.BytesType),
			decls.NewOverload("int64_to_string", celtypes.StringType, celtypes.IntType),
			decls.NewOverload("uint64_to_string", celtypes.StringType, celtypes.UintType),
			decls.NewOverload("double_to_string", celtypes.StringType, celtypes.DoubleType),
			decls.NewOverload("bool_to_string", celtypes.StringType, celtypes.BoolType),
			decls.NewOverload("timestamp_to_string", celtypes.StringType, celtypes.TimestampType),
			decls.NewOverload("duration_to_string", celtypes.StringType, celtypes.DurationType),
		), map[string]Impl{
			"string_to_string": stringConv, "bytes_to_string": stringConv, "int64_to_string": stringConv,
			"uint64_to_string": stringConv, "double_to_string": stringConv, "bool_to_string": stringConv,
			"timestamp_to_string": stringConv, "duration_to_string": stringConv,
		}),
		fn(decls.NewFunction("bytes",
			decls.NewOverload("bytes_to_bytes", celtypes.BytesType, celtypes.BytesType),
			decls.NewOverload("string_to_bytes", celtypes.BytesType, celtypes.StringType),
		), map[string]Impl{"bytes_to_bytes": bytesConv, "string_to_bytes": bytesConv}),
		fn(decls.NewFunction("timestamp",
			decls.NewOverload("string_to_timestamp", celtypes.TimestampType, celtypes.StringType),
		), map[string]Impl{"string_to_timestamp": timestampConv}),
		fn(decls.NewFunction("duration",
			decls.NewOverload("string_to_duration", celtypes.DurationType, celtypes.StringType),
		), map[string]Impl{"string_to_duration": durationConv}),
		fn(decls.NewFunction("dyn",
			decls.NewOverload("to_dyn", celtypes.DynType, celtypes.NewTypeParamType("T")).WithTypeParams("T"),
		), map[string]Impl{"to_dyn": dynConv}),
		fn(decls.NewFunction("type",
			decls.NewOverload("type", celtypes.NewTypeType(celtypes.NewTypeParamType("T")), celtypes.NewTypeParamType("T")).WithTypeParams("T"),
		), map[string]Impl{"type": typeConv}),
	}
}
