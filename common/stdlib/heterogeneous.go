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
	"celcore/common/decls"
	"celcore/common/types"
	"celcore/operators"
	celtypes "celcore/types"
)

// Heterogeneous returns the cross-type numeric ordering overloads
// (int/uint, int/double, uint/double and their reverses) that
// enable_heterogeneous_numeric_comparisons layers on top of Standard: by
// default comparing an int to a double is a type error, matching the
// teacher's strict-by-default posture, but some environments want mixed
// numeric comparison by mathematical value (spec §4.F).
func Heterogeneous() *Library {
	lt := func(o int) bool { return o < 0 }
	le := func(o int) bool { return o <= 0 }
	gt := func(o int) bool { return o > 0 }
	ge := func(o int) bool { return o >= 0 }

	pairs := [][2]*celtypes.Type{
		{celtypes.IntType, celtypes.UintType},
		{celtypes.UintType, celtypes.IntType},
		{celtypes.IntType, celtypes.DoubleType},
		{celtypes.DoubleType, celtypes.IntType},
		{celtypes.UintType, celtypes.DoubleType},
		{celtypes.DoubleType, celtypes.UintType},
	}
	suffix := map[*celtypes.Type]string{celtypes.IntType: "int64", celtypes.UintType: "uint64", celtypes.DoubleType: "double"}
	mk := func(op, idPrefix string, want func(int) bool) *Function {
		impls := make(map[string]Impl, len(pairs))
		var overloads []*decls.Overload
		for _, pair := range pairs {
			id := idPrefix + "_" + suffix[pair[0]] + "_" + suffix[pair[1]]
			overloads = append(overloads, decls.NewOverload(id, celtypes.BoolType, pair[0], pair[1]))
			impls[id] = func(a []types.Value) types.Value {
				order, errv := types.CompareNumeric(a[0], a[1], true)
				if errv != nil {
					return errv
				}
				return compareToBool(order, true, want)
			}
		}
		return fn(decls.NewFunction(op, overloads...), impls)
	}
	return &Library{
		Name: "heterogeneous_numeric_comparisons",
		Functions: []*Function{
			mk(operators.Less, "less", lt),
			mk(operators.LessEquals, "less_equals", le),
			mk(operators.Greater, "greater", gt),
			mk(operators.GreaterEquals, "greater_equals", ge),
		},
	}
}
