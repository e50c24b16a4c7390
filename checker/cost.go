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
	"math"

	"celcore/ast"
)

// CostEstimate is a [Min, Max] range over the number of evaluation steps a
// checked expression may take (SPEC_FULL §12's cost-estimation hook). It is
// a coarse stand-in for the teacher's per-function CostEstimator hooks
// (EstimateSize/EstimateCallCost against runtime container sizes): celcore
// has no schema carrying field-level size bounds to feed such an
// estimator, so Cost counts evaluation steps structurally instead and
// reports an unbounded Max wherever a comprehension's iteration count
// cannot be bounded from the expression alone.
type CostEstimate struct {
	Min, Max uint64
}

func (c CostEstimate) add(o CostEstimate) CostEstimate {
	return CostEstimate{Min: addNoOverflow(c.Min, o.Min), Max: addNoOverflow(c.Max, o.Max)}
}

func addNoOverflow(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// Cost computes a structural cost estimate for tree, one step per literal,
// identifier, and field selection, a step per call plus its arguments'
// cost, and an unbounded Max for any comprehension (its iteration count
// depends on a runtime collection size Cost cannot see).
func Cost(tree *ast.AST) CostEstimate {
	return costOf(tree.Expr())
}

func costOf(e ast.Expr) CostEstimate {
	if e == nil {
		return CostEstimate{}
	}
	switch e.Kind() {
	case ast.LiteralKind, ast.IdentKind:
		return CostEstimate{Min: 1, Max: 1}
	case ast.SelectKind:
		return costOf(e.AsSelect().Operand()).add(CostEstimate{Min: 1, Max: 1})
	case ast.CallKind:
		c := e.AsCall()
		total := CostEstimate{Min: 1, Max: 1}
		if c.Target() != nil {
			total = total.add(costOf(c.Target()))
		}
		for _, a := range c.Args() {
			total = total.add(costOf(a))
		}
		return total
	case ast.ListKind:
		total := CostEstimate{Min: 1, Max: 1}
		for _, el := range e.AsList().Elements() {
			total = total.add(costOf(el))
		}
		return total
	case ast.MapKind:
		total := CostEstimate{Min: 1, Max: 1}
		for _, entry := range e.AsMap().Entries() {
			total = total.add(costOf(entry.Key())).add(costOf(entry.Value()))
		}
		return total
	case ast.StructKind:
		total := CostEstimate{Min: 1, Max: 1}
		for _, f := range e.AsStruct().Fields() {
			total = total.add(costOf(f.Value()))
		}
		return total
	case ast.ComprehensionKind:
		c := e.AsComprehension()
		rangeCost := costOf(c.IterRange())
		perIter := costOf(c.LoopCondition()).add(costOf(c.LoopStep()))
		return rangeCost.add(costOf(c.AccuInit())).add(costOf(c.Result())).add(CostEstimate{
			Min: perIter.Min,
			Max: math.MaxUint64,
		})
	default:
		return CostEstimate{}
	}
}
