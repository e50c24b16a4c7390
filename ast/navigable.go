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

// TraversalOrder selects pre-order or post-order for AllNodes.
type TraversalOrder int

const (
	// PreOrder visits a node before its children.
	PreOrder TraversalOrder = iota
	// PostOrder visits a node after its children.
	PostOrder
)

// NavigableExpr decorates an Expr with parent/child/descendant traversal.
// The decoration is computed lazily from the plain AST the first time a
// traversal is requested; the underlying Expr tree itself is never
// mutated (spec §4.B).
type NavigableExpr struct {
	Expr
	parent   *NavigableExpr
	children []*NavigableExpr
}

// Parent returns the enclosing node, or nil at the root.
func (n *NavigableExpr) Parent() *NavigableExpr { return n.parent }

// Children returns this node's immediate children in source order.
func (n *NavigableExpr) Children() []*NavigableExpr { return n.children }

// Navigate builds a NavigableExpr view over root, without modifying root or
// any node beneath it.
func Navigate(root Expr) *NavigableExpr {
	return navigate(root, nil)
}

func navigate(e Expr, parent *NavigableExpr) *NavigableExpr {
	if e == nil {
		return nil
	}
	n := &NavigableExpr{Expr: e, parent: parent}
	for _, child := range directChildren(e) {
		n.children = append(n.children, navigate(child, n))
	}
	return n
}

// directChildren enumerates e's immediate subexpressions, in source order,
// using the single Kind switch spec §9 calls for instead of per-type
// double dispatch.
func directChildren(e Expr) []Expr {
	switch e.Kind() {
	case SelectKind:
		return []Expr{e.AsSelect().Operand()}
	case CallKind:
		c := e.AsCall()
		var kids []Expr
		if c.Target() != nil {
			kids = append(kids, c.Target())
		}
		kids = append(kids, c.Args()...)
		return kids
	case ListKind:
		return append([]Expr{}, e.AsList().Elements()...)
	case MapKind:
		var kids []Expr
		for _, ent := range e.AsMap().Entries() {
			kids = append(kids, ent.Key(), ent.Value())
		}
		return kids
	case StructKind:
		var kids []Expr
		for _, f := range e.AsStruct().Fields() {
			kids = append(kids, f.Value())
		}
		return kids
	case ComprehensionKind:
		c := e.AsComprehension()
		return []Expr{c.IterRange(), c.AccuInit(), c.LoopCondition(), c.LoopStep(), c.Result()}
	default:
		return nil
	}
}

// AllNodes returns every node in the subtree rooted at n, in the requested
// traversal order, as an eagerly materialized slice (the "lazy sequence" of
// spec §4.B collapses naturally here since Go has no coroutine-backed
// generators available to every consumer; callers that want early-exit
// semantics should range and break).
func (n *NavigableExpr) AllNodes(order TraversalOrder) []*NavigableExpr {
	var out []*NavigableExpr
	var walk func(cur *NavigableExpr)
	walk = func(cur *NavigableExpr) {
		if order == PreOrder {
			out = append(out, cur)
		}
		for _, c := range cur.children {
			walk(c)
		}
		if order == PostOrder {
			out = append(out, cur)
		}
	}
	walk(n)
	return out
}

// Descendants returns every proper descendant of n, pre-order.
func (n *NavigableExpr) Descendants() []*NavigableExpr {
	all := n.AllNodes(PreOrder)
	if len(all) == 0 {
		return nil
	}
	return all[1:]
}

// Height returns the number of edges on the longest root-to-leaf path; a
// single leaf node has height 0. Used to enforce the AstDepthLimit
// validator (spec §4.G).
func (n *NavigableExpr) Height() int {
	if len(n.children) == 0 {
		return 0
	}
	max := 0
	for _, c := range n.children {
		if h := c.Height(); h > max {
			max = h
		}
	}
	return max + 1
}

// Find locates the first node (pre-order) for which pred returns true.
func (n *NavigableExpr) Find(pred func(*NavigableExpr) bool) (*NavigableExpr, bool) {
	for _, node := range n.AllNodes(PreOrder) {
		if pred(node) {
			return node, true
		}
	}
	return nil, false
}

// FindID locates the node with the given ID within the subtree rooted at n.
func (n *NavigableExpr) FindID(id int64) (*NavigableExpr, bool) {
	return n.Find(func(ne *NavigableExpr) bool { return ne.ID() == id })
}
