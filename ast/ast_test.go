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
	"testing"

	"celcore/common"
)

func TestFactoryAssignsMonotonicIDs(t *testing.T) {
	fac := NewFactory()
	loc := common.NoLocation
	a := fac.NewLiteral(loc, IntLiteral(1))
	b := fac.NewLiteral(loc, IntLiteral(2))
	if a.ID() >= b.ID() {
		t.Errorf("expected increasing IDs, got %d then %d", a.ID(), b.ID())
	}
}

func TestFactoryCopyExprAssignsFreshIDs(t *testing.T) {
	fac := NewFactory()
	loc := common.NoLocation
	orig := fac.NewCall(loc, "_+_", fac.NewLiteral(loc, IntLiteral(1)), fac.NewLiteral(loc, IntLiteral(2)))
	cp := fac.CopyExpr(orig)
	if cp.ID() == orig.ID() {
		t.Error("CopyExpr should assign a fresh ID to the root")
	}
	origArgs := orig.AsCall().Args()
	cpArgs := cp.AsCall().Args()
	for i := range origArgs {
		if origArgs[i].ID() == cpArgs[i].ID() {
			t.Errorf("CopyExpr should assign a fresh ID to arg %d", i)
		}
	}
}

func buildArithmeticTree(fac *Factory, loc common.Location) Expr {
	one := fac.NewLiteral(loc, IntLiteral(1))
	two := fac.NewLiteral(loc, IntLiteral(2))
	return fac.NewCall(loc, "_+_", one, two)
}

func TestNavigateChildrenAndParent(t *testing.T) {
	fac := NewFactory()
	loc := common.NoLocation
	root := buildArithmeticTree(fac, loc)
	nav := Navigate(root)
	if len(nav.Children()) != 2 {
		t.Fatalf("Children() = %d, want 2", len(nav.Children()))
	}
	for _, c := range nav.Children() {
		if c.Parent() != nav {
			t.Error("child's Parent() should be the root navigable node")
		}
	}
}

func TestNavigateAllNodesPreOrder(t *testing.T) {
	fac := NewFactory()
	loc := common.NoLocation
	root := buildArithmeticTree(fac, loc)
	nodes := Navigate(root).AllNodes(PreOrder)
	if len(nodes) != 3 {
		t.Fatalf("AllNodes() = %d nodes, want 3 (call + 2 literals)", len(nodes))
	}
	if nodes[0].Kind() != CallKind {
		t.Errorf("first pre-order node kind = %v, want CallKind", nodes[0].Kind())
	}
}

func TestNavigateHeight(t *testing.T) {
	fac := NewFactory()
	loc := common.NoLocation
	leaf := fac.NewLiteral(loc, IntLiteral(1))
	if h := Navigate(leaf).Height(); h != 0 {
		t.Errorf("Height() of a leaf = %d, want 0", h)
	}
	root := buildArithmeticTree(fac, loc)
	if h := Navigate(root).Height(); h != 1 {
		t.Errorf("Height() of call(lit, lit) = %d, want 1", h)
	}
}

func TestNavigateFindByID(t *testing.T) {
	fac := NewFactory()
	loc := common.NoLocation
	root := buildArithmeticTree(fac, loc)
	target := root.AsCall().Args()[1]
	found, ok := Navigate(root).FindID(target.ID())
	if !ok {
		t.Fatal("FindID should locate the second argument")
	}
	if found.ID() != target.ID() {
		t.Errorf("FindID returned node %d, want %d", found.ID(), target.ID())
	}
}

func TestMarshalUnmarshalPreservesShapeAndIDs(t *testing.T) {
	fac := NewFactory()
	loc := common.NoLocation
	root := buildArithmeticTree(fac, loc)
	src := common.NewTextSource("1 + 2", "<test>")
	tree := NewAST(root, src, fac.NextID())

	data, err := Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	restored, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if restored.Expr().ID() != tree.Expr().ID() {
		t.Errorf("restored root ID = %d, want %d", restored.Expr().ID(), tree.Expr().ID())
	}
	if restored.Expr().Kind() != CallKind {
		t.Fatalf("restored root kind = %v, want CallKind", restored.Expr().Kind())
	}
	call := restored.Expr().AsCall()
	if call.FunctionName() != "_+_" {
		t.Errorf("restored function name = %q, want _+_", call.FunctionName())
	}
	if len(call.Args()) != 2 {
		t.Fatalf("restored arg count = %d, want 2", len(call.Args()))
	}
	if call.Args()[0].AsLiteral().IntValue() != 1 || call.Args()[1].AsLiteral().IntValue() != 2 {
		t.Error("restored literal values do not match the original")
	}
	if restored.Source().Content() != "1 + 2" {
		t.Errorf("restored source content = %q, want %q", restored.Source().Content(), "1 + 2")
	}
}

func TestMarshalUnmarshalPreservesTypeAndReferenceMaps(t *testing.T) {
	fac := NewFactory()
	loc := common.NoLocation
	root := fac.NewIdent(loc, "x")
	src := common.NewTextSource("x", "<test>")
	tree := NewAST(root, src, fac.NextID())
	tree.SetType(root.ID(), "int")
	tree.SetReference(root.ID(), &ReferenceInfo{Name: "x", OverloadIDs: []string{"some_overload"}})

	data, err := Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	restored, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	typ, found := restored.TypeMap()[root.ID()]
	if !found || typ != "int" {
		t.Errorf("restored type map entry = %v, %v, want \"int\", true", typ, found)
	}
	ref, found := restored.ReferenceMap()[root.ID()]
	if !found || ref.Name != "x" || len(ref.OverloadIDs) != 1 || ref.OverloadIDs[0] != "some_overload" {
		t.Errorf("restored reference map entry = %+v, %v", ref, found)
	}
}
