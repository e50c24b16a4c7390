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

package containers

import (
	"reflect"
	"testing"
)

func TestNewContainerDefaultsToEmptyName(t *testing.T) {
	c, err := NewContainer()
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	if c.Name() != "" {
		t.Errorf("Name() = %q, want empty", c.Name())
	}
}

func TestNameOptionTrimsTrailingDot(t *testing.T) {
	c, err := NewContainer(Name("a.b.c."))
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	if c.Name() != "a.b.c" {
		t.Errorf("Name() = %q, want %q", c.Name(), "a.b.c")
	}
}

func TestAliasRejectsQualifiedAlias(t *testing.T) {
	_, err := NewContainer(Alias("a.b", "x.y.z"))
	if err == nil {
		t.Fatal("expected an error for a dotted alias")
	}
}

func TestAliasRegistersExpansion(t *testing.T) {
	c, err := NewContainer(Alias("pb", "google.protobuf"))
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	if got := c.Aliases()["pb"]; got != "google.protobuf" {
		t.Errorf("Aliases()[\"pb\"] = %q, want %q", got, "google.protobuf")
	}
}

func TestExtendAppendsSegmentAndInheritsAliases(t *testing.T) {
	c, err := NewContainer(Name("a.b"), Alias("pb", "google.protobuf"))
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	nested := c.Extend("c")
	if nested.Name() != "a.b.c" {
		t.Errorf("Extend(\"c\").Name() = %q, want %q", nested.Name(), "a.b.c")
	}
	if nested.Aliases()["pb"] != "google.protobuf" {
		t.Error("Extend should inherit the parent's aliases")
	}
}

func TestExtendFromEmptyContainer(t *testing.T) {
	c, _ := NewContainer()
	nested := c.Extend("a")
	if nested.Name() != "a" {
		t.Errorf("Extend(\"a\") from empty = %q, want %q", nested.Name(), "a")
	}
}

func TestResolveCandidateNamesSearchesOutward(t *testing.T) {
	c, _ := NewContainer(Name("a.b.c"))
	want := []string{"a.b.c.R", "a.b.R", "a.R", "R"}
	got := c.ResolveCandidateNames("R")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveCandidateNames(\"R\") = %v, want %v", got, want)
	}
}

func TestResolveCandidateNamesAbsoluteReferenceSkipsSearch(t *testing.T) {
	c, _ := NewContainer(Name("a.b.c"))
	got := c.ResolveCandidateNames(".R")
	want := []string{"R"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveCandidateNames(\".R\") = %v, want %v", got, want)
	}
}

func TestResolveCandidateNamesEmptyContainer(t *testing.T) {
	c, _ := NewContainer()
	got := c.ResolveCandidateNames("R")
	want := []string{"R"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveCandidateNames(\"R\") on empty container = %v, want %v", got, want)
	}
}

func TestAliasedCandidatesExpandsLeadingSegment(t *testing.T) {
	c, _ := NewContainer(Alias("pb", "google.protobuf"))
	got := c.AliasedCandidates("pb.Struct")
	want := []string{"google.protobuf.Struct"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AliasedCandidates(\"pb.Struct\") = %v, want %v", got, want)
	}
}

func TestAliasedCandidatesNoMatch(t *testing.T) {
	c, _ := NewContainer(Alias("pb", "google.protobuf"))
	if got := c.AliasedCandidates("other.Thing"); got != nil {
		t.Errorf("AliasedCandidates(\"other.Thing\") = %v, want nil", got)
	}
}

func TestResolveNamePutsAliasHitFirst(t *testing.T) {
	c, _ := NewContainer(Name("a.b"), Alias("pb", "google.protobuf"))
	got := c.ResolveName("pb.Struct")
	if len(got) == 0 || got[0] != "google.protobuf.Struct" {
		t.Fatalf("ResolveName(\"pb.Struct\")[0] = %v, want the alias expansion first", got)
	}
}

func TestResolveNameOnNilContainer(t *testing.T) {
	var c *Container
	if got := c.Name(); got != "" {
		t.Errorf("Name() on nil container = %q, want empty", got)
	}
	got := c.ResolveCandidateNames("R")
	if !reflect.DeepEqual(got, []string{"R"}) {
		t.Errorf("ResolveCandidateNames(\"R\") on nil container = %v, want [R]", got)
	}
}
