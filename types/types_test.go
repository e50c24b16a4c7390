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

package types

import "testing"

func TestTypeStringRendersParameterizedForm(t *testing.T) {
	lt := NewListType(IntType)
	if got := lt.String(); got != "list(int)" {
		t.Errorf("String() = %q, want %q", got, "list(int)")
	}
	mt := NewMapType(StringType, DynType)
	if got := mt.String(); got != "map(string, dyn)" {
		t.Errorf("String() = %q, want %q", got, "map(string, dyn)")
	}
}

func TestTypeStringPrimitive(t *testing.T) {
	if got := IntType.String(); got != "int" {
		t.Errorf("String() = %q, want %q", got, "int")
	}
}

func TestIsErrorOnlyTrueForErrorType(t *testing.T) {
	if !ErrorType.IsError() {
		t.Error("ErrorType.IsError() should be true")
	}
	if IntType.IsError() {
		t.Error("IntType.IsError() should be false")
	}
}

func TestIsAssignableFromReflexive(t *testing.T) {
	if !IntType.IsAssignableFrom(IntType) {
		t.Error("IntType should be assignable from itself")
	}
	if IntType.IsAssignableFrom(StringType) {
		t.Error("IntType should not be assignable from StringType")
	}
}

func TestIsAssignableFromDynUnifiesEitherDirection(t *testing.T) {
	if !DynType.IsAssignableFrom(IntType) {
		t.Error("dyn should accept any type")
	}
	if !IntType.IsAssignableFrom(DynType) {
		t.Error("any type should accept dyn")
	}
}

func TestIsAssignableFromErrorAbsorbs(t *testing.T) {
	if !IntType.IsAssignableFrom(ErrorType) {
		t.Error("error should be assignable to anything")
	}
	if !ErrorType.IsAssignableFrom(IntType) {
		t.Error("anything should be assignable to error")
	}
}

func TestIsAssignableFromListDecomposesStructurally(t *testing.T) {
	a := NewListType(IntType)
	b := NewListType(DynType)
	if !a.IsAssignableFrom(b) {
		t.Error("list(int) should accept list(dyn), dyn unifies with int")
	}
	c := NewListType(StringType)
	if a.IsAssignableFrom(c) {
		t.Error("list(int) should not accept list(string)")
	}
}

func TestOptionalIsInvariantInParameter(t *testing.T) {
	intOpt := NewOptionalType(IntType)
	dynOpt := NewOptionalType(DynType)
	if intOpt.IsAssignableFrom(dynOpt) {
		t.Error("optional(int) should not accept optional(dyn): optional is invariant")
	}
}

func TestIsExactlyTreatsDynAsOpaqueName(t *testing.T) {
	if !IntType.IsExactly(IntType) {
		t.Error("IntType should be exactly itself")
	}
	if DynType.IsExactly(IntType) {
		t.Error("dyn should not be exactly int under IsExactly")
	}
}

func TestSubstituteReplacesTypeParam(t *testing.T) {
	bindings := NewSubstitution()
	bindings["T"] = IntType
	param := NewTypeParamType("T")
	got := Substitute(bindings, param)
	if got != IntType {
		t.Errorf("Substitute(T=int, T) = %v, want IntType", got)
	}
}

func TestSubstituteFollowsChains(t *testing.T) {
	bindings := NewSubstitution()
	bindings["A"] = NewTypeParamType("B")
	bindings["B"] = IntType
	got := Substitute(bindings, NewTypeParamType("A"))
	if got != IntType {
		t.Errorf("Substitute chained A->B->int = %v, want IntType", got)
	}
}

func TestSubstituteRecursesIntoParameters(t *testing.T) {
	bindings := NewSubstitution()
	bindings["T"] = StringType
	listOfT := NewListType(NewTypeParamType("T"))
	got := Substitute(bindings, listOfT)
	if got.String() != "list(string)" {
		t.Errorf("Substitute(list(T), T=string) = %v, want list(string)", got)
	}
}

func TestSubstituteUnboundParamUnchanged(t *testing.T) {
	bindings := NewSubstitution()
	param := NewTypeParamType("T")
	got := Substitute(bindings, param)
	if got != param {
		t.Error("an unbound type-param should be returned unchanged")
	}
}

func TestUnifyBindsTypeParam(t *testing.T) {
	bindings := NewSubstitution()
	ok := Unify(bindings, NewTypeParamType("T"), IntType)
	if !ok {
		t.Fatal("Unify should succeed binding T to int")
	}
	if bindings["T"] != IntType {
		t.Errorf("bindings[T] = %v, want IntType", bindings["T"])
	}
}

func TestUnifyRejectsConflictingKinds(t *testing.T) {
	bindings := NewSubstitution()
	ok := Unify(bindings, NewListType(IntType), StringType)
	if ok {
		t.Error("Unify(list(int), string) should fail, kinds differ")
	}
}

func TestUnifyStructurallyUnifiesParameters(t *testing.T) {
	bindings := NewSubstitution()
	pattern := NewListType(NewTypeParamType("T"))
	concrete := NewListType(StringType)
	if !Unify(bindings, pattern, concrete) {
		t.Fatal("Unify(list(T), list(string)) should succeed")
	}
	if bindings["T"] != StringType {
		t.Errorf("bindings[T] = %v, want StringType", bindings["T"])
	}
}

func TestUnifyDynAcceptsAnything(t *testing.T) {
	bindings := NewSubstitution()
	if !Unify(bindings, DynType, IntType) {
		t.Error("Unify(dyn, int) should always succeed")
	}
}

func TestMostGeneralPrefersWiderType(t *testing.T) {
	if got := MostGeneral(DynType, IntType); got != DynType {
		t.Errorf("MostGeneral(dyn, int) = %v, want DynType", got)
	}
	if got := MostGeneral(IntType, DynType); got != DynType {
		t.Errorf("MostGeneral(int, dyn) = %v, want DynType", got)
	}
}

func TestNewTypeTypeWithNilParamReturnsSingleton(t *testing.T) {
	if got := NewTypeType(nil); got != TypeType {
		t.Errorf("NewTypeType(nil) = %v, want the TypeType singleton", got)
	}
}

func TestNewTypeTypeWithParamRendersNested(t *testing.T) {
	got := NewTypeType(IntType)
	if got.String() != "type(int)" {
		t.Errorf("NewTypeType(int).String() = %q, want %q", got.String(), "type(int)")
	}
}

func TestNewObjectTypeUsesFullyQualifiedName(t *testing.T) {
	got := NewObjectType("my.pkg.Message")
	if got.TypeName() != "my.pkg.Message" {
		t.Errorf("TypeName() = %q, want %q", got.TypeName(), "my.pkg.Message")
	}
	if got.Kind != StructKind {
		t.Errorf("Kind = %v, want StructKind", got.Kind)
	}
}

func TestNilTypeTypeNameAndString(t *testing.T) {
	var nilType *Type
	if nilType.TypeName() != "<nil>" {
		t.Errorf("TypeName() on nil = %q, want <nil>", nilType.TypeName())
	}
	if nilType.String() != "<nil>" {
		t.Errorf("String() on nil = %q, want <nil>", nilType.String())
	}
}
