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

package common

import (
	"strings"
	"testing"
)

func TestNewIssueDisplayStringIncludesLocationAndSnippet(t *testing.T) {
	src := NewTextSource("1 + \"a\"", "<test>")
	loc := NewLocation(1, 5)
	issue := NewIssue(KindNoMatchingOverload, loc, "no matching overload for _+_")
	disp := issue.ToDisplayString(src)
	if !strings.Contains(disp, "ERROR") {
		t.Errorf("display string = %q, want it to mention ERROR severity", disp)
	}
	if !strings.Contains(disp, "1:5") {
		t.Errorf("display string = %q, want it to include the 1:5 location", disp)
	}
	if !strings.Contains(disp, "1 + \"a\"") {
		t.Errorf("display string = %q, want the offending line snippet", disp)
	}
}

func TestNewWarningHasWarningSeverity(t *testing.T) {
	issue := NewWarning(KindOverflow, NoLocation, "possible overflow")
	if issue.Severity != SeverityWarning {
		t.Errorf("Severity = %v, want SeverityWarning", issue.Severity)
	}
}

func TestErrorsReportErrorAccumulates(t *testing.T) {
	src := NewTextSource("x", "<test>")
	errs := NewErrors(src)
	if errs.HasErrors() {
		t.Fatal("a fresh Errors should have no errors")
	}
	errs.ReportError(NoLocation, KindTypeCheck, "boom")
	if !errs.HasErrors() {
		t.Fatal("expected HasErrors() to be true after ReportError")
	}
	if len(errs.Issues()) != 1 {
		t.Fatalf("Issues() = %d, want 1", len(errs.Issues()))
	}
}

func TestErrorsReportWarningDoesNotCountAsError(t *testing.T) {
	src := NewTextSource("x", "<test>")
	errs := NewErrors(src)
	errs.ReportWarning(NoLocation, KindOverflow, "heads up")
	if errs.HasErrors() {
		t.Error("a warning-only Errors should not report HasErrors()")
	}
	if len(errs.Issues()) != 1 {
		t.Fatalf("Issues() = %d, want 1", len(errs.Issues()))
	}
}

func TestErrorsIssuesSortedByLocation(t *testing.T) {
	src := NewTextSource("a\nb\nc", "<test>")
	errs := NewErrors(src)
	errs.ReportError(NewLocation(3, 1), KindTypeCheck, "third")
	errs.ReportError(NewLocation(1, 1), KindTypeCheck, "first")
	errs.ReportError(NewLocation(2, 1), KindTypeCheck, "second")
	issues := errs.Issues()
	if len(issues) != 3 {
		t.Fatalf("Issues() = %d, want 3", len(issues))
	}
	if issues[0].Message != "first" || issues[1].Message != "second" || issues[2].Message != "third" {
		t.Errorf("Issues() not sorted by location: %+v", issues)
	}
}

func TestErrorsAppendMergesIssues(t *testing.T) {
	src := NewTextSource("x", "<test>")
	errs := NewErrors(src)
	errs.ReportError(NoLocation, KindTypeCheck, "first")
	other := []*Issue{NewIssue(KindSyntax, NoLocation, "second")}
	errs.Append(other)
	if len(errs.Issues()) != 2 {
		t.Fatalf("Issues() = %d, want 2 after Append", len(errs.Issues()))
	}
}

func TestErrorsToDisplayStringJoinsAllIssues(t *testing.T) {
	src := NewTextSource("x", "<test>")
	errs := NewErrors(src)
	errs.ReportError(NoLocation, KindTypeCheck, "first")
	errs.ReportError(NoLocation, KindTypeCheck, "second")
	disp := errs.ToDisplayString()
	if !strings.Contains(disp, "first") || !strings.Contains(disp, "second") {
		t.Errorf("ToDisplayString() = %q, want both issues present", disp)
	}
}
