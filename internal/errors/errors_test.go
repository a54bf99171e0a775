package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := New(KindGit, "something failed")
	if err.Error() != "something failed" {
		t.Errorf("Error() = %q", err.Error())
	}

	wrapped := Wrap(fmt.Errorf("exit status 128"), KindGit, "git log failed")
	want := "git log failed: exit status 128"
	if wrapped.Error() != want {
		t.Errorf("Error() = %q, want %q", wrapped.Error(), want)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, KindGit, "ignored") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(cause, KindProtocol, "bad stream")

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestIsMatchesOnKind(t *testing.T) {
	a := Protocol("first")
	b := Protocol("second")

	if !stderrors.Is(a, b) {
		t.Error("two protocol errors should match by kind")
	}
	if stderrors.Is(a, NoInput()) {
		t.Error("different kinds should not match")
	}
}

func TestPredicates(t *testing.T) {
	cases := []struct {
		err  error
		pred func(error) bool
	}{
		{NoInput(), IsNoInput},
		{Protocol("x"), IsProtocol},
		{IncompleteResolution([]string{"a"}), IsIncompleteResolution},
		{EmptyEnumeration("HEAD", nil), IsEmptyEnumeration},
	}

	for _, tc := range cases {
		if !tc.pred(tc.err) {
			t.Errorf("predicate rejected its own error: %v", tc.err)
		}
	}

	if IsProtocol(fmt.Errorf("plain")) {
		t.Error("predicate accepted a plain error")
	}
}

func TestIncompleteResolutionSortsPaths(t *testing.T) {
	err := IncompleteResolution([]string{"z.txt", "a.txt", "m.txt"})

	paths := err.Paths()
	want := []string{"a.txt", "m.txt", "z.txt"}
	if len(paths) != len(want) {
		t.Fatalf("Paths() = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("Paths() = %v, want %v", paths, want)
		}
	}
}

func TestEmptyEnumerationNamesFilters(t *testing.T) {
	err := EmptyEnumeration("main", []string{"src/missing"})

	if got := err.Error(); !contains(got, "main") || !contains(got, "src/missing") {
		t.Errorf("message %q should name the ref and filters", got)
	}
}

func TestDetailedString(t *testing.T) {
	err := Protocol("changed-path line before any header").
		WithContext("line", "M\tmain.go")

	detail := err.DetailedString()
	if !contains(detail, "PROTOCOL") || !contains(detail, "main.go") {
		t.Errorf("DetailedString() = %q", detail)
	}
}

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}
