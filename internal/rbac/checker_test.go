package rbac_test

import (
	"testing"

	"github.com/Aymardds/agrilearn-hub/internal/rbac"
)

func TestCheckerHas(t *testing.T) {
	c := rbac.NewChecker(nil)

	tests := []struct {
		role, perm string
		want       bool
	}{
		{"student", "lesson:complete", true},
		{"student", "course:create", false},
		{"student", "certificate:request", true},
		{"instructor", "course:create", true},
		{"instructor", "course:publish", false},
		{"editor", "course:publish", true},
		{"admin", "anything:at_all", true},
		{"unknown", "course:view", false},
		{"", "course:view", false},
	}
	for _, tt := range tests {
		if got := c.Has(tt.role, tt.perm); got != tt.want {
			t.Fatalf("Has(%q, %q) = %v, want %v", tt.role, tt.perm, got, tt.want)
		}
	}
}

func TestCheckerWildcardPrefix(t *testing.T) {
	c := rbac.NewChecker(map[string][]string{
		"reporter": {"attempt:*"},
	})
	if !c.Has("reporter", "attempt:view-all") {
		t.Fatalf("prefix wildcard did not match")
	}
	if c.Has("reporter", "course:view") {
		t.Fatalf("prefix wildcard matched outside its prefix")
	}
}

func TestCheckerAnyAll(t *testing.T) {
	c := rbac.NewChecker(nil)
	if !c.Any("student", "progress:view-all", "progress:view-own") {
		t.Fatalf("Any missed an allowed permission")
	}
	if c.All("student", "progress:view-own", "course:create") {
		t.Fatalf("All passed with a missing permission")
	}
}
