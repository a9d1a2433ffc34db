package sync

import "testing"

func TestRoleResolverResolve(t *testing.T) {
	r := NewRoleResolver(5, nil)

	testCases := []struct {
		token    string
		expected int64
	}{
		{"professor", 3},
		{"Professor", 3},
		{"  PROFESSOR ", 3},
		{"student", 5},
		{"teacher", 5},
		{"", 5},
		{"   ", 5},
	}

	for _, tc := range testCases {
		if got := r.Resolve(tc.token); got != tc.expected {
			t.Errorf("Resolve(%q) = %d, want %d", tc.token, got, tc.expected)
		}
	}
}

func TestRoleResolverCustomTable(t *testing.T) {
	r := NewRoleResolver(5, map[string]int64{"Professor": 3, " editingteacher ": 4, "": 9})

	if got := r.Resolve("editingteacher"); got != 4 {
		t.Errorf("Resolve(editingteacher) = %d, want 4", got)
	}
	if got := r.Resolve("professor"); got != 3 {
		t.Errorf("Resolve(professor) = %d, want 3", got)
	}
	if _, ok := r.Tokens[""]; ok {
		t.Error("empty token key should be dropped")
	}
}

func TestRoleResolverUnnormalizedLiteral(t *testing.T) {
	r := RoleResolver{DefaultRoleID: 7, Tokens: map[string]int64{"Manager": 1}}
	if got := r.Resolve("manager"); got != 1 {
		t.Errorf("Resolve(manager) = %d, want 1", got)
	}
	if got := r.Resolve("other"); got != 7 {
		t.Errorf("Resolve(other) = %d, want 7", got)
	}
}
