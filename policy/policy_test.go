package policy

import "testing"

func TestIsPrivileged(t *testing.T) {
	cases := []struct {
		id   string
		want bool
	}{
		{"manager_42", true},
		{"manager_", true},
		{"abc-123", false},
		{"", false},
		{"MANAGER_42", false},
	}
	for _, c := range cases {
		if got := IsPrivileged(c.id); got != c.want {
			t.Fatalf("IsPrivileged(%q) = %v, want %v", c.id, got, c.want)
		}
	}
}

func TestCustomPrefix(t *testing.T) {
	p := New("lead:")
	if !p.IsPrivileged("lead:7") {
		t.Fatalf("expected lead:7 to be privileged")
	}
	if p.IsPrivileged("manager_42") {
		t.Fatalf("manager_42 must not match a lead: policy")
	}
}

func TestEmptyPrefixFallsBackToDefault(t *testing.T) {
	p := New("")
	if !p.IsPrivileged("manager_42") {
		t.Fatalf("expected default prefix to apply")
	}
}
