package config

import "testing"

func TestEnvBool(t *testing.T) {
	tests := []struct {
		val  string
		def  bool
		want bool
	}{
		{"1", false, true},
		{"true", false, true},
		{"YES", false, true},
		{"0", true, false},
		{"no", true, false},
		{"", true, true},
		{"", false, false},
		{"garbage", true, true},
	}
	for _, tt := range tests {
		t.Setenv("TEST_BOOL", tt.val)
		if got := envBool("TEST_BOOL", tt.def); got != tt.want {
			t.Fatalf("envBool(%q, %v) = %v, want %v", tt.val, tt.def, got, tt.want)
		}
	}
}

func TestRoleClaimFallbackDefaults(t *testing.T) {
	t.Setenv("AUTH_ROLE_CLAIM_FALLBACK", "")

	t.Setenv("MODE", "offline")
	if !FromEnv().RoleClaimFallback {
		t.Fatalf("offline mode should default to claim fallback on")
	}

	t.Setenv("MODE", "online")
	if FromEnv().RoleClaimFallback {
		t.Fatalf("online mode should default to claim fallback off")
	}

	t.Setenv("AUTH_ROLE_CLAIM_FALLBACK", "true")
	if !FromEnv().RoleClaimFallback {
		t.Fatalf("explicit override ignored")
	}
}
