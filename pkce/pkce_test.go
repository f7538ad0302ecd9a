package pkce_test

import (
	"strings"
	"testing"

	"github.com/jrsteele09/go-commerce-session/pkce"
	"github.com/stretchr/testify/require"
)

func TestChallengeKnownAnswers(t *testing.T) {
	tests := []struct {
		verifier  string
		challenge string
	}{
		{"test-verifier-1234567890", "Gx2LV1Kvw_rrHrk344X_Qz0hqvHkKf-7XJ12eAI03T4"},
		// RFC 7636 appendix B
		{"dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk", "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"},
	}
	for _, tt := range tests {
		t.Run(tt.verifier, func(t *testing.T) {
			got := pkce.Challenge(tt.verifier)
			require.Equal(t, tt.challenge, got)
			require.NotContains(t, got, "+")
			require.NotContains(t, got, "/")
			require.NotContains(t, got, "=")
			require.True(t, pkce.Verify(tt.verifier, got))
		})
	}
}

func TestNewVerifier(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		v := pkce.NewVerifier()
		require.Len(t, v, 43)
		require.Equal(t, -1, strings.IndexFunc(v, func(r rune) bool {
			return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_')
		}), "verifier %q must only use URL safe characters", v)
		_, dup := seen[v]
		require.False(t, dup)
		seen[v] = struct{}{}

		c := pkce.Challenge(v)
		require.Len(t, c, 43)
		require.NotContains(t, c, "=")
	}
}

func TestVerifyRejects(t *testing.T) {
	require.False(t, pkce.Verify("", ""))
	require.False(t, pkce.Verify("test-verifier-1234567890", "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"))
	require.False(t, pkce.Verify("test-verifier-1234567890", ""))
}
