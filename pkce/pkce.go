// Package pkce implements the S256 Proof Key for Code Exchange helpers used by
// every authorization code flow in this module.
package pkce

import (
	"crypto/subtle"

	"golang.org/x/oauth2"
)

// NewVerifier returns a high entropy code verifier: 32 random bytes from
// crypto/rand, base64url encoded without padding (43 characters).
func NewVerifier() string {
	return oauth2.GenerateVerifier()
}

// Challenge derives the S256 code challenge, base64url(SHA256(verifier)) with
// the padding stripped.
func Challenge(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}

// Verify reports whether verifier produces challenge.
func Verify(verifier, challenge string) bool {
	if verifier == "" || challenge == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(Challenge(verifier)), []byte(challenge)) == 1
}
