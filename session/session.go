package session

import (
	"context"
	"time"
)

// ExpirySafetyMargin is subtracted from the server reported lifetime so a token
// never expires while a request carrying it is in flight.
const ExpirySafetyMargin = 300 * time.Second

// DefaultKey is the storage key the session record is kept under.
const DefaultKey = "commerce.session"

// Session is the persisted credential record for the current shopper.
// There is exactly one live Session per process; it is either empty or has all
// five fields populated.
type Session struct {
	// AccessToken is the bearer token sent with commerce API calls. Opaque to the client.
	AccessToken string `json:"access_token"`

	// RefreshToken mints new access tokens without re-authenticating.
	RefreshToken string `json:"refresh_token"`

	// CustomerID identifies the current principal, guest or registered.
	CustomerID string `json:"customer_id"`

	// Usid is the server correlated session id. It is threaded through
	// authorization requests so the basket survives a guest to registered login.
	Usid string `json:"usid"`

	// TokenExpiry is the epoch millisecond timestamp after which AccessToken
	// must not be used. It already has ExpirySafetyMargin applied.
	TokenExpiry int64 `json:"token_expiry"`
}

// IsZero reports whether the session is the empty (logged out) record.
func (s Session) IsZero() bool {
	return s == Session{}
}

// Complete reports whether every field of the record is populated.
func (s Session) Complete() bool {
	return s.AccessToken != "" && s.RefreshToken != "" && s.CustomerID != "" && s.Usid != "" && s.TokenExpiry != 0
}

// Expiry returns TokenExpiry as a time.Time.
func (s Session) Expiry() time.Time {
	if s.TokenExpiry == 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.TokenExpiry)
}

// ValidAt reports whether the access token may be used at the given instant.
func (s Session) ValidAt(now time.Time) bool {
	return s.AccessToken != "" && s.TokenExpiry != 0 && now.UnixMilli() < s.TokenExpiry
}

// ExpiryFrom computes the TokenExpiry for a token issued at now with a server
// reported lifetime of expiresIn seconds.
func ExpiryFrom(now time.Time, expiresIn int) int64 {
	lifetime := time.Duration(expiresIn)*time.Second - ExpirySafetyMargin
	return now.Add(lifetime).UnixMilli()
}

// Storage is the durable key/value substrate sessions are persisted in.
// Implementations need no locking beyond what keeps a single call atomic;
// Manager serializes writers.
type Storage interface {
	// Get returns the bytes stored under key. found is false when the key does
	// not exist, which is not an error.
	Get(ctx context.Context, key string) (data []byte, found bool, err error)

	// Set replaces the bytes stored under key.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
