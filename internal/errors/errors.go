package errors

import (
	"errors"
	"fmt"
)

// Common error types for the shopper session library
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthorization      = errors.New("authorization failed")

	// Token errors
	ErrInvalidGrant   = errors.New("invalid grant")
	ErrNoRefreshToken = errors.New("no refresh token available")
	ErrNoAccessToken  = errors.New("no access token available after authentication")

	// Authorization server response errors
	ErrMissingAuthorizationCode = errors.New("authorization code missing from redirect")
	ErrUnexpectedResponse       = errors.New("unexpected response from authorization server")

	// Storage errors
	ErrStorageUnavailable = errors.New("session storage unavailable")
	ErrCorruptSession     = errors.New("stored session is corrupt")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
