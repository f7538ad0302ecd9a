package auth

import sessionerrors "github.com/jrsteele09/go-commerce-session/internal/errors"

// Errors callers can match with errors.Is.
var (
	ErrInvalidCredentials       = sessionerrors.ErrInvalidCredentials
	ErrAuthorization            = sessionerrors.ErrAuthorization
	ErrInvalidGrant             = sessionerrors.ErrInvalidGrant
	ErrNoRefreshToken           = sessionerrors.ErrNoRefreshToken
	ErrNoAccessToken            = sessionerrors.ErrNoAccessToken
	ErrMissingAuthorizationCode = sessionerrors.ErrMissingAuthorizationCode
	ErrUnexpectedResponse       = sessionerrors.ErrUnexpectedResponse
)
