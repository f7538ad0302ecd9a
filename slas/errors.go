package slas

import (
	"fmt"
	"net/http"

	sessionerrors "github.com/jrsteele09/go-commerce-session/internal/errors"
	"github.com/jrsteele09/go-commerce-session/oauthmodel"
)

// ResponseError is a non-successful answer from the authorization server.
type ResponseError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
}

func newResponseError(op string, status int, body []byte) *ResponseError {
	eb := oauthmodel.DecodeErrorBody(body)
	return &ResponseError{
		Op:         op,
		StatusCode: status,
		Code:       eb.Code,
		Message:    eb.Message,
	}
}

func (e *ResponseError) Error() string {
	msg := fmt.Sprintf("slas %s: status %d", e.Op, e.StatusCode)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is maps server answers onto the shared sentinels so callers can use errors.Is.
func (e *ResponseError) Is(target error) bool {
	switch target {
	case sessionerrors.ErrInvalidCredentials:
		return e.Op == "login" && (e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
	case sessionerrors.ErrInvalidGrant:
		return e.Code == "invalid_grant" || (e.Op == "token" && e.StatusCode == http.StatusUnauthorized)
	case sessionerrors.ErrAuthorization:
		return e.Op == "authorize" || e.Op == "login"
	}
	return false
}
