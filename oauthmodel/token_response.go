package oauthmodel

import (
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/jrsteele09/go-commerce-session/session"
	"github.com/tidwall/gjson"
)

var (
	ErrMissingAccessToken  = errors.New("token response has no access_token")
	ErrMissingRefreshToken = errors.New("token response has no refresh_token")
	ErrMissingCustomerID   = errors.New("token response has no customer_id")
	ErrMissingUsid         = errors.New("token response has no usid")
	ErrInvalidExpiresIn    = errors.New("token response expires_in does not exceed the expiry safety margin")
)

// TokenResponse is the JSON body returned by the token endpoint for both
// grant types.
type TokenResponse struct {
	// AccessToken is the bearer token for commerce API calls.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	AccessToken string `json:"access_token"`

	// RefreshToken mints new access tokens with grant_type=refresh_token.
	RefreshToken string `json:"refresh_token"`

	// CustomerID identifies the shopper. A guest login yields a new anonymous id;
	// a registered login yields the customer's id.
	CustomerID string `json:"customer_id"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// Example: 1800
	ExpiresIn int `json:"expires_in"`

	// Usid is the shopper session id.
	Usid string `json:"usid"`

	// IDToken is returned by some configurations. Unused by the client.
	IDToken string `json:"id_token,omitempty"`

	// TokenType is "BEARER".
	TokenType string `json:"token_type,omitempty"`

	// EncUserID is the encrypted user id returned for registered shoppers.
	EncUserID string `json:"enc_user_id,omitempty"`
}

// DecodeTokenResponse parses a token endpoint body.
func DecodeTokenResponse(body []byte) (*TokenResponse, error) {
	var tr TokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// Validate checks the fields the session record depends on. A lifetime at or
// below session.ExpirySafetyMargin would be stored already expired.
func (tr *TokenResponse) Validate() error {
	switch {
	case tr.AccessToken == "":
		return ErrMissingAccessToken
	case tr.RefreshToken == "":
		return ErrMissingRefreshToken
	case tr.CustomerID == "":
		return ErrMissingCustomerID
	case tr.Usid == "":
		return ErrMissingUsid
	case time.Duration(tr.ExpiresIn)*time.Second <= session.ExpirySafetyMargin:
		return ErrInvalidExpiresIn
	}
	return nil
}

// ErrorBody is the error payload of the authorization server. It arrives either
// in OAuth form {"error","error_description"} or in the commerce API form
// {"status_code","message"}.
type ErrorBody struct {
	Code    string
	Message string
}

// DecodeErrorBody extracts whatever error fields are present. Unknown or
// non-JSON bodies produce an empty ErrorBody.
func DecodeErrorBody(body []byte) ErrorBody {
	if !gjson.ValidBytes(body) {
		return ErrorBody{}
	}
	res := gjson.GetManyBytes(body, "error", "error_description", "status_code", "message", "title", "detail")
	eb := ErrorBody{
		Code:    firstNonEmpty(res[0].String(), res[2].String(), res[4].String()),
		Message: firstNonEmpty(res[1].String(), res[3].String(), res[5].String()),
	}
	return eb
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
