package oauthmodel

import (
	"net/url"
)

// TokenRequest holds parameters for the token request.
// This represents the form body POSTed to the /oauth2/token endpoint.
type TokenRequest struct {
	// ClientID identifies the shopper application.
	// Required: Yes (for all grant types)
	ClientID string

	// ChannelID is the storefront site.
	// Required: Yes (for all grant types)
	ChannelID string

	// GrantType is authorization_code_pkce or refresh_token.
	GrantType GrantType

	// Code is the authorization code read from the authorize or login redirect.
	// Required: Yes (only for authorization_code_pkce)
	// Usage: Exchanged once for tokens, then becomes invalid
	Code string

	// CodeVerifier is the PKCE code verifier that matches the code_challenge.
	// Required: Yes (only for authorization_code_pkce)
	// Validation: Server compares SHA256(code_verifier) with stored code_challenge
	CodeVerifier string

	// RedirectURI must equal the redirect_uri of the authorization request.
	// Required: Yes (only for authorization_code_pkce)
	RedirectURI string

	// Usid is the shopper session id returned with the code.
	// Required: Yes (only for authorization_code_pkce)
	Usid string

	// RefreshToken is used to obtain new access tokens without re-authentication.
	// Required: Yes (only for refresh_token)
	RefreshToken string
}

// Form encodes the request, emitting only the fields that belong to its grant type.
func (r TokenRequest) Form() url.Values {
	v := url.Values{}
	v.Set("client_id", r.ClientID)
	v.Set("channel_id", r.ChannelID)
	v.Set("grant_type", string(r.GrantType))
	switch r.GrantType {
	case AuthorizationCodePKCEGrant:
		v.Set("code", r.Code)
		v.Set("code_verifier", r.CodeVerifier)
		v.Set("redirect_uri", r.RedirectURI)
		v.Set("usid", r.Usid)
	case RefreshTokenGrant:
		v.Set("refresh_token", r.RefreshToken)
	}
	return v
}
