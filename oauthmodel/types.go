package oauthmodel

// ResponseType represents the OAuth 2.0 response type sent to the authorize endpoint.
type ResponseType string

const (
	// CodeResponseType asks for an authorization code.
	// The authorization server answers with a redirect to
	// redirect_uri?code=...&usid=...
	CodeResponseType ResponseType = "code"
)

// GrantType represents the grant type sent to the token endpoint.
type GrantType string

const (
	// AuthorizationCodePKCEGrant exchanges an authorization code plus the PKCE
	// code_verifier for tokens. Public clients use this instead of the plain
	// authorization_code grant.
	// Token request includes: client_id, channel_id, code, code_verifier, redirect_uri, usid
	AuthorizationCodePKCEGrant GrantType = "authorization_code_pkce"

	// RefreshTokenGrant exchanges a refresh token for a new token set.
	// Token request includes: client_id, channel_id, refresh_token
	RefreshTokenGrant GrantType = "refresh_token"
)

// HintGuest asks the authorize endpoint for an anonymous shopper session.
const HintGuest = "guest"
