package oauthmodel

import (
	"net/url"
)

// AuthorizeParameters holds the query parameters of the authorize request.
type AuthorizeParameters struct {
	// ClientID identifies the shopper application.
	// Required: Yes
	// Example: "da422690-7800-41d1-8ee4-3ce983961078"
	ClientID string

	// ChannelID is the storefront site the session belongs to.
	// Required: Yes
	// Example: "RefArch"
	ChannelID string

	// CodeChallenge is base64url(SHA256(code_verifier)) without padding.
	// Required: Yes
	CodeChallenge string

	// OrganizationID is the commerce tenant.
	// Required: Yes
	// Wire name: organizationId
	OrganizationID string

	// RedirectURI receives the code. The client never follows the redirect, it
	// only reads the code and usid out of the Location header.
	// Required: Yes
	RedirectURI string

	// ResponseType is always "code".
	ResponseType ResponseType

	// Hint selects the login flavour. "guest" for anonymous shoppers.
	// Required: No
	Hint string

	// Usid carries an existing shopper session into the new authorization.
	// Required: No
	Usid string
}

// Values encodes the parameters as the authorize query string.
func (p AuthorizeParameters) Values() url.Values {
	v := url.Values{}
	v.Set("client_id", p.ClientID)
	v.Set("channel_id", p.ChannelID)
	v.Set("code_challenge", p.CodeChallenge)
	v.Set("organizationId", p.OrganizationID)
	v.Set("redirect_uri", p.RedirectURI)
	responseType := p.ResponseType
	if responseType == "" {
		responseType = CodeResponseType
	}
	v.Set("response_type", string(responseType))
	if p.Hint != "" {
		v.Set("hint", p.Hint)
	}
	if p.Usid != "" {
		v.Set("usid", p.Usid)
	}
	return v
}

// LoginParameters holds the form body of the registered shopper login request.
// Credentials travel in the Basic Authorization header, not in the form.
type LoginParameters struct {
	ClientID      string
	ChannelID     string
	CodeChallenge string
	RedirectURI   string

	// Usid binds the issued code to the current guest session so the basket
	// carries over to the registered shopper.
	Usid string
}

// Form encodes the login request body.
func (p LoginParameters) Form() url.Values {
	v := url.Values{}
	v.Set("redirect_uri", p.RedirectURI)
	v.Set("client_id", p.ClientID)
	v.Set("code_challenge", p.CodeChallenge)
	v.Set("channel_id", p.ChannelID)
	if p.Usid != "" {
		v.Set("usid", p.Usid)
	}
	return v
}
