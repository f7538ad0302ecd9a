package config

import "time"

const (
	clientIDVar    = "SFCC_CLIENT_ID"
	orgIDVar       = "SFCC_ORG_ID"
	shortCodeVar   = "SFCC_SHORT_CODE"
	siteIDVar      = "SFCC_SITE_ID"
	baseURLVar     = "SFCC_BASE_URL"
	redirectURIVar = "APP_REDIRECT_URI"
	httpTimeoutVar = "HTTP_TIMEOUT"
	authTimeoutVar = "AUTH_TIMEOUT"
)

// CommerceConfig identifies the commerce tenant and the shopper application.
type CommerceConfig interface {
	GetClientID() string
	GetOrganizationID() string
	GetShortCode() string
	GetSiteID() string
	GetBaseURL() string
	GetRedirectURI() string
	GetHTTPTimeout() time.Duration
	GetAuthTimeout() time.Duration
}

type Commerce struct{}

var _ CommerceConfig = Commerce{}

func (Commerce) GetClientID() string {
	return GetEnv(clientIDVar, "")
}

func (Commerce) GetOrganizationID() string {
	return GetEnv(orgIDVar, "")
}

func (Commerce) GetShortCode() string {
	return GetEnv(shortCodeVar, "")
}

func (Commerce) GetSiteID() string {
	return GetEnv(siteIDVar, "RefArch")
}

// GetBaseURL overrides the URL derived from the short code (e.g. for a proxy).
func (Commerce) GetBaseURL() string {
	return GetEnv(baseURLVar, "")
}

func (Commerce) GetRedirectURI() string {
	return GetEnv(redirectURIVar, "http://localhost:3000/callback")
}

func (Commerce) GetHTTPTimeout() time.Duration {
	return GetEnvDuration(httpTimeoutVar, 30*time.Second)
}

func (Commerce) GetAuthTimeout() time.Duration {
	return GetEnvDuration(authTimeoutVar, 30*time.Second)
}
