// Package slas talks to the Shopper Login and API Access Service, the
// authorization server of the commerce platform. It performs single HTTP
// exchanges only; deciding when to call them belongs to package auth.
package slas

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sessionerrors "github.com/jrsteele09/go-commerce-session/internal/errors"
	"github.com/jrsteele09/go-commerce-session/oauthmodel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	contentTypeForm = "application/x-www-form-urlencoded"

	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
)

// Config identifies the commerce tenant and shopper application.
type Config struct {
	// BaseURL overrides https://{ShortCode}.api.commercecloud.salesforce.com.
	BaseURL string

	ShortCode      string
	OrganizationID string
	ClientID       string

	// SiteID is sent as channel_id.
	SiteID string

	// RedirectURI is registered for the client. It is never requested.
	RedirectURI string

	// Timeout bounds every HTTP exchange. Defaults to 30s.
	Timeout time.Duration
}

func (c Config) validate() error {
	switch {
	case c.BaseURL == "" && c.ShortCode == "":
		return errors.New("short code or base URL is required")
	case c.OrganizationID == "":
		return errors.New("organization id is required")
	case c.ClientID == "":
		return errors.New("client id is required")
	case c.SiteID == "":
		return errors.New("site id is required")
	case c.RedirectURI == "":
		return errors.New("redirect URI is required")
	}
	return nil
}

// Endpoints are the authorization server URLs for one organization.
type Endpoints struct {
	oauth2.Endpoint
	LoginURL  string
	LogoutURL string
}

// EndpointsFor builds the endpoint set below baseURL.
func EndpointsFor(baseURL, organizationID string) Endpoints {
	root := strings.TrimRight(baseURL, "/") + "/shopper/auth/v1/organizations/" + url.PathEscape(organizationID) + "/oauth2"
	return Endpoints{
		Endpoint: oauth2.Endpoint{
			AuthURL:   root + "/authorize",
			TokenURL:  root + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		LoginURL:  root + "/login",
		LogoutURL: root + "/logout",
	}
}

// AuthorizationCode is what the authorize and login endpoints hand back
// through their redirect.
type AuthorizationCode struct {
	Code string
	Usid string
}

// Client performs the individual Shopper Login exchanges.
type Client struct {
	cfg        Config
	endpoints  Endpoints
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient supplies the underlying HTTP client. Its redirect policy is
// replaced so redirects are never followed.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			clone := *hc
			c.httpClient = &clone
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for cfg.
func New(cfg Config, options ...Option) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "[slas.New] invalid config")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("https://%s.api.commercecloud.salesforce.com", cfg.ShortCode)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	c := &Client{
		cfg:        cfg,
		endpoints:  EndpointsFor(cfg.BaseURL, cfg.OrganizationID),
		httpClient: &http.Client{},
		logger:     log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.httpClient.Timeout == 0 {
		c.httpClient.Timeout = cfg.Timeout
	}
	// The redirect target is the app's callback URI, which does not exist for
	// a native client. The code is read from the Location header instead.
	c.httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return c, nil
}

// Endpoints returns the authorization server URLs in use.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// Authorize starts an authorization code flow and returns the code from the
// redirect. hint is "guest" for anonymous sessions; usid may be empty.
func (c *Client) Authorize(ctx context.Context, codeChallenge, hint, usid string) (AuthorizationCode, error) {
	params := oauthmodel.AuthorizeParameters{
		ClientID:       c.cfg.ClientID,
		ChannelID:      c.cfg.SiteID,
		CodeChallenge:  codeChallenge,
		OrganizationID: c.cfg.OrganizationID,
		RedirectURI:    c.cfg.RedirectURI,
		ResponseType:   oauthmodel.CodeResponseType,
		Hint:           hint,
		Usid:           usid,
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.AuthURL+"?"+params.Values().Encode(), nil)
	if err != nil {
		return AuthorizationCode{}, errors.Wrap(err, "[Client.Authorize] new request")
	}
	return c.doRedirect(req, "authorize")
}

// Login authenticates a registered shopper with HTTP Basic credentials and
// returns an authorization code bound to usid.
func (c *Client) Login(ctx context.Context, username, password, codeChallenge, usid string) (AuthorizationCode, error) {
	form := oauthmodel.LoginParameters{
		ClientID:      c.cfg.ClientID,
		ChannelID:     c.cfg.SiteID,
		CodeChallenge: codeChallenge,
		RedirectURI:   c.cfg.RedirectURI,
		Usid:          usid,
	}.Form()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.LoginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return AuthorizationCode{}, errors.Wrap(err, "[Client.Login] new request")
	}
	req.Header.Set("Content-Type", contentTypeForm)
	req.SetBasicAuth(username, password)
	return c.doRedirect(req, "login")
}

// Token posts a token request and decodes the token set.
func (c *Client) Token(ctx context.Context, tr oauthmodel.TokenRequest) (*oauthmodel.TokenResponse, error) {
	tr.ClientID = c.cfg.ClientID
	tr.ChannelID = c.cfg.SiteID
	if tr.GrantType == oauthmodel.AuthorizationCodePKCEGrant && tr.RedirectURI == "" {
		tr.RedirectURI = c.cfg.RedirectURI
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.TokenURL, strings.NewReader(tr.Form().Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Token] new request")
	}
	req.Header.Set("Content-Type", contentTypeForm)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Token] request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Token] read body")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newResponseError("token", resp.StatusCode, body)
	}

	tokens, err := oauthmodel.DecodeTokenResponse(body)
	if err != nil {
		return nil, sessionerrors.Wrapf(sessionerrors.ErrUnexpectedResponse, "[Client.Token] decode: %v", err)
	}
	if err := tokens.Validate(); err != nil {
		return nil, sessionerrors.Wrapf(sessionerrors.ErrUnexpectedResponse, "[Client.Token] %v", err)
	}
	c.logger.Debug().
		Str("grant_type", string(tr.GrantType)).
		Str("customer_id", tokens.CustomerID).
		Int("expires_in", tokens.ExpiresIn).
		Msg("Token issued")
	return tokens, nil
}

// Logout revokes refreshToken on the server. The access token authorizes the call.
func (c *Client) Logout(ctx context.Context, accessToken, refreshToken string) error {
	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("channel_id", c.cfg.SiteID)
	q.Set("refresh_token", refreshToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.LogoutURL+"?"+q.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, "[Client.Logout] new request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "[Client.Logout] request failed")
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newResponseError("logout", resp.StatusCode, body)
	}
	return nil
}

// doRedirect sends req and extracts code and usid from the redirect Location.
func (c *Client) doRedirect(req *http.Request, op string) (AuthorizationCode, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return AuthorizationCode{}, errors.Wrapf(err, "[Client.%s] request failed", op)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode < 300 || resp.StatusCode > 399 {
		return AuthorizationCode{}, newResponseError(op, resp.StatusCode, body)
	}

	location, err := resp.Location()
	if err != nil {
		return AuthorizationCode{}, sessionerrors.Wrapf(sessionerrors.ErrMissingAuthorizationCode, "[Client.%s] no Location header: %v", op, err)
	}
	return codeFromRedirect(op, resp.StatusCode, location)
}

func codeFromRedirect(op string, status int, location *url.URL) (AuthorizationCode, error) {
	q := location.Query()
	if errCode := q.Get("error"); errCode != "" {
		return AuthorizationCode{}, &ResponseError{
			Op:         op,
			StatusCode: status,
			Code:       errCode,
			Message:    q.Get("error_description"),
		}
	}
	code := q.Get("code")
	if code == "" {
		return AuthorizationCode{}, sessionerrors.Wrapf(sessionerrors.ErrMissingAuthorizationCode, "[Client.%s] redirect to %s%s", op, location.Host, location.Path)
	}
	return AuthorizationCode{Code: code, Usid: q.Get("usid")}, nil
}
