// Package auth keeps a shopper session authenticated against the Shopper
// Login service. It decides whether the stored token can be reused, refreshed
// or has to be re-acquired, and collapses concurrent acquisitions into one.
package auth

import (
	"context"
	"time"

	sessionerrors "github.com/jrsteele09/go-commerce-session/internal/errors"
	"github.com/jrsteele09/go-commerce-session/oauthmodel"
	"github.com/jrsteele09/go-commerce-session/session"
	"github.com/jrsteele09/go-commerce-session/slas"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	authenticateKey    = "authenticate"
	defaultAuthTimeout = 30 * time.Second
)

// Transport is the set of authorization server exchanges the client needs.
// *slas.Client implements it.
type Transport interface {
	Authorize(ctx context.Context, codeChallenge, hint, usid string) (slas.AuthorizationCode, error)
	Login(ctx context.Context, username, password, codeChallenge, usid string) (slas.AuthorizationCode, error)
	Token(ctx context.Context, tr oauthmodel.TokenRequest) (*oauthmodel.TokenResponse, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
}

// Client orchestrates token acquisition for one shopper session.
type Client struct {
	transport   Transport
	sessions    *session.Manager
	flight      singleflight.Group
	authTimeout time.Duration
	nowTime     func() time.Time
	logger      zerolog.Logger
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Client) {
		c.nowTime = nowFunc
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithAuthTimeout bounds a background authentication attempt.
func WithAuthTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.authTimeout = d
		}
	}
}

// New creates a Client. The manager's clock is used unless WithNowTime is given.
func New(transport Transport, manager *session.Manager, options ...Option) (*Client, error) {
	if transport == nil {
		return nil, errors.New("[auth.New] transport is required")
	}
	if manager == nil {
		return nil, errors.New("[auth.New] session manager is required")
	}
	c := &Client{
		transport:   transport,
		sessions:    manager,
		authTimeout: defaultAuthTimeout,
		nowTime:     manager.Now,
		logger:      log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// EnsureAuthenticated returns once a valid access token is stored, or with
// the error that prevented it. A valid token costs one storage read.
//
// Concurrent callers share a single attempt and all receive its result. The
// attempt itself is not cancelled by any one caller's context; it is bounded
// by the auth timeout instead.
func (c *Client) EnsureAuthenticated(ctx context.Context) error {
	if c.sessions.IsTokenValid(ctx) {
		return nil
	}

	ch := c.flight.DoChan(authenticateKey, func() (interface{}, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.authTimeout)
		defer cancel()
		return nil, c.authenticate(flightCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		// The flight's save may have been dropped or overwritten by a
		// concurrent login or logout.
		if !c.sessions.IsTokenValid(ctx) {
			return errors.Wrap(sessionerrors.ErrNoAccessToken, "[Client.EnsureAuthenticated] no valid token stored")
		}
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "[Client.EnsureAuthenticated] waiting for authentication")
	}
}

// authenticate refreshes the stored session if it can, otherwise starts a
// new guest session.
func (c *Client) authenticate(ctx context.Context) error {
	// Another flight may have finished between the caller's check and this one.
	if c.sessions.IsTokenValid(ctx) {
		return nil
	}

	if sess := c.sessions.GetTokens(ctx); sess != nil && sess.RefreshToken != "" {
		err := c.refreshAccessToken(ctx, sess.RefreshToken)
		if err == nil {
			return nil
		}
		c.logger.Warn().Err(err).Str("customer_id", sess.CustomerID).Msg("Token refresh failed, starting guest session")
		c.sessions.ClearTokens(ctx)
	}

	if err := c.AuthenticateAsGuest(ctx); err != nil {
		return errors.Wrap(err, "[Client.authenticate] guest login")
	}
	return nil
}

// AuthenticateAsGuest starts a new anonymous session with a new session id.
func (c *Client) AuthenticateAsGuest(ctx context.Context) error {
	tokens, err := c.exchangeCode(ctx, func(challenge string) (slas.AuthorizationCode, error) {
		return c.transport.Authorize(ctx, challenge, oauthmodel.HintGuest, "")
	})
	if err != nil {
		return errors.Wrap(err, "[Client.AuthenticateAsGuest]")
	}
	return c.persist(ctx, tokens)
}

// AuthenticateCustomer logs a registered shopper in, keeping the session id of
// the current guest session so the basket carries over. Rejected credentials
// are returned as is and never retried.
func (c *Client) AuthenticateCustomer(ctx context.Context, username, password string) error {
	if err := c.EnsureAuthenticated(ctx); err != nil {
		return errors.Wrap(err, "[Client.AuthenticateCustomer] guest session")
	}
	usid := c.GetUsid(ctx)

	tokens, err := c.exchangeCode(ctx, func(challenge string) (slas.AuthorizationCode, error) {
		return c.transport.Login(ctx, username, password, challenge, usid)
	})
	if err != nil {
		return errors.Wrap(err, "[Client.AuthenticateCustomer]")
	}
	if err := c.persist(ctx, tokens); err != nil {
		return err
	}
	c.logger.Info().Str("customer_id", tokens.CustomerID).Msg("Customer logged in")
	return nil
}

// refreshAccessToken exchanges refreshToken for a new token set.
func (c *Client) refreshAccessToken(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return sessionerrors.ErrNoRefreshToken
	}
	tokens, err := c.transport.Token(ctx, oauthmodel.TokenRequest{
		GrantType:    oauthmodel.RefreshTokenGrant,
		RefreshToken: refreshToken,
	})
	if err != nil {
		return errors.Wrap(err, "[Client.refreshAccessToken]")
	}
	return c.persist(ctx, tokens)
}

// Logout revokes the current refresh token and replaces the session with a
// new guest session. Revocation is best effort.
func (c *Client) Logout(ctx context.Context) error {
	if sess := c.sessions.GetTokens(ctx); sess != nil && sess.RefreshToken != "" {
		if err := c.transport.Logout(ctx, sess.AccessToken, sess.RefreshToken); err != nil {
			c.logger.Warn().Err(err).Str("customer_id", sess.CustomerID).Msg("Error revoking refresh token")
		}
	}
	c.sessions.ClearTokens(ctx)

	if err := c.AuthenticateAsGuest(ctx); err != nil {
		return errors.Wrap(err, "[Client.Logout]")
	}
	return nil
}

// ClearAllAuthentication drops the stored session without contacting the server.
func (c *Client) ClearAllAuthentication(ctx context.Context) {
	c.sessions.ClearTokens(ctx)
}

// IsAuthenticated reports whether a valid access token is stored.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	return c.sessions.IsTokenValid(ctx)
}

// GetCustomerID returns the current principal, or "" without a session.
func (c *Client) GetCustomerID(ctx context.Context) string {
	if sess := c.sessions.GetTokens(ctx); sess != nil {
		return sess.CustomerID
	}
	return ""
}

// GetUsid returns the current session id, or "" without a session.
func (c *Client) GetUsid(ctx context.Context) string {
	if sess := c.sessions.GetTokens(ctx); sess != nil {
		return sess.Usid
	}
	return ""
}

// GetAuthToken returns a valid access token, authenticating first if needed.
func (c *Client) GetAuthToken(ctx context.Context) (string, error) {
	if err := c.EnsureAuthenticated(ctx); err != nil {
		return "", err
	}
	sess := c.sessions.GetTokens(ctx)
	if sess == nil || !sess.ValidAt(c.sessions.Now()) {
		return "", sessionerrors.ErrNoAccessToken
	}
	return sess.AccessToken, nil
}
