package auth

import (
	"context"
	"net/http"

	jwtlib "github.com/golang-jwt/jwt/v5"
	sessionerrors "github.com/jrsteele09/go-commerce-session/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// tokenSource adapts Client to oauth2.TokenSource. It does not cache; every
// Token call goes through EnsureAuthenticated so logins and logouts are
// picked up immediately.
type tokenSource struct {
	ctx    context.Context
	client *Client
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	if err := ts.client.EnsureAuthenticated(ts.ctx); err != nil {
		return nil, err
	}
	sess := ts.client.sessions.GetTokens(ts.ctx)
	if sess == nil || !sess.ValidAt(ts.client.sessions.Now()) {
		return nil, sessionerrors.ErrNoAccessToken
	}
	return &oauth2.Token{
		AccessToken: sess.AccessToken,
		TokenType:   "Bearer",
		Expiry:      sess.Expiry(),
	}, nil
}

// TokenSource returns a token source for commerce API calls made with ctx.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return tokenSource{ctx: ctx, client: c}
}

// HTTPClient returns an HTTP client that authorizes every request with the
// current shopper token.
func (c *Client) HTTPClient(ctx context.Context) *http.Client {
	var base http.RoundTripper
	if hc, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok && hc != nil {
		base = hc.Transport
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: c.TokenSource(ctx),
			Base:   base,
		},
	}
}

// AccessTokenClaims decodes the claims of the stored access token without
// verifying its signature. It is meant for diagnostics only.
func (c *Client) AccessTokenClaims(ctx context.Context) (jwtlib.MapClaims, error) {
	sess := c.sessions.GetTokens(ctx)
	if sess == nil || sess.AccessToken == "" {
		return nil, sessionerrors.ErrNoAccessToken
	}
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(sess.AccessToken, claims); err != nil {
		return nil, errors.Wrap(err, "[Client.AccessTokenClaims] parse")
	}
	return claims, nil
}
