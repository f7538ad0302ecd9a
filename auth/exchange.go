package auth

import (
	"context"

	"github.com/jrsteele09/go-commerce-session/oauthmodel"
	"github.com/jrsteele09/go-commerce-session/pkce"
	"github.com/jrsteele09/go-commerce-session/session"
	"github.com/jrsteele09/go-commerce-session/slas"
	"github.com/pkg/errors"
)

// exchangeCode runs a PKCE authorization code flow. obtain sends the
// challenge to the authorize or login endpoint and returns the code from the
// redirect; the code is then redeemed at the token endpoint.
func (c *Client) exchangeCode(ctx context.Context, obtain func(challenge string) (slas.AuthorizationCode, error)) (*oauthmodel.TokenResponse, error) {
	verifier := pkce.NewVerifier()

	code, err := obtain(pkce.Challenge(verifier))
	if err != nil {
		return nil, err
	}

	tokens, err := c.transport.Token(ctx, oauthmodel.TokenRequest{
		GrantType:    oauthmodel.AuthorizationCodePKCEGrant,
		Code:         code.Code,
		CodeVerifier: verifier,
		Usid:         code.Usid,
	})
	if err != nil {
		return nil, errors.Wrap(err, "code exchange")
	}
	return tokens, nil
}

// persist stores a token set through the session manager.
func (c *Client) persist(ctx context.Context, tokens *oauthmodel.TokenResponse) error {
	sess := session.Session{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		CustomerID:   tokens.CustomerID,
		Usid:         tokens.Usid,
		TokenExpiry:  session.ExpiryFrom(c.nowTime(), tokens.ExpiresIn),
	}
	if err := c.sessions.SaveTokens(ctx, sess); err != nil {
		return errors.Wrap(err, "[Client.persist]")
	}
	return nil
}
