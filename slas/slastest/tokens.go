package slastest

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// createAccessToken signs an access token for the grant.
func (s *Server) createAccessToken(g grant, lifetime time.Duration) (string, error) {
	now := time.Now()
	tokenType := "guest"
	if g.registered {
		tokenType = "registered"
	}
	claims := jwtlib.MapClaims{
		"iss":  "slas/test/" + s.OrganizationID, // The issuer of the token
		"aud":  s.ClientID,                      // The shopper application
		"sub":  g.customerID,                    // The shopper
		"usid": g.usid,                          // Shopper session id
		"ctx":  tokenType,                       // guest or registered
		"iat":  now.Unix(),
		"exp":  now.Add(lifetime).Unix(),
		"jti":  uuid.NewString(),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies a token issued by this server and returns its claims.
func (s *Server) ParseAccessToken(token string) (jwtlib.MapClaims, error) {
	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(token, claims, func(*jwtlib.Token) (any, error) {
		return s.signingKey, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}
