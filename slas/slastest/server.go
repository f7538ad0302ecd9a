// Package slastest provides an in-process Shopper Login server for tests.
//
// It implements the authorize, login, token and logout endpoints closely
// enough to drive package auth end to end: PKCE is verified, codes are single
// use, refresh tokens rotate, access tokens are HMAC signed JWTs and shopper
// passwords are bcrypt hashed. Call counters and fault switches let tests
// assert how many exchanges happened.
package slastest

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-commerce-session/oauthmodel"
	"github.com/jrsteele09/go-commerce-session/pkce"
	"github.com/jrsteele09/go-commerce-session/slas"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultOrganizationID = "f_ecom_zzte_053"
	DefaultClientID       = "test-shopper-client"
	DefaultSiteID         = "RefArch"
	DefaultRedirectURI    = "http://localhost:3000/callback"
	DefaultExpiresIn      = 1800

	refreshTokenLength = 32
)

// shopper is a registered customer account.
type shopper struct {
	customerID   string
	passwordHash string
}

// grant is what an authorization code or refresh token stands for.
type grant struct {
	customerID    string
	usid          string
	codeChallenge string
	redirectURI   string
	registered    bool
}

// Server is a fake Shopper Login service.
type Server struct {
	srv *httptest.Server

	OrganizationID string
	ClientID       string
	SiteID         string
	RedirectURI    string

	mu             sync.Mutex
	expiresIn      int
	shoppers       map[string]shopper
	codes          map[string]grant
	refreshTokens  map[string]grant
	revoked        map[string]bool
	failAuthorize  int
	failRefresh    bool
	tokenDelay     time.Duration
	calls          map[string]int
	lastLoginForm  url.Values
	lastAuthorizeQ url.Values
	signingKey     []byte
}

// New starts a Server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		OrganizationID: DefaultOrganizationID,
		ClientID:       DefaultClientID,
		SiteID:         DefaultSiteID,
		RedirectURI:    DefaultRedirectURI,
		expiresIn:      DefaultExpiresIn,
		shoppers:       make(map[string]shopper),
		codes:          make(map[string]grant),
		refreshTokens:  make(map[string]grant),
		revoked:        make(map[string]bool),
		calls:          make(map[string]int),
		signingKey:     []byte(uuid.NewString()),
	}

	root := "/shopper/auth/v1/organizations/{organizationId}/oauth2"
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+root+"/authorize", s.handleAuthorize)
	mux.HandleFunc("POST "+root+"/login", s.handleLogin)
	mux.HandleFunc("POST "+root+"/token", s.handleToken)
	mux.HandleFunc("GET "+root+"/logout", s.handleLogout)

	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the base URL of the server.
func (s *Server) URL() string {
	return s.srv.URL
}

// Config returns a client configuration pointing at the server.
func (s *Server) Config() slas.Config {
	return slas.Config{
		BaseURL:        s.srv.URL,
		ShortCode:      "test",
		OrganizationID: s.OrganizationID,
		ClientID:       s.ClientID,
		SiteID:         s.SiteID,
		RedirectURI:    s.RedirectURI,
		Timeout:        5 * time.Second,
	}
}

// AddShopper registers a customer account and returns its customer id.
func (s *Server) AddShopper(username, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("slastest: hash password: %v", err))
	}
	customerID := "registered-" + uuid.NewString()
	s.mu.Lock()
	s.shoppers[username] = shopper{customerID: customerID, passwordHash: string(hash)}
	s.mu.Unlock()
	return customerID
}

// SetExpiresIn sets the expires_in reported for new tokens.
func (s *Server) SetExpiresIn(seconds int) {
	s.mu.Lock()
	s.expiresIn = seconds
	s.mu.Unlock()
}

// FailAuthorize makes the authorize endpoint answer with status. Zero restores it.
func (s *Server) FailAuthorize(status int) {
	s.mu.Lock()
	s.failAuthorize = status
	s.mu.Unlock()
}

// FailRefresh makes every refresh_token grant fail with invalid_grant.
func (s *Server) FailRefresh(fail bool) {
	s.mu.Lock()
	s.failRefresh = fail
	s.mu.Unlock()
}

// SetTokenDelay holds every token request for d before answering.
func (s *Server) SetTokenDelay(d time.Duration) {
	s.mu.Lock()
	s.tokenDelay = d
	s.mu.Unlock()
}

// Calls returns how often an endpoint was hit. Token calls are counted per
// grant type as "token:<grant_type>" as well as under "token".
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

// LastLoginForm returns the form of the most recent login request.
func (s *Server) LastLoginForm() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastLoginForm
}

// LastAuthorizeQuery returns the query of the most recent authorize request.
func (s *Server) LastAuthorizeQuery() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuthorizeQ
}

// RefreshTokenRevoked reports whether logout revoked rt.
func (s *Server) RefreshTokenRevoked(rt string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[rt]
}

// ExpireRefreshTokens forgets every issued refresh token.
func (s *Server) ExpireRefreshTokens() {
	s.mu.Lock()
	s.refreshTokens = make(map[string]grant)
	s.mu.Unlock()
}

func (s *Server) count(endpoint string) {
	s.mu.Lock()
	s.calls[endpoint]++
	s.mu.Unlock()
}

func (s *Server) checkClient(r *http.Request, clientID, channelID string) bool {
	return r.PathValue("organizationId") == s.OrganizationID && clientID == s.ClientID && channelID == s.SiteID
}

func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	s.count("authorize")
	q := r.URL.Query()

	s.mu.Lock()
	s.lastAuthorizeQ = q
	failStatus := s.failAuthorize
	s.mu.Unlock()

	if failStatus != 0 {
		writeJSON(w, failStatus, map[string]string{"status_code": http.StatusText(failStatus), "message": "authorize unavailable"})
		return
	}
	if !s.checkClient(r, q.Get("client_id"), q.Get("channel_id")) || q.Get("organizationId") != s.OrganizationID {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_client", "error_description": "unknown client"})
		return
	}
	if q.Get("response_type") != string(oauthmodel.CodeResponseType) || q.Get("code_challenge") == "" || q.Get("redirect_uri") != s.RedirectURI {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}
	if q.Get("hint") != oauthmodel.HintGuest {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request", "error_description": "interactive login not supported"})
		return
	}

	usid := q.Get("usid")
	if usid == "" {
		usid = uuid.NewString()
	}
	s.redirectWithCode(w, r, grant{
		customerID:    "guest-" + uuid.NewString(),
		usid:          usid,
		codeChallenge: q.Get("code_challenge"),
		redirectURI:   q.Get("redirect_uri"),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.count("login")
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}
	form := r.PostForm

	s.mu.Lock()
	s.lastLoginForm = form
	s.mu.Unlock()

	if !s.checkClient(r, form.Get("client_id"), form.Get("channel_id")) || form.Get("code_challenge") == "" || form.Get("redirect_uri") != s.RedirectURI {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}

	username, password, ok := r.BasicAuth()
	s.mu.Lock()
	account, found := s.shoppers[username]
	s.mu.Unlock()
	if !ok || !found || bcrypt.CompareHashAndPassword([]byte(account.passwordHash), []byte(password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"status_code": "401 UNAUTHORIZED", "message": "Invalid credentials"})
		return
	}

	usid := form.Get("usid")
	if usid == "" {
		usid = uuid.NewString()
	}
	s.redirectWithCode(w, r, grant{
		customerID:    account.customerID,
		usid:          usid,
		codeChallenge: form.Get("code_challenge"),
		redirectURI:   form.Get("redirect_uri"),
		registered:    true,
	})
}

func (s *Server) redirectWithCode(w http.ResponseWriter, r *http.Request, g grant) {
	code := uuid.NewString()
	s.mu.Lock()
	s.codes[code] = g
	s.mu.Unlock()

	target, err := url.Parse(g.redirectURI)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}
	q := target.Query()
	q.Set("code", code)
	q.Set("usid", g.usid)
	target.RawQuery = q.Encode()
	http.Redirect(w, r, target.String(), http.StatusSeeOther)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	s.count("token")
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}
	form := r.PostForm
	grantType := form.Get("grant_type")
	s.count("token:" + grantType)

	s.mu.Lock()
	delay := s.tokenDelay
	s.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if !s.checkClient(r, form.Get("client_id"), form.Get("channel_id")) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_client"})
		return
	}

	switch oauthmodel.GrantType(grantType) {
	case oauthmodel.AuthorizationCodePKCEGrant:
		s.exchangeCode(w, form)
	case oauthmodel.RefreshTokenGrant:
		s.exchangeRefreshToken(w, form)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
	}
}

func (s *Server) exchangeCode(w http.ResponseWriter, form url.Values) {
	s.mu.Lock()
	g, ok := s.codes[form.Get("code")]
	delete(s.codes, form.Get("code"))
	s.mu.Unlock()

	switch {
	case !ok:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "unknown code"})
	case form.Get("redirect_uri") != g.redirectURI || form.Get("usid") != g.usid:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "redirect_uri or usid mismatch"})
	case !pkce.Verify(form.Get("code_verifier"), g.codeChallenge):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "code challenge failed"})
	default:
		s.issueTokens(w, g)
	}
}

func (s *Server) exchangeRefreshToken(w http.ResponseWriter, form url.Values) {
	rt := form.Get("refresh_token")

	s.mu.Lock()
	g, ok := s.refreshTokens[rt]
	fail := s.failRefresh
	if ok && !fail {
		delete(s.refreshTokens, rt)
	}
	s.mu.Unlock()

	if fail || !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "refresh token invalid"})
		return
	}
	s.issueTokens(w, g)
}

func (s *Server) issueTokens(w http.ResponseWriter, g grant) {
	s.mu.Lock()
	expiresIn := s.expiresIn
	s.mu.Unlock()

	accessToken, err := s.createAccessToken(g, time.Duration(expiresIn)*time.Second)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server_error"})
		return
	}
	refreshToken, err := newRefreshToken()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server_error"})
		return
	}

	s.mu.Lock()
	s.refreshTokens[refreshToken] = grant{customerID: g.customerID, usid: g.usid, registered: g.registered}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, oauthmodel.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		CustomerID:   g.customerID,
		ExpiresIn:    expiresIn,
		Usid:         g.usid,
		TokenType:    "BEARER",
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.count("logout")
	q := r.URL.Query()
	if !s.checkClient(r, q.Get("client_id"), q.Get("channel_id")) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_client"})
		return
	}
	const prefix = "Bearer "
	authz := r.Header.Get("Authorization")
	if len(authz) <= len(prefix) || authz[:len(prefix)] != prefix {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
		return
	}
	if _, err := s.ParseAccessToken(authz[len(prefix):]); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_token", "error_description": err.Error()})
		return
	}

	rt := q.Get("refresh_token")
	s.mu.Lock()
	delete(s.refreshTokens, rt)
	s.revoked[rt] = true
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{})
}

func newRefreshToken() (string, error) {
	b := make([]byte, refreshTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
