// Package auth implements the wallet sign-in flow against the statistics
// authentication backend: nonce, personal signature, bearer token.
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/worldland/netstats/internal/logs"
	"github.com/worldland/netstats/internal/statsapi"
)

// Backend paths
const (
	PathFindUser   = "auth/user/find"
	PathCreateUser = "auth/user/create"
	PathVerify     = "auth/user/verify"
	PathRefresh    = "auth/refresh"
)

var logger = logs.Logger("auth")

// Backend posts JSON to the authentication service
type Backend interface {
	PostJSON(ctx context.Context, path string, payload interface{}, result interface{}) error
}

// Session is the authenticated state kept after a successful login
type Session struct {
	Address      string    `json:"address"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// Valid reports whether the session holds a token that has not expired
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

type nonceResponse struct {
	Nonce string `json:"nonce"`
}

type tokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Authenticator runs the sign-in flow. It never retries a failed step.
type Authenticator struct {
	backend Backend
	wallet  WalletProvider
	now     func() time.Time
}

// NewAuthenticator creates an authenticator; a nil wallet makes Login fail with KindWalletAbsent
func NewAuthenticator(backend Backend, wallet WalletProvider) *Authenticator {
	return &Authenticator{
		backend: backend,
		wallet:  wallet,
		now:     time.Now,
	}
}

// Login requests an account, obtains a nonce (creating the user on first
// login), signs it and exchanges the signature for a bearer token.
func (a *Authenticator) Login(ctx context.Context) (*Session, error) {
	if a.wallet == nil {
		return nil, &Error{Kind: KindWalletAbsent, Step: "accounts"}
	}

	// Step 1: Get account
	accounts, err := a.wallet.RequestAccounts(ctx)
	if err != nil {
		return nil, walletError("accounts", err)
	}
	if len(accounts) == 0 || accounts[0] == "" {
		return nil, &Error{Kind: KindWalletAbsent, Step: "accounts"}
	}
	address := accounts[0]

	// Step 2: Get nonce, creating the account record if none exists
	nonce, err := a.nonce(ctx, address)
	if err != nil {
		return nil, err
	}

	// Step 3: Sign nonce
	signature, err := a.wallet.PersonalSign(ctx, nonce, address)
	if err != nil {
		return nil, walletError("sign", err)
	}
	if !SignedBy(nonce, signature, address) {
		return nil, &Error{Kind: KindSignatureRejected, Step: "sign", Err: errors.New("signature does not match account")}
	}

	// Step 4: Exchange signature for token
	var tok tokenResponse
	payload := map[string]string{
		"address":   address,
		"signature": signature,
	}
	if err := a.backend.PostJSON(ctx, PathVerify, payload, &tok); err != nil {
		var apiErr *statsapi.APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			return nil, &Error{Kind: KindSignatureRejected, Step: "verify", Err: err}
		}
		return nil, backendError("verify", err)
	}
	if tok.Token == "" {
		return nil, &Error{Kind: KindBackendRejected, Step: "verify", Err: errors.New("empty token")}
	}

	logger.Infow("signed in", "address", address)
	return a.session(address, tok), nil
}

// Refresh trades the session's refresh token for a new bearer token
func (a *Authenticator) Refresh(ctx context.Context, s *Session) (*Session, error) {
	if s == nil || s.RefreshToken == "" {
		return nil, &Error{Kind: KindBackendRejected, Step: "refresh", Err: errors.New("no refresh token")}
	}

	var tok tokenResponse
	payload := map[string]string{
		"refresh_token": s.RefreshToken,
	}
	if err := a.backend.PostJSON(ctx, PathRefresh, payload, &tok); err != nil {
		return nil, backendError("refresh", err)
	}
	if tok.Token == "" {
		return nil, &Error{Kind: KindBackendRejected, Step: "refresh", Err: errors.New("empty token")}
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = s.RefreshToken
	}

	logger.Debugw("session refreshed", "address", s.Address)
	return a.session(s.Address, tok), nil
}

func (a *Authenticator) nonce(ctx context.Context, address string) (string, error) {
	payload := map[string]string{
		"address": address,
	}

	var resp nonceResponse
	err := a.backend.PostJSON(ctx, PathFindUser, payload, &resp)
	if errors.Is(err, statsapi.ErrNotFound) {
		logger.Infow("creating user", "address", address)
		err = a.backend.PostJSON(ctx, PathCreateUser, payload, &resp)
		if err != nil {
			return "", backendError("create", err)
		}
	} else if err != nil {
		return "", backendError("find", err)
	}

	if resp.Nonce == "" {
		return "", &Error{Kind: KindBackendRejected, Step: "nonce", Err: errors.New("empty nonce")}
	}
	return resp.Nonce, nil
}

func (a *Authenticator) session(address string, tok tokenResponse) *Session {
	s := &Session{
		Address:      address,
		Token:        tok.Token,
		RefreshToken: tok.RefreshToken,
	}
	if tok.ExpiresIn > 0 {
		s.ExpiresAt = a.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	return s
}

func walletError(step string, err error) error {
	if errors.Is(err, ErrUserRejected) {
		return &Error{Kind: KindUserRejected, Step: step, Err: err}
	}
	return &Error{Kind: KindWalletAbsent, Step: step, Err: err}
}

// backendError separates answers from the service (rejected) from failures to reach it
func backendError(step string, err error) error {
	var apiErr *statsapi.APIError
	if errors.As(err, &apiErr) {
		return &Error{Kind: KindBackendRejected, Step: step, Err: err}
	}
	return &Error{Kind: KindTransport, Step: step, Err: err}
}
