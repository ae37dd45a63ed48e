package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/gperojohn83-art/Construction/internal/cache"
	"github.com/gperojohn83-art/Construction/internal/config"
	"github.com/gperojohn83-art/Construction/internal/security"
)

type StateStore interface {
	Save(ctx context.Context, state, value string, ttl time.Duration) error
	Take(ctx context.Context, state string) (string, error)
}

// OAuthExchanger is the part of *oauth2.Config used by the login flow.
type OAuthExchanger interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// ProviderClaims are the ID token claims the login flow relies on.
type ProviderClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Nonce         string `json:"nonce"`
}

// IDTokenVerifier checks a raw ID token and returns its claims.
type IDTokenVerifier func(ctx context.Context, rawIDToken string) (ProviderClaims, error)

// NewOIDCVerifier adapts a go-oidc verifier.
func NewOIDCVerifier(v *oidc.IDTokenVerifier) IDTokenVerifier {
	return func(ctx context.Context, raw string) (ProviderClaims, error) {
		token, err := v.Verify(ctx, raw)
		if err != nil {
			return ProviderClaims{}, fmt.Errorf("verify id token: %w", err)
		}
		var claims ProviderClaims
		if err := token.Claims(&claims); err != nil {
			return ProviderClaims{}, fmt.Errorf("decode id token claims: %w", err)
		}
		return claims, nil
	}
}

// NewGoogleProvider discovers the issuer and returns the OAuth client and
// ID token verifier for it.
func NewGoogleProvider(ctx context.Context, cfg config.GoogleOAuthConfig) (*oauth2.Config, IDTokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, nil, fmt.Errorf("oidc discovery: %w", err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})

	return oauthCfg, NewOIDCVerifier(verifier), nil
}

type federatedState struct {
	Nonce      string `json:"nonce"`
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`
}

// FederatedService runs the Google sign-in redirect flow. A nil exchanger
// means the provider is not configured.
type FederatedService struct {
	auth     *AuthService
	oauth    OAuthExchanger
	verify   IDTokenVerifier
	states   StateStore
	stateTTL time.Duration
}

func NewFederatedService(auth *AuthService, oauth OAuthExchanger, verify IDTokenVerifier, states StateStore, stateTTL time.Duration) *FederatedService {
	if stateTTL <= 0 {
		stateTTL = 10 * time.Minute
	}
	return &FederatedService{
		auth:     auth,
		oauth:    oauth,
		verify:   verify,
		states:   states,
		stateTTL: stateTTL,
	}
}

func (s *FederatedService) Enabled() bool {
	return s != nil && s.oauth != nil && s.verify != nil
}

// Start returns the provider URL to redirect the browser to.
func (s *FederatedService) Start(ctx context.Context, device DeviceInfo) (string, error) {
	if !s.Enabled() {
		return "", ErrFederatedDisabled
	}

	state, err := security.GenerateURLToken(32)
	if err != nil {
		return "", err
	}
	nonce, err := security.GenerateURLToken(32)
	if err != nil {
		return "", err
	}

	value, err := json.Marshal(federatedState{Nonce: nonce, DeviceID: device.DeviceID, DeviceName: device.DeviceName})
	if err != nil {
		return "", err
	}
	if err := s.states.Save(ctx, state, string(value), s.stateTTL); err != nil {
		return "", err
	}

	return s.oauth.AuthCodeURL(state, oidc.Nonce(nonce)), nil
}

// Callback completes the flow: the state must be known and unused, the ID
// token valid for our client with a matching nonce and a verified email.
func (s *FederatedService) Callback(ctx context.Context, state, code string, device DeviceInfo) (AuthResult, error) {
	if !s.Enabled() {
		return AuthResult{}, ErrFederatedDisabled
	}
	if state == "" || code == "" {
		return AuthResult{}, invalid("state", "state and code are required")
	}

	raw, err := s.states.Take(ctx, state)
	if err != nil {
		if errors.Is(err, cache.ErrStateNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	var saved federatedState
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		return AuthResult{}, fmt.Errorf("decode oauth state: %w", err)
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		// The provider answered and refused the code: forged, replayed or expired.
		var refused *oauth2.RetrieveError
		if errors.As(err, &refused) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("exchange code: %w", err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	claims, err := s.verify(ctx, rawIDToken)
	if err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	if claims.Nonce != saved.Nonce {
		return AuthResult{}, ErrInvalidCredentials
	}
	if !claims.EmailVerified || claims.Email == "" {
		return AuthResult{}, ErrEmailNotVerified
	}

	if device.DeviceID == "" {
		device.DeviceID = saved.DeviceID
	}
	if device.DeviceName == "" {
		device.DeviceName = saved.DeviceName
	}

	return s.auth.loginFederated(ctx, claims.Email, claims.Name, device)
}
