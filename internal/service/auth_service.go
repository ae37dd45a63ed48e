package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gperojohn83-art/Construction/internal/config"
	"github.com/gperojohn83-art/Construction/internal/ids"
	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/repository"
	"github.com/gperojohn83-art/Construction/internal/security"
)

const refreshTokenBytes = 64

type AuthService struct {
	users    IdentityStore
	sessions DeviceSessionStore
	verifier *CredentialVerifier
	resolver *MembershipResolver
	enricher *SessionEnricher
	cfg      config.SecurityConfig
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(
	users IdentityStore,
	sessions DeviceSessionStore,
	verifier *CredentialVerifier,
	resolver *MembershipResolver,
	enricher *SessionEnricher,
	cfg config.SecurityConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		verifier: verifier,
		resolver: resolver,
		enricher: enricher,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// DeviceInfo describes the client a token pair is issued to.
type DeviceInfo struct {
	DeviceID   string
	DeviceName string
	IPAddress  string
	UserAgent  string
}

type AuthResult struct {
	AccessToken     string
	AccessExpiresAt time.Time
	RefreshToken    string
	DeviceID        string
	Identity        models.Identity
	Session         models.Session
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Name     string `json:"name" validate:"required,max=120"`
	Locale   models.Locale
	Device   DeviceInfo
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return AuthResult{}, err
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return AuthResult{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	locale := input.Locale
	if locale != models.LocaleEnglish {
		locale = models.LocaleGreek
	}

	identity := models.Identity{
		ID:           ids.New(),
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: passwordHash,
		Locale:       locale,
	}
	if err := s.users.Create(ctx, identity); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, fmt.Errorf("create identity: %w", err)
	}

	return s.issue(ctx, identity, input.Device)
}

type LoginInput struct {
	Email    string
	Password string
	Device   DeviceInfo
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	identity, err := s.verifier.VerifyCredentials(ctx, input.Email, input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	if security.NeedsRehash(identity.PasswordHash) {
		s.upgradeHash(ctx, identity.ID, input.Password)
	}

	return s.issue(ctx, identity, input.Device)
}

// upgradeHash moves a legacy bcrypt hash to argon2id. Failure only delays
// the upgrade to the next login.
func (s *AuthService) upgradeHash(ctx context.Context, userID, password string) {
	hash, err := security.HashPassword(password)
	if err == nil {
		err = s.users.UpdatePassword(ctx, userID, hash)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("password rehash failed")
	}
}

// issue creates or replaces the device session and mints a token pair with
// a freshly resolved membership.
func (s *AuthService) issue(ctx context.Context, identity models.Identity, device DeviceInfo) (AuthResult, error) {
	membership, err := s.resolver.ResolveMembership(ctx, identity.ID)
	if err != nil {
		return AuthResult{}, err
	}

	if device.DeviceID == "" {
		device.DeviceID = ids.New()
	}
	if device.DeviceName == "" {
		device.DeviceName = "Unknown Device"
	}

	refreshToken, refreshHash, err := security.GenerateRefreshToken(refreshTokenBytes)
	if err != nil {
		return AuthResult{}, err
	}

	deviceSession := models.DeviceSession{
		ID:               ids.New(),
		UserID:           identity.ID,
		DeviceID:         device.DeviceID,
		DeviceName:       device.DeviceName,
		RefreshTokenHash: refreshHash,
		IPAddress:        device.IPAddress,
		UserAgent:        device.UserAgent,
		ExpiresAt:        s.now().Add(s.cfg.JWTRefreshTTL),
	}

	token, err := s.enricher.BuildSession(identity, membership, Device{
		SessionID: deviceSession.ID,
		DeviceID:  deviceSession.DeviceID,
	})
	if err != nil {
		return AuthResult{}, err
	}

	if err := s.sessions.Upsert(ctx, deviceSession); err != nil {
		return AuthResult{}, fmt.Errorf("store device session: %w", err)
	}

	if err := s.enforceSessionLimit(ctx, identity.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", identity.ID).Msg("enforce session limit failed")
	}

	return AuthResult{
		AccessToken:     token.Token,
		AccessExpiresAt: token.ExpiresAt,
		RefreshToken:    refreshToken,
		DeviceID:        device.DeviceID,
		Identity:        identity,
		Session:         token.Session,
	}, nil
}

func (s *AuthService) enforceSessionLimit(ctx context.Context, userID string) error {
	count, err := s.sessions.CountByUser(ctx, userID)
	if err != nil {
		return err
	}
	if count <= s.cfg.MaxSessions {
		return nil
	}

	return s.sessions.DeleteOldestSessions(ctx, userID, s.cfg.MaxSessions)
}

type RefreshInput struct {
	UserID       string
	DeviceID     string
	RefreshToken string
	IPAddress    string
	UserAgent    string
}

// Refresh rotates the device's refresh token and re-derives the session
// from storage, picking up membership and plan changes.
func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (AuthResult, error) {
	if input.UserID == "" || input.DeviceID == "" || input.RefreshToken == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	identity, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	deviceSession, err := s.sessions.FindByDevice(ctx, input.UserID, input.DeviceID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	presented := security.HashRefreshToken(input.RefreshToken)
	if subtle.ConstantTimeCompare(presented, deviceSession.RefreshTokenHash) != 1 {
		return AuthResult{}, ErrInvalidCredentials
	}

	if deviceSession.ExpiresAt.Before(s.now()) {
		_ = s.sessions.DeleteByDevice(ctx, input.UserID, input.DeviceID)
		return AuthResult{}, ErrInvalidCredentials
	}

	refreshToken, nextHash, err := security.GenerateRefreshToken(refreshTokenBytes)
	if err != nil {
		return AuthResult{}, err
	}
	expiresAt := s.now().Add(s.cfg.JWTRefreshTTL)

	if err := s.sessions.Rotate(ctx, deviceSession.ID, presented, nextHash, expiresAt, input.IPAddress, input.UserAgent); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			// Someone else redeemed this token first.
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	membership, err := s.resolver.ResolveMembership(ctx, identity.ID)
	if err != nil {
		return AuthResult{}, err
	}

	token, err := s.enricher.BuildSession(identity, membership, Device{
		SessionID: deviceSession.ID,
		DeviceID:  deviceSession.DeviceID,
	})
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		AccessToken:     token.Token,
		AccessExpiresAt: token.ExpiresAt,
		RefreshToken:    refreshToken,
		DeviceID:        deviceSession.DeviceID,
		Identity:        identity,
		Session:         token.Session,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, userID string, deviceID string) error {
	err := s.sessions.DeleteByDevice(ctx, userID, deviceID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil
	}
	return err
}

func (s *AuthService) ListSessions(ctx context.Context, userID string) ([]models.DeviceSession, error) {
	return s.sessions.ListByUser(ctx, userID)
}

// RevokeSession signs another device of the caller out.
func (s *AuthService) RevokeSession(ctx context.Context, session models.Session, deviceID string) error {
	if deviceID == session.DeviceID {
		return ErrCannotRevokeCurrent
	}
	return s.sessions.DeleteByDevice(ctx, session.UserID, deviceID)
}

// Profile is the caller's identity with the membership currently in storage,
// which may be newer than the one in the token.
type Profile struct {
	Identity   models.Identity
	Membership *models.ActiveMembership
	Stale      bool
}

func (s *AuthService) Profile(ctx context.Context, session models.Session) (Profile, error) {
	identity, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return Profile{}, err
	}
	membership, err := s.resolver.ResolveMembership(ctx, session.UserID)
	if err != nil {
		return Profile{}, err
	}

	stale := (membership == nil) != (session.Membership == nil)
	if !stale && membership != nil {
		stale = *membership != *session.Membership
	}

	return Profile{Identity: identity, Membership: membership, Stale: stale}, nil
}

// loginFederated signs in an identity vouched for by an external provider,
// creating a password-less identity on first use.
func (s *AuthService) loginFederated(ctx context.Context, email, name string, device DeviceInfo) (AuthResult, error) {
	email = normalizeEmail(email)

	identity, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrUserNotFound):
		if name == "" {
			name = email
		}
		identity = models.Identity{
			ID:     ids.New(),
			Email:  email,
			Name:   name,
			Locale: models.LocaleGreek,
		}
		if err := s.users.Create(ctx, identity); err != nil {
			return AuthResult{}, fmt.Errorf("create federated identity: %w", err)
		}
	default:
		return AuthResult{}, err
	}

	return s.issue(ctx, identity, device)
}
