package service

import (
	"fmt"
	"time"

	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/security"
)

// Device binds a session token to a persisted device session.
type Device struct {
	SessionID string
	DeviceID  string
}

type SessionToken struct {
	Token     string
	ExpiresAt time.Time
	Session   models.Session
}

// SessionEnricher turns an identity and its resolved membership into a
// signed access token. It is run on every issuance and keeps no cache, so a
// token reflects storage as of the moment it was minted.
type SessionEnricher struct {
	secret string
	ttl    time.Duration
}

func NewSessionEnricher(secret string, ttl time.Duration) *SessionEnricher {
	return &SessionEnricher{secret: secret, ttl: ttl}
}

func (e *SessionEnricher) BuildSession(identity models.Identity, membership *models.ActiveMembership, device Device) (SessionToken, error) {
	session := models.Session{
		UserID:    identity.ID,
		Email:     identity.Email,
		Name:      identity.Name,
		SessionID: device.SessionID,
		DeviceID:  device.DeviceID,
	}
	if membership != nil {
		m := *membership
		session.Membership = &m
	}

	token, expiresAt, err := security.GenerateAccessToken(e.secret, claimsFromSession(session), e.ttl)
	if err != nil {
		return SessionToken{}, fmt.Errorf("sign session: %w", err)
	}

	return SessionToken{Token: token, ExpiresAt: expiresAt, Session: session}, nil
}

// ParseSession verifies an access token and returns the session it carries.
func (e *SessionEnricher) ParseSession(token string) (models.Session, error) {
	claims, err := security.ParseAccessToken(token, e.secret)
	if err != nil {
		return models.Session{}, err
	}
	return sessionFromClaims(claims), nil
}

func claimsFromSession(s models.Session) security.AccessClaims {
	claims := security.AccessClaims{
		UserID:    s.UserID,
		SessionID: s.SessionID,
		DeviceID:  s.DeviceID,
		Email:     s.Email,
		Name:      s.Name,
	}
	if m := s.Membership; m != nil {
		claims.Org = &security.OrgClaims{
			OrganizationID: m.OrganizationID,
			Role:           string(m.Role),
			Plan:           string(m.Plan),
			Name:           m.OrgName,
			Slug:           m.OrgSlug,
		}
	}
	return claims
}

func sessionFromClaims(c *security.AccessClaims) models.Session {
	s := models.Session{
		UserID:    c.UserID,
		Email:     c.Email,
		Name:      c.Name,
		SessionID: c.SessionID,
		DeviceID:  c.DeviceID,
	}
	if c.Org != nil {
		s.Membership = &models.ActiveMembership{
			OrganizationID: c.Org.OrganizationID,
			Role:           models.Role(c.Org.Role),
			Plan:           models.Plan(c.Org.Plan),
			OrgName:        c.Org.Name,
			OrgSlug:        c.Org.Slug,
		}
	}
	return s
}
