package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OrgClaims carries the organization context of a session. It is omitted
// from the token when the user has no organization.
type OrgClaims struct {
	OrganizationID string `json:"id"`
	Role           string `json:"role"`
	Plan           string `json:"plan"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
}

type AccessClaims struct {
	UserID    string     `json:"uid"`
	SessionID string     `json:"sid"`
	DeviceID  string     `json:"did"`
	Email     string     `json:"email"`
	Name      string     `json:"name,omitempty"`
	Org       *OrgClaims `json:"org,omitempty"`
	jwt.RegisteredClaims
}

func GenerateAccessToken(secret string, claims AccessClaims, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		Subject:   claims.UserID,
		ID:        claims.SessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign jwt: %w", err)
	}
	return signed, expiresAt, nil
}

func ParseAccessToken(tokenStr string, secret string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*AccessClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// GenerateURLToken returns a URL-safe random token built from n random bytes.
func GenerateURLToken(n int) (string, error) {
	if n <= 0 {
		n = 32
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func GenerateRefreshToken(length int) (string, []byte, error) {
	if length <= 0 {
		length = 64
	}
	token, err := GenerateURLToken(length)
	if err != nil {
		return "", nil, fmt.Errorf("generate refresh token: %w", err)
	}
	return token, HashRefreshToken(token), nil
}

func HashRefreshToken(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}
