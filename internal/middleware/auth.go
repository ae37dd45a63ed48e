package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/repository"
)

const sessionContextKey = "buildflow.session"

type SessionParser interface {
	ParseSession(token string) (models.Session, error)
}

// DeviceLookup confirms the device behind a token has not been revoked.
type DeviceLookup interface {
	FindByDevice(ctx context.Context, userID, deviceID string) (models.DeviceSession, error)
}

// Auth accepts a bearer token only while its device session still exists.
// Storage failures are not treated as a revoked session.
func Auth(parser SessionParser, devices DeviceLookup, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		session, err := parser.ParseSession(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		device, err := devices.FindByDevice(c.Request.Context(), session.UserID, session.DeviceID)
		if err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
			log.Error().Err(err).
				Str("request_id", RequestIDFrom(c)).
				Str("user_id", session.UserID).
				Msg("device session lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
			return
		}
		if err != nil || device.ID != session.SessionID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_not_found"})
			return
		}

		SetSession(c, session)
		c.Next()
	}
}

func SetSession(c *gin.Context, session models.Session) {
	c.Set(sessionContextKey, session)
}

// SessionFrom returns the session stored by Auth.
func SessionFrom(c *gin.Context) (models.Session, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return models.Session{}, false
	}
	session, ok := v.(models.Session)
	return session, ok
}
