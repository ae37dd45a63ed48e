package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/gperojohn83-art/Construction/internal/security"
)

const (
	signatureMaxAge  = 5 * time.Minute
	signatureMaxSkew = 2 * time.Minute
)

type NonceClaimer interface {
	Claim(ctx context.Context, deviceID, nonce string, ttl time.Duration) (bool, error)
}

// Signature verifies the device HMAC over the request and rejects replayed
// nonces. It must run after Auth.
func Signature(secret string, nonces NonceClaimer, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, nonce, signature, err := security.ExtractSignatureHeaders(c.Request.Header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "signature_required"})
			return
		}

		requestTime, err := time.Parse(time.RFC3339, date)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_date"})
			return
		}
		if time.Since(requestTime) > signatureMaxAge || time.Until(requestTime) > signatureMaxSkew {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "request_expired"})
			return
		}

		session, ok := SessionFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		rawBody, err := c.GetRawData()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(rawBody))

		valid := security.ValidateSignature(secret, signature, security.SignedRequest{
			DeviceID: session.DeviceID,
			Method:   c.Request.Method,
			Path:     c.Request.URL.Path,
			Query:    c.Request.URL.Query().Encode(),
			Body:     rawBody,
			Date:     date,
			Nonce:    nonce,
		})
		if !valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_signature"})
			return
		}

		fresh, err := nonces.Claim(c.Request.Context(), session.DeviceID, nonce, signatureMaxAge)
		if err != nil {
			log.Error().Err(err).Str("request_id", RequestIDFrom(c)).Msg("nonce check failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
			return
		}
		if !fresh {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "replay_detected"})
			return
		}

		c.Next()
	}
}
