package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

const (
	HeaderSignature = "X-Buildflow-Signature"
	HeaderDate      = "X-Buildflow-Date"
	HeaderNonce     = "X-Buildflow-Nonce"
)

var ErrMissingSignature = errors.New("missing signature headers")

// SignedRequest is the canonical form of a request signed by a device.
type SignedRequest struct {
	DeviceID string
	Method   string
	Path     string
	Query    string
	Body     []byte
	Date     string
	Nonce    string
}

func ComputeBodyHash(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func ComputeSignature(secret string, req SignedRequest) string {
	data := strings.Join([]string{
		req.DeviceID,
		strings.ToUpper(req.Method),
		req.Path,
		req.Query,
		ComputeBodyHash(req.Body),
		req.Date,
		req.Nonce,
	}, "\n")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func ValidateSignature(secret string, signature string, req SignedRequest) bool {
	expected := ComputeSignature(secret, req)
	return hmac.Equal([]byte(signature), []byte(expected))
}

func ExtractSignatureHeaders(h http.Header) (date string, nonce string, signature string, err error) {
	date = h.Get(HeaderDate)
	nonce = h.Get(HeaderNonce)
	signature = h.Get(HeaderSignature)

	if date == "" || nonce == "" || signature == "" {
		return "", "", "", ErrMissingSignature
	}
	return date, nonce, signature, nil
}
