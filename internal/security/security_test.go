package security

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testParams = Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestPassword_Argon2RoundTrip(t *testing.T) {
	hash, err := HashPasswordWithParams("demo1234", testParams)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(hash), "$argon2id$v=19$m=8192,t=1,p=1$"))
	assert.False(t, NeedsRehash(hash))

	ok, err := VerifyPassword("demo1234", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPassword_SaltsDiffer(t *testing.T) {
	a, err := HashPasswordWithParams("demo1234", testParams)
	require.NoError(t, err)
	b, err := HashPasswordWithParams("demo1234", testParams)
	require.NoError(t, err)
	assert.NotEqual(t, string(a), string(b))
}

func TestPassword_Bcrypt(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, NeedsRehash(hash))

	ok, err := VerifyPassword("demo1234", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPassword_Malformed(t *testing.T) {
	_, err := VerifyPassword("x", []byte("plaintext"))
	assert.ErrorIs(t, err, ErrUnknownHashFormat)

	_, err = VerifyPassword("x", []byte("$argon2id$v=19$broken"))
	assert.Error(t, err)
}

func TestAccessToken_WithOrganization(t *testing.T) {
	claims := AccessClaims{
		UserID:    "user-1",
		SessionID: "sess-1",
		DeviceID:  "dev-1",
		Email:     "admin@buildflow.demo",
		Org: &OrgClaims{
			OrganizationID: "org-1",
			Role:           "ADMIN",
			Plan:           "PRO",
			Name:           "Demo",
			Slug:           "demo-company",
		},
	}

	token, expiresAt, err := GenerateAccessToken("secret", claims, time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	parsed, err := ParseAccessToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", parsed.UserID)
	assert.Equal(t, "user-1", parsed.Subject)
	assert.Equal(t, "sess-1", parsed.SessionID)
	require.NotNil(t, parsed.Org)
	assert.Equal(t, *claims.Org, *parsed.Org)
}

func TestAccessToken_WithoutOrganizationOmitsClaim(t *testing.T) {
	token, _, err := GenerateAccessToken("secret", AccessClaims{UserID: "user-1", SessionID: "s", DeviceID: "d"}, time.Minute)
	require.NoError(t, err)

	raw := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, raw)
	require.NoError(t, err)
	_, present := raw["org"]
	assert.False(t, present)

	parsed, err := ParseAccessToken(token, "secret")
	require.NoError(t, err)
	assert.Nil(t, parsed.Org)
}

func TestAccessToken_Rejects(t *testing.T) {
	token, _, err := GenerateAccessToken("secret", AccessClaims{UserID: "u"}, time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "other-secret")
	assert.Error(t, err)

	expired, _, err := GenerateAccessToken("secret", AccessClaims{UserID: "u"}, -time.Minute)
	require.NoError(t, err)
	_, err = ParseAccessToken(expired, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	hs256 := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"uid": "u"})
	signed, err := hs256.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseAccessToken(signed, "secret")
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	token, hash, err := GenerateRefreshToken(32)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, hash, HashRefreshToken(token))

	other, _, err := GenerateRefreshToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestSignature(t *testing.T) {
	req := SignedRequest{
		DeviceID: "dev-1",
		Method:   "post",
		Path:     "/api/v1/projects/p1/documents",
		Body:     []byte(`{"a":1}`),
		Date:     "2025-03-01T10:00:00Z",
		Nonce:    "n-1",
	}
	sig := ComputeSignature("secret", req)

	assert.True(t, ValidateSignature("secret", sig, req))

	tampered := req
	tampered.Body = []byte(`{"a":2}`)
	assert.False(t, ValidateSignature("secret", sig, tampered))

	h := http.Header{}
	_, _, _, err := ExtractSignatureHeaders(h)
	assert.ErrorIs(t, err, ErrMissingSignature)

	h.Set(HeaderDate, req.Date)
	h.Set(HeaderNonce, req.Nonce)
	h.Set(HeaderSignature, sig)
	date, nonce, got, err := ExtractSignatureHeaders(h)
	require.NoError(t, err)
	assert.Equal(t, req.Date, date)
	assert.Equal(t, req.Nonce, nonce)
	assert.Equal(t, sig, got)
}

func TestResourceSignature(t *testing.T) {
	sig := SignResource("secret", "doc-1", "2025/03/01/doc-1.pdf")
	assert.True(t, VerifyResource("secret", sig, "doc-1", "2025/03/01/doc-1.pdf"))
	assert.False(t, VerifyResource("secret", sig, "doc-2", "2025/03/01/doc-1.pdf"))
}
