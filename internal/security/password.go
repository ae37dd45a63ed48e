package security

import (
	"bytes"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

var defaultParams = Argon2Params{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 2,
	KeyLen:  32,
	SaltLen: 16,
}

var argon2Prefix = []byte("$argon2id$")

var ErrUnknownHashFormat = errors.New("unknown password hash format")

func HashPassword(password string) ([]byte, error) {
	return HashPasswordWithParams(password, defaultParams)
}

func HashPasswordWithParams(password string, params Argon2Params) ([]byte, error) {
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, params.KeyLen)

	encoded := base64.RawStdEncoding.EncodeToString(hash)
	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)

	result := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, params.Memory, params.Time, params.Threads, encodedSalt, encoded)

	return []byte(result), nil
}

// VerifyPassword checks password against an argon2id hash, or a bcrypt hash
// carried over from accounts created before the argon2 migration.
func VerifyPassword(password string, encodedHash []byte) (bool, error) {
	switch {
	case bytes.HasPrefix(encodedHash, argon2Prefix):
		return verifyArgon2(password, encodedHash)
	case isBcrypt(encodedHash):
		err := bcrypt.CompareHashAndPassword(encodedHash, []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("bcrypt compare: %w", err)
		}
		return true, nil
	}
	return false, ErrUnknownHashFormat
}

// NeedsRehash reports whether the hash should be replaced by a fresh argon2id hash.
func NeedsRehash(encodedHash []byte) bool {
	return !bytes.HasPrefix(encodedHash, argon2Prefix)
}

// IsLegacyHash reports whether the hash is a bcrypt hash from before the
// argon2id migration.
func IsLegacyHash(encodedHash []byte) bool {
	return isBcrypt(encodedHash)
}

func isBcrypt(encodedHash []byte) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if bytes.HasPrefix(encodedHash, []byte(prefix)) {
			return true
		}
	}
	return false
}

func verifyArgon2(password string, encodedHash []byte) (bool, error) {
	var (
		version int
		params  Argon2Params
	)

	parts := bytes.Split(encodedHash, []byte("$"))
	if len(parts) != 6 {
		return false, fmt.Errorf("parse hash: expected 6 segments, got %d", len(parts))
	}
	if _, err := fmt.Sscanf(string(parts[2]), "v=%d", &version); err != nil {
		return false, fmt.Errorf("parse version: %w", err)
	}
	if version != argon2.Version {
		return false, fmt.Errorf("unsupported argon2 version %d", version)
	}
	if _, err := fmt.Sscanf(string(parts[3]), "m=%d,t=%d,p=%d", &params.Memory, &params.Time, &params.Threads); err != nil {
		return false, fmt.Errorf("parse params: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(string(parts[4]))
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}

	hash, err := base64.RawStdEncoding.DecodeString(string(parts[5]))
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}

	computed := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, uint32(len(hash)))

	return subtle.ConstantTimeCompare(hash, computed) == 1, nil
}
