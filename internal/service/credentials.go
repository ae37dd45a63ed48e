package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/repository"
	"github.com/gperojohn83-art/Construction/internal/security"
)

type credentialsInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

const timingPassword = "buildflow-timing-equalizer"

// Reference hashes stand in for whichever scheme has no real hash to check.
var (
	dummyArgon2 = sync.OnceValue(func() []byte {
		hash, err := security.HashPassword(timingPassword)
		if err != nil {
			panic(fmt.Sprintf("hash dummy password: %v", err))
		}
		return hash
	})
	dummyBcrypt = sync.OnceValue(func() []byte {
		hash, err := bcrypt.GenerateFromPassword([]byte(timingPassword), bcrypt.DefaultCost)
		if err != nil {
			panic(fmt.Sprintf("bcrypt dummy password: %v", err))
		}
		return hash
	})
)

// CredentialVerifier checks an email and password against stored hashes.
// It never writes.
type CredentialVerifier struct {
	users   IdentityFinder
	compare func(password string, hash []byte) (bool, error)
}

func NewCredentialVerifier(users IdentityFinder) *CredentialVerifier {
	return &CredentialVerifier{users: users, compare: security.VerifyPassword}
}

// check runs one argon2id and one bcrypt comparison on every call, using the
// stored hash in the slot of its scheme and a dummy in the other. Unknown
// emails, accounts without a password, current and legacy hashes all cost
// the same. A nil stored hash never matches.
func (v *CredentialVerifier) check(password string, stored []byte) bool {
	argonHash, bcryptHash := dummyArgon2(), dummyBcrypt()
	legacy := security.IsLegacyHash(stored)
	switch {
	case stored == nil:
	case legacy:
		bcryptHash = stored
	default:
		argonHash = stored
	}

	argonOK, argonErr := v.compare(password, argonHash)
	bcryptOK, bcryptErr := v.compare(password, bcryptHash)
	switch {
	case stored == nil:
		return false
	case legacy:
		return bcryptErr == nil && bcryptOK
	default:
		return argonErr == nil && argonOK
	}
}

func (v *CredentialVerifier) VerifyCredentials(ctx context.Context, email, password string) (models.Identity, error) {
	input := credentialsInput{Email: normalizeEmail(email), Password: password}
	if err := validateStruct(input); err != nil {
		return models.Identity{}, err
	}

	identity, err := v.users.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return models.Identity{}, fmt.Errorf("lookup identity: %w", err)
	}

	var stored []byte
	if err == nil && identity.HasPassword() {
		stored = identity.PasswordHash
	}
	if !v.check(input.Password, stored) {
		return models.Identity{}, ErrInvalidCredentials
	}

	return identity, nil
}
