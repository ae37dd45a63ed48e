package models

import "time"

type Locale string

const (
	LocaleGreek   Locale = "el"
	LocaleEnglish Locale = "en"
)

// Identity is a person able to sign in. PasswordHash is nil for accounts
// created through a federated provider.
type Identity struct {
	ID           string
	Email        string
	Name         string
	PasswordHash []byte
	Locale       Locale
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (i Identity) HasPassword() bool {
	return len(i.PasswordHash) > 0
}

// DeviceSession is the persisted refresh-token record for one device of a user.
type DeviceSession struct {
	ID               string
	UserID           string
	DeviceID         string
	DeviceName       string
	RefreshTokenHash []byte
	IPAddress        string
	UserAgent        string
	CreatedAt        time.Time
	LastSeenAt       time.Time
	ExpiresAt        time.Time
}
