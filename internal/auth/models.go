package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents an application user. The user's ID is the owner key for
// every album, image, and quota record.
type User struct {
	ID           uuid.UUID
	Email        string
	DisplayName  *string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SafeUser removes sensitive fields for response payloads.
func (u User) SafeUser() User {
	u.PasswordHash = ""
	return u
}

// TokenPair bundles access and refresh tokens.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// RefreshToken is a stored, hashed refresh credential.
type RefreshToken struct {
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
}
