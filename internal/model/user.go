package model

import "time"

// UserID uniquely identifies a user; assigned by the store at creation
type UserID int64

// User is the persisted account record
type User struct {
	ID             UserID
	Name           string
	Email          string
	PasswordDigest string // double SHA-512 hex digest, never the plaintext

	// ConfirmationToken is non-nil until the email address has been confirmed
	ConfirmationToken *string
	// TOTPSecret is non-nil when two-factor authentication is enabled
	TOTPSecret *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsConfirmed reports whether the user has confirmed their email address
func (u *User) IsConfirmed() bool {
	return u.ConfirmationToken == nil
}

// HasTwoFactor reports whether a one-time code is required at login
func (u *User) HasTwoFactor() bool {
	return u.TOTPSecret != nil
}

// Public returns the fields of the user that are safe to expose
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// PublicUser is a user without credentials or secrets
type PublicUser struct {
	ID        UserID
	Name      string
	Email     string
	CreatedAt time.Time
}
