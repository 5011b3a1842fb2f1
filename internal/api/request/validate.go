package request

import (
	"net/mail"
	"strings"
)

// Field length limits matching the users table
const (
	MaxNameLength  = 255
	MaxEmailLength = 255
)

// Validate returns a message describing the first invalid field, or ""
func (r *RegisterRequest) Validate() string {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)

	switch {
	case r.Name == "":
		return "name is required"
	case len(r.Name) > MaxNameLength:
		return "name is too long"
	case r.Email == "":
		return "email is required"
	case len(r.Email) > MaxEmailLength || !isEmail(r.Email):
		return "email is invalid"
	case r.Password == "":
		return "password is required"
	}
	return ""
}

// Validate returns a message describing the first invalid field, or ""
func (r *LoginRequest) Validate() string {
	r.Email = strings.TrimSpace(r.Email)
	r.TwoFactorCode = strings.TrimSpace(r.TwoFactorCode)

	switch {
	case r.Email == "":
		return "email is required"
	case r.Password == "":
		return "password is required"
	}
	return ""
}

func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
