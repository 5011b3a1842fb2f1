package model

import "time"

// Session is an authenticated login. It carries only the public identity of
// the user, never the password digest or the TOTP secret.
type Session struct {
	Token     string
	User      PublicUser
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the session has expired at the given time
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
