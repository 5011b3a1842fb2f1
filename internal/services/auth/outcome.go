package auth

import "github.com/mcoot/morpion/internal/model"

// Outcome is the closed set of results of the authentication flows.
// Outcomes are expected results, not errors.
type Outcome string

const (
	// Rejections
	OutcomeInvalidCredentials Outcome = "invalid_credentials"
	OutcomeEmailNotConfirmed  Outcome = "email_not_confirmed"
	OutcomeTwoFactorRequired  Outcome = "two_factor_required"
	OutcomeTwoFactorInvalid   Outcome = "two_factor_invalid"
	OutcomeForbidden          Outcome = "forbidden"

	// Successes
	OutcomeLoggedIn                     Outcome = "logged_in"
	OutcomeRegistered                   Outcome = "registered"
	OutcomeRegisteredWithTwoFactorSetup Outcome = "registered_with_two_factor_setup"
	OutcomeConfirmed                    Outcome = "confirmed"
)

// IsSuccess reports whether the outcome completed the requested operation
func (o Outcome) IsSuccess() bool {
	switch o {
	case OutcomeLoggedIn, OutcomeRegistered, OutcomeRegisteredWithTwoFactorSetup, OutcomeConfirmed:
		return true
	}
	return false
}

// LoginRequest holds submitted login credentials
type LoginRequest struct {
	Email    string
	Password string
	// Code is the one-time code, empty when none was submitted
	Code string
}

// LoginResult is the outcome of a login attempt. Session is set only for
// OutcomeLoggedIn.
type LoginResult struct {
	Outcome Outcome
	Session *model.Session
}

// RegisterRequest holds the fields of a new account
type RegisterRequest struct {
	Name            string
	Email           string
	Password        string
	EnableTwoFactor bool
}

// TwoFactorSetup is shown once after registering with two-factor enabled
type TwoFactorSetup struct {
	Secret string
	// Artifact is a data URI of the provisioning QR code
	Artifact string
}

// RegisterResult is the outcome of a registration. TwoFactor is set only for
// OutcomeRegisteredWithTwoFactorSetup.
type RegisterResult struct {
	Outcome   Outcome
	User      model.PublicUser
	TwoFactor *TwoFactorSetup
}
