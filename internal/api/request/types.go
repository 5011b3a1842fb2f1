package request

// RegisterRequest is the request body for creating an account
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	EnableTwoFactor bool   `json:"enable_two_factor"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// TwoFactorCode is required for accounts with two-factor enabled
	TwoFactorCode string `json:"two_factor_code,omitempty"`
}
