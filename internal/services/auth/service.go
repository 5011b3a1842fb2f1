package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/morpion/internal/dependencies/clock"
	"github.com/mcoot/morpion/internal/dependencies/random"
	"github.com/mcoot/morpion/internal/metrics"
	"github.com/mcoot/morpion/internal/model"
	"github.com/mcoot/morpion/internal/storage"
)

// Errors
var (
	ErrInvalidSession = errors.New("invalid or expired session")
)

// Metric operation labels
const (
	opLogin    = "login"
	opRegister = "register"
	opConfirm  = "confirm"
)

const (
	sessionPrefix      = "sess_"
	sessionTokenLength = 43
)

// TwoFactor creates and checks TOTP secrets
type TwoFactor interface {
	CreateSecret() (string, error)
	ProvisioningArtifact(accountLabel, secret string) (string, error)
	VerifyCode(secret, code string) bool
}

// SignupDispatcher sends the signup notification without waiting for delivery
type SignupDispatcher interface {
	DispatchSignup(email, confirmationToken string)
}

// Service handles login, registration, email confirmation and sessions
type Service struct {
	storage   storage.Storage
	sessions  storage.SessionStore
	twoFactor TwoFactor
	signups   SignupDispatcher
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger

	sessionDuration time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// New creates a new auth Service
func New(
	storage storage.Storage,
	sessions storage.SessionStore,
	twoFactor TwoFactor,
	signups SignupDispatcher,
	clock clock.Clock,
	random random.Random,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		storage:         storage,
		sessions:        sessions,
		twoFactor:       twoFactor,
		signups:         signups,
		clock:           clock,
		random:          random,
		logger:          logger,
		sessionDuration: cfg.SessionDuration,
	}
}

// Login checks credentials, then the confirmation gate, then the two-factor
// gate, in that order. The first failing check decides the outcome.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.storage.FindUserByEmailAndDigest(ctx, req.Email, HashPassword(req.Password))
	if errors.Is(err, model.ErrUserNotFound) {
		return s.loginOutcome(ctx, OutcomeInvalidCredentials, nil), nil
	}
	if err != nil {
		return nil, err
	}

	if !user.IsConfirmed() {
		return s.loginOutcome(ctx, OutcomeEmailNotConfirmed, user), nil
	}

	if user.HasTwoFactor() {
		if req.Code == "" {
			return s.loginOutcome(ctx, OutcomeTwoFactorRequired, user), nil
		}
		if !s.twoFactor.VerifyCode(*user.TOTPSecret, req.Code) {
			return s.loginOutcome(ctx, OutcomeTwoFactorInvalid, user), nil
		}
	}

	session, err := s.createSession(ctx, user)
	if err != nil {
		return nil, err
	}

	result := s.loginOutcome(ctx, OutcomeLoggedIn, user)
	result.Session = session
	return result, nil
}

func (s *Service) loginOutcome(ctx context.Context, outcome Outcome, user *model.User) *LoginResult {
	metrics.RecordAuthOutcome(opLogin, string(outcome))
	if user != nil {
		s.logger.InfoContext(ctx, "login attempt", "user_id", user.ID, "outcome", outcome)
	} else {
		s.logger.InfoContext(ctx, "login attempt", "outcome", outcome)
	}
	return &LoginResult{Outcome: outcome}
}

// Register creates an unconfirmed account and dispatches the signup
// notification. When two-factor is requested a secret is stored and returned
// with its provisioning artifact. The user is never logged in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	token := uuid.NewString()
	now := s.clock.Now()

	user := &model.User{
		Name:              req.Name,
		Email:             req.Email,
		PasswordDigest:    HashPassword(req.Password),
		ConfirmationToken: &token,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.signups.DispatchSignup(user.Email, token)

	if !req.EnableTwoFactor {
		s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "two_factor", false)
		metrics.RecordAuthOutcome(opRegister, string(OutcomeRegistered))
		return &RegisterResult{
			Outcome: OutcomeRegistered,
			User:    user.Public(),
		}, nil
	}

	secret, err := s.twoFactor.CreateSecret()
	if err != nil {
		return nil, err
	}

	user.TOTPSecret = &secret
	user.UpdatedAt = s.clock.Now()
	if err := s.storage.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	artifact, err := s.twoFactor.ProvisioningArtifact(user.Email, secret)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "two_factor", true)
	metrics.RecordAuthOutcome(opRegister, string(OutcomeRegisteredWithTwoFactorSetup))
	return &RegisterResult{
		Outcome: OutcomeRegisteredWithTwoFactorSetup,
		User:    user.Public(),
		TwoFactor: &TwoFactorSetup{
			Secret:   secret,
			Artifact: artifact,
		},
	}, nil
}

// ConfirmEmail clears the user's confirmation token when the submitted token
// matches it exactly. Once cleared there is nothing to match, so repeating a
// confirmation is Forbidden. Unknown users yield model.ErrUserNotFound.
func (s *Service) ConfirmEmail(ctx context.Context, userID model.UserID, token string) (Outcome, error) {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}

	if user.ConfirmationToken == nil || *user.ConfirmationToken != token {
		s.logger.InfoContext(ctx, "email confirmation rejected", "user_id", user.ID)
		metrics.RecordAuthOutcome(opConfirm, string(OutcomeForbidden))
		return OutcomeForbidden, nil
	}

	user.ConfirmationToken = nil
	user.UpdatedAt = s.clock.Now()
	if err := s.storage.UpdateUser(ctx, user); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "email confirmed", "user_id", user.ID)
	metrics.RecordAuthOutcome(opConfirm, string(OutcomeConfirmed))
	return OutcomeConfirmed, nil
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(ctx context.Context, token string) (*model.Session, error) {
	session, err := s.sessions.GetSession(ctx, token)
	if errors.Is(err, model.ErrSessionNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, err
	}

	if session.IsExpired(s.clock.Now()) {
		if err := s.sessions.DeleteSession(ctx, token); err != nil {
			return nil, err
		}
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// createSession creates a new session carrying only the user's public fields
func (s *Service) createSession(ctx context.Context, user *model.User) (*model.Session, error) {
	token, err := s.random.String(sessionTokenLength, random.TokenAlphabet)
	if err != nil {
		return nil, fmt.Errorf("generating session token: %w", err)
	}
	now := s.clock.Now()

	session := &model.Session{
		Token:     sessionPrefix + token,
		User:      user.Public(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
