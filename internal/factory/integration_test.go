package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"

	"github.com/mcoot/morpion/internal/model"
	"github.com/mcoot/morpion/internal/services/auth"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.NoError(s.app.Close(s.ctx))
}

func strPtr(v string) *string { return &v }

// register creates an account and waits for its signup notification
func (s *IntegrationSuite) register(name, email, password string, twoFactor bool) (*auth.RegisterResult, string) {
	result, err := s.app.AuthService.Register(s.ctx, auth.RegisterRequest{
		Name:            name,
		Email:           email,
		Password:        password,
		EnableTwoFactor: twoFactor,
	})
	s.Require().NoError(err)

	var signup Signup
	s.Require().Eventually(func() bool {
		var ok bool
		signup, ok = s.app.Signups.For(email)
		return ok
	}, time.Second, 5*time.Millisecond)

	return result, signup.Token
}

func (s *IntegrationSuite) login(email, password, code string) *auth.LoginResult {
	result, err := s.app.AuthService.Login(s.ctx, auth.LoginRequest{Email: email, Password: password, Code: code})
	s.Require().NoError(err)
	return result
}

// Test: Register, confirm and log in with a password only
func (s *IntegrationSuite) TestPasswordAccountFlow() {
	registered, token := s.register("alice", "a@x.com", "secret", false)
	s.Equal(auth.OutcomeRegistered, registered.Outcome)

	// Unconfirmed accounts cannot log in
	s.Equal(auth.OutcomeEmailNotConfirmed, s.login("a@x.com", "secret", "").Outcome)

	// A wrong token does not confirm
	outcome, err := s.app.AuthService.ConfirmEmail(s.ctx, registered.User.ID, "not-the-token")
	s.Require().NoError(err)
	s.Equal(auth.OutcomeForbidden, outcome)

	outcome, err = s.app.AuthService.ConfirmEmail(s.ctx, registered.User.ID, token)
	s.Require().NoError(err)
	s.Equal(auth.OutcomeConfirmed, outcome)

	// Confirming twice is refused
	outcome, err = s.app.AuthService.ConfirmEmail(s.ctx, registered.User.ID, token)
	s.Require().NoError(err)
	s.Equal(auth.OutcomeForbidden, outcome)

	s.Equal(auth.OutcomeInvalidCredentials, s.login("a@x.com", "wrong", "").Outcome)

	result := s.login("a@x.com", "secret", "")
	s.Require().Equal(auth.OutcomeLoggedIn, result.Outcome)
	s.Require().NotNil(result.Session)
	s.Equal("alice", result.Session.User.Name)

	session, err := s.app.AuthService.ValidateSession(s.ctx, result.Session.Token)
	s.Require().NoError(err)
	s.Equal(registered.User.ID, session.User.ID)

	s.Require().NoError(s.app.AuthService.InvalidateSession(s.ctx, result.Session.Token))
	_, err = s.app.AuthService.ValidateSession(s.ctx, result.Session.Token)
	s.ErrorIs(err, auth.ErrInvalidSession)
}

// Test: Two-factor accounts need a current code once confirmed
func (s *IntegrationSuite) TestTwoFactorAccountFlow() {
	registered, token := s.register("bob", "b@x.com", "hunter2", true)
	s.Require().Equal(auth.OutcomeRegisteredWithTwoFactorSetup, registered.Outcome)
	s.Require().NotNil(registered.TwoFactor)

	// The confirmation gate comes before the two-factor gate
	s.Equal(auth.OutcomeEmailNotConfirmed, s.login("b@x.com", "hunter2", "").Outcome)

	outcome, err := s.app.AuthService.ConfirmEmail(s.ctx, registered.User.ID, token)
	s.Require().NoError(err)
	s.Require().Equal(auth.OutcomeConfirmed, outcome)

	s.Equal(auth.OutcomeTwoFactorRequired, s.login("b@x.com", "hunter2", "").Outcome)
	s.Equal(auth.OutcomeTwoFactorInvalid, s.login("b@x.com", "hunter2", "abc").Outcome)

	code, err := s.app.TOTP.CodeAt(registered.TwoFactor.Secret)
	s.Require().NoError(err)

	result := s.login("b@x.com", "hunter2", code)
	s.Require().Equal(auth.OutcomeLoggedIn, result.Outcome)

	// A code from long ago no longer verifies
	s.app.MockClock.Advance(10 * time.Minute)
	s.Equal(auth.OutcomeTwoFactorInvalid, s.login("b@x.com", "hunter2", code).Outcome)
}

// Test: Sessions stop validating once they expire
func (s *IntegrationSuite) TestSessionExpiry() {
	registered, token := s.register("alice", "a@x.com", "secret", false)
	_, err := s.app.AuthService.ConfirmEmail(s.ctx, registered.User.ID, token)
	s.Require().NoError(err)

	result := s.login("a@x.com", "secret", "")
	s.Require().NotNil(result.Session)

	s.app.MockClock.Advance(auth.DefaultConfig().SessionDuration + time.Second)
	_, err = s.app.AuthService.ValidateSession(s.ctx, result.Session.Token)
	s.ErrorIs(err, auth.ErrInvalidSession)
}

// Test: Profile statistics and history over recorded games
func (s *IntegrationSuite) TestProfileStatistics() {
	alice, _ := s.register("alice", "a@x.com", "secret", false)
	bob, _ := s.register("bob", "b@x.com", "secret", false)
	base := s.app.MockClock.Now()

	record := func(winner *string, at time.Time, aliceSymbol string) {
		game := &model.Game{Winner: winner, CreatedAt: at}
		s.Require().NoError(s.app.Storage.SaveGame(s.ctx, game))
		bobSymbol := model.SymbolO
		if aliceSymbol == model.SymbolO {
			bobSymbol = model.SymbolX
		}
		s.Require().NoError(s.app.Storage.SaveParticipation(s.ctx,
			&model.Participation{UserID: alice.User.ID, GameID: game.ID, Symbol: aliceSymbol}))
		s.Require().NoError(s.app.Storage.SaveParticipation(s.ctx,
			&model.Participation{UserID: bob.User.ID, GameID: game.ID, Symbol: bobSymbol}))
	}

	record(strPtr(model.SymbolX), base, model.SymbolX)
	record(strPtr(model.WinnerDraw), base.Add(time.Hour), model.SymbolO)
	record(strPtr(model.SymbolO), base.Add(2*time.Hour), model.SymbolX)
	record(nil, base.Add(3*time.Hour), model.SymbolX)

	s.app.MockClock.Advance(14 * 24 * time.Hour)

	view, err := s.app.StatsService.Profile(s.ctx, alice.User.ID)
	s.Require().NoError(err)

	s.Equal(model.Stats{Played: 3, Won: 1, Lost: 1, Drawn: 1}, view.Stats)
	s.Equal("2 weeks ago", view.MemberSince)

	s.Require().Len(view.History, 3)
	s.Equal(model.SymbolO, view.History[0].Winner)
	s.Equal(alice.User.ID, view.History[0].PlayerOne.ID)
	s.Equal("bob", view.History[0].PlayerTwo.Name)
	s.Equal(model.SymbolX, view.History[2].Winner)

	bobView, err := s.app.StatsService.Profile(s.ctx, bob.User.ID)
	s.Require().NoError(err)
	s.Equal(model.Stats{Played: 3, Won: 1, Lost: 1, Drawn: 1}, bobView.Stats)
	s.Equal(bob.User.ID, bobView.History[0].PlayerOne.ID)
}

// Test: Unknown users
func (s *IntegrationSuite) TestUnknownUser() {
	_, err := s.app.StatsService.Profile(s.ctx, 404)
	s.ErrorIs(err, model.ErrUserNotFound)

	_, err = s.app.AuthService.ConfirmEmail(s.ctx, 404, "token")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func TestNewRejectsUnknownBackends(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, Config{StorageType: "sqlite"})
	require.ErrorContains(t, err, "invalid StorageType")

	_, err = New(ctx, Config{SessionType: "memcached"})
	require.ErrorContains(t, err, "invalid SessionType")

	_, err = New(ctx, Config{NotifierType: "smtp"})
	require.ErrorContains(t, err, "invalid NotifierType")

	_, err = New(ctx, Config{StorageType: StorageTypePostgres})
	require.ErrorContains(t, err, "PostgresConfig required")
}

func TestNewDefaultsToMemory(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	ctx := context.Background()

	app, err := New(ctx, Config{})
	require.NoError(t, err)
	require.NotNil(t, app.AuthService)
	require.NotNil(t, app.StatsService)
	require.NoError(t, app.Close(ctx))
}
