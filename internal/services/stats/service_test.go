package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/morpion/internal/dependencies/mocks"
	"github.com/mcoot/morpion/internal/model"
	"github.com/mcoot/morpion/internal/storage/memory"
	"github.com/mcoot/morpion/internal/testutil"
)

func strPtr(v string) *string { return &v }

func TestSummarizeThreeParticipations(t *testing.T) {
	st := Summarize([]model.ParticipationResult{
		{Winner: strPtr(model.SymbolX), Symbol: model.SymbolX},
		{Winner: strPtr(model.WinnerDraw), Symbol: model.SymbolX},
		{Winner: nil, Symbol: model.SymbolX},
	})

	assert.Equal(t, model.Stats{Played: 3, Won: 1, Drawn: 1, NotEnded: 1, Lost: 0}, st)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		results []model.ParticipationResult
		want    model.Stats
	}{
		{
			name: "empty",
			want: model.Stats{},
		},
		{
			name: "losses are derived",
			results: []model.ParticipationResult{
				{Winner: strPtr(model.SymbolO), Symbol: model.SymbolX},
				{Winner: strPtr(model.SymbolX), Symbol: model.SymbolO},
				{Winner: strPtr(model.SymbolO), Symbol: model.SymbolO},
			},
			want: model.Stats{Played: 3, Won: 1, Lost: 2},
		},
		{
			name: "draws",
			results: []model.ParticipationResult{
				{Winner: strPtr(model.WinnerDraw), Symbol: model.SymbolX},
				{Winner: strPtr(model.WinnerDraw), Symbol: model.SymbolO},
			},
			want: model.Stats{Played: 2, Drawn: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.results))
		})
	}
}

type brokenStorage struct {
	*memory.Storage
	err error
}

func (b *brokenStorage) ListParticipationResults(ctx context.Context, userID model.UserID) ([]model.ParticipationResult, error) {
	return nil, b.err
}

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context

	alice, bob *model.User
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()

	s.alice = &model.User{Name: "alice", Email: "alice@x.com", CreatedAt: s.clock.Now().Add(-14 * 24 * time.Hour)}
	s.bob = &model.User{Name: "bob", Email: "bob@x.com", CreatedAt: s.clock.Now()}
	s.Require().NoError(s.storage.CreateUser(s.ctx, s.alice))
	s.Require().NoError(s.storage.CreateUser(s.ctx, s.bob))
}

func (s *ServiceSuite) play(winner *string, at time.Time, aliceSymbol, bobSymbol string) {
	game := &model.Game{Winner: winner, CreatedAt: at}
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))
	s.Require().NoError(s.storage.SaveParticipation(s.ctx, &model.Participation{UserID: s.alice.ID, GameID: game.ID, Symbol: aliceSymbol}))
	s.Require().NoError(s.storage.SaveParticipation(s.ctx, &model.Participation{UserID: s.bob.ID, GameID: game.ID, Symbol: bobSymbol}))
}

func (s *ServiceSuite) TestGeneralStatsExcludesUnfinishedGames() {
	now := s.clock.Now()
	s.play(strPtr(model.SymbolX), now, model.SymbolX, model.SymbolO)
	s.play(strPtr(model.WinnerDraw), now, model.SymbolX, model.SymbolO)
	s.play(nil, now, model.SymbolX, model.SymbolO)
	s.play(strPtr(model.SymbolX), now, model.SymbolO, model.SymbolX)

	st, err := s.service.GeneralStats(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Equal(model.Stats{Played: 3, Won: 1, Drawn: 1, Lost: 1}, st)

	st, err = s.service.GeneralStats(s.ctx, s.bob.ID)
	s.Require().NoError(err)
	s.Equal(model.Stats{Played: 3, Won: 1, Drawn: 1, Lost: 1}, st)
}

func (s *ServiceSuite) TestGeneralStatsNoGames() {
	st, err := s.service.GeneralStats(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Equal(model.Stats{}, st)
}

func (s *ServiceSuite) TestHistoryNewestFirst() {
	now := s.clock.Now()
	s.play(strPtr(model.SymbolX), now.Add(-2*time.Hour), model.SymbolX, model.SymbolO)
	s.play(strPtr(model.WinnerDraw), now.Add(-time.Hour), model.SymbolO, model.SymbolX)
	s.play(nil, now, model.SymbolX, model.SymbolO)

	history, err := s.service.History(s.ctx, s.bob.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal(model.WinnerDraw, history[0].Winner)
	s.Equal(s.bob.ID, history[0].PlayerOne.ID)
	s.Equal(model.SymbolX, history[0].PlayerOne.Symbol)
	s.Equal("alice@x.com", history[0].PlayerTwo.Email)
	s.Equal(model.SymbolX, history[1].Winner)
}

func (s *ServiceSuite) TestProfile() {
	s.play(strPtr(model.SymbolO), s.clock.Now(), model.SymbolX, model.SymbolO)

	profile, err := s.service.Profile(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Equal("alice", profile.User.Name)
	s.Equal(model.Stats{Played: 1, Lost: 1}, profile.Stats)
	s.Len(profile.History, 1)
	s.Equal("2 weeks ago", profile.MemberSince)
}

func (s *ServiceSuite) TestProfileUnknownUser() {
	_, err := s.service.Profile(s.ctx, 999)
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *ServiceSuite) TestProfileStoreFailure() {
	dbErr := errors.New("database unavailable")
	service := New(&brokenStorage{Storage: s.storage, err: dbErr}, s.clock, testutil.NopLogger())

	_, err := service.Profile(s.ctx, s.alice.ID)
	s.ErrorIs(err, dbErr)
}
