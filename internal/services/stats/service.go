package stats

import (
	"context"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/mcoot/morpion/internal/dependencies/clock"
	"github.com/mcoot/morpion/internal/model"
	"github.com/mcoot/morpion/internal/storage"
)

// Service reads game statistics and match history for profiles
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new stats Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Summarize reduces participation results into profile counters.
// A nil winner counts as not ended, a winner equal to the participant's
// symbol as won, and "draw" as drawn. Everything else played is lost.
func Summarize(results []model.ParticipationResult) model.Stats {
	var st model.Stats
	for _, r := range results {
		switch {
		case r.Winner == nil:
			st.NotEnded++
		case *r.Winner == r.Symbol:
			st.Won++
		case *r.Winner == model.WinnerDraw:
			st.Drawn++
		}
		st.Played++
	}
	st.Lost = st.Played - st.Won - st.Drawn - st.NotEnded
	return st
}

// GeneralStats returns the counters for a user's recorded games
func (s *Service) GeneralStats(ctx context.Context, userID model.UserID) (model.Stats, error) {
	results, err := s.storage.ListParticipationResults(ctx, userID)
	if err != nil {
		return model.Stats{}, err
	}
	return Summarize(results), nil
}

// History returns the user's completed two-player matches, newest first.
// The user is always player one.
func (s *Service) History(ctx context.Context, userID model.UserID) ([]model.Match, error) {
	return s.storage.ListMatchHistory(ctx, userID)
}

// ProfileView is a profile plus presentation fields
type ProfileView struct {
	model.Profile
	// MemberSince is a relative time such as "3 weeks ago"
	MemberSince string
}

// Profile loads everything shown on a user's profile page.
// Unknown users yield model.ErrUserNotFound.
func (s *Service) Profile(ctx context.Context, userID model.UserID) (*ProfileView, error) {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	st, err := s.GeneralStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.History(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "profile loaded", "user_id", userID, "played", st.Played, "matches", len(history))

	return &ProfileView{
		Profile: model.Profile{
			User:    user.Public(),
			Stats:   st,
			History: history,
		},
		MemberSince: humanize.RelTime(user.CreatedAt, s.clock.Now(), "ago", "from now"),
	}, nil
}
