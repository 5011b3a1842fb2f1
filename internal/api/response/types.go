package response

import (
	"time"

	"github.com/mcoot/morpion/internal/model"
	"github.com/mcoot/morpion/internal/services/auth"
	"github.com/mcoot/morpion/internal/services/stats"
)

// User represents a user in API responses
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromModel converts a model.PublicUser to a response User
func UserFromModel(u model.PublicUser) User {
	return User{
		ID:        int64(u.ID),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// Message is a response carrying only a human readable message
type Message struct {
	Message string `json:"message"`
}

// TwoFactorSetup is returned once, at registration, when two-factor is enabled
type TwoFactorSetup struct {
	Secret string `json:"secret"`
	// QRCode is a data URI of a PNG image to scan with an authenticator app
	QRCode string `json:"qr_code"`
}

// RegisterResponse is the response for account creation
type RegisterResponse struct {
	Outcome   string          `json:"outcome"`
	Message   string          `json:"message"`
	User      User            `json:"user"`
	TwoFactor *TwoFactorSetup `json:"two_factor,omitempty"`
}

// RegisterResponseFromResult creates a RegisterResponse from a registration result
func RegisterResponseFromResult(r *auth.RegisterResult) RegisterResponse {
	resp := RegisterResponse{
		Outcome: string(r.Outcome),
		Message: "User " + r.User.Name + " has been created, please check your inbox !",
		User:    UserFromModel(r.User),
	}
	if r.TwoFactor != nil {
		resp.TwoFactor = &TwoFactorSetup{
			Secret: r.TwoFactor.Secret,
			QRCode: r.TwoFactor.Artifact,
		}
	}
	return resp
}

// AuthResponse is the response for a successful login
type AuthResponse struct {
	User         User      `json:"user"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *model.Session) AuthResponse {
	return AuthResponse{
		User:         UserFromModel(s.User),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Stats are the game counters shown on a profile
type Stats struct {
	Played   int `json:"played"`
	Won      int `json:"won"`
	Lost     int `json:"lost"`
	Drawn    int `json:"drawn"`
	NotEnded int `json:"not_ended"`
}

// StatsFromModel converts model.Stats
func StatsFromModel(s model.Stats) Stats {
	return Stats{
		Played:   s.Played,
		Won:      s.Won,
		Lost:     s.Lost,
		Drawn:    s.Drawn,
		NotEnded: s.NotEnded,
	}
}

// MatchPlayer is one side of a match
type MatchPlayer struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Symbol string `json:"symbol"`
}

// Match is a completed game in a profile history
type Match struct {
	GameID    int64       `json:"game_id"`
	PlayerOne MatchPlayer `json:"player_one"`
	PlayerTwo MatchPlayer `json:"player_two"`
	Winner    string      `json:"winner"`
	CreatedAt time.Time   `json:"created_at"`
}

func matchPlayerFromModel(p model.MatchPlayer) MatchPlayer {
	return MatchPlayer{
		ID:     int64(p.ID),
		Name:   p.Name,
		Email:  p.Email,
		Symbol: p.Symbol,
	}
}

// MatchFromModel converts model.Match
func MatchFromModel(m model.Match) Match {
	return Match{
		GameID:    int64(m.GameID),
		PlayerOne: matchPlayerFromModel(m.PlayerOne),
		PlayerTwo: matchPlayerFromModel(m.PlayerTwo),
		Winner:    m.Winner,
		CreatedAt: m.CreatedAt,
	}
}

// Profile is the response for a user's profile page
type Profile struct {
	User        User    `json:"user"`
	MemberSince string  `json:"member_since"`
	Stats       Stats   `json:"stats"`
	History     []Match `json:"history"`
}

// ProfileFromView converts a stats.ProfileView
func ProfileFromView(v *stats.ProfileView) Profile {
	history := make([]Match, len(v.History))
	for i, m := range v.History {
		history[i] = MatchFromModel(m)
	}
	return Profile{
		User:        UserFromModel(v.User),
		MemberSince: v.MemberSince,
		Stats:       StatsFromModel(v.Stats),
		History:     history,
	}
}
