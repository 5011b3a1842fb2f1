package storage

import (
	"context"

	"github.com/mcoot/morpion/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	FindUserByEmailAndDigest(ctx context.Context, email, digest string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error

	// Game record operations, written by the game engine
	SaveGame(ctx context.Context, game *model.Game) error
	SaveParticipation(ctx context.Context, p *model.Participation) error

	// Reporting operations
	ListParticipationResults(ctx context.Context, userID model.UserID) ([]model.ParticipationResult, error)
	ListMatchHistory(ctx context.Context, userID model.UserID) ([]model.Match, error)
}

// SessionStore persists login sessions keyed by token
type SessionStore interface {
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
}
