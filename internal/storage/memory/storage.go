package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/morpion/internal/model"
	"github.com/mcoot/morpion/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users      map[model.UserID]*model.User
	emailIndex map[string]model.UserID
	nameIndex  map[string]model.UserID
	lastUserID model.UserID

	games          map[model.GameID]*model.Game
	participations []model.Participation
	lastGameID     model.GameID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:      make(map[model.UserID]*model.User),
		emailIndex: make(map[string]model.UserID),
		nameIndex:  make(map[string]model.UserID),
		games:      make(map[model.GameID]*model.Game),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emailIndex[user.Email]; ok {
		return model.ErrUserExists
	}
	if _, ok := s.nameIndex[user.Name]; ok {
		return model.ErrUserExists
	}

	s.lastUserID++
	user.ID = s.lastUserID

	s.users[user.ID] = copyUser(user)
	s.emailIndex[user.Email] = user.ID
	s.nameIndex[user.Name] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return copyUser(user), nil
}

func (s *Storage) FindUserByEmailAndDigest(ctx context.Context, email, digest string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[email]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user := s.users[id]
	if user.PasswordDigest != digest {
		return nil, model.ErrUserNotFound
	}
	return copyUser(user), nil
}

func (s *Storage) UpdateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return model.ErrUserNotFound
	}
	if id, ok := s.emailIndex[user.Email]; ok && id != user.ID {
		return model.ErrUserExists
	}
	if id, ok := s.nameIndex[user.Name]; ok && id != user.ID {
		return model.ErrUserExists
	}

	delete(s.emailIndex, existing.Email)
	delete(s.nameIndex, existing.Name)
	s.users[user.ID] = copyUser(user)
	s.emailIndex[user.Email] = user.ID
	s.nameIndex[user.Name] = user.ID
	return nil
}

// Game record operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if game.ID == 0 {
		s.lastGameID++
		game.ID = s.lastGameID
	} else if game.ID > s.lastGameID {
		s.lastGameID = game.ID
	}
	g := *game
	g.Winner = copyString(game.Winner)
	s.games[game.ID] = &g
	return nil
}

func (s *Storage) SaveParticipation(ctx context.Context, p *model.Participation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[p.UserID]; !ok {
		return model.ErrUserNotFound
	}
	if _, ok := s.games[p.GameID]; !ok {
		return model.ErrGameNotFound
	}
	for i, existing := range s.participations {
		if existing.UserID == p.UserID && existing.GameID == p.GameID {
			s.participations[i] = *p
			return nil
		}
	}
	s.participations = append(s.participations, *p)
	return nil
}

// Reporting operations

func (s *Storage) ListParticipationResults(ctx context.Context, userID model.UserID) ([]model.ParticipationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []model.ParticipationResult{}
	for _, p := range s.participations {
		if p.UserID != userID {
			continue
		}
		game, ok := s.games[p.GameID]
		if !ok || game.Winner == nil {
			continue
		}
		results = append(results, model.ParticipationResult{
			Winner: copyString(game.Winner),
			Symbol: p.Symbol,
		})
	}
	return results, nil
}

func (s *Storage) ListMatchHistory(ctx context.Context, userID model.UserID) ([]model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byGame := make(map[model.GameID][]model.Participation)
	for _, p := range s.participations {
		byGame[p.GameID] = append(byGame[p.GameID], p)
	}

	matches := []model.Match{}
	for gameID, parts := range byGame {
		game := s.games[gameID]
		if game == nil || game.Winner == nil || *game.Winner == "" || len(parts) != 2 {
			continue
		}

		self, other := parts[0], parts[1]
		if other.UserID == userID {
			self, other = other, self
		}
		if self.UserID != userID || other.UserID == userID {
			continue
		}

		one, two := s.users[self.UserID], s.users[other.UserID]
		if one == nil || two == nil || one.Email == two.Email {
			continue
		}

		matches = append(matches, model.Match{
			GameID:    gameID,
			PlayerOne: matchPlayer(one, self.Symbol),
			PlayerTwo: matchPlayer(two, other.Symbol),
			Winner:    *game.Winner,
			CreatedAt: game.CreatedAt,
		})
	}

	// Newest first, game id breaks ties so the order is stable
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].GameID > matches[j].GameID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

func matchPlayer(u *model.User, symbol string) model.MatchPlayer {
	return model.MatchPlayer{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Symbol: symbol,
	}
}

func copyUser(u *model.User) *model.User {
	c := *u
	c.ConfirmationToken = copyString(u.ConfirmationToken)
	c.TOTPSecret = copyString(u.TOTPSecret)
	return &c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
