package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/morpion/internal/model"
	"github.com/mcoot/morpion/internal/storage"
)

// NewClient connects to Redis and verifies the connection
func NewClient(cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().DialTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// SessionStore is a Redis-backed implementation of storage.SessionStore.
// Each session is a JSON value whose key expires with the session.
type SessionStore struct {
	client *redis.Client
	cfg    Config
}

// NewSessionStore creates a session store with an existing client
func NewSessionStore(client *redis.Client, cfg Config) *SessionStore {
	return &SessionStore{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *SessionStore) Close() error {
	return s.client.Close()
}

// Ensure SessionStore implements the interface
var _ storage.SessionStore = (*SessionStore)(nil)

// sessionRecord is the stored form of a session
type sessionRecord struct {
	Token     string       `json:"token"`
	UserID    model.UserID `json:"user_id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	UserSince time.Time    `json:"user_created_at"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func (s *SessionStore) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(sessionRecord{
		Token:     session.Token,
		UserID:    session.User.ID,
		Name:      session.User.Name,
		Email:     session.User.Email,
		UserSince: session.User.CreatedAt,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return err
	}

	ttl := session.ExpiresAt.Sub(session.CreatedAt)
	if ttl <= 0 {
		ttl = s.cfg.SessionTTL
	}
	return s.client.Set(ctx, sessionKey(session.Token), data, ttl).Err()
}

func (s *SessionStore) GetSession(ctx context.Context, token string) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &model.Session{
		Token: rec.Token,
		User: model.PublicUser{
			ID:        rec.UserID,
			Name:      rec.Name,
			Email:     rec.Email,
			CreatedAt: rec.UserSince,
		},
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}
