package factory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/morpion/internal/config"
	"github.com/mcoot/morpion/internal/services/auth"
	"github.com/mcoot/morpion/internal/services/notify"
	redisstorage "github.com/mcoot/morpion/internal/storage/redis"
)

func TestConfigFrom(t *testing.T) {
	c := config.Default()
	c.Storage.Type = config.BackendPostgres
	c.Storage.Postgres.URL = "postgres://u:p@db:5432/morpion"
	c.Storage.Postgres.MaxConns = 4
	c.Sessions.Type = config.BackendRedis
	c.Sessions.Duration = time.Hour
	c.Redis.URL = "redis://cache:6379"
	c.Notify.Type = config.BackendRedis
	c.TOTP.Issuer = "Example"

	cfg := ConfigFrom(c, nil)

	assert.Equal(t, StorageTypePostgres, cfg.StorageType)
	require.NotNil(t, cfg.PostgresConfig)
	assert.Equal(t, "postgres://u:p@db:5432/morpion", cfg.PostgresConfig.URL)
	assert.Equal(t, int32(4), cfg.PostgresConfig.MaxConns)
	assert.Equal(t, SessionTypeRedis, cfg.SessionType)
	assert.Equal(t, NotifierTypeRedis, cfg.NotifierType)
	require.NotNil(t, cfg.RedisConfig)
	assert.Equal(t, "redis://cache:6379", cfg.RedisConfig.URL)
	assert.Equal(t, time.Hour, cfg.RedisConfig.SessionTTL)
	assert.Equal(t, time.Hour, cfg.AuthConfig.SessionDuration)
	assert.Equal(t, "Example", cfg.TOTPConfig.Issuer)
}

func TestNewWithRedisBackends(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = "redis://" + mr.Addr()

	app, err := New(ctx, Config{
		SessionType:  SessionTypeRedis,
		NotifierType: NotifierTypeRedis,
		RedisConfig:  &redisCfg,
	})
	require.NoError(t, err)

	sub := app.redis.Subscribe(ctx, redisstorage.SignupChannel())
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	registered, err := app.AuthService.Register(ctx, auth.RegisterRequest{
		Name:     "alice",
		Email:    "a@x.com",
		Password: "secret",
	})
	require.NoError(t, err)

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	require.NoError(t, sub.Close())

	var env notify.Envelope
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
	assert.Equal(t, notify.EventSignedUp, env.Type)

	var event notify.SignupEvent
	require.NoError(t, json.Unmarshal(env.Payload, &event))
	assert.Equal(t, "a@x.com", event.Email)

	outcome, err := app.AuthService.ConfirmEmail(ctx, registered.User.ID, event.ConfirmationToken)
	require.NoError(t, err)
	require.Equal(t, auth.OutcomeConfirmed, outcome)

	result, err := app.AuthService.Login(ctx, auth.LoginRequest{Email: "a@x.com", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, auth.OutcomeLoggedIn, result.Outcome)

	// The session lives in Redis
	assert.Len(t, mr.Keys(), 1)

	require.NoError(t, app.Close(ctx))
}

func TestNewFailsWhenRedisUnreachable(t *testing.T) {
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = "redis://127.0.0.1:1"
	redisCfg.DialTimeout = 100 * time.Millisecond

	_, err := New(context.Background(), Config{SessionType: SessionTypeRedis, RedisConfig: &redisCfg})
	assert.Error(t, err)
}
