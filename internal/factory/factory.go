package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mcoot/morpion/internal/config"
	"github.com/mcoot/morpion/internal/dependencies/clock"
	"github.com/mcoot/morpion/internal/dependencies/random"
	"github.com/mcoot/morpion/internal/services/auth"
	"github.com/mcoot/morpion/internal/services/notify"
	"github.com/mcoot/morpion/internal/services/stats"
	"github.com/mcoot/morpion/internal/services/totp"
	"github.com/mcoot/morpion/internal/storage"
	"github.com/mcoot/morpion/internal/storage/memory"
	"github.com/mcoot/morpion/internal/storage/postgres"
	redisstorage "github.com/mcoot/morpion/internal/storage/redis"
)

// Backend type constants
const (
	StorageTypeMemory   = config.BackendMemory
	StorageTypePostgres = config.BackendPostgres

	SessionTypeMemory = config.BackendMemory
	SessionTypeRedis  = config.BackendRedis

	NotifierTypeLog   = config.BackendLog
	NotifierTypeRedis = config.BackendRedis
)

// App contains all wired application components
type App struct {
	// Storage
	Storage  storage.Storage
	Sessions storage.SessionStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	TOTP         *totp.Verifier
	Dispatcher   *notify.Dispatcher
	AuthService  *auth.Service
	StatsService *stats.Service

	pool  *pgxpool.Pool
	redis *goredis.Client

	stopSweep func()
	swept     chan struct{}
}

// sessionSweepInterval is how often expired in-memory sessions are dropped
const sessionSweepInterval = 10 * time.Minute

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// TOTPConfig holds two-factor provisioning settings (optional)
	TOTPConfig totp.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger

	// StorageType selects the user and game store ("memory" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// PostgresConfig holds connection settings (required if StorageType is "postgres")
	PostgresConfig *postgres.Config

	// SessionType selects the session store ("memory" or "redis")
	// If empty, defaults to "memory"
	SessionType string
	// NotifierType selects signup delivery ("log" or "redis")
	// If empty, defaults to "log"
	NotifierType string
	// NotifyTimeout bounds a single signup delivery (optional)
	NotifyTimeout time.Duration
	// RedisConfig holds Redis connection settings (required for redis sessions or notifier)
	RedisConfig *redisstorage.Config
}

// ConfigFrom maps loaded server configuration onto factory settings
func ConfigFrom(c config.Config, logger *slog.Logger) Config {
	pgCfg := postgres.DefaultConfig()
	pgCfg.URL = c.Storage.Postgres.URL
	pgCfg.MaxConns = c.Storage.Postgres.MaxConns
	pgCfg.Migrate = c.Storage.Postgres.Migrate

	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = c.Redis.URL
	redisCfg.SessionTTL = c.Sessions.Duration

	return Config{
		AuthConfig:     auth.Config{SessionDuration: c.Sessions.Duration},
		TOTPConfig:     totp.Config{Issuer: c.TOTP.Issuer, QRSize: c.TOTP.QRSize},
		Logger:         logger,
		StorageType:    c.Storage.Type,
		PostgresConfig: &pgCfg,
		SessionType:    c.Sessions.Type,
		NotifierType:   c.Notify.Type,
		NotifyTimeout:  c.Notify.Timeout,
		RedisConfig:    &redisCfg,
	}
}

// New creates a new application with all dependencies wired.
// The caller must Close the returned App.
func New(ctx context.Context, cfg Config) (app *App, err error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := orDefault(cfg.StorageType, StorageTypeMemory)
	sessionType := orDefault(cfg.SessionType, SessionTypeMemory)
	notifierType := orDefault(cfg.NotifierType, NotifierTypeLog)

	var (
		pool        *pgxpool.Pool
		redisClient *goredis.Client
	)
	defer func() {
		if err == nil {
			return
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
		if pool != nil {
			pool.Close()
		}
	}()

	// Create storage based on type
	var store storage.Storage
	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		pool, err = postgres.Connect(ctx, *cfg.PostgresConfig)
		if err != nil {
			return nil, err
		}
		if cfg.PostgresConfig.Migrate {
			if err = postgres.Migrate(ctx, pool); err != nil {
				return nil, err
			}
		}
		logger.Info("connected to postgres", slog.String("database", cfg.PostgresConfig.String()))
		store = postgres.New(pool)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory' or 'postgres'", storageType)
	}

	if sessionType == SessionTypeRedis || notifierType == NotifierTypeRedis {
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required for redis sessions or notifier")
		}
		redisClient, err = redisstorage.NewClient(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
	}

	// Create session store based on type
	var sessions storage.SessionStore
	switch sessionType {
	case SessionTypeMemory:
		sessions = memory.NewSessionStore()
	case SessionTypeRedis:
		sessions = redisstorage.NewSessionStore(redisClient, *cfg.RedisConfig)
	default:
		return nil, fmt.Errorf("invalid SessionType %q: must be 'memory' or 'redis'", sessionType)
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	var notifier notify.Notifier
	switch notifierType {
	case NotifierTypeLog:
		notifier = notify.NewLogNotifier(logger)
	case NotifierTypeRedis:
		notifier = notify.NewRedisNotifier(redisClient, redisstorage.SignupChannel(), clk)
	default:
		return nil, fmt.Errorf("invalid NotifierType %q: must be 'log' or 'redis'", notifierType)
	}

	app = newWithDependencies(store, sessions, notifier, clk, rnd, cfg, logger)
	app.pool = pool
	app.redis = redisClient

	if mem, ok := sessions.(*memory.SessionStore); ok {
		sweepCtx, cancel := context.WithCancel(context.Background())
		app.stopSweep = cancel
		app.swept = make(chan struct{})
		go func() {
			defer close(app.swept)
			mem.Sweep(sweepCtx, clk, sessionSweepInterval)
		}()
	}
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	sessions storage.SessionStore,
	notifier notify.Notifier,
	clk clock.Clock,
	rnd random.Random,
	cfg Config,
	logger *slog.Logger,
) *App {
	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	// Create services
	verifier := totp.New(clk, rnd, cfg.TOTPConfig)
	dispatcher := notify.NewDispatcher(notifier, logger, cfg.NotifyTimeout)
	authService := auth.New(store, sessions, verifier, dispatcher, clk, rnd, authCfg, logger)
	statsService := stats.New(store, clk, logger)

	return &App{
		Storage:      store,
		Sessions:     sessions,
		Clock:        clk,
		Random:       rnd,
		TOTP:         verifier,
		Dispatcher:   dispatcher,
		AuthService:  authService,
		StatsService: statsService,
	}
}

// Close waits for pending signup notifications and then releases connections
func (a *App) Close(ctx context.Context) error {
	if a.stopSweep != nil {
		a.stopSweep()
		<-a.swept
		a.stopSweep = nil
	}

	var errs []error
	if err := a.Dispatcher.Close(ctx); err != nil && !errors.Is(err, notify.ErrDispatcherClosed) {
		errs = append(errs, fmt.Errorf("closing dispatcher: %w", err))
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing redis: %w", err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return errors.Join(errs...)
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
