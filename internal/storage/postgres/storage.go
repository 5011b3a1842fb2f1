package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/mcoot/morpion/internal/model"
	"github.com/mcoot/morpion/internal/storage"
	"github.com/mcoot/morpion/internal/storage/postgres/migrations"
)

// DB is the subset of pgxpool.Pool used by the store
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Storage implements storage.Storage using PostgreSQL
type Storage struct {
	db DB
}

// New creates a store on top of an existing pool or connection
func New(db DB) *Storage {
	return &Storage{db: db}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Connect opens a pool and waits for the database to accept connections
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, oops.Code("POSTGRES_CONFIG_INVALID").Wrap(err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, oops.Code("POSTGRES_CONNECT_FAILED").Wrap(err)
	}

	base := cfg.ConnectBackoff
	if base <= 0 {
		base = DefaultConfig().ConnectBackoff
	}
	backoff := retry.WithMaxRetries(cfg.ConnectAttempts, retry.NewExponential(base))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("POSTGRES_CONNECT_FAILED").
			With("attempts", cfg.ConnectAttempts).
			Wrap(err)
	}
	return pool, nil
}

// Migrate applies the embedded schema migrations
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return oops.Code("POSTGRES_MIGRATE_FAILED").Wrap(err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return oops.Code("POSTGRES_MIGRATE_FAILED").Wrap(err)
	}
	return nil
}

// User operations

const userColumns = `id, name, email, password, confirmation_token, totp_secret, created_at, updated_at`

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (name, email, password, confirmation_token, totp_secret, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		user.Name,
		user.Email,
		user.PasswordDigest,
		user.ConfirmationToken,
		user.TOTPSecret,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if isUniqueViolation(err) {
		return oops.Code("USER_EXISTS").
			With("name", user.Name).
			Wrap(model.ErrUserExists)
	}
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("name", user.Name).
			Wrap(err)
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(model.ErrUserNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").
			With("operation", "get user by id").
			With("id", id).
			Wrap(err)
	}
	return user, nil
}

func (s *Storage) FindUserByEmailAndDigest(ctx context.Context, email, digest string) (*model.User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1 AND password = $2
	`, email, digest)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(model.ErrUserNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").
			With("operation", "find user by credentials").
			Wrap(err)
	}
	return user, nil
}

func (s *Storage) UpdateUser(ctx context.Context, user *model.User) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users
		SET name = $2, email = $3, password = $4, confirmation_token = $5,
		    totp_secret = $6, updated_at = $7
		WHERE id = $1
	`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordDigest,
		user.ConfirmationToken,
		user.TOTPSecret,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return oops.Code("USER_EXISTS").
			With("id", user.ID).
			Wrap(model.ErrUserExists)
	}
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "update user").
			With("id", user.ID).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", user.ID).
			Wrap(model.ErrUserNotFound)
	}
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordDigest,
		&user.ConfirmationToken,
		&user.TOTPSecret,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Game record operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	var err error
	if game.ID == 0 {
		err = s.db.QueryRow(ctx, `
			INSERT INTO games (winner, created_at) VALUES ($1, $2) RETURNING id
		`, game.Winner, game.CreatedAt).Scan(&game.ID)
	} else {
		_, err = s.db.Exec(ctx, `
			INSERT INTO games (id, winner, created_at) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET winner = EXCLUDED.winner
		`, game.ID, game.Winner, game.CreatedAt)
	}
	if err != nil {
		return oops.Code("GAME_SAVE_FAILED").
			With("id", game.ID).
			Wrap(err)
	}
	return nil
}

func (s *Storage) SaveParticipation(ctx context.Context, p *model.Participation) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_joins (player, gameid, symbol) VALUES ($1, $2, $3)
		ON CONFLICT (player, gameid) DO UPDATE SET symbol = EXCLUDED.symbol
	`, p.UserID, p.GameID, p.Symbol)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		missing := model.ErrGameNotFound
		if pgErr.ConstraintName == "user_joins_player_fkey" {
			missing = model.ErrUserNotFound
		}
		return oops.Code("PARTICIPATION_SAVE_FAILED").
			With("user_id", p.UserID).
			With("game_id", p.GameID).
			Wrap(missing)
	}
	if err != nil {
		return oops.Code("PARTICIPATION_SAVE_FAILED").
			With("user_id", p.UserID).
			With("game_id", p.GameID).
			Wrap(err)
	}
	return nil
}

// Reporting operations

func (s *Storage) ListParticipationResults(ctx context.Context, userID model.UserID) ([]model.ParticipationResult, error) {
	rows, err := s.db.Query(ctx, `
		SELECT games.winner, user_joins.symbol
		FROM user_joins
		JOIN games ON games.id = user_joins.gameid
		WHERE user_joins.player = $1 AND games.winner IS NOT NULL
		ORDER BY games.id
	`, userID)
	if err != nil {
		return nil, oops.Code("STATS_QUERY_FAILED").
			With("user_id", userID).
			Wrap(err)
	}
	defer rows.Close()

	results := []model.ParticipationResult{}
	for rows.Next() {
		var r model.ParticipationResult
		if err := rows.Scan(&r.Winner, &r.Symbol); err != nil {
			return nil, oops.Code("STATS_QUERY_FAILED").
				With("user_id", userID).
				Wrap(err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("STATS_QUERY_FAILED").
			With("user_id", userID).
			Wrap(err)
	}
	return results, nil
}

// The requested user is always player one. Games with any participant count
// other than two, or whose two players share an email, are left out.
const historyQuery = `
	SELECT games.id, games.winner, games.created_at,
	       u1.id, u1.name, u1.email, j1.symbol,
	       u2.id, u2.name, u2.email, j2.symbol
	FROM user_joins j1
	JOIN user_joins j2 ON j2.gameid = j1.gameid AND j2.player <> j1.player
	JOIN users u1 ON u1.id = j1.player
	JOIN users u2 ON u2.id = j2.player
	JOIN games ON games.id = j1.gameid
	WHERE j1.player = $1
	  AND games.winner IS NOT NULL
	  AND games.winner <> ''
	  AND u1.email <> u2.email
	  AND (SELECT COUNT(*) FROM user_joins c WHERE c.gameid = games.id) = 2
	ORDER BY games.created_at DESC, games.id DESC
`

func (s *Storage) ListMatchHistory(ctx context.Context, userID model.UserID) ([]model.Match, error) {
	rows, err := s.db.Query(ctx, historyQuery, userID)
	if err != nil {
		return nil, oops.Code("HISTORY_QUERY_FAILED").
			With("user_id", userID).
			Wrap(err)
	}
	defer rows.Close()

	matches := []model.Match{}
	for rows.Next() {
		var m model.Match
		err := rows.Scan(
			&m.GameID, &m.Winner, &m.CreatedAt,
			&m.PlayerOne.ID, &m.PlayerOne.Name, &m.PlayerOne.Email, &m.PlayerOne.Symbol,
			&m.PlayerTwo.ID, &m.PlayerTwo.Name, &m.PlayerTwo.Email, &m.PlayerTwo.Symbol,
		)
		if err != nil {
			return nil, oops.Code("HISTORY_QUERY_FAILED").
				With("user_id", userID).
				Wrap(err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("HISTORY_QUERY_FAILED").
			With("user_id", userID).
			Wrap(err)
	}
	return matches, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// String renders a config for logs without credentials
func (c Config) String() string {
	cfg, err := pgx.ParseConfig(c.URL)
	if err != nil {
		return "postgres(invalid url)"
	}
	return fmt.Sprintf("postgres://%s@%s:%d/%s", cfg.User, cfg.Host, cfg.Port, cfg.Database)
}
