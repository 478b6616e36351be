// Package store persists game state in SQL. SQLite is the default backend;
// Postgres is supported through lib/pq with the same schema.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cosmossdk.io/log"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/aljosa/paima-cards/internal/rng"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultSeedCacheSize = 256
)

type dialect struct {
	driver string
	// autoID is the column definition of an auto-incrementing primary key.
	autoID string
}

var dialects = map[string]dialect{
	DriverSQLite:   {driver: DriverSQLite, autoID: "INTEGER PRIMARY KEY AUTOINCREMENT"},
	DriverPostgres: {driver: DriverPostgres, autoID: "BIGSERIAL PRIMARY KEY"},
}

// rebind rewrites ? placeholders to $n for Postgres. Queries never contain a
// literal question mark.
func (d dialect) rebind(q string) string {
	if d.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

// Store is the committed view of the database. Writes go through a Block.
type Store struct {
	conn
	db     *sql.DB
	seeds  *lru.Cache[int64, rng.Seed]
	logger log.Logger
}

// sqlitePragmas are applied by the driver to every pooled connection.
var sqlitePragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"foreign_keys(1)",
}

func sqliteDSN(dsn string) string {
	var b strings.Builder
	b.WriteString(dsn)
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	for _, p := range sqlitePragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

// Open connects to the database and creates the schema if needed.
func Open(ctx context.Context, driver, dsn string, seedCacheSize int, logger log.Logger) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("empty %s dsn", driver)
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if seedCacheSize <= 0 {
		seedCacheSize = DefaultSeedCacheSize
	}

	if driver == DriverSQLite && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		parent := filepath.Dir(dsn)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	openDSN := dsn
	if driver == DriverSQLite {
		openDSN = sqliteDSN(dsn)
	}
	db, err := sql.Open(driver, openDSN)
	if err != nil {
		return nil, err
	}
	switch driver {
	case DriverSQLite:
		// WAL lets queries read the last commit while a block transaction is
		// open. Each in-memory connection is its own database, so those stay
		// on one.
		conns := 4
		if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
			conns = 1
		}
		db.SetMaxOpenConns(conns)
		db.SetMaxIdleConns(conns)
		db.SetConnMaxLifetime(0)
	case DriverPostgres:
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(ctx, db, d); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	cache, err := lru.New[int64, rng.Seed](seedCacheSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{
		conn:   conn{q: db, dialect: d},
		db:     db,
		seeds:  cache,
		logger: logger.With("module", "store"),
	}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Driver() string { return s.dialect.driver }

func ensureSchema(ctx context.Context, db *sql.DB, d dialect) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS lobbies (
    lobby_id TEXT PRIMARY KEY,
    lobby_state TEXT NOT NULL,
    creator_wallet TEXT NOT NULL,
    creator_token_id BIGINT NOT NULL,
    player_two TEXT NOT NULL DEFAULT '',
    max_players BIGINT NOT NULL,
    num_of_rounds BIGINT NOT NULL,
    round_length BIGINT NOT NULL,
    play_time_per_player BIGINT NOT NULL,
    hidden BOOLEAN NOT NULL,
    practice BOOLEAN NOT NULL,
    player_one_is_white BOOLEAN NOT NULL,
    creation_block_height BIGINT NOT NULL,
    current_match BIGINT,
    current_round BIGINT,
    current_turn BIGINT,
    current_proper_round BIGINT
)`,
		`CREATE INDEX IF NOT EXISTS idx_lobbies_state ON lobbies(lobby_state)`,
		`
CREATE TABLE IF NOT EXISTS lobby_players (
    lobby_id TEXT NOT NULL REFERENCES lobbies(lobby_id),
    token_id BIGINT NOT NULL,
    wallet TEXT NOT NULL,
    seat BIGINT NOT NULL,
    starting_deck TEXT NOT NULL DEFAULT '',
    current_deck TEXT NOT NULL DEFAULT '',
    current_hand TEXT NOT NULL DEFAULT '[]',
    current_draw BIGINT NOT NULL DEFAULT 0,
    turn BIGINT,
    points BIGINT NOT NULL DEFAULT 0,
    score BIGINT NOT NULL DEFAULT 0,
    PRIMARY KEY (lobby_id, token_id)
)`,
		`
CREATE TABLE IF NOT EXISTS matches (
    lobby_id TEXT NOT NULL REFERENCES lobbies(lobby_id),
    match_within_lobby BIGINT NOT NULL,
    starting_block_height BIGINT NOT NULL,
    result TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (lobby_id, match_within_lobby)
)`,
		`
CREATE TABLE IF NOT EXISTS rounds (
    lobby_id TEXT NOT NULL REFERENCES lobbies(lobby_id),
    match_within_lobby BIGINT NOT NULL,
    round_within_match BIGINT NOT NULL,
    starting_block_height BIGINT NOT NULL,
    round_length BIGINT NOT NULL,
    execution_block_height BIGINT,
    PRIMARY KEY (lobby_id, match_within_lobby, round_within_match)
)`,
		`
CREATE TABLE IF NOT EXISTS moves (
    lobby_id TEXT NOT NULL REFERENCES lobbies(lobby_id),
    match_within_lobby BIGINT NOT NULL,
    round_within_match BIGINT NOT NULL,
    token_id BIGINT NOT NULL,
    wallet TEXT NOT NULL,
    roll_again BOOLEAN NOT NULL,
    PRIMARY KEY (lobby_id, match_within_lobby, round_within_match, token_id)
)`,
		`
CREATE TABLE IF NOT EXISTS user_stats (
    token_id BIGINT PRIMARY KEY,
    wins BIGINT NOT NULL DEFAULT 0,
    losses BIGINT NOT NULL DEFAULT 0,
    ties BIGINT NOT NULL DEFAULT 0
)`,
		`
CREATE TABLE IF NOT EXISTS block_seeds (
    block_height BIGINT PRIMARY KEY,
    seed TEXT NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS scheduled_inputs (
    id ` + d.autoID + `,
    block_height BIGINT NOT NULL,
    input_data TEXT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_scheduled_inputs_height ON scheduled_inputs(block_height)`,
		`
CREATE TABLE IF NOT EXISTS nft_owners (
    token_id BIGINT PRIMARY KEY,
    owner_wallet TEXT NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS accounts (
    wallet TEXT PRIMARY KEY,
    pub_key TEXT NOT NULL,
    nonce_max BIGINT NOT NULL DEFAULT 0
)`,
		`
CREATE TABLE IF NOT EXISTS app_meta (
    meta_key TEXT PRIMARY KEY,
    meta_value TEXT NOT NULL
)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
