package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/okian/faceoff/internal/domain/model"
	"github.com/okian/faceoff/pkg/logger"
)

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS ratings (
	item_id TEXT PRIMARY KEY,
	rating DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS matchups (
	pair_key TEXT PRIMARY KEY,
	item_a TEXT NOT NULL,
	item_b TEXT NOT NULL,
	wins_a INTEGER NOT NULL DEFAULT 0,
	wins_b INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS state_meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const (
	upsertRatingSQL = `INSERT INTO ratings (item_id, rating) VALUES (?, ?)
		ON CONFLICT (item_id) DO UPDATE SET rating = excluded.rating`
	upsertMatchupSQL = `INSERT INTO matchups (pair_key, item_a, item_b, wins_a, wins_b) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (pair_key) DO UPDATE SET item_a = excluded.item_a, item_b = excluded.item_b,
		wins_a = excluded.wins_a, wins_b = excluded.wins_b`
	upsertMetaSQL = `INSERT INTO state_meta (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`

	metaVersionKey = "version"
)

// SQLStore keeps the state in relational tables through database/sql.
// It works with both the sqlite and postgres drivers.
type SQLStore struct {
	db     *sql.DB
	driver string
	opts   options
}

// NewSQLStore opens the database, creating tables when missing.
func NewSQLStore(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == BackendSQLite {
		// One writer at a time keeps sqlite free of SQLITE_BUSY under the worker pool.
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{db: db, driver: driver, opts: buildOptions(opts)}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	if s.driver == BackendSQLite {
		if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("set WAL mode: %w", err)
		}
	}
	for _, stmt := range strings.Split(createTablesSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != BackendPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Load reads every rating and matchup row.
func (s *SQLStore) Load(ctx context.Context) (model.Snapshot, error) {
	snap := model.NewSnapshot()

	rows, err := s.db.QueryContext(ctx, `SELECT item_id, rating FROM ratings`)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("query ratings: %w", err)
	}
	for rows.Next() {
		var id string
		var r float64
		if err := rows.Scan(&id, &r); err != nil {
			_ = rows.Close()
			return model.Snapshot{}, fmt.Errorf("scan rating: %w", err)
		}
		snap.Ratings[id] = r
	}
	if err := rows.Close(); err != nil {
		return model.Snapshot{}, fmt.Errorf("close ratings rows: %w", err)
	}
	if err := rows.Err(); err != nil {
		return model.Snapshot{}, fmt.Errorf("iterate ratings: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT pair_key, item_a, item_b, wins_a, wins_b FROM matchups`)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("query matchups: %w", err)
	}
	for rows.Next() {
		var key string
		var m model.Matchup
		if err := rows.Scan(&key, &m.A, &m.B, &m.WinsA, &m.WinsB); err != nil {
			_ = rows.Close()
			return model.Snapshot{}, fmt.Errorf("scan matchup: %w", err)
		}
		snap.Matchups[key] = m
	}
	if err := rows.Close(); err != nil {
		return model.Snapshot{}, fmt.Errorf("close matchup rows: %w", err)
	}
	if err := rows.Err(); err != nil {
		return model.Snapshot{}, fmt.Errorf("iterate matchups: %w", err)
	}

	if snap.Empty() {
		return model.Snapshot{}, fmt.Errorf("load %s state: %w", s.driver, ErrNotFound)
	}

	var version string
	err = s.db.QueryRowContext(ctx, s.rebind(`SELECT value FROM state_meta WHERE key = ?`), metaVersionKey).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return model.Snapshot{}, fmt.Errorf("query state version: %w", err)
	default:
		v, perr := strconv.ParseUint(version, 10, 64)
		if perr != nil {
			return model.Snapshot{}, fmt.Errorf("%w: version %q", ErrCorruptState, version)
		}
		snap.Version = v
	}
	return snap, nil
}

// Save upserts every rating and matchup in a single transaction.
func (s *SQLStore) Save(ctx context.Context, snap model.Snapshot) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ratingStmt, err := tx.PrepareContext(ctx, s.rebind(upsertRatingSQL))
	if err != nil {
		return fmt.Errorf("prepare rating upsert: %w", err)
	}
	defer ratingStmt.Close()
	for id, r := range snap.Ratings {
		if _, err = ratingStmt.ExecContext(ctx, id, r); err != nil {
			return fmt.Errorf("save rating %s: %w", id, err)
		}
	}

	matchupStmt, err := tx.PrepareContext(ctx, s.rebind(upsertMatchupSQL))
	if err != nil {
		return fmt.Errorf("prepare matchup upsert: %w", err)
	}
	defer matchupStmt.Close()
	for key, m := range snap.Matchups {
		if _, err = matchupStmt.ExecContext(ctx, key, m.A, m.B, m.WinsA, m.WinsB); err != nil {
			return fmt.Errorf("save matchup %s: %w", key, err)
		}
	}

	if _, err = tx.ExecContext(ctx, s.rebind(upsertMetaSQL), metaVersionKey, strconv.FormatUint(snap.Version, 10)); err != nil {
		return fmt.Errorf("save state version: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit state: %w", err)
	}

	if s.opts.log != nil {
		s.opts.log.Debug(ctx, "state rows written",
			logger.String("driver", s.driver),
			logger.Int("ratings", len(snap.Ratings)),
			logger.Int("matchups", len(snap.Matchups)),
			logger.Uint64("version", snap.Version))
	}
	return nil
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
