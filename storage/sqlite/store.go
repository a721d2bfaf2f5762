// Package sqlite provides a SQLite-backed store for glyph save state: the
// persisted randomness streams, glyph collections, flags and progress, plus
// named CBOR snapshots.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nathoo/glyphcore/engine/random"
	"github.com/nathoo/glyphcore/storage/sqlite/migrations"
	"github.com/nathoo/glyphcore/types"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when no saved state or snapshot exists.
	ErrNotFound = errors.New("not found")
	// ErrBusy is returned when the database stays locked past the busy timeout.
	ErrBusy = errors.New("database is busy")
)

// Store persists glyph save state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func nowMillis() int64 {
	return time.Now().UTC().UnixMilli()
}

// ReadStream returns the persisted pair for kind.
func (s *Store) ReadStream(ctx context.Context, kind types.StreamKind) (types.RandomState, error) {
	if err := s.ready(ctx); err != nil {
		return types.RandomState{}, err
	}
	var seed int64
	var st types.RandomState
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT seed, second_gaussian FROM streams WHERE name = ?`, string(kind),
	).Scan(&seed, &st.SecondGaussian)
	if errors.Is(err, sql.ErrNoRows) {
		return types.RandomState{}, fmt.Errorf("stream %s: %w", kind, ErrNotFound)
	}
	if err != nil {
		return types.RandomState{}, fmt.Errorf("read stream %s: %w", kind, classify(err))
	}
	st.Seed = uint32(seed)
	return st, nil
}

// WriteStream overwrites kind's pair in one statement.
func (s *Store) WriteStream(ctx context.Context, kind types.StreamKind, st types.RandomState) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if kind == types.StreamPreview {
		return fmt.Errorf("write stream %s: %w", kind, random.ErrUnknownStream)
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO streams (name, seed, second_gaussian, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   seed = excluded.seed,
		   second_gaussian = excluded.second_gaussian,
		   updated_at = excluded.updated_at`,
		string(kind), int64(st.Seed), st.SecondGaussian, nowMillis(),
	)
	if err != nil {
		return fmt.Errorf("write stream %s: %w", kind, classify(err))
	}
	return nil
}

// Slots adapts the stream table to random.Slots, bound to ctx.
func (s *Store) Slots(ctx context.Context) random.Slots {
	return storeSlots{ctx: ctx, store: s}
}

type storeSlots struct {
	ctx   context.Context
	store *Store
}

func (ss storeSlots) ReadSlot(kind types.StreamKind) (types.RandomState, error) {
	return ss.store.ReadStream(ss.ctx, kind)
}

func (ss storeSlots) WriteSlot(kind types.StreamKind, st types.RandomState) error {
	return ss.store.WriteStream(ss.ctx, kind, st)
}

// SaveState replaces the stored state with s in one transaction.
func (s *Store) SaveState(ctx context.Context, st *types.State) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", classify(err))
	}
	if err := saveState(ctx, tx, st); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", classify(err))
	}
	return nil
}

func saveState(ctx context.Context, tx *sql.Tx, st *types.State) error {
	now := nowMillis()
	for _, table := range []string{"glyphs", "flags", "counters", "state_values"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, classify(err))
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO progress (singleton, level_actual, level_raw, best_glyph_level, turn_count, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?)
		 ON CONFLICT(singleton) DO UPDATE SET
		   level_actual = excluded.level_actual,
		   level_raw = excluded.level_raw,
		   best_glyph_level = excluded.best_glyph_level,
		   turn_count = excluded.turn_count,
		   updated_at = excluded.updated_at`,
		st.Level.Actual, st.Level.Raw, st.BestGlyphLevel, st.TurnCount, now,
	); err != nil {
		return fmt.Errorf("save progress: %w", classify(err))
	}

	for kind, pair := range map[types.StreamKind]types.RandomState{
		types.StreamPrimary:   st.Primary,
		types.StreamSecondary: st.Secondary,
	} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO streams (name, seed, second_gaussian, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET
			   seed = excluded.seed,
			   second_gaussian = excluded.second_gaussian,
			   updated_at = excluded.updated_at`,
			string(kind), int64(pair.Seed), pair.SecondGaussian, now,
		); err != nil {
			return fmt.Errorf("save stream %s: %w", kind, classify(err))
		}
	}

	collections := []struct {
		name   string
		glyphs []types.Glyph
	}{
		{string(types.CollectionActive), st.Active},
		{string(types.CollectionInventory), st.Inventory},
		{"pending", st.Pending},
	}
	for _, c := range collections {
		for pos, g := range c.glyphs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO glyphs (glyph_id, collection, position, type, strength, level, raw_level, effects, cosmetic)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				int64(g.ID), c.name, pos, g.Type, g.Strength, g.Level, g.RawLevel, int64(g.Effects), g.Cosmetic,
			); err != nil {
				return fmt.Errorf("save glyph %d: %w", g.ID, classify(err))
			}
		}
	}

	for name, v := range st.Flags {
		if _, err := tx.ExecContext(ctx, `INSERT INTO flags (name, value) VALUES (?, ?)`, name, v); err != nil {
			return fmt.Errorf("save flag %s: %w", name, classify(err))
		}
	}
	for name, v := range st.Counters {
		if _, err := tx.ExecContext(ctx, `INSERT INTO counters (name, value) VALUES (?, ?)`, name, v); err != nil {
			return fmt.Errorf("save counter %s: %w", name, classify(err))
		}
	}
	for name, v := range st.Values {
		if _, err := tx.ExecContext(ctx, `INSERT INTO state_values (name, value) VALUES (?, ?)`, name, v); err != nil {
			return fmt.Errorf("save value %s: %w", name, classify(err))
		}
	}
	return nil
}

// LoadState reads the stored state. The command log is not persisted here.
func (s *Store) LoadState(ctx context.Context) (*types.State, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	st := &types.State{
		Flags:      map[string]bool{},
		Counters:   map[string]int{},
		Values:     map[string]float64{},
		Active:     []types.Glyph{},
		Inventory:  []types.Glyph{},
		CommandLog: []string{},
	}

	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT level_actual, level_raw, best_glyph_level, turn_count FROM progress WHERE singleton = 1`,
	).Scan(&st.Level.Actual, &st.Level.Raw, &st.BestGlyphLevel, &st.TurnCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("saved state: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", classify(err))
	}

	if st.Primary, err = s.ReadStream(ctx, types.StreamPrimary); err != nil {
		return nil, err
	}
	if st.Secondary, err = s.ReadStream(ctx, types.StreamSecondary); err != nil {
		return nil, err
	}

	if err := s.loadGlyphs(ctx, st); err != nil {
		return nil, err
	}
	if err := s.loadNamed(ctx, `SELECT name, value FROM flags`, func(rows *sql.Rows) error {
		var name string
		var v bool
		if err := rows.Scan(&name, &v); err != nil {
			return err
		}
		st.Flags[name] = v
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load flags: %w", err)
	}
	if err := s.loadNamed(ctx, `SELECT name, value FROM counters`, func(rows *sql.Rows) error {
		var name string
		var v int
		if err := rows.Scan(&name, &v); err != nil {
			return err
		}
		st.Counters[name] = v
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load counters: %w", err)
	}
	if err := s.loadNamed(ctx, `SELECT name, value FROM state_values`, func(rows *sql.Rows) error {
		var name string
		var v float64
		if err := rows.Scan(&name, &v); err != nil {
			return err
		}
		st.Values[name] = v
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load values: %w", err)
	}
	return st, nil
}

func (s *Store) loadGlyphs(ctx context.Context, st *types.State) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT glyph_id, collection, type, strength, level, raw_level, effects, cosmetic
		 FROM glyphs ORDER BY collection, position`)
	if err != nil {
		return fmt.Errorf("load glyphs: %w", classify(err))
	}
	defer rows.Close()

	for rows.Next() {
		var g types.Glyph
		var id, effects int64
		var collection string
		if err := rows.Scan(&id, &collection, &g.Type, &g.Strength, &g.Level, &g.RawLevel, &effects, &g.Cosmetic); err != nil {
			return fmt.Errorf("scan glyph: %w", err)
		}
		g.ID = uint64(id)
		g.Effects = types.Bitmask(uint64(effects))
		switch collection {
		case string(types.CollectionActive):
			st.Active = append(st.Active, g)
		case string(types.CollectionInventory):
			st.Inventory = append(st.Inventory, g)
		default:
			st.Pending = append(st.Pending, g)
		}
	}
	return rows.Err()
}

func (s *Store) loadNamed(ctx context.Context, query string, scan func(*sql.Rows) error) error {
	rows, err := s.sqlDB.QueryContext(ctx, query)
	if err != nil {
		return classify(err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Snapshot is one named save blob.
type Snapshot struct {
	Name     string
	Data     []byte
	Checksum string
	SavedAt  time.Time
}

// PutSnapshot stores or replaces a named snapshot.
func (s *Store) PutSnapshot(ctx context.Context, name string, data []byte, checksum string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("snapshot name is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO snapshots (name, data, checksum, saved_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   data = excluded.data,
		   checksum = excluded.checksum,
		   saved_at = excluded.saved_at`,
		name, data, checksum, nowMillis(),
	)
	if err != nil {
		return fmt.Errorf("put snapshot %s: %w", name, classify(err))
	}
	return nil
}

// GetSnapshot returns a named snapshot.
func (s *Store) GetSnapshot(ctx context.Context, name string) (Snapshot, error) {
	if err := s.ready(ctx); err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Name: strings.TrimSpace(name)}
	var savedAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT data, checksum, saved_at FROM snapshots WHERE name = ?`, snap.Name,
	).Scan(&snap.Data, &snap.Checksum, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("snapshot %s: %w", snap.Name, ErrNotFound)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get snapshot %s: %w", snap.Name, classify(err))
	}
	snap.SavedAt = time.UnixMilli(savedAt).UTC()
	return snap, nil
}

// ListSnapshots returns snapshot names, newest first.
func (s *Store) ListSnapshots(ctx context.Context) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var names []string
	err := s.loadNamed(ctx, `SELECT name FROM snapshots ORDER BY saved_at DESC, name`, func(rows *sql.Rows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		names = append(names, name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return names, nil
}

// classify maps lock contention to ErrBusy and leaves other errors alone.
func classify(err error) error {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED:
			return fmt.Errorf("%w: %v", ErrBusy, err)
		}
	}
	return err
}

var _ random.Slots = storeSlots{}
