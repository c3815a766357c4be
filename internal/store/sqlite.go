package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// SQLiteStore backs both scopes with a single embedded database. Durable
// rows live under the "durable" scope; each session gets its own
// "session:<id>" scope that ClearSession purges in one statement.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates the database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		scope      TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      BLOB NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (scope, key)
	);
	CREATE INDEX IF NOT EXISTS idx_kv_scope ON kv(scope);
	`
	_, err := s.db.Exec(schema)
	return err
}

// NewID returns a fresh ULID for journal entries and profiles.
func (s *SQLiteStore) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

const durableScope = "durable"

// Durable returns the cross-session bucket.
func (s *SQLiteStore) Durable() KV {
	return &scopedKV{db: s.db, scope: durableScope}
}

// Session returns the bucket for one session.
func (s *SQLiteStore) Session(id string) KV {
	return &scopedKV{db: s.db, scope: "session:" + id}
}

// ClearSession removes every key in the session's bucket.
func (s *SQLiteStore) ClearSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE scope = ?`, "session:"+id)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scopedKV struct {
	db    *sql.DB
	scope string
}

func (k *scopedKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := k.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE scope = ? AND key = ?`, k.scope, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (k *scopedKV) Set(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := k.db.ExecContext(ctx,
		`INSERT INTO kv (scope, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		k.scope, key, value, now)
	return err
}

func (k *scopedKV) Remove(ctx context.Context, key string) error {
	_, err := k.db.ExecContext(ctx, `DELETE FROM kv WHERE scope = ? AND key = ?`, k.scope, key)
	return err
}
