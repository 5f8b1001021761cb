package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// connPragmas tune every meta store connection. The busy timeout is in
// milliseconds.
var connPragmas = []struct {
	name  string
	value string
}{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
}

// metaMigrations upgrade the metas table. Entry i moves a database from
// user_version i to i+1.
var metaMigrations = []func(*sql.DB) error{
	addSeqIndex,
}

// currentSchemaVersion is the user_version of a fully migrated database.
var currentSchemaVersion = len(metaMigrations)

// Store keeps sender metas in SQLite so they survive a page reload.
type Store struct {
	db *sql.DB
}

// Open returns the meta store at path, creating and migrating it as needed.
// Pass ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open meta store %s: %w", path, err)
	}

	// A single connection serializes meta writes and keeps ":memory:" to
	// one database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := prepare(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open meta store %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func prepare(db *sql.DB) error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	for _, p := range connPragmas {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("pragma %s: %w", p.name, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create metas table: %w", err)
	}
	return migrate(db)
}

// migrate runs the metaMigrations the database has not seen yet and records
// the new version. Running it on an up-to-date database is a no-op.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read metas version: %w", err)
	}
	if version >= currentSchemaVersion {
		return nil
	}

	for v := version; v < currentSchemaVersion; v++ {
		if err := metaMigrations[v](db); err != nil {
			return fmt.Errorf("metas v%d -> v%d: %w", v, v+1, err)
		}
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("record metas version: %w", err)
	}
	return nil
}

// addSeqIndex backs the seq ordering of ListMetas.
func addSeqIndex(db *sql.DB) error {
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_metas_seq ON metas(seq)`)
	return err
}

// Close releases the database. Closing a zero Store is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) schemaVersion() (int, error) {
	var v int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}
