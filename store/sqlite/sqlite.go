package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"io/fs"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"

	"go.hackfix.me/rastore/store"
	"go.hackfix.me/rastore/store/sqlite/migrator"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a store.Engine backed by a SQLite database.
type Store struct {
	store.Listeners
	db *sql.DB
}

var _ store.Engine = &Store{}

// Open opens the SQLite database at path, and applies any pending schema
// migrations. path can be ":memory:" for an in-memory database. ctx only
// bounds the migrations; the returned Store outlives it.
func Open(ctx context.Context, path string, logger *slog.Logger) (_ *Store, err error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = db.Close()
		}
	}()
	// SQLite allows a single writer, and each connection to ":memory:" would
	// otherwise see a different database.
	db.SetMaxOpenConns(1)

	migrationsDir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}
	migrations, err := migrator.LoadMigrations(migrationsDir)
	if err != nil {
		return nil, err
	}

	err = migrator.RunMigrations(ctx, db, migrations, migrator.MigrationUp, "all", logger)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) GetString(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return err
	}

	s.Notify(key)
	return nil
}

func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return err
	}

	s.Notify(key)
	return nil
}

func (s *Store) AllKeys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}
