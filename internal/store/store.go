// Package store persists the board between runs.
//
// Two backends share the Store interface: a JSON document (the default,
// compatible with the files older releases wrote) and a SQLite database.
// Both are written only on explicit save or clean shutdown.
package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/riordanpawley/forget/internal/config"
	"github.com/riordanpawley/forget/internal/domain"
)

const (
	// JSONFileName is the default JSON document inside the data directory
	JSONFileName = "note_db.json"
	// SQLiteFileName is the default database inside the data directory
	SQLiteFileName = "notes.sqlite"
)

// Store loads and saves a board
type Store interface {
	// Load returns the persisted board. A store that has never been
	// written yields an empty board and a nil error.
	Load(ctx context.Context) (*domain.Board, error)
	// Save replaces the persisted board with b
	Save(ctx context.Context, b *domain.Board) error
	// Location describes where the board lives, for messages
	Location() string
}

// Open returns the store selected by cfg, rooted at dir unless the
// config names an explicit path
func Open(cfg config.StorageConfig, dir string, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case config.BackendJSON, "":
		path := cfg.Path
		if path == "" {
			path = filepath.Join(dir, JSONFileName)
		}
		return NewJSONStore(path, logger), nil
	case config.BackendSQLite:
		path := cfg.Path
		if path == "" {
			path = filepath.Join(dir, SQLiteFileName)
		}
		return NewSQLiteStore(path, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// atomicWriteFile writes b to a temp file in dir and renames it over path
// so a crash never leaves a half-written document behind
func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
