package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/riordanpawley/forget/internal/domain"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the board in a SQLite database
type SQLiteStore struct {
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a store backed by the database at path
func NewSQLiteStore(path string, logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = discardLogger()
	}
	return &SQLiteStore{path: path, logger: logger}
}

// Location returns the database path
func (s *SQLiteStore) Location() string {
	return s.path
}

func (s *SQLiteStore) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sticky_notes (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			title TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS todo_items (
			note_id TEXT NOT NULL REFERENCES sticky_notes(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			text TEXT NOT NULL,
			done INTEGER NOT NULL,
			command TEXT NOT NULL,
			created_unixns INTEGER NOT NULL,
			PRIMARY KEY (note_id, position)
		);`,
		`CREATE TABLE IF NOT EXISTS free_notes (
			note_id TEXT NOT NULL REFERENCES sticky_notes(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			text TEXT NOT NULL,
			PRIMARY KEY (note_id, position)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

// Load reads the board. A database that does not exist yet is an empty
// board and is not created.
func (s *SQLiteStore) Load(ctx context.Context) (*domain.Board, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		s.logger.Debug("no board database yet", "path", s.path)
		return domain.NewBoard(), nil
	}

	db, err := s.open(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	defer db.Close()

	board, err := loadBoard(ctx, db)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	board.Normalize()

	s.logger.Debug("board loaded", "path", s.path, "notes", len(board.Notes))
	return board, nil
}

// Save replaces every row in a single transaction
func (s *SQLiteStore) Save(ctx context.Context, b *domain.Board) error {
	if b == nil {
		return &domain.PersistenceError{Op: "save", Path: s.path, Err: errors.New("nil board")}
	}

	db, err := s.open(ctx)
	if err != nil {
		return &domain.PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	defer db.Close()

	if err := saveBoard(ctx, db, b); err != nil {
		return &domain.PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	s.logger.Debug("board saved", "path", s.path, "notes", len(b.Notes))
	return nil
}

func saveBoard(ctx context.Context, db *sql.DB, b *domain.Board) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	meta := map[string]string{
		"version":         strconv.Itoa(documentVersion),
		"selected_note":   strconv.Itoa(b.Selection.Note),
		"selected_item":   strconv.Itoa(b.Selection.Item),
		"saved_at_unixms": strconv.FormatInt(time.Now().UTC().UnixMilli(), 10),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO meta(k, v) VALUES(?, ?)`, k, v); err != nil {
			return err
		}
	}

	// Replace-all: children first so the foreign keys never dangle
	for _, t := range []string{"free_notes", "todo_items", "sticky_notes"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return err
		}
	}

	for pos, n := range b.Notes {
		if _, err := tx.ExecContext(ctx, `INSERT INTO sticky_notes(id, position, title) VALUES(?, ?, ?)`,
			string(n.ID), pos, n.Title); err != nil {
			return err
		}
		for i, item := range n.Items {
			if _, err := tx.ExecContext(ctx, `INSERT INTO todo_items(note_id, position, text, done, command, created_unixns) VALUES(?, ?, ?, ?, ?, ?)`,
				string(n.ID), i, item.Text, boolToInt(item.Done), item.Command, unixNanos(item.Created)); err != nil {
				return err
			}
		}
		for i, text := range n.Notes {
			if _, err := tx.ExecContext(ctx, `INSERT INTO free_notes(note_id, position, text) VALUES(?, ?, ?)`,
				string(n.ID), i, text); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func loadBoard(ctx context.Context, db *sql.DB) (*domain.Board, error) {
	board := domain.NewBoard()

	readMeta := func(k string, def int) int {
		var v string
		if err := db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = ?`, k).Scan(&v); err != nil {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return def
		}
		return n
	}
	if v := readMeta("version", documentVersion); v > documentVersion {
		return nil, fmt.Errorf("board database version %d is newer than supported version %d", v, documentVersion)
	}
	board.Selection = domain.Selection{
		Note: readMeta("selected_note", domain.None),
		Item: readMeta("selected_item", domain.None),
	}

	rows, err := db.QueryContext(ctx, `SELECT id, title FROM sticky_notes ORDER BY position`)
	if err != nil {
		return nil, err
	}
	index := map[domain.NoteID]int{}
	err = eachRow(rows, func() error {
		var id, title string
		if err := rows.Scan(&id, &title); err != nil {
			return err
		}
		index[domain.NoteID(id)] = len(board.Notes)
		board.Notes = append(board.Notes, domain.StickyNote{
			ID:    domain.NoteID(id),
			Title: title,
			Items: []domain.TodoItem{},
			Notes: []string{},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows, err = db.QueryContext(ctx, `SELECT note_id, text, done, command, created_unixns FROM todo_items ORDER BY note_id, position`)
	if err != nil {
		return nil, err
	}
	err = eachRow(rows, func() error {
		var (
			noteID, text, command string
			done                  int
			created               int64
		)
		if err := rows.Scan(&noteID, &text, &done, &command, &created); err != nil {
			return err
		}
		if i, ok := index[domain.NoteID(noteID)]; ok {
			board.Notes[i].Items = append(board.Notes[i].Items, domain.TodoItem{
				Text:    text,
				Done:    done != 0,
				Command: command,
				Created: fromUnixNanos(created),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows, err = db.QueryContext(ctx, `SELECT note_id, text FROM free_notes ORDER BY note_id, position`)
	if err != nil {
		return nil, err
	}
	err = eachRow(rows, func() error {
		var noteID, text string
		if err := rows.Scan(&noteID, &text); err != nil {
			return err
		}
		if i, ok := index[domain.NoteID(noteID)]; ok {
			board.Notes[i].Notes = append(board.Notes[i].Notes, text)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return board, nil
}

// eachRow calls scan for every row, then closes rows. An iteration that
// stopped early (a cancelled context, a driver error) is an error, not
// a short result.
func eachRow(rows *sql.Rows, scan func() error) error {
	defer rows.Close()
	for rows.Next() {
		if err := scan(); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return rows.Close()
}

// unixNanos maps the zero time to 0 since UnixNano is undefined for it
func unixNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
