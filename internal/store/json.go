package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/riordanpawley/forget/internal/domain"
)

// documentVersion is the schema version written by JSONStore
const documentVersion = 1

// JSONStore keeps the board in a single JSON document
type JSONStore struct {
	path   string
	logger *slog.Logger
}

// NewJSONStore creates a store backed by the document at path
func NewJSONStore(path string, logger *slog.Logger) *JSONStore {
	if logger == nil {
		logger = discardLogger()
	}
	return &JSONStore{path: path, logger: logger}
}

// document is the on-disk layout
type document struct {
	Version  int                 `json:"version"`
	Selected domain.Selection    `json:"selected"`
	Notes    []domain.StickyNote `json:"notes"`
}

// legacyDocument is the layout written by releases before versioning:
// {"items": [{"title", "note", "list": {"items": [...], "selected"}}], "selected"}
type legacyDocument struct {
	Items []struct {
		Title string `json:"title"`
		Note  string `json:"note"`
		List  struct {
			Items []struct {
				Date      string `json:"date"`
				Task      string `json:"task"`
				Cmd       string `json:"cmd"`
				Completed bool   `json:"completed"`
			} `json:"items"`
			Selected int `json:"selected"`
		} `json:"list"`
	} `json:"items"`
	Selected int `json:"selected"`
}

// Location returns the document path
func (s *JSONStore) Location() string {
	return s.path
}

// Load reads the document. A missing file is an empty board.
func (s *JSONStore) Load(ctx context.Context) (*domain.Board, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("no board document yet", "path", s.path)
		return domain.NewBoard(), nil
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load", Path: s.path, Err: err}
	}

	board, err := decodeDocument(data)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	board.Normalize()

	s.logger.Debug("board loaded", "path", s.path, "notes", len(board.Notes))
	return board, nil
}

// Save writes the document atomically, keeping the previous one as .bak
func (s *JSONStore) Save(ctx context.Context, b *domain.Board) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b == nil {
		return &domain.PersistenceError{Op: "save", Path: s.path, Err: errors.New("nil board")}
	}

	doc := document{
		Version:  documentVersion,
		Selected: b.Selection,
		Notes:    b.Notes,
	}
	if doc.Notes == nil {
		doc.Notes = []domain.StickyNote{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &domain.PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	base := filepath.Base(s.path)
	if prev, err := os.ReadFile(s.path); err == nil && len(prev) > 0 {
		if err := atomicWriteFile(dir, base+".bak.*.tmp", s.path+".bak", prev, 0o644); err != nil {
			s.logger.Warn("failed to back up board document", "path", s.path, "error", err)
		}
	}

	if err := atomicWriteFile(dir, base+".*.tmp", s.path, data, 0o644); err != nil {
		return &domain.PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	s.logger.Debug("board saved", "path", s.path, "notes", len(doc.Notes))
	return nil
}

func decodeDocument(data []byte) (*domain.Board, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse board document: %w", err)
	}

	if _, versioned := probe["version"]; !versioned {
		if _, legacy := probe["items"]; legacy {
			return decodeLegacy(data)
		}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse board document: %w", err)
	}
	if doc.Version > documentVersion {
		return nil, fmt.Errorf("board document version %d is newer than supported version %d", doc.Version, documentVersion)
	}

	return &domain.Board{Notes: doc.Notes, Selection: doc.Selected}, nil
}

func decodeLegacy(data []byte) (*domain.Board, error) {
	var doc legacyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse legacy board document: %w", err)
	}

	board := &domain.Board{
		Notes:     make([]domain.StickyNote, 0, len(doc.Items)),
		Selection: domain.Selection{Note: doc.Selected},
	}
	for i, r := range doc.Items {
		note := domain.StickyNote{
			ID:    domain.NewNoteID(),
			Title: r.Title,
			Items: make([]domain.TodoItem, 0, len(r.List.Items)),
			Notes: []string{},
		}
		if strings.TrimSpace(r.Note) != "" {
			note.Notes = append(note.Notes, r.Note)
		}
		for _, t := range r.List.Items {
			created, err := time.Parse(time.RFC3339Nano, t.Date)
			if err != nil {
				created = time.Time{}
			}
			note.Items = append(note.Items, domain.TodoItem{
				Text:    t.Task,
				Done:    t.Completed,
				Command: strings.TrimSpace(t.Cmd),
				Created: created.UTC(),
			})
		}
		if i == doc.Selected {
			board.Selection.Item = r.List.Selected
		}
		board.Notes = append(board.Notes, note)
	}
	return board, nil
}
