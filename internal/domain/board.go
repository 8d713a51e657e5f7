// Package domain contains the sticky-note board model and the error
// taxonomy shared by every layer. Nothing in here performs I/O.
package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// None marks an absent selection index
const None = -1

// NoteID identifies a sticky note independently of its tab position
type NoteID string

// NewNoteID returns a fresh random NoteID
func NewNoteID() NoteID {
	return NoteID(uuid.NewString())
}

// Short returns an abbreviated form for logs and messages
func (id NoteID) Short() string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

// TodoItem is a single entry in a sticky note's todo list
type TodoItem struct {
	Text    string    `json:"text"`
	Done    bool      `json:"done"`
	Command string    `json:"command,omitempty"` // empty means no attached command
	Created time.Time `json:"created"`
}

// HasCommand reports whether an external command is attached
func (t TodoItem) HasCommand() bool {
	return t.Command != ""
}

// StickyNote is one tab of the board
type StickyNote struct {
	ID    NoteID     `json:"id"`
	Title string     `json:"title"`
	Items []TodoItem `json:"items"`
	Notes []string   `json:"notes"`
}

// Selection tracks the current note and item. Either may be None.
type Selection struct {
	Note int `json:"note"`
	Item int `json:"item"`
}

// Board is the in-memory collection of sticky notes.
//
// Board is not safe for concurrent use; the controller owns it and hands
// out copies made with Snapshot.
type Board struct {
	Notes     []StickyNote
	Selection Selection
}

// nowFunc is replaced in tests that need deterministic timestamps
var nowFunc = time.Now

// NewBoard returns an empty board with nothing selected
func NewBoard() *Board {
	return &Board{
		Notes:     []StickyNote{},
		Selection: Selection{Note: None, Item: None},
	}
}

func (b *Board) index(id NoteID) int {
	for i := range b.Notes {
		if b.Notes[i].ID == id {
			return i
		}
	}
	return None
}

// Note returns the note with the given id
func (b *Board) Note(id NoteID) (StickyNote, bool) {
	i := b.index(id)
	if i == None {
		return StickyNote{}, false
	}
	return b.Notes[i], true
}

// Current returns the selected note, if any
func (b *Board) Current() (StickyNote, bool) {
	if b.Selection.Note < 0 || b.Selection.Note >= len(b.Notes) {
		return StickyNote{}, false
	}
	return b.Notes[b.Selection.Note], true
}

// CurrentItem returns the selected item of the selected note, if any
func (b *Board) CurrentItem() (TodoItem, bool) {
	note, ok := b.Current()
	if !ok || b.Selection.Item < 0 || b.Selection.Item >= len(note.Items) {
		return TodoItem{}, false
	}
	return note.Items[b.Selection.Item], true
}

// selectNote makes note i current and resets the item cursor
func (b *Board) selectNote(i int) {
	if i < 0 || i >= len(b.Notes) {
		b.Selection = Selection{Note: None, Item: None}
		return
	}
	b.Selection.Note = i
	if len(b.Notes[i].Items) > 0 {
		b.Selection.Item = 0
	} else {
		b.Selection.Item = None
	}
}

// AddStickyNote appends a note and makes it current
func (b *Board) AddStickyNote(title string) NoteID {
	id := NewNoteID()
	b.Notes = append(b.Notes, StickyNote{
		ID:    id,
		Title: title,
		Items: []TodoItem{},
		Notes: []string{},
	})
	b.selectNote(len(b.Notes) - 1)
	return id
}

// RemoveStickyNote deletes a note. When the current note is removed the
// previous tab (clamped to the first) becomes current.
func (b *Board) RemoveStickyNote(id NoteID) error {
	i := b.index(id)
	if i == None {
		return &BoardError{Op: "remove_sticky_note", NoteID: id, Index: None, Err: ErrNotFound}
	}

	cur := b.Selection.Note
	b.Notes = slices.Delete(b.Notes, i, i+1)

	switch {
	case len(b.Notes) == 0:
		b.Selection = Selection{Note: None, Item: None}
	case i == cur:
		b.selectNote(max(i-1, 0))
	case i < cur:
		b.Selection.Note = cur - 1
	}
	return nil
}

// AddItem appends a todo to the note. command may be empty.
func (b *Board) AddItem(id NoteID, text, command string) error {
	i := b.index(id)
	if i == None {
		return &BoardError{Op: "add_item", NoteID: id, Index: None, Err: ErrNotFound}
	}

	note := &b.Notes[i]
	note.Items = append(note.Items, TodoItem{
		Text:    text,
		Command: strings.TrimSpace(command),
		Created: nowFunc().UTC(),
	})
	if i == b.Selection.Note {
		b.Selection.Item = len(note.Items) - 1
	}
	return nil
}

// item resolves a note/index pair for the item-level operations
func (b *Board) item(op string, id NoteID, index int) (int, error) {
	i := b.index(id)
	if i == None {
		return None, &BoardError{Op: op, NoteID: id, Index: index, Err: ErrNotFound}
	}
	if index < 0 || index >= len(b.Notes[i].Items) {
		return None, &BoardError{Op: op, NoteID: id, Index: index, Err: ErrIndexOutOfRange}
	}
	return i, nil
}

// RemoveItem deletes the item at index; later items shift down by one
func (b *Board) RemoveItem(id NoteID, index int) error {
	i, err := b.item("remove_item", id, index)
	if err != nil {
		return err
	}

	note := &b.Notes[i]
	note.Items = slices.Delete(note.Items, index, index+1)

	if i == b.Selection.Note {
		cur := b.Selection.Item
		switch {
		case len(note.Items) == 0:
			b.Selection.Item = None
		case cur > index:
			b.Selection.Item = cur - 1
		case cur >= len(note.Items):
			b.Selection.Item = len(note.Items) - 1
		}
	}
	return nil
}

// ToggleDone flips the done flag of the item at index
func (b *Board) ToggleDone(id NoteID, index int) error {
	i, err := b.item("toggle_done", id, index)
	if err != nil {
		return err
	}
	b.Notes[i].Items[index].Done = !b.Notes[i].Items[index].Done
	return nil
}

// EditItemText replaces the text of the item at index in place
func (b *Board) EditItemText(id NoteID, index int, text string) error {
	i, err := b.item("edit_item_text", id, index)
	if err != nil {
		return err
	}
	b.Notes[i].Items[index].Text = text
	return nil
}

// AddNote appends a free-text note
func (b *Board) AddNote(id NoteID, text string) error {
	i := b.index(id)
	if i == None {
		return &BoardError{Op: "add_note", NoteID: id, Index: None, Err: ErrNotFound}
	}
	b.Notes[i].Notes = append(b.Notes[i].Notes, text)
	return nil
}

// MoveItem moves the item cursor by delta, clamped to the note's bounds.
// It reports whether the cursor moved.
func (b *Board) MoveItem(delta int) bool {
	note, ok := b.Current()
	if !ok || len(note.Items) == 0 {
		return false
	}
	next := min(max(b.Selection.Item+delta, 0), len(note.Items)-1)
	if next == b.Selection.Item {
		return false
	}
	b.Selection.Item = next
	return true
}

// CycleNote moves to the next (delta > 0) or previous note, wrapping
// around the tab bar. It reports whether the current note changed.
func (b *Board) CycleNote(delta int) bool {
	n := len(b.Notes)
	if n < 2 {
		return false
	}
	next := ((b.Selection.Note+delta)%n + n) % n
	b.selectNote(next)
	return true
}

// Snapshot returns a deep copy that shares no memory with b
func (b *Board) Snapshot() *Board {
	out := &Board{
		Notes:     make([]StickyNote, len(b.Notes)),
		Selection: b.Selection,
	}
	for i, n := range b.Notes {
		out.Notes[i] = StickyNote{
			ID:    n.ID,
			Title: n.Title,
			Items: slices.Clone(n.Items),
			Notes: slices.Clone(n.Notes),
		}
		if out.Notes[i].Items == nil {
			out.Notes[i].Items = []TodoItem{}
		}
		if out.Notes[i].Notes == nil {
			out.Notes[i].Notes = []string{}
		}
	}
	return out
}

// Normalize repairs a board that came from outside (a loaded document):
// missing IDs are generated, nil slices become empty and the selection
// is clamped so the invariants hold.
func (b *Board) Normalize() {
	if b.Notes == nil {
		b.Notes = []StickyNote{}
	}
	for i := range b.Notes {
		n := &b.Notes[i]
		if n.ID == "" {
			n.ID = NewNoteID()
		}
		if n.Items == nil {
			n.Items = []TodoItem{}
		}
		if n.Notes == nil {
			n.Notes = []string{}
		}
	}

	if len(b.Notes) == 0 {
		b.Selection = Selection{Note: None, Item: None}
		return
	}
	note := min(max(b.Selection.Note, 0), len(b.Notes)-1)
	items := len(b.Notes[note].Items)
	item := None
	if items > 0 {
		item = min(max(b.Selection.Item, 0), items-1)
	}
	b.Selection = Selection{Note: note, Item: item}
}

// CheckSelection reports whether the selection invariants hold
func (b *Board) CheckSelection() bool {
	sel := b.Selection
	if len(b.Notes) == 0 {
		return sel.Note == None && sel.Item == None
	}
	if sel.Note < 0 || sel.Note >= len(b.Notes) {
		return false
	}
	items := len(b.Notes[sel.Note].Items)
	if items == 0 {
		return sel.Item == None
	}
	return sel.Item >= 0 && sel.Item < items
}
