package app

import (
	"context"
	"errors"
	"testing"

	"github.com/riordanpawley/forget/internal/keymap"
	"github.com/riordanpawley/forget/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInput(t *testing.T, mode types.Mode) *Input {
	t.Helper()
	in := NewInput(newFakeSource(), testKeymap(t), make(chan Request), testLogger())
	in.mode = mode
	return in
}

func TestInput_DispatchNavigating(t *testing.T) {
	tests := []struct {
		name string
		key  keymap.KeyEvent
		want keymap.Command
	}{
		{"enter activates", keymap.Special(keymap.KeyEnter), keymap.Activate},
		{"escape exits", keymap.Special(keymap.KeyEscape), keymap.Exit},
		{"backspace marks done", keymap.Special(keymap.KeyBackspace), keymap.MarkDone},
		{"delete removes", keymap.Special(keymap.KeyDelete), keymap.RemoveItem},
		{"ctrl+h new sticky", keymap.Ctrl('h'), keymap.NewStickyNote},
		{"ctrl+q exits", keymap.Ctrl('q'), keymap.Exit},
		{"arrow navigates", keymap.Special(keymap.KeyLeft), keymap.NavigateLeft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newTestInput(t, types.ModeNavigating)
			req, ok := in.dispatch(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, req.Cmd)
		})
	}

	t.Run("unbound key is dropped", func(t *testing.T) {
		in := newTestInput(t, types.ModeNavigating)
		_, ok := in.dispatch(keymap.Char('x'))
		assert.False(t, ok)
	})
}

func TestInput_DispatchConfirm(t *testing.T) {
	tests := []struct {
		key  keymap.KeyEvent
		want keymap.Command
	}{
		{keymap.Char('y'), keymap.Confirm},
		{keymap.Char('Y'), keymap.Confirm},
		{keymap.Special(keymap.KeyEnter), keymap.Confirm},
		{keymap.Char('n'), keymap.Cancel},
		{keymap.Special(keymap.KeyEscape), keymap.Cancel},
		{keymap.Ctrl('q'), keymap.Cancel},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			in := newTestInput(t, types.ModeConfirmDelete)
			req, ok := in.dispatch(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, req.Cmd)
		})
	}
}

func TestInput_EditBuffer(t *testing.T) {
	tests := []struct {
		name       string
		prefill    string
		keys       []keymap.KeyEvent
		wantText   string
		wantCursor int
	}{
		{
			name:       "typing appends",
			keys:       []keymap.KeyEvent{keymap.Char('h'), keymap.Char('i')},
			wantText:   "hi",
			wantCursor: 2,
		},
		{
			name:       "backspace deletes before cursor instead of marking done",
			prefill:    "abc",
			keys:       []keymap.KeyEvent{keymap.Special(keymap.KeyBackspace)},
			wantText:   "ab",
			wantCursor: 2,
		},
		{
			name:       "delete deletes at cursor instead of removing",
			prefill:    "abc",
			keys:       []keymap.KeyEvent{keymap.Special(keymap.KeyHome), keymap.Special(keymap.KeyDelete)},
			wantText:   "bc",
			wantCursor: 0,
		},
		{
			name:    "insert in the middle",
			prefill: "ac",
			keys: []keymap.KeyEvent{
				keymap.Special(keymap.KeyLeft),
				keymap.Char('b'),
			},
			wantText:   "abc",
			wantCursor: 2,
		},
		{
			name:    "cursor is clamped",
			prefill: "ab",
			keys: []keymap.KeyEvent{
				keymap.Special(keymap.KeyRight),
				keymap.Special(keymap.KeyHome),
				keymap.Special(keymap.KeyLeft),
				keymap.Special(keymap.KeyBackspace),
				keymap.Special(keymap.KeyEnd),
			},
			wantText:   "ab",
			wantCursor: 2,
		},
		{
			name:       "unicode",
			keys:       []keymap.KeyEvent{keymap.Char('é'), keymap.Char('日'), keymap.Special(keymap.KeyBackspace)},
			wantText:   "é",
			wantCursor: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newTestInput(t, types.ModeNavigating)
			in.adopt(Ack{Mode: types.ModeEditing, NewEdit: true, Prefill: tt.prefill})

			for _, k := range tt.keys {
				_, ok := in.dispatch(k)
				assert.False(t, ok, "editing keys stay in the input loop")
			}

			text, cursor := in.Buffer()
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.wantCursor, cursor)
		})
	}
}

func TestInput_DispatchEditing(t *testing.T) {
	in := newTestInput(t, types.ModeNavigating)
	in.adopt(Ack{Mode: types.ModeEditing, NewEdit: true, Prefill: "draft"})

	req, ok := in.dispatch(keymap.Special(keymap.KeyEnter))
	require.True(t, ok)
	assert.Equal(t, keymap.Submit, req.Cmd)
	assert.Equal(t, "draft", req.Text)

	req, ok = in.dispatch(keymap.Special(keymap.KeyEscape))
	require.True(t, ok)
	assert.Equal(t, keymap.Cancel, req.Cmd)

	req, ok = in.dispatch(keymap.Ctrl('s'))
	require.True(t, ok, "bound commands are forwarded for the controller to judge")
	assert.Equal(t, keymap.SaveState, req.Cmd)

	_, ok = in.dispatch(keymap.Ctrl('x'))
	assert.False(t, ok)
}

func TestInput_AdoptKeepsBufferWithoutNewEdit(t *testing.T) {
	in := newTestInput(t, types.ModeNavigating)
	in.adopt(Ack{Mode: types.ModeEditing, NewEdit: true})
	in.dispatch(keymap.Char('a'))

	in.adopt(Ack{Mode: types.ModeEditing})

	text, _ := in.Buffer()
	assert.Equal(t, "a", text)
}

func TestInput_Run(t *testing.T) {
	src := newFakeSource()
	requests := make(chan Request)
	in := NewInput(src, testKeymap(t), requests, testLogger())

	// Stand-in controller: ctrl+h starts an edit, submit ends it, exit stops
	var got []Request
	go func() {
		for req := range requests {
			got = append(got, req)
			switch req.Cmd {
			case keymap.NewStickyNote:
				req.ack <- Ack{Mode: types.ModeEditing, NewEdit: true}
			case keymap.Exit:
				req.ack <- Ack{Mode: types.ModeNavigating, Exit: true}
			default:
				req.ack <- Ack{Mode: types.ModeNavigating}
			}
		}
	}()

	src.send(keymap.Ctrl('h'))
	src.typeText("Work")
	src.send(keymap.Special(keymap.KeyEnter), keymap.Ctrl('q'))

	require.NoError(t, in.Run(context.Background()))
	close(requests)

	require.Len(t, got, 3)
	assert.Equal(t, keymap.NewStickyNote, got[0].Cmd)
	assert.Equal(t, keymap.Submit, got[1].Cmd)
	assert.Equal(t, "Work", got[1].Text)
	assert.Equal(t, keymap.Exit, got[2].Cmd)
}

func TestInput_RunSourceClosed(t *testing.T) {
	src := newFakeSource()
	close(src.keys)
	in := NewInput(src, testKeymap(t), make(chan Request), testLogger())

	err := in.Run(context.Background())
	assert.ErrorIs(t, err, ErrInputClosed)
}

type failingSource struct{}

func (failingSource) Next(context.Context) (keymap.KeyEvent, error) {
	return keymap.KeyEvent{}, errors.New("tty gone")
}

func TestInput_RunSourceError(t *testing.T) {
	in := NewInput(failingSource{}, testKeymap(t), make(chan Request), testLogger())

	err := in.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tty gone")
}

func TestInput_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := NewInput(newFakeSource(), testKeymap(t), make(chan Request), testLogger())

	assert.NoError(t, in.Run(ctx))
}
