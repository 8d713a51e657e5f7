package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/riordanpawley/forget/internal/config"
	"github.com/riordanpawley/forget/internal/domain"
	"github.com/riordanpawley/forget/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args against dir
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--dir", dir}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseTick(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"60", 60, false},
		{"1", 1, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"fast", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTick(tt.in)
			if tt.wantErr {
				var cfgErr *domain.ConfigError
				assert.ErrorAs(t, err, &cfgErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigPath(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, config.FileName))
	assert.Contains(t, out, filepath.Join(dir, store.JSONFileName))

	out, err = run(t, dir, "--backend", "sqlite", "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, store.SQLiteFileName))

	assert.NoFileExists(t, filepath.Join(dir, config.FileName))
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)

	out, err := run(t, dir, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, err = run(t, dir, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, dir, "config", "init", "--force")
	assert.NoError(t, err)

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().TickMs, cfg.TickMs)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string // empty = no file
		wantOut string
		wantErr string
	}{
		{name: "missing", wantOut: "does not exist"},
		{name: "valid", content: `{"tickMs": 100}`, wantOut: "ok"},
		{name: "comments allowed", content: "{\n  // faster\n  \"tickMs\": 30,\n}", wantOut: "ok"},
		{name: "bad tick", content: `{"tickMs": -1}`, wantErr: "tickMs"},
		{name: "unknown command", content: `{"keys": {"fly": "ctrl+f"}}`, wantErr: "keys.fly"},
		{name: "key a terminal cannot send", content: `{"keys": {"saveState": "ctrl+1"}}`, wantErr: "terminals cannot send ctrl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, config.FileName)
			if tt.content != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			}

			out, err := run(t, dir, "config", "validate")
			if tt.wantErr != "" {
				var cfgErr *domain.ConfigError
				require.ErrorAs(t, err, &cfgErr)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantOut)
			if tt.content == "" {
				assert.NoFileExists(t, path)
			}
		})
	}
}

func seedBoard(t *testing.T, dir string) {
	t.Helper()
	b := domain.NewBoard()
	work := b.AddStickyNote("work")
	require.NoError(t, b.AddItem(work, "deploy", "make deploy"))
	require.NoError(t, b.AddItem(work, "review", ""))
	require.NoError(t, b.ToggleDone(work, 1))
	require.NoError(t, b.AddNote(work, "ask about the release"))
	b.AddStickyNote("home")

	s := store.NewJSONStore(filepath.Join(dir, store.JSONFileName), nil)
	require.NoError(t, s.Save(context.Background(), b))
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	seedBoard(t, dir)

	out, err := run(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "work (")
	assert.Contains(t, out, "home (")
	assert.Contains(t, out, "make deploy")
	assert.Contains(t, out, "review")
	assert.Contains(t, out, "  - ask about the release")

	out, err = run(t, dir, "list", "--pending", "work")
	require.NoError(t, err)
	assert.Contains(t, out, "deploy")
	assert.NotContains(t, out, "review")
	assert.NotContains(t, out, "home (")

	_, err = run(t, dir, "list", "garden")
	assert.ErrorContains(t, err, `no sticky note titled "garden"`)
}

func TestListEmpty(t *testing.T) {
	out, err := run(t, t.TempDir(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No sticky notes.")
}

func TestRootRequiresTerminal(t *testing.T) {
	if isTerminal(os.Stdin) && isTerminal(os.Stdout) {
		t.Skip("running attached to a terminal")
	}
	_, err := run(t, t.TempDir())
	assert.ErrorIs(t, err, errNoTTY)
}

func TestRootRejectsBadTick(t *testing.T) {
	_, err := run(t, t.TempDir(), "nope")
	var cfgErr *domain.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNewDependencies(t *testing.T) {
	dir := t.TempDir()
	deps, err := NewDependencies(&Options{Dir: dir, TickMs: 25, Backend: "sqlite"})
	require.NoError(t, err)
	defer deps.Close()

	assert.Equal(t, 25, deps.Config.TickMs)
	assert.Equal(t, filepath.Join(dir, store.SQLiteFileName), deps.Store.Location())
	assert.FileExists(t, filepath.Join(dir, LogFileName))

	_, err = NewDependencies(&Options{Dir: t.TempDir(), Backend: "csv"})
	var cfgErr *domain.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNewLoggerOff(t *testing.T) {
	dir := t.TempDir()
	logger, closer, err := newLogger(dir, config.LogConfig{File: "off"}, false)
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("hello")
	assert.NoFileExists(t, filepath.Join(dir, LogFileName))
}
