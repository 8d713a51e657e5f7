package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/riordanpawley/forget/internal/domain"
	"github.com/riordanpawley/forget/internal/keymap"
	"github.com/tidwall/jsonc"
)

const (
	// DirName is the per-user data directory under $HOME
	DirName = ".forget"
	// FileName is the config document inside the data directory
	FileName = "config.json"
)

// Config represents the full forget configuration
type Config struct {
	Title     string            `json:"title"`
	Highlight string            `json:"highlight"`
	TickMs    int               `json:"tickMs"`
	Keys      map[string]string `json:"keys"`
	Colors    ColorConfig       `json:"colors"`
	Runner    RunnerConfig      `json:"runner"`
	Storage   StorageConfig     `json:"storage"`
	Notes     NotesConfig       `json:"notes"`
	Log       LogConfig         `json:"log"`
}

// StyleConfig is one colour slot: foreground, background and modifiers
type StyleConfig struct {
	Fg       string `json:"fg"`
	Bg       string `json:"bg"`
	Modifier string `json:"modifier"`
}

// ColorConfig holds the palette slots used by the board view
type ColorConfig struct {
	Normal    StyleConfig `json:"normal"`
	Highlight StyleConfig `json:"highlight"`
	Tabs      StyleConfig `json:"tabs"`
	Titles    StyleConfig `json:"titles"`
	Text      StyleConfig `json:"text"`
}

// RunnerConfig controls how item commands are executed
type RunnerConfig struct {
	Shell   string `json:"shell"`
	GraceMs int    `json:"graceMs"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Backend string `json:"backend"` // "json" or "sqlite"
	Path    string `json:"path"`    // empty = default file in the data directory
}

// NotesConfig controls how free-text notes are displayed
type NotesConfig struct {
	Markdown      bool   `json:"markdown"`
	MarkdownStyle string `json:"markdownStyle"`
}

// LogConfig controls the debug log file
type LogConfig struct {
	File  string `json:"file"`
	Level string `json:"level"`
}

// Storage backends
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// DefaultConfig returns a Config with the stock bindings and palette
func DefaultConfig() *Config {
	return &Config{
		Title:     "Forget It",
		Highlight: "✔",
		TickMs:    60,
		Keys:      DefaultKeys(),
		Colors: ColorConfig{
			Normal:    StyleConfig{Fg: "White", Bg: "Reset", Modifier: "RESET"},
			Highlight: StyleConfig{Fg: "Yellow", Bg: "Reset", Modifier: "BOLD"},
			Tabs:      StyleConfig{Fg: "Cyan", Bg: "Reset", Modifier: "BOLD"},
			Titles:    StyleConfig{Fg: "Red", Bg: "Reset", Modifier: "BOLD"},
			Text:      StyleConfig{Fg: "Green", Bg: "Reset", Modifier: "ITALIC"},
		},
		Runner: RunnerConfig{
			Shell:   "sh",
			GraceMs: 3000,
		},
		Storage: StorageConfig{
			Backend: BackendJSON,
		},
		Notes: NotesConfig{
			Markdown:      false,
			MarkdownStyle: "dark",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultKeys returns the stock key bindings, keyed by command name
func DefaultKeys() map[string]string {
	return map[string]string{
		keymap.NavigateUp.String():       "up",
		keymap.NavigateDown.String():     "down",
		keymap.NavigateLeft.String():     "left",
		keymap.NavigateRight.String():    "right",
		keymap.MarkDone.String():         "backspace",
		keymap.RemoveItem.String():       "delete",
		keymap.NewStickyNote.String():    "ctrl+h",
		keymap.NewTodoItem.String():      "ctrl+n",
		keymap.NewNote.String():          "ctrl+k",
		keymap.EditCurrentItem.String():  "ctrl+e",
		keymap.RemoveStickyNote.String(): "ctrl+u",
		keymap.SaveState.String():        "ctrl+s",
		keymap.Exit.String():             "ctrl+q",
	}
}

// DefaultDir returns ~/.forget
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// LoadConfig loads dir/config.json. A missing file is created with the
// defaults so users have something to edit. The document may contain
// comments and trailing commas. The result is merged with defaults and
// validated; every failure is a *domain.ConfigError.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		if err := SaveConfig(cfg, path); err != nil {
			return nil, &domain.ConfigError{Field: path, Reason: "failed to write default config", Err: err}
		}
		return cfg, nil
	}
	if err != nil {
		return nil, &domain.ConfigError{Field: path, Reason: "failed to read config", Err: err}
	}

	cfg, err := ParseVersionedConfig(jsonc.ToJSON(data))
	if err != nil {
		return nil, &domain.ConfigError{Field: path, Reason: err.Error(), Err: err}
	}
	cfg = MergeWithDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves configuration to the specified path with version information
func SaveConfig(cfg *Config, path string) error {
	data, err := MarshalVersionedConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeWithDefaults fills in missing values with defaults
func MergeWithDefaults(cfg *Config) *Config {
	defaults := DefaultConfig()

	if cfg.Title == "" {
		cfg.Title = defaults.Title
	}
	if cfg.Highlight == "" {
		cfg.Highlight = defaults.Highlight
	}
	if cfg.TickMs == 0 {
		cfg.TickMs = defaults.TickMs
	}

	// Merge keys per command so partial overrides keep the other bindings
	if cfg.Keys == nil {
		cfg.Keys = map[string]string{}
	}
	for name, key := range defaults.Keys {
		if _, ok := cfg.Keys[name]; !ok {
			cfg.Keys[name] = key
		}
	}

	// Merge colour slots
	mergeStyle(&cfg.Colors.Normal, defaults.Colors.Normal)
	mergeStyle(&cfg.Colors.Highlight, defaults.Colors.Highlight)
	mergeStyle(&cfg.Colors.Tabs, defaults.Colors.Tabs)
	mergeStyle(&cfg.Colors.Titles, defaults.Colors.Titles)
	mergeStyle(&cfg.Colors.Text, defaults.Colors.Text)

	// Merge Runner config
	if cfg.Runner.Shell == "" {
		cfg.Runner.Shell = defaults.Runner.Shell
	}
	if cfg.Runner.GraceMs == 0 {
		cfg.Runner.GraceMs = defaults.Runner.GraceMs
	}

	// Merge Storage config
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaults.Storage.Backend
	}

	// Merge Notes config
	if cfg.Notes.MarkdownStyle == "" {
		cfg.Notes.MarkdownStyle = defaults.Notes.MarkdownStyle
	}

	// Merge Log config
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}

	return cfg
}

func mergeStyle(dst *StyleConfig, def StyleConfig) {
	if dst.Fg == "" {
		dst.Fg = def.Fg
	}
	if dst.Bg == "" {
		dst.Bg = def.Bg
	}
	if dst.Modifier == "" {
		dst.Modifier = def.Modifier
	}
}

// Validate checks everything that would otherwise fail later at runtime
func (c *Config) Validate() error {
	if c.TickMs <= 0 {
		return &domain.ConfigError{Field: "tickMs", Value: fmt.Sprint(c.TickMs), Reason: "must be positive"}
	}
	if c.Runner.GraceMs < 0 {
		return &domain.ConfigError{Field: "runner.graceMs", Value: fmt.Sprint(c.Runner.GraceMs), Reason: "must not be negative"}
	}
	if strings.TrimSpace(c.Runner.Shell) == "" {
		return &domain.ConfigError{Field: "runner.shell", Reason: "must not be empty"}
	}

	switch c.Storage.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return &domain.ConfigError{
			Field:  "storage.backend",
			Value:  c.Storage.Backend,
			Reason: fmt.Sprintf("must be %q or %q", BackendJSON, BackendSQLite),
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return &domain.ConfigError{Field: "log.level", Value: c.Log.Level, Reason: "must be debug, info, warn or error"}
	}

	for slot, style := range c.Colors.slots() {
		if _, err := ParseColor(style.Fg); err != nil {
			return &domain.ConfigError{Field: "colors." + slot + ".fg", Value: style.Fg, Reason: err.Error(), Err: err}
		}
		if _, err := ParseColor(style.Bg); err != nil {
			return &domain.ConfigError{Field: "colors." + slot + ".bg", Value: style.Bg, Reason: err.Error(), Err: err}
		}
		if _, err := ParseModifiers(style.Modifier); err != nil {
			return &domain.ConfigError{Field: "colors." + slot + ".modifier", Value: style.Modifier, Reason: err.Error(), Err: err}
		}
	}

	_, err := c.Keymap()
	return err
}

// Keymap parses the key table and builds the validated keymap
func (c *Config) Keymap() (*keymap.Keymap, error) {
	bindings := make(map[keymap.Command]keymap.KeyEvent, len(c.Keys))
	for name, key := range c.Keys {
		cmd, ok := keymap.ParseCommand(name)
		if !ok {
			return nil, &domain.ConfigError{Field: "keys." + name, Reason: "unknown command"}
		}
		ev, err := keymap.ParseBinding(key)
		if err != nil {
			return nil, &domain.ConfigError{Field: "keys." + name, Value: key, Reason: err.Error(), Err: err}
		}
		bindings[cmd] = ev
	}
	return keymap.New(bindings)
}

// TickInterval returns the render interval
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickMs) * time.Millisecond
}

// GracePeriod returns how long spawned commands may run after exit
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.Runner.GraceMs) * time.Millisecond
}

func (c ColorConfig) slots() map[string]StyleConfig {
	return map[string]StyleConfig{
		"normal":    c.Normal,
		"highlight": c.Highlight,
		"tabs":      c.Tabs,
		"titles":    c.Titles,
		"text":      c.Text,
	}
}
