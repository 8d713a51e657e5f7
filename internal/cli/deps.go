package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/riordanpawley/forget/internal/config"
	"github.com/riordanpawley/forget/internal/keymap"
	"github.com/riordanpawley/forget/internal/services/runner"
	"github.com/riordanpawley/forget/internal/store"
	"github.com/riordanpawley/forget/internal/ui/styles"
)

// LogFileName is the default log file inside the data directory
const LogFileName = "forget.log"

// Dependencies holds everything a command needs, built from the config
type Dependencies struct {
	Dir    string
	Config *config.Config
	Keymap *keymap.Keymap
	Styles *styles.Styles
	Store  store.Store
	Runner *runner.Runner
	Logger *slog.Logger

	logFile io.Closer
}

// NewDependencies loads the configuration from opts.Dir, applies command
// line overrides and builds the services. Invalid configuration is
// returned as a *domain.ConfigError.
func NewDependencies(opts *Options) (*Dependencies, error) {
	dir, err := opts.dataDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return nil, err
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	km, err := cfg.Keymap()
	if err != nil {
		return nil, err
	}
	st, err := styles.New(cfg.Colors)
	if err != nil {
		return nil, err
	}

	logger, closer, err := newLogger(dir, cfg.Log, opts.Debug)
	if err != nil {
		return nil, err
	}

	s, err := store.Open(cfg.Storage, dir, logger.With("component", "store"))
	if err != nil {
		closer.Close()
		return nil, err
	}

	r := runner.New(runner.Options{
		Shell: cfg.Runner.Shell,
		Grace: cfg.GracePeriod(),
	}, logger.With("component", "runner"))

	return &Dependencies{
		Dir:     dir,
		Config:  cfg,
		Keymap:  km,
		Styles:  st,
		Store:   s,
		Runner:  r,
		Logger:  logger,
		logFile: closer,
	}, nil
}

// Close releases the log file
func (d *Dependencies) Close() error {
	if d.logFile == nil {
		return nil
	}
	return d.logFile.Close()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger opens the log file named by the config (default
// <dir>/forget.log). The UI owns the terminal, so nothing is logged to
// stderr. "off" disables logging.
func newLogger(dir string, lc config.LogConfig, debug bool) (*slog.Logger, io.Closer, error) {
	level := parseLevel(lc.Level)
	if debug {
		level = slog.LevelDebug
	}

	path := lc.File
	switch strings.ToLower(path) {
	case "off", "none":
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nopCloser{}, nil
	case "":
		path = filepath.Join(dir, LogFileName)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(handler), f, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
