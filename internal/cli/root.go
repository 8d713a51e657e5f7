// Package cli builds the forget command line: the interactive board by
// default, plus a few scriptable commands for the config and the notes.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/riordanpawley/forget/internal/app"
	"github.com/riordanpawley/forget/internal/config"
	"github.com/riordanpawley/forget/internal/domain"
	"github.com/riordanpawley/forget/internal/terminal"
	"github.com/riordanpawley/forget/internal/ui/styles"
	"github.com/spf13/cobra"
)

// Options are the persistent command line flags
type Options struct {
	Dir     string
	TickMs  int
	Backend string
	LogFile string
	Debug   bool
}

func (o *Options) dataDir() (string, error) {
	if o.Dir != "" {
		return o.Dir, nil
	}
	return config.DefaultDir()
}

// apply overrides config values given on the command line
func (o *Options) apply(cfg *config.Config) {
	if o.TickMs != 0 {
		cfg.TickMs = o.TickMs
	}
	if o.Backend != "" {
		cfg.Storage.Backend = o.Backend
	}
	if o.LogFile != "" {
		cfg.Log.File = o.LogFile
	}
}

// NewRootCmd returns the forget command
func NewRootCmd() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "forget [tick-ms]",
		Short: "Sticky notes and todos in the terminal",
		Long: `forget keeps sticky notes of todos and free-text notes in the terminal.

A todo can carry a shell command; pressing enter on it runs the command in
the background. Notes are saved with the save key and when you quit.`,
		Example: strings.TrimSpace(`
  # Open the board
  forget

  # Redraw every 100ms instead of the default
  forget 100

  # Keep notes in SQLite instead of JSON
  forget --backend sqlite
`),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				tick, err := parseTick(args[0])
				if err != nil {
					return err
				}
				opts.TickMs = tick
			}
			return runBoard(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Dir, "dir", envOr("FORGET_DIR", ""), "Data directory (default ~/.forget)")
	cmd.PersistentFlags().IntVar(&opts.TickMs, "tick", 0, "Redraw interval in milliseconds (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "Storage backend: json or sqlite (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", `Log file path, or "off" (overrides config)`)
	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "Log at debug level")

	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newListCmd(opts))

	return cmd
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseTick(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, &domain.ConfigError{Field: "tick", Value: s, Reason: "must be a positive number of milliseconds"}
	}
	return n, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// errNoTTY is returned when forget is not attached to a terminal
var errNoTTY = errors.New("forget needs an interactive terminal")

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// runBoard runs the interactive board until the user quits
func runBoard(ctx context.Context, opts *Options) error {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return errNoTTY
	}

	deps, err := NewDependencies(opts)
	if err != nil {
		return err
	}
	defer deps.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	styles.ApplyColorProfile()

	host := terminal.New(deps.Logger.With("component", "terminal"))
	a, err := app.New(ctx, app.Options{
		Config: deps.Config,
		Keymap: deps.Keymap,
		Styles: deps.Styles,
		Store:  deps.Store,
		Runner: deps.Runner,
		Source: host,
		Screen: host,
		Logger: deps.Logger,
	})
	if err != nil {
		return err
	}

	deps.Logger.Info("starting", "dir", deps.Dir, "store", deps.Store.Location(), "tick", deps.Config.TickInterval())

	done := make(chan error, 1)
	go func() {
		err := a.Run(ctx)
		host.Quit()
		done <- err
	}()

	if err := host.Run(); err != nil {
		stop()
		<-done
		return fmt.Errorf("terminal: %w", err)
	}
	return <-done
}
