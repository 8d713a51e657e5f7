package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/riordanpawley/forget/internal/config"
	"github.com/riordanpawley/forget/internal/store"
	"github.com/spf13/cobra"
)

func newConfigCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create the configuration file",
	}
	cmd.AddCommand(newConfigPathCmd(opts))
	cmd.AddCommand(newConfigInitCmd(opts))
	cmd.AddCommand(newConfigValidateCmd(opts))
	return cmd
}

func newConfigPathCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the config and notes live",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := opts.dataDir()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config: %s\n", filepath.Join(dir, config.FileName))

			// The store location depends on the config, but a broken
			// config should not hide the config path
			cfg, err := readConfig(dir)
			if err != nil {
				return err
			}
			opts.apply(cfg)
			s, err := store.Open(cfg.Storage, dir, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "store:  %s\n", s.Location())
			return nil
		},
	}
}

func newConfigInitCmd(opts *Options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := opts.dataDir()
			if err != nil {
				return err
			}
			path := filepath.Join(dir, config.FileName)
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}
			if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config")
	return cmd
}

func newConfigValidateCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration file for errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := opts.dataDir()
			if err != nil {
				return err
			}
			path := filepath.Join(dir, config.FileName)
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s does not exist; defaults will be used\n", path)
				return nil
			}

			cfg, err := config.LoadConfig(dir)
			if err != nil {
				return err
			}
			opts.apply(cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			return nil
		},
	}
}

// readConfig loads the config without creating it when it is missing
func readConfig(dir string) (*config.Config, error) {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); errors.Is(err, fs.ErrNotExist) {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(dir)
}
