package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/riordanpawley/forget/internal/domain"
	"github.com/riordanpawley/forget/internal/store"
	"github.com/spf13/cobra"
)

func newListCmd(opts *Options) *cobra.Command {
	var pending bool
	cmd := &cobra.Command{
		Use:   "list [title]",
		Short: "Print sticky notes without opening the board",
		Long: `Print every sticky note with its todos and notes. With a title, only
notes whose title matches exactly are printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := opts.dataDir()
			if err != nil {
				return err
			}
			cfg, err := readConfig(dir)
			if err != nil {
				return err
			}
			opts.apply(cfg)

			s, err := store.Open(cfg.Storage, dir, nil)
			if err != nil {
				return err
			}
			b, err := s.Load(cmd.Context())
			if err != nil {
				return err
			}

			title := ""
			if len(args) == 1 {
				title = args[0]
			}
			return printBoard(cmd.OutOrStdout(), b, title, pending)
		},
	}
	cmd.Flags().BoolVar(&pending, "pending", false, "Only show todos that are not done")
	return cmd
}

func printBoard(out io.Writer, b *domain.Board, title string, pending bool) error {
	printed := 0
	for _, note := range b.Notes {
		if title != "" && note.Title != title {
			continue
		}
		if printed > 0 {
			fmt.Fprintln(out)
		}
		printed++

		fmt.Fprintf(out, "%s (%s)\n", note.Title, note.ID.Short())

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tDONE\tTODO\tCOMMAND")
		fmt.Fprintln(w, "-\t----\t----\t-------")
		for i, item := range note.Items {
			if pending && item.Done {
				continue
			}
			done := ""
			if item.Done {
				done = "x"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, done, item.Text, item.Command)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		for _, n := range note.Notes {
			fmt.Fprintf(out, "  - %s\n", n)
		}
	}

	if printed == 0 {
		if title != "" {
			return fmt.Errorf("no sticky note titled %q", title)
		}
		fmt.Fprintln(out, "No sticky notes.")
	}
	return nil
}
