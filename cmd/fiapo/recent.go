package main

import (
	"fmt"
	"strings"

	"fiapo/internal/library"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newRecentCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently imported sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !cfg.Library.Enabled {
				fmt.Fprintln(out, "Import history is disabled.")
				return nil
			}

			store, err := library.Open(cfg.Library.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			imports, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(imports) == 0 {
				fmt.Fprintln(out, "No imports yet.")
				return nil
			}

			for _, imp := range imports {
				fmt.Fprintf(out, "%s  %s\n",
					headerStyle.Render(humanize.Time(imp.ImportedAt)),
					dimStyle.Render(fmt.Sprintf("%s page(s)", humanize.Comma(int64(imp.TotalPages)))))
				fmt.Fprintf(out, "  %s\n", strings.Join(imp.Paths, "\n  "))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of imports")
	return cmd
}
