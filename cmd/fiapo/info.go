package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"fiapo/internal/errors"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [files...]",
		Short: "Show how files would be read",
		Long:  `Classify and open the files like an import would, and print the resulting reading order without reading.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			builder, err := newBuilder()
			if err != nil {
				return err
			}

			plan, err := builder.Build(cmd.Context(), args)
			if err != nil {
				if errors.IsEmptySession(err) {
					return fmt.Errorf("nothing readable in %d path(s)", len(args))
				}
				return err
			}
			defer plan.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d source(s), %s page(s)",
				len(plan.Sources), humanize.Comma(int64(plan.TotalPages)))))

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for i, s := range plan.Sources {
				size := "?"
				if info, err := os.Stat(s.Path()); err == nil {
					size = humanize.Bytes(uint64(info.Size()))
				}
				fmt.Fprintf(tw, "%d.\t%s\t%s\t%d page(s)\t%s\n", i+1, s.Name(), s.Kind(), s.PageCount(), size)
			}
			tw.Flush()

			if len(plan.Skipped) > 0 {
				fmt.Fprintln(out, headerStyle.Render("Skipped"))
				for _, s := range plan.Skipped {
					fmt.Fprintf(out, "  %s: %s\n", s.Path, dimStyle.Render(s.Reason.Error()))
				}
			}
			return nil
		},
	}
}
