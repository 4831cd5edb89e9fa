package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"fiapo/internal/errors"
	"fiapo/internal/search"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <title>",
		Short: "Search the online catalog by title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.Search.Enabled {
				return fmt.Errorf("search is disabled in the configuration")
			}

			client := search.NewClient(cfg.Search.BaseURL,
				search.WithCoverURL(cfg.Search.CoverURL),
				search.WithTimeout(time.Duration(cfg.Search.Timeout)*time.Second),
			)

			title := strings.Join(args, " ")
			results, err := client.Search(cmd.Context(), title)
			if err != nil {
				if errors.IsSearchTimeout(err) {
					return fmt.Errorf("the catalog did not answer within %ds", cfg.Search.Timeout)
				}
				return err
			}
			if limit > 0 && len(results) > limit {
				results = results[:limit]
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, headerStyle.Render("TITLE")+"\t"+headerStyle.Render("ROMAJI")+"\t"+headerStyle.Render("AUTHOR / ARTIST"))
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%s\t%s / %s\n", r.EnglishTitle, r.RomajiTitle, r.Author, r.Artist)
			}
			tw.Flush()
			for _, r := range results {
				fmt.Fprintln(out, dimStyle.Render(r.CoverURL))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of results")
	return cmd
}
