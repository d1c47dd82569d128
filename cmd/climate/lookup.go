package main

import (
	"fmt"
	"time"

	"github.com/couchcryptid/climate-graph/internal/domain"
	"github.com/spf13/cobra"
)

func newLookupCmd() *cobra.Command {
	var all, timing bool

	cmd := &cobra.Command{
		Use:   "lookup <query>...",
		Short: "Print climate tables for the places named in a query",
		Long: `Classifies the arguments into months, categories and place names, then
prints the climate table of every place found. Multi-word names such as
"new york city" or "hamilton new zealand" are stitched together automatically.
When nothing resolves, each argument is looked up as a place name.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			start := time.Now()

			q := a.Resolver.Classify(cmd.Context(), args)
			places := q.Cities
			if len(places) == 0 {
				places = args
			}

			out := cmd.OutOrStdout()
			for i, place := range places {
				if i > 0 {
					fmt.Fprintln(out)
				}
				rec := a.Extractor.Extract(cmd.Context(), place)
				fmt.Fprintln(out, domain.FormatText(rec, all || q.Location))
			}

			if timing {
				fmt.Fprintf(cmd.ErrOrStderr(), "took %s\n", time.Since(start).Round(time.Millisecond))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "print every category, not just the default rows")
	cmd.Flags().BoolVarP(&timing, "timing", "t", false, "report how long the lookup took")
	return cmd
}
