package main

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/couchcryptid/climate-graph/internal/domain"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <query>...",
		Short: "Compare selected months and categories across places",
		Example: `  climate compare toronto vancouver jan jul high low
  climate compare seattle vs portland march sun`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			q := a.Resolver.Classify(cmd.Context(), args)
			if len(q.Cities) == 0 {
				return errors.New("no places with climate data in query")
			}
			if !q.MonthSelected() || len(q.Categories) == 0 {
				return errors.New("query needs at least one month and one category")
			}

			cmp := a.Extractor.Compare(cmd.Context(), q.Cities, q.Months, q.Categories)
			schema := domain.DefaultSchema()
			months := schema.Months()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for m := range domain.NumMonths {
				byPlace, ok := cmp[m]
				if !ok {
					continue
				}
				for _, title := range slices.Sorted(maps.Keys(byPlace)) {
					values := byPlace[title]
					for _, c := range schema.Rows() {
						r, ok := values[c]
						if !ok {
							continue
						}
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", months[m], title, schema.Title(c), r)
					}
				}
			}
			return tw.Flush()
		},
	}
}
