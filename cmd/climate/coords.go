package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newCoordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "coords <place>",
		Short: "Print the coordinates of a place",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			place := strings.Join(args, " ")
			c, ok := a.Extractor.Coordinates(cmd.Context(), place)
			if !ok {
				return fmt.Errorf("no coordinates found for %q", place)
			}

			line := place + ": " + formatFloat(c.Lat) + ", " + formatFloat(c.Lng)
			if c.HasElevation {
				line += " (" + formatFloat(c.Elevation) + " m)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
