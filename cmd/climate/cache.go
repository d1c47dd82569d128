package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the on-disk page cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear [title]...",
		Short: "Remove cached pages, or every cached page when no title is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			n, err := a.ClearCache(args...)
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cache entries\n", n)
			return nil
		},
	})
	return cmd
}
