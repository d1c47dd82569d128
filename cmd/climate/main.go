// Command climate prints monthly climate tables extracted from Wikipedia
// articles.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/climate-graph/internal/app"
	"github.com/couchcryptid/climate-graph/internal/config"
	"github.com/couchcryptid/climate-graph/internal/observability"
	"github.com/spf13/cobra"
)

type appKeyType string

const appKey appKeyType = "app"

// newApp builds the service container. Tests swap it for one backed by fixture
// pages.
var newApp = func(cfg *config.Config, logger *slog.Logger) (*app.App, error) {
	return app.New(cfg, logger, observability.NewMetrics())
}

func newRootCmd() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:           "climate",
		Short:         "Look up monthly climate data from Wikipedia weather boxes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if noCache {
				cfg.CacheEnabled = false
			}
			a, err := newApp(cfg, observability.NewLogger(cfg))
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a, ok := cmd.Context().Value(appKey).(*app.App); ok {
				return a.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "bypass the on-disk page cache")

	cmd.AddCommand(newLookupCmd())
	cmd.AddCommand(newCoordsCmd())
	cmd.AddCommand(newCompareCmd())
	cmd.AddCommand(newCacheCmd())
	return cmd
}

func resolveApp(ctx context.Context) (*app.App, error) {
	a, ok := ctx.Value(appKey).(*app.App)
	if !ok || a == nil {
		return nil, errors.New("application not initialized")
	}
	return a, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
