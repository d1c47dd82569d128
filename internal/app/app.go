// Package app assembles the long-lived services shared by the CLI and the
// service binary: the page fetch stack, the day-length service, the extractor
// and the query resolver.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/climate-graph/internal/adapter/astro"
	"github.com/couchcryptid/climate-graph/internal/adapter/wikipedia"
	"github.com/couchcryptid/climate-graph/internal/config"
	"github.com/couchcryptid/climate-graph/internal/domain"
	"github.com/couchcryptid/climate-graph/internal/observability"
)

// App holds the wired services. Construct it once at startup with New.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Metrics   *observability.Metrics
	Pages     domain.PageFetcher
	Extractor *domain.Extractor
	Resolver  *domain.Resolver

	memory *wikipedia.CachedFetcher
	disk   *wikipedia.DiskCache
}

// New builds an App on top of the MediaWiki API client described by cfg.
func New(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*App, error) {
	client := wikipedia.NewClient(cfg.WikiAPIURL, cfg.WikiUserAgent, cfg.WikiTimeout, cfg.WikiRateLimit, metrics, logger)
	return NewWithFetcher(cfg, logger, metrics, client)
}

// NewWithFetcher builds an App around an arbitrary page source. The disk
// cache is layered on when cfg enables it; the memory cache always is.
func NewWithFetcher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, base domain.PageFetcher) (*App, error) {
	a := &App{Config: cfg, Logger: logger, Metrics: metrics}

	pages := base
	if cfg.CacheEnabled {
		disk, err := wikipedia.NewDiskCache(base, cfg.CacheDir, cfg.CacheTTL, metrics, logger)
		if err != nil {
			return nil, fmt.Errorf("init page cache: %w", err)
		}
		a.disk = disk
		pages = disk
		logger.Debug("disk page cache enabled", "dir", cfg.CacheDir, "ttl", cfg.CacheTTL)
	}
	a.memory = wikipedia.NewCachedFetcher(pages, cfg.CacheSize, metrics)
	a.Pages = a.memory

	a.Extractor = domain.NewExtractor(a.Pages, astro.NewService(a.Pages, logger), logger)
	a.Resolver = domain.NewResolver(&countingSource{inner: a.Extractor, metrics: metrics}, logger)
	return a, nil
}

// ClearCache drops cached pages. With no titles every entry is removed and
// the number of deleted disk entries is returned.
func (a *App) ClearCache(titles ...string) (int, error) {
	if len(titles) == 0 {
		a.memory.ForgetAll()
		if a.disk == nil {
			return 0, nil
		}
		return a.disk.ClearAll()
	}

	a.memory.Forget(titles...)
	if a.disk == nil {
		return 0, nil
	}
	if err := a.disk.Clear(titles...); err != nil {
		return 0, err
	}
	return len(titles), nil
}

// Cached reports whether title has a fresh disk cache entry.
func (a *App) Cached(title string) bool {
	return a.disk != nil && a.disk.Exists(title)
}

// Close releases the disk cache.
func (a *App) Close() error {
	if a.disk == nil {
		return nil
	}
	return a.disk.Close()
}

// countingSource records how many resolver candidates turn out to exist.
type countingSource struct {
	inner   domain.ClimateSource
	metrics *observability.Metrics
}

func (s *countingSource) Extract(ctx context.Context, place string) domain.Record {
	rec := s.inner.Extract(ctx, place)
	if domain.HasPrintableData(rec) {
		s.metrics.ResolverLookups.WithLabelValues("exists").Inc()
	} else {
		s.metrics.ResolverLookups.WithLabelValues("absent").Inc()
	}
	return rec
}
