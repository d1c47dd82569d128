// Command genfixture downloads the articles a lookup touches and stores them
// as test fixtures, together with the record extracted from the stored copy.
// Every page fetched during extraction is saved, including separate weather
// box templates, so the fixtures replay offline.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -out internal/domain/testdata \
//	  -titles "Toronto;Hamilton, New Zealand"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/climate-graph/internal/adapter/astro"
	"github.com/couchcryptid/climate-graph/internal/adapter/wikipedia"
	"github.com/couchcryptid/climate-graph/internal/config"
	"github.com/couchcryptid/climate-graph/internal/domain"
	"github.com/couchcryptid/climate-graph/internal/observability"
	"github.com/jonboulle/clockwork"
)

// fixtureTime stamps generated records so validate can reproduce them.
var fixtureTime = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// recorder keeps every found page that passes through it.
type recorder struct {
	inner domain.PageFetcher
	mu    sync.Mutex
	pages map[string]string
}

func (r *recorder) FetchPage(ctx context.Context, title string) (domain.Page, error) {
	p, err := r.inner.FetchPage(ctx, title)
	if err == nil && p.Found {
		r.mu.Lock()
		r.pages[title] = p.Body
		r.mu.Unlock()
	}
	return p, err
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "directory to write .wiki and .json fixtures to")
	titles := flag.String("titles", "", "semicolon separated article titles")
	flag.Parse()

	if *out == "" || *titles == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -titles")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetricsForTesting()
	client := wikipedia.NewClient(cfg.WikiAPIURL, cfg.WikiUserAgent, cfg.WikiTimeout, cfg.WikiRateLimit, metrics, logger)

	if err := os.MkdirAll(*out, 0o750); err != nil {
		return err
	}

	domain.SetClock(clockwork.NewFakeClockAt(fixtureTime))
	defer domain.SetClock(nil)

	ctx := context.Background()
	for _, title := range strings.Split(*titles, ";") {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}

		rec := &recorder{inner: client, pages: map[string]string{}}
		live := domain.NewExtractor(rec, astro.NewService(rec, logger), logger)
		if r := live.Extract(ctx, title); r.PageError {
			return fmt.Errorf("%s: page not found", title)
		}
		for name, body := range rec.pages {
			if err := os.WriteFile(filepath.Join(*out, wikipedia.FixtureName(name)), []byte(body), 0o600); err != nil {
				return fmt.Errorf("write page %q: %w", name, err)
			}
		}

		// Extract again from disk so the stored record matches what a replay yields.
		stored := wikipedia.NewDirFetcher(*out)
		replay := domain.NewExtractor(stored, astro.NewService(stored, logger), logger)
		r := replay.Extract(ctx, title)
		if err := writeJSON(filepath.Join(*out, recordName(title)), r); err != nil {
			return fmt.Errorf("write record %q: %w", title, err)
		}
		log.Printf("%s: %d pages, has data: %t", title, len(rec.pages), domain.HasPrintableData(r))
	}
	return nil
}

func recordName(title string) string {
	return strings.TrimSuffix(wikipedia.FixtureName(title), ".wiki") + ".json"
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
