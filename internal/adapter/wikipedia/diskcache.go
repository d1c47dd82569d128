package wikipedia

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/climate-graph/internal/domain"
	"github.com/couchcryptid/climate-graph/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/klauspost/compress/zstd"
)

const cacheExt = ".json.zst"

// DiskCache persists fetched pages as zstd-compressed JSON files, one per
// title. Entries older than the TTL are refetched.
type DiskCache struct {
	inner   domain.PageFetcher
	dir     string
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// DiskCacheOption configures a DiskCache.
type DiskCacheOption func(*DiskCache)

// WithClock sets the time source used for entry expiry.
func WithClock(c clockwork.Clock) DiskCacheOption {
	return func(d *DiskCache) { d.clock = c }
}

type diskEntry struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Found bool   `json:"found"`
}

// NewDiskCache creates the cache directory if needed and wraps inner.
func NewDiskCache(inner domain.PageFetcher, dir string, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger, opts ...DiskCacheOption) (*DiskCache, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	d := &DiskCache{
		inner:   inner,
		dir:     dir,
		ttl:     ttl,
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
		logger:  logger,
		encoder: enc,
		decoder: dec,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// FetchPage serves title from disk when a fresh entry exists, otherwise it
// fetches from inner and stores the result. Transport errors are not cached.
func (d *DiskCache) FetchPage(ctx context.Context, title string) (domain.Page, error) {
	if p, ok := d.load(title); ok {
		d.metrics.CacheLookups.WithLabelValues("disk", "hit").Inc()
		return p, nil
	}
	d.metrics.CacheLookups.WithLabelValues("disk", "miss").Inc()

	p, err := d.inner.FetchPage(ctx, title)
	if err != nil {
		return domain.Page{}, err
	}
	if err := d.store(title, p); err != nil {
		d.logger.Warn("page cache write failed", "title", title, "error", err)
	}
	return p, nil
}

// Exists reports whether a fresh entry for title is on disk.
func (d *DiskCache) Exists(title string) bool {
	info, err := os.Stat(d.path(title))
	if err != nil {
		return false
	}
	return d.fresh(info)
}

// Clear removes the entries for titles. Absent entries are ignored.
func (d *DiskCache) Clear(titles ...string) error {
	for _, t := range titles {
		if err := os.Remove(d.path(t)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove cache entry %q: %w", t, err)
		}
	}
	return nil
}

// ClearAll removes every cached entry and returns how many were deleted.
func (d *DiskCache) ClearAll() (int, error) {
	matches, err := filepath.Glob(filepath.Join(d.dir, "*"+cacheExt))
	if err != nil {
		return 0, fmt.Errorf("list cache entries: %w", err)
	}
	n := 0
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			return n, fmt.Errorf("remove cache entry: %w", err)
		}
		n++
	}
	return n, nil
}

// Close releases the compression resources.
func (d *DiskCache) Close() error {
	d.decoder.Close()
	return d.encoder.Close()
}

func (d *DiskCache) path(title string) string {
	sum := sha256.Sum256([]byte(title))
	return filepath.Join(d.dir, hex.EncodeToString(sum[:])+cacheExt)
}

func (d *DiskCache) fresh(info os.FileInfo) bool {
	return d.clock.Since(info.ModTime()) < d.ttl
}

func (d *DiskCache) load(title string) (domain.Page, bool) {
	path := d.path(title)
	info, err := os.Stat(path)
	if err != nil || !d.fresh(info) {
		return domain.Page{}, false
	}

	raw, err := os.ReadFile(path) //nolint:gosec // path is derived from a sha256 digest inside the cache dir
	if err != nil {
		return domain.Page{}, false
	}
	data, err := d.decoder.DecodeAll(raw, nil)
	if err != nil {
		d.logger.Warn("corrupt page cache entry", "title", title, "error", err)
		return domain.Page{}, false
	}
	var e diskEntry
	if err := json.Unmarshal(data, &e); err != nil {
		d.logger.Warn("corrupt page cache entry", "title", title, "error", err)
		return domain.Page{}, false
	}
	return domain.Page{Title: e.Title, Body: e.Body, Found: e.Found}, true
}

func (d *DiskCache) store(title string, p domain.Page) error {
	data, err := json.Marshal(diskEntry{Title: p.Title, Body: p.Body, Found: p.Found})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	compressed := d.encoder.EncodeAll(data, nil)

	tmp, err := os.CreateTemp(d.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(compressed); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	path := d.path(title)
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename entry: %w", err)
	}
	now := d.clock.Now()
	if err := os.Chtimes(path, now, now); err != nil {
		return fmt.Errorf("stamp entry: %w", err)
	}
	return nil
}
