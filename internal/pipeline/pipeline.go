package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/climate-graph/internal/domain"
	"github.com/couchcryptid/climate-graph/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// BatchExtractor reads up to batchSize place queries from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer turns a place query into a climate record.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.Record, error)
}

// BatchLoader writes multiple climate records to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, records []domain.Record) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline consumes place queries, extracts their climate records and
// publishes them. Offsets are committed only once a query's record is
// published or the query is known to be unanswerable.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int

	// backoff is only touched by the Run goroutine.
	backoff time.Duration
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
		backoff:     initialBackoff,
	}
}

// CheckReadiness returns nil once a record has been published.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no climate records published yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	for ctx.Err() == nil {
		if !p.processBatch(ctx) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", context.Cause(ctx))
	return nil
}

// processBatch runs one read-extract-publish cycle. It reports false when the
// pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context) bool {
	start := time.Now()

	queries, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("read query batch failed", "error", err)
		return p.wait(ctx)
	}
	if len(queries) == 0 {
		return true
	}

	p.metrics.MessagesConsumed.Add(float64(len(queries)))
	p.metrics.BatchSize.Observe(float64(len(queries)))
	p.backoff = initialBackoff

	published, ok := p.publish(ctx, queries)
	if !ok {
		return false
	}
	if published > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	return true
}

// publish extracts a record per query, loads them as one batch and commits.
// Unanswerable queries are committed straight away so they are not redelivered.
func (p *Pipeline) publish(ctx context.Context, queries []domain.RawEvent) (int, bool) {
	records := make([]domain.Record, 0, len(queries))
	answered := make([]domain.RawEvent, 0, len(queries))

	for _, q := range queries {
		rec, err := p.transformer.Transform(ctx, q)
		if err != nil {
			level := slog.LevelWarn
			if errors.Is(err, ErrPlaceNotFound) {
				level = slog.LevelInfo
			}
			p.logger.Log(ctx, level, "skipping query",
				"error", err,
				"topic", q.Topic,
				"partition", q.Partition,
				"offset", q.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commit(ctx, q)
			continue
		}
		records = append(records, rec)
		answered = append(answered, q)
	}

	if len(records) == 0 {
		return 0, true
	}

	if err := p.loader.LoadBatch(ctx, records); err != nil {
		p.logger.Error("publish records failed", "error", err, "batch_size", len(records))
		return 0, p.wait(ctx)
	}
	p.metrics.MessagesProduced.Add(float64(len(records)))
	p.logger.Debug("published records", "count", len(records), "skipped", len(queries)-len(records))

	for _, q := range answered {
		p.commit(ctx, q)
	}
	return len(records), true
}

// wait sleeps for the current backoff and doubles it, up to maxBackoff. It
// reports false if the context ends first.
func (p *Pipeline) wait(ctx context.Context) bool {
	if !retry.SleepWithContext(ctx, p.backoff) {
		return false
	}
	p.backoff = retry.NextBackoff(p.backoff, maxBackoff)
	return true
}

func (p *Pipeline) commit(ctx context.Context, q domain.RawEvent) {
	if q.Commit == nil {
		return
	}
	if err := q.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", q.Topic, "partition", q.Partition, "offset", q.Offset)
	}
}
