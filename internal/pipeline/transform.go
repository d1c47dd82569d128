package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/climate-graph/internal/domain"
	"github.com/couchcryptid/climate-graph/internal/observability"
)

// ErrPlaceNotFound is returned when a queried place has no article.
var ErrPlaceNotFound = errors.New("place not found")

// ClimateTransformer implements Transformer by extracting the climate record
// of the queried place.
type ClimateTransformer struct {
	source  domain.ClimateSource
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewTransformer creates a ClimateTransformer backed by source.
func NewTransformer(source domain.ClimateSource, metrics *observability.Metrics, logger *slog.Logger) *ClimateTransformer {
	return &ClimateTransformer{
		source:  source,
		metrics: metrics,
		logger:  logger,
	}
}

func (t *ClimateTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.Record, error) {
	place, err := domain.ParsePlaceQuery(raw)
	if err != nil {
		return domain.Record{}, err
	}

	rec := t.source.Extract(ctx, place)
	switch {
	case rec.PageError:
		t.metrics.RecordsExtracted.WithLabelValues("not_found").Inc()
		return domain.Record{}, fmt.Errorf("%w: %s", ErrPlaceNotFound, place)
	case !domain.HasPrintableData(rec):
		t.metrics.RecordsExtracted.WithLabelValues("no_data").Inc()
		t.logger.Debug("no climate data for place", "place", place, "title", rec.Title)
	default:
		t.metrics.RecordsExtracted.WithLabelValues("data").Inc()
	}
	return rec, nil
}
