// Package download coordinates a forced refresh: fetch every listing page
// and replace the persisted store contents with the result.
package download

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mauv0809/twse-codes/internal/schema"
)

// ErrNothingPersisted reports a storage layer that accepted a non-empty
// record set but wrote zero rows.
var ErrNothingPersisted = errors.New("persisted write affected no rows")

// Aggregator produces the unified record set from the listing endpoints.
type Aggregator interface {
	FetchAll(ctx context.Context) ([]schema.Record, error)
}

// Writer replaces the persisted record set wholesale.
type Writer interface {
	ReplaceCodes(ctx context.Context, records []schema.Record) (int64, error)
}

// Orchestrator runs the fetch-and-persist cycle. A nil writer means the
// process has no database; refreshes still return data but persist nothing.
type Orchestrator struct {
	aggregator Aggregator
	writer     Writer
	log        *zap.SugaredLogger
}

// New creates an orchestrator.
func New(aggregator Aggregator, writer Writer, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{
		aggregator: aggregator,
		writer:     writer,
		log:        log,
	}
}

// Refresh fetches all sources and replaces the persisted store contents.
// The fetched record set is returned even when persisting it failed, so
// callers that need the data can proceed; the returned error then reports
// the persistence failure. A fetch failure returns no records.
func (o *Orchestrator) Refresh(ctx context.Context) ([]schema.Record, error) {
	start := time.Now()

	records, err := o.aggregator.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching listings: %w", err)
	}
	o.log.Infow("fetched unified record set", "records", len(records), "elapsed", time.Since(start).String())

	if o.writer == nil {
		o.log.Warnw("no database connection, refresh result not persisted")
		return records, nil
	}

	affected, err := o.writer.ReplaceCodes(ctx, records)
	if err != nil {
		return records, fmt.Errorf("persisting record set: %w", err)
	}
	if affected == 0 && len(records) > 0 {
		return records, fmt.Errorf("persisting %d records: %w", len(records), ErrNothingPersisted)
	}

	o.log.Infow("replaced persisted record set", "rows", affected, "elapsed", time.Since(start).String())
	return records, nil
}
