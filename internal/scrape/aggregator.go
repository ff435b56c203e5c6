package scrape

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/mauv0809/twse-codes/internal/schema"
)

// Fetcher retrieves the raw HTML of one listing page.
type Fetcher interface {
	FetchPage(ctx context.Context, src Source) ([]byte, error)
}

// Aggregator fetches and parses all three listing endpoints and merges the
// results into one unified record set.
type Aggregator struct {
	fetcher Fetcher
	log     *zap.SugaredLogger
}

// NewAggregator creates an aggregator on top of a page fetcher.
func NewAggregator(fetcher Fetcher, log *zap.SugaredLogger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		log:     log,
	}
}

// FetchAll fetches the endpoints sequentially in fixed order and returns the
// merged, symbol-sorted record set. A failure on any endpoint fails the whole
// fetch: a gapped dataset is worse than no dataset.
func (a *Aggregator) FetchAll(ctx context.Context) ([]schema.Record, error) {
	var all []schema.Record
	for _, src := range Sources() {
		body, err := a.fetcher.FetchPage(ctx, src)
		if err != nil {
			return nil, err
		}

		records, err := ParsePage(body, src)
		if err != nil {
			return nil, err
		}

		a.log.Infow("parsed listing page", "source", src.String(), "records", len(records))
		all = append(all, records...)
	}

	merged := Merge(all)
	if len(merged) < len(all) {
		a.log.Warnw("duplicate symbols across sources", "dropped", len(all)-len(merged))
	}
	return merged, nil
}

// Merge deduplicates records by symbol, later entries winning, and returns
// them sorted ascending by symbol. Symbols are disjoint across sources in
// practice; last-write-wins keeps a refresh from failing if they ever are not.
func Merge(records []schema.Record) []schema.Record {
	bySymbol := make(map[string]schema.Record, len(records))
	for _, r := range records {
		bySymbol[r.Symbol] = r
	}

	symbols := make([]string, 0, len(bySymbol))
	for s := range bySymbol {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	merged := make([]schema.Record, 0, len(symbols))
	for _, s := range symbols {
		merged = append(merged, bySymbol[s])
	}
	return merged
}

var _ Fetcher = (*Client)(nil)
