// Package store resolves listing queries through tiered storage: disk cache,
// persisted store, bundled CSV fallback, then a forced re-download.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mauv0809/twse-codes/internal/schema"
)

// ErrNoData reports that every tier, including a forced refresh, came back
// empty. Data is definitively unavailable for the queried filter.
var ErrNoData = errors.New("no listing data available from any tier")

// Repository is the persisted-store tier.
type Repository interface {
	CodesByCategory(ctx context.Context, filter schema.Filter) ([]schema.Record, error)
}

// Refresher performs a full fetch-and-persist cycle, returning the fetched
// set even when persisting it failed.
type Refresher interface {
	Refresh(ctx context.Context) ([]schema.Record, error)
}

// TierStatus is the outcome of consulting one tier.
type TierStatus int

const (
	// TierHit means the tier produced a non-empty result.
	TierHit TierStatus = iota
	// TierMiss means the tier had nothing for this filter.
	TierMiss
	// TierError means the tier failed; the walk continues with a warning.
	TierError
)

// TierResult carries a tier's outcome, making the fallthrough policy
// explicit rather than driven by swallowed errors.
type TierResult struct {
	Records []schema.Record
	Status  TierStatus
	Err     error
}

func hit(records []schema.Record) TierResult {
	return TierResult{Records: records, Status: TierHit}
}

func miss() TierResult {
	return TierResult{Status: TierMiss}
}

func failed(err error) TierResult {
	return TierResult{Status: TierError, Err: err}
}

// TieredStore answers listing queries by walking the tiers in order. The
// repository and refresher are injected; a nil repository means the process
// runs without a database and that tier always misses.
type TieredStore struct {
	cacheDir     string
	fallbackPath string
	repo         Repository
	refresher    Refresher
	log          *zap.SugaredLogger
}

// New creates a tiered store. cacheDir holds one CSV file per queried filter;
// fallbackPath is the bundled CSV snapshot.
func New(cacheDir, fallbackPath string, repo Repository, refresher Refresher, log *zap.SugaredLogger) *TieredStore {
	return &TieredStore{
		cacheDir:     cacheDir,
		fallbackPath: fallbackPath,
		repo:         repo,
		refresher:    refresher,
		log:          log,
	}
}

// Query resolves a filter against the tiers in order. A non-empty result
// found below the cache tier is written through to the cache, so repeat
// queries are served from disk. When every tier including the forced refresh
// is empty, Query fails with ErrNoData and writes nothing.
func (s *TieredStore) Query(ctx context.Context, filter schema.Filter) ([]schema.Record, error) {
	tiers := []struct {
		name    string
		consult func(context.Context, schema.Filter) TierResult
	}{
		{"cache", s.cacheTier},
		{"database", s.databaseTier},
		{"fallback_csv", s.fallbackTier},
	}

	for i, tier := range tiers {
		res := tier.consult(ctx, filter)
		switch res.Status {
		case TierHit:
			s.log.Debugw("query resolved", "tier", tier.name, "filter", filter.Key(), "records", len(res.Records))
			if i > 0 {
				s.writeThrough(filter, res.Records)
			}
			return res.Records, nil
		case TierError:
			s.log.Warnw("tier failed, falling through", "tier", tier.name, "filter", filter.Key(), "error", res.Err)
		}
	}

	return s.refreshTier(ctx, filter)
}

func (s *TieredStore) cacheTier(_ context.Context, filter schema.Filter) TierResult {
	path := s.cachePath(filter)
	records, err := ReadCSVFile(path)
	if os.IsNotExist(err) {
		return miss()
	}
	if err != nil {
		return failed(err)
	}
	if len(records) == 0 {
		return miss()
	}
	// Trusted as-is until invalidated; no freshness check.
	return hit(records)
}

func (s *TieredStore) databaseTier(ctx context.Context, filter schema.Filter) TierResult {
	if s.repo == nil {
		return miss()
	}
	records, err := s.repo.CodesByCategory(ctx, filter)
	if err != nil {
		return failed(err)
	}
	if len(records) == 0 {
		return miss()
	}
	return hit(records)
}

func (s *TieredStore) fallbackTier(_ context.Context, filter schema.Filter) TierResult {
	all, err := ReadCSVFile(s.fallbackPath)
	if os.IsNotExist(err) {
		return miss()
	}
	if err != nil {
		return failed(err)
	}

	records := filterRecords(all, filter)
	if len(records) == 0 {
		return miss()
	}
	schema.SortBySymbol(records)
	return hit(records)
}

// refreshTier is the last resort: force a full download-and-persist cycle and
// answer from its output.
func (s *TieredStore) refreshTier(ctx context.Context, filter schema.Filter) ([]schema.Record, error) {
	s.log.Infow("all tiers empty, forcing refresh", "filter", filter.Key())

	records, err := s.refresher.Refresh(ctx)
	if err != nil {
		if len(records) == 0 {
			return nil, fmt.Errorf("forced refresh: %w", err)
		}
		// Fetch succeeded but persisting did not; the data is still usable.
		s.log.Warnw("refresh fetched data but persisting failed", "error", err)
	}

	matched := filterRecords(records, filter)
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, filter.Key())
	}

	s.writeThrough(filter, matched)
	return matched, nil
}

func (s *TieredStore) writeThrough(filter schema.Filter, records []schema.Record) {
	path := s.cachePath(filter)
	if err := WriteCSVFile(path, records); err != nil {
		s.log.Warnw("cache write-through failed", "path", path, "error", err)
	}
}

func (s *TieredStore) cachePath(filter schema.Filter) string {
	return filepath.Join(s.cacheDir, filter.Key()+".csv")
}

func filterRecords(records []schema.Record, filter schema.Filter) []schema.Record {
	if filter.IsAll() {
		return records
	}
	var out []schema.Record
	for _, r := range records {
		if filter.Matches(r.Category) {
			out = append(out, r)
		}
	}
	return out
}
