package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mauv0809/twse-codes/internal/schema"
)

type stubRepo struct {
	records []schema.Record
	err     error
	calls   int
}

func (s *stubRepo) CodesByCategory(_ context.Context, filter schema.Filter) ([]schema.Record, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var out []schema.Record
	for _, r := range s.records {
		if filter.Matches(r.Category) {
			out = append(out, r)
		}
	}
	return out, nil
}

type stubRefresher struct {
	records []schema.Record
	err     error
	calls   int
}

func (s *stubRefresher) Refresh(context.Context) ([]schema.Record, error) {
	s.calls++
	return s.records, s.err
}

func stockRecord() schema.Record {
	return schema.Record{
		Symbol:        "2330",
		Name:          "台積電",
		Category:      schema.CategoryStock,
		ISINCode:      "TW0002330008",
		DateOfListing: "19940905",
		MarketType:    "上市",
		Industry:      "半導體業",
		CFICode:       "ESVUFR",
	}
}

func etfRecord() schema.Record {
	return schema.Record{
		Symbol:        "0050",
		Name:          "元大台灣50",
		Category:      schema.CategoryETF,
		ISINCode:      "TW0000050004",
		DateOfListing: "20030630",
		MarketType:    "上市",
		CFICode:       "CEOGEU",
	}
}

func newTestStore(t *testing.T, repo Repository, refresher Refresher) (*TieredStore, string, string) {
	t.Helper()
	cacheDir := t.TempDir()
	fallbackPath := filepath.Join(t.TempDir(), "codes.csv")
	s := New(cacheDir, fallbackPath, repo, refresher, zap.NewNop().Sugar())
	return s, cacheDir, fallbackPath
}

func TestQueryCacheHitSkipsLowerTiers(t *testing.T) {
	repo := &stubRepo{records: []schema.Record{stockRecord()}}
	refresher := &stubRefresher{}
	s, cacheDir, _ := newTestStore(t, repo, refresher)

	cached := []schema.Record{etfRecord()}
	require.NoError(t, WriteCSVFile(filepath.Join(cacheDir, "etf.csv"), cached))

	records, err := s.Query(context.Background(), schema.Only(schema.CategoryETF))
	require.NoError(t, err)
	assert.Equal(t, cached, records)

	// The persisted store was never consulted.
	assert.Zero(t, repo.calls)
	assert.Zero(t, refresher.calls)
}

func TestQueryDatabaseHitWritesThroughToCache(t *testing.T) {
	repo := &stubRepo{records: []schema.Record{stockRecord(), etfRecord()}}
	refresher := &stubRefresher{}
	s, cacheDir, _ := newTestStore(t, repo, refresher)

	records, err := s.Query(context.Background(), schema.Only(schema.CategoryStock))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2330", records[0].Symbol)

	cached, err := ReadCSVFile(filepath.Join(cacheDir, "stock.csv"))
	require.NoError(t, err)
	assert.Equal(t, records, cached)

	// A repeat query is now served from the cache tier.
	repo.calls = 0
	again, err := s.Query(context.Background(), schema.Only(schema.CategoryStock))
	require.NoError(t, err)
	assert.Equal(t, records, again)
	assert.Zero(t, repo.calls)
}

func TestQueryFallsThroughUnreachableDatabaseToCSV(t *testing.T) {
	repo := &stubRepo{err: errors.New("connection refused")}
	refresher := &stubRefresher{}
	s, cacheDir, fallbackPath := newTestStore(t, repo, refresher)

	require.NoError(t, WriteCSVFile(fallbackPath, []schema.Record{etfRecord(), stockRecord()}))

	records, err := s.Query(context.Background(), schema.Only(schema.CategoryStock))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2330", records[0].Symbol)
	assert.Equal(t, 1, repo.calls)
	assert.Zero(t, refresher.calls)

	// Write-through repopulated the cache with the same content.
	cached, err := ReadCSVFile(filepath.Join(cacheDir, "stock.csv"))
	require.NoError(t, err)
	assert.Equal(t, records, cached)
}

func TestQueryFallbackResultIsSorted(t *testing.T) {
	s, _, fallbackPath := newTestStore(t, nil, &stubRefresher{})

	a := stockRecord()
	b := stockRecord()
	b.Symbol = "1101"
	b.Name = "台泥"
	require.NoError(t, WriteCSVFile(fallbackPath, []schema.Record{a, b}))

	records, err := s.Query(context.Background(), schema.All())
	require.NoError(t, err)
	assert.Equal(t, []string{"1101", "2330"}, schema.Symbols(records))
}

func TestQueryForcedRefreshAnswersAndCaches(t *testing.T) {
	refresher := &stubRefresher{records: []schema.Record{etfRecord(), stockRecord()}}
	s, cacheDir, _ := newTestStore(t, nil, refresher)

	records, err := s.Query(context.Background(), schema.Only(schema.CategoryETF))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "0050", records[0].Symbol)
	assert.Equal(t, 1, refresher.calls)

	cached, err := ReadCSVFile(filepath.Join(cacheDir, "etf.csv"))
	require.NoError(t, err)
	assert.Equal(t, records, cached)
}

func TestQueryRefreshPersistFailureStillAnswers(t *testing.T) {
	refresher := &stubRefresher{
		records: []schema.Record{stockRecord()},
		err:     errors.New("persisted write affected no rows"),
	}
	s, _, _ := newTestStore(t, nil, refresher)

	records, err := s.Query(context.Background(), schema.Only(schema.CategoryStock))
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestQueryTotalFailure(t *testing.T) {
	repo := &stubRepo{}
	refresher := &stubRefresher{}
	s, cacheDir, _ := newTestStore(t, repo, refresher)

	_, err := s.Query(context.Background(), schema.Only(schema.CategoryStock))
	assert.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, 1, refresher.calls)

	// No partial cache files were written.
	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestQueryRefreshFetchFailurePropagates(t *testing.T) {
	fetchErr := errors.New("fetching listed page: connection reset")
	refresher := &stubRefresher{err: fetchErr}
	s, _, _ := newTestStore(t, nil, refresher)

	_, err := s.Query(context.Background(), schema.All())
	assert.ErrorIs(t, err, fetchErr)
}

func TestQueryAllUsesOwnCacheFile(t *testing.T) {
	repo := &stubRepo{records: []schema.Record{stockRecord(), etfRecord()}}
	s, cacheDir, _ := newTestStore(t, repo, &stubRefresher{})

	records, err := s.Query(context.Background(), schema.All())
	require.NoError(t, err)
	assert.Len(t, records, 2)

	cached, err := ReadCSVFile(filepath.Join(cacheDir, "all.csv"))
	require.NoError(t, err)
	assert.Equal(t, records, cached)
}
