package store

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauv0809/twse-codes/internal/schema"
)

func sampleRecords() []schema.Record {
	return []schema.Record{
		{
			Symbol:        "0050",
			Name:          "元大台灣50",
			Category:      schema.CategoryETF,
			ISINCode:      "TW0000050004",
			DateOfListing: "20030630",
			MarketType:    "上市",
			CFICode:       "CEOGEU",
		},
		{
			Symbol:        "2330",
			Name:          "台積電",
			Category:      schema.CategoryStock,
			ISINCode:      "TW0002330008",
			DateOfListing: "19940905",
			MarketType:    "上市",
			Industry:      "半導體業",
			CFICode:       "ESVUFR",
			Notes:         "備註, 含逗號",
		},
		{
			Symbol:   "IX0001",
			Name:     "發行量加權股價指數",
			Category: schema.CategoryIndex,
			ISINCode: "TW0000IX0016",
			CFICode:  "EPNRND",
		},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	records := sampleRecords()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, records, back)
}

func TestCSVFileRoundTrip(t *testing.T) {
	records := sampleRecords()
	path := filepath.Join(t.TempDir(), "sub", "codes.csv")

	require.NoError(t, WriteCSVFile(path, records))

	back, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, records, back)

	// No temp file debris next to the target.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "codes.csv", entries[0].Name())
}

func TestReadCSVDropsRowsWithoutSymbol(t *testing.T) {
	raw := strings.Join([]string{
		"sc,cn,ca,ic,dl,ma,si,cc,no",
		"2330,台積電,stock,TW0002330008,19940905,上市,半導體業,ESVUFR,",
		",無代號,stock,,,,,,",
		"0050,元大台灣50,etf,TW0000050004,20030630,上市,,CEOGEU,",
	}, "\n")

	records, err := ReadCSV(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"2330", "0050"}, schema.Symbols(records))
}

func TestReadCSVRejectsUnknownCategory(t *testing.T) {
	raw := strings.Join([]string{
		"sc,cn,ca,ic,dl,ma,si,cc,no",
		"2330,台積電,bond,,,,,,",
	}, "\n")

	_, err := ReadCSV(strings.NewReader(raw))
	assert.ErrorIs(t, err, schema.ErrUnknownCategory)
}

func TestReadCSVBadHeader(t *testing.T) {
	raw := "symbol,name,category,a,b,c,d,e,f\n"
	_, err := ReadCSV(strings.NewReader(raw))
	assert.Error(t, err)
}

func TestReadCSVEmptyStream(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadCSVFileMissing(t *testing.T) {
	_, err := ReadCSVFile(filepath.Join(t.TempDir(), "absent.csv"))
	assert.True(t, os.IsNotExist(err))
}
