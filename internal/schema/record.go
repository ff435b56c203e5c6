package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Record is one normalized security or index listing. All fields keep the
// string form published by the exchange; DateOfListing stays YYYYMMDD and is
// empty for index rows.
type Record struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Category      Category `json:"category"`
	ISINCode      string   `json:"isin_code"`
	DateOfListing string   `json:"date_of_listing"`
	MarketType    string   `json:"market_type"`
	Industry      string   `json:"industry"`
	CFICode       string   `json:"cfi_code"`
	Notes         string   `json:"notes"`
}

// Row serializes the record in the fixed column order.
func (r Record) Row() []string {
	return []string{
		r.Symbol,
		r.Name,
		string(r.Category),
		r.ISINCode,
		r.DateOfListing,
		r.MarketType,
		r.Industry,
		r.CFICode,
		r.Notes,
	}
}

// RecordFromRow rebuilds a record from a serialized row.
func RecordFromRow(row []string) (Record, error) {
	if len(row) != len(columns) {
		return Record{}, fmt.Errorf("row has %d fields, want %d", len(row), len(columns))
	}
	category, err := ParseCategory(row[2])
	if err != nil {
		return Record{}, err
	}
	return Record{
		Symbol:        row[0],
		Name:          row[1],
		Category:      category,
		ISINCode:      row[3],
		DateOfListing: row[4],
		MarketType:    row[5],
		Industry:      row[6],
		CFICode:       row[7],
		Notes:         row[8],
	}, nil
}

// SortBySymbol orders records ascending by symbol, in place.
func SortBySymbol(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Symbol < records[j].Symbol
	})
}

// Symbols projects the symbol column.
func Symbols(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Symbol
	}
	return out
}

// Filter selects either every category or exactly one. The zero value is not
// valid; use All or Only.
type Filter struct {
	category Category
	all      bool
}

// All matches every category.
func All() Filter {
	return Filter{all: true}
}

// Only matches a single category.
func Only(c Category) Filter {
	return Filter{category: c}
}

// ParseFilter resolves a query parameter into a Filter. Empty input and "all"
// mean every category; anything else must be a known category identifier.
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return All(), nil
	}
	c, err := ParseCategory(s)
	if err != nil {
		return Filter{}, err
	}
	return Only(c), nil
}

// IsAll reports whether the filter matches every category.
func (f Filter) IsAll() bool {
	return f.all
}

// Category returns the selected category when the filter is specific.
func (f Filter) Category() (Category, bool) {
	if f.all {
		return "", false
	}
	return f.category, true
}

// Matches reports whether a record with the given category passes the filter.
func (f Filter) Matches(c Category) bool {
	return f.all || f.category == c
}

// Key names the filter for cache files and logs: "all" or the category
// identifier.
func (f Filter) Key() string {
	if f.all {
		return "all"
	}
	return string(f.category)
}

func (f Filter) String() string {
	return f.Key()
}
