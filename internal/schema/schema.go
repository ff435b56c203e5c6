// Package schema defines the normalized security-listing record, the closed
// set of instrument categories published by the TWSE ISIN pages, and the
// fixed column layout shared by every serialized form (database row, CSV row,
// cache file).
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Category classifies a listing record. The value doubles as the lowercase
// identifier used for cache file names and query parameters.
type Category string

const (
	CategoryStock           Category = "stock"
	CategoryWarrant         Category = "warrant"
	CategorySpecialStock    Category = "special_stock"
	CategoryInnovationBoard Category = "innovation_board"
	CategoryETF             Category = "etf"
	CategoryETN             Category = "etn"
	CategoryTDR             Category = "tdr"
	CategoryAssetBased      Category = "asset_based_securities"
	CategoryREIT            Category = "reit"
	CategoryOTCWarrant      Category = "otc_warrant"
	// CategoryIndex is synthesized for the futures/index page, which carries
	// no section headers of its own.
	CategoryIndex Category = "index"
)

// ErrUnknownCategory reports a category name or section header outside the
// closed enumeration.
var ErrUnknownCategory = errors.New("unknown category")

// categoryLabels maps each category to the section-header string published on
// the listing pages. CategoryIndex never appears as a header but keeps a
// label for display purposes.
var categoryLabels = map[Category]string{
	CategoryStock:           "股票",
	CategoryWarrant:         "上市認購(售)權證",
	CategorySpecialStock:    "特別股",
	CategoryInnovationBoard: "創新板股票",
	CategoryETF:             "ETF",
	CategoryETN:             "ETN",
	CategoryTDR:             "臺灣存託憑證",
	CategoryAssetBased:      "受益證券-資產基礎證券",
	CategoryREIT:            "受益證券-不動產投資信託",
	CategoryOTCWarrant:      "上櫃認購(售)權證",
	CategoryIndex:           "指數",
}

var labelCategories = func() map[string]Category {
	m := make(map[string]Category, len(categoryLabels))
	for c, label := range categoryLabels {
		m[label] = c
	}
	return m
}()

// Categories returns every category in a fixed order.
func Categories() []Category {
	return []Category{
		CategoryStock,
		CategoryWarrant,
		CategorySpecialStock,
		CategoryInnovationBoard,
		CategoryETF,
		CategoryETN,
		CategoryTDR,
		CategoryAssetBased,
		CategoryREIT,
		CategoryOTCWarrant,
		CategoryIndex,
	}
}

// Label returns the published section-header string for the category.
func (c Category) Label() string {
	return categoryLabels[c]
}

// ParseCategory resolves a lowercase identifier to a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categoryLabels[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// CategoryByLabel resolves a published section-header string to a Category.
func CategoryByLabel(label string) (Category, bool) {
	c, ok := labelCategories[label]
	return c, ok
}

// Column pairs a short machine key (the persisted column name) with the long
// heading published on the source pages.
type Column struct {
	Key   string
	Label string
}

// columns is the fixed column order of every serialized record.
var columns = []Column{
	{Key: "sc", Label: "代號"},
	{Key: "cn", Label: "名稱"},
	{Key: "ca", Label: "類別"},
	{Key: "ic", Label: "國際證券辨識號碼(ISIN Code)"},
	{Key: "dl", Label: "上市日"},
	{Key: "ma", Label: "市場別"},
	{Key: "si", Label: "產業別"},
	{Key: "cc", Label: "CFICode"},
	{Key: "no", Label: "備註"},
}

// Columns returns the fixed column layout.
func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

// ColumnKeys returns the short column names in serialization order.
func ColumnKeys() []string {
	keys := make([]string, len(columns))
	for i, col := range columns {
		keys[i] = col.Key
	}
	return keys
}
