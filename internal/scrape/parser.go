package scrape

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mauv0809/twse-codes/internal/schema"
)

// fullWidthSpace separates symbol and name inside the first table cell.
const fullWidthSpace = "　"

var (
	// ErrTableNotFound reports a page without the expected listing table.
	ErrTableNotFound = errors.New("listing table not found")
	// ErrNoCategory reports a data row appearing before any section header.
	ErrNoCategory = errors.New("data row before any category header")
)

// ParsePage extracts listing records from one HTML page. The page must
// contain exactly one table carrying the h4 style marker; its first row is
// the column heading and is skipped.
//
// For the listed and OTC sources a single-cell row is a section header that
// sets the category of every data row after it; a multi-cell row is a data
// row and is an error while no category is active. The futures/index source
// has no headers: every row is a data row tagged INDEX.
func ParsePage(doc []byte, src Source) ([]schema.Record, error) {
	page, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parsing %s page: %w", src, err)
	}

	table := page.Find("table.h4").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("parsing %s page: %w", src, ErrTableNotFound)
	}

	var (
		records  []schema.Record
		current  schema.Category
		active   bool
		parseErr error
	)
	if src == SourceFuturesIndex {
		current = schema.CategoryIndex
		active = true
	}

	table.Find("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if i == 0 {
			return true
		}

		cells := cellTexts(tr)
		if len(cells) == 0 {
			return true
		}

		if src != SourceFuturesIndex && len(cells) == 1 {
			label := strings.TrimSpace(cells[0])
			category, ok := schema.CategoryByLabel(label)
			if !ok {
				parseErr = fmt.Errorf("parsing %s page row %d: %w: header %q", src, i, schema.ErrUnknownCategory, label)
				return false
			}
			current = category
			active = true
			return true
		}

		if !active {
			parseErr = fmt.Errorf("parsing %s page row %d: %w", src, i, ErrNoCategory)
			return false
		}

		records = append(records, recordFromCells(cells, current, src))
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return records, nil
}

// recordFromCells maps one data row onto the unified record shape. The first
// cell holds "symbol<U+3000>name"; the futures/index page lacks the
// listing-date and market-type columns, which stay empty.
func recordFromCells(cells []string, category schema.Category, src Source) schema.Record {
	symbol, name := splitSymbolName(cells[0])

	if src == SourceFuturesIndex {
		return schema.Record{
			Symbol:   symbol,
			Name:     name,
			Category: category,
			ISINCode: cell(cells, 1),
			Industry: cell(cells, 2),
			CFICode:  cell(cells, 3),
			Notes:    cell(cells, 4),
		}
	}

	// Listed/OTC symbols occasionally carry stray regular spaces.
	symbol = strings.ReplaceAll(symbol, " ", "")

	return schema.Record{
		Symbol:        symbol,
		Name:          name,
		Category:      category,
		ISINCode:      cell(cells, 1),
		DateOfListing: cell(cells, 2),
		MarketType:    cell(cells, 3),
		Industry:      cell(cells, 4),
		CFICode:       cell(cells, 5),
		Notes:         cell(cells, 6),
	}
}

func splitSymbolName(s string) (symbol, name string) {
	parts := strings.SplitN(s, fullWidthSpace, 2)
	symbol = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		name = strings.TrimSpace(parts[1])
	}
	return symbol, name
}

func cellTexts(tr *goquery.Selection) []string {
	tds := tr.Find("td")
	out := make([]string, 0, tds.Length())
	tds.Each(func(_ int, td *goquery.Selection) {
		out = append(out, strings.TrimSpace(td.Text()))
	})
	return out
}

// cell returns the i-th field or "" when the row is short.
func cell(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}
