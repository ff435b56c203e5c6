package scrape

// Source identifies one of the three ISIN listing endpoints.
type Source int

const (
	// SourceListed is the exchange-listed securities page (strMode=2).
	SourceListed Source = iota
	// SourceOTC is the over-the-counter securities page (strMode=4).
	SourceOTC
	// SourceFuturesIndex is the futures/index page (strMode=11). It has no
	// section headers and lacks the listing-date and market-type columns.
	SourceFuturesIndex
)

// Sources returns the endpoints in fetch order.
func Sources() []Source {
	return []Source{SourceListed, SourceOTC, SourceFuturesIndex}
}

func (s Source) String() string {
	switch s {
	case SourceListed:
		return "listed"
	case SourceOTC:
		return "otc"
	case SourceFuturesIndex:
		return "futures_index"
	}
	return "unknown"
}

// Path returns the request path of the endpoint relative to the base URL.
func (s Source) Path() string {
	switch s {
	case SourceListed:
		return "/isin/C_public.jsp?strMode=2"
	case SourceOTC:
		return "/isin/C_public.jsp?strMode=4"
	case SourceFuturesIndex:
		return "/isin/C_public.jsp?strMode=11"
	}
	return ""
}
