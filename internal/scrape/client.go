package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the production ISIN lookup host.
const DefaultBaseURL = "https://isin.twse.com.tw"

const defaultTimeout = 60 * time.Second

// ErrBadStatus reports a non-200 response from a listing endpoint.
var ErrBadStatus = errors.New("unexpected response status")

// Client fetches listing pages from the ISIN lookup service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// NewClient creates a client against the given base URL. An empty baseURL
// selects the production host; a zero timeout selects the default.
func NewClient(baseURL string, timeout time.Duration, log *zap.SugaredLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// FetchPage performs one blocking GET against a listing endpoint and returns
// the raw HTML body. Any transport failure or non-200 status is an error;
// there is no retry.
func (c *Client) FetchPage(ctx context.Context, src Source) ([]byte, error) {
	url := c.baseURL + src.Path()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", src, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s page: %w", src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s page: %w: %d", src, ErrBadStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s page: %w", src, err)
	}

	c.log.Debugw("fetched listing page",
		"source", src.String(),
		"bytes", len(body),
		"elapsed", time.Since(start).String(),
	)
	return body, nil
}
