package transport

import (
	"context"

	"go.uber.org/zap"
)

// Client bundles the two fetch strategies behind one surface. Each adapter
// owns its own Client so the underlying browser session is never shared.
type Client struct {
	static   *StaticFetcher
	headless *HeadlessFetcher
}

// NewClient builds a Client from one Config.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		static:   NewStaticFetcher(cfg, logger),
		headless: NewHeadlessFetcher(cfg, logger),
	}
}

// FetchStatic performs a rate-limited plain HTTP fetch.
func (c *Client) FetchStatic(ctx context.Context, url string) (*Document, error) {
	return c.static.Fetch(ctx, url)
}

// FetchRendered renders the page in headless Chrome, waiting for waitSelector.
// Returns ErrRenderUnavailable when no browser session can be constructed.
func (c *Client) FetchRendered(ctx context.Context, url, waitSelector string) (*Document, error) {
	return c.headless.Fetch(ctx, url, waitSelector)
}

// Close releases the headless session if one was acquired. Idempotent.
func (c *Client) Close() {
	c.headless.Close()
}
