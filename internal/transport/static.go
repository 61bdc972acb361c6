package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/JakeFAU/listing-harvester/internal/metrics"
)

// identifyingHeaders is the fixed header set sent with every static fetch.
var identifyingHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
}

// StaticFetcher issues rate-limited synchronous HTTP fetches via Colly.
type StaticFetcher struct {
	cfg     Config
	logger  *zap.Logger
	limiter *rate.Limiter
	base    *colly.Collector
}

// NewStaticFetcher builds a StaticFetcher. The limiter starts empty so the
// very first fetch pays the politeness delay too.
func NewStaticFetcher(cfg Config, logger *zap.Logger) *StaticFetcher {
	cfg = cfg.withDefaults()

	limiter := rate.NewLimiter(rate.Every(cfg.Delay), 1)
	limiter.Allow()

	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())

	return &StaticFetcher{
		cfg:     cfg,
		logger:  logger,
		limiter: limiter,
		base:    c,
	}
}

// Fetch performs a single GET and returns the parsed document. Transport-level
// failures (timeout, connection error, non-2xx status) come back as errors,
// never panics.
func (f *StaticFetcher) Fetch(ctx context.Context, url string) (*Document, error) {
	waitStart := time.Now()
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("politeness wait: %w", err)
	}
	metrics.ObserveFetchDelay(time.Since(waitStart))

	var (
		statusCode int
		body       []byte
		fetchErr   error
	)

	collector := f.base.Clone()
	collector.UserAgent = f.cfg.UserAgent
	collector.SetRequestTimeout(f.cfg.RequestTimeout)

	collector.OnRequest(func(r *colly.Request) {
		for k, v := range identifyingHeaders {
			r.Headers.Set(k, v)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			statusCode = r.StatusCode
		}
		fetchErr = err
	})

	if err := f.visit(ctx, collector, url); err != nil {
		metrics.ObserveFetch("static", "error")
		return nil, err
	}
	if fetchErr != nil {
		metrics.ObserveFetch("static", "error")
		return nil, fmt.Errorf("fetch %s: %w", url, fetchErr)
	}
	if statusCode < 200 || statusCode > 299 {
		metrics.ObserveFetch("static", "error")
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, statusCode)
	}

	metrics.ObserveFetch("static", "ok")
	return NewDocument(url, statusCode, body, false)
}

func (f *StaticFetcher) visit(ctx context.Context, collector *colly.Collector, url string) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("visit %s: %w", url, err)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
