package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/JakeFAU/listing-harvester/internal/metrics"
)

// HeadlessFetcher renders script-driven pages with headless Chrome. The
// browser session is expensive, so it is acquired lazily on first use and
// memoized for the lifetime of the owning adapter. It must not be shared
// across adapters.
type HeadlessFetcher struct {
	cfg    Config
	logger *zap.Logger

	mu            sync.Mutex
	started       bool
	startErr      error
	closed        bool
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// NewHeadlessFetcher builds a HeadlessFetcher without touching Chrome; the
// executable is only resolved when a rendered fetch is first attempted.
func NewHeadlessFetcher(cfg Config, logger *zap.Logger) *HeadlessFetcher {
	return &HeadlessFetcher{cfg: cfg.withDefaults(), logger: logger}
}

// session lazily constructs the shared browser context. A construction
// failure is memoized and reported as ErrRenderUnavailable so the caller can
// fall back to a static fetch instead of retrying a missing executable.
func (f *HeadlessFetcher) session() (context.Context, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, fmt.Errorf("%w: fetcher closed", ErrRenderUnavailable)
	}
	if f.started {
		return f.browserCtx, f.startErr
	}
	f.started = true

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(f.cfg.UserAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		f.startErr = fmt.Errorf("%w: start chrome: %v", ErrRenderUnavailable, err)
		f.logger.Warn("headless session unavailable", zap.Error(err))
		return nil, f.startErr
	}

	f.browserCtx = browserCtx
	f.browserCancel = browserCancel
	f.allocCancel = allocCancel
	return f.browserCtx, nil
}

// Fetch navigates to url, waits up to the configured bound for waitSelector
// to appear, and returns whatever DOM is present. A selector wait timeout is
// not fatal; partial extraction downstream is the accepted degraded outcome.
func (f *HeadlessFetcher) Fetch(ctx context.Context, url, waitSelector string) (*Document, error) {
	sessionCtx, err := f.session()
	if err != nil {
		metrics.ObserveFetch("headless", "unavailable")
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(sessionCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, f.cfg.NavTimeout)
	defer cancelTask()

	stopForward := forwardCancel(ctx, cancelTask)
	defer stopForward()

	meta := newResponseMeta()
	chromedp.ListenTarget(taskCtx, meta.captureEvent)

	if err := chromedp.Run(taskCtx,
		network.Enable(),
		emulation.SetUserAgentOverride(f.cfg.UserAgent),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		metrics.ObserveFetch("headless", "error")
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}

	if waitSelector != "" {
		waitCtx, cancelWait := context.WithTimeout(taskCtx, f.cfg.SelectorWait)
		err := chromedp.Run(waitCtx, chromedp.WaitVisible(waitSelector, chromedp.ByQuery))
		cancelWait()
		if err != nil {
			if !errors.Is(err, context.DeadlineExceeded) {
				metrics.ObserveFetch("headless", "error")
				return nil, fmt.Errorf("wait for %q on %s: %w", waitSelector, url, err)
			}
			f.logger.Warn("selector wait timed out, proceeding with current DOM",
				zap.String("url", url),
				zap.String("selector", waitSelector),
			)
		}
	}

	var html string
	if err := chromedp.Run(taskCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		metrics.ObserveFetch("headless", "error")
		return nil, fmt.Errorf("snapshot %s: %w", url, err)
	}

	metrics.ObserveFetch("headless", "ok")
	return NewDocument(url, meta.status(), []byte(html), true)
}

// Close releases the browser session. It is safe to call when no session was
// ever acquired and safe to call more than once.
func (f *HeadlessFetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	if f.browserCancel != nil {
		f.browserCancel()
		f.browserCancel = nil
	}
	if f.allocCancel != nil {
		f.allocCancel()
		f.allocCancel = nil
	}
}

type responseMeta struct {
	once       sync.Once
	statusCode int
}

func newResponseMeta() *responseMeta {
	return &responseMeta{}
}

func (m *responseMeta) captureEvent(ev any) {
	resp, ok := ev.(*network.EventResponseReceived)
	if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
		return
	}
	m.once.Do(func() {
		m.statusCode = int(resp.Response.Status)
	})
}

func (m *responseMeta) status() int {
	if m.statusCode == 0 {
		return http.StatusOK
	}
	return m.statusCode
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
