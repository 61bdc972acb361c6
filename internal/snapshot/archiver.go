package snapshot

import (
	"bytes"
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/listing-harvester/internal/adapters"
	"github.com/JakeFAU/listing-harvester/internal/transport"
)

const snapshotContentType = "text/html; charset=utf-8"

// Archiver decorates a transport so every successfully fetched document is
// copied to the sink. Archiving is best effort: sink failures are logged and
// the document is returned unchanged.
type Archiver struct {
	next   adapters.Transport
	sink   Sink
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// Wrap returns t decorated with snapshot archiving to sink.
func Wrap(t adapters.Transport, sink Sink, prefix string, logger *zap.Logger) *Archiver {
	return &Archiver{
		next:   t,
		sink:   sink,
		prefix: prefix,
		logger: logger,
		now:    time.Now,
	}
}

// FetchStatic fetches via the wrapped transport and archives the body.
func (a *Archiver) FetchStatic(ctx context.Context, url string) (*transport.Document, error) {
	doc, err := a.next.FetchStatic(ctx, url)
	if err != nil {
		return nil, err
	}
	a.archive(ctx, url, doc.Body)
	return doc, nil
}

// FetchRendered fetches via the wrapped transport and archives the rendered DOM.
func (a *Archiver) FetchRendered(ctx context.Context, url, waitSelector string) (*transport.Document, error) {
	doc, err := a.next.FetchRendered(ctx, url, waitSelector)
	if err != nil {
		return nil, err
	}
	a.archive(ctx, url, doc.Body)
	return doc, nil
}

// Close releases the wrapped transport.
func (a *Archiver) Close() {
	a.next.Close()
}

func (a *Archiver) archive(ctx context.Context, url string, body []byte) {
	key := objectKey(a.prefix, url, a.now())
	uri, err := a.sink.Put(ctx, key, snapshotContentType, bytes.NewReader(body))
	if err != nil {
		a.logger.Warn("snapshot archive failed", zap.String("url", url), zap.Error(err))
		return
	}
	a.logger.Debug("page archived", zap.String("url", url), zap.String("uri", uri))
}
