// Package snapshot archives raw fetched pages so extraction bugs can be
// replayed against the exact HTML that produced them.
package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
)

// Sink persists one named blob and returns its URI.
type Sink interface {
	Put(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// objectKey derives a stable archive path for a fetched URL: one object per
// URL per day.
func objectKey(prefix, url string, now time.Time) string {
	sum := sha256.Sum256([]byte(url))
	key := fmt.Sprintf("%s/%s.html", now.UTC().Format("2006-01-02"), hex.EncodeToString(sum[:8]))
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key
}
