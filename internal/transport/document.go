package transport

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// Document is a fetched page parsed into a queryable DOM. Body keeps the raw
// HTML for snapshot archiving.
type Document struct {
	URL          string
	StatusCode   int
	Body         []byte
	UsedHeadless bool

	root *goquery.Document
}

// NewDocument parses raw HTML into a Document.
func NewDocument(url string, statusCode int, body []byte, usedHeadless bool) (*Document, error) {
	root, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse document %s: %w", url, err)
	}
	return &Document{
		URL:          url,
		StatusCode:   statusCode,
		Body:         body,
		UsedHeadless: usedHeadless,
		root:         root,
	}, nil
}

// Find selects nodes matching the CSS selector.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.root.Find(selector)
}
