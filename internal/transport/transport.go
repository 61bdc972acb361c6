// Package transport delivers rendered documents for listing pages, hiding
// whether rendering required a script engine.
package transport

import (
	"errors"
	"time"
)

// ErrRenderUnavailable indicates the headless engine could not be constructed.
// Callers are expected to fall back to FetchStatic.
var ErrRenderUnavailable = errors.New("headless renderer unavailable")

// Config controls fetch behavior for both strategies.
type Config struct {
	UserAgent string
	// Delay is the mandatory floor between consecutive static fetches
	// issued by the same client. Every call pays it; there is no burst
	// allowance.
	Delay          time.Duration
	RequestTimeout time.Duration
	// NavTimeout bounds a full headless navigation.
	NavTimeout time.Duration
	// SelectorWait bounds how long a rendered fetch waits for its marker
	// selector before proceeding with whatever content is present.
	SelectorWait time.Duration
}

func (c Config) withDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"
	}
	if c.Delay <= 0 {
		c.Delay = 2 * time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = 45 * time.Second
	}
	if c.SelectorWait <= 0 {
		c.SelectorWait = 20 * time.Second
	}
	return c
}
