// Package fetcher retrieves markup from remote URLs for conversion.
package fetcher

import (
	"context"
	"errors"
	"time"
)

// Fetcher abstracts page fetching strategies.
type Fetcher interface {
	// Fetch retrieves the raw body of a URL.
	Fetch(ctx context.Context, url string) (Content, error)

	// Type returns a string identifying the fetcher type.
	Type() string
}

// Content represents a fetched page.
type Content struct {
	URL         string
	Body        []byte
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}

var (
	// ErrNotHTML is returned when the response is not an HTML document.
	ErrNotHTML = errors.New("response is not HTML")

	// ErrEmptyBody is returned when the response has no content.
	ErrEmptyBody = errors.New("empty response body")
)
