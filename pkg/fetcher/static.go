package fetcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/semantify/internal/logger"
)

// StaticConfig holds configuration for the static fetcher.
type StaticConfig struct {
	UserAgent string
	Timeout   time.Duration

	// MaxBodySize limits the response size in bytes. Zero means colly's default.
	MaxBodySize int
}

const defaultUserAgent = "semantify/1.0 (+https://github.com/jmylchreest/semantify)"

// DefaultStaticConfig returns sensible defaults.
func DefaultStaticConfig() StaticConfig {
	return StaticConfig{
		UserAgent: defaultUserAgent,
		Timeout:   30 * time.Second,
	}
}

// StaticFetcher uses Colly for plain HTTP fetching.
type StaticFetcher struct {
	config StaticConfig
}

// NewStatic creates a new static fetcher.
func NewStatic(cfg StaticConfig) *StaticFetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultStaticConfig().Timeout
	}
	return &StaticFetcher{config: cfg}
}

// Fetch retrieves the page body. Bodies whose Content-Type declares a
// charset are transcoded to UTF-8 by colly, so the returned ContentType
// then carries charset=utf-8.
func (f *StaticFetcher) Fetch(ctx context.Context, targetURL string) (Content, error) {
	logger.Debug("static fetch starting", "url", targetURL)

	result := Content{
		URL:       targetURL,
		FetchedAt: time.Now(),
	}

	c := colly.NewCollector(
		colly.UserAgent(f.config.UserAgent),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(f.config.Timeout)
	if f.config.MaxBodySize > 0 {
		c.MaxBodySize = f.config.MaxBodySize
	}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml")
	})

	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		result.StatusCode = r.StatusCode
		result.Body = r.Body
		result.ContentType = r.Headers.Get("Content-Type")
		if strings.Contains(strings.ToLower(result.ContentType), "charset") {
			mediaType, _, _ := strings.Cut(result.ContentType, ";")
			result.ContentType = strings.TrimSpace(mediaType) + "; charset=utf-8"
		}
		logger.Debug("static fetch response received",
			"status", r.StatusCode,
			"content_type", result.ContentType,
			"body_size", len(r.Body))
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			result.StatusCode = r.StatusCode
		}
		fetchErr = fmt.Errorf("fetch error: %w", err)
	})

	if err := c.Visit(targetURL); err != nil {
		return result, fmt.Errorf("failed to visit %s: %w", targetURL, err)
	}
	if fetchErr != nil {
		return result, fetchErr
	}

	if len(result.Body) == 0 {
		return result, ErrEmptyBody
	}
	if !isHTML(result.ContentType) {
		return result, fmt.Errorf("%w: %s", ErrNotHTML, result.ContentType)
	}

	logger.Debug("static fetch complete", "url", targetURL, "bytes", len(result.Body))
	return result, nil
}

// Type returns the fetcher type.
func (f *StaticFetcher) Type() string {
	return "static"
}

// isHTML accepts HTML media types, and a missing Content-Type.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}
