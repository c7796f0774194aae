// Package fetch provides URL fetching and HTML-to-page processing.
// A fetched page is reduced to its title, visible body text and raw links.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html/charset"

	"github.com/jonathan/cover-letter-generator/internal/observability"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent identifies requests as a desktop Chrome browser. Portfolio
// hosts commonly reject default client identifiers.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36"

// Result holds the raw content from a URL fetch. HTML is always UTF-8.
type Result struct {
	URL         string
	// FinalURL is the URL that answered after following redirects.
	FinalURL    string
	HTML        string
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string

	// UseBrowser enables headless-browser rendering for pages whose HTTP
	// response yields less than MinContentLength characters of text.
	UseBrowser     bool
	BrowserTimeout time.Duration
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:        DefaultTimeout,
		UserAgent:      DefaultUserAgent,
		BrowserTimeout: DefaultBrowserTimeout,
	}
}

// URL retrieves HTML content from a URL.
// Non-2xx responses are not errors: the body is returned as-is with its status code.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	return get(ctx, &http.Client{Timeout: opts.Timeout}, urlStr, opts)
}

func get(ctx context.Context, client *http.Client, urlStr string, opts *Options) (*Result, error) {
	// Validate URL
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	contentType := resp.Header.Get("Content-Type")
	body, err := charset.NewReader(resp.Body, contentType)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to decode response body",
			Cause:   err,
		}
	}

	bodyBytes, err := io.ReadAll(body)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	finalURL := urlStr
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Result{
		URL:         urlStr,
		FinalURL:    finalURL,
		HTML:        string(bodyBytes),
		ContentType: contentType,
		StatusCode:  resp.StatusCode,
	}, nil
}

// Fetcher retrieves and parses pages. It keeps no state between calls apart
// from the shared HTTP client, so repeated fetches of a URL hit the network.
type Fetcher struct {
	client  *http.Client
	opts    *Options
	logger  *log.Logger
	metrics *observability.Metrics
}

// NewFetcher creates a Fetcher. Nil options use DefaultOptions; logger and
// metrics may be nil.
func NewFetcher(opts *Options, logger *log.Logger, metrics *observability.Metrics) *Fetcher {
	o := DefaultOptions()
	if opts != nil {
		copied := *opts
		o = &copied
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.BrowserTimeout == 0 {
		o.BrowserTimeout = DefaultBrowserTimeout
	}
	return &Fetcher{
		client:  &http.Client{Timeout: o.Timeout},
		opts:    o,
		logger:  observability.LoggerOrDiscard(logger),
		metrics: metrics,
	}
}

// Fetch downloads urlStr and parses it into a Page.
func (f *Fetcher) Fetch(ctx context.Context, urlStr string) (*Page, error) {
	page, err := f.fetch(ctx, urlStr)
	if err != nil {
		f.metrics.ObservePageFetch(observability.OutcomeFailure)
		return nil, err
	}
	f.metrics.ObservePageFetch(observability.OutcomeSuccess)
	return page, nil
}

func (f *Fetcher) fetch(ctx context.Context, urlStr string) (*Page, error) {
	start := time.Now()
	result, err := get(ctx, f.client, urlStr, f.opts)
	if err != nil {
		return nil, err
	}

	page, err := ParsePage(urlStr, result.HTML)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}
	page.StatusCode = result.StatusCode
	page.BaseURL = result.FinalURL

	if result.StatusCode < 200 || result.StatusCode > 299 {
		f.logger.Warn("non-success status, parsing body anyway", "url", urlStr, "status", result.StatusCode)
	}

	if f.opts.UseBrowser && ShouldUseBrowser(page.BodyText) {
		page = f.render(ctx, page)
	}

	f.logger.Debug("fetched page",
		"url", urlStr,
		"status", page.StatusCode,
		"title", page.Title,
		"text_chars", len(page.BodyText),
		"links", len(page.Links),
		"elapsed", time.Since(start))
	return page, nil
}

// render re-extracts page from headless-browser output. The HTTP page is kept
// when rendering fails.
func (f *Fetcher) render(ctx context.Context, page *Page) *Page {
	f.logger.Debug("content too short, rendering with browser",
		"url", page.URL, "text_chars", len(page.BodyText), "min", MinContentLength)

	html, err := WithBrowser(ctx, page.URL, f.opts.BrowserTimeout, f.logger)
	if err != nil {
		f.logger.Warn("browser rendering failed, using HTTP content", "url", page.URL, "err", err)
		return page
	}

	rendered, err := ParsePage(page.URL, html)
	if err != nil {
		f.logger.Warn("browser content extraction failed", "url", page.URL, "err", err)
		return page
	}
	rendered.StatusCode = page.StatusCode
	rendered.BaseURL = page.BaseURL
	return rendered
}

// IsTimeout reports whether err was caused by a deadline or client timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}
