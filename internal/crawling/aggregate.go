package crawling

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cover-letter-generator/internal/fetch"
	"github.com/jonathan/cover-letter-generator/internal/observability"
	"github.com/jonathan/cover-letter-generator/internal/types"
)

const (
	// MaxContentLength is the hard cap, in characters, on aggregated content.
	MaxContentLength = 5000
	// DefaultConcurrency is the number of sub-pages fetched in parallel.
	DefaultConcurrency = 4
)

// ErrorKind classifies why a ranked link was skipped.
type ErrorKind string

// Error kinds reported on skipped sections.
const (
	ErrorKindInvalidURL ErrorKind = "invalid_url"
	ErrorKindTimeout    ErrorKind = "timeout"
	ErrorKindFetch      ErrorKind = "fetch"
	ErrorKindUnknown    ErrorKind = "unknown"
)

// PageFetcher retrieves and parses a single page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Page, error)
}

// Selector ranks the links on a page.
type Selector interface {
	SelectLinks(ctx context.Context, page *fetch.Page) ([]RankedLink, error)
}

// SectionResult is the outcome of fetching one ranked link. Exactly one of
// Page and Err is set.
type SectionResult struct {
	Link RankedLink
	// URL is the resolved absolute URL, empty when resolution failed.
	URL  string
	Page *fetch.Page
	Err  error
	Kind ErrorKind
}

// OK reports whether the section was fetched.
func (r SectionResult) OK() bool {
	return r.Err == nil && r.Page != nil
}

// Section renders the category header followed by the page contents.
func (r SectionResult) Section() string {
	return fmt.Sprintf("\n\n%s\n%s", r.Link.Category, r.Page.Contents())
}

// Portfolio is the detailed outcome of an aggregation.
type Portfolio struct {
	RootURL string
	Root    *fetch.Page
	Links   []RankedLink
	// Sections are the fetched links included in Content, in ranked order.
	Sections []SectionResult
	// Skipped are the links whose resolution or fetch failed.
	Skipped []SectionResult
	// Omitted counts links left out because the budget was already reached.
	Omitted   int
	Content   string
	Truncated bool
}

// baseURL is what ranked links resolve against: the root page's address
// after redirects.
func (p *Portfolio) baseURL() string {
	if p.Root != nil && p.Root.BaseURL != "" {
		return p.Root.BaseURL
	}
	return p.RootURL
}

// Summary converts the portfolio into its display form.
func (p *Portfolio) Summary() *types.PortfolioSummary {
	summary := &types.PortfolioSummary{
		RootURL:       p.RootURL,
		Sections:      make([]types.SectionSummary, 0, len(p.Sections)),
		Skipped:       make([]types.SkippedSummary, 0, len(p.Skipped)),
		Omitted:       p.Omitted,
		ContentLength: utf8.RuneCountInString(p.Content),
		Truncated:     p.Truncated,
	}
	if p.Root != nil {
		summary.RootTitle = p.Root.Title
	}
	for _, s := range p.Sections {
		summary.Sections = append(summary.Sections, types.SectionSummary{
			Category: s.Link.Category,
			URL:      s.URL,
			Title:    s.Page.Title,
		})
	}
	for _, s := range p.Skipped {
		url := s.URL
		if url == "" {
			url = s.Link.URL
		}
		summary.Skipped = append(summary.Skipped, types.SkippedSummary{
			Category: s.Link.Category,
			URL:      url,
			Kind:     string(s.Kind),
			Reason:   s.Err.Error(),
		})
	}
	return summary
}

// Aggregator builds the portfolio content used to write a cover letter: the
// root page followed by each ranked sub-page under its category header.
type Aggregator struct {
	fetcher     PageFetcher
	selector    Selector
	concurrency int
	logger      *log.Logger
	metrics     *observability.Metrics
}

// NewAggregator creates an Aggregator. concurrency < 1 means sequential
// fetching; logger and metrics may be nil.
func NewAggregator(fetcher PageFetcher, selector Selector, concurrency int, logger *log.Logger, metrics *observability.Metrics) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Aggregator{
		fetcher:     fetcher,
		selector:    selector,
		concurrency: concurrency,
		logger:      observability.LoggerOrDiscard(logger),
		metrics:     metrics,
	}
}

// Aggregate returns at most MaxContentLength characters of portfolio content
// for rootURL.
func (a *Aggregator) Aggregate(ctx context.Context, rootURL string) (string, error) {
	portfolio, err := a.AggregateDetailed(ctx, rootURL)
	if err != nil {
		return "", err
	}
	return portfolio.Content, nil
}

// AggregateDetailed is Aggregate with the full per-link report. Only a root
// fetch failure or a link-ranking failure is returned as an error; sub-page
// failures are recorded in Skipped.
func (a *Aggregator) AggregateDetailed(ctx context.Context, rootURL string) (*Portfolio, error) {
	root, err := a.fetcher.Fetch(ctx, rootURL)
	if err != nil {
		return nil, &AggregationError{
			URL:     rootURL,
			Message: "failed to fetch portfolio page",
			Cause:   err,
		}
	}

	links, err := a.selector.SelectLinks(ctx, root)
	if err != nil {
		return nil, err
	}

	portfolio := &Portfolio{
		RootURL: rootURL,
		Root:    root,
		Links:   links,
	}

	b := newBudget(MaxContentLength)
	b.add(root.Contents())

	if a.concurrency == 1 {
		a.assembleSequential(ctx, portfolio, b)
	} else {
		a.assembleConcurrent(ctx, portfolio, b)
	}

	portfolio.Content, portfolio.Truncated = b.result()

	a.logger.Info("aggregated portfolio",
		"url", rootURL,
		"ranked", len(links),
		"sections", len(portfolio.Sections),
		"skipped", len(portfolio.Skipped),
		"omitted", portfolio.Omitted,
		"chars", utf8.RuneCountInString(portfolio.Content),
		"truncated", portfolio.Truncated)
	return portfolio, nil
}

// assembleSequential fetches links one at a time and stops fetching once the
// budget is exhausted.
func (a *Aggregator) assembleSequential(ctx context.Context, p *Portfolio, b *budget) {
	for i, link := range p.Links {
		if b.full() {
			p.Omitted = len(p.Links) - i
			return
		}
		a.record(p, b, a.fetchSection(ctx, p.baseURL(), link))
	}
}

// assembleConcurrent fetches all links with bounded parallelism and assembles
// the results in ranked order.
func (a *Aggregator) assembleConcurrent(ctx context.Context, p *Portfolio, b *budget) {
	results := make([]SectionResult, len(p.Links))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, link := range p.Links {
		g.Go(func() error {
			results[i] = a.fetchSection(ctx, p.baseURL(), link)
			return nil
		})
	}
	_ = g.Wait() // sub-page failures are carried in results

	for i, r := range results {
		if b.full() {
			p.Omitted = len(results) - i
			return
		}
		a.record(p, b, r)
	}
}

func (a *Aggregator) record(p *Portfolio, b *budget, r SectionResult) {
	if !r.OK() {
		p.Skipped = append(p.Skipped, r)
		return
	}
	p.Sections = append(p.Sections, r)
	b.add(r.Section())
}

// fetchSection resolves and fetches one ranked link. Failures are logged and
// returned in the result, never as an error.
func (a *Aggregator) fetchSection(ctx context.Context, baseURL string, link RankedLink) SectionResult {
	result := SectionResult{Link: link}

	resolved, err := ResolveLink(baseURL, link.URL)
	if err != nil {
		result.Err = err
		result.Kind = ErrorKindInvalidURL
		a.metrics.ObservePageFetch(observability.OutcomeSkipped)
		a.logSkipped(result)
		return result
	}
	result.URL = resolved

	page, err := a.fetcher.Fetch(ctx, resolved)
	if err != nil {
		result.Err = err
		result.Kind = classifyError(err)
		a.logSkipped(result)
		return result
	}
	result.Page = page
	return result
}

func (a *Aggregator) logSkipped(r SectionResult) {
	a.logger.Warn("skipping ranked link",
		"category", r.Link.Category,
		"url", r.Link.URL,
		"kind", r.Kind,
		"err", r.Err)
}

func classifyError(err error) ErrorKind {
	var resolutionErr *LinkResolutionError
	var fetchErr *fetch.Error
	switch {
	case errors.As(err, &resolutionErr):
		return ErrorKindInvalidURL
	case fetch.IsTimeout(err):
		return ErrorKindTimeout
	case errors.As(err, &fetchErr):
		return ErrorKindFetch
	default:
		return ErrorKindUnknown
	}
}
