package crawling

import (
	"context"
	"errors"
	"sync"

	"github.com/jonathan/cover-letter-generator/internal/fetch"
	"github.com/jonathan/cover-letter-generator/internal/llm"
)

// fakeLLM returns a canned response and records every call.
type fakeLLM struct {
	mu       sync.Mutex
	response string
	err      error
	calls    [][]llm.Message
	tiers    []llm.ModelTier
}

func (f *fakeLLM) GenerateContent(_ context.Context, messages []llm.Message, tier llm.ModelTier) (string, error) {
	return f.record(messages, tier)
}

func (f *fakeLLM) GenerateJSON(_ context.Context, messages []llm.Message, tier llm.ModelTier) (string, error) {
	return f.record(messages, tier)
}

func (f *fakeLLM) record(messages []llm.Message, tier llm.ModelTier) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, messages)
	f.tiers = append(f.tiers, tier)
	return f.response, f.err
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake-model" }

func (f *fakeLLM) Close() error { return nil }

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeFetcher serves pages and errors from maps keyed by URL.
type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]*fetch.Page
	errs    map[string]error
	fetched []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: make(map[string]*fetch.Page),
		errs:  make(map[string]error),
	}
}

func (f *fakeFetcher) add(url, title, body string, links ...string) {
	if links == nil {
		links = []string{}
	}
	f.pages[url] = &fetch.Page{URL: url, Title: title, BodyText: body, Links: links, StatusCode: 200}
}

func (f *fakeFetcher) fail(url string, err error) {
	f.errs[url] = err
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*fetch.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return nil, &fetch.Error{URL: url, Message: "HTTP request failed", Cause: errors.New("no such host")}
}

func (f *fakeFetcher) fetchedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}

// staticSelector returns fixed links.
type staticSelector struct {
	links []RankedLink
	err   error
}

func (s staticSelector) SelectLinks(context.Context, *fetch.Page) ([]RankedLink, error) {
	return s.links, s.err
}
