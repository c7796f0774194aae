package crawling

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jonathan/cover-letter-generator/internal/fetch"
	"github.com/jonathan/cover-letter-generator/internal/llm"
	"github.com/jonathan/cover-letter-generator/internal/observability"
	"github.com/jonathan/cover-letter-generator/internal/prompts"
	"github.com/jonathan/cover-letter-generator/internal/schemas"
)

const operationSelectLinks = "select_links"

// RankedLink is a sub-page chosen by the model, with a free-text category.
type RankedLink struct {
	Category string `json:"type"`
	URL      string `json:"url"`
}

type rankedLinksResponse struct {
	Links []RankedLink `json:"links"`
}

// LinkSelector asks the LLM which links on a page are worth referencing in a
// cover letter.
type LinkSelector struct {
	client  llm.Client
	logger  *log.Logger
	metrics *observability.Metrics
}

// NewLinkSelector creates a LinkSelector. logger and metrics may be nil.
func NewLinkSelector(client llm.Client, logger *log.Logger, metrics *observability.Metrics) *LinkSelector {
	return &LinkSelector{
		client:  client,
		logger:  observability.LoggerOrDiscard(logger),
		metrics: metrics,
	}
}

// SelectLinks returns the links on page that the model ranked as relevant, in
// the model's order. A page without links yields an empty result without
// calling the model.
func (s *LinkSelector) SelectLinks(ctx context.Context, page *fetch.Page) ([]RankedLink, error) {
	if len(page.Links) == 0 {
		s.logger.Debug("page has no links, skipping ranking", "url", page.URL)
		return []RankedLink{}, nil
	}

	messages := buildSelectLinksMessages(page)

	// Use TierLite for the ranking task
	responseText, err := s.client.GenerateJSON(ctx, messages, llm.TierLite)
	if err != nil {
		s.metrics.ObserveLLMCall(operationSelectLinks, observability.OutcomeFailure)
		return nil, &ModelResponseError{
			Message: "failed to generate link ranking from LLM",
			Cause:   err,
		}
	}

	links, err := parseRankedLinks(responseText)
	if err != nil {
		s.metrics.ObserveLLMCall(operationSelectLinks, observability.OutcomeFailure)
		return nil, err
	}
	s.metrics.ObserveLLMCall(operationSelectLinks, observability.OutcomeSuccess)

	s.logger.Info("ranked portfolio links", "url", page.URL, "candidates", len(page.Links), "selected", len(links))
	return links, nil
}

// buildSelectLinksMessages constructs the ranking prompt. The raw hrefs are
// listed one per line, unresolved.
func buildSelectLinksMessages(page *fetch.Page) []llm.Message {
	system := prompts.MustGet(prompts.SelectLinksSystem)
	user := prompts.Render(prompts.SelectLinksUser, map[string]string{
		"URL":   page.URL,
		"Links": strings.Join(page.Links, "\n"),
	})
	return []llm.Message{
		llm.SystemMessage(system),
		llm.UserMessage(user),
	}
}

// parseRankedLinks validates the model output against the ranked links schema
// and decodes it.
func parseRankedLinks(responseText string) ([]RankedLink, error) {
	responseText = llm.CleanJSONBlock(responseText)

	if err := schemas.ValidateRankedLinks(responseText); err != nil {
		return nil, &ModelResponseError{
			Message:  "link ranking does not match schema",
			Response: responseText,
			Cause:    err,
		}
	}

	var resp rankedLinksResponse
	if err := json.Unmarshal([]byte(responseText), &resp); err != nil {
		return nil, &ModelResponseError{
			Message:  "failed to unmarshal link ranking JSON",
			Response: responseText,
			Cause:    err,
		}
	}
	if resp.Links == nil {
		resp.Links = []RankedLink{}
	}
	return resp.Links, nil
}
