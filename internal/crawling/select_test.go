package crawling

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/cover-letter-generator/internal/fetch"
	"github.com/jonathan/cover-letter-generator/internal/llm"
	"github.com/jonathan/cover-letter-generator/internal/observability"
	"github.com/jonathan/cover-letter-generator/internal/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func portfolioPage() *fetch.Page {
	return &fetch.Page{
		URL:   "https://ada.dev",
		Title: "Ada",
		Links: []string{"/projects", "https://github.com/ada", "/projects", "mailto:ada@ada.dev"},
	}
}

func TestSelectLinks_ParsesRankedLinks(t *testing.T) {
	client := &fakeLLM{response: `{"links": [
		{"type": "projects", "url": "https://ada.dev/projects"},
		{"type": "code", "url": "https://github.com/ada"}
	]}`}
	selector := NewLinkSelector(client, nil, nil)

	links, err := selector.SelectLinks(context.Background(), portfolioPage())
	require.NoError(t, err)
	assert.Equal(t, []RankedLink{
		{Category: "projects", URL: "https://ada.dev/projects"},
		{Category: "code", URL: "https://github.com/ada"},
	}, links)

	require.Equal(t, 1, client.callCount())
	assert.Equal(t, llm.TierLite, client.tiers[0])
}

func TestSelectLinks_PromptContents(t *testing.T) {
	client := &fakeLLM{response: `{"links": []}`}
	selector := NewLinkSelector(client, nil, nil)

	_, err := selector.SelectLinks(context.Background(), portfolioPage())
	require.NoError(t, err)

	messages := client.calls[0]
	require.Len(t, messages, 2)
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "cover letter")
	assert.Contains(t, messages[0].Content, `"links"`)

	assert.Equal(t, llm.RoleUser, messages[1].Role)
	assert.Contains(t, messages[1].Content, "website of https://ada.dev")
	assert.Contains(t, messages[1].Content, "some might be relative links")
	assert.Contains(t, messages[1].Content,
		"/projects\nhttps://github.com/ada\n/projects\nmailto:ada@ada.dev")
}

func TestSelectLinks_NoLinksSkipsModel(t *testing.T) {
	client := &fakeLLM{response: `{"links": [{"type": "x", "url": "/x"}]}`}
	selector := NewLinkSelector(client, nil, nil)

	links, err := selector.SelectLinks(context.Background(), &fetch.Page{URL: "https://ada.dev", Links: []string{}})
	require.NoError(t, err)
	assert.Empty(t, links)
	assert.NotNil(t, links)
	assert.Equal(t, 0, client.callCount())
}

func TestSelectLinks_CodeFencedResponse(t *testing.T) {
	client := &fakeLLM{response: "```json\n{\"links\": [{\"type\": \"skills\", \"url\": \"/skills\"}]}\n```"}
	selector := NewLinkSelector(client, nil, nil)

	links, err := selector.SelectLinks(context.Background(), portfolioPage())
	require.NoError(t, err)
	assert.Equal(t, []RankedLink{{Category: "skills", URL: "/skills"}}, links)
}

func TestSelectLinks_ModelResponseErrors(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not JSON", "I could not find any relevant links."},
		{"wrong shape", `{"pages": ["/projects"]}`},
		{"links not a list", `{"links": "/projects"}`},
		{"item missing url", `{"links": [{"type": "projects"}]}`},
		{"truncated JSON", `{"links": [{"type": "projects", "url": "/p"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selector := NewLinkSelector(&fakeLLM{response: tt.response}, nil, nil)

			_, err := selector.SelectLinks(context.Background(), portfolioPage())
			require.Error(t, err)

			var modelErr *ModelResponseError
			require.True(t, errors.As(err, &modelErr))
			assert.NotEmpty(t, modelErr.Response)
		})
	}
}

func TestSelectLinks_SchemaErrorIsReachable(t *testing.T) {
	selector := NewLinkSelector(&fakeLLM{response: `{"links": [{"type": 1, "url": "/p"}]}`}, nil, nil)

	_, err := selector.SelectLinks(context.Background(), portfolioPage())
	require.Error(t, err)

	var validationErr *schemas.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestSelectLinks_LLMFailure(t *testing.T) {
	cause := errors.New("rate limited")
	metrics := observability.NewMetrics()
	selector := NewLinkSelector(&fakeLLM{err: cause}, nil, metrics)

	_, err := selector.SelectLinks(context.Background(), portfolioPage())
	require.Error(t, err)

	var modelErr *ModelResponseError
	require.True(t, errors.As(err, &modelErr))
	assert.ErrorIs(t, err, cause)
}
