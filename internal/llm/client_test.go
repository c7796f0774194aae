package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/generative-ai-go/genai"
	openaioption "github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func captureServer(t *testing.T, pathSuffix, response string, captured *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, pathSuffix) {
			http.NotFound(w, r)
			return
		}
		body := map[string]any{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		*captured = body
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const openAIResponse = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4-turbo-preview",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "%s"}
	}]
}`

func TestSplitMessages(t *testing.T) {
	system, rest := splitMessages([]Message{
		SystemMessage("one"),
		UserMessage("hello"),
		SystemMessage("two"),
	})

	assert.Equal(t, "one\n\ntwo", system)
	require.Len(t, rest, 1)
	assert.Equal(t, RoleUser, rest[0].Role)
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	for _, p := range []Provider{ProviderOpenAI, ProviderGemini, ProviderAnthropic} {
		config, err := ConfigFor(p)
		require.NoError(t, err)
		_, err = NewClient(context.Background(), config, "")
		assert.Error(t, err, "provider %s", p)
	}
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "mistral"}, "key")
	assert.Error(t, err)
}

func TestOpenAIClient_GenerateJSON(t *testing.T) {
	var captured map[string]any
	srv := captureServer(t, "/chat/completions",
		strings.Replace(openAIResponse, "%s", "```json\\n{\\\"links\\\": []}\\n```", 1), &captured)

	config := DefaultOpenAIConfig()
	config.BaseURL = srv.URL + "/v1/"
	client, err := NewOpenAIClient(config, "test-key", openaioption.WithMaxRetries(0))
	require.NoError(t, err)

	out, err := client.GenerateJSON(context.Background(), []Message{
		SystemMessage("rank links"),
		UserMessage("links: /about"),
	}, TierLite)
	require.NoError(t, err)
	assert.Equal(t, `{"links": []}`, out)

	assert.Equal(t, "gpt-4-turbo-preview", captured["model"])
	assert.InDelta(t, JSONTemperature, captured["temperature"], 0.0001)
	assert.Equal(t, map[string]any{"type": "json_object"}, captured["response_format"])

	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
}

func TestOpenAIClient_GenerateContent(t *testing.T) {
	var captured map[string]any
	srv := captureServer(t, "/chat/completions",
		strings.Replace(openAIResponse, "%s", "Dear Hiring Manager", 1), &captured)

	config := DefaultOpenAIConfig()
	config.BaseURL = srv.URL + "/v1/"
	client, err := NewOpenAIClient(config, "test-key", openaioption.WithMaxRetries(0))
	require.NoError(t, err)

	out, err := client.GenerateContent(context.Background(), []Message{
		SystemMessage("write"),
		UserMessage("details"),
	}, TierAdvanced)
	require.NoError(t, err)
	assert.Equal(t, "Dear Hiring Manager", out)
	assert.InDelta(t, ContentTemperature, captured["temperature"], 0.0001)
	assert.NotContains(t, captured, "response_format")
}

func TestOpenAIClient_RequiresUserMessage(t *testing.T) {
	client, err := NewOpenAIClient(DefaultOpenAIConfig(), "test-key")
	require.NoError(t, err)

	_, err = client.GenerateContent(context.Background(), []Message{SystemMessage("only")}, TierLite)
	assert.Error(t, err)
}

func TestOpenAIClient_NoModelForTier(t *testing.T) {
	client, err := NewOpenAIClient(&Config{Provider: ProviderOpenAI, Models: map[ModelTier]string{}}, "test-key")
	require.NoError(t, err)

	_, err = client.GenerateJSON(context.Background(), []Message{UserMessage("hi")}, TierLite)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model configured")
}

func TestOpenAIClient_EmptyChoices(t *testing.T) {
	var captured map[string]any
	srv := captureServer(t, "/chat/completions",
		`{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`, &captured)

	config := DefaultOpenAIConfig()
	config.BaseURL = srv.URL + "/v1/"
	client, err := NewOpenAIClient(config, "test-key", openaioption.WithMaxRetries(0))
	require.NoError(t, err)

	_, err = client.GenerateContent(context.Background(), []Message{UserMessage("hi")}, TierLite)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestAnthropicClient_GenerateJSON(t *testing.T) {
	var captured map[string]any
	srv := captureServer(t, "/v1/messages", `{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-3-5-haiku-latest",
		"content": [{"type": "text", "text": "Here you go: {\"links\": [{\"type\": \"About\", \"url\": \"/about\"}]}"}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 10, "output_tokens": 10}
	}`, &captured)

	config := DefaultAnthropicConfig()
	config.BaseURL = srv.URL + "/"
	client, err := NewAnthropicClient(config, "test-key", anthropicoption.WithMaxRetries(0))
	require.NoError(t, err)

	out, err := client.GenerateJSON(context.Background(), []Message{
		SystemMessage("rank links"),
		UserMessage("links"),
	}, TierLite)
	require.NoError(t, err)
	assert.Equal(t, `{"links": [{"type": "About", "url": "/about"}]}`, out)

	assert.Equal(t, "claude-3-5-haiku-latest", captured["model"])
	assert.InDelta(t, float64(DefaultMaxTokens), captured["max_tokens"], 0.0001)

	system, ok := captured["system"].([]any)
	require.True(t, ok)
	require.Len(t, system, 1)
	text := system[0].(map[string]any)["text"].(string)
	assert.True(t, strings.HasPrefix(text, "rank links"))
	assert.Contains(t, text, jsonInstruction)
}

func TestAnthropicClient_GenerateContent(t *testing.T) {
	var captured map[string]any
	srv := captureServer(t, "/v1/messages", `{
		"id": "msg_2",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-20250514",
		"content": [{"type": "text", "text": "Dear "}, {"type": "text", "text": "Team"}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 10, "output_tokens": 10}
	}`, &captured)

	config := DefaultAnthropicConfig()
	config.BaseURL = srv.URL + "/"
	client, err := NewAnthropicClient(config, "test-key", anthropicoption.WithMaxRetries(0))
	require.NoError(t, err)

	out, err := client.GenerateContent(context.Background(), []Message{UserMessage("write")}, TierAdvanced)
	require.NoError(t, err)
	assert.Equal(t, "Dear Team", out)
	assert.NotContains(t, captured, "system")
}

func TestGeminiOptions_BaseURL(t *testing.T) {
	cfg := DefaultGeminiConfig()
	opts := geminiOptions(cfg, "gm-key")
	assert.Equal(t, []option.ClientOption{option.WithAPIKey("gm-key")}, opts)

	cfg.BaseURL = "localhost:9443"
	opts = geminiOptions(cfg, "gm-key")
	require.Len(t, opts, 2)
	assert.Contains(t, opts, option.WithEndpoint("localhost:9443"))
}

func TestNewGeminiClient_WithBaseURL(t *testing.T) {
	cfg := DefaultGeminiConfig()
	cfg.BaseURL = "localhost:9443"

	client, err := NewGeminiClient(context.Background(), cfg, "gm-key")
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	assert.Equal(t, cfg.GetModel(TierAdvanced), client.GetModel(TierAdvanced))
}

func TestExtractTextFromResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("{\"links\":"), genai.Text(" []}")}},
		}},
	}
	text, err := extractTextFromResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"links": []}`, text)

	_, err = extractTextFromResponse(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	_, err = extractTextFromResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{}}},
	})
	assert.Error(t, err)
}
