package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// jsonInstruction is appended to the system prompt because the Messages API
// has no JSON response mode.
const jsonInstruction = "Respond with a single JSON object only. Do not wrap it in markdown or add commentary."

// AnthropicClient implements Client for the Anthropic Messages API
type AnthropicClient struct {
	client anthropic.Client
	config *Config
}

// NewAnthropicClient creates a new Anthropic client
func NewAnthropicClient(config *Config, apiKey string, opts ...option.RequestOption) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	requestOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if config.BaseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(config.BaseURL))
	}
	requestOpts = append(requestOpts, opts...)

	return &AnthropicClient{
		client: anthropic.NewClient(requestOpts...),
		config: config,
	}, nil
}

// GenerateContent generates free-form text using the specified model tier
func (c *AnthropicClient) GenerateContent(ctx context.Context, messages []Message, tier ModelTier) (string, error) {
	params, err := c.buildParams(messages, tier, ContentTemperature, "")
	if err != nil {
		return "", err
	}
	return c.complete(ctx, params)
}

// GenerateJSON generates a JSON object using the specified model tier
func (c *AnthropicClient) GenerateJSON(ctx context.Context, messages []Message, tier ModelTier) (string, error) {
	params, err := c.buildParams(messages, tier, JSONTemperature, jsonInstruction)
	if err != nil {
		return "", err
	}

	text, err := c.complete(ctx, params)
	if err != nil {
		return "", err
	}

	return CleanJSONBlock(text), nil
}

// GetModel returns the model name for a tier
func (c *AnthropicClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *AnthropicClient) Close() error {
	return nil
}

func (c *AnthropicClient) buildParams(messages []Message, tier ModelTier, temperature float64, extraSystem string) (anthropic.MessageNewParams, error) {
	modelName, err := modelFor(c.config, tier)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}
	if err := validateMessages(messages); err != nil {
		return anthropic.MessageNewParams{}, err
	}

	system, rest := splitMessages(messages)
	if extraSystem != "" {
		system = strings.TrimSpace(system + "\n\n" + extraSystem)
	}

	converted := make([]anthropic.MessageParam, 0, len(rest))
	for _, m := range rest {
		converted = append(converted, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}

	maxTokens := c.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(modelName),
		MaxTokens:   int64(maxTokens),
		Messages:    converted,
		Temperature: anthropic.Float(temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	return params, nil
}

func (c *AnthropicClient) complete(ctx context.Context, params anthropic.MessageNewParams) (string, error) {
	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text content in response")
	}
	return strings.Join(parts, ""), nil
}
