package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIClient implements Client for the OpenAI chat completions API
type OpenAIClient struct {
	client openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config *Config, apiKey string, opts ...option.RequestOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	requestOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if config.BaseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(config.BaseURL))
	}
	requestOpts = append(requestOpts, opts...)

	return &OpenAIClient{
		client: openai.NewClient(requestOpts...),
		config: config,
	}, nil
}

// GenerateContent generates free-form text using the specified model tier
func (c *OpenAIClient) GenerateContent(ctx context.Context, messages []Message, tier ModelTier) (string, error) {
	params, err := c.buildParams(messages, tier, ContentTemperature)
	if err != nil {
		return "", err
	}
	return c.complete(ctx, params)
}

// GenerateJSON generates a JSON object using the specified model tier
func (c *OpenAIClient) GenerateJSON(ctx context.Context, messages []Message, tier ModelTier) (string, error) {
	params, err := c.buildParams(messages, tier, JSONTemperature)
	if err != nil {
		return "", err
	}
	params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
	}

	text, err := c.complete(ctx, params)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// GetModel returns the model name for a tier
func (c *OpenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *OpenAIClient) Close() error {
	return nil
}

func (c *OpenAIClient) buildParams(messages []Message, tier ModelTier, temperature float64) (openai.ChatCompletionNewParams, error) {
	modelName, err := modelFor(c.config, tier)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	if err := validateMessages(messages); err != nil {
		return openai.ChatCompletionNewParams{}, err
	}

	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			converted = append(converted, openai.SystemMessage(m.Content))
		default:
			converted = append(converted, openai.UserMessage(m.Content))
		}
	}

	return openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(modelName),
		Messages:    converted,
		Temperature: openai.Float(temperature),
	}, nil
}

func (c *OpenAIClient) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("no content in response")
	}
	return content, nil
}
