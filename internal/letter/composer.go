// Package letter drafts cover letters from aggregated portfolio content.
package letter

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jonathan/cover-letter-generator/internal/llm"
	"github.com/jonathan/cover-letter-generator/internal/observability"
	"github.com/jonathan/cover-letter-generator/internal/prompts"
	"github.com/jonathan/cover-letter-generator/internal/types"
)

const operationCompose = "compose"

// GenerationError represents a failed or empty cover letter generation.
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("generation error: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// ContentSource produces the portfolio content for a URL.
type ContentSource interface {
	Aggregate(ctx context.Context, rootURL string) (string, error)
}

// Composer writes cover letters. It keeps no state between calls.
type Composer struct {
	client  llm.Client
	content ContentSource
	logger  *log.Logger
	metrics *observability.Metrics
}

// NewComposer creates a Composer. logger and metrics may be nil.
func NewComposer(client llm.Client, content ContentSource, logger *log.Logger, metrics *observability.Metrics) *Composer {
	return &Composer{
		client:  client,
		content: content,
		logger:  observability.LoggerOrDiscard(logger),
		metrics: metrics,
	}
}

// Compose aggregates the applicant's portfolio and asks the model for a cover
// letter. Aggregation errors are returned wrapped; model failures are
// returned as *GenerationError.
func (c *Composer) Compose(ctx context.Context, req *types.CoverLetterRequest) (string, error) {
	content, err := c.content.Aggregate(ctx, req.PortfolioURL)
	if err != nil {
		return "", fmt.Errorf("failed to aggregate portfolio: %w", err)
	}
	return c.ComposeFromContent(ctx, req, content)
}

// ComposeFromContent writes a cover letter from already aggregated content.
func (c *Composer) ComposeFromContent(ctx context.Context, req *types.CoverLetterRequest, portfolioContent string) (string, error) {
	tone := req.EffectiveTone()
	messages := []llm.Message{
		llm.SystemMessage(SystemPrompt(tone)),
		llm.UserMessage(BuildUserPrompt(req, portfolioContent)),
	}

	c.logger.Debug("generating cover letter",
		"applicant", req.ApplicantName,
		"company", req.CompanyName,
		"tone", tone,
		"model", c.client.GetModel(llm.TierAdvanced))

	letter, err := c.client.GenerateContent(ctx, messages, llm.TierAdvanced)
	if err != nil {
		c.metrics.ObserveLLMCall(operationCompose, observability.OutcomeFailure)
		return "", &GenerationError{
			Message: "failed to generate cover letter from LLM",
			Cause:   err,
		}
	}
	if strings.TrimSpace(letter) == "" {
		c.metrics.ObserveLLMCall(operationCompose, observability.OutcomeFailure)
		return "", &GenerationError{Message: "LLM returned an empty cover letter"}
	}

	c.metrics.ObserveLLMCall(operationCompose, observability.OutcomeSuccess)
	c.metrics.ObserveLetter(tone)
	c.logger.Info("generated cover letter", "company", req.CompanyName, "tone", tone, "chars", len(letter))
	return letter, nil
}

// SystemPrompt returns the system instruction for tone. Only "confident"
// selects the confident template; every other value is professional.
func SystemPrompt(tone string) string {
	if tone == types.ToneConfident {
		return prompts.MustGet(prompts.LetterSystemConfident)
	}
	return prompts.MustGet(prompts.LetterSystemProfessional)
}

// BuildUserPrompt embeds the applicant details and portfolio content.
func BuildUserPrompt(req *types.CoverLetterRequest, portfolioContent string) string {
	return prompts.Render(prompts.LetterUser, map[string]string{
		"ApplicantName":    req.ApplicantName,
		"JobTitle":         req.JobTitle,
		"CompanyName":      req.CompanyName,
		"KeySkills":        strings.Join(req.KeySkills, ", "),
		"PortfolioContent": portfolioContent,
	})
}
