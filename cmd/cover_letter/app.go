package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter-generator/internal/config"
	"github.com/jonathan/cover-letter-generator/internal/crawling"
	"github.com/jonathan/cover-letter-generator/internal/fetch"
	"github.com/jonathan/cover-letter-generator/internal/letter"
	"github.com/jonathan/cover-letter-generator/internal/llm"
	"github.com/jonathan/cover-letter-generator/internal/observability"
)

// app holds the wired pipeline shared by every command.
type app struct {
	cfg        *config.Config
	logger     *log.Logger
	metrics    *observability.Metrics
	client     llm.Client
	fetcher    *fetch.Fetcher
	selector   *crawling.LinkSelector
	aggregator *crawling.Aggregator
	composer   *letter.Composer
}

// loadConfig loads and validates configuration, letting the command's
// flags override the file and environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp creates the LLM client for cfg and wires the pipeline around it.
func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	llmCfg, err := cfg.LLMConfig()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	client, err := llm.NewClient(ctx, llmCfg, cfg.LLM.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return assemble(cfg, client, observability.NewLogger(logOut, cfg.LogLevel)), nil
}

// assemble wires the fetcher, selector, aggregator and composer around client.
func assemble(cfg *config.Config, client llm.Client, logger *log.Logger) *app {
	metrics := observability.NewMetrics()
	fetcher := fetch.NewFetcher(cfg.FetchOptions(), logger, metrics)
	selector := crawling.NewLinkSelector(client, logger, metrics)
	aggregator := crawling.NewAggregator(fetcher, selector, cfg.Fetch.Concurrency, logger, metrics)

	return &app{
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
		client:     client,
		fetcher:    fetcher,
		selector:   selector,
		aggregator: aggregator,
		composer:   letter.NewComposer(client, aggregator, logger, metrics),
	}
}

// Close releases the LLM client.
func (a *app) Close() error {
	return a.client.Close()
}

// setup loads configuration and builds the app for a command. Logs go to
// the command's stderr so stdout carries only results.
func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
}
