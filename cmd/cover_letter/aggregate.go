package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter-generator/internal/crawling"
	"github.com/jonathan/cover-letter-generator/internal/observability"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Print the aggregated portfolio content for a URL",
	Long:  "Fetches a portfolio page, ranks its links with the LLM, fetches the ranked pages and prints the combined content that would be used to write a cover letter.",
	RunE:  runAggregate,
}

var (
	aggregateURL     string
	aggregateVerbose bool
)

func init() {
	aggregateCmd.Flags().StringVarP(&aggregateURL, "url", "u", "", "Portfolio URL (required)")
	aggregateCmd.Flags().BoolVarP(&aggregateVerbose, "verbose", "v", false, "Print a summary of fetched and skipped pages")

	if err := aggregateCmd.MarkFlagRequired("url"); err != nil {
		panic(fmt.Sprintf("failed to mark url flag as required: %v", err))
	}

	rootCmd.AddCommand(aggregateCmd)
}

func runAggregate(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return writeAggregate(cmd.Context(), a.aggregator, aggregateURL, aggregateVerbose, cmd.OutOrStdout())
}

func writeAggregate(ctx context.Context, aggregator *crawling.Aggregator, url string, verbose bool, out io.Writer) error {
	portfolio, err := aggregator.AggregateDetailed(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to aggregate portfolio: %w", err)
	}

	if verbose {
		observability.NewPrinter(out).PrintPortfolio(portfolio.Summary())
	}
	if _, err := fmt.Fprintln(out, portfolio.Content); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
