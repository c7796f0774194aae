package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter-generator/internal/crawling"
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Print the ranked links for a page",
	Long:  "Fetches a page and prints, as JSON, the links the LLM considers most useful for a cover letter, most relevant first.",
	RunE:  runLinks,
}

var linksURL string

func init() {
	linksCmd.Flags().StringVarP(&linksURL, "url", "u", "", "Page URL (required)")

	if err := linksCmd.MarkFlagRequired("url"); err != nil {
		panic(fmt.Sprintf("failed to mark url flag as required: %v", err))
	}

	rootCmd.AddCommand(linksCmd)
}

func runLinks(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return writeLinks(cmd.Context(), a.fetcher, a.selector, linksURL, cmd.OutOrStdout())
}

func writeLinks(ctx context.Context, fetcher crawling.PageFetcher, selector crawling.Selector, url string, out io.Writer) error {
	page, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	links, err := selector.SelectLinks(ctx, page)
	if err != nil {
		return fmt.Errorf("failed to rank links: %w", err)
	}

	encoded, err := json.MarshalIndent(links, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal links to JSON: %w", err)
	}
	if _, err := fmt.Fprintln(out, string(encoded)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
