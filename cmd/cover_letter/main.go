// Package main provides the entry point for the cover letter generator CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "cover_letter",
	Short:         "Cover Letter Generator",
	Long:          "Cover Letter Generator reads a candidate's portfolio website and writes a tailored cover letter for a job application.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a JSON config file (default: ./cover_letter.json if present)")
	rootCmd.PersistentFlags().String("api-key", "", "LLM API key (overrides config and environment)")
	rootCmd.PersistentFlags().String("provider", "", "LLM provider: openai, gemini or anthropic")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
