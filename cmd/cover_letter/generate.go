package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter-generator/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a cover letter from a portfolio website",
	Long:  "Aggregates the candidate's portfolio website and writes a cover letter for the given job, printing it to stdout or writing it to --out.",
	RunE:  runGenerate,
}

var (
	generateApplicant string
	generateURL       string
	generateJobTitle  string
	generateCompany   string
	generateSkills    []string
	generateTone      string
	generateOutput    string
)

func init() {
	generateCmd.Flags().StringVarP(&generateApplicant, "name", "n", "", "Applicant name (required)")
	generateCmd.Flags().StringVarP(&generateURL, "url", "u", "", "Portfolio URL (required)")
	generateCmd.Flags().StringVarP(&generateJobTitle, "job-title", "j", "", "Job title (required)")
	generateCmd.Flags().StringVar(&generateCompany, "company", "", "Company name (required)")
	generateCmd.Flags().StringSliceVarP(&generateSkills, "skills", "s", nil, "Key skills, comma separated (required)")
	generateCmd.Flags().StringVarP(&generateTone, "tone", "t", types.ToneProfessional, "Tone: professional or confident")
	generateCmd.Flags().StringVarP(&generateOutput, "out", "o", "", "Output file (default: stdout)")

	for _, name := range []string{"name", "url", "job-title", "company", "skills"} {
		if err := generateCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	rootCmd.AddCommand(generateCmd)
}

// Composer writes a cover letter for a request.
type Composer interface {
	Compose(ctx context.Context, req *types.CoverLetterRequest) (string, error)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	req := &types.CoverLetterRequest{
		ApplicantName: generateApplicant,
		PortfolioURL:  generateURL,
		JobTitle:      generateJobTitle,
		CompanyName:   generateCompany,
		KeySkills:     generateSkills,
		Tone:          generateTone,
	}
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	out := cmd.OutOrStdout()
	if generateOutput != "" {
		f, err := os.Create(generateOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file %s: %w", generateOutput, err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	if err := writeLetter(cmd.Context(), a.composer, req, out); err != nil {
		return err
	}
	if generateOutput != "" {
		a.logger.Info("wrote cover letter", "path", generateOutput)
	}
	return nil
}

func writeLetter(ctx context.Context, composer Composer, req *types.CoverLetterRequest, out io.Writer) error {
	letter, err := composer.Compose(ctx, req)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, letter); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
