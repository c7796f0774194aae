package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/cover-letter-generator/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		runes := []rune(line)
		if len(runes) > boxWidth-4 {
			line = string(runes[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintPortfolio outputs what an aggregation fetched, skipped and kept.
func (p *Printer) PrintPortfolio(summary *types.PortfolioSummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Portfolio: %s\n", summary.RootURL))
	sb.WriteString(fmt.Sprintf("Title:     %s\n", summary.RootTitle))
	sb.WriteString("\n")

	if len(summary.Sections) > 0 {
		sb.WriteString(fmt.Sprintf("Sections (%d):\n", len(summary.Sections)))
		count := min(len(summary.Sections), maxItemsToShow)
		for i := 0; i < count; i++ {
			section := summary.Sections[i]
			sb.WriteString(fmt.Sprintf("  • [%s] %s\n", section.Category, section.URL))
		}
		if len(summary.Sections) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(summary.Sections)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(summary.Skipped) > 0 {
		sb.WriteString(fmt.Sprintf("Skipped (%d):\n", len(summary.Skipped)))
		for _, skipped := range summary.Skipped {
			sb.WriteString(fmt.Sprintf("  • [%s] %s (%s)\n", skipped.Category, skipped.URL, skipped.Kind))
		}
		sb.WriteString("\n")
	}

	if summary.Omitted > 0 {
		sb.WriteString(fmt.Sprintf("Not fetched (budget reached): %d\n", summary.Omitted))
	}

	sb.WriteString(fmt.Sprintf("Content:   %d chars", summary.ContentLength))
	if summary.Truncated {
		sb.WriteString(" (truncated)")
	}

	p.printBox("PORTFOLIO CONTENT", sb.String())
}
