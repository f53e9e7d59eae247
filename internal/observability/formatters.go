// Package observability provides formatted output utilities for CLI runs.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/marisol/resume-optimizer/internal/report"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of keywords to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for pipeline results
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

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintMatchReport outputs a human-readable summary of the evaluation
// the final pipeline stage produced.
func (p *Printer) PrintMatchReport(r *report.Report) {
	if r == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Match score:  %d/100\n", r.MatchScore))

	if len(r.ChosenKeywords) > 0 {
		sb.WriteString("\nKeywords woven in:\n")
		count := min(len(r.ChosenKeywords), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", r.ChosenKeywords[i]))
		}
		if len(r.ChosenKeywords) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(r.ChosenKeywords)-maxItemsToShow))
		}
	}

	if len(r.MissingKeywords) > 0 {
		sb.WriteString("\nStill missing from the resume:\n")
		count := min(len(r.MissingKeywords), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", r.MissingKeywords[i]))
		}
		if len(r.MissingKeywords) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(r.MissingKeywords)-maxItemsToShow))
		}
	}

	p.printBox("MATCH REPORT", strings.TrimSuffix(sb.String(), "\n"))
}
