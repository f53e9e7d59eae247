package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marisol/resume-optimizer/internal/ingestion"
	"github.com/marisol/resume-optimizer/internal/llm"
	"github.com/marisol/resume-optimizer/internal/observability"
	"github.com/marisol/resume-optimizer/internal/pipeline"
	"github.com/marisol/resume-optimizer/internal/rendering"
	"github.com/marisol/resume-optimizer/internal/report"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the resume optimization pipeline once from the command line",
	Long: `Runs the full optimization pipeline for one job posting and one resume:
analysis -> keyword strategy -> rewrite -> review -> save -> evaluation.

Progress prints to stdout as the stages run; the match report prints at the end.`,
	RunE: runPipelineCmd,
}

var (
	runJobURL      string
	runJobFile     string
	runResumePath  string
	runOutputDir   string
	runAPIKey      string
	runModel       string
	runDatabaseURL string
	runSkipPDF     bool
)

func init() {
	runCommand.Flags().StringVar(&runJobURL, "job-url", "", "URL to fetch the job posting from (mutually exclusive with --job)")
	runCommand.Flags().StringVarP(&runJobFile, "job", "j", "", "Path to a job posting text file (mutually exclusive with --job-url)")
	runCommand.Flags().StringVarP(&runResumePath, "resume", "r", "", "Path to the resume PDF (required)")
	runCommand.Flags().StringVarP(&runOutputDir, "out", "o", "new_resumes", "Directory for the generated resume")
	runCommand.Flags().BoolVar(&runSkipPDF, "skip-pdf", false, "Skip PDF rendering and keep the markdown only")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	runCommand.Flags().StringVar(&runModel, "model", "", "Gemini model name (optional, defaults to GEMINI_MODEL env var)")

	// Database URL for the run audit trail
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	_ = runCommand.MarkFlagRequired("resume")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(_ *cobra.Command, _ []string) error {
	if runJobURL == "" && runJobFile == "" {
		return fmt.Errorf("either --job or --job-url must be provided")
	}
	if runJobURL != "" && runJobFile != "" {
		return fmt.Errorf("--job and --job-url are mutually exclusive; provide only one")
	}

	apiKey := runAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	// NewGeminiClient falls back to its default model on empty input
	model := runModel
	if model == "" {
		model = os.Getenv("GEMINI_MODEL")
	}

	databaseURL := runDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}

	req := pipeline.Request{JobURL: runJobURL, ResumePath: runResumePath}
	if runJobFile != "" {
		text, err := ingestion.JobPostingFromFile(runJobFile)
		if err != nil {
			return err
		}
		req.JobText = text
	}

	ctx := context.Background()

	client, err := llm.NewGeminiClient(ctx, apiKey, model)
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer func() { _ = client.Close() }()

	p := pipeline.New(client, runOutputDir, databaseURL)
	docPath, rawReport, err := p.Run(ctx, req, os.Stdout)
	if err != nil {
		return err
	}

	if !runSkipPDF {
		pdfPath, err := rendering.RenderResume(ctx, docPath)
		if err != nil {
			// The markdown is already on disk; a missing browser should
			// not discard a finished optimization.
			fmt.Printf("Warning: PDF rendering failed: %v\n", err)
		} else {
			fmt.Printf("Saved %s\n", pdfPath)
		}
	}

	printReport(rawReport)
	return nil
}

func printReport(raw string) {
	parsed := report.Parse(raw)

	if r, ok := report.Decode(parsed); ok {
		fmt.Println()
		observability.NewPrinter(os.Stdout).PrintMatchReport(r)
		return
	}

	// Degraded report: show what the model actually returned
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, parsed, "", "  "); err != nil {
		fmt.Printf("\nMatch report:\n%s\n", parsed)
		return
	}
	fmt.Printf("\nMatch report:\n%s\n", pretty.String())
}
