package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/marisol/resume-optimizer/internal/auth"
	"github.com/marisol/resume-optimizer/internal/config"
	"github.com/marisol/resume-optimizer/internal/jobs"
	"github.com/marisol/resume-optimizer/internal/llm"
	"github.com/marisol/resume-optimizer/internal/pipeline"
	"github.com/marisol/resume-optimizer/internal/rendering"
	"github.com/marisol/resume-optimizer/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for submitting resume optimization jobs, streaming their progress, and downloading the finished PDF.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	ctx := context.Background()

	client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer func() { _ = client.Close() }()

	verifier, err := auth.FromConfig(cfg)
	if err != nil {
		return err
	}

	p := pipeline.New(client, cfg.OutputDir, cfg.DatabaseURL)
	runJob := func(ctx context.Context, jobURL, resumePath string, sink io.Writer) (string, string, error) {
		return p.Run(ctx, pipeline.Request{JobURL: jobURL, ResumePath: resumePath}, sink)
	}

	registry := jobs.NewRegistry(cfg.JobTTL)
	runner := jobs.NewRunner(registry, runJob, rendering.RenderResume, int64(cfg.MaxConcurrentJobs))

	srv := server.New(cfg, registry, runner, verifier)
	return srv.Start()
}
