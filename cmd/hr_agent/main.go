// Package main provides the entry point for the Resume Optimizer HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hr_agent",
	Short: "Resume Optimizer HTTP API Server",
	Long:  "Resume Optimizer tailors uploaded resumes to job postings with a multi-stage AI pipeline, streaming live progress and serving the finished PDF over a REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
