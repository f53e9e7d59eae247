package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/marisol/resume-optimizer/internal/db"
)

var runsCommand = &cobra.Command{
	Use:   "runs [run_id]",
	Short: "List past optimization runs recorded in PostgreSQL",
	Long: `Lists the audit trail of completed and failed optimization runs.

With a run_id and --stage, prints the stored text of one pipeline stage
(job_posting, resume_text, analysis, strategy, rewrite, review, report).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRunsCmd,
}

var (
	runsLimit       int
	runsStage       string
	runsDatabaseURL string
)

func init() {
	runsCommand.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to list")
	runsCommand.Flags().StringVar(&runsStage, "stage", "", "Stage artifact to print (requires run_id)")
	runsCommand.Flags().StringVar(&runsDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	rootCmd.AddCommand(runsCommand)
}

func runRunsCmd(_ *cobra.Command, args []string) error {
	databaseURL := runsDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	ctx := context.Background()

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if len(args) == 1 {
		return printStage(ctx, database, args[0])
	}
	return listRuns(ctx, database)
}

func printStage(ctx context.Context, database *db.DB, rawID string) error {
	if runsStage == "" {
		return fmt.Errorf("--stage is required when a run_id is given")
	}

	runID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid run_id format: %w", err)
	}

	text, err := database.GetStageText(ctx, runID, runsStage)
	if err != nil {
		return fmt.Errorf("failed to fetch %s artifact: %w", runsStage, err)
	}
	if text == "" {
		return fmt.Errorf("no %s artifact recorded for run %s", runsStage, runID)
	}

	fmt.Println(text)
	return nil
}

func listRuns(ctx context.Context, database *db.DB) error {
	runs, err := database.ListRuns(ctx, runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No optimization runs recorded.")
		return nil
	}

	for _, r := range runs {
		title := r.Company
		if r.RoleTitle != "" {
			if title != "" {
				title += " / "
			}
			title += r.RoleTitle
		}
		fmt.Printf("%s  %-9s  %s  %s\n", r.ID, r.Status, r.CreatedAt.Format("2006-01-02 15:04"), title)
	}
	return nil
}
