// Package db provides PostgreSQL persistence for the optimization audit
// trail. Every write is optional: callers treat failures as warnings and
// the service runs fine with no database at all.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Stage names for saved run artifacts.
const (
	StageJobPosting = "job_posting"
	StageResumeText = "resume_text"
	StageAnalysis   = "analysis"
	StageStrategy   = "strategy"
	StageRewrite    = "rewrite"
	StageReview     = "review"
	StageReport     = "report"
)

// Run is one recorded optimization run.
type Run struct {
	ID           uuid.UUID  `json:"id"`
	Company      string     `json:"company"`
	RoleTitle    string     `json:"role_title"`
	JobURL       string     `json:"job_url"`
	Status       string     `json:"status"`
	DocumentPath string     `json:"document_path,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// CreateRun records the start of an optimization run and returns its ID
func (db *DB) CreateRun(ctx context.Context, company, roleTitle, jobURL string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO optimization_runs (company, role_title, job_url, status)
		 VALUES ($1, $2, $3, 'running')
		 RETURNING id`,
		company, roleTitle, jobURL,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks an optimization run as finished with its final
// status and, when one was produced, the generated document path
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status, documentPath string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE optimization_runs
		 SET status = $1, document_path = $2, completed_at = NOW()
		 WHERE id = $3`,
		status, documentPath, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveStageText stores the text output of a pipeline stage, replacing
// any previous value for the same run and stage
func (db *DB) SaveStageText(ctx context.Context, runID uuid.UUID, stage, text string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO run_artifacts (run_id, stage, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, stage) DO UPDATE SET content = $3, created_at = NOW()`,
		runID, stage, text,
	)
	if err != nil {
		return fmt.Errorf("failed to save %s artifact: %w", stage, err)
	}
	return nil
}

// GetStageText retrieves a stage artifact by run ID and stage name.
// Returns an empty string when the stage was never saved.
func (db *DB) GetStageText(ctx context.Context, runID uuid.UUID, stage string) (string, error) {
	var text string
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM run_artifacts WHERE run_id = $1 AND stage = $2`,
		runID, stage,
	).Scan(&text)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get %s artifact: %w", stage, err)
	}
	return text, nil
}

// ListRuns retrieves recent optimization runs
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, company, role_title, job_url, status, document_path, created_at, completed_at
		 FROM optimization_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var documentPath *string
		if err := rows.Scan(&run.ID, &run.Company, &run.RoleTitle, &run.JobURL, &run.Status, &documentPath, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if documentPath != nil {
			run.DocumentPath = *documentPath
		}
		runs = append(runs, run)
	}
	return runs, nil
}
