// Package pipeline orchestrates the staged resume optimization flow:
// ingest the job posting and resume, analyze, build a keyword strategy,
// rewrite, review, save the document, and evaluate the match.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/marisol/resume-optimizer/internal/db"
	"github.com/marisol/resume-optimizer/internal/ingestion"
	"github.com/marisol/resume-optimizer/internal/llm"
	"github.com/marisol/resume-optimizer/internal/prompts"
)

// ErrNoClient is returned when the pipeline runs without an LLM client.
var ErrNoClient = fmt.Errorf("no LLM client configured")

// Request holds the inputs for one optimization run. JobURL and JobText
// are alternatives; when both are set the text wins.
type Request struct {
	JobURL     string
	JobText    string
	ResumePath string
}

// Analysis carries the fields of the job analysis the pipeline itself
// needs. The full analysis JSON rides along as text for later stages.
type Analysis struct {
	Company   string `json:"company"`
	RoleTitle string `json:"role_title"`
}

// Pipeline drives the staged optimization flow against an LLM client.
type Pipeline struct {
	client      llm.Client
	outputDir   string
	databaseURL string

	// Swappable in tests.
	ingestJob     func(ctx context.Context, urlStr string, sink io.Writer) (string, error)
	extractResume func(path string) (string, error)
}

// New creates a pipeline writing generated documents to outputDir.
// databaseURL is optional; when set, each run leaves an audit trail.
func New(client llm.Client, outputDir, databaseURL string) *Pipeline {
	return &Pipeline{
		client:        client,
		outputDir:     outputDir,
		databaseURL:   databaseURL,
		ingestJob:     ingestion.JobPosting,
		extractResume: ingestion.ResumeText,
	}
}

// Run executes the full optimization flow and returns the path of the
// generated markdown resume plus the raw evaluation report text.
// Progress lines are written to sink as the stages advance.
func (p *Pipeline) Run(ctx context.Context, req Request, sink io.Writer) (string, string, error) {
	if p.client == nil {
		return "", "", ErrNoClient
	}

	// Best-effort audit trail; the run proceeds identically without it.
	var database *db.DB
	var runID uuid.UUID
	if p.databaseURL != "" {
		var err error
		database, err = db.Connect(ctx, p.databaseURL)
		if err != nil {
			fmt.Fprintf(sink, "Warning: failed to connect to database: %v\n", err)
			fmt.Fprintf(sink, "Continuing without run history\n")
			database = nil
		} else {
			defer database.Close()
		}
	}
	status := "failed"
	documentPath := ""
	defer func() {
		if database != nil && runID != uuid.Nil {
			_ = database.CompleteRun(ctx, runID, status, documentPath)
		}
	}()

	// The job posting and the resume are independent inputs; fetch both
	// at once.
	var jobText, resumeText string
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := p.resolveJobText(gCtx, req, sink)
		if err != nil {
			return fmt.Errorf("job ingestion failed: %w", err)
		}
		jobText = text
		return nil
	})
	g.Go(func() error {
		text, err := p.extractResume(req.ResumePath)
		if err != nil {
			return fmt.Errorf("resume extraction failed: %w", err)
		}
		resumeText = text
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", "", err
	}

	fmt.Fprintf(sink, "Step 1/6: analyzing job posting\n")
	analysisText, err := p.generateJSON(ctx, "analyze-job", map[string]string{
		"JobText": jobText,
	})
	if err != nil {
		return "", "", fmt.Errorf("job analysis failed: %w", err)
	}
	analysis := parseAnalysis(analysisText)

	if database != nil {
		runID, err = database.CreateRun(ctx, analysis.Company, analysis.RoleTitle, req.JobURL)
		if err != nil {
			fmt.Fprintf(sink, "Warning: failed to record run: %v\n", err)
		} else {
			_ = database.SaveStageText(ctx, runID, db.StageJobPosting, jobText)
			_ = database.SaveStageText(ctx, runID, db.StageResumeText, resumeText)
			_ = database.SaveStageText(ctx, runID, db.StageAnalysis, analysisText)
		}
	}

	fmt.Fprintf(sink, "Step 2/6: building keyword strategy\n")
	strategy, err := p.generate(ctx, "keyword-strategy", map[string]string{
		"JobText":  jobText,
		"Analysis": analysisText,
	})
	if err != nil {
		return "", "", fmt.Errorf("keyword strategy failed: %w", err)
	}
	if database != nil && runID != uuid.Nil {
		_ = database.SaveStageText(ctx, runID, db.StageStrategy, strategy)
	}

	fmt.Fprintf(sink, "Step 3/6: rewriting resume\n")
	rewritten, err := p.generate(ctx, "rewrite-resume", map[string]string{
		"ResumeText": resumeText,
		"Strategy":   strategy,
	})
	if err != nil {
		return "", "", fmt.Errorf("resume rewrite failed: %w", err)
	}
	if database != nil && runID != uuid.Nil {
		_ = database.SaveStageText(ctx, runID, db.StageRewrite, rewritten)
	}

	fmt.Fprintf(sink, "Step 4/6: reviewing resume\n")
	finalResume, err := p.generate(ctx, "review-resume", map[string]string{
		"JobText": jobText,
		"Resume":  rewritten,
	})
	if err != nil {
		return "", "", fmt.Errorf("resume review failed: %w", err)
	}
	if database != nil && runID != uuid.Nil {
		_ = database.SaveStageText(ctx, runID, db.StageReview, finalResume)
	}

	fmt.Fprintf(sink, "Step 5/6: saving resume\n")
	docPath, err := p.saveResume(analysis, finalResume)
	if err != nil {
		return "", "", fmt.Errorf("saving resume failed: %w", err)
	}
	fmt.Fprintf(sink, "Saved %s\n", filepath.Base(docPath))
	documentPath = docPath

	fmt.Fprintf(sink, "Step 6/6: evaluating match\n")
	rawReport, err := p.generateJSON(ctx, "evaluate-match", map[string]string{
		"JobText": jobText,
		"Resume":  finalResume,
	})
	if err != nil {
		return "", "", fmt.Errorf("evaluation failed: %w", err)
	}
	if database != nil && runID != uuid.Nil {
		_ = database.SaveStageText(ctx, runID, db.StageReport, rawReport)
	}

	status = "completed"
	return docPath, rawReport, nil
}

// resolveJobText returns the cleaned job posting text from whichever
// input the request carries.
func (p *Pipeline) resolveJobText(ctx context.Context, req Request, sink io.Writer) (string, error) {
	if req.JobText != "" {
		return ingestion.CleanText(req.JobText), nil
	}
	if req.JobURL == "" {
		return "", fmt.Errorf("no job posting URL or text provided")
	}
	return p.ingestJob(ctx, req.JobURL, sink)
}

// generate renders a prompt template and runs it through the client.
func (p *Pipeline) generate(ctx context.Context, key string, data map[string]string) (string, error) {
	template, err := prompts.Get("optimization.json", key)
	if err != nil {
		return "", err
	}

	text, err := p.client.GenerateContent(ctx, prompts.Format(template, data))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// generateJSON is generate for stages that must return JSON.
func (p *Pipeline) generateJSON(ctx context.Context, key string, data map[string]string) (string, error) {
	template, err := prompts.Get("optimization.json", key)
	if err != nil {
		return "", err
	}

	text, err := p.client.GenerateJSON(ctx, prompts.Format(template, data))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// parseAnalysis pulls the company and role out of the analysis JSON.
// Malformed analysis output is not fatal; the fields stay empty.
func parseAnalysis(text string) Analysis {
	var analysis Analysis
	_ = json.Unmarshal([]byte(text), &analysis)
	return analysis
}

// saveResume writes the final markdown under the output directory,
// named after the company and role.
func (p *Pipeline) saveResume(analysis Analysis, content string) (string, error) {
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	company := sanitizeName(analysis.Company)
	if company == "" {
		company = "Company"
	}
	role := sanitizeName(analysis.RoleTitle)
	if role == "" {
		role = "Role"
	}

	path := filepath.Join(p.outputDir, fmt.Sprintf("Resume_%s_%s.md", company, role))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write resume: %w", err)
	}
	return path, nil
}

var nonFilenameChars = regexp.MustCompile(`[^A-Za-z0-9]+`)

// sanitizeName reduces a free-form name to a filename-safe token.
func sanitizeName(name string) string {
	return strings.Trim(nonFilenameChars.ReplaceAllString(name, "_"), "_")
}
