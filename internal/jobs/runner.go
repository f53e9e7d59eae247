package jobs

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sync/semaphore"

	"github.com/marisol/resume-optimizer/internal/report"
)

// PipelineFunc runs the optimization pipeline for one job, writing
// progress lines to sink. It returns the generated markdown document
// path (empty when none was produced) and the raw evaluation report
// text. It may take minutes and may fail for any reason.
type PipelineFunc func(ctx context.Context, jobURL, resumePath string, sink io.Writer) (docPath, rawReport string, err error)

// RenderFunc converts the markdown document at docPath into a paginated
// PDF and returns the PDF's path.
type RenderFunc func(ctx context.Context, docPath string) (string, error)

// Runner executes optimization jobs on worker goroutines with bounded
// concurrency. Submission stays instant: the worker waits for a slot
// before running the pipeline, so saturation queues jobs instead of
// rejecting them.
type Runner struct {
	registry *Registry
	pipeline PipelineFunc
	render   RenderFunc
	slots    *semaphore.Weighted
}

// NewRunner creates a runner allowing up to maxConcurrent pipelines at
// once.
func NewRunner(registry *Registry, pipeline PipelineFunc, render RenderFunc, maxConcurrent int64) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Runner{
		registry: registry,
		pipeline: pipeline,
		render:   render,
		slots:    semaphore.NewWeighted(maxConcurrent),
	}
}

// Start launches the worker goroutine for a job and returns
// immediately. The context must outlive the submitting request, so
// callers pass a background context rather than the request's.
func (r *Runner) Start(ctx context.Context, job *Job, jobURL, resumePath string) {
	go r.run(ctx, job, jobURL, resumePath)
}

// run drives one job to its terminal event. Every failure path pushes
// exactly one error event; nothing escapes to crash the process.
func (r *Runner) run(ctx context.Context, job *Job, jobURL, resumePath string) {
	defer r.registry.Finish(job.ID)
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[job %s] worker panic: %v", job.ID, p)
			job.Queue.Push(ErrorEvent(fmt.Sprintf("%v", p)))
		}
	}()

	if err := r.slots.Acquire(ctx, 1); err != nil {
		job.Queue.Push(ErrorEvent(err.Error()))
		return
	}
	defer r.slots.Release(1)

	sink := NewLogSink(job.ID, job.Queue)
	docPath, rawReport, err := r.pipeline(ctx, jobURL, resumePath, sink)
	sink.Flush()
	if err != nil {
		log.Printf("[job %s] pipeline failed: %v", job.ID, err)
		job.Queue.Push(ErrorEvent(err.Error()))
		return
	}

	if docPath == "" || !fileExists(docPath) {
		job.Queue.Push(ErrorEvent("Pipeline failed to generate resume"))
		return
	}

	pdfPath, err := r.render(ctx, docPath)
	if err != nil {
		log.Printf("[job %s] rendering failed: %v", job.ID, err)
		job.Queue.Push(ErrorEvent(err.Error()))
		return
	}

	job.SetArtifact(pdfPath)
	job.Queue.Push(CompleteEvent(report.Parse(rawReport), filepath.Base(pdfPath)))
	log.Printf("[job %s] completed: %s", job.ID, pdfPath)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
