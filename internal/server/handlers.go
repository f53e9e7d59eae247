package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// StartResponse represents the response for /api/start-optimization
type StartResponse struct {
	JobID string `json:"job_id"`
}

// handleStartOptimization accepts a job posting URL plus a base resume PDF
// and queues an optimization job.
func (s *Server) handleStartOptimization(w http.ResponseWriter, r *http.Request) {
	jobURL := r.FormValue("url")
	file, _, err := r.FormFile("resume")
	if jobURL == "" || err != nil {
		s.errorResponse(w, http.StatusBadRequest, "URL and base resume PDF are required")
		return
	}
	defer file.Close()

	jobID := uuid.New().String()

	resumePath, err := s.saveUpload(jobID, file)
	if err != nil {
		log.Printf("Failed to save upload for job %s: %v", jobID, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to save uploaded resume")
		return
	}

	job, err := s.registry.Create(jobID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("Starting optimization job %s for %s", jobID, jobURL)

	// The job outlives this request, so it runs on a background context.
	s.runner.Start(context.Background(), job, jobURL, resumePath)

	s.jsonResponse(w, http.StatusAccepted, StartResponse{JobID: jobID})
}

// saveUpload stores the uploaded resume under the uploads directory, keyed
// by job ID.
func (s *Server) saveUpload(jobID string, file io.Reader) (string, error) {
	if err := os.MkdirAll(s.cfg.UploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	path := filepath.Join(s.cfg.UploadsDir, jobID+"_base.pdf")
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	return path, nil
}

// handleStreamJob streams a job's progress as Server-Sent Events until a
// terminal event is delivered or the client goes away.
func (s *Server) handleStreamJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	job, ok := s.registry.Get(jobID)
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	for {
		ev, ok := job.Queue.Pop(s.cfg.StreamPopTimeout)
		if !ok {
			// Nothing happened for a while; nudge the connection so
			// intermediaries keep it open.
			if err := sse.WriteComment("keep-alive"); err != nil {
				return
			}
			continue
		}

		if err := sse.WriteData(ev); err != nil {
			return
		}
		if ev.Terminal() {
			return
		}
	}
}

// handleDownloadPDF serves the finished resume PDF for a completed job.
func (s *Server) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	job, ok := s.registry.Get(jobID)
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "Not found")
		return
	}

	path, ok := job.Artifact()
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "Not found")
		return
	}
	if _, err := os.Stat(path); err != nil {
		s.errorResponse(w, http.StatusNotFound, "Not found")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}
