package jobs

import (
	"bytes"
	"log"
	"strings"
	"sync"
)

// LogSink is an io.Writer handed to the pipeline as its progress
// destination. Every non-empty line written to it becomes a log event
// on the job's queue and is mirrored to the server log. Pushes never
// block, so pipeline execution is not slowed by a slow stream reader.
type LogSink struct {
	jobID string
	queue *Queue

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewLogSink creates a sink that feeds the given job queue.
func NewLogSink(jobID string, q *Queue) *LogSink {
	return &LogSink{jobID: jobID, queue: q}
}

// Write splits the input into lines, buffering a trailing partial line
// until the next write or Flush. Pipeline stages may write from
// concurrent goroutines.
func (s *LogSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf.Write(p)
	for {
		data := s.buf.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := string(data[:i])
		s.buf.Next(i + 1)
		s.emit(line)
	}
	return len(p), nil
}

// Flush pushes any buffered partial line. The worker calls this after
// the pipeline returns so no trailing output is lost.
func (s *LogSink) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf.Len() > 0 {
		s.emit(s.buf.String())
		s.buf.Reset()
	}
}

func (s *LogSink) emit(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	log.Printf("[job %s] %s", s.jobID, line)
	s.queue.Push(LogEvent(line))
}
