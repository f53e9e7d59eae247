// Package jobs implements the lifecycle of resume optimization jobs:
// the process-wide registry, per-job progress queues, and the worker
// that runs the pipeline and reports its outcome.
package jobs

import "encoding/json"

// Event kinds carried on a job's progress queue.
const (
	EventLog      = "log"
	EventComplete = "complete"
	EventError    = "error"
)

// Event is one progress message for a job. Log and error events carry
// text in Data; complete events carry the evaluation report and the
// artifact's base filename.
type Event struct {
	Type     string          `json:"type"`
	Data     string          `json:"data,omitempty"`
	Report   json.RawMessage `json:"report,omitempty"`
	Filename string          `json:"filename,omitempty"`
}

// Terminal reports whether the event ends a job's stream. Exactly one
// terminal event is produced per job and it is always the last one.
func (e Event) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

// LogEvent wraps a progress line.
func LogEvent(line string) Event {
	return Event{Type: EventLog, Data: line}
}

// ErrorEvent wraps a terminal failure message.
func ErrorEvent(message string) Event {
	return Event{Type: EventError, Data: message}
}

// CompleteEvent wraps the terminal success payload.
func CompleteEvent(report json.RawMessage, filename string) Event {
	return Event{Type: EventComplete, Report: report, Filename: filename}
}
