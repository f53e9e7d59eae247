package jobs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// popUntilTerminal drains the queue and returns the leading log lines plus
// the terminal event. It fails the test if no terminal event arrives.
func popUntilTerminal(t *testing.T, q *Queue) ([]string, Event) {
	t.Helper()
	var logs []string
	for i := 0; i < 100; i++ {
		ev, ok := q.Pop(2 * time.Second)
		require.True(t, ok, "queue went quiet before a terminal event")
		if ev.Terminal() {
			return logs, ev
		}
		require.Equal(t, EventLog, ev.Type)
		logs = append(logs, ev.Data)
	}
	t.Fatal("no terminal event after 100 pops")
	return nil, Event{}
}

func writeDoc(t *testing.T) string {
	t.Helper()
	docPath := filepath.Join(t.TempDir(), "Resume_Acme_Engineer.md")
	require.NoError(t, os.WriteFile(docPath, []byte("# Resume"), 0o644))
	return docPath
}

func TestRunnerSuccess(t *testing.T) {
	reg := NewRegistry(0)
	defer reg.Stop()

	docPath := writeDoc(t)
	raw := `{"match_score": 92, "chosen_keywords": ["Go"], "missing_keywords": ["Kubernetes"]}`

	pipeline := func(ctx context.Context, jobURL, resumePath string, sink io.Writer) (string, string, error) {
		assert.Equal(t, "https://example.com/job", jobURL)
		assert.Equal(t, "/tmp/job-1_base.pdf", resumePath)
		io.WriteString(sink, "Step 1/6: analyzing job posting\n")
		io.WriteString(sink, "Step 2/6: planning strategy\n")
		return docPath, raw, nil
	}
	render := func(ctx context.Context, path string) (string, error) {
		assert.Equal(t, docPath, path)
		return strings.TrimSuffix(path, ".md") + ".pdf", nil
	}

	runner := NewRunner(reg, pipeline, render, 2)
	job, err := reg.Create("job-1")
	require.NoError(t, err)

	runner.Start(context.Background(), job, "https://example.com/job", "/tmp/job-1_base.pdf")

	logs, ev := popUntilTerminal(t, job.Queue)
	assert.Equal(t, []string{"Step 1/6: analyzing job posting", "Step 2/6: planning strategy"}, logs)
	assert.Equal(t, EventComplete, ev.Type)
	assert.Equal(t, "Resume_Acme_Engineer.pdf", ev.Filename)
	assert.JSONEq(t, raw, string(ev.Report))

	// The artifact is visible by the time the complete event is observed.
	artifact, ok := job.Artifact()
	require.True(t, ok)
	assert.Equal(t, strings.TrimSuffix(docPath, ".md")+".pdf", artifact)

	// The job becomes eligible for eviction once the worker returns.
	assert.Eventually(t, func() bool {
		reg.evictFinished(time.Now().Add(time.Second))
		_, ok := reg.Get("job-1")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunnerPipelineError(t *testing.T) {
	reg := NewRegistry(0)
	defer reg.Stop()

	pipeline := func(ctx context.Context, jobURL, resumePath string, sink io.Writer) (string, string, error) {
		return "", "", errors.New("gemini quota exceeded")
	}
	runner := NewRunner(reg, pipeline, nil, 1)
	job, err := reg.Create("job-1")
	require.NoError(t, err)

	runner.Start(context.Background(), job, "https://example.com/job", "resume.pdf")

	_, ev := popUntilTerminal(t, job.Queue)
	assert.Equal(t, EventError, ev.Type)
	assert.Equal(t, "gemini quota exceeded", ev.Data)
}

func TestRunnerNoDocumentProduced(t *testing.T) {
	reg := NewRegistry(0)
	defer reg.Stop()

	// A report without a document still fails the job.
	pipeline := func(ctx context.Context, jobURL, resumePath string, sink io.Writer) (string, string, error) {
		return "", `{"match_score": 10, "chosen_keywords": [], "missing_keywords": []}`, nil
	}
	runner := NewRunner(reg, pipeline, nil, 1)
	job, err := reg.Create("job-1")
	require.NoError(t, err)

	runner.Start(context.Background(), job, "https://example.com/job", "resume.pdf")

	_, ev := popUntilTerminal(t, job.Queue)
	assert.Equal(t, EventError, ev.Type)
	assert.Equal(t, "Pipeline failed to generate resume", ev.Data)
}

func TestRunnerMissingDocumentFile(t *testing.T) {
	reg := NewRegistry(0)
	defer reg.Stop()

	pipeline := func(ctx context.Context, jobURL, resumePath string, sink io.Writer) (string, string, error) {
		return filepath.Join(t.TempDir(), "never_written.md"), "", nil
	}
	runner := NewRunner(reg, pipeline, nil, 1)
	job, err := reg.Create("job-1")
	require.NoError(t, err)

	runner.Start(context.Background(), job, "https://example.com/job", "resume.pdf")

	_, ev := popUntilTerminal(t, job.Queue)
	assert.Equal(t, EventError, ev.Type)
	assert.Equal(t, "Pipeline failed to generate resume", ev.Data)
}

func TestRunnerRenderError(t *testing.T) {
	reg := NewRegistry(0)
	defer reg.Stop()

	docPath := writeDoc(t)
	pipeline := func(ctx context.Context, jobURL, resumePath string, sink io.Writer) (string, string, error) {
		return docPath, "{}", nil
	}
	render := func(ctx context.Context, path string) (string, error) {
		return "", errors.New("chrome not found")
	}
	runner := NewRunner(reg, pipeline, render, 1)
	job, err := reg.Create("job-1")
	require.NoError(t, err)

	runner.Start(context.Background(), job, "https://example.com/job", "resume.pdf")

	_, ev := popUntilTerminal(t, job.Queue)
	assert.Equal(t, EventError, ev.Type)
	assert.Equal(t, "chrome not found", ev.Data)

	_, ok := job.Artifact()
	assert.False(t, ok)
}

func TestRunnerRecoversPanic(t *testing.T) {
	reg := NewRegistry(0)
	defer reg.Stop()

	pipeline := func(ctx context.Context, jobURL, resumePath string, sink io.Writer) (string, string, error) {
		panic("nil pointer somewhere deep")
	}
	runner := NewRunner(reg, pipeline, nil, 1)
	job, err := reg.Create("job-1")
	require.NoError(t, err)

	runner.Start(context.Background(), job, "https://example.com/job", "resume.pdf")

	_, ev := popUntilTerminal(t, job.Queue)
	assert.Equal(t, EventError, ev.Type)
	assert.Contains(t, ev.Data, "nil pointer somewhere deep")

	// Exactly one terminal event; the queue stays quiet afterwards.
	_, ok := job.Queue.Pop(50 * time.Millisecond)
	assert.False(t, ok)
}

func TestRunnerFlushesSinkBeforeTerminal(t *testing.T) {
	reg := NewRegistry(0)
	defer reg.Stop()

	pipeline := func(ctx context.Context, jobURL, resumePath string, sink io.Writer) (string, string, error) {
		io.WriteString(sink, "partial line without newline")
		return "", "", errors.New("boom")
	}
	runner := NewRunner(reg, pipeline, nil, 1)
	job, err := reg.Create("job-1")
	require.NoError(t, err)

	runner.Start(context.Background(), job, "https://example.com/job", "resume.pdf")

	logs, ev := popUntilTerminal(t, job.Queue)
	assert.Equal(t, []string{"partial line without newline"}, logs)
	assert.Equal(t, EventError, ev.Type)
}

func TestRunnerBoundsConcurrency(t *testing.T) {
	reg := NewRegistry(0)
	defer reg.Stop()

	started := make(chan string, 2)
	release := make(chan struct{})
	pipeline := func(ctx context.Context, jobURL, resumePath string, sink io.Writer) (string, string, error) {
		started <- jobURL
		<-release
		return "", "", errors.New("done")
	}
	runner := NewRunner(reg, pipeline, nil, 1)

	first, err := reg.Create("job-1")
	require.NoError(t, err)
	second, err := reg.Create("job-2")
	require.NoError(t, err)

	runner.Start(context.Background(), first, "first", "resume.pdf")

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first job never started")
	}

	// The second job is accepted immediately but must wait for a slot.
	runner.Start(context.Background(), second, "second", "resume.pdf")
	select {
	case <-started:
		t.Fatal("second job ran while the first still held the only slot")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("second job never started after the slot freed up")
	}

	popUntilTerminal(t, first.Queue)
	popUntilTerminal(t, second.Queue)
}

func TestRunnerCancelledContext(t *testing.T) {
	reg := NewRegistry(0)
	defer reg.Stop()

	pipeline := func(ctx context.Context, jobURL, resumePath string, sink io.Writer) (string, string, error) {
		t.Error("pipeline must not run with a cancelled context")
		return "", "", nil
	}
	runner := NewRunner(reg, pipeline, nil, 1)
	job, err := reg.Create("job-1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner.Start(ctx, job, "https://example.com/job", "resume.pdf")

	_, ev := popUntilTerminal(t, job.Queue)
	assert.Equal(t, EventError, ev.Type)
}
