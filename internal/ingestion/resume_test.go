package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeText_FileNotFound(t *testing.T) {
	text, err := ResumeText("/nonexistent/resume.pdf")

	assert.Error(t, err)
	assert.Empty(t, text)
}

func TestResumeText_NotAPDF(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "resume.pdf")
	err := os.WriteFile(path, []byte("plain text, not a PDF"), 0644)
	require.NoError(t, err)

	text, err := ResumeText(path)

	assert.Error(t, err)
	assert.Empty(t, text)
	assert.Contains(t, err.Error(), "failed to open resume PDF")
}
