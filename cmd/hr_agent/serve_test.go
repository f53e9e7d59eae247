package main

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServeCommand_MissingAPIKey(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "serve")
	cmd.Env = envWithout("GEMINI_API_KEY", "AUTH_MODE", "JWT_SECRET", "SUPABASE_URL", "SUPABASE_ANON_KEY")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "GEMINI_API_KEY environment variable is required")
}

func TestRootCommand_ListsSubcommands(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "--help")
	output, err := cmd.CombinedOutput()

	assert.NoError(t, err)
	for _, sub := range []string{"serve", "run", "runs"} {
		assert.Contains(t, string(output), sub)
	}
}
