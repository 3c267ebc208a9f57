package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_LoadError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A preset file with a syntax error fails while the app is constructed.
	invalidHCL := `
		preset "broken" {
			base {
		// Missing closing braces here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	err := os.WriteFile(filePath, []byte(invalidHCL), 0600)
	require.NoError(t, err, "failed to set up test file")

	args := []string{"-preset", "broken", filePath}
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, runErr)
	require.Contains(t, runErr.Error(), "failed to parse")
	require.Empty(t, out.String(), "nothing should be printed before the preset resolves")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_PrintsPreset(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"-preset", "supervised", "-set", "base.batch_size=32", "-format", "yaml"}
	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}

	// --- Act ---
	err := run(out, logs, args)

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), "kind: pipeline.Batch")
	require.Contains(t, out.String(), "batch_size: 32")
	require.Contains(t, out.String(), "transform_size: 1024")
	require.NotContains(t, out.String(), "level=", "logs must not be mixed into the output")
}
