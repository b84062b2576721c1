package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/trainctl/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should make the parser report a clean exit.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, args, map[string]string{})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when help is requested")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
	require.Contains(t, out.String(), "--model.lr")
	require.Contains(t, out.String(), "--data.batch_size")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, args, map[string]string{})

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_InvalidEnvironment(t *testing.T) {
	t.Parallel()

	err := run(&bytes.Buffer{}, nil, map[string]string{"TRAINCTL_LOG_FORMAT": "xml"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
}

func TestRun_MissingLearningRate(t *testing.T) {
	t.Parallel()

	err := run(&bytes.Buffer{}, []string{"--trainer.max_epochs=1"}, map[string]string{})

	require.Error(t, err)
	var exitErr *cli.ExitError
	require.False(t, errors.As(err, &exitErr), "construction errors keep exit code 1")
	require.Contains(t, err.Error(), "missing required parameter")
}

func TestRun_TrainsFromConfigFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	cfgPath := filepath.Join(root, "config.yaml")
	cfg := "trainer:\n  max_epochs: 2\n  default_root_dir: " + root + "\nmodel:\n  lr: 0.05\ndata:\n  n_samples: 32\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	environ := map[string]string{"TRAINCTL_PARSE_ENV": "true", "PL_DATA_BATCH_SIZE": "8"}

	// --- Act ---
	err := run(&bytes.Buffer{}, []string{"--config", cfgPath}, environ)

	// --- Assert ---
	require.NoError(t, err)
	saved, err := os.ReadFile(filepath.Join(root, "logs", "version_0", "config.yaml"))
	require.NoError(t, err)
	require.Contains(t, string(saved), "batch_size: 8")
	require.Contains(t, string(saved), "lr: 0.05")
}
