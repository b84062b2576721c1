package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestExpandPatterns(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yaml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.yaml"), 0o700))

	patterns := []string{
		filepath.Join(dir, "notes.txt"),
		filepath.Join(dir, "*.yaml"),
		filepath.Join(dir, "a.yaml"), // already matched by the glob
		filepath.Join(dir, "missing.yaml"),
		"",
	}

	// --- Act ---
	files, err := ExpandPatterns(patterns)

	// --- Assert ---
	require.NoError(t, err)
	want := []string{
		filepath.Join(dir, "notes.txt"),
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.yaml"),
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("ExpandPatterns() mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandPatterns_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := ExpandPatterns([]string{"[unterminated"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid search pattern")
}

func TestExpandHome(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	got, err := expandHome("~/.config/trainctl/*.yaml")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config/trainctl/*.yaml"), got)

	got, err = expandHome("relative/~/path")
	require.NoError(t, err)
	require.Equal(t, "relative/~/path", got)
}
