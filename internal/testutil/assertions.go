package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/trainctl/internal/app"
	"github.com/specialistvlad/trainctl/internal/config"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// AssertResolved checks that key resolved to want and came from src.
func AssertResolved(t *testing.T, result *HarnessResult, key string, want cty.Value, src config.Source) {
	t.Helper()

	require.NotNil(t, result.App, "harness produced no app")
	tree := result.App.Config()
	require.NotNil(t, tree, "run stopped before the config was resolved")

	e, ok := tree.Entry(key)
	require.True(t, ok, "key %q was not resolved", key)
	require.True(t, e.Value.RawEquals(want), "key %q: got %#v, want %#v", key, e.Value, want)
	require.Equal(t, src, e.Source, "key %q came from the wrong source", key)
}

// AssertRunArtifacts checks that the run finished and left its saved config
// in the log directory. It returns the decoded saved config.
func AssertRunArtifacts(t *testing.T, result *HarnessResult) cty.Value {
	t.Helper()

	require.NoError(t, result.Err)
	res := result.App.Result()
	require.NotNil(t, res, "run did not produce a result")

	path := filepath.Join(res.LogDir, app.SaveConfigFilename)
	_, err := os.Stat(path)
	require.NoError(t, err, "saved config missing from %s", res.LogDir)

	saved, err := config.ReadFile(path)
	require.NoError(t, err)
	return saved
}
