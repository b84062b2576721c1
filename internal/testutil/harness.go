package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/trainctl/internal/app"
	"github.com/stretchr/testify/require"
)

// RootPlaceholder is replaced by the harness temp directory in file
// contents, args and environment values.
const RootPlaceholder = "{{root}}"

// Model and data module classes used unless the caller overrides them.
const (
	DefaultModelClass = "LinearRegression"
	DefaultDataClass  = "SyntheticRegression"
)

// Harness describes one integration run.
type Harness struct {
	// Files maps paths relative to the temp root to their content.
	Files map[string]string
	Args  []string
	// Env is served to the parser instead of the process environment.
	Env        map[string]string
	// DefaultConfigFiles are glob patterns loaded before any --config.
	DefaultConfigFiles []string
	ModelClass         string
	Options            []app.Option
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Output    string
	Err       error
	App       *app.App
	Dir       string
}

// RunIntegrationTest runs h with a background context.
func RunIntegrationTest(t *testing.T, h Harness) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, h)
}

// RunIntegrationTestWithContext writes the harness files into a fresh temp
// directory, builds an App over the core modules and runs it with h.Args.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, h Harness) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	expand := func(s string) string { return strings.ReplaceAll(s, RootPlaceholder, dir) }

	for name, content := range h.Files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(expand(content)), 0o644))
	}

	args := make([]string, len(h.Args))
	for i, a := range h.Args {
		args[i] = expand(a)
	}
	env := make(map[string]string, len(h.Env))
	for k, v := range h.Env {
		env[k] = expand(v)
	}

	patterns := make([]string, len(h.DefaultConfigFiles))
	for i, p := range h.DefaultConfigFiles {
		patterns[i] = expand(p)
	}

	modelClass := h.ModelClass
	if modelClass == "" {
		modelClass = DefaultModelClass
	}

	outBuffer := &app.SafeBuffer{}
	logBuffer := &app.SafeBuffer{}
	opts := []app.Option{
		app.WithDataModule(DefaultDataClass),
		app.WithLogging("debug", "text", logBuffer),
		app.WithLookupEnv(func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		}),
	}
	if len(patterns) > 0 {
		opts = append(opts, app.WithDefaultConfigFiles(patterns...))
	}
	opts = append(opts, h.Options...)

	var testApp *app.App
	var runErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				if os.Getenv("TRAINCTL_TEST_LOGS") == "true" {
					t.Logf("--- HARNESS RECOVERED PANIC ---\n%q", fmt.Sprintf("%v", r))
				}
				runErr = fmt.Errorf("application panicked | %v", r)
			}
		}()
		testApp = app.New(outBuffer, nil, modelClass, opts...)
		runErr = testApp.Run(ctx, args)
	}()

	if os.Getenv("TRAINCTL_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Output:    outBuffer.String(),
		Err:       runErr,
		App:       testApp,
		Dir:       dir,
	}
}
