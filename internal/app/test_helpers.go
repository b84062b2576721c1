package app

import (
	"bytes"
	"os"
	"sync"
	"testing"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates an App whose output goes to one buffer and whose
// debug logs go to another. Options given later override the test defaults.
func SetupAppTest(t *testing.T, modelClass string, opts ...Option) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()

	outBuffer := &SafeBuffer{}
	logBuffer := &SafeBuffer{}
	defaults := []Option{
		WithLogging("debug", "text", logBuffer),
		WithLookupEnv(func(string) (string, bool) { return "", false }),
	}
	testApp := New(outBuffer, nil, modelClass, append(defaults, opts...)...)

	t.Cleanup(func() {
		if os.Getenv("TRAINCTL_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, outBuffer, logBuffer
}
