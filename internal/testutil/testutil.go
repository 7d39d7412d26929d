// Package testutil provides testing utilities for crossconveyor tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// WriteConfig writes a config.yaml with the given content into a temporary
// directory and returns its path.
func WriteConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

// FinishWithin runs fn on a new goroutine and fails the test if it has not
// returned after timeout. It is how tests assert that concurrent feeds never
// deadlock.
func FinishWithin(t *testing.T, timeout time.Duration, fn func()) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("did not finish within %s (possible deadlock)", timeout)
	}
}
