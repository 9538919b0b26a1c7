// Package testutil holds filesystem and environment helpers shared by the
// config and command tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ChdirTemp switches the working directory to a fresh temp directory for the
// duration of the test and returns it. Tests using it must not run in parallel.
func ChdirTemp(t *testing.T) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "workdesk-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	original, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change to %s: %v", dir, err)
	}

	t.Cleanup(func() {
		_ = os.Chdir(original)
		os.RemoveAll(dir)
	})
	return dir
}

// WriteFile writes content to name inside dir and returns the full path
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of path, failing the test when it is missing
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(content)
}

// ClearEnv unsets the named variables for the duration of the test so values
// from the developer's shell or a loaded .env do not leak in. Set-but-empty
// variables still count as set for flag sources, hence the unset.
func ClearEnv(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		t.Setenv(name, "") // restores the original value on cleanup
		os.Unsetenv(name)
	}
}
