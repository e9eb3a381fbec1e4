package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// WriteFile creates a file with the given contents, failing the test on error.
func WriteFile(t testing.TB, path string, contents []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create parent directory: %v", err)
	}
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Backdate rewinds a file's modification time, failing the test on error.
func Backdate(t testing.TB, path string, age time.Duration) {
	t.Helper()
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("backdate %s: %v", path, err)
	}
}
