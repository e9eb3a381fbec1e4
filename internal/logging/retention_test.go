package logging_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"voxpitch/internal/logging"
)

func writeLogFile(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("line\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if age > 0 {
		stamp := time.Now().Add(-age)
		if err := os.Chtimes(path, stamp, stamp); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func TestCleanupOldLogsPrunesAgedFiles(t *testing.T) {
	dir := t.TempDir()
	old := writeLogFile(t, dir, "voxpitch-20260101-000000.log", 72*time.Hour)
	fresh := writeLogFile(t, dir, "voxpitch-20260830-120000.log", time.Hour)
	unrelated := writeLogFile(t, dir, "jobs.db", 72*time.Hour)

	logging.CleanupOldLogs(logging.NewNop(), 2,
		logging.RetentionTarget{Dir: dir, Pattern: "voxpitch-*.log"})

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("aged log should be removed, stat err %v", err)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh log should survive: %v", err)
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Fatalf("non-matching file should survive: %v", err)
	}
}

func TestCleanupOldLogsZeroDisables(t *testing.T) {
	dir := t.TempDir()
	old := writeLogFile(t, dir, "voxpitch-20250101-000000.log", 400*24*time.Hour)

	logging.CleanupOldLogs(logging.NewNop(), 0,
		logging.RetentionTarget{Dir: dir, Pattern: "voxpitch-*.log"})

	if _, err := os.Stat(old); err != nil {
		t.Fatalf("pruning disabled, file should survive: %v", err)
	}
}

func TestCleanupOldLogsIgnoresMissingDir(t *testing.T) {
	logging.CleanupOldLogs(logging.NewNop(), 1,
		logging.RetentionTarget{Dir: filepath.Join(t.TempDir(), "absent"), Pattern: "*.log"})
}
