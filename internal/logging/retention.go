package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RetentionTarget names a directory and filename pattern to prune.
type RetentionTarget struct {
	Dir     string
	Pattern string
}

// CleanupOldLogs removes files matching the targets that are older than
// retentionDays. A retentionDays of 0 disables pruning. Failures are logged
// and skipped; a stubborn file never aborts the pass.
func CleanupOldLogs(logger *slog.Logger, retentionDays int, targets ...RetentionTarget) {
	if retentionDays <= 0 {
		return
	}
	if logger == nil {
		logger = NewNop()
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	for _, target := range targets {
		dir := strings.TrimSpace(target.Dir)
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if pat := strings.TrimSpace(target.Pattern); pat != "" {
				matched, err := filepath.Match(pat, entry.Name())
				if err != nil || !matched {
					continue
				}
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if !info.ModTime().Before(cutoff) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				logger.Warn("log retention remove failed",
					String("path", path),
					Error(err),
				)
				continue
			}
			logger.Info("log pruned", String("path", path))
		}
	}
}
