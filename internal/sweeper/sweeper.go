package sweeper

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"voxpitch/internal/logging"
)

// Sweeper removes artifacts older than the retention TTL on a fixed interval.
// It is deliberately not transactional with request handling: a fetch racing
// a removal observes not-found, never partial bytes.
type Sweeper struct {
	dirs     []string
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures the sweeper.
type Option func(*Sweeper)

// WithClock injects a time source (primarily for tests).
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a sweeper over the given directories.
func New(dirs []string, ttl, interval time.Duration, logger *slog.Logger, opts ...Option) *Sweeper {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Sweeper{
		dirs:     dirs,
		ttl:      ttl,
		interval: interval,
		logger:   logger.With(logging.String("component", "sweeper")),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes sweep passes until ctx is cancelled. The current pass is
// finished before Run returns; shutdown never interrupts a batch mid-file.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("sweeper started",
		logging.Duration("interval", s.interval),
		logging.Duration("ttl", s.ttl),
	)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep runs one pass over every directory. Errors on individual files are
// logged and skipped; one bad entry never aborts the rest of the batch.
func (s *Sweeper) Sweep() {
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for _, dir := range s.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			s.logger.Warn("sweep list failed", logging.String("dir", dir), logging.Error(err))
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				// Already gone; deletion races are expected.
				continue
			}
			if !info.ModTime().Before(cutoff) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				s.logger.Warn("sweep remove failed; file remains",
					logging.String("path", path),
					logging.Error(err),
				)
				continue
			}
			removed++
			s.logger.Debug("artifact expired", logging.String("path", path))
		}
	}
	if removed > 0 {
		s.logger.Info("sweep pass complete", logging.Int("removed", removed))
	}
}
