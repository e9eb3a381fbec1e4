package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"voxpitch/internal/api"
	"voxpitch/internal/config"
	"voxpitch/internal/deps"
	"voxpitch/internal/jobs"
	"voxpitch/internal/logging"
	"voxpitch/internal/pipeline"
	"voxpitch/internal/server"
	"voxpitch/internal/store"
	"voxpitch/internal/sweeper"
	"voxpitch/internal/transform"
)

// Daemon wires the artifact store, transform engine, HTTP server, and
// retention sweeper together and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	journal *jobs.Store
	orch    *pipeline.Orchestrator
	server  *server.Server
	sweeper *sweeper.Sweeper

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	started time.Time
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option adjusts daemon construction.
type Option func(*options)

type options struct {
	executor transform.Executor
}

// WithExecutor overrides the process executor used by the transform engine.
func WithExecutor(exec transform.Executor) Option {
	return func(o *options) { o.executor = exec }
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires configuration")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	var settings options
	for _, opt := range opts {
		opt(&settings)
	}

	artifacts, err := store.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	journal, err := jobs.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open jobs journal: %w", err)
	}

	var engineOpts []transform.Option
	if settings.executor != nil {
		engineOpts = append(engineOpts, transform.WithExecutor(settings.executor))
	}
	engine := transform.New(cfg, logger, engineOpts...)
	orch := pipeline.New(artifacts, engine, journal, logger)

	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    artifacts,
		journal:  journal,
		orch:     orch,
		lockPath: filepath.Join(cfg.Paths.LogDir, "voxpitch.lock"),
	}
	d.lock = flock.New(d.lockPath)

	srv, err := server.New(cfg, orch, journal, d, logger)
	if err != nil {
		_ = journal.Close()
		return nil, fmt.Errorf("initialize server: %w", err)
	}
	d.server = srv
	d.sweeper = sweeper.New(artifacts.Dirs(), cfg.RetentionTTL(), cfg.SweepInterval(), logger)

	return d, nil
}

// Start acquires the instance lock, binds the HTTP listener, and launches
// the retention sweeper.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another voxpitch instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.server.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start server: %w", err)
	}
	d.cancel = cancel

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.sweeper.Run(runCtx)
	}()

	d.started = time.Now()
	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("bind", d.server.Addr()),
		logging.String("lock", d.lockPath),
	)
	return nil
}

// Stop shuts the server down, stops the sweeper, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.Stop()
	d.wg.Wait()

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release instance lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and releases held resources.
func (d *Daemon) Close() error {
	d.Stop()
	if d.journal != nil {
		return d.journal.Close()
	}
	return nil
}

// Addr reports the bound listener address once Start has succeeded.
func (d *Daemon) Addr() string {
	return d.server.Addr()
}

// Status reports daemon runtime information for GET /api/status.
func (d *Daemon) Status(ctx context.Context) api.StatusResponse {
	resp := api.StatusResponse{
		Running: d.running.Load(),
		PID:     os.Getpid(),
	}
	if resp.Running {
		resp.UptimeSeconds = int64(time.Since(d.started).Seconds())
	}

	ffmpeg := deps.CheckFFmpeg(d.cfg.Transform.FFmpegBinary)
	resp.Dependencies = []api.DependencyStatus{{
		Name:      ffmpeg.Name,
		Command:   ffmpeg.Command,
		Available: ffmpeg.Available,
		Detail:    ffmpeg.Detail,
	}}

	if n, err := d.store.Count(store.KindOriginal); err == nil {
		resp.Artifacts.Originals = n
	} else {
		d.logger.Warn("count originals failed", logging.Error(err))
	}
	if n, err := d.store.Count(store.KindDerived); err == nil {
		resp.Artifacts.Derived = n
	} else {
		d.logger.Warn("count derived failed", logging.Error(err))
	}
	return resp
}
