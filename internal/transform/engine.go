package transform

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"voxpitch/internal/config"
	"voxpitch/internal/fileutil"
	"voxpitch/internal/logging"
	"voxpitch/internal/services"
)

// stderrTailLines bounds how much tool output is kept for diagnostics.
const stderrTailLines = 12

// Engine wraps invocation of the external audio tool.
type Engine struct {
	binary   string
	baseRate int
	timeout  time.Duration
	exec     Executor
	logger   *slog.Logger
}

// Option configures the engine.
type Option func(*Engine)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(e *Engine) {
		if exec != nil {
			e.exec = exec
		}
	}
}

// New constructs an engine from config.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	engine := &Engine{
		binary:   cfg.Transform.FFmpegBinary,
		baseRate: cfg.Transform.BaseSampleRate,
		timeout:  cfg.TransformTimeout(),
		exec:     commandExecutor{},
		logger:   logger.With(logging.String("component", "transform")),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Apply produces a pitch-shifted copy of sourcePath at destPath. The caller
// validates parameter; this method assumes it is in [0,100]. The neutral
// parameter copies bytes without re-encoding. destPath is removed on every
// failure path, so a failed transform never leaves output behind.
func (e *Engine) Apply(ctx context.Context, sourcePath, destPath string, parameter float64) error {
	if _, err := os.Stat(sourcePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "transform", "apply", "source artifact missing", err)
		}
		return services.Wrap(services.ErrTransient, "transform", "apply", "source unreadable", err)
	}

	if parameter == NeutralParameter {
		if err := fileutil.CopyFile(sourcePath, destPath); err != nil {
			_ = os.Remove(destPath)
			return services.Wrap(services.ErrTransient, "transform", "apply", "neutral copy failed", err)
		}
		e.logger.Debug("neutral transform, copied without re-encoding",
			logging.String("source", sourcePath))
		return nil
	}

	ratio := PitchRatio(parameter)
	filter := FilterChain(e.baseRate, ratio)
	args := []string{"-y", "-hide_banner", "-nostdin", "-i", sourcePath, "-af", filter, destPath}

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var tail []string
	started := time.Now()
	err := e.exec.Run(runCtx, e.binary, args, func(line string) {
		if len(tail) == stderrTailLines {
			tail = append(tail[1:], line)
			return
		}
		tail = append(tail, line)
	})
	if err != nil {
		_ = os.Remove(destPath)
		detail := strings.Join(tail, " | ")
		if runCtx.Err() != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			e.logger.Error("transform timed out",
				logging.Duration("elapsed", time.Since(started)),
				logging.String("tool_output", detail),
			)
			return services.Wrap(services.ErrTimeout, "transform", "apply",
				fmt.Sprintf("%s exceeded %s", e.binary, e.timeout), err)
		}
		e.logger.Error("transform failed",
			logging.Error(err),
			logging.String("tool_output", detail),
		)
		return services.Wrap(services.ErrExternalTool, "transform", "apply", detail, err)
	}

	info, err := os.Stat(destPath)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(destPath)
		return services.Wrap(services.ErrExternalTool, "transform", "apply",
			fmt.Sprintf("%s produced no output", e.binary), err)
	}

	e.logger.Debug("transform complete",
		logging.Float64("parameter", parameter),
		logging.Float64("ratio", ratio),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}
