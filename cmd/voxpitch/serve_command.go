package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"voxpitch/internal/daemon"
	"voxpitch/internal/logging"
	"voxpitch/internal/preflight"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the voxpitch daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
				logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "voxpitch-*.log"})

			results := preflight.Run(cfg)
			for _, result := range results {
				if result.Passed {
					logger.Info("preflight check passed", logging.String("check", result.Name))
					continue
				}
				logger.Warn("preflight check failed",
					logging.String("check", result.Name),
					logging.String("detail", result.Detail),
				)
			}
			if !preflight.AllPassed(results) {
				logger.Warn("continuing despite failed preflight checks")
			}

			d, err := daemon.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("create daemon: %w", err)
			}
			defer d.Close()

			runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := d.Start(runCtx); err != nil {
				return err
			}

			<-runCtx.Done()
			logger.Info("shutting down")
			d.Stop()
			return nil
		},
	}
}
