// Package preflight runs startup checks so misconfiguration surfaces before
// the first request rather than inside it.
package preflight

import (
	"fmt"

	"golang.org/x/sys/unix"

	"voxpitch/internal/config"
	"voxpitch/internal/deps"
)

// Result captures one check outcome.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Run executes every startup check against the configuration.
func Run(cfg *config.Config) []Result {
	results := []Result{
		CheckWritable("incoming directory", cfg.Paths.IncomingDir),
		CheckWritable("derived directory", cfg.Paths.DerivedDir),
		CheckWritable("log directory", cfg.Paths.LogDir),
	}
	if cfg.Storage.MinFreeDiskMiB > 0 {
		results = append(results, CheckDiskSpace(cfg.Paths.IncomingDir, cfg.Storage.MinFreeDiskMiB))
	}
	results = append(results, CheckFFmpeg(cfg.Transform.FFmpegBinary))
	return results
}

// CheckWritable verifies the process can create and traverse files in dir.
func CheckWritable(name, dir string) Result {
	if err := unix.Access(dir, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s not writable: %v", dir, err)}
	}
	return Result{Name: name, Passed: true, Detail: dir}
}

// CheckDiskSpace verifies the artifact volume has at least minFreeMiB free.
func CheckDiskSpace(dir string, minFreeMiB int) Result {
	const name = "disk space"
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("statfs %s: %v", dir, err)}
	}
	freeMiB := stat.Bavail * uint64(stat.Bsize) / (1024 * 1024)
	if freeMiB < uint64(minFreeMiB) {
		return Result{Name: name, Detail: fmt.Sprintf("%d MiB free, need %d MiB", freeMiB, minFreeMiB)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d MiB free", freeMiB)}
}

// CheckFFmpeg verifies the external audio tool resolves from PATH. Failure is
// reported, not fatal: transforms then fail at request time with a
// dependency error.
func CheckFFmpeg(binary string) Result {
	status := deps.CheckFFmpeg(binary)
	if !status.Available {
		return Result{Name: status.Name, Detail: status.Detail}
	}
	return Result{Name: status.Name, Passed: true, Detail: status.Command}
}

// AllPassed reports whether every result succeeded.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
