// Package deps reports availability of the external tools the pipeline
// shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Status captures the result of a dependency lookup.
type Status struct {
	Name        string
	Command     string
	Description string
	Available   bool
	Detail      string
}

// CheckFFmpeg resolves the configured ffmpeg binary from PATH.
func CheckFFmpeg(binary string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Used for pitch transformation",
	}

	name := strings.TrimSpace(binary)
	if name == "" {
		name = "ffmpeg"
	}

	if resolved, err := exec.LookPath(name); err == nil {
		result.Command = resolved
		result.Available = true
		return result
	}

	result.Command = name
	result.Detail = fmt.Sprintf("binary %q not found", name)
	return result
}
