package transform

import (
	"context"
	"os/exec"
	"strings"
	"testing"
)

func requireShell(t *testing.T) string {
	t.Helper()
	shell, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return shell
}

func TestCommandExecutorDeliversBothStreams(t *testing.T) {
	shell := requireShell(t)

	script := `i=0
while [ $i -lt 200 ]; do
  echo "out $i"
  echo "err $i" 1>&2
  i=$((i+1))
done`

	var lines []string
	err := commandExecutor{}.Run(context.Background(), shell, []string{"-c", script}, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var out, errCount int
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "out "):
			out++
		case strings.HasPrefix(line, "err "):
			errCount++
		default:
			t.Fatalf("unexpected line %q", line)
		}
	}
	if out != 200 || errCount != 200 {
		t.Fatalf("got %d stdout and %d stderr lines, want 200 each", out, errCount)
	}
}

func TestCommandExecutorReportsFailure(t *testing.T) {
	shell := requireShell(t)

	err := commandExecutor{}.Run(context.Background(), shell, []string{"-c", "echo diagnostic 1>&2; exit 3"}, nil)
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
}

func TestCommandExecutorNilCallback(t *testing.T) {
	shell := requireShell(t)

	if err := (commandExecutor{}).Run(context.Background(), shell, []string{"-c", "echo ignored"}, nil); err != nil {
		t.Fatalf("Run with nil callback: %v", err)
	}
}
