// Package audio wraps the external tools that convert, measure, adjust and
// mix audio. Every tool runs through a Runner so tests can record invocations
// instead of executing binaries.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"voicestamp/internal/logger"
)

// Runner executes an external command and returns its captured output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Logger *logger.Logger
}

var _ Runner = (*ExecRunner)(nil)

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if r.Logger != nil {
		r.Logger.Debug("exec: %s", CommandLine(name, args))
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return stdout.Bytes(), stderr.Bytes(), ctx.Err()
		}
		if r.Logger != nil {
			r.Logger.Debug("command failed: %s: %v", CommandLine(name, args), err)
			if stdout.Len() > 0 {
				r.Logger.Debug("stdout:\n%s", stdout.String())
			}
			if stderr.Len() > 0 {
				r.Logger.Debug("stderr:\n%s", stderr.String())
			}
		}
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("%s: %w", name, err)
	}

	return stdout.Bytes(), stderr.Bytes(), nil
}

// CommandLine renders a command for logs, quoting arguments with spaces.
func CommandLine(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// lastLine returns the last non-empty line of tool output, for error messages.
func lastLine(b []byte) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
