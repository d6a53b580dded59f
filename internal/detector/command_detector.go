package detector

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
)

// CommandDetector runs a command that should exit zero if the dependency is installed,
// e.g. "python --version".
type CommandDetector struct {
	Path string
	Args []string
	// Stdout and Stderr receive the command output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

func (d CommandDetector) command(ctx context.Context) *exec.Cmd {
	// #nosec G204
	cmd := exec.CommandContext(ctx, d.Path, d.Args...)
	cmd.Stdout = d.Stdout
	cmd.Stderr = d.Stderr
	return cmd
}

func (d CommandDetector) Alive(ctx context.Context) (bool, error) {
	if strings.TrimSpace(d.Path) == "" {
		return false, errors.New("command detector: empty path")
	}
	err := d.command(ctx).Run()
	if err == nil {
		return true, nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		// non-zero exit code means not installed or broken
		return false, nil
	}
	return false, err
}

func (d CommandDetector) Describe() string {
	return "cmd:" + strings.TrimSpace(strings.Join(append([]string{d.Path}, d.Args...), " "))
}
