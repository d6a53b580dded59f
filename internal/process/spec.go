package process

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
)

// Spec describes one invocation of an external program.
type Spec struct {
	Name     string   `json:"name"`     // label used in logs and metrics
	Path     string   `json:"path"`     // executable name (resolved via PATH) or path
	Args     []string `json:"args"`     // arguments, passed without a shell
	WorkDir  string   `json:"work_dir"` // optional working dir
	Env      []string `json:"env"`      // full environment as K=V; nil inherits ours
	Wait     bool     `json:"wait"`     // block until the child exits; false starts it fire-and-forget
	Detached bool     `json:"detached"` // start the child in its own session, away from our console signals

	// Stdio for the child. Nil connects the stream to the null device.
	Stdin  io.Reader `json:"-"`
	Stdout io.Writer `json:"-"`
	Stderr io.Writer `json:"-"`
}

// Validate reports whether the spec can be started.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Path) == "" {
		return errors.New("process spec: path is required")
	}
	for _, kv := range s.Env {
		if i := strings.IndexByte(kv, '='); i <= 0 {
			return errors.New("process spec: env entry must be KEY=VALUE: " + kv)
		}
	}
	return nil
}

// BuildCommand constructs an *exec.Cmd for the spec. No shell is involved, so
// paths containing spaces need no quoting.
func (s Spec) BuildCommand(ctx context.Context) *exec.Cmd {
	// ok: intentional execution of a configured program
	// #nosec G204
	cmd := exec.CommandContext(ctx, s.Path, s.Args...)
	if s.WorkDir != "" {
		cmd.Dir = s.WorkDir
	}
	if len(s.Env) > 0 {
		cmd.Env = s.Env
	}
	cmd.Stdin = s.Stdin
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	configureSysProcAttr(cmd, s)
	return cmd
}

// String renders the command line for logs.
func (s Spec) String() string {
	parts := make([]string, 0, len(s.Args)+1)
	parts = append(parts, quoteIfNeeded(s.Path))
	for _, a := range s.Args {
		parts = append(parts, quoteIfNeeded(a))
	}
	return strings.Join(parts, " ")
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"'") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}
