package process

import (
	"context"
	"fmt"
	"time"
)

// DefaultWaitDelay is how long a blocking child gets to exit after it was
// interrupted before it is killed.
const DefaultWaitDelay = 5 * time.Second

// Result describes a finished (Wait) or started (fire-and-forget) child.
type Result struct {
	Name     string
	PID      int
	Waited   bool
	ExitCode int // valid only when Waited; -1 if the child never started
	Duration time.Duration
}

// Runner starts external programs.
type Runner interface {
	Run(ctx context.Context, spec Spec) (Result, error)
}

// ExecRunner runs specs as OS processes via os/exec.
type ExecRunner struct {
	WaitDelay time.Duration
}

func NewRunner(waitDelay time.Duration) *ExecRunner {
	if waitDelay <= 0 {
		waitDelay = DefaultWaitDelay
	}
	return &ExecRunner{WaitDelay: waitDelay}
}

// Run starts spec. With spec.Wait it blocks until the child exits and reports
// its exit status; a non-zero status is not an error. Without spec.Wait it
// returns as soon as the child has started.
//
// When ctx is done during a blocking run a Detached child is interrupted. A
// child on our console is left alone: the console's Ctrl+C already reached it,
// and a second interrupt would cut its own shutdown short. Either way the
// child gets WaitDelay to exit before it is killed, and its exit status is
// still reported.
func (r *ExecRunner) Run(ctx context.Context, spec Spec) (Result, error) {
	res := Result{Name: spec.Name, ExitCode: -1}
	if err := spec.Validate(); err != nil {
		return res, err
	}
	if !spec.Wait {
		return r.start(spec)
	}

	cmd := spec.BuildCommand(ctx)
	cmd.Cancel = func() error {
		if !spec.Detached {
			return nil
		}
		return interruptProcess(cmd.Process)
	}
	cmd.WaitDelay = r.WaitDelay

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return res, fmt.Errorf("start %s: %w", spec.Name, err)
	}
	res.PID = cmd.Process.Pid
	res.Waited = true

	err := cmd.Wait()
	res.Duration = time.Since(started)
	if cmd.ProcessState == nil {
		return res, fmt.Errorf("wait %s: %w", spec.Name, err)
	}
	// A context or WaitDelay error on top of a real exit status is expected
	// after an interrupt; the exit status is what callers act on.
	res.ExitCode = exitCode(cmd.ProcessState)
	return res, nil
}

func (r *ExecRunner) start(spec Spec) (Result, error) {
	res := Result{Name: spec.Name, ExitCode: -1}
	// Background is never done, so the child outlives any caller context.
	cmd := spec.BuildCommand(context.Background())
	if err := cmd.Start(); err != nil {
		return res, fmt.Errorf("start %s: %w", spec.Name, err)
	}
	res.PID = cmd.Process.Pid
	// reap in the background so the child does not linger as a zombie
	go func() { _ = cmd.Wait() }()
	return res, nil
}
