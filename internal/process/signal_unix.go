//go:build !windows

package process

import (
	"os"
	"syscall"
)

// interruptProcess asks the child to shut down the way Ctrl+C would.
func interruptProcess(p *os.Process) error {
	return p.Signal(os.Interrupt)
}

// exitCode maps a finished process state to a shell-style exit status:
// 128+signal for a child killed by a signal.
func exitCode(state *os.ProcessState) int {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return state.ExitCode()
}
