//go:build windows

package process

import "os"

// interruptProcess terminates the child. Windows cannot deliver os.Interrupt
// to another process; a console Ctrl+C already reaches children that share
// our console.
func interruptProcess(p *os.Process) error {
	return p.Kill()
}

func exitCode(state *os.ProcessState) int {
	return state.ExitCode()
}
