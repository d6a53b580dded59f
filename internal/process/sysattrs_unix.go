//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr sets platform-specific attributes for Unix-like systems.
// A detached child gets a new session (setsid) so a Ctrl+C on our terminal
// does not reach it. Otherwise the child stays in our process group and
// shares the console, including its interrupt.
func configureSysProcAttr(cmd *exec.Cmd, spec Spec) {
	if !spec.Detached {
		return
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
