//go:build windows

package process

import (
	"os/exec"
	"syscall"
)

// Windows creation flags
const (
	CREATE_NEW_PROCESS_GROUP = 0x00000200
	DETACHED_PROCESS         = 0x00000008
)

// configureSysProcAttr sets platform-specific attributes for Windows.
// A detached child gets its own process group and no console, so console
// Ctrl+C events are not delivered to it.
func configureSysProcAttr(cmd *exec.Cmd, spec Spec) {
	if !spec.Detached {
		return
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: CREATE_NEW_PROCESS_GROUP | DETACHED_PROCESS,
	}
}
