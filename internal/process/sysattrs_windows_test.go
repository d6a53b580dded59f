//go:build windows

package process

import (
	"syscall"
	"testing"
)

func checkDetachedAttrs(t *testing.T, attrs *syscall.SysProcAttr) {
	t.Helper()
	if attrs.CreationFlags&DETACHED_PROCESS == 0 {
		t.Fatalf("DETACHED_PROCESS flag not set for detached child")
	}
}
