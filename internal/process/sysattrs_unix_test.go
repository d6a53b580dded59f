//go:build !windows

package process

import (
	"syscall"
	"testing"
)

func checkDetachedAttrs(t *testing.T, attrs *syscall.SysProcAttr) {
	t.Helper()
	if !attrs.Setsid {
		t.Fatalf("SysProcAttr Setsid not set for detached child")
	}
}
