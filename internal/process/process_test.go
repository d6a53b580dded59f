package process

import (
	"bytes"
	"context"
	"os"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires Unix-like shell")
	}
}

func TestRunBlockingReturnsExitCode(t *testing.T) {
	requireUnix(t)
	r := NewRunner(0)
	for _, code := range []int{0, 1, 3, 42} {
		res, err := r.Run(context.Background(), Spec{
			Name: "exit",
			Path: "sh",
			Args: []string{"-c", "exit " + strconv.Itoa(code)},
			Wait: true,
		})
		require.NoError(t, err)
		assert.True(t, res.Waited)
		assert.Equal(t, code, res.ExitCode)
		assert.Positive(t, res.PID)
	}
}

func TestRunBlockingSharesStdio(t *testing.T) {
	requireUnix(t)
	var out, errOut bytes.Buffer
	res, err := NewRunner(0).Run(context.Background(), Spec{
		Name:   "echo",
		Path:   "sh",
		Args:   []string{"-c", "read line; echo got:$line; echo oops >&2"},
		Wait:   true,
		Stdin:  strings.NewReader("hello\n"),
		Stdout: &out,
		Stderr: &errOut,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "got:hello\n", out.String())
	assert.Equal(t, "oops\n", errOut.String())
}

func TestRunBlockingEnvAndWorkDir(t *testing.T) {
	requireUnix(t)
	dir := t.TempDir()
	var out bytes.Buffer
	_, err := NewRunner(0).Run(context.Background(), Spec{
		Name:    "env",
		Path:    "sh",
		Args:    []string{"-c", "echo $QUICKLAUNCH_TEST; pwd"},
		WorkDir: dir,
		Env:     append(os.Environ(), "QUICKLAUNCH_TEST=yes"),
		Wait:    true,
		Stdout:  &out,
	})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "yes", lines[0])
	assert.Contains(t, lines[1], dir)
}

func TestRunFireAndForgetDoesNotWait(t *testing.T) {
	requireUnix(t)
	started := time.Now()
	res, err := NewRunner(0).Run(context.Background(), Spec{
		Name:     "sleeper",
		Path:     "sleep",
		Args:     []string{"2"},
		Detached: true,
	})
	require.NoError(t, err)
	assert.False(t, res.Waited)
	assert.Equal(t, -1, res.ExitCode)
	assert.Positive(t, res.PID)
	assert.Less(t, time.Since(started), time.Second)
}

func TestRunMissingBinary(t *testing.T) {
	for _, wait := range []bool{true, false} {
		res, err := NewRunner(0).Run(context.Background(), Spec{
			Name: "missing",
			Path: "__definitely_not_exists__",
			Wait: wait,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "start missing")
		assert.Equal(t, -1, res.ExitCode)
	}
}

func TestRunInvalidSpec(t *testing.T) {
	_, err := NewRunner(0).Run(context.Background(), Spec{Name: "empty", Wait: true})
	require.Error(t, err)
}

func TestRunBlockingDetachedInterruptedByContext(t *testing.T) {
	requireUnix(t)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	started := time.Now()
	res, err := NewRunner(2*time.Second).Run(ctx, Spec{
		Name:     "server",
		Path:     "sleep",
		Args:     []string{"10"},
		Wait:     true,
		Detached: true,
	})
	require.NoError(t, err)
	// sleep dies from SIGINT: 128 + 2
	assert.Equal(t, 130, res.ExitCode)
	assert.Less(t, time.Since(started), 2*time.Second)
}

func TestRunBlockingAttachedKilledAfterWaitDelay(t *testing.T) {
	requireUnix(t)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	started := time.Now()
	res, err := NewRunner(300*time.Millisecond).Run(ctx, Spec{
		Name: "server",
		Path: "sleep",
		Args: []string{"10"},
		Wait: true,
	})
	require.NoError(t, err)
	// no interrupt is sent; SIGKILL after the wait delay: 128 + 9
	assert.Equal(t, 137, res.ExitCode)
	assert.GreaterOrEqual(t, time.Since(started), 350*time.Millisecond)
	assert.Less(t, time.Since(started), 5*time.Second)
}

func TestNewRunnerDefaultWaitDelay(t *testing.T) {
	assert.Equal(t, DefaultWaitDelay, NewRunner(0).WaitDelay)
	assert.Equal(t, time.Second, NewRunner(time.Second).WaitDelay)
}
