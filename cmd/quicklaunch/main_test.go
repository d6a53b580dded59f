package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/loykin/quicklaunch/internal/detector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, stdin string, mod func(*app), args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	a := newApp(strings.NewReader(stdin), &out, &errOut)
	if mod != nil {
		mod(a)
	}
	code := run(context.Background(), a, args)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func fakeBrowser(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "browser")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"), 0o755))
	return p
}

func TestHelpExitsZero(t *testing.T) {
	r := execute(t, "", nil, "--help")
	assert.Equal(t, 0, r.code)
	assert.Contains(t, r.stdout, "quicklaunch")
	assert.Contains(t, r.stdout, "--skip-if-running")
}

func TestMissingBrowserExitsOne(t *testing.T) {
	r := execute(t, "", nil, "--browser", "/nonexistent/quicklaunch/browser", "--no-pause")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stdout, "QuickTranslator Launcher")
	assert.Contains(t, r.stdout, "Working directory: ")
	assert.Contains(t, r.stdout, "Error: browser not found at /nonexistent/quicklaunch/browser")
	assert.NotContains(t, r.stdout, "Press any key to exit...")
	assert.NotContains(t, r.stdout, "Launching browser...")
}

func TestMissingBrowserPausesByDefault(t *testing.T) {
	r := execute(t, "k", nil, "--browser", "/nonexistent/quicklaunch/browser")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stdout, "Press any key to exit...")
}

func TestMissingRuntimeExitsOne(t *testing.T) {
	browser := fakeBrowser(t)
	r := execute(t, "", nil, "--browser", browser, "--runtime", "quicklaunch-no-such-runtime", "--no-pause")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stdout, "Error: quicklaunch-no-such-runtime is not installed or not in PATH.")
	assert.Contains(t, r.stdout, "Please install quicklaunch-no-such-runtime and make sure it's in your PATH.")
	assert.NotContains(t, r.stdout, "Launching browser...")
}

func TestMetricsListenWithFailedCheck(t *testing.T) {
	r := execute(t, "", nil,
		"--browser", "/nonexistent/quicklaunch/browser", "--no-pause",
		"--metrics-listen", "127.0.0.1:0", "--log-level", "debug")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "metrics endpoint listening")
}

func TestDoctorReportsEveryProblem(t *testing.T) {
	r := execute(t, "", nil, "doctor",
		"--browser", "/nonexistent/quicklaunch/browser",
		"--runtime", "quicklaunch-no-such-runtime")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stdout, "Error: browser not found at /nonexistent/quicklaunch/browser")
	assert.Contains(t, r.stdout, "Error: quicklaunch-no-such-runtime is not installed or not in PATH.")
	assert.NotContains(t, r.stdout, "QuickTranslator Launcher", "doctor prints no banner")
}

func TestDoctorBrowserFound(t *testing.T) {
	browser := fakeBrowser(t)
	r := execute(t, "", nil, "doctor", "--browser", browser, "--runtime", "quicklaunch-no-such-runtime")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stdout, "browser found at "+browser)
}

func TestRunning(t *testing.T) {
	snapshot := func(context.Context) ([]detector.ProcessEntry, error) {
		return []detector.ProcessEntry{
			{PID: 42, Name: "Python3"},
			{PID: 7, Name: "chrome"},
		}, nil
	}
	withSnapshot := func(a *app) { a.snapshot = snapshot }

	t.Run("default name follows runtime", func(t *testing.T) {
		r := execute(t, "", withSnapshot, "running")
		assert.Equal(t, 0, r.code)
		assert.Equal(t, "42\tPython3\n", r.stdout)
	})
	t.Run("explicit name", func(t *testing.T) {
		r := execute(t, "", withSnapshot, "running", "--name", "CHROME")
		assert.Equal(t, 0, r.code)
		assert.Equal(t, "7\tchrome\n", r.stdout)
	})
	t.Run("no match", func(t *testing.T) {
		r := execute(t, "", withSnapshot, "running", "--name", "node")
		assert.Equal(t, 1, r.code)
		assert.Contains(t, r.stdout, `no running process matches "node"`)
	})
	t.Run("snapshot error", func(t *testing.T) {
		r := execute(t, "", func(a *app) {
			a.snapshot = func(context.Context) ([]detector.ProcessEntry, error) {
				return nil, errors.New("access denied")
			}
		}, "running")
		assert.Equal(t, 1, r.code)
		assert.Contains(t, r.stderr, "access denied")
	})
}

func TestConfigCommand(t *testing.T) {
	r := execute(t, "", nil, "config", "--port", "9090", "--runtime", "python3")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "port = 9090")
	assert.Contains(t, r.stdout, "http://localhost:9090/")
	assert.Contains(t, r.stdout, "python3")
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "quicklaunch.toml")
	require.NoError(t, os.WriteFile(file, []byte("runtime = \"python3\"\nport = 7000\n"), 0o644))

	r := execute(t, "", nil, "config", "--config", file, "--port", "7100")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "python3", "file value applies")
	assert.Contains(t, r.stdout, "port = 7100", "flag beats file")
}

func TestInvalidConfigIsReported(t *testing.T) {
	r := execute(t, "", nil, "doctor", "--port", "70000")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "out of range")
}

func TestUnexpectedArgs(t *testing.T) {
	r := execute(t, "", nil, "extra")
	assert.Equal(t, 1, r.code)
	assert.NotEmpty(t, r.stderr)
}

func TestExitError(t *testing.T) {
	base := errors.New("boom")
	var buf bytes.Buffer
	assert.Equal(t, 3, exitCode(&exitError{code: 3, err: base}, &buf))
	assert.Empty(t, buf.String(), "exit errors were already reported")
	assert.Equal(t, 1, exitCode(base, &buf))
	assert.Equal(t, "boom\n", buf.String())
	assert.Equal(t, 0, exitCode(nil, &buf))

	assert.ErrorIs(t, &exitError{code: 1, err: base}, base)
	assert.Equal(t, "exit status 2", (&exitError{code: 2}).Error())
}
