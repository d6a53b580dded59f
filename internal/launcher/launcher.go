// Package launcher checks that the browser and the scripting runtime are
// present, opens the browser on the local URL and runs the runtime's static
// file server until it exits.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/loykin/quicklaunch/internal/config"
	"github.com/loykin/quicklaunch/internal/console"
	"github.com/loykin/quicklaunch/internal/detector"
	"github.com/loykin/quicklaunch/internal/metrics"
	"github.com/loykin/quicklaunch/internal/process"
	"github.com/spf13/afero"
)

// Title is printed in the startup banner.
const Title = "QuickTranslator Launcher"

// ExitFailure is returned when a dependency check fails or the server cannot start.
const ExitFailure = 1

const pausePrompt = "Press any key to exit..."

var (
	ErrBrowserMissing = errors.New("browser not found")
	ErrRuntimeMissing = errors.New("runtime not installed or not in PATH")
)

// Options wires the launcher to its environment. Zero fields get working
// defaults derived from the config in New.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Runner  process.Runner
	Browser detector.Detector // presence of the browser executable
	Runtime detector.Detector // "<runtime> --version" succeeds
	Running detector.Detector // a server process is already running; used with skip_if_running
	Getwd   func() (string, error)
}

type Launcher struct {
	cfg     config.Config
	opts    Options
	console *console.Printer
	log     *slog.Logger

	mu     sync.RWMutex
	status Status
}

func New(cfg config.Config, opts Options) *Launcher {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Runner == nil {
		opts.Runner = process.NewRunner(cfg.ShutdownGrace)
	}
	if opts.Browser == nil {
		opts.Browser = detector.PathDetector{Fs: afero.NewOsFs(), Path: cfg.BrowserPath}
	}
	if opts.Runtime == nil {
		opts.Runtime = detector.CommandDetector{
			Path:   cfg.Runtime,
			Args:   cfg.RuntimeVersionArgs,
			Stdout: opts.Stdout,
			Stderr: opts.Stderr,
		}
	}
	if opts.Running == nil {
		opts.Running = detector.ProcessNameDetector{Name: cfg.ServerProcessName, Snapshot: detector.SystemSnapshot}
	}
	if opts.Getwd == nil {
		opts.Getwd = os.Getwd
	}
	return &Launcher{
		cfg:     cfg,
		opts:    opts,
		console: console.New(opts.Stdout, opts.Stdin),
		log:     opts.Logger,
		status:  Status{Phase: PhaseIdle, ExitCode: -1},
	}
}

// Run performs the launch sequence: banner, browser check, runtime check,
// browser launch, then the blocking server run. It stops at the first failed
// check. The returned code is the server's exit status, or ExitFailure when
// the sequence stopped early; the error then names the cause.
func (l *Launcher) Run(ctx context.Context) (int, error) {
	l.setPhase(PhaseChecking)
	l.console.Banner(Title)
	if wd, err := l.opts.Getwd(); err != nil {
		l.log.Warn("cannot determine working directory", "error", err)
	} else {
		l.console.Infof("Working directory: %s", wd)
	}
	if l.cfg.Dir != "" {
		l.console.Infof("Serving directory: %s", l.cfg.Dir)
	}

	if !l.checkBrowser(ctx) {
		return l.fail(fmt.Errorf("%w at %s", ErrBrowserMissing, l.cfg.BrowserPath))
	}
	if !l.checkRuntime(ctx) {
		return l.fail(fmt.Errorf("%w: %s", ErrRuntimeMissing, l.cfg.Runtime))
	}

	l.setPhase(PhaseLaunching)
	l.launchBrowser(ctx)

	if l.cfg.SkipIfRunning && l.serverAlreadyRunning(ctx) {
		l.console.Infof("A %s process is already running; not starting another server.", l.cfg.ServerProcessName)
		l.finish(0)
		return 0, nil
	}
	return l.runServer(ctx)
}

// Check runs both dependency checks without launching anything and reports
// every failure.
func (l *Launcher) Check(ctx context.Context) error {
	var errs []error
	if l.checkBrowser(ctx) {
		l.console.Successf("browser found at %s", l.cfg.BrowserPath)
	} else {
		errs = append(errs, fmt.Errorf("%w at %s", ErrBrowserMissing, l.cfg.BrowserPath))
	}
	if l.checkRuntime(ctx) {
		l.console.Successf("%s is installed", l.cfg.Runtime)
	} else {
		errs = append(errs, fmt.Errorf("%w: %s", ErrRuntimeMissing, l.cfg.Runtime))
	}
	return errors.Join(errs...)
}

func (l *Launcher) checkBrowser(ctx context.Context) bool {
	found := l.probe(ctx, "browser", l.opts.Browser)
	if !found {
		l.console.Errorf("Error: browser not found at %s", l.cfg.BrowserPath)
		l.console.Infof("Please install the browser or update the path in the launcher configuration.")
	}
	return found
}

func (l *Launcher) checkRuntime(ctx context.Context) bool {
	found := l.probe(ctx, "runtime", l.opts.Runtime)
	if !found {
		l.console.Errorf("Error: %s is not installed or not in PATH.", l.cfg.Runtime)
		l.console.Infof("Please install %s and make sure it's in your PATH.", l.cfg.Runtime)
	}
	return found
}

// probe treats a detection error as "absent" but keeps it visible in the log.
func (l *Launcher) probe(ctx context.Context, dependency string, d detector.Detector) bool {
	l.log.Debug("checking dependency", "dependency", dependency, "detector", d.Describe())
	found, err := d.Alive(ctx)
	if err != nil {
		l.log.Warn("dependency check failed", "dependency", dependency, "detector", d.Describe(), "error", err)
	}
	metrics.IncCheck(dependency, found)
	return found
}

func (l *Launcher) launchBrowser(ctx context.Context) {
	l.console.Infof("Launching browser...")
	spec := process.Spec{
		Name:     "browser",
		Path:     l.cfg.BrowserPath,
		Args:     []string{l.cfg.URL},
		Detached: true,
	}
	res, err := l.opts.Runner.Run(ctx, spec)
	if err != nil {
		metrics.IncLaunchFailure(spec.Name)
		l.log.Debug("browser launch failed", "cmd", spec.String(), "error", err)
		return
	}
	metrics.IncLaunch(spec.Name, false)
	l.mu.Lock()
	l.status.BrowserPID = res.PID
	l.mu.Unlock()
	l.log.Debug("browser launched", "pid", res.PID, "url", l.cfg.URL)
}

func (l *Launcher) serverAlreadyRunning(ctx context.Context) bool {
	running, err := l.opts.Running.Alive(ctx)
	if err != nil {
		l.log.Warn("process lookup failed", "detector", l.opts.Running.Describe(), "error", err)
	}
	return running
}

func (l *Launcher) runServer(ctx context.Context) (int, error) {
	l.console.Infof("Starting HTTP server on port %d...", l.cfg.Port)
	l.console.Infof("Press Ctrl+C to stop the server.")

	env, err := l.cfg.ServerEnv()
	if err != nil {
		l.log.Error("cannot build server environment", "error", err)
		l.finish(ExitFailure)
		return ExitFailure, err
	}
	spec := process.Spec{
		Name:    "server",
		Path:    l.cfg.Runtime,
		Args:    l.cfg.ServerArgs(),
		WorkDir: l.cfg.Dir,
		Env:     env,
		Wait:    true,
		Stdin:   l.opts.Stdin,
		Stdout:  l.opts.Stdout,
		Stderr:  l.opts.Stderr,
	}
	l.log.Debug("starting server", "cmd", spec.String(), "dir", spec.WorkDir)

	l.setPhase(PhaseServing)
	metrics.IncLaunch(spec.Name, true)
	metrics.SetServerRunning(true)
	res, err := l.opts.Runner.Run(ctx, spec)
	metrics.SetServerRunning(false)
	if err != nil {
		metrics.IncLaunchFailure(spec.Name)
		l.log.Error("server did not run", "cmd", spec.String(), "error", err)
		l.finish(ExitFailure)
		return ExitFailure, fmt.Errorf("run server: %w", err)
	}
	metrics.ObserveServerRun(res.Duration.Seconds())
	l.log.Info("server exited", "pid", res.PID, "exit_code", res.ExitCode, "duration", res.Duration.Round(time.Millisecond))
	l.finish(res.ExitCode)
	return res.ExitCode, nil
}

// fail ends the sequence after a failed check.
func (l *Launcher) fail(err error) (int, error) {
	if l.cfg.PauseOnError {
		l.console.Pause(pausePrompt)
	}
	l.mu.Lock()
	l.status.Phase = PhaseFailed
	l.status.ExitCode = ExitFailure
	l.status.Error = err.Error()
	l.mu.Unlock()
	return ExitFailure, err
}

func (l *Launcher) finish(code int) {
	l.mu.Lock()
	l.status.Phase = PhaseStopped
	l.status.ExitCode = code
	l.mu.Unlock()
}

func (l *Launcher) setPhase(p Phase) {
	l.mu.Lock()
	l.status.Phase = p
	if p == PhaseChecking {
		l.status.StartedAt = time.Now().UTC()
	}
	l.mu.Unlock()
}
