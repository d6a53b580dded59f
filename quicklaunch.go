package quicklaunch

import (
	"context"
	"net/http"

	cfg "github.com/loykin/quicklaunch/internal/config"
	"github.com/loykin/quicklaunch/internal/detector"
	"github.com/loykin/quicklaunch/internal/launcher"
	"github.com/loykin/quicklaunch/internal/metrics"
	"github.com/loykin/quicklaunch/internal/process"
	iapi "github.com/loykin/quicklaunch/internal/server"
	"github.com/prometheus/client_golang/prometheus"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Config = cfg.Config

type Options = launcher.Options

type Status = launcher.Status

type ProcessEntry = detector.ProcessEntry

type Spec = process.Spec

type Runner = process.Runner

var (
	ErrBrowserMissing = launcher.ErrBrowserMissing
	ErrRuntimeMissing = launcher.ErrRuntimeMissing
)

// Launcher is a thin facade over internal/launcher.Launcher.
type Launcher struct{ inner *launcher.Launcher }

func New(c Config, opts Options) *Launcher { return &Launcher{inner: launcher.New(c, opts)} }

func (l *Launcher) Run(ctx context.Context) (int, error) { return l.inner.Run(ctx) }
func (l *Launcher) Check(ctx context.Context) error      { return l.inner.Check(ctx) }
func (l *Launcher) Status() Status                       { return l.inner.Status() }

// DefaultConfig returns the built-in configuration: Chrome at its standard
// location, python serving port 8000.
func DefaultConfig() Config { return cfg.Default() }

// LoadConfig reads a TOML file on top of the defaults and QUICKLAUNCH_* env vars.
// An empty path uses defaults and environment only.
func LoadConfig(path string) (Config, error) { return cfg.Load(cfg.New(), path) }

// Run launches with c using the process's own stdio.
func Run(ctx context.Context, c Config) (int, error) {
	return launcher.New(c, launcher.Options{}).Run(ctx)
}

// FileExists reports whether an entry exists at path.
func FileExists(path string) bool {
	ok, _ := detector.PathDetector{Path: path}.Alive(context.Background())
	return ok
}

// IsProcessRunning reports whether a running process name contains name,
// ignoring case.
func IsProcessRunning(ctx context.Context, name string) bool {
	ok, _ := detector.ProcessNameDetector{Name: name}.Alive(ctx)
	return ok
}

// FindProcesses lists running processes whose name contains name, ignoring case.
func FindProcesses(ctx context.Context, name string) ([]ProcessEntry, error) {
	return detector.ProcessNameDetector{Name: name}.Find(ctx)
}

// NewHTTPServer serves /metrics and /status for l on addr.
func NewHTTPServer(addr, basePath string, l *Launcher) (*http.Server, error) {
	return iapi.NewServer(addr, basePath, func() any { return l.Status() })
}

// Metrics helpers (public facade)

// RegisterMetrics registers the launcher collectors with r. When r is a
// *prometheus.Registry, /metrics from NewHTTPServer serves that registry.
func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }
