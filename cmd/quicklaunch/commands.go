package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/loykin/quicklaunch/internal/config"
	"github.com/loykin/quicklaunch/internal/detector"
	"github.com/loykin/quicklaunch/internal/launcher"
	"github.com/loykin/quicklaunch/internal/logger"
	"github.com/loykin/quicklaunch/internal/metrics"
	"github.com/loykin/quicklaunch/internal/server"
	"github.com/pelletier/go-toml/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"browser":         "browser_path",
	"runtime":         "runtime",
	"port":            "port",
	"url":             "url",
	"dir":             "dir",
	"skip-if-running": "skip_if_running",
	"log-level":       "log.level",
	"log-file":        "log.file",
	"metrics-listen":  "metrics.listen",
}

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	v     *viper.Viper
	flags *RootFlags

	// snapshot lists running processes for the running command
	snapshot detector.Snapshotter
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
		v:        config.New(),
		flags:    &RootFlags{},
		snapshot: detector.SystemSnapshot,
	}
}

// buildRoot creates the root command and its subcommands.
func buildRoot(a *app) *cobra.Command {
	root := createRootCommand(a)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.AddCommand(
		createDoctorCommand(a),
		createRunningCommand(a, &RunningFlags{}),
		createConfigCommand(a),
	)
	return root
}

// createRootCommand creates the root command; running it performs the launch.
func createRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "quicklaunch",
		Short: "Open the browser on a local page and serve it with the runtime's file server",
		Long: `Quicklaunch checks that the browser and the scripting runtime are installed,
opens the browser on the local URL and runs "<runtime> -m http.server <port>"
in the foreground until it exits. The server's exit status becomes quicklaunch's.

Examples:
  quicklaunch
  quicklaunch --port 9000 --dir ./site
  quicklaunch --browser /usr/bin/chromium --runtime python3
  quicklaunch doctor
  quicklaunch running --name python`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.launch(cmd.Context())
		},
	}

	f := a.flags
	pf := root.PersistentFlags()
	pf.StringVar(&f.ConfigPath, "config", "", "path to TOML config file (optional)")
	pf.StringVar(&f.BrowserPath, "browser", "", "browser executable (default: Chrome's standard location)")
	pf.StringVar(&f.Runtime, "runtime", "", "scripting runtime used for the file server (default: python)")
	pf.IntVar(&f.Port, "port", 0, "file server port (default: 8000)")
	pf.StringVar(&f.URL, "url", "", "URL opened in the browser (default: http://localhost:<port>/)")
	pf.StringVar(&f.Dir, "dir", "", "directory to serve (default: current directory)")
	pf.BoolVar(&f.SkipIfRunning, "skip-if-running", false, "do not start the server when a runtime process is already running")
	pf.BoolVar(&f.NoPause, "no-pause", false, "exit immediately on a failed check instead of waiting for a key")
	pf.StringVar(&f.LogLevel, "log-level", "", "diagnostic log level: debug, info, warn, error (default: info)")
	pf.StringVar(&f.LogFile, "log-file", "", "also write JSON logs to this file, rotated")
	pf.StringVar(&f.MetricsListen, "metrics-listen", "", "serve /metrics and /status on this address, e.g. 127.0.0.1:9108")

	for name, key := range flagKeys {
		if err := a.v.BindPFlag(key, pf.Lookup(name)); err != nil {
			panic(err)
		}
	}
	return root
}

// createDoctorCommand creates the doctor subcommand
func createDoctorCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the browser and the runtime are installed",
		Long: `Run both dependency checks and report every problem without launching anything.

Examples:
  quicklaunch doctor
  quicklaunch doctor --runtime python3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closeLog, err := a.setup()
			if err != nil {
				return err
			}
			defer func() { _ = closeLog.Close() }()

			l := launcher.New(cfg, a.launcherOptions(log))
			if err := l.Check(cmd.Context()); err != nil {
				return &exitError{code: launcher.ExitFailure, err: err}
			}
			return nil
		},
	}
}

// createRunningCommand creates the running subcommand
func createRunningCommand(a *app, flags *RunningFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "running",
		Short: "List running processes whose name contains a fragment",
		Long: `Look up running processes by a case-insensitive name fragment.
Exits 0 when at least one process matches and 1 otherwise.

Examples:
  quicklaunch running                 # uses server_process_name
  quicklaunch running --name chrome`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, closeLog, err := a.setup()
			if err != nil {
				return err
			}
			defer func() { _ = closeLog.Close() }()
			return a.running(cmd.Context(), cfg, flags)
		},
	}
	cmd.Flags().StringVar(&flags.Name, "name", "", "process name fragment (default: server_process_name)")
	return cmd
}

// createConfigCommand creates the config subcommand
func createConfigCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			b, err := toml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = a.stdout.Write(b)
			return err
		},
	}
}

func (a *app) loadConfig() (config.Config, error) {
	if a.flags.NoPause {
		a.v.Set("pause_on_error", false)
	}
	return config.Load(a.v, a.flags.ConfigPath)
}

// setup loads the configuration and builds the diagnostic logger.
func (a *app) setup() (config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	log, closer, err := logger.New(cfg.Log, a.stderr)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, closer, nil
}

func (a *app) launcherOptions(log *slog.Logger) launcher.Options {
	return launcher.Options{
		Stdin:  a.stdin,
		Stdout: a.stdout,
		Stderr: a.stderr,
		Logger: log,
	}
}

func (a *app) launch(ctx context.Context) error {
	cfg, log, closeLog, err := a.setup()
	if err != nil {
		return err
	}
	defer func() { _ = closeLog.Close() }()

	l := launcher.New(cfg, a.launcherOptions(log))

	if cfg.Metrics.Listen != "" {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		srv, err := server.NewServer(cfg.Metrics.Listen, "", func() any { return l.Status() })
		if err != nil {
			return err
		}
		defer func() { _ = srv.Close() }()
		log.Info("metrics endpoint listening", "addr", srv.Addr)
	}

	code, err := l.Run(ctx)
	if code != 0 || err != nil {
		return &exitError{code: code, err: err}
	}
	return nil
}

func (a *app) running(ctx context.Context, cfg config.Config, flags *RunningFlags) error {
	name := flags.Name
	if name == "" {
		name = cfg.ServerProcessName
	}
	d := detector.ProcessNameDetector{Name: name, Snapshot: a.snapshot}
	found, err := d.Find(ctx)
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}
	if len(found) == 0 {
		_, _ = fmt.Fprintf(a.stdout, "no running process matches %q\n", name)
		return &exitError{code: 1}
	}
	for _, p := range found {
		_, _ = fmt.Fprintf(a.stdout, "%d\t%s\n", p.PID, p.Name)
	}
	return nil
}
