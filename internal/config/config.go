package config

import (
	"errors"
	"fmt"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/loykin/quicklaunch/internal/env"
	"github.com/loykin/quicklaunch/internal/logger"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides,
// e.g. QUICKLAUNCH_PORT=9000 or QUICKLAUNCH_LOG_LEVEL=debug.
const EnvPrefix = "QUICKLAUNCH"

const (
	DefaultRuntime       = "python"
	DefaultServerModule  = "http.server"
	DefaultPort          = 8000
	DefaultShutdownGrace = 5 * time.Second
)

// Config holds everything the launcher needs. The zero values of URL and
// ServerProcessName are resolved by Load from Port and Runtime.
type Config struct {
	BrowserPath        string        `toml:"browser_path" mapstructure:"browser_path"`
	Runtime            string        `toml:"runtime" mapstructure:"runtime"`
	RuntimeVersionArgs []string      `toml:"runtime_version_args" mapstructure:"runtime_version_args"`
	ServerModule       string        `toml:"server_module" mapstructure:"server_module"`
	Port               int           `toml:"port" mapstructure:"port"`
	URL                string        `toml:"url" mapstructure:"url"`
	Dir                string        `toml:"dir" mapstructure:"dir"`
	Env                []string      `toml:"env" mapstructure:"env"`
	EnvFiles           []string      `toml:"env_files" mapstructure:"env_files"`
	SkipIfRunning      bool          `toml:"skip_if_running" mapstructure:"skip_if_running"`
	ServerProcessName  string        `toml:"server_process_name" mapstructure:"server_process_name"`
	ShutdownGrace      time.Duration `toml:"shutdown_grace" mapstructure:"shutdown_grace"`
	PauseOnError       bool          `toml:"pause_on_error" mapstructure:"pause_on_error"`
	Log                logger.Config `toml:"log" mapstructure:"log"`
	Metrics            MetricsConfig `toml:"metrics" mapstructure:"metrics"`
}

type MetricsConfig struct {
	Listen string `toml:"listen" mapstructure:"listen"` // e.g. "127.0.0.1:9108"; empty disables
}

// DefaultBrowserPath returns the default Chrome location for goos.
func DefaultBrowserPath(goos string) string {
	switch goos {
	case "windows":
		return `C:\Program Files\Google\Chrome\Application\chrome.exe`
	case "darwin":
		return "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
	default:
		return "/usr/bin/google-chrome"
	}
}

// SetDefaults registers every key with its default so env overrides apply
// to all of them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("browser_path", DefaultBrowserPath(runtime.GOOS))
	v.SetDefault("runtime", DefaultRuntime)
	v.SetDefault("runtime_version_args", []string{"--version"})
	v.SetDefault("server_module", DefaultServerModule)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("url", "")
	v.SetDefault("dir", "")
	v.SetDefault("env", []string{})
	v.SetDefault("env_files", []string{})
	v.SetDefault("skip_if_running", false)
	v.SetDefault("server_process_name", "")
	v.SetDefault("shutdown_grace", DefaultShutdownGrace)
	v.SetDefault("pause_on_error", true)
	v.SetDefault("log.level", logger.DefaultLevel)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", logger.DefaultMaxSizeMB)
	v.SetDefault("log.max_backups", logger.DefaultMaxBackups)
	v.SetDefault("log.max_age_days", logger.DefaultMaxAgeDays)
	v.SetDefault("log.compress", false)
	v.SetDefault("metrics.listen", "")
}

// New returns a viper instance with defaults and QUICKLAUNCH_* env lookup.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads the optional TOML file at path into v and decodes the result.
// Precedence follows viper: flags bound to v, env, file, defaults.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	c.resolve()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Default returns the configuration used when nothing is overridden.
// It ignores the environment.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	var c Config
	// defaults always decode
	_ = v.Unmarshal(&c)
	c.resolve()
	return c
}

func (c *Config) resolve() {
	c.BrowserPath = strings.TrimSpace(c.BrowserPath)
	c.Runtime = strings.TrimSpace(c.Runtime)
	if c.URL == "" && c.Port > 0 {
		c.URL = fmt.Sprintf("http://localhost:%d/", c.Port)
	}
	if c.ServerProcessName == "" {
		c.ServerProcessName = c.Runtime
	}
	if c.ServerModule == "" {
		c.ServerModule = DefaultServerModule
	}
}

// Validate rejects values the launcher cannot act on.
func (c Config) Validate() error {
	var errs []error
	if c.BrowserPath == "" {
		errs = append(errs, errors.New("browser_path is required"))
	}
	if c.Runtime == "" {
		errs = append(errs, errors.New("runtime is required"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range 1-65535", c.Port))
	}
	if u, err := url.Parse(c.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("url %q must be absolute", c.URL))
	}
	if c.ShutdownGrace < 0 {
		errs = append(errs, fmt.Errorf("shutdown_grace must not be negative, got %s", c.ShutdownGrace))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	for _, kv := range c.Env {
		if i := strings.IndexByte(kv, '='); i <= 0 {
			errs = append(errs, fmt.Errorf("env entry %q must be KEY=VALUE", kv))
		}
	}
	return errors.Join(errs...)
}

// ServerArgs returns the runtime arguments that start the static file server,
// e.g. ["-m", "http.server", "8000"].
func (c Config) ServerArgs() []string {
	return []string{"-m", c.ServerModule, strconv.Itoa(c.Port)}
}

// ServerEnv composes the server environment from the OS environment,
// env_files in order, then env entries. It returns nil when neither is set so
// the server simply inherits ours.
func (c Config) ServerEnv() ([]string, error) {
	if len(c.Env) == 0 && len(c.EnvFiles) == 0 {
		return nil, nil
	}
	e := env.New()
	for _, p := range c.EnvFiles {
		if err := e.LoadFile(p); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}
	e.SetPairs(c.Env)
	return e.Merge(), nil
}
