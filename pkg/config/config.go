package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the launcher configuration. It is built once at startup and
// handed to each component by value.
type Config struct {
	App           AppConfig           `yaml:"app"`
	Server        ServerConfig        `yaml:"server"`
	Dashboard     DashboardConfig     `yaml:"dashboard"`
	Monitoring    MonitoringConfig    `yaml:"monitoring"`
	Logging       LoggingConfig       `yaml:"logging"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

// AppConfig holds the application identity and location
type AppConfig struct {
	Name string `yaml:"name"` // Display name in the tray (default: DailyStart)
	Root string `yaml:"root"` // Application root (default: parent of the launcher's directory)
}

// ServerConfig describes the dev server the launcher starts and stops
type ServerConfig struct {
	Host               string   `yaml:"host"`                 // Probe host (default: localhost)
	Port               int      `yaml:"port"`                 // Listen port (default: PORT from <root>/.env, then 3000)
	Command            string   `yaml:"command"`              // Package manager executable (default: npm)
	Args               []string `yaml:"args"`                 // Arguments (default: run dev, also when only command is set)
	LogFile            string   `yaml:"log_file"`             // Combined stdout/stderr, relative to root (default: app.log)
	KillPattern        string   `yaml:"kill_pattern"`         // Command-line substring for the fallback kill
	StopTimeoutSeconds int      `yaml:"stop_timeout_seconds"` // Grace period before SIGKILL (default: 5)
}

// DashboardConfig holds the browser target
type DashboardConfig struct {
	URL string `yaml:"url"` // Default: http://localhost:<port>
}

// MonitoringConfig controls the tray status line refresh
type MonitoringConfig struct {
	StatusIntervalSeconds int `yaml:"status_interval_seconds"` // Default 5, negative disables
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`  // Log level: debug, info, warn, error (default: info)
	Format string `yaml:"format"` // Log format: text, json (default: text)
}

// NotificationsConfig toggles desktop notifications
type NotificationsConfig struct {
	Enabled *bool `yaml:"enabled"` // Default: true
}

const (
	DefaultAppName     = "DailyStart"
	DefaultHost        = "localhost"
	DefaultPort        = 3000
	DefaultCommand     = "npm"
	DefaultLogFile     = "app.log"
	DefaultKillPattern = "tsx server.ts"
	EnvFile            = ".env"
)

// NotificationsEnabled reports whether desktop notifications should be shown
func (c Config) NotificationsEnabled() bool {
	return c.Notifications.Enabled == nil || *c.Notifications.Enabled
}

// Load builds the configuration. An empty path means "no config file": every
// value comes from the defaults, exactly as the launcher behaves out of the box.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if cfg.App.Root == "" {
		exePath, err := os.Executable()
		if err != nil {
			return Config{}, fmt.Errorf("failed to locate launcher executable: %w", err)
		}
		root, err := RootFromExecutable(exePath)
		if err != nil {
			return Config{}, err
		}
		cfg.App.Root = root
	}

	if err := applyDefaults(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns the out-of-the-box configuration for an application rooted at root
func Defaults(root string) (Config, error) {
	cfg := Config{App: AppConfig{Root: root}}
	if err := applyDefaults(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RootFromExecutable derives the application root from the launcher's own
// location: the launcher lives in <root>/install (or bin), so root is the
// parent of its directory.
func RootFromExecutable(exePath string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(exePath); err == nil {
		exePath = resolved
	}
	abs, err := filepath.Abs(exePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve launcher path: %w", err)
	}
	return filepath.Dir(filepath.Dir(abs)), nil
}

// applyDefaults fills zero values. App.Root must already be set.
func applyDefaults(cfg *Config) error {
	if cfg.App.Name == "" {
		cfg.App.Name = DefaultAppName
	}
	root, err := filepath.Abs(cfg.App.Root)
	if err != nil {
		return fmt.Errorf("failed to resolve app root: %w", err)
	}
	cfg.App.Root = root

	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Server.Port == 0 {
		port, err := portFromEnvFile(filepath.Join(root, EnvFile))
		if err != nil {
			return err
		}
		cfg.Server.Port = port
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.Command == "" {
		cfg.Server.Command = DefaultCommand
	}
	// "run dev" works for npm, pnpm and yarn alike
	if len(cfg.Server.Args) == 0 {
		cfg.Server.Args = []string{"run", "dev"}
	}
	if cfg.Server.LogFile == "" {
		cfg.Server.LogFile = DefaultLogFile
	}
	if !filepath.IsAbs(cfg.Server.LogFile) {
		cfg.Server.LogFile = filepath.Join(root, cfg.Server.LogFile)
	}
	if cfg.Server.KillPattern == "" {
		cfg.Server.KillPattern = DefaultKillPattern
	}
	if cfg.Server.StopTimeoutSeconds <= 0 {
		cfg.Server.StopTimeoutSeconds = 5
	}

	if cfg.Dashboard.URL == "" {
		cfg.Dashboard.URL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	if cfg.Monitoring.StatusIntervalSeconds == 0 {
		cfg.Monitoring.StatusIntervalSeconds = 5
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	return nil
}

// portFromEnvFile reads PORT from the dev server's .env so the probe checks
// the port the server will actually bind. A missing file means DefaultPort.
func portFromEnvFile(path string) (int, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultPort, nil
		}
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	raw := strings.TrimSpace(env["PORT"])
	if raw == "" {
		return DefaultPort, nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid PORT %q in %s: %w", raw, path, err)
	}
	return port, nil
}
