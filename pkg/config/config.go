// Package config loads the dashboard server configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-wbt-dashboard/components/dashboard"
)

const (
	EnvAPIURL = "WBT_DASHBOARD_API_URL"
	EnvAddr   = "WBT_DASHBOARD_ADDR"
	// EnvAssetsHost matches the renderer's own CDN override.
	EnvAssetsHost = "GO_DASHBOARD_ECHARTS_CDN"
)

// Config is the full server configuration.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Server    ServerConfig    `yaml:"server"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Charts    ChartsConfig    `yaml:"charts"`
	Log       LogConfig       `yaml:"log"`
}

// APIConfig points at the remote survey API.
type APIConfig struct {
	URL         string `yaml:"url"`
	WidgetsPath string `yaml:"widgets_path"`
	// Mock serves deterministic fixtures instead of calling URL.
	Mock bool `yaml:"mock"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	BasePath     string `yaml:"base_path"`
	TemplatesDir string `yaml:"templates_dir"`
}

// DashboardConfig tunes page views and widget fetches.
type DashboardConfig struct {
	RequestTimeout time.Duration          `yaml:"request_timeout"`
	FirstPaintWait time.Duration          `yaml:"first_paint_wait"`
	ViewTTL        time.Duration          `yaml:"view_ttl"`
	SweepInterval  time.Duration          `yaml:"sweep_interval"`
	ManifestPath   string                 `yaml:"manifest"`
	Team           []dashboard.TeamMember `yaml:"team"`
}

// ChartsConfig selects the chart theme and where ECharts assets load from.
type ChartsConfig struct {
	Theme      string `yaml:"theme"`
	AssetsHost string `yaml:"assets_host"`
}

// LogConfig selects the zap logger flavour.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() Config {
	return Config{
		API: APIConfig{
			URL:         "http://localhost:5000/api",
			WidgetsPath: "/dashboards/project/widgets",
		},
		Server: ServerConfig{
			Addr:     ":8080",
			BasePath: "/wbt",
		},
		Dashboard: DashboardConfig{
			RequestTimeout: 10 * time.Second,
			FirstPaintWait: 750 * time.Millisecond,
			ViewTTL:        30 * time.Minute,
			SweepInterval:  time.Minute,
		},
		Charts: ChartsConfig{Theme: "westeros"},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode unmarshals YAML into cfg, rejecting unknown keys.
func Decode(data []byte, cfg *Config) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIURL); ok && strings.TrimSpace(v) != "" {
		c.API.URL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvAddr); ok && strings.TrimSpace(v) != "" {
		c.Server.Addr = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvAssetsHost); ok && strings.TrimSpace(v) != "" && c.Charts.AssetsHost == "" {
		c.Charts.AssetsHost = strings.TrimSpace(v)
	}
}

// Validate reports configuration errors that would prevent serving.
func (c Config) Validate() error {
	var errs []error
	if !c.API.Mock && strings.TrimSpace(c.API.URL) == "" {
		errs = append(errs, errors.New("api.url is required unless api.mock is set"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		errs = append(errs, fmt.Errorf("server.base_path %q must start with /", c.Server.BasePath))
	}
	if c.Dashboard.ViewTTL < 0 || c.Dashboard.SweepInterval < 0 {
		errs = append(errs, errors.New("dashboard.view_ttl and dashboard.sweep_interval must not be negative"))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be json or console", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Logger builds the zap logger described by the log section.
func (c LogConfig) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if c.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
