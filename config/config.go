// Package config loads service configuration from defaults, an optional
// config.yaml, and WORKTIME_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/warp/worktime-engine/worktime"
)

// EnvPrefix prefixes every environment override, e.g. WORKTIME_SERVER_PORT.
const EnvPrefix = "WORKTIME"

// Config holds all configuration for the work-time service.
type Config struct {
	Server struct {
		Port           int      `mapstructure:"port"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"server"`

	Database struct {
		// Path is the SQLite file; ":memory:" keeps everything in RAM.
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`

	Workday struct {
		Hours float64 `mapstructure:"hours"`
	} `mapstructure:"workday"`

	Roles struct {
		// NotWorkable lists project role ids whose time is not counted as work.
		NotWorkable []string `mapstructure:"not_workable"`
	} `mapstructure:"roles"`

	Scanner struct {
		Enabled  bool          `mapstructure:"enabled"`
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"scanner"`

	Log struct {
		Level       string `mapstructure:"level"`
		Development bool   `mapstructure:"development"`
	} `mapstructure:"log"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("database.path", "worktime.db")
	v.SetDefault("workday.hours", 8.0)
	v.SetDefault("roles.not_workable", []string{})
	v.SetDefault("scanner.enabled", true)
	v.SetDefault("scanner.interval", time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// New returns a viper instance with defaults, env binding and config search
// paths set up. Callers may bind flags on it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads the optional config file and decodes v into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Workday.Hours <= 0 || c.Workday.Hours > 24 {
		return fmt.Errorf("workday.hours must be in (0, 24], got %v", c.Workday.Hours)
	}
	if c.Scanner.Enabled && c.Scanner.Interval <= 0 {
		return fmt.Errorf("scanner.interval must be positive when the scanner is enabled")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	for _, id := range c.Roles.NotWorkable {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("roles.not_workable contains an empty role id")
		}
	}
	return nil
}

// WorkdayLength returns the configured workday length.
func (c *Config) WorkdayLength() time.Duration {
	return time.Duration(c.Workday.Hours * float64(time.Hour))
}

// RoleFilter builds the immutable workable-role filter from configuration.
func (c *Config) RoleFilter() worktime.RoleFilter {
	ids := make([]worktime.ProjectRoleID, len(c.Roles.NotWorkable))
	for i, id := range c.Roles.NotWorkable {
		ids[i] = worktime.ProjectRoleID(id)
	}
	return worktime.NewRoleFilter(ids...)
}
