package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/worktime-engine/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load(config.New())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "worktime.db", cfg.Database.Path)
	assert.Equal(t, 8*time.Hour, cfg.WorkdayLength())
	assert.Equal(t, time.Hour, cfg.Scanner.Interval)
	assert.True(t, cfg.RoleFilter().IsWorkable("anything"))
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yaml := `
server:
  port: 9090
workday:
  hours: 7.5
roles:
  not_workable: [absence, bank-holiday]
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("WORKTIME_DATABASE_PATH", ":memory:")

	cfg, err := config.Load(config.New())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, 7*time.Hour+30*time.Minute, cfg.WorkdayLength())
	assert.False(t, cfg.RoleFilter().IsWorkable("absence"))
	assert.False(t, cfg.RoleFilter().IsWorkable("bank-holiday"))
	assert.True(t, cfg.RoleFilter().IsWorkable("dev"))

	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	base, err := config.Load(config.New())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"port", func(c *config.Config) { c.Server.Port = 0 }},
		{"db path", func(c *config.Config) { c.Database.Path = "" }},
		{"workday", func(c *config.Config) { c.Workday.Hours = 25 }},
		{"scanner interval", func(c *config.Config) { c.Scanner.Interval = 0 }},
		{"log level", func(c *config.Config) { c.Log.Level = "loud" }},
		{"empty role", func(c *config.Config) { c.Roles.NotWorkable = []string{" "} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
