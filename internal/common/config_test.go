package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "http://airiqnewapi.mywebcheck.in/TravelAPI.svc", cfg.AirIQ.BaseURL)
	assert.Equal(t, "raw", cfg.AirIQ.AuthScheme)
	assert.Equal(t, "10s", cfg.AirIQ.LoginTimeout)
	assert.Equal(t, "30s", cfg.AirIQ.BookingTimeout)
	assert.Equal(t, 5, cfg.AirIQ.RateLimit)
	assert.Equal(t, "", cfg.Session.TokenTTL)
	assert.Equal(t, 50, cfg.Session.DailyLoginLimit)
	assert.True(t, cfg.Session.Persist)
	assert.Equal(t, "badger", cfg.Storage.Type)
	assert.Equal(t, "./data", cfg.Storage.Badger.Path)
	assert.True(t, cfg.Maintenance.Enabled)
	assert.Equal(t, "*/30 * * * *", cfg.Maintenance.Schedule)
}

func TestLoadFromFilesMergesOverDefaults(t *testing.T) {
	path := writeConfigFile(t, "volare.toml", `
[server]
port = 9090

[airiq]
agent_id = "AQAG059771"
username = "agent"
password = "secret"

[session]
daily_login_limit = 25
`)

	cfg, err := LoadFromFiles(path)
	require.NoError(t, err)

	// File values applied
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "AQAG059771", cfg.AirIQ.AgentID)
	assert.Equal(t, 25, cfg.Session.DailyLoginLimit)

	// Unset values keep defaults
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "http://airiqnewapi.mywebcheck.in/TravelAPI.svc", cfg.AirIQ.BaseURL)
	assert.True(t, cfg.Session.Persist)
}

func TestLoadFromFilesLaterFileWins(t *testing.T) {
	base := writeConfigFile(t, "base.toml", `
[server]
port = 9090
host = "0.0.0.0"
`)
	override := writeConfigFile(t, "override.toml", `
[server]
port = 9191
`)

	cfg, err := LoadFromFiles(base, override)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadFromFilesMissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadFromFilesBadTOML(t *testing.T) {
	path := writeConfigFile(t, "broken.toml", `[server`)

	_, err := LoadFromFiles(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VOLARE_SERVER_PORT", "7070")
	t.Setenv("VOLARE_AIRIQ_AGENT_ID", "AG900")
	t.Setenv("AIRIQ_USERNAME", "envagent")
	t.Setenv("VOLARE_SESSION_DAILY_LOGIN_LIMIT", "10")
	t.Setenv("VOLARE_LOG_OUTPUT", "stdout, file")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "AG900", cfg.AirIQ.AgentID)
	assert.Equal(t, "envagent", cfg.AirIQ.Username)
	assert.Equal(t, 10, cfg.Session.DailyLoginLimit)
	assert.Equal(t, []string{"stdout", "file"}, cfg.Logging.Output)
}

func TestEnvPrefixedNameWins(t *testing.T) {
	t.Setenv("AIRIQ_AGENT_ID", "BARE")
	t.Setenv("VOLARE_AIRIQ_AGENT_ID", "PREFIXED")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, "PREFIXED", cfg.AirIQ.AgentID)
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 9999, "0.0.0.0")
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	// Zero values leave config untouched
	ApplyFlagOverrides(cfg, 0, "")
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad base url",
			mutate:  func(c *Config) { c.AirIQ.BaseURL = "not a url" },
			wantErr: "base_url",
		},
		{
			name:    "unknown auth scheme",
			mutate:  func(c *Config) { c.AirIQ.AuthScheme = "digest" },
			wantErr: "auth_scheme",
		},
		{
			name:    "bad login timeout",
			mutate:  func(c *Config) { c.AirIQ.LoginTimeout = "ten seconds" },
			wantErr: "login_timeout",
		},
		{
			name:    "bad token ttl",
			mutate:  func(c *Config) { c.Session.TokenTTL = "45" },
			wantErr: "token_ttl",
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.AirIQ.RateLimit = -1 },
			wantErr: "rate_limit",
		},
		{
			name:    "negative login limit",
			mutate:  func(c *Config) { c.Session.DailyLoginLimit = -5 },
			wantErr: "daily_login_limit",
		},
		{
			name:    "bad maintenance schedule",
			mutate:  func(c *Config) { c.Maintenance.Schedule = "never" },
			wantErr: "maintenance.schedule",
		},
		{
			name: "maintenance schedule ignored when disabled",
			mutate: func(c *Config) {
				c.Maintenance.Enabled = false
				c.Maintenance.Schedule = "never"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestDurationOrDefault(t *testing.T) {
	assert.Equal(t, 10*time.Second, DurationOrDefault("", 10*time.Second))
	assert.Equal(t, 45*time.Minute, DurationOrDefault("45m", 10*time.Second))
	assert.Equal(t, 10*time.Second, DurationOrDefault("bogus", 10*time.Second))
}

func TestValidateMaintenanceSchedule(t *testing.T) {
	assert.NoError(t, ValidateMaintenanceSchedule("*/30 * * * *"))
	assert.NoError(t, ValidateMaintenanceSchedule("0 3 * * *"))

	// Below the 5-minute floor
	assert.Error(t, ValidateMaintenanceSchedule("* * * * *"))
	assert.Error(t, ValidateMaintenanceSchedule("*/2 * * * *"))

	// Not a cron expression at all
	assert.Error(t, ValidateMaintenanceSchedule("every half hour"))
}

func TestIsProduction(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.False(t, cfg.IsProduction())

	cfg.Environment = "production"
	assert.True(t, cfg.IsProduction())

	cfg.Environment = " PROD "
	assert.True(t, cfg.IsProduction())
}
