// Package common provides shared configuration, logging and utility helpers.
package common

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string            `toml:"environment"` // "development" or "production"
	Server      ServerConfig      `toml:"server"`
	AirIQ       AirIQConfig       `toml:"airiq"`
	Session     SessionConfig     `toml:"session"`
	Storage     StorageConfig     `toml:"storage"`
	Logging     LoggingConfig     `toml:"logging"`
	Maintenance MaintenanceConfig `toml:"maintenance"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// AirIQConfig contains the AirIQ TravelAPI endpoint and agency credentials.
// AgentID, Username and Password must all be set; startup fails otherwise.
type AirIQConfig struct {
	BaseURL        string `toml:"base_url"`        // Service root, e.g. "http://airiqnewapi.mywebcheck.in/TravelAPI.svc"
	AgentID        string `toml:"agent_id"`        // Agency identifier, e.g. "AQAG059771"
	Username       string `toml:"username"`        // API username
	Password       string `toml:"password"`        // API password
	OverrideToken  string `toml:"override_token"`  // Out-of-band session token; installed at startup, skips login
	AuthScheme     string `toml:"auth_scheme"`     // "raw" (bare header values, default) or "bearer"
	LoginTimeout   string `toml:"login_timeout"`   // e.g. "10s"
	SearchTimeout  string `toml:"search_timeout"`  // Availability and Pricing calls, e.g. "20s"
	BookingTimeout string `toml:"booking_timeout"` // e.g. "30s"
	RateLimit      int    `toml:"rate_limit"`      // Data requests per second
}

// SessionConfig controls token caching and the daily login budget.
type SessionConfig struct {
	TokenTTL        string `toml:"token_ttl"`         // Fixed token lifetime, e.g. "45m"; empty = valid until end of day
	DailyLoginLimit int    `toml:"daily_login_limit"` // Max logins per calendar day (0 = unlimited)
	Persist         bool   `toml:"persist"`           // Persist the session and login counter across restarts
}

type StorageConfig struct {
	Type   string       `toml:"type"` // Only "badger" is supported
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level       string   `toml:"level"`        // "debug", "info", "warn", "error"
	Format      string   `toml:"format"`       // "json" or "text"
	Output      []string `toml:"output"`       // "stdout", "file"
	ClientDebug bool     `toml:"client_debug"` // Enable client-side debug logging
}

// MaintenanceConfig controls the background storage hygiene schedule.
// Maintenance only touches local storage; it never calls the AirIQ API,
// so token acquisition stays strictly lazy.
type MaintenanceConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format (5 fields)
}

// NewDefaultConfig creates a configuration with default values
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in volare.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development", // Default to development mode
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		AirIQ: AirIQConfig{
			BaseURL:        "http://airiqnewapi.mywebcheck.in/TravelAPI.svc",
			AuthScheme:     "raw", // Live endpoint expects unprefixed Authorization values
			LoginTimeout:   "10s", // Login responds quickly or not at all
			SearchTimeout:  "20s", // Availability/Pricing
			BookingTimeout: "30s", // Book is the slowest call
			RateLimit:      5,     // Data requests per second
		},
		Session: SessionConfig{
			TokenTTL:        "",   // Token trusted until end of the calendar day
			DailyLoginLimit: 50,   // Provider enforces a daily login quota
			Persist:         true, // Survive restarts without spending a login
		},
		Storage: StorageConfig{
			Type: "badger",
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",                     // Info level for production (debug|info|warn|error)
			Format: "text",                     // Human-readable text format (text|json)
			Output: []string{"stdout", "file"}, // Log to both console and file
		},
		Maintenance: MaintenanceConfig{
			Enabled:  true,
			Schedule: "*/30 * * * *", // Every 30 minutes
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
// Priority system: CLI flags > Environment variables > Config file > Defaults
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env -> CLI
// Later files override earlier files. Priority system: CLI flags > Environment variables > Last config file > ... > First config file > Defaults
// Example: LoadFromFiles("base.toml", "override.toml") - override.toml settings take precedence over base.toml
func LoadFromFiles(paths ...string) (*Config, error) {
	// Start with defaults
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier files)
	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Apply environment variables (overrides all file configs)
	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment configuration (highest priority: VOLARE_ENV, fallback: GO_ENV)
	if env := os.Getenv("VOLARE_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("VOLARE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("VOLARE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// AirIQ configuration
	// VOLARE_ prefixed names take priority; bare AIRIQ_ names are accepted so
	// deployments can share credentials with other tooling.
	if baseURL := os.Getenv("VOLARE_AIRIQ_BASE_URL"); baseURL != "" {
		config.AirIQ.BaseURL = baseURL
	} else if baseURL := os.Getenv("AIRIQ_BASE_URL"); baseURL != "" {
		config.AirIQ.BaseURL = baseURL
	}
	if agentID := os.Getenv("VOLARE_AIRIQ_AGENT_ID"); agentID != "" {
		config.AirIQ.AgentID = agentID
	} else if agentID := os.Getenv("AIRIQ_AGENT_ID"); agentID != "" {
		config.AirIQ.AgentID = agentID
	}
	if username := os.Getenv("VOLARE_AIRIQ_USERNAME"); username != "" {
		config.AirIQ.Username = username
	} else if username := os.Getenv("AIRIQ_USERNAME"); username != "" {
		config.AirIQ.Username = username
	}
	if password := os.Getenv("VOLARE_AIRIQ_PASSWORD"); password != "" {
		config.AirIQ.Password = password
	} else if password := os.Getenv("AIRIQ_PASSWORD"); password != "" {
		config.AirIQ.Password = password
	}
	if token := os.Getenv("VOLARE_AIRIQ_OVERRIDE_TOKEN"); token != "" {
		config.AirIQ.OverrideToken = token
	}
	if scheme := os.Getenv("VOLARE_AIRIQ_AUTH_SCHEME"); scheme != "" {
		config.AirIQ.AuthScheme = scheme
	}
	if timeout := os.Getenv("VOLARE_AIRIQ_LOGIN_TIMEOUT"); timeout != "" {
		config.AirIQ.LoginTimeout = timeout
	}
	if timeout := os.Getenv("VOLARE_AIRIQ_SEARCH_TIMEOUT"); timeout != "" {
		config.AirIQ.SearchTimeout = timeout
	}
	if timeout := os.Getenv("VOLARE_AIRIQ_BOOKING_TIMEOUT"); timeout != "" {
		config.AirIQ.BookingTimeout = timeout
	}
	if rateLimit := os.Getenv("VOLARE_AIRIQ_RATE_LIMIT"); rateLimit != "" {
		if rl, err := strconv.Atoi(rateLimit); err == nil {
			config.AirIQ.RateLimit = rl
		}
	}

	// Session configuration
	if ttl := os.Getenv("VOLARE_SESSION_TOKEN_TTL"); ttl != "" {
		config.Session.TokenTTL = ttl
	}
	if limit := os.Getenv("VOLARE_SESSION_DAILY_LOGIN_LIMIT"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			config.Session.DailyLoginLimit = l
		}
	}
	if persist := os.Getenv("VOLARE_SESSION_PERSIST"); persist != "" {
		if p, err := strconv.ParseBool(persist); err == nil {
			config.Session.Persist = p
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("VOLARE_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("VOLARE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("VOLARE_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("VOLARE_LOG_OUTPUT"); output != "" {
		// Split comma-separated output types
		outputs := []string{}
		for _, o := range splitString(output, ",") {
			trimmed := trimSpace(o)
			if trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Maintenance configuration
	if enabled := os.Getenv("VOLARE_MAINTENANCE_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Maintenance.Enabled = e
		}
	}
	if schedule := os.Getenv("VOLARE_MAINTENANCE_SCHEDULE"); schedule != "" {
		config.Maintenance.Schedule = schedule
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks config shape problems that must fail startup, before any
// API traffic: a malformed base URL, unknown auth scheme, or unparsable
// durations. Credential presence is validated by the airiq package.
func (c *Config) Validate() error {
	parsed, err := url.Parse(c.AirIQ.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("airiq.base_url %q is not a valid URL", c.AirIQ.BaseURL)
	}

	switch strings.ToLower(c.AirIQ.AuthScheme) {
	case "", "raw", "bearer":
	default:
		return fmt.Errorf("airiq.auth_scheme must be \"raw\" or \"bearer\", got %q", c.AirIQ.AuthScheme)
	}

	for name, value := range map[string]string{
		"airiq.login_timeout":   c.AirIQ.LoginTimeout,
		"airiq.search_timeout":  c.AirIQ.SearchTimeout,
		"airiq.booking_timeout": c.AirIQ.BookingTimeout,
		"session.token_ttl":     c.Session.TokenTTL,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s %q is not a valid duration: %w", name, value, err)
		}
	}

	if c.AirIQ.RateLimit < 0 {
		return fmt.Errorf("airiq.rate_limit must not be negative, got %d", c.AirIQ.RateLimit)
	}
	if c.Session.DailyLoginLimit < 0 {
		return fmt.Errorf("session.daily_login_limit must not be negative, got %d", c.Session.DailyLoginLimit)
	}

	if c.Maintenance.Enabled {
		if err := ValidateMaintenanceSchedule(c.Maintenance.Schedule); err != nil {
			return fmt.Errorf("maintenance.schedule: %w", err)
		}
	}

	return nil
}

// DurationOrDefault parses a duration string, falling back when empty or invalid.
func DurationOrDefault(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// ValidateMaintenanceSchedule validates a cron schedule expression and ensures minimum 5-minute interval
func ValidateMaintenanceSchedule(schedule string) error {
	// Parse the cron expression
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	// Check for minimum 5-minute interval
	// Validate minute field (first field in standard cron)
	parts := strings.Fields(schedule)
	if len(parts) < 5 {
		return fmt.Errorf("invalid cron format: expected 5 fields")
	}

	minuteField := parts[0]

	// Check for patterns that violate 5-minute minimum
	if minuteField == "*" {
		return fmt.Errorf("schedule must have minimum 5-minute interval (every minute is not allowed)")
	}

	// Check for */n patterns where n < 5
	if strings.HasPrefix(minuteField, "*/") {
		intervalStr := strings.TrimPrefix(minuteField, "*/")
		interval, err := strconv.Atoi(intervalStr)
		if err == nil && interval < 5 {
			return fmt.Errorf("schedule interval must be at least 5 minutes, got %d", interval)
		}
	}

	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// Helper functions for string manipulation
func splitString(s, sep string) []string {
	result := []string{}
	start := 0
	for i := 0; i < len(s); i++ {
		if i+len(sep) <= len(s) && s[i:i+len(sep)] == sep {
			result = append(result, s[start:i])
			start = i + len(sep)
			i = start - 1
		}
	}
	result = append(result, s[start:])
	return result
}

func trimSpace(s string) string {
	start := 0
	end := len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t' || s[start] == '\n' || s[start] == '\r') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}
	return s[start:end]
}
