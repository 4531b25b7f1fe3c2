package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mixtape-audio/mixtape/pkg/subsonic"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Subsonic server connection
	Server ServerConfig

	// Reliability tuning passed through to the client
	Tuning TuningConfig

	// Path to the play-event spool database
	SpoolDB string

	// Log level for commands that log (debug, info, warn, error)
	LogLevel string
}

// ServerConfig holds the Subsonic server connection settings
type ServerConfig struct {
	URL      string
	Username string
	Password string
	// Client identifier string sent with every request
	ClientName string
	// Protocol version string advertised to the server
	ProtocolVersion string
}

// TuningConfig holds the reliability knobs of the protocol client
type TuningConfig struct {
	Concurrency      int
	BreakerThreshold int
	BreakerTimeout   time.Duration
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Set defaults
	v.SetDefault("server.client_name", subsonic.DefaultClientName)
	v.SetDefault("server.protocol_version", subsonic.DefaultProtocolVersion)
	v.SetDefault("tuning.concurrency", subsonic.DefaultConcurrency)
	v.SetDefault("tuning.breaker_threshold", subsonic.DefaultBreakerThreshold)
	v.SetDefault("tuning.breaker_timeout", subsonic.DefaultBreakerTimeout)
	v.SetDefault("tuning.retry_max_attempts", subsonic.DefaultRetryMaxAttempts)
	v.SetDefault("tuning.retry_base_delay", subsonic.DefaultRetryBaseDelay)
	v.SetDefault("tuning.retry_max_delay", subsonic.DefaultRetryMaxDelay)
	v.SetDefault("spool_db", filepath.Join(configDir, "spool.db"))
	v.SetDefault("log_level", "info")

	// Read config file (optional - don't fail if missing)
	_ = v.ReadInConfig()

	// Read from environment variables (MIXTAPE_SERVER_URL, etc.)
	v.SetEnvPrefix("MIXTAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Map config to struct
	cfg := &Config{
		Server: ServerConfig{
			URL:             v.GetString("server.url"),
			Username:        v.GetString("server.username"),
			Password:        v.GetString("server.password"),
			ClientName:      v.GetString("server.client_name"),
			ProtocolVersion: v.GetString("server.protocol_version"),
		},
		Tuning: TuningConfig{
			Concurrency:      v.GetInt("tuning.concurrency"),
			BreakerThreshold: v.GetInt("tuning.breaker_threshold"),
			BreakerTimeout:   v.GetDuration("tuning.breaker_timeout"),
			RetryMaxAttempts: v.GetInt("tuning.retry_max_attempts"),
			RetryBaseDelay:   v.GetDuration("tuning.retry_base_delay"),
			RetryMaxDelay:    v.GetDuration("tuning.retry_max_delay"),
		},
		SpoolDB:  v.GetString("spool_db"),
		LogLevel: v.GetString("log_level"),
	}

	return cfg, nil
}

// ClientConfig converts the loaded configuration into the explicit
// value the protocol client is constructed with
func (c *Config) ClientConfig() subsonic.Config {
	return subsonic.Config{
		BaseURL:          c.Server.URL,
		Username:         c.Server.Username,
		Password:         c.Server.Password,
		ClientName:       c.Server.ClientName,
		ProtocolVersion:  c.Server.ProtocolVersion,
		Concurrency:      c.Tuning.Concurrency,
		BreakerThreshold: c.Tuning.BreakerThreshold,
		BreakerTimeout:   c.Tuning.BreakerTimeout,
		RetryMaxAttempts: c.Tuning.RetryMaxAttempts,
		RetryBaseDelay:   c.Tuning.RetryBaseDelay,
		RetryMaxDelay:    c.Tuning.RetryMaxDelay,
	}
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "mixtape")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// Save writes configuration to file
func (c *Config) Save() error {
	v := viper.New()

	// Set config file path
	configDir := getConfigDir()
	configFile := filepath.Join(configDir, "config.yaml")

	// Set values in viper
	v.Set("server.url", c.Server.URL)
	v.Set("server.username", c.Server.Username)
	v.Set("server.password", c.Server.Password)
	v.Set("server.client_name", c.Server.ClientName)
	v.Set("server.protocol_version", c.Server.ProtocolVersion)
	v.Set("tuning.concurrency", c.Tuning.Concurrency)
	v.Set("tuning.breaker_threshold", c.Tuning.BreakerThreshold)
	v.Set("tuning.breaker_timeout", c.Tuning.BreakerTimeout)
	v.Set("tuning.retry_max_attempts", c.Tuning.RetryMaxAttempts)
	v.Set("tuning.retry_base_delay", c.Tuning.RetryBaseDelay)
	v.Set("tuning.retry_max_delay", c.Tuning.RetryMaxDelay)
	v.Set("spool_db", c.SpoolDB)
	v.Set("log_level", c.LogLevel)

	// Write to file
	return v.WriteConfigAs(configFile)
}
