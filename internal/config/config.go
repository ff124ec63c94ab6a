package config

import (
	"os"
	"strconv"
	"time"

	"transitvet/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Vetting  VettingConfig
	Logging  LoggingConfig
	Data     DataConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection settings. URL is optional: the
// CLI runs against in-memory storage, only the API server insists on it.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// VettingConfig holds SWEET and batch engine settings
type VettingConfig struct {
	ThresholdSigma float64
	NumDurations   float64
	DetrendWindow  int
	MaxConcurrent  int64
}

// LoggingConfig holds log settings
type LoggingConfig struct {
	Level string
}

// DataConfig holds input file settings
type DataConfig struct {
	LightcurveFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   loadServerConfig(),
		Database: loadDatabaseConfig(),
		Vetting:  loadVettingConfig(),
		Logging:  loadLoggingConfig(),
		Data:     loadDataConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// RequireDatabase fails when no database URL is configured. The API server
// calls this; the CLI does not.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	return nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:         getEnvOrDefault("PORT", "8080"),
		ReadTimeout:  getEnvDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:          getEnvOrDefault("DATABASE_URL", ""),
		MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns: getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
	}
}

func loadVettingConfig() VettingConfig {
	return VettingConfig{
		ThresholdSigma: getEnvFloatOrDefault("SWEET_THRESHOLD_SIGMA", 3.0),
		NumDurations:   getEnvFloatOrDefault("SWEET_NUM_DURATIONS", 1.0),
		DetrendWindow:  getEnvIntOrDefault("SWEET_DETREND_WINDOW", 0),
		MaxConcurrent:  int64(getEnvIntOrDefault("VET_MAX_CONCURRENT", 4)),
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}
}

func loadDataConfig() DataConfig {
	return DataConfig{
		LightcurveFile: getEnvOrDefault("LIGHTCURVE_FILE", ""),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Vetting.ThresholdSigma <= 0 {
		return errors.ConfigInvalid("SWEET_THRESHOLD_SIGMA must be positive")
	}
	if config.Vetting.NumDurations <= 0 {
		return errors.ConfigInvalid("SWEET_NUM_DURATIONS must be positive")
	}
	if config.Vetting.DetrendWindow < 0 {
		return errors.ConfigInvalid("SWEET_DETREND_WINDOW must not be negative")
	}
	if config.Vetting.MaxConcurrent < 1 {
		return errors.ConfigInvalid("VET_MAX_CONCURRENT must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
