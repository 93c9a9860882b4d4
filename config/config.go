package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Security  SecurityConfig  `json:"security"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Logging   LoggingConfig   `json:"logging"`
	Telegram  TelegramConfig  `json:"telegram"`
	Tasks     []TaskConfig    `json:"tasks"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `json:"path"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	APIKey string `json:"api_key"`
}

// SchedulerConfig contains polling loop settings
type SchedulerConfig struct {
	Timezone        string `json:"timezone"`          // IANA name; empty means local
	IntervalSeconds int    `json:"interval_seconds"`  // poll interval
	MaxDeferSeconds int    `json:"max_defer_seconds"` // cap on estimate-based deferrals
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Format    string `json:"format"` // "json" or "text"
	Level     string `json:"level"`
	QueueSize int    `json:"queue_size"` // 0 disables the relay queue
}

// TelegramConfig contains notification settings; empty token disables
type TelegramConfig struct {
	Token  string `json:"token"`
	ChatID int64  `json:"chat_id"`
}

// TaskConfig seeds a task definition into storage at startup
type TaskConfig struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
	Runner     string `json:"runner"`
	Action     string `json:"action"`
	Enabled    *bool  `json:"enabled"`
}

// Interval returns the poll interval as a duration
func (s SchedulerConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

// MaxDefer returns the deferral cap as a duration
func (s SchedulerConfig) MaxDefer() time.Duration {
	return time.Duration(s.MaxDeferSeconds) * time.Second
}

// Location resolves the configured timezone
func (s SchedulerConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidConfig, s.Timezone)
	}
	return loc, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: invalid server port", ErrInvalidConfig)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("%w: database path is required", ErrInvalidConfig)
	}

	if c.Security.APIKey == "" {
		return fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}

	if c.Scheduler.IntervalSeconds <= 0 {
		c.Scheduler.IntervalSeconds = 10
	}
	if c.Scheduler.MaxDeferSeconds <= 0 {
		c.Scheduler.MaxDeferSeconds = 3600
	}
	if _, err := c.Scheduler.Location(); err != nil {
		return err
	}

	for _, task := range c.Tasks {
		if task.Name == "" || task.Expression == "" || task.Runner == "" {
			return fmt.Errorf("%w: task needs name, expression and runner", ErrInvalidConfig)
		}
	}

	return nil
}

// Load loads configuration from a JSON file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigFileNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadFromEnv loads configuration from environment variables
// This is useful for containerized deployments
func LoadFromEnv() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host: getEnv("TEMPO_HOST", "0.0.0.0"),
			Port: getEnvInt("TEMPO_PORT", 8080),
		},
		Database: DatabaseConfig{
			Path: getEnv("TEMPO_DB_PATH", "./tempo.db"),
		},
		Security: SecurityConfig{
			APIKey: getEnv("TEMPO_API_KEY", ""),
		},
		Scheduler: SchedulerConfig{
			Timezone:        getEnv("TEMPO_TIMEZONE", ""),
			IntervalSeconds: getEnvInt("TEMPO_INTERVAL_SECONDS", 10),
			MaxDeferSeconds: getEnvInt("TEMPO_MAX_DEFER_SECONDS", 3600),
		},
		Logging: LoggingConfig{
			Format:    getEnv("TEMPO_LOG_FORMAT", "json"),
			Level:     getEnv("TEMPO_LOG_LEVEL", "info"),
			QueueSize: getEnvInt("TEMPO_LOG_QUEUE_SIZE", 0),
		},
		Telegram: TelegramConfig{
			Token:  getEnv("TEMPO_TELEGRAM_TOKEN", ""),
			ChatID: int64(getEnvInt("TEMPO_TELEGRAM_CHAT_ID", 0)),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		fmt.Sscanf(value, "%d", &intVal)
		return intVal
	}
	return defaultValue
}
