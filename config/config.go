package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the engine process
type Config struct {
	Server  ServerConfig
	Logger  LoggerConfig
	Journal JournalConfig
	Feed    FeedConfig
}

// ServerConfig holds the TCP engine server configuration
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level string // debug, info, warn, error
	Mode  string // development or production
}

// JournalConfig holds trade journal sink configuration
type JournalConfig struct {
	Memory   MemoryConfig
	File     FileConfig
	Redis    RedisConfig
	Database DatabaseConfig
}

// MemoryConfig holds the in-memory trade buffer configuration
type MemoryConfig struct {
	Enabled   bool
	MaxTrades int
}

// FileConfig holds the append-only trade log configuration
type FileConfig struct {
	Enabled bool
	Path    string
}

// RedisConfig holds the Redis trade journal configuration
type RedisConfig struct {
	Enabled   bool
	Host      string
	Port      int
	Password  string
	DB        int
	PoolSize  int
	MaxTrades int
}

// DatabaseConfig holds the PostgreSQL trade journal configuration
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	MaxConns int
	SSLMode  string
}

// FeedConfig holds the Kafka market-data feed configuration
type FeedConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
	Buffer  int
}

// Load loads configuration from .env file (if exists) and environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvInt("ENGINE_PORT", 12345),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			Mode:  getEnv("LOG_MODE", "development"),
		},
		Journal: JournalConfig{
			Memory: MemoryConfig{
				Enabled:   getEnvBool("MEMORY_ENABLED", true),
				MaxTrades: getEnvInt("MEMORY_MAX_TRADES", 1000),
			},
			File: FileConfig{
				Enabled: getEnvBool("TRADE_LOG_ENABLED", true),
				Path:    getEnv("TRADE_LOG_PATH", "trades.log"),
			},
			Redis: RedisConfig{
				Enabled:   getEnvBool("REDIS_ENABLED", false),
				Host:      getEnv("REDIS_HOST", "localhost"),
				Port:      getEnvInt("REDIS_PORT", 6379),
				Password:  getEnv("REDIS_PASSWORD", ""),
				DB:        getEnvInt("REDIS_DB", 0),
				PoolSize:  getEnvInt("REDIS_POOL_SIZE", 10),
				MaxTrades: getEnvInt("REDIS_MAX_TRADES", 10000),
			},
			Database: DatabaseConfig{
				Enabled:  getEnvBool("DATABASE_ENABLED", false),
				Host:     getEnv("DATABASE_HOST", "localhost"),
				Port:     getEnvInt("DATABASE_PORT", 5432),
				Name:     getEnv("DATABASE_NAME", "matching_engine"),
				User:     getEnv("DATABASE_USER", "postgres"),
				Password: getEnv("DATABASE_PASSWORD", ""),
				MaxConns: getEnvInt("DATABASE_MAX_CONNECTIONS", 10),
				SSLMode:  getEnv("DATABASE_SSL_MODE", "disable"),
			},
		},
		Feed: FeedConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC", "market-trades"),
			Buffer:  getEnvInt("KAFKA_BUFFER", 1024),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("ENGINE_PORT must be between 1 and 65535")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logger.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}
	if c.Logger.Mode != "development" && c.Logger.Mode != "production" {
		return fmt.Errorf("LOG_MODE must be development or production")
	}

	if c.Journal.Memory.Enabled && c.Journal.Memory.MaxTrades < 1 {
		return fmt.Errorf("MEMORY_MAX_TRADES must be > 0")
	}
	if c.Journal.File.Enabled && c.Journal.File.Path == "" {
		return fmt.Errorf("TRADE_LOG_PATH cannot be empty")
	}
	if c.Journal.Redis.Enabled && c.Journal.Redis.MaxTrades < 1 {
		return fmt.Errorf("REDIS_MAX_TRADES must be > 0")
	}

	if c.Feed.Enabled {
		if len(c.Feed.Brokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS cannot be empty when KAFKA_ENABLED")
		}
		if c.Feed.Topic == "" {
			return fmt.Errorf("KAFKA_TOPIC cannot be empty when KAFKA_ENABLED")
		}
	}

	return nil
}

// Helper functions to read environment variables with defaults

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
