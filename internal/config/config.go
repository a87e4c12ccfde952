package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Upstream UpstreamConfig
	Auth     AuthConfig
	Kafka    KafkaConfig
	Cache    CacheConfig
	Logging  LoggingConfig
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database specific configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis specific configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// UpstreamConfig holds configuration for the earnings calendar feed
type UpstreamConfig struct {
	BaseURL            string
	Timeout            time.Duration
	FetchCooldown      time.Duration
	HorizonMonths      int
	EasternOffsetHours int
	MaxRetries         int
}

// AuthConfig holds session verification configuration
type AuthConfig struct {
	JWTSecret     string
	SessionPrefix string
}

// KafkaConfig holds Kafka specific configuration
type KafkaConfig struct {
	Brokers  []string
	ClientID string
	Topics   map[string]string
}

// CacheConfig holds response cache configuration
type CacheConfig struct {
	Enabled  bool
	Duration time.Duration
	Prefix   string
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads the configuration from file and environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Environment variables override
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "10s")
	v.SetDefault("server.idleTimeout", "120s")

	// Database defaults
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "30m")

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// Upstream feed defaults
	v.SetDefault("upstream.baseURL", "https://api.nasdaq.com/api/calendar/earnings")
	v.SetDefault("upstream.timeout", "30s")
	v.SetDefault("upstream.fetchCooldown", "12h")
	v.SetDefault("upstream.horizonMonths", 1)
	// Fixed backward shift approximating US Eastern; not DST-aware.
	v.SetDefault("upstream.easternOffsetHours", 5)
	v.SetDefault("upstream.maxRetries", 3)

	// Auth defaults
	v.SetDefault("auth.sessionPrefix", "session:")

	// Kafka defaults
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.clientID", "earnings-tracker")
	v.SetDefault("kafka.topics.ingestionEvents", "earnings-ingested")

	// Response cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.duration", "5m")
	v.SetDefault("cache.prefix", "earnings-cache")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
