package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Security SecurityConfig
	Realtime RealtimeConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port                string
	Environment         string
	LogFilePath         string
	RealtimeLogFilePath string
	CorsAllowedOrigins  string
	NatsURL             string
	RedisURL            string
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "memory"
	Connection string
}

type SecurityConfig struct {
	JWTSecret            string
	MessageEncryptionKey string
}

type RealtimeConfig struct {
	MessageEditWindow  time.Duration
	EventLimit         int
	EventWindow        time.Duration
	MembershipCacheTTL time.Duration
	EventsTopic        string
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:                getEnv("APP_PORT", "3000"),
			Environment:         getEnv("GO_ENV", "development"),
			LogFilePath:         getEnv("LOG_FILE_PATH", "logs/app.log"),
			RealtimeLogFilePath: getEnv("REALTIME_LOG_FILE_PATH", "logs/realtime.log"),
			CorsAllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:             getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("STORAGE_DRIVER", DriverPostgres),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Security: SecurityConfig{
			JWTSecret:            getEnv("JWT_SECRET", ""),
			MessageEncryptionKey: getEnv("MESSAGE_ENCRYPTION_KEY", ""),
		},
		Realtime: RealtimeConfig{
			MessageEditWindow:  getEnvAsDuration("MESSAGE_EDIT_WINDOW", 24*time.Hour),
			EventLimit:         getEnvAsInt("REALTIME_EVENT_LIMIT", 120),
			EventWindow:        getEnvAsDuration("REALTIME_EVENT_WINDOW", time.Minute),
			MembershipCacheTTL: getEnvAsDuration("MEMBERSHIP_CACHE_TTL", 30*time.Second),
			EventsTopic:        getEnv("CHAT_EVENTS_TOPIC", "chat_events"),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	if c.Security.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.Security.MessageEncryptionKey == "" {
		return errors.New("MESSAGE_ENCRYPTION_KEY must be set")
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Connection == "" {
			return errors.New("DB_CONNECTION_STRING must be set for the postgres driver")
		}
	case DriverMemory:
	default:
		return errors.New("STORAGE_DRIVER must be postgres or memory")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
