package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	Debug          bool

	DatabaseDriver       string
	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int

	RedisURL      string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	TokenTTL  time.Duration

	SessionIdleTimeout time.Duration
	CleanupInterval    time.Duration

	AuditQueueSize int
	AuditTimeout   time.Duration

	LogLevel  string
	LogFormat string
	LogFile   string

	MessagesDir string

	// Warnings collects env values that failed to parse. They are logged once
	// the logger exists.
	Warnings []string
}

var AppConfig *Config

func LoadConfig() *Config {
	cfg := &Config{}
	cfg.Port = GetEnv("PORT", "8080")
	cfg.Debug = GetEnvAsBool("DEBUG", false)

	// CORS / websocket origins, empty means any
	for _, origin := range strings.Split(GetEnv("ALLOWED_ORIGINS", ""), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	// Database Config
	cfg.DatabaseDriver = strings.ToLower(GetEnv("DB_DRIVER", "pgx"))
	cfg.DatabaseURL = GetEnv("DATABASE_URL", GetEnv("DATABASE_URI", ""))
	if cfg.DatabaseDriver == "pgx" {
		cfg.DatabaseURL = withSimpleProtocol(cfg.DatabaseURL)
	}
	cfg.DBMaxOpenConns = cfg.intEnv("DB_MAX_OPEN_CONNS", 25)
	cfg.DBMaxIdleConns = cfg.intEnv("DB_MAX_IDLE_CONNS", 25)
	cfg.DBConnMaxLifetimeMin = cfg.intEnv("DB_CONN_MAX_LIFETIME_MINUTES", 5)

	cfg.RedisURL = GetEnv("REDIS_URL", "")
	cfg.RedisPassword = GetEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = cfg.intEnv("REDIS_DB", 0)

	// Security
	cfg.JWTSecret = GetEnv("JWT_SECRET", "your-secret-key-change-this-in-production")
	cfg.TokenTTL = time.Duration(cfg.intEnv("TOKEN_TTL_HOURS", 24)) * time.Hour

	cfg.SessionIdleTimeout = time.Duration(cfg.intEnv("SESSION_IDLE_TIMEOUT_MINUTES", 60)) * time.Minute
	cfg.CleanupInterval = time.Duration(cfg.intEnv("CLEANUP_INTERVAL_MINUTES", 10)) * time.Minute

	cfg.AuditQueueSize = cfg.intEnv("AUDIT_QUEUE_SIZE", 256)
	cfg.AuditTimeout = time.Duration(cfg.intEnv("AUDIT_TIMEOUT_SECONDS", 5)) * time.Second

	cfg.LogLevel = GetEnv("LOG_LEVEL", "info")
	cfg.LogFormat = GetEnv("LOG_FORMAT", "console")
	cfg.LogFile = GetEnv("LOG_FILE", "")

	cfg.MessagesDir = GetEnv("MESSAGES_DIR", "")

	AppConfig = cfg
	return cfg
}

func (c *Config) intEnv(key string, defaultValue int) int {
	value, err := GetEnvAsInt(key, defaultValue)
	if err != nil {
		c.Warnings = append(c.Warnings, err.Error())
	}
	return value
}

// Append simple_protocol for PgBouncer compatibility (pgx driver)
func withSimpleProtocol(dbURL string) string {
	if dbURL == "" {
		return dbURL
	}
	u, err := url.Parse(dbURL)
	if err != nil {
		return dbURL
	}
	q := u.Query()
	if q.Get("default_query_exec_mode") == "" {
		q.Set("default_query_exec_mode", "simple_protocol")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvAsInt returns defaultValue together with an error when the variable
// is set but not an integer.
func GetEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		return defaultValue, fmt.Errorf("invalid integer value for %s: %q, using default %d", key, valueStr, defaultValue)
	}
	return value, nil
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return value
}
