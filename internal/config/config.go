package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Logging   LoggingConfig   `json:"logging"`
	Security  SecurityConfig  `json:"security"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Analytics AnalyticsConfig `json:"analytics"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port            string        `json:"port"`
	Host            string        `json:"host"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	Environment     string        `json:"environment"`
	CORSOrigins     []string      `json:"cors_origins"`

	// TrustProxyHeaders makes X-Forwarded-For and X-Real-IP identify the client
	TrustProxyHeaders bool `json:"trust_proxy_headers"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"dbname"`
	SSLMode        string        `json:"sslmode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleTime    time.Duration `json:"max_idle_time"`
	QueryTimeout   time.Duration `json:"query_timeout"`
	MigrationsPath string        `json:"migrations_path"`
}

// RedisConfig represents Redis configuration
type RedisConfig struct {
	Host     string        `json:"host"`
	Port     int           `json:"port"`
	Password string        `json:"password"`
	DB       int           `json:"db"`
	PoolSize int           `json:"pool_size"`
	Timeout  time.Duration `json:"timeout"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // json, text
}

// SecurityConfig represents token verification settings
type SecurityConfig struct {
	JWTSecret string `json:"jwt_secret"`
	JWTIssuer string `json:"jwt_issuer"`
}

// RateLimitConfig represents per-staff request limiting
type RateLimitConfig struct {
	Enabled  bool          `json:"enabled"`
	Requests int           `json:"requests"`
	Window   time.Duration `json:"window"`
}

// AnalyticsConfig tunes the analytics engine
type AnalyticsConfig struct {
	CacheTTL            time.Duration `json:"cache_ttl"`
	CacheMaxEntries     int           `json:"cache_max_entries"`
	RecordStoreMaxRows  int           `json:"record_store_max_rows"`
	PerformanceLookback time.Duration `json:"performance_lookback"`
	TrendLookback       time.Duration `json:"trend_lookback"`
	EventFetchLimit     int           `json:"event_fetch_limit"`
	AssetFetchLimit     int           `json:"asset_fetch_limit"`
}

const defaultJWTSecret = "your-secret-key-change-in-production"

// Load reads configuration from the environment, after loading a .env file if present
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			Environment:     getEnv("ENVIRONMENT", "development"),
			CORSOrigins:     getEnvSlice("CORS_ORIGINS", []string{"*"}),

			TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnvInt("DB_PORT", 5432),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", ""),
			DBName:         getEnv("DB_NAME", "assetdash"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConnections: getEnvInt("DB_MAX_CONNECTIONS", 20),
			MaxIdleTime:    getEnvDuration("DB_MAX_IDLE_TIME", 30*time.Minute),
			QueryTimeout:   getEnvDuration("DB_QUERY_TIMEOUT", 30*time.Second),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "./migrations"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 10),
			Timeout:  getEnvDuration("REDIS_TIMEOUT", 5*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			JWTSecret: getEnv("JWT_SECRET", defaultJWTSecret),
			JWTIssuer: getEnv("JWT_ISSUER", "fixora"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  getEnvBool("RATE_LIMIT_ENABLED", false),
			Requests: getEnvInt("RATE_LIMIT_REQUESTS", 60),
			Window:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Analytics: AnalyticsConfig{
			CacheTTL:            getEnvDuration("ANALYTICS_CACHE_TTL", 15*time.Minute),
			CacheMaxEntries:     getEnvInt("ANALYTICS_CACHE_MAX_ENTRIES", 100),
			RecordStoreMaxRows:  getEnvInt("RECORD_STORE_MAX_ROWS", 10000),
			PerformanceLookback: getEnvDuration("ANALYTICS_PERFORMANCE_LOOKBACK", 180*24*time.Hour),
			TrendLookback:       getEnvDuration("ANALYTICS_TREND_LOOKBACK", 365*24*time.Hour),
			EventFetchLimit:     getEnvInt("ANALYTICS_EVENT_FETCH_LIMIT", 5000),
			AssetFetchLimit:     getEnvInt("ANALYTICS_ASSET_FETCH_LIMIT", 10000),
		},
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Security.JWTSecret == "" || c.Security.JWTSecret == defaultJWTSecret {
		if c.IsProduction() {
			return fmt.Errorf("JWT secret must be set in production")
		}
	}

	if c.Analytics.CacheTTL <= 0 {
		return fmt.Errorf("analytics cache TTL must be positive")
	}

	if c.Analytics.CacheMaxEntries <= 0 {
		return fmt.Errorf("analytics cache max entries must be positive")
	}

	if c.Analytics.RecordStoreMaxRows <= 0 {
		return fmt.Errorf("record store max rows must be positive")
	}

	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("rate limit requests and window must be positive when enabled")
	}

	return nil
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GetDatabaseURL returns the database connection URL
func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis host:port address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions for environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
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

func getEnvSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
