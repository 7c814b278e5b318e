package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// History sources
const (
	HistorySourceAPI      = "api"
	HistorySourcePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Upstream  UpstreamConfig
	Forecast  ForecastConfig
	Scheduler SchedulerConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MigrationsDir string
}

// RedisConfig holds the result cache connection
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers       []string
	ForecastTopic string
	PriceTopic    string
	GroupID       string
}

// UpstreamConfig holds the market data API client settings
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64
}

// ForecastConfig holds engine and caching settings
type ForecastConfig struct {
	CacheTTL      time.Duration
	HistorySource string
	HistoryDays   int
	TuningFile    string
}

// SchedulerConfig holds the cache warmer and retention schedules.
// Empty specs disable the job.
type SchedulerConfig struct {
	WarmCron      string
	WarmAssets    []string
	WarmTimeout   time.Duration
	RetentionCron string
	RetentionDays int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables, after loading a .env
// file when one is present
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", "postgres"),
			DBName:        getEnv("DB_NAME", "forecasts"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			MigrationsDir: getEnv("DB_MIGRATIONS_DIR", "db/migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS", "localhost:9092"),
			ForecastTopic: getEnv("KAFKA_FORECAST_TOPIC", "forecast-events"),
			PriceTopic:    getEnv("KAFKA_PRICE_TOPIC", "price-events"),
			GroupID:       getEnv("KAFKA_GROUP_ID", "price-forecast-service"),
		},
		Upstream: UpstreamConfig{
			BaseURL: getEnv("UPSTREAM_BASE_URL", "http://localhost:3000/api"),
			Timeout: getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),
			RPS:     getEnvFloat("UPSTREAM_RPS", 5),
		},
		Forecast: ForecastConfig{
			CacheTTL:      getEnvDuration("FORECAST_CACHE_TTL", 24*time.Hour),
			HistorySource: getEnv("FORECAST_HISTORY_SOURCE", HistorySourceAPI),
			HistoryDays:   getEnvInt("FORECAST_HISTORY_DAYS", 365),
			TuningFile:    getEnv("FORECAST_TUNING_FILE", ""),
		},
		Scheduler: SchedulerConfig{
			WarmCron:      getEnv("WARM_CRON", ""),
			WarmAssets:    getEnvList("WARM_ASSETS", ""),
			WarmTimeout:   getEnvDuration("WARM_TIMEOUT", time.Minute),
			RetentionCron: getEnv("RETENTION_CRON", ""),
			RetentionDays: getEnvInt("RETENTION_DAYS", 730),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

// Address returns the HTTP listen address
func (s *ServerConfig) Address() string {
	return s.Host + ":" + s.Port
}

// SetupLogging applies level and format to the standard logrus logger.
// Unknown levels fall back to info.
func SetupLogging(cfg LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		logrus.WithField("key", key).Warn("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		logrus.WithField("key", key).Warn("Invalid number, using default")
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		logrus.WithField("key", key).Warn("Invalid duration, using default")
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping empty items
func getEnvList(key, defaultValue string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
