package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/health-tracker/internal/logger"
)

type Config struct {
	HTTP     HTTPConfig
	DB       DBConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Paging   PagingConfig
	Telegram TelegramConfig
	Logger   LoggerConfig
	Location *time.Location
}

type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the libpq connection string used by the gorm postgres driver.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// MongoConfig points at the database the fitness tracker syncs into.
// An empty URI disables the device source.
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// RedisConfig selects the Redis cache; an empty Addr keeps everything in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type CacheConfig struct {
	TTL time.Duration
}

type PagingConfig struct {
	DefaultLimit      int
	MaxLimit          int
	SleepDefaultLimit int
	SleepMaxLimit     int
}

type TelegramConfig struct {
	Token          string
	AllowedChatIDs []int64
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

// parser accumulates the first problem seen while reading typed values.
type parser struct {
	errs []string
}

func (p *parser) duration(key, def string) time.Duration {
	raw := getEnvOrDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		p.errs = append(p.errs, fmt.Sprintf("%s: invalid duration %q", key, raw))
		return 0
	}
	return d
}

func (p *parser) positiveInt(key, def string) int {
	raw := getEnvOrDefault(key, def)
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		p.errs = append(p.errs, fmt.Sprintf("%s: must be a positive integer, got %q", key, raw))
		return 0
	}
	return n
}

func (p *parser) nonNegativeInt(key, def string) int {
	raw := getEnvOrDefault(key, def)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		p.errs = append(p.errs, fmt.Sprintf("%s: must be a non-negative integer, got %q", key, raw))
		return 0
	}
	return n
}

func (p *parser) chatIDs(key string) []int64 {
	var ids []int64
	for _, part := range splitList(os.Getenv(key)) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			p.errs = append(p.errs, fmt.Sprintf("%s: invalid chat id %q", key, part))
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (p *parser) location(key string) *time.Location {
	name := getEnvOrDefault(key, "Local")
	loc, err := time.LoadLocation(name)
	if err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s: unknown time zone %q", key, name))
		return time.Local
	}
	return loc
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func Load() (*Config, error) {
	var p parser

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr:            getEnvOrDefault("HTTP_ADDR", ":5000"),
			ReadTimeout:     p.duration("HTTP_READ_TIMEOUT", "15s"),
			WriteTimeout:    p.duration("HTTP_WRITE_TIMEOUT", "90s"),
			ShutdownTimeout: p.duration("HTTP_SHUTDOWN_TIMEOUT", "10s"),
			CORSOrigins:     splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
		},
		DB: DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "healthlog"),
			SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			URI:            getEnvOrDefault("MONGO_URI", "mongodb://127.0.0.1:27017"),
			Database:       getEnvOrDefault("MONGO_DEVICE_DB", "HealthLog"),
			ConnectTimeout: p.duration("MONGO_CONNECT_TIMEOUT", "5s"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       p.nonNegativeInt("REDIS_DB", "0"),
		},
		Cache: CacheConfig{
			TTL: p.duration("CACHE_TTL", "5m"),
		},
		Paging: PagingConfig{
			DefaultLimit:      p.positiveInt("PAGE_DEFAULT_LIMIT", "10"),
			MaxLimit:          p.positiveInt("PAGE_MAX_LIMIT", "100"),
			SleepDefaultLimit: p.positiveInt("SLEEP_DEFAULT_LIMIT", "25"),
			SleepMaxLimit:     p.positiveInt("SLEEP_MAX_LIMIT", "500"),
		},
		Telegram: TelegramConfig{
			Token:          os.Getenv("TELEGRAM_BOT_TOKEN"),
			AllowedChatIDs: p.chatIDs("TELEGRAM_ALLOWED_CHAT_IDS"),
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
		Location: p.location("TIMEZONE"),
	}

	if cfg.Paging.DefaultLimit > cfg.Paging.MaxLimit {
		p.errs = append(p.errs, "PAGE_DEFAULT_LIMIT must not exceed PAGE_MAX_LIMIT")
	}
	if cfg.Paging.SleepDefaultLimit > cfg.Paging.SleepMaxLimit {
		p.errs = append(p.errs, "SLEEP_DEFAULT_LIMIT must not exceed SLEEP_MAX_LIMIT")
	}

	if len(p.errs) > 0 {
		return nil, fmt.Errorf("invalid configuration:\n  %s", strings.Join(p.errs, "\n  "))
	}
	return cfg, nil
}
