package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		Driver   string
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	GRPC struct {
		Host string
		Port string
	}

	HTTP struct {
		Host string
		Port string
	}

	Engine EngineConfig
}

// EngineConfig carries the tunables of the discovery and social-graph engine.
type EngineConfig struct {
	TimeZone         string
	StoreTimeout     time.Duration
	DefaultPageSize  int
	MaxPageSize      int
	RateBackend      string
	LikesFree        int
	RequestsFree     int
	RequestsPremium  int
	ReportsFree      int
	ReportsPremium   int
	RejectCooldown   time.Duration
	UnfriendCooldown time.Duration
	SkipTTL          time.Duration
	TrendingCacheTTL time.Duration
	NotifyQueueSize  int
	InboundRPS       float64
	InboundBurst     int
	ScoringFile      string
}

// Location resolves the configured time zone, falling back to UTC.
func (e EngineConfig) Location() *time.Location {
	if e.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(e.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func New() *Config {
	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "production")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "engine")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", "mysql"))
	cfg.DB.DSN = os.Getenv("DB_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	}
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "vibeu")

		if cfg.DB.Driver == "sqlite" {
			cfg.DB.DSN = cfg.DB.Name + ".db"
		} else {
			cfg.DB.DSN = fmt.Sprintf(
				"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
				cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
			)
		}
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// gRPC
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "127.0.0.1")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "8080")

	// Engine
	e := &cfg.Engine
	e.TimeZone = getEnvDefault("ENGINE_TIMEZONE", "UTC")
	e.StoreTimeout = getEnvDuration("ENGINE_STORE_TIMEOUT", 3*time.Second)
	e.DefaultPageSize = getEnvInt("ENGINE_PAGE_SIZE", 20)
	e.MaxPageSize = getEnvInt("ENGINE_MAX_PAGE_SIZE", 50)
	e.RateBackend = strings.ToLower(getEnvDefault("ENGINE_RATE_BACKEND", "redis"))
	e.LikesFree = getEnvInt("ENGINE_LIKES_FREE", 100)
	e.RequestsFree = getEnvInt("ENGINE_REQUESTS_FREE", 10)
	e.RequestsPremium = getEnvInt("ENGINE_REQUESTS_PREMIUM", 50)
	e.ReportsFree = getEnvInt("ENGINE_REPORTS_FREE", 5)
	e.ReportsPremium = getEnvInt("ENGINE_REPORTS_PREMIUM", 10)
	e.RejectCooldown = getEnvDuration("ENGINE_REJECT_COOLDOWN", 7*24*time.Hour)
	e.UnfriendCooldown = getEnvDuration("ENGINE_UNFRIEND_COOLDOWN", 30*24*time.Hour)
	e.SkipTTL = getEnvDuration("ENGINE_SKIP_TTL", 24*time.Hour)
	e.TrendingCacheTTL = getEnvDuration("ENGINE_TRENDING_CACHE_TTL", 5*time.Minute)
	e.NotifyQueueSize = getEnvInt("ENGINE_NOTIFY_QUEUE", 256)
	e.InboundRPS = getEnvFloat("ENGINE_INBOUND_RPS", 20)
	e.InboundBurst = getEnvInt("ENGINE_INBOUND_BURST", 40)
	e.ScoringFile = getEnvDefault("SCORING_CONFIG", "")

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if n, err := strconv.Atoi(getEnvDefault(k, "")); err == nil {
		return n
	}
	return def
}

func getEnvFloat(k string, def float64) float64 {
	if f, err := strconv.ParseFloat(getEnvDefault(k, ""), 64); err == nil {
		return f
	}
	return def
}

// getEnvDuration accepts Go duration strings ("36h", "90s").
func getEnvDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnvDefault(k, "")); err == nil && d > 0 {
		return d
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
