package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration

	DirectoryBase string
	DirectoryKey  string
	DirectoryRPS  float64

	JWTSecret string

	// Pricing inputs, decimal strings. SeasonConfig, when set, overrides the tiers.
	RateLow      string
	RateHigh     string
	RateTennis   string
	RateParking  string
	TennisWeeks  string
	SeasonConfig string

	ExportDir      string
	ExportWorkers  int
	ExportSchedule string
	ExportYear     int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/guestflat?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,

		DirectoryBase: env("DIRECTORY_BASE_URL", "http://localhost:8090"),
		DirectoryKey:  env("DIRECTORY_API_KEY", ""),
		DirectoryRPS:  atof("DIRECTORY_RPS", 5),

		JWTSecret: env("JWT_SECRET", ""),

		RateLow:      env("RATE_LOW", "100"),
		RateHigh:     env("RATE_HIGH", "150"),
		RateTennis:   env("RATE_TENNIS", "200"),
		RateParking:  env("RATE_PARKING", "75"),
		TennisWeeks:  env("TENNIS_WEEKS", "wide"),
		SeasonConfig: env("SEASON_CONFIG", ""),

		ExportDir:      env("EXPORT_DIR", "var/reports"),
		ExportWorkers:  atoi("EXPORT_WORKERS", 4),
		ExportSchedule: env("EXPORT_SCHEDULE", ""),
		ExportYear:     atoi("EXPORT_YEAR", time.Now().UTC().Year()),
	}
	if c.DirectoryKey == "" {
		log.Warn().Msg("DIRECTORY_API_KEY is empty")
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; admin endpoints will reject every request")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
