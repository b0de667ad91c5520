package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	LogLevel       string
	HTTPAddr       string
	MetricsAddr    string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CacheTTL       time.Duration
	JWTSecret      string
	SessionTTL     time.Duration
	RequestTimeout time.Duration
	LookupWorkers  int
	AMQPURL        string
	AuthRateRPS    float64
	AuthRateBurst  int

	// catalog ingestor
	CupidBase          string
	CupidKey           string
	CupidRPS           int
	Workers            int
	PropertyIDs        []int64
	DefaultNightlyRate int64 // cents, used when the catalog carries no rate
	DefaultTotalRooms  int
}

// Load reads the environment, after an optional .env in the working directory.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not a number, using default")
		}
		return def
	}

	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    os.Getenv("METRICS_ADDR"),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/staybook?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisDB:        atoi("REDIS_DB", 0),
		RedisPass:      env("REDIS_PASSWORD", ""),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		JWTSecret:      env("JWT_SECRET", ""),
		SessionTTL:     time.Duration(atoi("SESSION_TTL_MINUTES", 60)) * time.Minute,
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_MS", 5000)) * time.Millisecond,
		LookupWorkers:  atoi("LOOKUP_WORKERS", 4),
		AMQPURL:        os.Getenv("AMQP_URL"),
		AuthRateRPS:    atof("AUTH_RATE_RPS", 1),
		AuthRateBurst:  atoi("AUTH_RATE_BURST", 5),

		CupidBase:          env("CUPID_BASE_URL", "https://content-api.cupid.travel/v3.0"),
		CupidKey:           env("CUPID_API_KEY", ""),
		CupidRPS:           atoi("CUPID_RPS", 5),
		Workers:            atoi("INGEST_WORKERS", 8),
		PropertyIDs:        parseIDs(os.Getenv("INGEST_PROPERTY_IDS")),
		DefaultNightlyRate: int64(atoi("DEFAULT_NIGHTLY_RATE_CENTS", 10000)),
		DefaultTotalRooms:  atoi("DEFAULT_TOTAL_ROOMS", 20),
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty, sessions will not survive a restart")
	}
	return c
}

// parseIDs reads a comma separated list of catalog ids, skipping junk.
func parseIDs(s string) []int64 {
	var out []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Warn().Str("id", part).Msg("skipping non-numeric property id")
			continue
		}
		out = append(out, n)
	}
	return out
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
