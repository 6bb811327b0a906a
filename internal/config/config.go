package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const insecureDefaultSecret = "dev-secret"

type Config struct {
	ServerPort   string
	DatabaseDSN  string
	SecretKey    string
	TokenTTL     time.Duration
	RedisAddr    string
	KafkaBrokers []string
}

// Load reads configuration from the environment once at startup. A .env
// file is honored for local development.
func Load() *Config {
	_ = godotenv.Load()

	secret := getString("SECRET_KEY", insecureDefaultSecret)
	if secret == insecureDefaultSecret {
		logger.Warn().Msg("SECRET_KEY not set, using insecure default")
	}

	ttlHours := getInt("TOKEN_TTL_HOURS", 24)
	if ttlHours <= 0 {
		logger.Warn().Msgf("TOKEN_TTL_HOURS must be positive, got %d, using default", ttlHours)
		ttlHours = 24
	}

	return &Config{
		ServerPort:   getString("SERVER_PORT", "8080"),
		DatabaseDSN:  getString("DATABASE_DSN", "root:@tcp(127.0.0.1:3306)/order-db"),
		SecretKey:    secret,
		TokenTTL:     time.Duration(ttlHours) * time.Hour,
		RedisAddr:    getString("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers: strings.Split(getString("KAFKA_BROKERS", "localhost:9092"), ","),
	}
}

func getString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			logger.Warn().Err(err).Msgf("Invalid value for %s, using default", key)
			return fallback
		}
		return parsed
	}
	return fallback
}
