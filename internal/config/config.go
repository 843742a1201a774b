// config.go
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	MongoURI    string
	MongoDBName string
	AuthURL     string
	RabbitURL   string // vacío = sin Rabbit
	Port        string
	ServiceName string
	GinMode     string
	StoreDriver string // mongo | memory

	LogLevel  string
	LogFormat string

	CouponCacheTTL time.Duration
	SummaryCron    string
}

// Load lee .env si existe y después las variables de entorno.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		MongoURI:       getEnv("MONGO_URI", "mongodb://host.docker.internal:27017"),
		MongoDBName:    getEnv("MONGO_DB_NAME", "order_status_db"),
		AuthURL:        getEnv("AUTH_URL", "http://host.docker.internal:3000"),
		RabbitURL:      getEnv("RABBIT_URL", "amqp://host.docker.internal"),
		Port:           getEnv("PORT", "8080"),
		ServiceName:    getEnv("SERVICE_NAME", "order-status-service"),
		GinMode:        getEnv("GIN_MODE", "release"),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		CouponCacheTTL: getDuration("COUPON_CACHE_TTL", time.Minute),
		SummaryCron:    getEnv("SUMMARY_CRON", "@every 1m"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getDuration acepta "30s", "5m"... Un valor inválido o no positivo usa el fallback.
func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
