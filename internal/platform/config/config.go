// Package config builds runtime configuration from environment variables so
// main stays lean. Every knob has a development default; production
// deployments override via env.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates all sub-configurations.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Reports  ReportsConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// PostgresConfig captures the persistence backend. An empty URL selects the
// in-memory stores (development and tests).
type PostgresConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig captures the optional report snapshot cache. An empty URL
// disables caching.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig captures the optional audit event sink. Empty brokers disable
// Kafka publishing; audit events still go to the local store.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// JWTConfig captures token validation parameters. The claims carry the
// actor tuple; issuance beyond what tests need lives outside this service.
type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
}

// ReportsConfig tunes the aggregation layer.
type ReportsConfig struct {
	CacheTTL time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Server: ServerConfig{
			Addr:            getenv("SUTURA_ADDR", ":8080"),
			ShutdownTimeout: getduration("SUTURA_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: PostgresConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: getint("DATABASE_MAX_OPEN_CONNS", 16),
			MaxIdleConns: getint("DATABASE_MAX_IDLE_CONNS", 4),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getint("REDIS_POOL_SIZE", 10),
			MinIdleConns: getint("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getduration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getduration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getduration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    getlist("KAFKA_BROKERS"),
			AuditTopic: getenv("KAFKA_AUDIT_TOPIC", "sutura.audit"),
		},
		JWT: JWTConfig{
			// Default for development only; override in production.
			SigningKey: getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:     getenv("JWT_ISSUER", "sutura"),
			Audience:   getenv("JWT_AUDIENCE", "sutura-api"),
			AccessTTL:  getduration("JWT_ACCESS_TTL", 15*time.Minute),
		},
		Reports: ReportsConfig{
			CacheTTL: getduration("REPORT_CACHE_TTL", 2*time.Minute),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getlist(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
