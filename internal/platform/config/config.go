// Package config loads process configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	DatabaseURL   string
	Redis         RedisConfig
	KafkaBrokers  []string
	AuditTopic    string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	Screening     ScreeningConfig
	Sync          SyncConfig
}

// RedisConfig configures the optional Redis connection used for cross-instance
// sync locks.
type RedisConfig struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ScreeningConfig carries the matching engine tunables.
type ScreeningConfig struct {
	NameWeight    float64
	DateWeight    float64
	CountryWeight float64
	HitThreshold  int
	ReviewFloor   int
	NameFloor     int
}

// SyncConfig carries the list sync tunables.
type SyncConfig struct {
	Workers       int
	FetchTimeout  time.Duration
	DisabledLists []string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:          getenv("VIGIL_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Redis:         redisFromEnv(),
		KafkaBrokers:  splitList(os.Getenv("KAFKA_BROKERS")),
		AuditTopic:    getenv("AUDIT_TOPIC", "vigil.audit"),
		JWTSigningKey: getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     getenv("JWT_ISSUER", "vigil"),
		JWTAudience:   getenv("JWT_AUDIENCE", "vigil-admin"),
		Screening: ScreeningConfig{
			NameWeight:    getenvFloat("SCREENING_NAME_WEIGHT", 0.7),
			DateWeight:    getenvFloat("SCREENING_DATE_WEIGHT", 0.15),
			CountryWeight: getenvFloat("SCREENING_COUNTRY_WEIGHT", 0.15),
			HitThreshold:  getenvInt("SCREENING_HIT_THRESHOLD", 90),
			ReviewFloor:   getenvInt("SCREENING_REVIEW_FLOOR", 60),
			NameFloor:     getenvInt("SCREENING_NAME_FLOOR", 60),
		},
		Sync: SyncConfig{
			Workers:       getenvInt("SYNC_WORKERS", 4),
			FetchTimeout:  getenvDuration("SYNC_FETCH_TIMEOUT", 30*time.Second),
			DisabledLists: splitList(os.Getenv("SYNC_DISABLED_LISTS")),
		},
	}
}

func redisFromEnv() RedisConfig {
	return RedisConfig{
		URL:          os.Getenv("REDIS_URL"),
		DialTimeout:  getenvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  getenvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: getenvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
