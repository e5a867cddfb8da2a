package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevJWTSigningKey is the signing key used when JWT_SIGNING_KEY is unset. It
// is refused outside development.
const DevJWTSigningKey = "dev-secret-key-change-in-production"

// Config is the full process configuration, assembled from the environment.
type Config struct {
	Environment string
	Server      Server
	Auth        Auth
	Database    Database
	Redis       RedisConfig
	Kafka       Kafka
	Log         Log
}

// IsDevelopment reports whether the process runs in the development environment.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
	// UserPermissionsEnabled switches owner-based access control on. When off,
	// every authenticated caller sees and may write every record.
	UserPermissionsEnabled bool
}

// Auth configures bearer token validation.
type Auth struct {
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
}

// Database configures the relational store. An empty URL selects the
// in-memory store.
type Database struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the optional lookup cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	CacheTTL     time.Duration
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka configures the request/reply bridge. No brokers disables it.
type Kafka struct {
	Brokers                 []string
	ApplicationID           string
	OrgID                   string
	DomainContext           string
	RequestTopicPartitions  int32
	RequestTopicReplication int16
}

// Enabled reports whether the broker bridge should run.
func (k Kafka) Enabled() bool {
	return len(k.Brokers) > 0
}

// Log configures the process logger.
type Log struct {
	Level  string
	Format string
}

// Load builds a Config from environment variables so main stays lean. A .env
// file in the working directory is honoured when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	var errs []string
	p := parser{errs: &errs}

	cfg := Config{
		Environment: strings.ToLower(getEnv("APP_ENV", "development")),
		Server: Server{
			Addr:                   getEnv("HTTP_ADDR", ":8080"),
			ShutdownTimeout:        p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
			UserPermissionsEnabled: p.bool("USER_PERMISSIONS_ENABLED", false),
		},
		Auth: Auth{
			JWTSigningKey: getEnv("JWT_SIGNING_KEY", DevJWTSigningKey),
			JWTIssuer:     getEnv("JWT_ISSUER", ""),
			JWTAudience:   getEnv("JWT_AUDIENCE", ""),
		},
		Database: Database{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    p.int("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    p.int("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: p.duration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			CacheTTL:     p.duration("REDIS_CACHE_TTL", 5*time.Minute),
			PoolSize:     p.int("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.int("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers:                 splitList(getEnv("KAFKA_BROKERS", "")),
			ApplicationID:           getEnv("KAFKA_APPLICATION_ID", "flyt-value-converting-service"),
			OrgID:                   getEnv("KAFKA_ORG_ID", "fintlabs.no"),
			DomainContext:           getEnv("KAFKA_DOMAIN_CONTEXT", "flyt"),
			RequestTopicPartitions:  int32(p.int("KAFKA_REQUEST_TOPIC_PARTITIONS", -1)),
			RequestTopicReplication: int16(p.int("KAFKA_REQUEST_TOPIC_REPLICATION", -1)),
		},
		Log: Log{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if cfg.Auth.JWTSigningKey == DevJWTSigningKey && !cfg.IsDevelopment() {
		errs = append(errs, fmt.Sprintf("JWT_SIGNING_KEY must be set when APP_ENV is %q", cfg.Environment))
	}
	if cfg.Kafka.Enabled() && cfg.Kafka.ApplicationID == "" {
		errs = append(errs, "KAFKA_APPLICATION_ID is required when KAFKA_BROKERS is set")
	}
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
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

// parser collects conversion errors so every bad variable is reported at once.
type parser struct {
	errs *[]string
}

func (p parser) int(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Sprintf("%s: %q is not an integer", key, raw))
		return def
	}
	return v
}

func (p parser) bool(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Sprintf("%s: %q is not a boolean", key, raw))
		return def
	}
	return v
}

func (p parser) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Sprintf("%s: %q is not a duration", key, raw))
		return def
	}
	return v
}
