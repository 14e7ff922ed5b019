package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// HostingTimeout bounds every call to the hosting/DNS provider. A slow
// provider must never hold a handler hostage.
var HostingTimeout = 10 * time.Second

// RedisConfig captures cache connection settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// HostingConfig captures hosting/DNS provider credentials. When Token or
// Project is empty the provider integration is disabled: registration is
// skipped with a warning and verification auto-succeeds (local/dev mode).
type HostingConfig struct {
	APIBase string
	Token   string
	Project string
}

// Configured reports whether real provider calls are enabled.
func (h HostingConfig) Configured() bool {
	return h.Token != "" && h.Project != ""
}

// Server captures process-level configuration.
type Server struct {
	Addr          string
	DatabaseURL   string
	Redis         RedisConfig
	Hosting       HostingConfig
	BaseDomain    string
	JWTSigningKey string
	KafkaBrokers  []string
	AuditTopic    string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("QRIUS_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	auditTopic := os.Getenv("AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "qrius.audit"
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = strings.Split(v, ",")
	}

	return Server{
		Addr:        addr,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Hosting: HostingConfig{
			APIBase: envDefault("HOSTING_API_BASE", "https://api.hosting.example.com"),
			Token:   os.Getenv("HOSTING_API_TOKEN"),
			Project: os.Getenv("HOSTING_PROJECT_ID"),
		},
		BaseDomain:    os.Getenv("PLATFORM_BASE_DOMAIN"),
		JWTSigningKey: jwtSigningKey,
		KafkaBrokers:  brokers,
		AuditTopic:    auditTopic,
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
