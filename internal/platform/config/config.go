package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "github.com/agenghermawan/clandestineproject/pkg/platform/strings"
)

// Config is the full gateway configuration, read once at startup.
type Config struct {
	Server    Server
	Backend   BackendConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	Kafka     KafkaConfig
	Contact   ContactConfig
	RateLimit RateLimitConfig
	Stats     StatsConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	Environment     string
	LogLevel        string
	CookieName      string
	ShutdownTimeout time.Duration
	// TrustedProxies lists CIDRs or addresses of load balancers allowed to
	// set X-Forwarded-For. Empty means the socket peer is the client.
	TrustedProxies  []string
}

// IsProduction switches the logger to JSON output.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// BackendConfig points at the external data backend.
type BackendConfig struct {
	BaseURL          string
	Timeout          time.Duration
	FailureThreshold int
	SuccessThreshold int
	Cooldown         time.Duration
}

// RedisConfig is optional; an empty URL keeps rate limiting in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig is optional; an empty DSN keeps the audit trail in memory.
type PostgresConfig struct {
	DSN string
}

// KafkaConfig is used when the contact transport is "kafka".
type KafkaConfig struct {
	Brokers      []string
	ContactTopic string
}

// ContactConfig controls how contact-form messages leave the gateway.
type ContactConfig struct {
	Transport    string // "log", "smtp" or "kafka"
	Recipient    string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
}

// RateLimitConfig bounds the public endpoints.
type RateLimitConfig struct {
	Disabled        bool
	ContactPerHour  int
	SearchPerMinute int
}

// StatsConfig drives the dashboard counters.
type StatsConfig struct {
	GrowthInterval time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            envString("CLANDESTINE_ADDR", ":8080"),
			Environment:     envString("APP_ENV", "development"),
			LogLevel:        envString("LOG_LEVEL", "info"),
			CookieName:      envString("SESSION_COOKIE_NAME", "token"),
			ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			TrustedProxies:  envList("TRUSTED_PROXIES"),
		},
		Backend: BackendConfig{
			BaseURL:          envString("BACKEND_URL", "http://localhost:5001"),
			Timeout:          envDuration("BACKEND_TIMEOUT", 15*time.Second),
			FailureThreshold: envInt("BACKEND_BREAKER_FAILURES", 5),
			SuccessThreshold: envInt("BACKEND_BREAKER_SUCCESSES", 2),
			Cooldown:         envDuration("BACKEND_BREAKER_COOLDOWN", 30*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("DATABASE_URL"),
		},
		Kafka: KafkaConfig{
			Brokers:      envList("KAFKA_BROKERS"),
			ContactTopic: envString("KAFKA_CONTACT_TOPIC", "contact-messages"),
		},
		Contact: ContactConfig{
			Transport:    envString("CONTACT_TRANSPORT", "log"),
			Recipient:    envString("CONTACT_RECIPIENT", "vertegenwoordiger@clandestineproject.nl"),
			SMTPHost:     envString("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:     envInt("SMTP_PORT", 587),
			SMTPUsername: os.Getenv("SMTP_USERNAME"),
			SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		},
		RateLimit: RateLimitConfig{
			Disabled:        os.Getenv("RATE_LIMIT_DISABLED") == "true",
			ContactPerHour:  envInt("RATE_LIMIT_CONTACT_PER_HOUR", 5),
			SearchPerMinute: envInt("RATE_LIMIT_SEARCH_PER_MINUTE", 60),
		},
		Stats: StatsConfig{
			GrowthInterval: envDuration("STATS_GROWTH_INTERVAL", 30*time.Minute),
		},
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	return pstrings.DedupeAndTrim(strings.Split(raw, ","))
}
