package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port string
	// Env is "production" or anything else, which is treated as development.
	Env      string
	LogLevel string

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig

	JWTSecret string

	BalanceCacheTTL    time.Duration
	OutboxPollInterval time.Duration
	OutboxBatchSize    int

	RateLimitRPS   float64
	RateLimitBurst int

	CORSAllowedOrigins []string

	TimeOff  TimeOffConfig
	Approval ApprovalConfig
}

type DatabaseConfig struct {
	Host       string
	User       string
	Password   string
	Name       string
	Port       string
	SSLMode    string
	MaxRetries int
}

// DSN renders the libpq keyword/value connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Broker  string
	GroupID string
}

type TimeOffConfig struct {
	MaxRejectionReasonLength int
	// BalanceTypes lists the request types that draw from the balance ledger.
	BalanceTypes []string
}

type ApprovalConfig struct {
	// FallbackRoles maps a request type to the role whose holder approves
	// when the employee has no manager.
	FallbackRoles map[string]string
}

var requestTypes = []string{"VACATION", "SICK", "UNPAID"}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_RETRIES", 5)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("KAFKA_GROUP_ID", "go-timeoff-lifecycle")
	v.SetDefault("BALANCE_CACHE_TTL", "5m")
	v.SetDefault("OUTBOX_POLL_INTERVAL", "3s")
	v.SetDefault("OUTBOX_BATCH_SIZE", 50)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("TIMEOFF_MAX_REJECTION_REASON", 1000)
	v.SetDefault("TIMEOFF_BALANCE_TYPES", "VACATION")
	for _, t := range requestTypes {
		v.SetDefault("APPROVAL_FALLBACK_ROLE_"+t, "hr_manager")
	}
	v.AutomaticEnv()

	cfg := &Config{
		Port:     v.GetString("PORT"),
		Env:      strings.ToLower(v.GetString("APP_ENV")),
		LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),
		Database: DatabaseConfig{
			Host:       v.GetString("DB_HOST"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			Name:       v.GetString("DB_NAME"),
			Port:       v.GetString("DB_PORT"),
			SSLMode:    v.GetString("DB_SSLMODE"),
			MaxRetries: v.GetInt("DB_MAX_RETRIES"),
		},
		Redis: RedisConfig{Addr: v.GetString("REDIS_ADDR")},
		Kafka: KafkaConfig{
			Broker:  v.GetString("KAFKA_BROKER"),
			GroupID: v.GetString("KAFKA_GROUP_ID"),
		},
		JWTSecret:          v.GetString("JWT_SECRET"),
		BalanceCacheTTL:    parseDuration(v, "BALANCE_CACHE_TTL", 5*time.Minute),
		OutboxPollInterval: parseDuration(v, "OUTBOX_POLL_INTERVAL", 3*time.Second),
		OutboxBatchSize:    v.GetInt("OUTBOX_BATCH_SIZE"),
		RateLimitRPS:       v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:     v.GetInt("RATE_LIMIT_BURST"),
		CORSAllowedOrigins: splitOrigins(v.GetString("CORS_ALLOWED_ORIGINS")),
		TimeOff: TimeOffConfig{
			MaxRejectionReasonLength: v.GetInt("TIMEOFF_MAX_REJECTION_REASON"),
			BalanceTypes:             splitList(v.GetString("TIMEOFF_BALANCE_TYPES")),
		},
		Approval: ApprovalConfig{FallbackRoles: map[string]string{}},
	}

	for _, t := range requestTypes {
		if role := strings.TrimSpace(v.GetString("APPROVAL_FALLBACK_ROLE_" + t)); role != "" {
			cfg.Approval.FallbackRoles[t] = role
		}
	}

	if cfg.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET environment variable not set.")
	}

	return cfg, nil
}

// CheckAuth fails in production when JWT_SECRET is unset. Token
// verification against an empty HMAC key is never acceptable there.
func (c *Config) CheckAuth() error {
	if c.JWTSecret == "" && c.IsProduction() {
		return errors.New("JWT_SECRET must be set when APP_ENV=production")
	}
	return nil
}

// IsProduction reports whether Env selects production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.ToUpper(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitOrigins(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimRight(strings.TrimSpace(part), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}
