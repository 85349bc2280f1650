package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"fleet/internal/pricing"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Auth     AuthConfig
	AMQP     AMQPConfig
	CORS     CORSConfig
	Pricing  pricing.Rates
	Booking  BookingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// AuthConfig holds token and password hashing settings.
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// DefaultJWTSecret is the placeholder used when JWT_SECRET is unset.
// The server refuses to sign tokens with it.
const DefaultJWTSecret = "change-me"

// ErrInsecureJWTSecret is returned by Validate for an empty or placeholder secret.
var ErrInsecureJWTSecret = errors.New("JWT_SECRET must be set to a non-default value")

// Validate checks the settings the server cannot safely start without.
func (c *Config) Validate() error {
	if err := c.Pricing.Validate(); err != nil {
		return fmt.Errorf("pricing: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}

// Validate rejects settings that would let anyone mint tokens.
func (a AuthConfig) Validate() error {
	if strings.TrimSpace(a.JWTSecret) == "" || a.JWTSecret == DefaultJWTSecret {
		return ErrInsecureJWTSecret
	}
	if a.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", a.TokenTTL)
	}
	return nil
}

// AMQPConfig holds RabbitMQ settings. An empty URL disables publishing.
type AMQPConfig struct {
	URL      string
	Exchange string
}

// CORSConfig lists the origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
}

// BookingConfig holds booking lifecycle settings.
type BookingConfig struct {
	// StrictTransitions rejects status changes outside the transition table.
	StrictTransitions bool
}

// Load loads configuration from environment variables.
func Load() *Config {
	defaults := pricing.DefaultRates()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "fleet"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "fleet-booking-service"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", DefaultJWTSecret),
			TokenTTL:   getDurationEnv("JWT_TTL", 24*time.Hour),
			BcryptCost: getIntEnv("BCRYPT_COST", 10),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "fleet.events"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Pricing: pricing.Rates{
			BaseFare:                getFloatEnv("BASE_FARE", defaults.BaseFare),
			PerKmRate:               getFloatEnv("PER_KM_RATE", defaults.PerKmRate),
			PerDayRate:              getFloatEnv("PER_DAY_RATE", defaults.PerDayRate),
			AdminCommissionPercent:  getFloatEnv("ADMIN_COMMISSION_PERCENT", defaults.AdminCommissionPercent),
			DealerCommissionPercent: getFloatEnv("DEALER_COMMISSION_PERCENT", defaults.DealerCommissionPercent),
			DealerPoolFraction:      getFloatEnv("DEALER_POOL_FRACTION", defaults.DealerPoolFraction),
		},
		Booking: BookingConfig{
			StrictTransitions: getBoolEnv("BOOKING_STRICT_TRANSITIONS", true),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
