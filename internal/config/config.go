// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Registry    RegistryConfig
	Payment     PaymentConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  int // in hours
	RefreshTokenTTL int // in hours
}

// RegistryConfig carries the core registry knobs.
type RegistryConfig struct {
	// HighValueThreshold is the license fee at or above which ownership
	// transfers require a matured time-lock.
	HighValueThreshold int64
	// TimeLockDelay is the cooldown in seconds applied to new time-locks.
	TimeLockDelay int64
	// MaxBatchSize bounds batch asset creation.
	MaxBatchSize int
	// OperationCeiling is the per-account lifetime mutating-operation cap.
	OperationCeiling int64
	// MaxNameLength / MaxDescriptionLength bound free-form asset strings.
	MaxNameLength        int
	MaxDescriptionLength int
}

type PaymentConfig struct {
	StripeSecretKey      string
	StripePublishableKey string
	// UnitScale converts one external currency unit (e.g. one dollar) into
	// internal balance units when funding through Stripe.
	UnitScale int64
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "ip_registry"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL:  getEnvAsInt("JWT_ACCESS_TTL", 24),
			RefreshTokenTTL: getEnvAsInt("JWT_REFRESH_TTL", 168),
		},
		Registry: RegistryConfig{
			HighValueThreshold:   getEnvAsInt64("REGISTRY_HIGH_VALUE_THRESHOLD", 10000),
			TimeLockDelay:        getEnvAsInt64("REGISTRY_TIMELOCK_DELAY", 86400),
			MaxBatchSize:         getEnvAsInt("REGISTRY_MAX_BATCH_SIZE", 20),
			OperationCeiling:     getEnvAsInt64("REGISTRY_OPERATION_CEILING", 100),
			MaxNameLength:        getEnvAsInt("REGISTRY_MAX_NAME_LENGTH", 255),
			MaxDescriptionLength: getEnvAsInt("REGISTRY_MAX_DESCRIPTION_LENGTH", 4000),
		},
		Payment: PaymentConfig{
			StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
			UnitScale:            getEnvAsInt64("PAYMENT_UNIT_SCALE", 100),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Registry.OperationCeiling <= 0 {
		return fmt.Errorf("operation ceiling must be positive")
	}

	if c.Registry.MaxBatchSize <= 0 {
		return fmt.Errorf("max batch size must be positive")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
