// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Storage     StorageConfig
	Inventory   InventoryConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	AWS         AWSConfig
	I18n        I18nConfig
	Log         LogConfig
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
	QueryTimeout int // in milliseconds
}

type StorageConfig struct {
	Driver string
}

type InventoryConfig struct {
	DefaultReorderPoint int
	DefaultMaxStock     int
	MaxSaveAttempts     int
	RetryBackoffMs      int
	DefaultTopProducts  int
}

type RateLimitConfig struct {
	GeneralPerSecond  float64
	GeneralBurst      int
	MutationPerSecond float64
	MutationBurst     int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	ReportsDir      string
}

type I18nConfig struct {
	DefaultLocale string
	LocalesPath   string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "3000"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "inventory_db"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
			QueryTimeout: getEnvAsInt("DB_QUERY_TIMEOUT_MS", 5000),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverPostgres)),
		},
		Inventory: InventoryConfig{
			DefaultReorderPoint: getEnvAsInt("INVENTORY_DEFAULT_REORDER_POINT", 10),
			DefaultMaxStock:     getEnvAsInt("INVENTORY_DEFAULT_MAX_STOCK", 1000),
			MaxSaveAttempts:     getEnvAsInt("INVENTORY_MAX_SAVE_ATTEMPTS", 5),
			RetryBackoffMs:      getEnvAsInt("INVENTORY_RETRY_BACKOFF_MS", 20),
			DefaultTopProducts:  getEnvAsInt("INVENTORY_DEFAULT_TOP_PRODUCTS", 10),
		},
		RateLimit: RateLimitConfig{
			GeneralPerSecond:  getEnvAsFloat("RATE_LIMIT_GENERAL_RPS", 10),
			GeneralBurst:      getEnvAsInt("RATE_LIMIT_GENERAL_BURST", 20),
			MutationPerSecond: getEnvAsFloat("RATE_LIMIT_MUTATION_RPS", 5),
			MutationBurst:     getEnvAsInt("RATE_LIMIT_MUTATION_BURST", 10),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "inventory-reports"),
			ReportsDir:      getEnv("REPORTS_DIR", "./reports"),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
			LocalesPath:   getEnv("LOCALES_PATH", "./internal/i18n/locales"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", ""),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.Storage.Driver != StorageDriverPostgres && c.Storage.Driver != StorageDriverMemory {
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Database.Password == "" && c.Environment == "production" && c.Storage.Driver == StorageDriverPostgres {
		return fmt.Errorf("database password is required in production")
	}

	if c.Inventory.DefaultReorderPoint < 0 || c.Inventory.DefaultMaxStock < 0 {
		return fmt.Errorf("inventory thresholds must be non-negative")
	}

	if c.Inventory.MaxSaveAttempts < 1 {
		return fmt.Errorf("INVENTORY_MAX_SAVE_ATTEMPTS must be at least 1")
	}

	if c.Inventory.DefaultTopProducts < 1 {
		return fmt.Errorf("INVENTORY_DEFAULT_TOP_PRODUCTS must be at least 1")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (i InventoryConfig) RetryBackoff() time.Duration {
	return time.Duration(i.RetryBackoffMs) * time.Millisecond
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
