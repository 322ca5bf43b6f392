package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Identity  IdentityConfig  `yaml:"identity"`
	Storage   StorageConfig   `yaml:"storage"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	Payment   PaymentConfig   `yaml:"payment"`
	Rental    RentalConfig    `yaml:"rental"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host" env:"SERVER_HOST"`
	Port int    `yaml:"port" env:"SERVER_PORT"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host        string `yaml:"host" env:"DB_HOST"`
	Port        int    `yaml:"port" env:"DB_PORT"`
	User        string `yaml:"user" env:"DB_USER"`
	Password    string `yaml:"password" env:"DB_PASSWORD"`
	Database    string `yaml:"database" env:"DB_NAME"`
	SSLMode     string `yaml:"ssl_mode" env:"DB_SSL_MODE"`
	ApplySchema bool   `yaml:"apply_schema" env:"DB_APPLY_SCHEMA"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret" env:"JWT_SECRET"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes" env:"JWT_ACCESS_TOKEN_EXPIRY_MINUTES"`
}

// IdentityConfig selects how bearer tokens are resolved to callers
type IdentityConfig struct {
	Provider          string `yaml:"provider" env:"IDENTITY_PROVIDER"` // "jwt" or "firebase"
	FirebaseProjectID string `yaml:"firebase_project_id" env:"FIREBASE_PROJECT_ID"`
	CredentialsFile   string `yaml:"credentials_file" env:"GOOGLE_APPLICATION_CREDENTIALS"`
}

// StorageConfig contains inspection image storage settings
type StorageConfig struct {
	Type            string `yaml:"type" env:"STORAGE_TYPE"`             // "mock" or "gcs"
	UploadDir       string `yaml:"upload_dir" env:"UPLOAD_DIR"`         // For mock storage
	BaseURL         string `yaml:"base_url" env:"STORAGE_BASE_URL"`     // Server base URL for mock URLs
	Bucket          string `yaml:"bucket" env:"STORAGE_BUCKET"`         // For gcs
	CredentialsFile string `yaml:"credentials_file" env:"STORAGE_CREDENTIALS_FILE"`
	MaxFileSizeMB   int64  `yaml:"max_file_size_mb"`
	MaxFiles        int    `yaml:"max_files"`
	MaxImageWidth   int    `yaml:"max_image_width"`
}

// SendGridConfig contains email delivery settings
type SendGridConfig struct {
	Enabled   bool   `yaml:"enabled" env:"SENDGRID_ENABLED"`
	APIKey    string `yaml:"api_key" env:"SENDGRID_API_KEY"`
	FromEmail string `yaml:"from_email" env:"SENDGRID_FROM_EMAIL"`
	FromName  string `yaml:"from_name" env:"SENDGRID_FROM_NAME"`
}

// PaymentConfig contains payment-gateway verification settings
type PaymentConfig struct {
	KeySecret        string `yaml:"razorpay_key_secret" env:"RAZORPAY_KEY_SECRET"`
	RequireSignature bool   `yaml:"require_signature" env:"PAYMENT_REQUIRE_SIGNATURE"`
}

// RentalConfig bounds the rental period in days
type RentalConfig struct {
	MinDays int32 `yaml:"min_days"`
	MaxDays int32 `yaml:"max_days"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`   // "debug", "info", "warn", "error"
	Format string `yaml:"format" env:"LOG_FORMAT"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings (with seconds field)
type SchedulerConfig struct {
	SendPickupReminders    string `yaml:"send_pickup_reminders"`
	SendReturnDueReminders string `yaml:"send_return_due_reminders"`
}

// Load reads configuration from a YAML file, then applies .env and environment overrides
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// A missing .env is fine; real environment variables still apply.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := cfg.overrideWithEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables that are set
func (c *Config) overrideWithEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to parse environment overrides: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	// Identity validation
	switch c.Identity.Provider {
	case "", "jwt":
		c.Identity.Provider = "jwt"
		if c.JWT.Secret == "" {
			return fmt.Errorf("JWT secret is required")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("JWT secret must be at least 32 characters")
		}
	case "firebase":
		if c.Identity.FirebaseProjectID == "" {
			return fmt.Errorf("firebase project id is required for firebase identity")
		}
	default:
		return fmt.Errorf("unsupported identity provider: %s", c.Identity.Provider)
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60 * 24 * 30
	}

	// Storage validation
	switch c.Storage.Type {
	case "", "mock":
		c.Storage.Type = "mock"
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("upload directory is required")
		}
	case "gcs":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage bucket is required for gcs storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	if c.Storage.MaxFileSizeMB == 0 {
		c.Storage.MaxFileSizeMB = 5
	}
	if c.Storage.MaxFiles == 0 {
		c.Storage.MaxFiles = 5
	}
	if c.Storage.MaxImageWidth == 0 {
		c.Storage.MaxImageWidth = 800
	}

	// Email validation
	if c.SendGrid.Enabled {
		if c.SendGrid.APIKey == "" {
			return fmt.Errorf("sendgrid api key is required when email is enabled")
		}
		if c.SendGrid.FromEmail == "" {
			return fmt.Errorf("sendgrid from email is required when email is enabled")
		}
	}
	if c.SendGrid.FromName == "" {
		c.SendGrid.FromName = "RentWear"
	}

	// Payment validation
	if c.Payment.RequireSignature && c.Payment.KeySecret == "" {
		return fmt.Errorf("payment key secret is required when signatures are enforced")
	}

	// Rental period defaults
	if c.Rental.MinDays == 0 {
		c.Rental.MinDays = 4
	}
	if c.Rental.MaxDays == 0 {
		c.Rental.MaxDays = 30
	}
	if c.Rental.MinDays > c.Rental.MaxDays {
		return fmt.Errorf("rental min_days (%d) exceeds max_days (%d)", c.Rental.MinDays, c.Rental.MaxDays)
	}

	// Scheduler defaults
	if c.Scheduler.SendPickupReminders == "" {
		c.Scheduler.SendPickupReminders = "0 0 18 * * *" // 6 PM UTC, day before pickup
	}
	if c.Scheduler.SendReturnDueReminders == "" {
		c.Scheduler.SendReturnDueReminders = "0 0 9 * * *" // 9 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// MaxFileSizeBytes returns the per-image upload limit
func (c *Config) MaxFileSizeBytes() int64 {
	return c.Storage.MaxFileSizeMB * 1024 * 1024
}
