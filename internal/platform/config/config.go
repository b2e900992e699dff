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
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

type Config struct {
	Addr               string
	Environment        string
	StoreDriver        string
	DatabaseURL        string
	MigrationsDir      string
	RunMigrations      bool
	MongoURI           string
	MongoDBName        string
	SeedDefaultCatalog bool
	MaxBodyBytes       int64
	RateLimitPerMinute int
	ShutdownTimeout    time.Duration
	LowStockCron       string
	WagePublishCron    string
	SheetsCredentials  string
	SheetID            string
	WageSheetRange     string
	ExportDir          string
	Currency           string

	SnapshotEncryptionKey string

	SMTPHost        string
	SMTPPort        int
	SMTPUser        string
	SMTPPassword    string
	SMTPUseTLS      bool
	AlertFrom       string
	LowStockAlertTo string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		Environment:        getEnv("APP_ENV", "development"),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "migrations"),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		MongoURI:           getEnv("MONGODB_URI", ""),
		MongoDBName:        getEnv("MONGODB_DB_NAME", "capworks"),
		SeedDefaultCatalog: getEnvBool("SEED_DEFAULT_CATALOG", true),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LowStockCron:       getEnv("LOW_STOCK_CRON", "0 8 * * *"),
		WagePublishCron:    getEnv("WAGE_PUBLISH_CRON", "0 20 * * 6"),
		SheetsCredentials:  getEnv("GOOGLE_SHEETS_CREDENTIALS_PATH", ""),
		SheetID:            getEnv("GOOGLE_SHEET_ID", ""),
		WageSheetRange:     getEnv("WAGE_SHEET_RANGE", "Wages!A:E"),
		ExportDir:          getEnv("EXPORT_DIR", "storage/exports"),
		Currency:           getEnv("CURRENCY", "INR"),

		SnapshotEncryptionKey: getEnv("SNAPSHOT_ENCRYPTION_KEY", ""),

		SMTPHost:        getEnv("SMTP_HOST", ""),
		SMTPPort:        getEnvInt("SMTP_PORT", 587),
		SMTPUser:        getEnv("SMTP_USER", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:      getEnvBool("SMTP_USE_TLS", true),
		AlertFrom:       getEnv("ALERT_FROM", "capworks@localhost"),
		LowStockAlertTo: getEnv("LOW_STOCK_ALERT_TO", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// SheetsEnabled reports whether wage sheets should be pushed to Google Sheets.
func (c Config) SheetsEnabled() bool {
	return c.SheetsCredentials != "" && c.SheetID != ""
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	case StoreMongo:
		if strings.TrimSpace(c.MongoURI) == "" {
			return fmt.Errorf("MONGODB_URI is required when STORE_DRIVER=mongo")
		}
		if strings.TrimSpace(c.MongoDBName) == "" {
			return fmt.Errorf("MONGODB_DB_NAME must not be empty")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of memory, postgres, mongo; got %q", c.StoreDriver)
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if (c.SheetsCredentials == "") != (c.SheetID == "") {
		return fmt.Errorf("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_ID must be set together")
	}
	if strings.TrimSpace(c.Currency) == "" {
		return fmt.Errorf("CURRENCY must not be empty")
	}
	if c.LowStockAlertTo != "" && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST is required when LOW_STOCK_ALERT_TO is set")
	}
	if c.SMTPHost != "" && (c.SMTPPort <= 0 || c.SMTPPort > 65535) {
		return fmt.Errorf("SMTP_PORT must be a valid port")
	}
	return nil
}
