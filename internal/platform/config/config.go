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
	EmailProviderNone = "none"
	EmailProviderSMTP = "smtp"
	EmailProviderSES  = "ses"

	StorageLocal = "local"
	StorageS3    = "s3"

	DeductionScopeCumulative = "cumulative"
	DeductionScopePeriod     = "period"
)

type Config struct {
	Addr                    string
	Environment             string
	DatabaseURL             string
	SecondaryDatabaseURL    string
	DefaultOrganization     string
	SecondaryOrganization   string
	JWTSecret               string
	DataEncryptionKey       string
	RunMigrations           bool
	MigrationsDir           string
	MaxBodyBytes            int64
	RateLimitPerMinute      int
	CORSAllowedOrigins      []string
	StoreTimeout            time.Duration
	EmailProvider           string
	EmailFrom               string
	EmailFromName           string
	SMTPHost                string
	SMTPPort                int
	SMTPUser                string
	SMTPPassword            string
	SMTPUseTLS              bool
	AWSRegion               string
	NotifyConcurrency       int
	NotifyTimeout           time.Duration
	StorageBackend          string
	StorageDir              string
	S3Bucket                string
	RedisURL                string
	PeriodLockTTL           time.Duration
	KafkaBrokers            []string
	KafkaTopic              string
	SlackWebhookURL         string
	HRPartnerBaseURL        string
	HRPartnerAPIKey         string
	IngestKeyHash           string
	ReportColumnsFile       string
	IncludeOtherDeductions  bool
	DeductionScope          string
	MetricsEnabled          bool
}

// Load reads the process environment. A .env file in the working directory is
// applied first when present; variables already set win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:                   getEnv("APP_ADDR", ":8080"),
		Environment:            getEnv("APP_ENV", "development"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		SecondaryDatabaseURL:   getEnv("SECONDARY_DATABASE_URL", ""),
		DefaultOrganization:    getEnv("DEFAULT_ORGANIZATION", "primary"),
		SecondaryOrganization:  getEnv("SECONDARY_ORGANIZATION", "secondary"),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		DataEncryptionKey:      getEnv("DATA_ENCRYPTION_KEY", ""),
		RunMigrations:          getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:          getEnv("MIGRATIONS_DIR", "migrations"),
		MaxBodyBytes:           int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute:     getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		CORSAllowedOrigins:     getEnvList("CORS_ALLOWED_ORIGINS", nil),
		StoreTimeout:           getEnvDuration("STORE_TIMEOUT", 15*time.Second),
		EmailProvider:          getEnv("EMAIL_PROVIDER", EmailProviderNone),
		EmailFrom:              getEnv("EMAIL_FROM", "no-reply@example.com"),
		EmailFromName:          getEnv("EMAIL_FROM_NAME", "Payroll"),
		SMTPHost:               getEnv("SMTP_HOST", ""),
		SMTPPort:               getEnvInt("SMTP_PORT", 587),
		SMTPUser:               getEnv("SMTP_USER", ""),
		SMTPPassword:           getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:             getEnvBool("SMTP_USE_TLS", true),
		AWSRegion:              getEnv("AWS_REGION", "ap-southeast-1"),
		NotifyConcurrency:      getEnvInt("NOTIFY_CONCURRENCY", 8),
		NotifyTimeout:          getEnvDuration("NOTIFY_TIMEOUT", 20*time.Second),
		StorageBackend:         getEnv("STORAGE_BACKEND", StorageLocal),
		StorageDir:             getEnv("STORAGE_DIR", "storage"),
		S3Bucket:               getEnv("S3_BUCKET", ""),
		RedisURL:               getEnv("REDIS_URL", ""),
		PeriodLockTTL:          getEnvDuration("PERIOD_LOCK_TTL", 2*time.Minute),
		KafkaBrokers:           getEnvList("KAFKA_BROKERS", nil),
		KafkaTopic:             getEnv("KAFKA_TOPIC", "payroll-events"),
		SlackWebhookURL:        getEnv("SLACK_WEBHOOK_URL", ""),
		HRPartnerBaseURL:       strings.TrimSuffix(getEnv("HRPARTNER_BASE_URL", "https://api.hrpartner.io"), "/"),
		HRPartnerAPIKey:        getEnv("HRPARTNER_API_KEY", ""),
		IngestKeyHash:          getEnv("INGEST_KEY_HASH", ""),
		ReportColumnsFile:      getEnv("REPORT_COLUMNS_FILE", ""),
		IncludeOtherDeductions: getEnvBool("PAYROLL_INCLUDE_OTHER_DEDUCTIONS", false),
		DeductionScope:         getEnv("PAYROLL_DEDUCTION_SCOPE", DeductionScopeCumulative),
		MetricsEnabled:         getEnvBool("METRICS_ENABLED", true),
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

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.SecondaryDatabaseURL != "" && c.SecondaryOrganization == c.DefaultOrganization {
		return fmt.Errorf("SECONDARY_ORGANIZATION must differ from DEFAULT_ORGANIZATION")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.NotifyConcurrency <= 0 {
		return fmt.Errorf("NOTIFY_CONCURRENCY must be positive")
	}
	switch c.EmailProvider {
	case EmailProviderNone, EmailProviderSES:
	case EmailProviderSMTP:
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST must be set when EMAIL_PROVIDER is smtp")
		}
	default:
		return fmt.Errorf("EMAIL_PROVIDER must be one of none, smtp, ses")
	}
	switch c.StorageBackend {
	case StorageLocal:
	case StorageS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET must be set when STORAGE_BACKEND is s3")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be local or s3")
	}
	if c.DeductionScope != DeductionScopeCumulative && c.DeductionScope != DeductionScopePeriod {
		return fmt.Errorf("PAYROLL_DEDUCTION_SCOPE must be cumulative or period")
	}
	return nil
}
