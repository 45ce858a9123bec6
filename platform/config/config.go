// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetEmailProvider() string
	GetBrevoAPIKey() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// NotificationConfig provides settings for the notification module.
type NotificationConfig interface {
	GetAppBaseURL() string
	GetDefaultPhoneRegion() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOPublicURL() string
	GetMinIOMaxFileSize() int64
	GetMinioBucketCounterOfferEvidence() string
	IsMinIOEnabled() bool
}

// CounterOfferConfig provides settings for the counter-offer module.
type CounterOfferConfig interface {
	GetCounterOfferValidity() time.Duration
	GetCounterOfferPolicy() CounterOfferPolicy
}

// SchedulerConfig provides settings for the asynq scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                             string
	HTTPAddr                        string
	DatabaseURL                     string
	JWTAccessSecret                 string
	CORSAllowAll                    bool
	CORSOrigins                     []string
	CORSAllowCreds                  bool
	AppBaseURL                      string
	DefaultPhoneRegion              string
	EmailEnabled                    bool
	EmailProvider                   string
	BrevoAPIKey                     string
	SMTPHost                        string
	SMTPPort                        int
	SMTPUsername                    string
	SMTPPassword                    string
	EmailFromName                   string
	EmailFromAddress                string
	MinIOEndpoint                   string
	MinIOAccessKey                  string
	MinIOSecretKey                  string
	MinIOUseSSL                     bool
	MinIOPublicURL                  string
	MinIOMaxFileSize                int64
	MinioBucketCounterOfferEvidence string
	CounterOfferValidity            time.Duration
	CounterOfferPolicy              CounterOfferPolicy
	RedisURL                        string
	RedisTLSInsecure                bool
	AsynqQueueName                  string
	AsynqConcurrency                int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetEmailProvider() string    { return c.EmailProvider }
func (c *Config) GetBrevoAPIKey() string      { return c.BrevoAPIKey }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// NotificationConfig implementation
func (c *Config) GetAppBaseURL() string         { return c.AppBaseURL }
func (c *Config) GetDefaultPhoneRegion() string { return c.DefaultPhoneRegion }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string   { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string  { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string  { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool       { return c.MinIOUseSSL }
func (c *Config) GetMinIOPublicURL() string  { return c.MinIOPublicURL }
func (c *Config) GetMinIOMaxFileSize() int64 { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketCounterOfferEvidence() string {
	return c.MinioBucketCounterOfferEvidence
}
func (c *Config) IsMinIOEnabled() bool { return c.MinIOEndpoint != "" }

// CounterOfferConfig implementation
func (c *Config) GetCounterOfferValidity() time.Duration    { return c.CounterOfferValidity }
func (c *Config) GetCounterOfferPolicy() CounterOfferPolicy { return c.CounterOfferPolicy }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")
	emailProvider := strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "brevo")))

	policy, err := LoadCounterOfferPolicy(getEnv("COUNTER_OFFER_POLICY_FILE", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:                             getEnv("APP_ENV", "development"),
		HTTPAddr:                        getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:                     getEnv("DATABASE_URL", ""),
		JWTAccessSecret:                 getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:                    corsAllowAll,
		CORSOrigins:                     corsOrigins,
		CORSAllowCreds:                  strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		AppBaseURL:                      strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:4200"), "/"),
		DefaultPhoneRegion:              getEnv("DEFAULT_PHONE_REGION", "NL"),
		EmailEnabled:                    emailEnabled,
		EmailProvider:                   emailProvider,
		BrevoAPIKey:                     getEnv("BREVO_API_KEY", ""),
		SMTPHost:                        getEnv("SMTP_HOST", ""),
		SMTPPort:                        mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:                    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:                    getEnv("SMTP_PASSWORD", ""),
		EmailFromName:                   getEnv("EMAIL_FROM_NAME", "Recycle Portal"),
		EmailFromAddress:                getEnv("EMAIL_FROM_ADDRESS", ""),
		MinIOEndpoint:                   getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:                  getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:                  getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:                     strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOPublicURL:                  strings.TrimRight(getEnv("MINIO_PUBLIC_URL", ""), "/"),
		MinIOMaxFileSize:                mustInt64(getEnv("EVIDENCE_MAX_FILE_SIZE", "5242880")),
		MinioBucketCounterOfferEvidence: getEnv("MINIO_BUCKET_COUNTER_OFFER_EVIDENCE", "counter-offer-evidence"),
		CounterOfferValidity:            mustDuration(getEnv("COUNTER_OFFER_VALIDITY", "168h")),
		CounterOfferPolicy:              policy,
		RedisURL:                        getEnv("REDIS_URL", ""),
		RedisTLSInsecure:                strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:                  getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:                mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTAccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if c.CounterOfferValidity <= 0 {
		return fmt.Errorf("COUNTER_OFFER_VALIDITY must be a positive duration")
	}
	if c.MinIOMaxFileSize <= 0 {
		return fmt.Errorf("EVIDENCE_MAX_FILE_SIZE must be positive")
	}
	if c.EmailEnabled {
		switch c.EmailProvider {
		case "brevo":
			if c.BrevoAPIKey == "" {
				return fmt.Errorf("BREVO_API_KEY is required when EMAIL_PROVIDER is brevo")
			}
		case "smtp":
			if c.SMTPHost == "" {
				return fmt.Errorf("SMTP_HOST is required when EMAIL_PROVIDER is smtp")
			}
		default:
			return fmt.Errorf("unsupported EMAIL_PROVIDER %q", c.EmailProvider)
		}
		if c.EmailFromAddress == "" {
			return fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
		}
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
