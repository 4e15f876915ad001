package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Razorpay RazorpayConfig
	Twilio   TwilioConfig
	Email    EmailConfig
	Webhook  WebhookConfig
	Outbox   OutboxConfig
	Staff    StaffConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
	// CORSOrigins is a comma separated allowlist, "*" allows any origin.
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// RazorpayConfig holds gateway credentials. KeySecret signs checkout callbacks,
// WebhookSecret signs server-to-server webhooks.
type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string
	CompanyName   string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

type EmailConfig struct {
	Provider       string // sendgrid | ses | log
	SendGridAPIKey string
	AWSRegion      string
	FromEmail      string
	FromName       string
}

type WebhookConfig struct {
	CRMURL  string
	Timeout time.Duration
}

type OutboxConfig struct {
	BatchSize   int
	Interval    time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
}

type StaffConfig struct {
	// EmailDomain is the legacy fallback used to recognise staff accounts that
	// predate the users.role column.
	EmailDomain string
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "care-booking")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com")
	v.SetDefault("RAZORPAY_COMPANY_NAME", "Care Diagnostics")
	v.SetDefault("EMAIL_PROVIDER", "log")
	v.SetDefault("EMAIL_FROM_NAME", "Care Diagnostics")
	v.SetDefault("AWS_REGION", "ap-south-1")
	v.SetDefault("CRM_WEBHOOK_TIMEOUT_SECONDS", 10)
	v.SetDefault("OUTBOX_BATCH_SIZE", 25)
	v.SetDefault("OUTBOX_INTERVAL_SECONDS", 5)
	v.SetDefault("OUTBOX_MAX_ATTEMPTS", 5)
	v.SetDefault("OUTBOX_BASE_DELAY_SECONDS", 30)

	// .env is optional, the environment always wins
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Port:    v.GetString("PORT"),
			Debug:   v.GetBool("DEBUG"),
			LogPath: v.GetString("LOG_PATH"),

			CORSOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Razorpay: RazorpayConfig{
			KeyID:         v.GetString("RAZORPAY_KEY_ID"),
			KeySecret:     v.GetString("RAZORPAY_KEY_SECRET"),
			WebhookSecret: v.GetString("RAZORPAY_WEBHOOK_SECRET"),
			BaseURL:       v.GetString("RAZORPAY_BASE_URL"),
			CompanyName:   v.GetString("RAZORPAY_COMPANY_NAME"),
		},
		Twilio: TwilioConfig{
			AccountSID: v.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:  v.GetString("TWILIO_AUTH_TOKEN"),
			From:       v.GetString("TWILIO_FROM"),
		},
		Email: EmailConfig{
			Provider:       v.GetString("EMAIL_PROVIDER"),
			SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
			AWSRegion:      v.GetString("AWS_REGION"),
			FromEmail:      v.GetString("EMAIL_FROM"),
			FromName:       v.GetString("EMAIL_FROM_NAME"),
		},
		Webhook: WebhookConfig{
			CRMURL:  v.GetString("CRM_WEBHOOK_URL"),
			Timeout: time.Duration(v.GetInt("CRM_WEBHOOK_TIMEOUT_SECONDS")) * time.Second,
		},
		Outbox: OutboxConfig{
			BatchSize:   v.GetInt("OUTBOX_BATCH_SIZE"),
			Interval:    time.Duration(v.GetInt("OUTBOX_INTERVAL_SECONDS")) * time.Second,
			MaxAttempts: v.GetInt("OUTBOX_MAX_ATTEMPTS"),
			BaseDelay:   time.Duration(v.GetInt("OUTBOX_BASE_DELAY_SECONDS")) * time.Second,
		},
		Staff: StaffConfig{
			EmailDomain: v.GetString("STAFF_EMAIL_DOMAIN"),
		},
	}

	return config, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
