package config

import (
	"os"
	"strconv"
	"time"
)

type R2 struct {
	AccountID     string
	AccessKey     string
	SecretKey     string
	BucketName    string
	PublicBaseURL string
}

type Config struct {
	Port               string
	WebhookPath        string
	PublicBaseURL      string
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	OperatorWhatsAppTo string
	ValidateSignature  bool
	StorageBackend     string
	QueueDir           string
	PostgresURI        string
	RedisURI           string
	RetentionWindow    time.Duration
	ApprovalTimeout    time.Duration
	SweepInterval      time.Duration
	APIKey             string
	R2                 R2
}

func LoadConfig() *Config {
	return &Config{
		Port:               getEnv("PORT", "3000"),
		WebhookPath:        getEnv("WEBHOOK_PATH", "/whatsapp/incoming"),
		PublicBaseURL:      getEnv("PUBLIC_BASE_URL", ""),
		TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppFrom: getEnv("TWILIO_WHATSAPP_FROM", ""),
		OperatorWhatsAppTo: getEnv("OPERATOR_WHATSAPP_TO", ""),
		ValidateSignature:  getEnvBool("VALIDATE_SIGNATURE", true),
		StorageBackend:     getEnv("STORAGE_BACKEND", "file"),
		QueueDir:           getEnv("QUEUE_DIR", "data/queue"),
		PostgresURI:        getEnv("POSTGRES_URI", ""),
		RedisURI:           getEnv("REDIS_URI", "127.0.0.1:6379"),
		RetentionWindow:    time.Duration(getEnvInt("RETENTION_DAYS", 7)) * 24 * time.Hour,
		ApprovalTimeout:    time.Duration(getEnvInt("APPROVAL_TIMEOUT_MINUTES", 60)) * time.Minute,
		SweepInterval:      time.Duration(getEnvInt("SWEEP_INTERVAL_MINUTES", 5)) * time.Minute,
		APIKey:             getEnv("API_KEY", ""),
		R2: R2{
			AccountID:     getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:     getEnv("R2_ACCESS_KEY", ""),
			SecretKey:     getEnv("R2_SECRET_KEY", ""),
			BucketName:    getEnv("R2_BUCKET_NAME", ""),
			PublicBaseURL: getEnv("R2_PUBLIC_BASE_URL", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
