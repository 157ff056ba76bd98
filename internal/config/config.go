package config

import (
	"fmt"
	"os"
)

// Config holds application configuration
type Config struct {
	Port           string
	DBConn         string
	LogLevel       string
	JWTSecret      string
	FxFeedURL      string
	AttachmentDir  string
	AttachmentBase string
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	SenderEmail    string
	AlertEmail     string
	DigestEmail    string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DBConn:         getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=obra sslmode=disable"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		FxFeedURL:      getEnv("FX_FEED_URL", "https://www.bna.com.ar/Cotizador/HistoricoPrincipales"),
		AttachmentDir:  getEnv("ATTACHMENT_DIR", "./attachments"),
		AttachmentBase: getEnv("ATTACHMENT_BASE_URL", "/attachments"),
		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getEnv("SMTP_PORT", "1025"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SenderEmail:    getEnv("SENDER_EMAIL", "obra-service@localhost"),
		AlertEmail:     getEnv("ALERT_EMAIL", ""),
		DigestEmail:    getEnv("DIGEST_EMAIL", ""),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.FxFeedURL == "" {
		return nil, fmt.Errorf("FX_FEED_URL is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
