package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every runtime parameter of the application. All values come
// from the environment; a .env file is loaded first when present.
type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	Rabbit   RabbitConfig
	Redis    RedisConfig
	Admin    AdminConfig
	Gateway  GatewayConfig
	Mail     MailConfig
	Printer  PrinterConfig

	// TaxRate is applied to the order subtotal. Defaults to the
	// restaurant's 6% sales tax.
	TaxRate float64
}

type HTTPConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
}

type RabbitConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AdminConfig struct {
	User string
	// PasswordHash is a bcrypt hash of the admin password.
	PasswordHash string
}

type GatewayConfig struct {
	BaseURL string
	// TokenizationKey is the public key handed to the hosted card widget.
	TokenizationKey string
	PrivateKey      string
	MerchantID      string
}

type MailConfig struct {
	BaseURL string
	APIKey  string
	From    string
}

type PrinterConfig struct {
	// Port the thermal printer listens on; 9100 is the raw-socket default.
	Port int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTP: HTTPConfig{
			Port: envInt("PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     envStr("DB_HOST", "localhost"),
			Port:     envInt("DB_PORT", 5432),
			User:     envStr("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Database: envStr("DB_NAME", "curryhouse"),
			SSLMode:  envStr("DB_SSLMODE", "disable"),
			MaxConns: envInt("DB_MAX_CONNS", 10),
		},
		Rabbit: RabbitConfig{
			Host:     envStr("RABBIT_HOST", "localhost"),
			Port:     envInt("RABBIT_PORT", 5672),
			User:     envStr("RABBIT_USER", "guest"),
			Password: envStr("RABBIT_PASSWORD", "guest"),
			VHost:    envStr("RABBIT_VHOST", "/"),
		},
		Redis: RedisConfig{
			Addr:     envStr("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
		},
		Admin: AdminConfig{
			User:         envStr("ADMIN_USER", "admin"),
			PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		},
		Gateway: GatewayConfig{
			BaseURL:         envStr("GATEWAY_URL", "https://api.sandbox.gateway.example.com"),
			TokenizationKey: os.Getenv("GATEWAY_TOKENIZATION_KEY"),
			PrivateKey:      os.Getenv("GATEWAY_PRIVATE_KEY"),
			MerchantID:      os.Getenv("GATEWAY_MERCHANT_ID"),
		},
		Mail: MailConfig{
			BaseURL: envStr("MAIL_API_URL", "https://api.mail.example.com"),
			APIKey:  os.Getenv("MAIL_API_KEY"),
			From:    envStr("MAIL_FROM", "orders@curryhouse.example.com"),
		},
		Printer: PrinterConfig{
			Port: envInt("PRINTER_PORT", 9100),
		},
		TaxRate: envFloat("TAX_RATE", 0.06),
	}

	if cfg.Database.Host == "" || cfg.Database.User == "" || cfg.Database.Database == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	if cfg.Admin.PasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is not set")
	}
	return cfg, nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
