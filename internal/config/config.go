// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/database"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/logger"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/notify"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Payment gateways.
const (
	GatewaySandbox  = "sandbox"
	GatewayRazorpay = "razorpay"
)

// Config is the full runtime configuration.
type Config struct {
	Port            string
	Store           string
	ShutdownTimeout time.Duration

	Database database.Config
	RedisURL string
	// RateLimit uses the "<limit>-<period>" format, e.g. "30-M".
	RateLimit string

	PaymentGateway    string
	RazorpayKeyID     string
	RazorpayKeySecret string
	PaymentCurrency   string

	SMTP         notify.SMTPConfig
	AMQPURL      string
	AMQPExchange string

	Log logger.Options
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Store:           strings.ToLower(getEnv("STORE", StorePostgres)),
		ShutdownTimeout: 10 * time.Second,
		Database: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "hotel_reservation"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisURL:          os.Getenv("REDIS_URL"),
		RateLimit:         getEnv("RATE_LIMIT", "30-M"),
		PaymentGateway:    strings.ToLower(getEnv("PAYMENT_GATEWAY", GatewaySandbox)),
		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		PaymentCurrency:   getEnv("PAYMENT_CURRENCY", "INR"),
		SMTP: notify.SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("FROM_EMAIL", "reservations@localhost"),
		},
		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "booking.confirmed"),
		Log: logger.Options{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
			File:   os.Getenv("LOG_FILE"),
		},
	}

	var err error
	if cfg.Database.MaxConns, err = getInt32("DB_MAX_CONNS", 10); err != nil {
		return nil, err
	}
	if cfg.SMTP.Port, err = getInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}
	switch c.PaymentGateway {
	case GatewaySandbox:
	case GatewayRazorpay:
		if c.RazorpayKeyID == "" || c.RazorpayKeySecret == "" {
			return fmt.Errorf("PAYMENT_GATEWAY=razorpay requires RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET")
		}
	default:
		return fmt.Errorf("PAYMENT_GATEWAY must be %q or %q, got %q", GatewaySandbox, GatewayRazorpay, c.PaymentGateway)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func getInt32(key string, fallback int32) (int32, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return int32(n), nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}
