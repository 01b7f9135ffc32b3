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
	Session  SessionConfig
	Booking  BookingConfig
	Sweeper  SweeperConfig
	Stripe   StripeConfig
	Kafka    KafkaConfig
	Storage  StorageConfig
	Redis    RedisConfig
}

type AppConfig struct {
	Name        string
	Port        string
	Debug       bool
	LogPath     string
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

type SessionConfig struct {
	ExpiryHours int
}

// BookingConfig holds the business-configured windows of the hold lifecycle.
type BookingConfig struct {
	HoldWindow     time.Duration
	PaymentTimeout time.Duration
	OnFileWindow   time.Duration
	NotifyTimeout  time.Duration
}

type SweeperConfig struct {
	Schedule       string
	BatchSize      int
	Concurrency    int
	BookingTimeout time.Duration
	LeaseTTL       time.Duration
}

type StripeConfig struct {
	SecretKey string
	Currency  string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "foodtruck-market")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("SESSION_EXPIRY_HOURS", 24)
	viper.SetDefault("HOLD_WINDOW_HOURS", 144)
	viper.SetDefault("PAYMENT_TIMEOUT_SECONDS", 15)
	viper.SetDefault("DOCUMENT_ON_FILE_DAYS", 365)
	viper.SetDefault("NOTIFY_TIMEOUT_SECONDS", 10)
	viper.SetDefault("SWEEP_SCHEDULE", "@every 5m")
	viper.SetDefault("SWEEP_BATCH_SIZE", 200)
	viper.SetDefault("SWEEP_CONCURRENCY", 4)
	viper.SetDefault("SWEEP_BOOKING_TIMEOUT_SECONDS", 30)
	viper.SetDefault("SWEEP_LEASE_SECONDS", 240)
	viper.SetDefault("STRIPE_CURRENCY", "usd")
	viper.SetDefault("NOTIFY_TOPIC", "booking.notifications.v1")
	viper.SetDefault("S3_BUCKET", "booking-documents")
	viper.SetDefault("S3_USE_SSL", false)

	// .env is optional; the environment always wins
	if err := viper.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:        viper.GetString("APP_NAME"),
			Port:        viper.GetString("PORT"),
			Debug:       viper.GetBool("DEBUG"),
			LogPath:     viper.GetString("LOG_PATH"),
			CORSOrigins: splitList(viper.GetString("CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Session: SessionConfig{
			ExpiryHours: viper.GetInt("SESSION_EXPIRY_HOURS"),
		},
		Booking: BookingConfig{
			HoldWindow:     time.Duration(viper.GetInt("HOLD_WINDOW_HOURS")) * time.Hour,
			PaymentTimeout: time.Duration(viper.GetInt("PAYMENT_TIMEOUT_SECONDS")) * time.Second,
			OnFileWindow:   time.Duration(viper.GetInt("DOCUMENT_ON_FILE_DAYS")) * 24 * time.Hour,
			NotifyTimeout:  time.Duration(viper.GetInt("NOTIFY_TIMEOUT_SECONDS")) * time.Second,
		},
		Sweeper: SweeperConfig{
			Schedule:       viper.GetString("SWEEP_SCHEDULE"),
			BatchSize:      viper.GetInt("SWEEP_BATCH_SIZE"),
			Concurrency:    viper.GetInt("SWEEP_CONCURRENCY"),
			BookingTimeout: time.Duration(viper.GetInt("SWEEP_BOOKING_TIMEOUT_SECONDS")) * time.Second,
			LeaseTTL:       time.Duration(viper.GetInt("SWEEP_LEASE_SECONDS")) * time.Second,
		},
		Stripe: StripeConfig{
			SecretKey: viper.GetString("STRIPE_SECRET_KEY"),
			Currency:  viper.GetString("STRIPE_CURRENCY"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(viper.GetString("KAFKA_BROKERS")),
			Topic:   viper.GetString("NOTIFY_TOPIC"),
		},
		Storage: StorageConfig{
			Endpoint:  viper.GetString("S3_ENDPOINT"),
			AccessKey: viper.GetString("S3_ACCESS_KEY"),
			SecretKey: viper.GetString("S3_SECRET_KEY"),
			Bucket:    viper.GetString("S3_BUCKET"),
			UseSSL:    viper.GetBool("S3_USE_SSL"),
			PublicURL: viper.GetString("S3_PUBLIC_URL"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
	}

	return config, nil
}

// splitList parses comma separated values, dropping blanks
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
