package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port           int           `mapstructure:"port" envconfig:"SERVER_PORT"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" envconfig:"SERVER_REQUEST_TIMEOUT"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" envconfig:"DB_HOST"`
	Port     int    `mapstructure:"port" envconfig:"DB_PORT"`
	User     string `mapstructure:"user" envconfig:"DB_USER"`
	Password string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name     string `mapstructure:"name" envconfig:"DB_NAME"`
	SSLMode  string `mapstructure:"sslmode" envconfig:"DB_SSLMODE"`
}

type RedisConfig struct {
	URL string `mapstructure:"url" envconfig:"REDIS_URL"`
}

type JWTConfig struct {
	Secret             string `mapstructure:"secret" envconfig:"JWT_SECRET"`
	RefreshSecret      string `mapstructure:"refresh_secret" envconfig:"JWT_REFRESH_SECRET"`
	ExpiryHours        int    `mapstructure:"expiry_hours" envconfig:"JWT_EXPIRY_HOURS"`
	RefreshExpiryHours int    `mapstructure:"refresh_expiry_hours" envconfig:"JWT_REFRESH_EXPIRY_HOURS"`
}

type WebpayConfig struct {
	BaseURL              string        `mapstructure:"base_url" envconfig:"WEBPAY_BASE_URL"`
	CommerceCode         string        `mapstructure:"commerce_code" envconfig:"WEBPAY_COMMERCE_CODE"`
	APIKey               string        `mapstructure:"api_key" envconfig:"WEBPAY_API_KEY"`
	Timeout              time.Duration `mapstructure:"timeout" envconfig:"WEBPAY_TIMEOUT"`
	MaxAttempts          int           `mapstructure:"max_attempts" envconfig:"WEBPAY_MAX_ATTEMPTS"`
	RetryBackoff         time.Duration `mapstructure:"retry_backoff" envconfig:"WEBPAY_RETRY_BACKOFF"`
	SubscriptionReturnURL string       `mapstructure:"subscription_return_url" envconfig:"WEBPAY_SUBSCRIPTION_RETURN_URL"`
	AppointmentReturnURL  string       `mapstructure:"appointment_return_url" envconfig:"WEBPAY_APPOINTMENT_RETURN_URL"`
}

type SentimentConfig struct {
	URL     string        `mapstructure:"url" envconfig:"SENTIMENT_URL"`
	Timeout time.Duration `mapstructure:"timeout" envconfig:"SENTIMENT_TIMEOUT"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled" envconfig:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" envconfig:"RATE_LIMIT_RPS"`
	Burst             int     `mapstructure:"burst" envconfig:"RATE_LIMIT_BURST"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Webpay    WebpayConfig    `mapstructure:"webpay"`
	Sentiment SentimentConfig `mapstructure:"sentiment"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "10s")
	viper.SetDefault("server.write_timeout", "10s")
	viper.SetDefault("server.request_timeout", "30s")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("jwt.refresh_expiry_hours", 168)
	viper.SetDefault("webpay.base_url", "https://webpay3gint.transbank.cl")
	viper.SetDefault("webpay.timeout", "10s")
	viper.SetDefault("webpay.max_attempts", 3)
	viper.SetDefault("webpay.retry_backoff", "500ms")
	viper.SetDefault("sentiment.timeout", "5s")
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests_per_second", 50)
	viper.SetDefault("rate_limit.burst", 100)
}

// LoadConfig reads config.yml (if present) and applies environment
// overrides on top of it.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app")
	viper.AddConfigPath("/app/config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	return &config, nil
}
