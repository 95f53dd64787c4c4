package config

import (
	"errors"
	"fmt"
	"time"
)

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	LogLevel string `mapstructure:"log_level"`
}

// DSN renders the libpq connection string shared by gorm and goose.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.Host,
		c.User,
		c.Password,
		c.Name,
		c.Port,
		c.SSLMode,
	)
}

type AuthConfig struct {
	JWTSecret            string        `mapstructure:"jwt_secret"`
	ActivationTokenTTL   time.Duration `mapstructure:"activation_token_ttl"`
	SessionTokenTTL      time.Duration `mapstructure:"session_token_ttl"`
	ResetTokenTTL        time.Duration `mapstructure:"reset_token_ttl"`
	BcryptCost           int           `mapstructure:"bcrypt_cost"`
	PendingSweepInterval time.Duration `mapstructure:"pending_sweep_interval"`
	CookieName           string        `mapstructure:"cookie_name"`
}

type MailConfig struct {
	// Driver is "smtp" or "log".
	Driver     string `mapstructure:"driver"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	From       string `mapstructure:"from"`
	SiteName   string `mapstructure:"site_name"`
	APIBaseURL string `mapstructure:"api_base_url"`
}

// ClientConfig holds the front-end URLs the API links or redirects to.
type ClientConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	ActivationSuccessURL string `mapstructure:"activation_success_url"`
	ActivationErrorURL   string `mapstructure:"activation_error_url"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

type AppConfig struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Mail      MailConfig      `mapstructure:"mail"`
	Client    ClientConfig    `mapstructure:"client"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

var ErrMissingJWTSecret = errors.New("auth.jwt_secret must be set")

func (c *AppConfig) Validate() error {
	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.Auth.ActivationTokenTTL <= 0 || c.Auth.SessionTokenTTL <= 0 || c.Auth.ResetTokenTTL <= 0 {
		return errors.New("auth token TTLs must be positive")
	}
	return nil
}
