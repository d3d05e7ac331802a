package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"careerdesk/internal/textutil"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type ServerConfig struct {
	Addr           string `validate:"required"`
	FrontendURL    string `validate:"omitempty,url"`
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver string `validate:"required,oneof=sqlite postgres"`
	Path   string `validate:"required_if=Driver sqlite"`
	DSN    string `validate:"required_if=Driver postgres"`
}

type AuthConfig struct {
	JWTSecret       string `validate:"required,min=16"`
	TokenTTLMinutes int    `validate:"gt=0"`
}

type StorageConfig struct {
	Bucket           string
	KeyPrefix        string
	Region           string
	Endpoint         string
	URLExpiryMinutes int `validate:"gte=0"`
}

type AWSConfig struct {
	Profile string
}

type LogConfig struct {
	Level      string `validate:"oneof=debug info warn error"`
	Format     string `validate:"oneof=text json"`
	File       string
	MaxSizeMB  int `validate:"gte=0"`
	MaxBackups int `validate:"gte=0"`
	MaxAgeDays int `validate:"gte=0"`
}

type PaymentConfig struct {
	BaseURL                string `validate:"omitempty,url"`
	MerchantID             string
	PublicKeyID            string
	PrivateKeyID           string
	GatewayPublicKeyPath   string
	MerchantPrivateKeyPath string
	CallbackURL            string `validate:"omitempty,url"`
	Currency               string `validate:"len=3"`
	TimeoutSeconds         int    `validate:"gt=0"`
}

// Enabled reports whether enough gateway settings are present to talk to it.
func (p PaymentConfig) Enabled() bool {
	return p.BaseURL != "" && p.MerchantID != "" && p.GatewayPublicKeyPath != "" && p.MerchantPrivateKeyPath != ""
}

type ReconcilerConfig struct {
	Enabled       bool
	Interval      time.Duration
	MaxConcurrent int `validate:"gte=0"`
	StaleAfter    time.Duration
}

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Storage    StorageConfig
	AWS        AWSConfig
	Log        LogConfig
	Payment    PaymentConfig
	Reconciler ReconcilerConfig
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// .env never overrides variables already present in the environment
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CAREERDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	// env vars arrive as one comma separated string
	cfg.Server.AllowedOrigins = textutil.SplitList(cfg.Server.AllowedOrigins...)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.frontendurl", "http://localhost:3000")
	v.SetDefault("server.allowedorigins", []string{"*"})
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "data/careerdesk.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 60*24)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "careerdesk")
	v.SetDefault("storage.region", "ap-south-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.urlexpiryminutes", 60)
	v.SetDefault("aws.profile", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.maxsizemb", 50)
	v.SetDefault("log.maxbackups", 5)
	v.SetDefault("log.maxagedays", 28)
	v.SetDefault("payment.baseurl", "")
	v.SetDefault("payment.merchantid", "")
	v.SetDefault("payment.publickeyid", "")
	v.SetDefault("payment.privatekeyid", "")
	v.SetDefault("payment.gatewaypublickeypath", "")
	v.SetDefault("payment.merchantprivatekeypath", "")
	v.SetDefault("payment.callbackurl", "")
	v.SetDefault("payment.currency", "INR")
	v.SetDefault("payment.timeoutseconds", 30)
	v.SetDefault("reconciler.enabled", true)
	v.SetDefault("reconciler.interval", 5*time.Minute)
	v.SetDefault("reconciler.maxconcurrent", 3)
	v.SetDefault("reconciler.staleafter", 10*time.Minute)
}

// Validate checks struct level constraints on the loaded configuration.
func (c Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			messages := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf("%s: %s", strings.ToLower(fieldErr.Namespace()), fieldErr.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(messages, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
