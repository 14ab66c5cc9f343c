package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`

	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Identity  IdentityConfig  `yaml:"identity"`
	Auth      AuthConfig      `yaml:"auth"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Checkout  CheckoutConfig  `yaml:"checkout"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	HTTPPort          int           `yaml:"http_port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig enables the postgres receipt store when DSN is set.
type DatabaseConfig struct {
	DSN            string `yaml:"dsn"`
	MigrationsPath string `yaml:"migrations_path"`
}

type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers"`
	CatalogTopic string        `yaml:"catalog_topic"`
	Backoff      time.Duration `yaml:"backoff"`
	BackoffCap   time.Duration `yaml:"backoff_cap"`
}

type IdentityConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type AuthConfig struct {
	TokenSecret string        `yaml:"token_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	Issuer      string        `yaml:"issuer"`
	// per client IP, on /auth routes only
	RateLimitRPS   int `yaml:"rate_limit_rps"`
	RateLimitBurst int `yaml:"rate_limit_burst"`
}

type CatalogConfig struct {
	SeedPath string `yaml:"seed_path"`
}

type CheckoutConfig struct {
	OfferThreshold  string `yaml:"offer_threshold"`
	OfferDiscount   string `yaml:"offer_discount"`
	TaxRate         string `yaml:"tax_rate"`
	DeliveryCharges string `yaml:"delivery_charges"`
}

type TelemetryConfig struct {
	ServiceName      string  `yaml:"service_name"`
	OTLPEndpoint     string  `yaml:"otlp_endpoint"`
	OTLPInsecure     bool    `yaml:"otlp_insecure"`
	TracesEnabled    bool    `yaml:"traces_enabled"`
	MetricsEnabled   bool    `yaml:"metrics_enabled"`
	TraceSampleRatio float64 `yaml:"trace_sample_ratio"`
	MetricsPath      string  `yaml:"metrics_path"`
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_PATH, and environment overrides, in that order.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}

	applyEnv(&cfg)
	normalize(&cfg)
	return cfg, nil
}

func Default() Config {
	return Config{
		AppEnv:   "dev",
		LogLevel: "info",
		Server: ServerConfig{
			HTTPPort:          8080,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      0, // event streams stay open
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Database: DatabaseConfig{
			MigrationsPath: "file://./migrations",
		},
		Kafka: KafkaConfig{
			CatalogTopic: "catalog.snapshots",
			Backoff:      500 * time.Millisecond,
			BackoffCap:   10 * time.Second,
		},
		Identity: IdentityConfig{
			BaseURL: "https://identitytoolkit.googleapis.com/v1",
			Timeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			TokenTTL:       24 * time.Hour,
			Issuer:         "foodstore",
			RateLimitRPS:   5,
			RateLimitBurst: 10,
		},
		Checkout: CheckoutConfig{
			OfferThreshold:  "1000",
			OfferDiscount:   "-50",
			TaxRate:         "0.08",
			DeliveryCharges: "30",
		},
		Telemetry: TelemetryConfig{
			ServiceName:      "foodstore",
			OTLPEndpoint:     "localhost:4318",
			OTLPInsecure:     true,
			MetricsEnabled:   true,
			TraceSampleRatio: 1.0,
			MetricsPath:      "/metrics",
		},
	}
}

// Address returns the listen address for the HTTP server.
func (s ServerConfig) Address() string {
	return fmt.Sprintf(":%d", s.HTTPPort)
}

func applyEnv(cfg *Config) {
	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Server.HTTPPort = getEnvInt("HTTP_PORT", cfg.Server.HTTPPort)
	cfg.Database.DSN = getEnv("DATABASE_DSN", cfg.Database.DSN)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	cfg.Kafka.CatalogTopic = getEnv("KAFKA_CATALOG_TOPIC", cfg.Kafka.CatalogTopic)
	cfg.Identity.BaseURL = getEnv("IDENTITY_BASE_URL", cfg.Identity.BaseURL)
	cfg.Identity.APIKey = getEnv("IDENTITY_API_KEY", cfg.Identity.APIKey)
	cfg.Auth.TokenSecret = getEnv("AUTH_TOKEN_SECRET", cfg.Auth.TokenSecret)
	cfg.Catalog.SeedPath = getEnv("CATALOG_SEED_PATH", cfg.Catalog.SeedPath)
}

func normalize(cfg *Config) {
	def := Default()
	if cfg.Server.HTTPPort <= 0 {
		cfg.Server.HTTPPort = def.Server.HTTPPort
	}
	if cfg.Server.ReadHeaderTimeout <= 0 {
		cfg.Server.ReadHeaderTimeout = def.Server.ReadHeaderTimeout
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = def.Server.ReadTimeout
	}
	// streaming endpoints rely on a zero write timeout being honoured,
	// so only negative values are reset
	if cfg.Server.WriteTimeout < 0 {
		cfg.Server.WriteTimeout = def.Server.WriteTimeout
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = def.Server.IdleTimeout
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = def.Database.MigrationsPath
	}
	if cfg.Kafka.CatalogTopic == "" {
		cfg.Kafka.CatalogTopic = def.Kafka.CatalogTopic
	}
	if cfg.Kafka.Backoff < 0 {
		cfg.Kafka.Backoff = 0
	}
	if cfg.Kafka.BackoffCap < 0 {
		cfg.Kafka.BackoffCap = 0
	}
	if cfg.Identity.Timeout <= 0 {
		cfg.Identity.Timeout = def.Identity.Timeout
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = def.Auth.TokenTTL
	}
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = def.Auth.Issuer
	}
	if cfg.Auth.RateLimitRPS <= 0 {
		cfg.Auth.RateLimitRPS = def.Auth.RateLimitRPS
	}
	if cfg.Auth.RateLimitBurst <= 0 {
		cfg.Auth.RateLimitBurst = def.Auth.RateLimitBurst
	}
	if cfg.Checkout.OfferThreshold == "" {
		cfg.Checkout.OfferThreshold = def.Checkout.OfferThreshold
	}
	if cfg.Checkout.OfferDiscount == "" {
		cfg.Checkout.OfferDiscount = def.Checkout.OfferDiscount
	}
	if cfg.Checkout.TaxRate == "" {
		cfg.Checkout.TaxRate = def.Checkout.TaxRate
	}
	if cfg.Checkout.DeliveryCharges == "" {
		cfg.Checkout.DeliveryCharges = def.Checkout.DeliveryCharges
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = def.Telemetry.ServiceName
	}
	if cfg.Telemetry.OTLPEndpoint == "" {
		cfg.Telemetry.OTLPEndpoint = def.Telemetry.OTLPEndpoint
	}
	if cfg.Telemetry.TraceSampleRatio <= 0 || cfg.Telemetry.TraceSampleRatio > 1 {
		cfg.Telemetry.TraceSampleRatio = 1.0
	}
	if cfg.Telemetry.MetricsPath == "" {
		cfg.Telemetry.MetricsPath = def.Telemetry.MetricsPath
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
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

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
