package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting of the application. Each --mode reads only
// the sections it needs.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Server   ServerConfig   `yaml:"server"`
	Pricing  PricingConfig  `yaml:"pricing"`
	Kitchen  KitchenConfig  `yaml:"kitchen"`
	Receipts ReceiptsConfig `yaml:"receipts"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
	UseTLS   bool   `yaml:"use_tls"`
}

type ServerConfig struct {
	Port          int           `yaml:"port"`
	MaxConcurrent int           `yaml:"max_concurrent"`
	SessionTTL    time.Duration `yaml:"session_ttl"` // idle carts older than this are dropped
}

type PricingConfig struct {
	TaxRate      float64 `yaml:"tax_rate"`
	DiscountRate float64 `yaml:"discount_rate"`
}

type KitchenConfig struct {
	Prefetch     int           `yaml:"prefetch"`
	Heartbeat    time.Duration `yaml:"heartbeat"`
	CookDineIn   time.Duration `yaml:"cook_dine_in"`
	CookTakeout  time.Duration `yaml:"cook_takeout"`
	CookDelivery time.Duration `yaml:"cook_delivery"`
}

type ReceiptsConfig struct {
	S3Bucket  string `yaml:"s3_bucket"`
	S3Region  string `yaml:"s3_region"`
	KeyPrefix string `yaml:"key_prefix"`
}

func Default() Config {
	return Config{
		Database: DatabaseConfig{Port: 5432, SSLMode: "disable", MaxConns: 10},
		RabbitMQ: RabbitMQConfig{Port: 5672, VHost: "/"},
		Server:   ServerConfig{Port: 3000, MaxConcurrent: 50, SessionTTL: 12 * time.Hour},
		Pricing:  PricingConfig{TaxRate: 0.10, DiscountRate: 0.10},
		Kitchen: KitchenConfig{
			Prefetch:     1,
			Heartbeat:    30 * time.Second,
			CookDineIn:   8 * time.Second,
			CookTakeout:  10 * time.Second,
			CookDelivery: 12 * time.Second,
		},
		Receipts: ReceiptsConfig{S3Region: "us-east-1", KeyPrefix: "receipts/"},
	}
}

// LoadConfig reads a YAML file on top of Default() and validates the result.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Database.Host == "" || c.Database.User == "" || c.Database.Database == "" {
		errs = append(errs, errors.New("database config incomplete"))
	}
	if c.RabbitMQ.Host == "" || c.RabbitMQ.User == "" {
		errs = append(errs, errors.New("rabbitmq config incomplete"))
	}
	if c.Pricing.TaxRate < 0 || c.Pricing.DiscountRate < 0 || c.Pricing.DiscountRate > 1 {
		errs = append(errs, errors.New("pricing rates out of range"))
	}
	if c.Kitchen.Prefetch <= 0 {
		errs = append(errs, errors.New("kitchen prefetch must be positive"))
	}
	return errors.Join(errs...)
}

// FindConfig returns the first existing file among the usual locations.
func FindConfig() (string, error) {
	for _, p := range []string{"config.yaml", "config.yml", "deploy/config.example.yaml"} {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", os.ErrNotExist
}
