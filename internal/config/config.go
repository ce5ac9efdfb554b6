package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Storage  S3Config `yaml:"storage"`
	Bench    Bench    `yaml:"bench"`
	LogLevel string   `yaml:"log_level"`
}

// S3Config represents S3-compatible storage configuration
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// Bench represents benchmark-specific configuration
type Bench struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Concurrency  int    `yaml:"concurrency"`
	ChunkSize    uint64 `yaml:"chunk_size"`
	Report       string `yaml:"report"`
	MetricsAddr  string `yaml:"metrics_addr"`
	ShowProgress bool   `yaml:"show_progress"`
}

// Load loads configuration from file and command line flags. endpoint and
// bucket come from the positional arguments and override both.
func Load(configFile string, flags *pflag.FlagSet, endpoint, bucket string) (*Config, error) {
	cfg := &Config{
		LogLevel: "info",
		Bench: Bench{
			Concurrency:  32,
			ChunkSize:    4 * 1024 * 1024 * 1024, // 4GB per range read
			ShowProgress: true,
		},
	}

	// Load from YAML file if provided
	if configFile != "" {
		if err := loadFromFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Override with command line flags
	if err := loadFromFlags(cfg, flags); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	cfg.Storage.Endpoint = endpoint
	cfg.Bench.Bucket = bucket

	// Fall back to the conventional environment credentials
	if cfg.Storage.AccessKey == "" {
		cfg.Storage.AccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
	}
	if cfg.Storage.SecretKey == "" {
		cfg.Storage.SecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func loadFromFlags(cfg *Config, flags *pflag.FlagSet) error {
	if flags.Changed("access-key") {
		cfg.Storage.AccessKey, _ = flags.GetString("access-key")
	}
	if flags.Changed("secret-key") {
		cfg.Storage.SecretKey, _ = flags.GetString("secret-key")
	}
	if flags.Changed("secure") {
		cfg.Storage.Secure, _ = flags.GetBool("secure")
	}

	if flags.Changed("prefix") {
		cfg.Bench.Prefix, _ = flags.GetString("prefix")
	}
	if flags.Changed("concurrency") {
		cfg.Bench.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("chunk-size") {
		cfg.Bench.ChunkSize, _ = flags.GetUint64("chunk-size")
	}
	if flags.Changed("report") {
		cfg.Bench.Report, _ = flags.GetString("report")
	}
	if flags.Changed("metrics-addr") {
		cfg.Bench.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	if flags.Changed("show-progress") {
		cfg.Bench.ShowProgress, _ = flags.GetBool("show-progress")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	return nil
}

func (c *Config) validate() error {
	if c.Storage.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}

	if c.Bench.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}

	if c.Bench.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}

	if c.Bench.ChunkSize == 0 {
		return fmt.Errorf("chunk size must be positive")
	}

	return nil
}
