// Package config provides configuration loading and validation for the API server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults used when neither the config file nor the environment set a value
const (
	DefaultPort          = 8080
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultPublicBaseURL = "http://localhost:3000"
	DefaultCORSOrigin    = "*"
	DefaultMailFrom      = "Hirely <no-reply@hirely.local>"
)

// StorageConfig configures the S3-compatible object store used for resumes
// and company logos. Storage is disabled when Bucket is empty.
type StorageConfig struct {
	Bucket          string `yaml:"bucket,omitempty"`
	Region          string `yaml:"region,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"`   // e.g. https://blr1.digitaloceanspaces.com or a MinIO URL
	PublicURL       string `yaml:"public_url,omitempty"` // CDN or bucket base URL objects are served from
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
}

// Enabled reports whether uploads can be stored
func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

// MailConfig configures outgoing email. Delivery is never performed; when
// Enabled is false the mailer only logs what it would have sent.
type MailConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	From    string `yaml:"from,omitempty"`
}

// Config represents the server configuration loaded from a YAML file and
// overlaid with environment variables.
type Config struct {
	Port          int    `yaml:"port,omitempty"`
	DatabaseURL   string `yaml:"database_url,omitempty"`
	RedisURL      string `yaml:"redis_url,omitempty"` // empty disables the job list cache
	LogLevel      string `yaml:"log_level,omitempty"`
	LogFormat     string `yaml:"log_format,omitempty"`
	PublicBaseURL string `yaml:"public_base_url,omitempty"` // used for canonical URLs in page metadata
	CORSOrigin    string `yaml:"cors_origin,omitempty"`

	Storage StorageConfig `yaml:"storage,omitempty"`
	Mail    MailConfig    `yaml:"mail,omitempty"`
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		Port:          DefaultPort,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		PublicBaseURL: DefaultPublicBaseURL,
		CORSOrigin:    DefaultCORSOrigin,
		Mail:          MailConfig{From: DefaultMailFrom},
	}
}

// LoadConfig loads configuration from a YAML file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return &cfg, nil
}

// Load builds the effective configuration: the optional file at path,
// overlaid with the environment, then filled from Defaults and validated.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// ApplyEnv overrides fields with the environment variables that are set.
// lookup has the signature of os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %v", err)
		}
		c.Port = port
	}
	str("DATABASE_URL", &c.DatabaseURL)
	str("REDIS_URL", &c.RedisURL)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("PUBLIC_BASE_URL", &c.PublicBaseURL)
	str("CORS_ORIGIN", &c.CORSOrigin)

	str("STORAGE_BUCKET", &c.Storage.Bucket)
	str("STORAGE_REGION", &c.Storage.Region)
	str("STORAGE_ENDPOINT", &c.Storage.Endpoint)
	str("STORAGE_PUBLIC_URL", &c.Storage.PublicURL)
	str("STORAGE_ACCESS_KEY_ID", &c.Storage.AccessKeyID)
	str("STORAGE_SECRET_ACCESS_KEY", &c.Storage.SecretAccessKey)

	if v, ok := lookup("MAIL_ENABLED"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid MAIL_ENABLED: %v", err)
		}
		c.Mail.Enabled = enabled
	}
	str("MAIL_FROM", &c.Mail.From)
	return nil
}

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("config error: 'database_url' is required (or set DATABASE_URL)")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config error: unknown log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config error: unknown log format %q", c.LogFormat)
	}

	if c.Storage.Enabled() && c.Storage.Region == "" {
		return fmt.Errorf("config error: 'storage.region' is required when 'storage.bucket' is set")
	}
	if !c.Storage.Enabled() && (c.Storage.Endpoint != "" || c.Storage.AccessKeyID != "") {
		return fmt.Errorf("config error: 'storage.bucket' is required when storage credentials are set")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.PublicBaseURL == "" {
		result.PublicBaseURL = defaults.PublicBaseURL
	}
	if result.CORSOrigin == "" {
		result.CORSOrigin = defaults.CORSOrigin
	}
	if result.Storage == (StorageConfig{}) {
		result.Storage = defaults.Storage
	}
	if result.Mail.From == "" {
		result.Mail.From = defaults.Mail.From
	}

	// Mail.Enabled is a bool and cannot be told apart from unset, so it is not merged

	return result
}
