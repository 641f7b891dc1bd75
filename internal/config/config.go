package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	VaultAddr      string `mapstructure:"vault_addr"`
	VaultToken     string `mapstructure:"vault_token"`
	VaultNamespace string `mapstructure:"vault_namespace"`
	KVVersion      int    `mapstructure:"vault_kv_version"`

	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	TLSSkipVerify      bool          `mapstructure:"tls_skip_verify"`
	TLSCACertFile      string        `mapstructure:"tls_ca_cert_file"`
	TLSCACertPEM       []byte        `mapstructure:"-" json:"-"`

	MaxRetries      int           `mapstructure:"max_retries"`
	RetryIntervalMs int64         `mapstructure:"retry_interval_ms"`
	RetryInterval   time.Duration `mapstructure:"-"`

	CacheType            string        `mapstructure:"cache_type"`
	CachePath            string        `mapstructure:"cache_path"`
	CacheTTLSeconds      int64         `mapstructure:"cache_ttl_seconds"`
	CacheCleanupSeconds  int64         `mapstructure:"cache_cleanup_interval_seconds"`
	CacheTTL             time.Duration `mapstructure:"-"`
	CacheCleanupInterval time.Duration `mapstructure:"-"`

	AuditSinksFile string `mapstructure:"audit_sinks_file"`
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.VaultToken != "" {
		c.VaultToken = "***"
	}
	c.TLSCACertPEM = nil
	return c
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "vault-rest")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("vault_addr", "http://127.0.0.1:8200")
	v.SetDefault("vault_token", "")
	v.SetDefault("vault_namespace", "")
	v.SetDefault("vault_kv_version", 2)
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("tls_skip_verify", false)
	v.SetDefault("tls_ca_cert_file", "")
	v.SetDefault("max_retries", 0)
	v.SetDefault("retry_interval_ms", 1000)
	v.SetDefault("cache_type", "none")
	v.SetDefault("cache_path", "./data/secrets-cache.db")
	v.SetDefault("cache_ttl_seconds", 300)
	v.SetDefault("cache_cleanup_interval_seconds", int64((10*time.Minute)/time.Second))
	v.SetDefault("audit_sinks_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize validates raw values and derives durations.
func (c *Config) normalize() error {
	c.VaultAddr = strings.TrimRight(strings.TrimSpace(c.VaultAddr), "/")
	if c.VaultAddr == "" {
		return fmt.Errorf("invalid vault_addr (must not be empty)")
	}
	if c.KVVersion != 1 && c.KVVersion != 2 {
		return fmt.Errorf("invalid vault_kv_version %d (must be 1 or 2)", c.KVVersion)
	}

	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	c.HTTPTimeout = time.Duration(c.HTTPTimeoutSeconds) * time.Second

	if c.MaxRetries < 0 {
		return fmt.Errorf("invalid max_retries (must not be negative)")
	}
	if c.RetryIntervalMs < 0 {
		return fmt.Errorf("invalid retry_interval_ms (must not be negative)")
	}
	c.RetryInterval = time.Duration(c.RetryIntervalMs) * time.Millisecond

	if c.CacheTTLSeconds <= 0 {
		return fmt.Errorf("invalid cache_ttl_seconds (must be positive seconds)")
	}
	if c.CacheCleanupSeconds <= 0 {
		return fmt.Errorf("invalid cache_cleanup_interval_seconds (must be positive seconds)")
	}
	c.CacheTTL = time.Duration(c.CacheTTLSeconds) * time.Second
	c.CacheCleanupInterval = time.Duration(c.CacheCleanupSeconds) * time.Second

	if path := strings.TrimSpace(c.TLSCACertFile); path != "" {
		pem, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read tls_ca_cert_file: %w", err)
		}
		c.TLSCACertPEM = pem
	}
	return nil
}
