package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"searchtool/internal/domain"
)

// Default provider endpoints.
const (
	DefaultWebURL  = "https://google.serper.dev/search"
	DefaultNewsURL = "https://google.serper.dev/news"
)

// Config is the top-level application configuration.
type Config struct {
	Search SearchConfig `yaml:"search"`
	Server ServerConfig `yaml:"server"`
	Logger LoggerConfig `yaml:"logger"`
	Tracer TracerConfig `yaml:"tracer"`
}

// SearchConfig holds the provider client settings. It is loaded once and
// copied into the client, which never mutates it.
type SearchConfig struct {
	APIKey         string        `yaml:"api_key"`
	WebURL         string        `yaml:"web_url"`
	NewsURL        string        `yaml:"news_url"`
	Timeout        time.Duration `yaml:"timeout"`         // per attempt
	TopN           int           `yaml:"top_n"`           // max formatted entries
	MaxAttempts    int           `yaml:"max_attempts"`    // including the first
	InitialBackoff time.Duration `yaml:"initial_backoff"` // doubles per retry
	Pool           PoolConfig    `yaml:"pool"`
}

// PoolConfig tunes HTTP connection pooling. Zero values use defaults.
type PoolConfig struct {
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Name       string  `yaml:"name"`
	RatePerSec float64 `yaml:"rate_per_sec"` // 0 = unlimited
	Burst      int     `yaml:"burst"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// Defaults returns a Config populated with default values.
func Defaults() *Config {
	return &Config{
		Search: SearchConfig{
			WebURL:         DefaultWebURL,
			NewsURL:        DefaultNewsURL,
			Timeout:        15 * time.Second,
			TopN:           4,
			MaxAttempts:    3,
			InitialBackoff: time.Second,
		},
		Server: ServerConfig{
			Name:  "searchtool",
			Burst: 1,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
	}
}

// Load reads a YAML config file, applies env var overrides, decrypts secrets
// and validates the result. A missing file is not an error: defaults plus
// environment are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("%w: resolve config path: %v", domain.ErrConfigLoad, err)
		}
		if err := validatePermissions(absPath); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse config: %v", domain.ErrConfigLoad, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("%w: read config: %v", domain.ErrConfigLoad, err)
	}

	ApplyEnvOverrides(cfg)

	if passphrase := os.Getenv("SEARCHTOOL_CONFIG_KEY"); passphrase != "" {
		if err := decryptSecrets(cfg, passphrase); err != nil {
			return nil, fmt.Errorf("decrypt secrets: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides maps SEARCHTOOL_* env vars (and SERPER_API_KEY) to
// config fields. Unparseable numeric values are ignored.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERPER_API_KEY"); v != "" {
		cfg.Search.APIKey = v
	}
	if v := os.Getenv("SEARCHTOOL_SEARCH_API_KEY"); v != "" {
		cfg.Search.APIKey = v
	}
	if v := os.Getenv("SEARCHTOOL_SEARCH_WEB_URL"); v != "" {
		cfg.Search.WebURL = v
	}
	if v := os.Getenv("SEARCHTOOL_SEARCH_NEWS_URL"); v != "" {
		cfg.Search.NewsURL = v
	}
	if v := os.Getenv("SEARCHTOOL_SEARCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Search.Timeout = d
		}
	}
	if v := os.Getenv("SEARCHTOOL_SEARCH_TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.TopN = n
		}
	}
	if v := os.Getenv("SEARCHTOOL_SEARCH_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.MaxAttempts = n
		}
	}
	if v := os.Getenv("SEARCHTOOL_SEARCH_INITIAL_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Search.InitialBackoff = d
		}
	}
	if v := os.Getenv("SEARCHTOOL_SERVER_RATE_PER_SEC"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Server.RatePerSec = f
		}
	}
	if v := os.Getenv("SEARCHTOOL_SERVER_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Burst = n
		}
	}
	if v := os.Getenv("SEARCHTOOL_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("SEARCHTOOL_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("SEARCHTOOL_LOGGER_OUTPUT"); v != "" {
		cfg.Logger.Output = v
	}
	if v := os.Getenv("SEARCHTOOL_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("SEARCHTOOL_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
}

// decryptSecrets replaces "enc:"-prefixed secrets with their plaintext.
func decryptSecrets(cfg *Config, passphrase string) error {
	if !strings.HasPrefix(cfg.Search.APIKey, "enc:") {
		return nil
	}
	decrypted, err := DecryptValue(strings.TrimPrefix(cfg.Search.APIKey, "enc:"), passphrase)
	if err != nil {
		return domain.NewDomainError("Config.Decrypt", fmt.Errorf("%w: %v", domain.ErrDecryption, err), "search.api_key")
	}
	cfg.Search.APIKey = decrypted
	return nil
}

// validatePermissions checks the config file has restrictive permissions.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	// Allow 0600 and 0644 (readable by others but not writable)
	if mode&0o077 > 0o044 {
		return fmt.Errorf("%w: config file %s has insecure permissions %o (want 0600 or 0644)", domain.ErrConfigLoad, path, mode)
	}
	return nil
}
