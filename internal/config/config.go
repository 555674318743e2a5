// Package config resolves tool settings from defaults, an optional YAML
// file, and AUTODOCS_* environment variables, in that order. Command-line
// flags are applied by the caller afterwards and take final precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is consulted when no --config flag is given.
const DefaultFile = "autodocs.yaml"

type Config struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`

	Concurrency       int      `yaml:"concurrency"`
	MaxAttempts       int      `yaml:"max_attempts"`
	BaseDelay         Duration `yaml:"base_delay"`
	AttemptTimeout    Duration `yaml:"attempt_timeout"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	Burst             int      `yaml:"burst"`
	HeaviestFirst     bool     `yaml:"heaviest_first"`

	ReportsDir string `yaml:"reports_dir"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`

	Cache    CacheConfig    `yaml:"cache"`
	Artifact ArtifactConfig `yaml:"artifact"`
}

type CacheConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Dir        string   `yaml:"dir"`
	TTL        Duration `yaml:"ttl"`
	MaxEntries int      `yaml:"max_entries"`
}

// ArtifactConfig selects optional artifact mirrors. The primary store is
// implied by the run mode (output directory vs in place), never configured.
type ArtifactConfig struct {
	Mirrors     []string `yaml:"mirrors"`
	S3          S3Config `yaml:"s3"`
	PostgresDSN string   `yaml:"postgres_dsn"`
	SQLitePath  string   `yaml:"sqlite_path"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// CanUse reports whether enough S3 settings are present to build a client.
func (s S3Config) CanUse() bool {
	return strings.TrimSpace(s.Endpoint) != "" &&
		strings.TrimSpace(s.AccessKey) != "" &&
		strings.TrimSpace(s.SecretKey) != "" &&
		strings.TrimSpace(s.Bucket) != ""
}

func Default() *Config {
	return &Config{
		Provider:       "gemini",
		Concurrency:    6,
		MaxAttempts:    5,
		BaseDelay:      Duration(60 * time.Second),
		AttemptTimeout: Duration(2 * time.Minute),
		Burst:          1,
		ReportsDir:     ".",
		LogLevel:       "info",
		LogFormat:      "text",
		Cache: CacheConfig{
			MaxEntries: 1024,
		},
		Artifact: ArtifactConfig{
			S3: S3Config{Region: "us-east-1"},
		},
	}
}

// Load builds the effective configuration. A named file must exist; the
// default file is merged only when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultFile
	}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case explicit:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnv(cfg)
	cfg.normalize()
	return cfg, nil
}

func applyEnv(cfg *Config) {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
			*dst = v
		}
	}
	dur := func(key string, dst *Duration) {
		if v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil {
			*dst = Duration(v)
		}
	}

	str("AUTODOCS_PROVIDER", &cfg.Provider)
	str("AUTODOCS_MODEL", &cfg.Model)
	str("AUTODOCS_API_KEY", &cfg.APIKey)
	str("AUTODOCS_BASE_URL", &cfg.BaseURL)
	num("AUTODOCS_CONCURRENCY", &cfg.Concurrency)
	num("AUTODOCS_MAX_ATTEMPTS", &cfg.MaxAttempts)
	dur("AUTODOCS_BASE_DELAY", &cfg.BaseDelay)
	dur("AUTODOCS_ATTEMPT_TIMEOUT", &cfg.AttemptTimeout)
	if v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv("AUTODOCS_RPS")), 64); err == nil {
		cfg.RequestsPerSecond = v
	}
	num("AUTODOCS_BURST", &cfg.Burst)
	boolean("AUTODOCS_HEAVIEST_FIRST", &cfg.HeaviestFirst)
	str("AUTODOCS_REPORTS_DIR", &cfg.ReportsDir)
	str("AUTODOCS_LOG_LEVEL", &cfg.LogLevel)
	str("AUTODOCS_LOG_FORMAT", &cfg.LogFormat)

	boolean("AUTODOCS_CACHE_ENABLED", &cfg.Cache.Enabled)
	str("AUTODOCS_CACHE_DIR", &cfg.Cache.Dir)
	dur("AUTODOCS_CACHE_TTL", &cfg.Cache.TTL)
	num("AUTODOCS_CACHE_MAX_ENTRIES", &cfg.Cache.MaxEntries)

	if v := strings.TrimSpace(os.Getenv("AUTODOCS_MIRRORS")); v != "" {
		cfg.Artifact.Mirrors = splitList(v)
	}
	str("AUTODOCS_S3_ENDPOINT", &cfg.Artifact.S3.Endpoint)
	str("AUTODOCS_S3_REGION", &cfg.Artifact.S3.Region)
	cfg.Artifact.S3.AccessKey = firstNonEmpty(
		strings.TrimSpace(os.Getenv("AUTODOCS_S3_ACCESS_KEY")),
		strings.TrimSpace(os.Getenv("MINIO_ROOT_USER")),
		cfg.Artifact.S3.AccessKey,
	)
	cfg.Artifact.S3.SecretKey = firstNonEmpty(
		strings.TrimSpace(os.Getenv("AUTODOCS_S3_SECRET_KEY")),
		strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD")),
		cfg.Artifact.S3.SecretKey,
	)
	str("AUTODOCS_S3_BUCKET", &cfg.Artifact.S3.Bucket)
	boolean("AUTODOCS_S3_USE_SSL", &cfg.Artifact.S3.UseSSL)
	str("AUTODOCS_POSTGRES_DSN", &cfg.Artifact.PostgresDSN)
	str("AUTODOCS_SQLITE_PATH", &cfg.Artifact.SQLitePath)
}

func (c *Config) normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Concurrency <= 0 {
		c.Concurrency = 6
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = Duration(60 * time.Second)
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = Duration(2 * time.Minute)
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if strings.TrimSpace(c.ReportsDir) == "" {
		c.ReportsDir = "."
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = 1024
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat != "json" {
		c.LogFormat = "text"
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
