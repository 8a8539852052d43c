package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the facetd API configuration.
type Config struct {
	HTTP    HTTPConfig             `yaml:"http"`
	Engine  EngineConfig           `yaml:"engine"`
	Cache   CacheConfig            `yaml:"cache"`
	Auth    AuthConfig             `yaml:"auth"`
	Search  SearchConfig           `yaml:"search"`
	Export  ExportConfig           `yaml:"export"`
	Logging LoggingConfig          `yaml:"logging"`
	Facets  map[string]FacetConfig `yaml:"facets"`
}

// LoggingConfig holds logging settings. When File is set, log lines are
// additionally written to a rotating file.
type LoggingConfig struct {
	Level      string `yaml:"level"` // debug, info, warn, error (default: determined by env)
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// EngineConfig holds search engine connection settings.
type EngineConfig struct {
	BaseURL          string `yaml:"base_url"`
	Index            string `yaml:"index"`
	TimeoutSec       int    `yaml:"timeout_sec"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds suggestion cache settings. Caching is disabled when
// no addresses are configured.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether the suggestion cache is configured.
func (c CacheConfig) Enabled() bool { return len(c.Addrs) > 0 }

// SearchConfig holds pagination settings.
type SearchConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// ExportConfig holds CSV export settings.
type ExportConfig struct {
	Columns []string `yaml:"columns"` // default columns when a request names none
}

// FacetConfig describes one filterable field.
type FacetConfig struct {
	Field string       `yaml:"field"`
	Kind  string       `yaml:"kind"`  // terms, dates, query
	Order string       `yaml:"order"` // key_asc, count_desc (terms only)
	Extra *ExtraClause `yaml:"extra"`
}

// ExtraClause is a fixed narrowing clause attached to a facet. Exactly
// one variant must be set.
type ExtraClause struct {
	Term  *TermClause  `yaml:"term"`
	Range *RangeClause `yaml:"range"`
}

// TermClause is an exact-match narrowing clause.
type TermClause struct {
	Field string `yaml:"field"`
	Value string `yaml:"value"`
}

// RangeClause is a range narrowing clause.
type RangeClause struct {
	Field  string `yaml:"field"`
	GTE    string `yaml:"gte"`
	LTE    string `yaml:"lte"`
	Format string `yaml:"format"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Export responses can stream for a while.
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Engine.TimeoutSec <= 0 {
		c.Engine.TimeoutSec = 30
	}
	if c.Engine.ReadinessTimeout <= 0 {
		c.Engine.ReadinessTimeout = 10
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 30
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 20
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = 100
	}
	if c.Logging.MaxBackups <= 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAgeDays <= 0 {
		c.Logging.MaxAgeDays = 28
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Engine.BaseURL == "" {
		return fmt.Errorf("engine.base_url is required")
	}
	if c.Engine.Index == "" {
		return fmt.Errorf("engine.index is required")
	}
	if len(c.Facets) == 0 {
		return fmt.Errorf("at least one facet must be configured")
	}
	for name, f := range c.Facets {
		if err := f.validate(); err != nil {
			return fmt.Errorf("facets.%s: %w", name, err)
		}
	}
	return nil
}

func (f FacetConfig) validate() error {
	if f.Field == "" {
		return fmt.Errorf("field is required")
	}
	switch f.Kind {
	case "terms", "dates", "query":
	default:
		return fmt.Errorf("kind must be terms, dates or query, got %q", f.Kind)
	}
	switch f.Order {
	case "", "key_asc", "count_desc":
	default:
		return fmt.Errorf("order must be key_asc or count_desc, got %q", f.Order)
	}
	if f.Extra != nil {
		if (f.Extra.Term == nil) == (f.Extra.Range == nil) {
			return fmt.Errorf("extra must set exactly one of term or range")
		}
		if f.Extra.Term != nil && (f.Extra.Term.Field == "" || f.Extra.Term.Value == "") {
			return fmt.Errorf("extra.term requires field and value")
		}
		if f.Extra.Range != nil && f.Extra.Range.Field == "" {
			return fmt.Errorf("extra.range requires field")
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
