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

// Config holds the voterquery API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Index    IndexConfig    `yaml:"index"`
	Provider ProviderConfig `yaml:"provider"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
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

// DatasetConfig holds source dump and ingestion settings.
type DatasetConfig struct {
	DumpPath       string  `yaml:"dump_path"`
	EmbedBatchSize int     `yaml:"embed_batch_size"`
	MaxSkipRatio   float64 `yaml:"max_skip_ratio"`
}

// IndexConfig holds vector index settings.
type IndexConfig struct {
	Driver           string   `yaml:"driver"` // memory, redis (default: memory)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	HNSWM            int      `yaml:"hnsw_m"`
	HNSWEFConstruct  int      `yaml:"hnsw_ef_construction"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`

	OpTimeoutSec int         `yaml:"op_timeout_sec"`
	Retry        RetryConfig `yaml:"retry"`
}

// ProviderConfig holds embedding and generation provider settings.
type ProviderConfig struct {
	APIKey          string      `yaml:"api_key"`
	BaseURL         string      `yaml:"base_url"`
	EmbeddingModel  string      `yaml:"embedding_model"`
	ChatModel       string      `yaml:"chat_model"`
	Temperature     float32     `yaml:"temperature"`
	Dimensions      int         `yaml:"dimensions"`
	EmbedTimeoutSec int         `yaml:"embed_timeout_sec"`
	ChatTimeoutSec  int         `yaml:"chat_timeout_sec"`
	Retry           RetryConfig `yaml:"retry"`
}

// RetryConfig holds retry settings for an external dependency.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms"`
}

// PipelineConfig holds retrieval and assembly settings.
type PipelineConfig struct {
	TopK              int     `yaml:"top_k"`
	MaxListSize       int     `yaml:"max_list_size"`
	CharBudget        int     `yaml:"char_budget"`
	PhoneticThreshold float64 `yaml:"phonetic_threshold"`
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
		// Generation calls can take tens of seconds end to end.
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Dataset.EmbedBatchSize <= 0 {
		c.Dataset.EmbedBatchSize = 64
	}
	if c.Dataset.MaxSkipRatio <= 0 {
		c.Dataset.MaxSkipRatio = 0.2
	}
	if c.Index.Driver == "" {
		c.Index.Driver = "memory"
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "voterquery"
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Index.ReadinessTimeout <= 0 {
		c.Index.ReadinessTimeout = 10
	}
	if c.Provider.Dimensions <= 0 {
		// text-embedding-3-small native dimensionality.
		c.Provider.Dimensions = 1536
	}
	if c.Pipeline.TopK <= 0 {
		c.Pipeline.TopK = 5
	}
	if c.Pipeline.MaxListSize <= 0 {
		c.Pipeline.MaxListSize = 50
	}
	if c.Pipeline.CharBudget <= 0 {
		c.Pipeline.CharBudget = 4000
	}
	if c.Pipeline.PhoneticThreshold <= 0 {
		c.Pipeline.PhoneticThreshold = 0.6
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Dataset.DumpPath == "" {
		return fmt.Errorf("dataset.dump_path is required")
	}
	if c.Dataset.MaxSkipRatio > 1 {
		return fmt.Errorf("dataset.max_skip_ratio must be at most 1, got %g", c.Dataset.MaxSkipRatio)
	}
	switch c.Index.Driver {
	case "memory":
		// no backend to configure
	case "redis":
		if len(c.Index.Addrs) == 0 {
			return fmt.Errorf("index.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("index.driver must be \"memory\" or \"redis\", got %q", c.Index.Driver)
	}
	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		return fmt.Errorf("provider.temperature must be between 0 and 2, got %g", c.Provider.Temperature)
	}
	if c.Pipeline.PhoneticThreshold > 1 {
		return fmt.Errorf("pipeline.phonetic_threshold must be at most 1, got %g", c.Pipeline.PhoneticThreshold)
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
