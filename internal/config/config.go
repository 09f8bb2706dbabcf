package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type RetryConfig struct {
	MaxRetries        int `toml:"max_retries"`
	InitialIntervalMs int `toml:"initial_interval_ms"`
	MaxIntervalMs     int `toml:"max_interval_ms"`
}

type LLMConfig struct {
	Provider  string      `toml:"provider"`
	Model     string      `toml:"model"`
	APIKey    string      `toml:"api_key"`
	BaseURL   string      `toml:"base_url"`
	MaxTokens int         `toml:"max_tokens"`
	Retry     RetryConfig `toml:"retry"`
}

type ExtractionConfig struct {
	MaxChars            int    `toml:"max_chars"`
	ChunkConcurrency    int    `toml:"chunk_concurrency"`
	ChunkTimeoutSeconds int    `toml:"chunk_timeout_seconds"`
	Prompt              string `toml:"prompt"`
}

type LinkingConfig struct {
	DefaultConfidence string `toml:"default_confidence"`
}

type RedactionConfig struct {
	DarkThreshold int     `toml:"dark_threshold"`
	MinDarkRatio  float64 `toml:"min_dark_ratio"`
	// ImageRoot confines page image directories named in HTTP requests.
	// Empty disables image_dir over HTTP.
	ImageRoot     string `toml:"image_root"`
	MaxPagePixels int    `toml:"max_page_pixels"`
}

type CommunityConfig struct {
	Algorithm string `toml:"algorithm"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type StoreConfig struct {
	SQLitePath string `toml:"sqlite_path"`
}

type ConcurrencyConfig struct {
	BulkIngest int `toml:"bulk_ingest"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type Config struct {
	LLM         LLMConfig         `toml:"llm"`
	Extraction  ExtractionConfig  `toml:"extraction"`
	Linking     LinkingConfig     `toml:"linking"`
	Redaction   RedactionConfig   `toml:"redaction"`
	Community   CommunityConfig   `toml:"community"`
	Memgraph    MemgraphConfig    `toml:"memgraph"`
	Store       StoreConfig       `toml:"store"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
	Logging     LoggingConfig     `toml:"logging"`
	Server      ServerConfig      `toml:"server"`
}

var knownProviders = map[string]bool{
	"anthropic": true,
	"claude":    true,
	"openai":    true,
	"ollama":    true,
	"gemini":    true,
	"stub":      true,
}

var knownAlgorithms = map[string]bool{
	"label_propagation": true,
	"components":        true,
}

var knownLevels = map[string]bool{
	"confirmed":  true,
	"probable":   true,
	"possible":   true,
	"unresolved": true,
}

// Default returns a configuration that runs without a file or network.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  "stub",
			MaxTokens: 4096,
			Retry: RetryConfig{
				MaxRetries:        2,
				InitialIntervalMs: 500,
				MaxIntervalMs:     10000,
			},
		},
		Extraction: ExtractionConfig{
			MaxChars:            8000,
			ChunkConcurrency:    4,
			ChunkTimeoutSeconds: 90,
		},
		Linking: LinkingConfig{
			DefaultConfidence: "probable",
		},
		Redaction: RedactionConfig{
			DarkThreshold: 30,
			MinDarkRatio:  0.01,
			MaxPagePixels: 64_000_000,
		},
		Community: CommunityConfig{
			Algorithm: "label_propagation",
		},
		Concurrency: ConcurrencyConfig{
			BulkIngest: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Port: "8080",
		},
	}
}

// Load decodes the TOML file at path on top of Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file values with environment variables when set.
func (c *Config) ApplyEnv() {
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.Memgraph.URI, "MEMGRAPH_URI")
	setString(&c.Memgraph.User, "MEMGRAPH_USER")
	setString(&c.Memgraph.Password, "MEMGRAPH_PASSWORD")
	setString(&c.Store.SQLitePath, "SQLITE_PATH")
	setString(&c.Redaction.ImageRoot, "REDACTION_IMAGE_ROOT")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
	setString(&c.Server.Port, "PORT")

	if v := os.Getenv("EXTRACTION_MAX_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Extraction.MaxChars = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate rejects configurations that cannot produce a working pipeline.
func (c *Config) Validate() error {
	provider := strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if !knownProviders[provider] {
		return fmt.Errorf("unsupported llm provider: %q", c.LLM.Provider)
	}
	if c.Extraction.MaxChars <= 0 {
		return fmt.Errorf("extraction.max_chars must be positive, got %d", c.Extraction.MaxChars)
	}
	if c.Extraction.ChunkConcurrency < 0 {
		return fmt.Errorf("extraction.chunk_concurrency must not be negative, got %d", c.Extraction.ChunkConcurrency)
	}
	if !knownLevels[strings.ToLower(c.Linking.DefaultConfidence)] {
		return fmt.Errorf("unknown linking.default_confidence: %q", c.Linking.DefaultConfidence)
	}
	if c.Redaction.DarkThreshold < 0 || c.Redaction.DarkThreshold > 255 {
		return fmt.Errorf("redaction.dark_threshold must be within 0..255, got %d", c.Redaction.DarkThreshold)
	}
	if c.Redaction.MaxPagePixels < 0 {
		return fmt.Errorf("redaction.max_page_pixels must not be negative, got %d", c.Redaction.MaxPagePixels)
	}
	if c.Community.Algorithm != "" && !knownAlgorithms[strings.ToLower(c.Community.Algorithm)] {
		return fmt.Errorf("unknown community.algorithm: %q", c.Community.Algorithm)
	}
	return nil
}

func (c ExtractionConfig) ChunkTimeout() time.Duration {
	return time.Duration(c.ChunkTimeoutSeconds) * time.Second
}

func (c RetryConfig) InitialInterval() time.Duration {
	return time.Duration(c.InitialIntervalMs) * time.Millisecond
}

func (c RetryConfig) MaxInterval() time.Duration {
	return time.Duration(c.MaxIntervalMs) * time.Millisecond
}
