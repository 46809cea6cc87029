package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Feeds         []Feed        `yaml:"feeds"`
	Storage       Storage       `yaml:"storage"`
	Ledger        Ledger        `yaml:"ledger"`
	Summarization Summarization `yaml:"summarization"`
	Fetch         Fetch         `yaml:"fetch"`
	Publish       Publish       `yaml:"publish"`
	Pipeline      Pipeline      `yaml:"pipeline"`
	Server        Server        `yaml:"server"`
	Logging       Logging       `yaml:"logging"`
}

// Feed is a seed entry imported into the feed registry by `feeds import`.
type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type Storage struct {
	Driver  string `yaml:"driver"` // sqlite or postgres
	DSN     string `yaml:"dsn"`
	DataDir string `yaml:"data_dir"`
}

type Ledger struct {
	Backend  string `yaml:"backend"` // database or redis
	RedisURL string `yaml:"redis_url"`
	Key      string `yaml:"key"`
}

type Summarization struct {
	Provider        string        `yaml:"provider"`
	Model           string        `yaml:"model"`
	OllamaURL       string        `yaml:"ollama_url"`
	OpenAIModel     string        `yaml:"openai_model"`
	APIKeyEnv       string        `yaml:"api_key_env"`
	AnthropicModel  string        `yaml:"anthropic_model"`
	AnthropicKeyEnv string        `yaml:"anthropic_key_env"`
	MaxTokens       int           `yaml:"max_tokens"`
	MinLength       int           `yaml:"min_length"`
	MaxLength       int           `yaml:"max_length"`
	Timeout         time.Duration `yaml:"timeout"`
}

type Fetch struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	MaxItems  int           `yaml:"max_items"`
	FullText  bool          `yaml:"full_text"`
}

type Publish struct {
	Status         string        `yaml:"status"`
	Timeout        time.Duration `yaml:"timeout"`
	RenderMarkdown bool          `yaml:"render_markdown"`
}

type Pipeline struct {
	MinBodyLength int `yaml:"min_body_length"`
}

type Server struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type Logging struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConfigDir returns the XDG config directory for feedpress.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "feedpress")
}

// DataDir returns the XDG data directory for feedpress.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "feedpress")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/feedpress/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'feedpress init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// Default returns the configuration used when no file overrides anything.
func Default() *Config {
	return &Config{
		Storage: Storage{Driver: "sqlite"},
		Ledger:  Ledger{Backend: "database", Key: "feedpress:processed"},
		Summarization: Summarization{
			Provider:        "ollama",
			Model:           "qwen2.5:7b",
			OllamaURL:       "http://localhost:11434",
			OpenAIModel:     "gpt-4o-mini",
			APIKeyEnv:       "OPENAI_API_KEY",
			AnthropicModel:  "claude-haiku-4-5",
			AnthropicKeyEnv: "ANTHROPIC_API_KEY",
			MaxTokens:       512,
			MinLength:       200,
			MaxLength:       10000,
			Timeout:         120 * time.Second,
		},
		Fetch: Fetch{
			Timeout:   20 * time.Second,
			UserAgent: "FeedPress/1.0 (feed summarizer)",
			MaxItems:  50,
		},
		Publish: Publish{
			Status:         "publish",
			Timeout:        30 * time.Second,
			RenderMarkdown: true,
		},
		Pipeline: Pipeline{MinBodyLength: 50},
		Server:   Server{Port: 8000},
		Logging:  Logging{Level: "INFO"},
	}
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("storage.driver: unsupported driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required for postgres")
	}

	switch c.Ledger.Backend {
	case "database":
	case "redis":
		if c.Ledger.RedisURL == "" {
			return fmt.Errorf("ledger.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("ledger.backend: unsupported backend %q", c.Ledger.Backend)
	}

	switch c.Publish.Status {
	case "publish", "draft", "pending":
	default:
		return fmt.Errorf("publish.status: must be publish, draft or pending, got %q", c.Publish.Status)
	}
	return nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir
	}
	return DataDir()
}

// DatabaseDSN returns the DSN for the configured driver. SQLite falls back to
// a file in the data directory.
func (c *Config) DatabaseDSN() string {
	if c.Storage.DSN != "" {
		return c.Storage.DSN
	}
	return filepath.Join(c.GetDataDir(), "feedpress.db")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
