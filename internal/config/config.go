package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the parley configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Client  ClientConfig  `yaml:"client"`
	Search  SearchConfig  `yaml:"search"`
	Suggest SuggestConfig `yaml:"suggest"`
	AI      AIConfig      `yaml:"ai"`
	Storage StorageConfig `yaml:"storage"`
}

// ServerConfig holds daemon settings.
type ServerConfig struct {
	Host     string `yaml:"host"`      // Bind address
	Port     int    `yaml:"port"`      // Listen port
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
	LogFile  string `yaml:"log_file"`  // Log file path (empty = stderr)
}

// ClientConfig holds TUI client settings.
type ClientConfig struct {
	ServerURL        string `yaml:"server_url"`         // Daemon base URL (empty = derive from server host/port)
	RequestTimeoutMs int    `yaml:"request_timeout_ms"` // Per-request HTTP timeout
	Offline          bool   `yaml:"offline"`            // Use synthetic backends, no daemon
}

// SearchConfig tunes the message search overlay.
type SearchConfig struct {
	MinChars   int `yaml:"min_chars"`   // Query gate before any lookup
	DebounceMs int `yaml:"debounce_ms"` // Quiet period before dispatch
	MaxResults int `yaml:"max_results"` // Cap on published results
}

// SuggestConfig tunes the suggestion box.
type SuggestConfig struct {
	MinChars   int  `yaml:"min_chars"`
	DebounceMs int  `yaml:"debounce_ms"`
	MaxResults int  `yaml:"max_results"`
	UseAI      bool `yaml:"use_ai"` // Include AI completions in the merge
}

// AIConfig holds AI provider settings.
type AIConfig struct {
	Provider string `yaml:"provider"` // openai, scripted, or auto
	Model    string `yaml:"model"`    // Provider-specific model
	BaseURL  string `yaml:"base_url"` // Override endpoint (local inference servers)
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"` // SQLite path (empty = default from paths)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "127.0.0.1",
			Port:     7483,
			LogLevel: "info",
			LogFile:  "",
		},
		Client: ClientConfig{
			ServerURL:        "",
			RequestTimeoutMs: 2000,
			Offline:          false,
		},
		Search: SearchConfig{
			MinChars:   2,
			DebounceMs: 300,
			MaxResults: 20,
		},
		Suggest: SuggestConfig{
			MinChars:   3,
			DebounceMs: 500,
			MaxResults: 5,
			UseAI:      true,
		},
		AI: AIConfig{
			Provider: "auto",
			Model:    "",
			BaseURL:  "",
		},
		Storage: StorageConfig{
			DatabasePath: "",
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ServerAddr returns the daemon listen address.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ClientBaseURL returns the URL the client should talk to.
func (c *Config) ClientBaseURL() string {
	if c.Client.ServerURL != "" {
		return c.Client.ServerURL
	}
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}

// DatabasePath returns the configured SQLite path, or the default.
func (c *Config) DatabasePath() string {
	if c.Storage.DatabasePath != "" {
		return c.Storage.DatabasePath
	}
	return DefaultPaths().DatabaseFile()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535] (got: %d)", c.Server.Port)
	}

	if !isValidLogLevel(c.Server.LogLevel) {
		return fmt.Errorf("server.log_level must be debug, info, warn, or error (got: %s)", c.Server.LogLevel)
	}

	if c.Client.RequestTimeoutMs < 1 {
		return errors.New("client.request_timeout_ms must be >= 1")
	}

	if !isValidProvider(c.AI.Provider) {
		return fmt.Errorf("ai.provider must be openai, scripted, or auto (got: %s)", c.AI.Provider)
	}

	for _, q := range []struct {
		name       string
		minChars   int
		debounceMs int
		maxResults int
	}{
		{"search", c.Search.MinChars, c.Search.DebounceMs, c.Search.MaxResults},
		{"suggest", c.Suggest.MinChars, c.Suggest.DebounceMs, c.Suggest.MaxResults},
	} {
		if q.minChars < 1 {
			return fmt.Errorf("%s.min_chars must be >= 1", q.name)
		}
		if q.debounceMs < 1 {
			return fmt.Errorf("%s.debounce_ms must be >= 1", q.name)
		}
		if q.maxResults < 1 {
			return fmt.Errorf("%s.max_results must be >= 1", q.name)
		}
	}

	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func isValidProvider(provider string) bool {
	switch provider {
	case "openai", "scripted", "auto":
		return true
	default:
		return false
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Environment variables override config file values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PARLEY_SERVER_URL"); v != "" {
		c.Client.ServerURL = v
	}
	if v := os.Getenv("PARLEY_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("PARLEY_DB_PATH"); v != "" {
		c.Storage.DatabasePath = v
	}
	if v := os.Getenv("PARLEY_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Server.LogLevel = v
		}
	}
	if v := os.Getenv("PARLEY_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Server.LogLevel = "debug"
		}
	}
	if v := os.Getenv("PARLEY_OFFLINE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Client.Offline = b
		}
	}
	if v := os.Getenv("PARLEY_AI_PROVIDER"); v != "" {
		if isValidProvider(v) {
			c.AI.Provider = v
		}
	}
}
