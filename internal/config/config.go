// ABOUTME: Configuration loading and parsing for leasing-chat
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the complete leasing-chat configuration
type Config struct {
	Agent     AgentConfig     `yaml:"agent" toml:"agent"`
	Stream    StreamConfig    `yaml:"stream" toml:"stream"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// AgentConfig holds the remote agent endpoint and request timing
type AgentConfig struct {
	BaseURL string `yaml:"base_url" toml:"base_url"`
	Token   string `yaml:"token" toml:"token"`

	RequestTimeout time.Duration `yaml:"-" toml:"-"` // bootstrap and listing calls
	IdleTimeout    time.Duration `yaml:"-" toml:"-"` // max gap between reply events, 0 = none

	// Raw string values for unmarshaling
	RequestTimeoutRaw string `yaml:"request_timeout" toml:"request_timeout"`
	IdleTimeoutRaw    string `yaml:"idle_timeout" toml:"idle_timeout"`
}

// StreamConfig holds reply decoder limits
type StreamConfig struct {
	MaxLineBytes       int `yaml:"max_line_bytes" toml:"max_line_bytes"`
	MaxMalformedFrames int `yaml:"max_malformed_frames" toml:"max_malformed_frames"`
	ReadBufferBytes    int `yaml:"read_buffer_bytes" toml:"read_buffer_bytes"`
}

// TelemetryConfig holds where reply observations go
type TelemetryConfig struct {
	// DatabasePath enables the SQLite observation ledger when set
	DatabasePath string `yaml:"database_path" toml:"database_path"`
	// BusTopic is the in-process pub/sub topic; empty uses the telemetry default
	BusTopic string `yaml:"bus_topic" toml:"bus_topic"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Agent: AgentConfig{
			BaseURL:           "http://localhost:8000",
			RequestTimeout:    30 * time.Second,
			IdleTimeout:       2 * time.Minute,
			RequestTimeoutRaw: "30s",
			IdleTimeoutRaw:    "2m",
		},
		Stream: StreamConfig{
			MaxLineBytes:       1 << 20,
			MaxMalformedFrames: 32,
			ReadBufferBytes:    4096,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are parsed as TOML, anything else as YAML. Values
// missing from the file keep their Default. Environment variables in the
// format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw content
	expanded := expandEnvVars(string(data))

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Parse duration fields
	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Agent.BaseURL == "" {
		return fmt.Errorf("agent.base_url is required")
	}
	u, err := url.Parse(c.Agent.BaseURL)
	if err != nil {
		return fmt.Errorf("agent.base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("agent.base_url must use http or https scheme")
	}

	if c.Agent.RequestTimeout < 0 || c.Agent.IdleTimeout < 0 {
		return fmt.Errorf("agent timeouts must not be negative")
	}

	if c.Stream.MaxLineBytes < 0 {
		return fmt.Errorf("stream.max_line_bytes must not be negative")
	}
	if c.Stream.MaxMalformedFrames < 0 {
		return fmt.Errorf("stream.max_malformed_frames must not be negative")
	}
	if c.Stream.ReadBufferBytes < 0 {
		return fmt.Errorf("stream.read_buffer_bytes must not be negative")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Agent.RequestTimeoutRaw != "" {
		cfg.Agent.RequestTimeout, err = time.ParseDuration(cfg.Agent.RequestTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing request_timeout %q: %w", cfg.Agent.RequestTimeoutRaw, err)
		}
	}

	if cfg.Agent.IdleTimeoutRaw != "" {
		cfg.Agent.IdleTimeout, err = time.ParseDuration(cfg.Agent.IdleTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing idle_timeout %q: %w", cfg.Agent.IdleTimeoutRaw, err)
		}
	}

	return nil
}

// Path returns the config file location.
// Priority: LEASING_CHAT_CONFIG env var > XDG_CONFIG_HOME/leasing-chat/config.yaml > ~/.config/leasing-chat/config.yaml
func Path() string {
	if envPath := os.Getenv("LEASING_CHAT_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "leasing-chat", "config.yaml")
}

// LoadOrDefault loads path when it exists and falls back to Default otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("checking config file: %w", err)
	}
	return Load(path)
}
