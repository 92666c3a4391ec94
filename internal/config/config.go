// ABOUTME: bodycomp configuration management with backend selection.
// ABOUTME: Loads YAML via koanf with BODYCOMP_* environment overrides and opens storage.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/bodycomp/internal/charm"
	"github.com/harperreed/bodycomp/internal/scoring"
	"github.com/harperreed/bodycomp/internal/storage"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "BODYCOMP_"

// Defaults applied when the corresponding setting is empty.
const (
	DefaultBackend        = "sqlite"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
	DefaultGatewayURL     = "https://openrouter.ai/api"
	DefaultVisionModel    = "google/gemini-2.5-flash"
	DefaultTextModel      = "google/gemini-2.5-flash"
	DefaultGatewayTimeout = 60
	DefaultServerAddr     = "127.0.0.1:8080"
)

// Config stores bodycomp configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "charm".
	Backend string `koanf:"backend" yaml:"backend,omitempty"`

	// DataDir is the root directory for SQLite storage.
	// Supports ~ expansion. Defaults to ~/.local/share/bodycomp.
	DataDir string `koanf:"data_dir" yaml:"data_dir,omitempty"`

	// MissingPolicy controls how unmeasured axes count toward the overall
	// score: "worst_case" (default) or "exclude".
	MissingPolicy string `koanf:"missing_policy" yaml:"missing_policy,omitempty"`

	Log     LogConfig     `koanf:"log" yaml:"log,omitempty"`
	Gateway GatewayConfig `koanf:"gateway" yaml:"gateway,omitempty"`
	Server  ServerConfig  `koanf:"server" yaml:"server,omitempty"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level,omitempty"`
	Format string `koanf:"format" yaml:"format,omitempty"`
}

// GatewayConfig points at an OpenAI-compatible chat completions endpoint.
type GatewayConfig struct {
	BaseURL        string `koanf:"base_url" yaml:"base_url,omitempty"`
	APIKey         string `koanf:"api_key" yaml:"api_key,omitempty"`
	VisionModel    string `koanf:"vision_model" yaml:"vision_model,omitempty"`
	TextModel      string `koanf:"text_model" yaml:"text_model,omitempty"`
	TimeoutSeconds int    `koanf:"timeout_seconds" yaml:"timeout_seconds,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr     string `koanf:"addr" yaml:"addr,omitempty"`
	APIToken string `koanf:"api_token" yaml:"api_token,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return DefaultBackend
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetMissingPolicy parses the configured missing-metric policy.
func (c *Config) GetMissingPolicy() (scoring.MissingMetricPolicy, error) {
	if c.MissingPolicy == "" {
		return scoring.WorstCase, nil
	}
	return scoring.ParseMissingMetricPolicy(c.MissingPolicy)
}

// GetLogLevel returns the log level, defaulting to "info".
func (c *Config) GetLogLevel() string {
	if c.Log.Level == "" {
		return DefaultLogLevel
	}
	return c.Log.Level
}

// GetLogFormat returns "json" or "console", defaulting to "console".
func (c *Config) GetLogFormat() string {
	if c.Log.Format == "" {
		return DefaultLogFormat
	}
	return c.Log.Format
}

// GatewayEnabled reports whether an AI gateway key is configured.
func (c *Config) GatewayEnabled() bool {
	return c.Gateway.APIKey != ""
}

// GetGateway returns the gateway settings with defaults filled in.
func (c *Config) GetGateway() GatewayConfig {
	g := c.Gateway
	if g.BaseURL == "" {
		g.BaseURL = DefaultGatewayURL
	}
	g.BaseURL = strings.TrimRight(g.BaseURL, "/")
	if g.VisionModel == "" {
		g.VisionModel = DefaultVisionModel
	}
	if g.TextModel == "" {
		g.TextModel = DefaultTextModel
	}
	if g.TimeoutSeconds <= 0 {
		g.TimeoutSeconds = DefaultGatewayTimeout
	}
	return g
}

// Timeout returns the request timeout as a duration.
func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// GetServerAddr returns the listen address, defaulting to 127.0.0.1:8080.
func (c *Config) GetServerAddr() string {
	if c.Server.Addr == "" {
		return DefaultServerAddr
	}
	return c.Server.Addr
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	switch backend := c.GetBackend(); backend {
	case "sqlite":
		return storage.Open(storage.PathIn(c.GetDataDir()))
	case "charm":
		return charm.InitClient()
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "bodycomp", "config.yaml")
}

// Load reads config from the default path, then applies environment overrides.
func Load() (*Config, error) {
	return LoadFile(GetConfigPath())
}

// LoadFile reads config from path, then applies environment overrides.
// A missing file is not an error.
//
// Environment variables drop the BODYCOMP_ prefix and split the section
// from the key at the first underscore:
//
//	BODYCOMP_BACKEND          -> backend
//	BODYCOMP_GATEWAY_API_KEY  -> gateway.api_key
//	BODYCOMP_SERVER_ADDR      -> server.addr
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// sections are the nested config blocks addressable from the environment.
var sections = map[string]bool{"log": true, "gateway": true, "server": true}

func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 2 && sections[parts[0]] {
		return parts[0] + "." + parts[1]
	}
	return lower
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := yamlv3.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
