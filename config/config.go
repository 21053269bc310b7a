package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spiffcs/ghusers/internal/constants"
)

// State backends for the private favorites and history store.
const (
	BackendBolt = "bolt"
	BackendFile = "file"
)

// Config represents the application configuration
type Config struct {
	DefaultFormat string `yaml:"default_format,omitempty"`

	// GitHub connection
	BaseURL           string   `yaml:"base_url,omitempty"`
	Token             string   `yaml:"token,omitempty"`
	RequestsPerSecond *float64 `yaml:"requests_per_second,omitempty"`

	// Storage locations
	CacheDir     string `yaml:"cache_dir,omitempty"`
	DataDir      string `yaml:"data_dir,omitempty"`
	SharedDir    string `yaml:"shared_dir,omitempty"`
	StateBackend string `yaml:"state_backend,omitempty"`

	// Cache tuning
	MemoryCacheEntries *int           `yaml:"memory_cache_entries,omitempty"`
	MemoryCacheBytes   *int64         `yaml:"memory_cache_bytes,omitempty"`
	RevalidateInterval *time.Duration `yaml:"revalidate_interval,omitempty"`
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".ghusers"
	}
	return filepath.Join(configDir, "ghusers")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".ghusers.yaml"
}

// Load loads the configuration from disk.
// It first loads the global config from the user config directory, then
// merges any local .ghusers.yaml config on top (local values take precedence).
func Load() (*Config, error) {
	return LoadFrom(ConfigPath(), LocalConfigPath())
}

// LoadFrom loads the global config at globalPath and merges the local
// config at localPath on top. Missing files are skipped.
func LoadFrom(globalPath, localPath string) (*Config, error) {
	cfg := &Config{
		DefaultFormat: "table",
	}

	if _, err := os.Stat(globalPath); err == nil {
		data, err := os.ReadFile(globalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read global config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse global config file: %w", err)
		}
	}

	if _, err := os.Stat(localPath); err == nil {
		data, err := os.ReadFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read local config file: %w", err)
		}

		var localCfg Config
		if err := yaml.Unmarshal(data, &localCfg); err != nil {
			return nil, fmt.Errorf("failed to parse local config file: %w", err)
		}

		cfg = mergeConfig(cfg, &localCfg)
	}

	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = "table"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	switch c.StateBackend {
	case "", BackendBolt, BackendFile:
	default:
		return fmt.Errorf("invalid state_backend %q: must be %s or %s", c.StateBackend, BackendBolt, BackendFile)
	}
	switch c.DefaultFormat {
	case "", "table", "json":
	default:
		return fmt.Errorf("invalid default_format %q: must be table or json", c.DefaultFormat)
	}
	if c.MemoryCacheEntries != nil && *c.MemoryCacheEntries <= 0 {
		return fmt.Errorf("memory_cache_entries must be positive")
	}
	if c.MemoryCacheBytes != nil && *c.MemoryCacheBytes <= 0 {
		return fmt.Errorf("memory_cache_bytes must be positive")
	}
	if c.RevalidateInterval != nil && *c.RevalidateInterval < 0 {
		return fmt.Errorf("revalidate_interval cannot be negative")
	}
	return nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := *global

	if local.DefaultFormat != "" {
		result.DefaultFormat = local.DefaultFormat
	}
	if local.BaseURL != "" {
		result.BaseURL = local.BaseURL
	}
	if local.Token != "" {
		result.Token = local.Token
	}
	if local.CacheDir != "" {
		result.CacheDir = local.CacheDir
	}
	if local.DataDir != "" {
		result.DataDir = local.DataDir
	}
	if local.SharedDir != "" {
		result.SharedDir = local.SharedDir
	}
	if local.StateBackend != "" {
		result.StateBackend = local.StateBackend
	}
	if local.RequestsPerSecond != nil {
		result.RequestsPerSecond = local.RequestsPerSecond
	}
	if local.MemoryCacheEntries != nil {
		result.MemoryCacheEntries = local.MemoryCacheEntries
	}
	if local.MemoryCacheBytes != nil {
		result.MemoryCacheBytes = local.MemoryCacheBytes
	}
	if local.RevalidateInterval != nil {
		result.RevalidateInterval = local.RevalidateInterval
	}

	return &result
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	configDir := DefaultConfigDir()

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetGitHubToken returns the GitHub token. The GITHUB_TOKEN environment
// variable takes precedence over the config file.
func (c *Config) GetGitHubToken() string {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token
	}
	return c.Token
}

// GetBaseURL returns the API base URL, defaulting to api.github.com.
func (c *Config) GetBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return constants.APIBaseURL
}

// GetStateBackend returns the private state backend, defaulting to bolt.
func (c *Config) GetStateBackend() string {
	if c.StateBackend != "" {
		return c.StateBackend
	}
	return BackendBolt
}

// GetRequestsPerSecond returns the client-side request throttle.
func (c *Config) GetRequestsPerSecond() float64 {
	if c.RequestsPerSecond != nil {
		return *c.RequestsPerSecond
	}
	return constants.DefaultRequestsPerSecond
}

// GetMemoryCacheEntries returns the memory tier entry limit.
func (c *Config) GetMemoryCacheEntries() int {
	if c.MemoryCacheEntries != nil {
		return *c.MemoryCacheEntries
	}
	return constants.MemoryCacheEntries
}

// GetMemoryCacheBytes returns the memory tier byte budget.
func (c *Config) GetMemoryCacheBytes() int64 {
	if c.MemoryCacheBytes != nil {
		return *c.MemoryCacheBytes
	}
	return constants.MemoryCacheBytes
}

// GetRevalidateInterval returns the minimum time between two background
// refreshes of the same cache key.
func (c *Config) GetRevalidateInterval() time.Duration {
	if c.RevalidateInterval != nil {
		return *c.RevalidateInterval
	}
	return constants.RevalidateInterval
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	rps := float64(constants.DefaultRequestsPerSecond)
	entries := constants.MemoryCacheEntries
	bytes := int64(constants.MemoryCacheBytes)
	interval := constants.RevalidateInterval

	return &Config{
		DefaultFormat:      "table",
		BaseURL:            constants.APIBaseURL,
		RequestsPerSecond:  &rps,
		StateBackend:       BackendBolt,
		MemoryCacheEntries: &entries,
		MemoryCacheBytes:   &bytes,
		RevalidateInterval: &interval,
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# ghusers configuration file
# See: ghusers config defaults  (for all available options)

# Output format: table or json
default_format: table

# Use a GitHub Enterprise endpoint (optional)
# base_url: https://github.example.com/api/v3/

# Private state backend: bolt or file
# state_backend: bolt

# Minimum time between background refreshes of a cached response
# revalidate_interval: 30s

# The token is read from GITHUB_TOKEN when set
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
