package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Sources  Sources  `yaml:"sources"`
	Pipeline Pipeline `yaml:"pipeline"`
	Trends   Trends   `yaml:"trends"`
	Server   Server   `yaml:"server"`
	Output   Output   `yaml:"output"`
	Logging  Logging  `yaml:"logging"`
}

type Sources struct {
	Subreddits []Subreddit `yaml:"subreddits"`
	Feeds      []Feed      `yaml:"feeds"`
	AppStore   []StoreApp  `yaml:"app_store"`
	PlayStore  []StoreApp  `yaml:"play_store"`
}

type Subreddit struct {
	Name  string `yaml:"name"`
	Limit int    `yaml:"limit"`
}

type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

// StoreApp identifies one application whose store reviews are ingested.
type StoreApp struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Country string `yaml:"country"`
}

type Pipeline struct {
	TagBatchLimit  int    `yaml:"tag_batch_limit"`
	MinClusterSize int    `yaml:"min_cluster_size"`
	Schedule       string `yaml:"schedule"` // cron spec; empty disables scheduled runs
}

type Trends struct {
	Enabled            bool   `yaml:"enabled"`
	BaseURL            string `yaml:"base_url"`
	MinIntervalSeconds int    `yaml:"min_interval_seconds"`
}

type Server struct {
	Port          int    `yaml:"port"`
	RunSecretEnv  string `yaml:"run_secret_env"`
	SessionCookie string `yaml:"session_cookie"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for ideafork.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "ideafork")
}

// DataDir returns the XDG data directory for ideafork.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "ideafork")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/ideafork/config.yaml > ./config.yaml
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
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'ideafork init' to create a default config",
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

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Pipeline: Pipeline{
			TagBatchLimit:  500,
			MinClusterSize: 3,
		},
		Trends: Trends{
			Enabled:            true,
			BaseURL:            "https://trends.ideafork.dev/api",
			MinIntervalSeconds: 5,
		},
		Server: Server{
			Port:          8000,
			RunSecretEnv:  "IDEAFORK_RUN_SECRET",
			SessionCookie: "if_session",
		},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// RunSecret reads the pipeline trigger secret from the configured env var.
func (c *Config) RunSecret() string {
	return os.Getenv(c.Server.RunSecretEnv)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
