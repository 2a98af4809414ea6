package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/binstall/internal/platform"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Paths    PathsConfig    `mapstructure:"paths"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	Platform PlatformConfig `mapstructure:"platform"`
	Install  InstallConfig  `mapstructure:"install"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// PathsConfig contains path-related configuration
type PathsConfig struct {
	BinDir    string `mapstructure:"bin_dir"`    // empty: XDG executable dir
	TempDir   string `mapstructure:"temp_dir"`   // workspace root; empty: the destination dir
	CacheFile string `mapstructure:"cache_file"` // sqlite metadata cache
	LogFile   string `mapstructure:"log_file"`
}

// GitHubConfig configures the search and release API client
type GitHubConfig struct {
	APIURL    string `mapstructure:"api_url"`
	UserAgent string `mapstructure:"user_agent"`
	Token     string `mapstructure:"token"`
}

// PlatformConfig holds the file name tokens used to score release assets
type PlatformConfig struct {
	OS   []string `mapstructure:"os"`
	Arch []string `mapstructure:"arch"`
	Libc []string `mapstructure:"libc"`
}

// InstallConfig contains download and extraction limits
type InstallConfig struct {
	MaxDownloadBytes int64 `mapstructure:"max_download_bytes"`
	MaxExtractBytes  int64 `mapstructure:"max_extract_bytes"`
	ConfirmOverwrite bool  `mapstructure:"confirm_overwrite"`
	Progress         bool  `mapstructure:"progress"`
	TimeoutSeconds   int   `mapstructure:"timeout_seconds"`
}

// CacheConfig controls the release metadata cache
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Color string `mapstructure:"color"`
}

// Load loads configuration from the default locations and the environment.
// BINSTALL_CONFIG points at an explicit file.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("BINSTALL_CONFIG"))
}

// LoadFrom loads configuration from configFile, or from the default
// locations when configFile is empty
func LoadFrom(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "binstall"))
		}
		v.AddConfigPath(".")
	}

	setDefaults(v)

	// BINSTALL_GITHUB_TOKEN overrides github.token, and so on
	v.SetEnvPrefix("BINSTALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
	}

	cfg.Paths.BinDir = expandPath(cfg.Paths.BinDir)
	cfg.Paths.TempDir = expandPath(cfg.Paths.TempDir)
	cfg.Paths.CacheFile = expandPath(cfg.Paths.CacheFile)
	cfg.Paths.LogFile = expandPath(cfg.Paths.LogFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the installer cannot work with
func (c *Config) Validate() error {
	if c.Install.MaxDownloadBytes <= 0 {
		return fmt.Errorf("install.max_download_bytes must be positive")
	}
	if c.Install.MaxExtractBytes <= 0 {
		return fmt.Errorf("install.max_extract_bytes must be positive")
	}
	if c.Install.TimeoutSeconds <= 0 {
		return fmt.Errorf("install.timeout_seconds must be positive")
	}
	switch c.Logging.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("logging.color must be auto, always or never, got %q", c.Logging.Color)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		homeDir = os.Getenv("HOME")
	}
	if homeDir == "" {
		homeDir = "."
	}

	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if !filepath.IsAbs(cacheHome) {
		cacheHome = filepath.Join(homeDir, ".cache")
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if !filepath.IsAbs(stateHome) {
		stateHome = filepath.Join(homeDir, ".local", "state")
	}

	v.SetDefault("paths.bin_dir", "")
	v.SetDefault("paths.temp_dir", "")
	v.SetDefault("paths.cache_file", filepath.Join(cacheHome, "binstall", "metadata.db"))
	v.SetDefault("paths.log_file", filepath.Join(stateHome, "binstall", "binstall.log"))

	v.SetDefault("github.api_url", "https://api.github.com/")
	v.SetDefault("github.user_agent", "")
	v.SetDefault("github.token", "")

	host := platform.Detect()
	v.SetDefault("platform.os", host.OS)
	v.SetDefault("platform.arch", host.Arch)
	v.SetDefault("platform.libc", append([]string{}, host.Libc...))

	v.SetDefault("install.max_download_bytes", int64(512<<20))
	v.SetDefault("install.max_extract_bytes", int64(1<<30))
	v.SetDefault("install.confirm_overwrite", true)
	v.SetDefault("install.progress", true)
	v.SetDefault("install.timeout_seconds", 600)

	v.SetDefault("cache.enabled", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.color", "auto")
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}

	return os.ExpandEnv(path)
}
