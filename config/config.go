package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/meysamhadeli/assetcore/cache_store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configCacheEntry holds cached configuration with metadata
type configCacheEntry struct {
	config  *Config
	modTime time.Time
}

// Global cache for configuration files
var (
	configCache = make(map[string]*configCacheEntry)
	cacheMutex  sync.RWMutex
)

// ConfigName is the configuration file name without extension.
const ConfigName = "assetcore-config"

// Config represents the structure of the configuration file
type Config struct {
	ToolVersion  string `mapstructure:"tool_version"`
	CacheDir     string `mapstructure:"cache_dir"`
	CacheBackend string `mapstructure:"cache_backend"`
	Compression  string `mapstructure:"compression"`
	RedisAddr    string `mapstructure:"redis_addr"`
	RedisPrefix  string `mapstructure:"redis_prefix"`
	Workers      int    `mapstructure:"workers"`
	LogMode      string `mapstructure:"log_mode"`
	LogLevel     string `mapstructure:"log_level"`
	Theme        string `mapstructure:"theme"`
}

// DefaultConfig values
var DefaultConfig = Config{
	ToolVersion:  "0.4.0",
	CacheDir:     ".cache",
	CacheBackend: cache_store.BackendFS,
	Compression:  cache_store.CompressionZstd.String(),
	RedisAddr:    "localhost:6379",
	RedisPrefix:  "assetcore:",
	Workers:      4,
	LogMode:      "development",
	LogLevel:     "warn",
	Theme:        "dracula",
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs initializes the configuration from file, flags, and environment variables, and returns the final config.
// A missing default config file is not an error.
func LoadConfigs(rootCmd *cobra.Command, cwd string) (*Config, error) {
	var config *Config

	setDefaults()

	viper.SetEnvPrefix("ASSETCORE")
	viper.AutomaticEnv()
	bindEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else if path := findConfigFile(cwd); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Bind CLI flags to override config values
	bindFlags(rootCmd)

	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if !filepath.IsAbs(config.CacheDir) {
		config.CacheDir = filepath.Join(cwd, config.CacheDir)
	}
	return config, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case cache_store.BackendFS, cache_store.BackendMemory, cache_store.BackendRedis:
	default:
		return fmt.Errorf("unknown cache_backend %q", c.CacheBackend)
	}
	if _, err := cache_store.ParseCompression(c.Compression); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// CacheOptions maps the configuration onto cache store options.
func (c *Config) CacheOptions() cache_store.Options {
	return cache_store.Options{
		Backend:     c.CacheBackend,
		Dir:         c.CacheDir,
		Compression: c.Compression,
		RedisAddr:   c.RedisAddr,
		RedisPrefix: c.RedisPrefix,
	}
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("tool_version", DefaultConfig.ToolVersion)
	viper.SetDefault("cache_dir", DefaultConfig.CacheDir)
	viper.SetDefault("cache_backend", DefaultConfig.CacheBackend)
	viper.SetDefault("compression", DefaultConfig.Compression)
	viper.SetDefault("redis_addr", DefaultConfig.RedisAddr)
	viper.SetDefault("redis_prefix", DefaultConfig.RedisPrefix)
	viper.SetDefault("workers", DefaultConfig.Workers)
	viper.SetDefault("log_mode", DefaultConfig.LogMode)
	viper.SetDefault("log_level", DefaultConfig.LogLevel)
	viper.SetDefault("theme", DefaultConfig.Theme)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv() {
	_ = viper.BindEnv("cache_dir", "ASSETCORE_CACHE_DIR")
	_ = viper.BindEnv("cache_backend", "ASSETCORE_CACHE_BACKEND")
	_ = viper.BindEnv("compression", "ASSETCORE_COMPRESSION")
	_ = viper.BindEnv("redis_addr", "REDIS_ADDR")
	_ = viper.BindEnv("workers", "ASSETCORE_WORKERS")
	_ = viper.BindEnv("log_mode", "LOG_MODE")
	_ = viper.BindEnv("log_level", "LOG_LEVEL")
	_ = viper.BindEnv("theme", "THEME")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(rootCmd *cobra.Command) {
	if rootCmd == nil {
		return
	}
	for _, key := range []string{"cache_dir", "cache_backend", "compression", "redis_addr", "workers", "log_mode", "log_level", "theme"} {
		if flag := rootCmd.PersistentFlags().Lookup(key); flag != nil {
			_ = viper.BindPFlag(key, flag)
		}
	}
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	// Use PersistentFlags so that these flags are available in all subcommands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML).")

	rootCmd.PersistentFlags().String("cache_dir", DefaultConfig.CacheDir, "Directory of the file cache, relative to the working directory.")
	rootCmd.PersistentFlags().String("cache_backend", DefaultConfig.CacheBackend, "Cache backend: 'fs', 'memory' or 'redis'.")
	rootCmd.PersistentFlags().String("compression", DefaultConfig.Compression, "Compression of file cache entries: 'none', 'lz4' or 'zstd'.")
	rootCmd.PersistentFlags().String("redis_addr", DefaultConfig.RedisAddr, "Address of the redis server when cache_backend is 'redis'.")
	rootCmd.PersistentFlags().Int("workers", DefaultConfig.Workers, "Number of files processed concurrently.")
	rootCmd.PersistentFlags().String("log_mode", DefaultConfig.LogMode, "Log format: 'development' or 'production'.")
	rootCmd.PersistentFlags().String("log_level", DefaultConfig.LogLevel, "Minimum log level (e.g., 'debug', 'info', 'warn').")
	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Syntax highlighting theme used by 'show' (e.g., 'dracula', 'monokai').")

	// Version flag
	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}

// GetConfigFileType returns the type of the configuration file based on its extension
func GetConfigFileType(filename string) string {
	if strings.HasSuffix(filename, ".json") {
		return "json"
	} else if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		return "yaml"
	}
	return ""
}

// findConfigFile returns the first default config file in cwd.
func findConfigFile(cwd string) string {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(cwd, ConfigName+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadConfigWithCache loads configuration with caching support
func LoadConfigWithCache(rootCmd *cobra.Command, cwd string) (*Config, error) {
	configFilePath := cfgFile
	if configFilePath == "" {
		configFilePath = findConfigFile(cwd)
	}

	// If no config file exists, return default configuration loading
	if configFilePath == "" {
		return LoadConfigs(rootCmd, cwd)
	}

	fileInfo, err := os.Stat(configFilePath)
	if err != nil {
		return LoadConfigs(rootCmd, cwd)
	}

	cacheMutex.RLock()
	if cached, exists := configCache[configFilePath]; exists {
		if fileInfo.ModTime().Equal(cached.modTime) {
			cacheMutex.RUnlock()
			return cached.config, nil
		}
	}
	cacheMutex.RUnlock()

	config, err := LoadConfigs(rootCmd, cwd)
	if err != nil {
		return nil, err
	}

	cacheMutex.Lock()
	configCache[configFilePath] = &configCacheEntry{
		config:  config,
		modTime: fileInfo.ModTime(),
	}
	cacheMutex.Unlock()

	return config, nil
}

// ClearConfigCache clears all cached configuration files
func ClearConfigCache() {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	configCache = make(map[string]*configCacheEntry)
}
