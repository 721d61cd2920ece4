// Package config loads the YAML configuration for the filecachectl
// command line, mirroring the teacher's internal/config.LoadConfig:
// viper reads the file, unmarshals into a plain struct, and defaults
// are filled in for anything the file omits.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/javi11/filecache/cache"
	"github.com/javi11/filecache/internal/ccfg"
)

// CacheConfig is one named cache's on-disk configuration entry.
type CacheConfig struct {
	Name               string        `yaml:"name" mapstructure:"name"`
	Dir                string        `yaml:"dir" mapstructure:"dir"`
	TempDir            string        `yaml:"temp_dir" mapstructure:"temp_dir"`
	TTL                time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Namespace          string        `yaml:"namespace" mapstructure:"namespace"`
	TempNamespace      string        `yaml:"temp_namespace" mapstructure:"temp_namespace"`
	StaleCleanInterval time.Duration `yaml:"stale_clean_interval" mapstructure:"stale_clean_interval"`
	TempCleanInterval  time.Duration `yaml:"temp_clean_interval" mapstructure:"temp_clean_interval"`
	UnknownFiles       string        `yaml:"unknown_files" mapstructure:"unknown_files"`
	Verbose            bool          `yaml:"verbose" mapstructure:"verbose"`
}

// LogConfig mirrors the teacher's internal/config.LogConfig fields.
// filecachectl's serve applies only File; Level, MaxSize, MaxAge and
// MaxBackups are read from the file but not applied, and the rotating
// handler uses the fixed limits in logging.NewHandler.
type LogConfig struct {
	File       string `yaml:"file" mapstructure:"file"`
	Level      string `yaml:"level" mapstructure:"level"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
}

// Config is the filecachectl YAML document: zero or more named caches
// plus logging.
type Config struct {
	Log    LogConfig     `yaml:"log" mapstructure:"log"`
	Caches []CacheConfig `yaml:"caches" mapstructure:"caches"`
}

// DefaultConfig returns a Config with no caches and console-only
// info-level logging.
func DefaultConfig() *Config {
	return &Config{Log: LogConfig{Level: "info"}}
}

// LoadConfig reads configFile (or ./config.yaml if empty) via viper
// and unmarshals it onto the defaults.
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		if configFile != "" {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
		return nil, fmt.Errorf("no configuration file found: use --config or create ./config.yaml")
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return cfg, nil
}

// ToOptions converts one YAML cache entry into cache.Options, resolving
// its string namespace/unknown_files fields to their typed forms. Only
// a literal namespace is supported from YAML; programmatic namespace
// parts (NSHost, NSFunc, NSCall) are for Go callers of the cache
// package directly.
func (c CacheConfig) ToOptions() cache.Options {
	opts := cache.Options{
		Cache:              c.Name,
		Dir:                c.Dir,
		TempDir:            c.TempDir,
		TTL:                c.TTL,
		StaleCleanInterval: c.StaleCleanInterval,
		TempCleanInterval:  c.TempCleanInterval,
		Verbose:            c.Verbose,
	}
	if c.Namespace != "" {
		opts.Namespace = []cache.NamespacePart{cache.NSLiteral(c.Namespace)}
	}
	if c.TempNamespace != "" {
		opts.TempNamespace = []cache.NamespacePart{cache.NSLiteral(c.TempNamespace)}
	}
	if c.UnknownFiles == "remove" {
		opts.UnknownFiles = ccfg.UnknownFilesRemove
	}
	return opts
}
