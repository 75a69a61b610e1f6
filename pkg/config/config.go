/*
Package config manages TOML config for the mohu matcher and server.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/youhengchan/mohu/internal/utils"
)

// Config holds the entire config structure
type Config struct {
	Matcher MatcherConfig `toml:"matcher"`
	Server  ServerConfig  `toml:"server"`
}

// MatcherConfig holds the matching engine options.
type MatcherConfig struct {
	// MaxDistance is the largest weighted edit distance a candidate may have
	// before it is discarded.
	MaxDistance int `toml:"max_distance"`
	// IgnoreTones strips tone digits from pinyin syllables before comparing.
	IgnoreTones bool `toml:"ignore_tones"`
	// SimilarityThreshold is the default floor for Match; per-call overrides win.
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	// CharConfusionPath and PinyinConfusionPath point at optional confusion
	// matrix JSON files. Empty means an empty table (every substitution costs 1).
	CharConfusionPath   string `toml:"char_confusion_path"`
	PinyinConfusionPath string `toml:"pinyin_confusion_path"`
}

// ServerConfig has IPC server related options.
type ServerConfig struct {
	MaxLimit int `toml:"max_limit"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Matcher: MatcherConfig{
			MaxDistance:         2,
			IgnoreTones:         true,
			SimilarityThreshold: 0.0,
		},
		Server: ServerConfig{
			MaxLimit: 64,
		},
	}
}

// Validate rejects option values outside their documented ranges.
func (c *Config) Validate() error {
	if c.Matcher.MaxDistance < 0 {
		return fmt.Errorf("max_distance must be >= 0, got %d", c.Matcher.MaxDistance)
	}
	if c.Matcher.SimilarityThreshold < 0 || c.Matcher.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in [0,1], got %g", c.Matcher.SimilarityThreshold)
	}
	if c.Server.MaxLimit < 0 {
		return fmt.Errorf("server max_limit must be >= 0, got %d", c.Server.MaxLimit)
	}
	return nil
}

// LoadConfig loads from a TOML file. Fields absent from the file keep their
// defaults; a file that fails to parse or validate is an error.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(path, config); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(path string) (*Config, error) {
	configDir := filepath.Dir(path)
	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}
	if !utils.FileExists(path) {
		config := DefaultConfig()
		if err := utils.SaveTOMLFile(config, path); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", path, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", path)
		return config, nil
	}
	return LoadConfig(path)
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "mohu", "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: ~/.config/mohu/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customPath string) (*Config, string, error) {
	if customPath != "" {
		config, err := LoadConfig(customPath)
		if err != nil {
			return nil, "", err
		}
		log.Debugf("Loaded config from custom path: %s", customPath)
		return config, customPath, nil
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	return config, defaultPath, nil
}
