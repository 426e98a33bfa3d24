// Package config provides configuration management for romcat.
// It handles loading, validating and saving the YAML configuration file that
// holds the ordered list of scan locations and the application settings.
// Missing values fall back to platform-specific defaults.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/romcat/pkg/errutils"
	"github.com/glorpus-work/romcat/pkg/fsutil"
	"github.com/glorpus-work/romcat/pkg/loader"
	"github.com/glorpus-work/romcat/pkg/location"
	"github.com/glorpus-work/romcat/pkg/model"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the configuration file inside the config directory.
const ConfigFileName = "config.yaml"

// YAMLIndent is the number of spaces to use for YAML indentation.
const YAMLIndent = 2

// Config represents the application configuration.
type Config struct {
	// Locations are scanned in this order; the catalog keeps that order.
	Locations []string `yaml:"locations"`

	// General settings
	Settings Settings `yaml:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	// Storage settings. Empty cache_file and keys_dir live inside data_dir.
	DataDir   string `yaml:"data_dir,omitempty"`
	CacheFile string `yaml:"cache_file,omitempty"`
	KeysDir   string `yaml:"keys_dir,omitempty"`
	HooksDir  string `yaml:"hooks_dir,omitempty"`

	// Catalog settings
	SystemLanguage  int    `yaml:"system_language"`
	FormatFilter    string `yaml:"format_filter,omitempty"`
	RefreshRequired bool   `yaml:"refresh_required"`

	// Output settings
	OutputFormat string `yaml:"output_format"` // text, json, yaml
	LogFormat    string `yaml:"log_format"`    // text, json, pretty
	LogLevel     string `yaml:"log_level"`     // debug, info, warn, error
}

var (
	validOutputFormats = map[string]bool{"text": true, "json": true, "yaml": true}
	validLogFormats    = map[string]bool{"text": true, "json": true, "pretty": true}
	validLogLevels     = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	dataDir, err := fsutil.GetDataDir()
	if err != nil {
		// Fallback to current directory if we can't determine the data dir
		dataDir = "."
	}

	hooksDir, err := fsutil.GetHooksDir()
	if err != nil {
		hooksDir = filepath.Join(dataDir, fsutil.HooksDirName)
	}

	return &Config{
		Locations: []string{},
		Settings: Settings{
			DataDir:        dataDir,
			HooksDir:       hooksDir,
			SystemLanguage: int(loader.DefaultLanguage),
			OutputFormat:   "text",
			LogFormat:      "text",
			LogLevel:       "info",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the
// default configuration.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errutils.ErrEmptyConfigPath
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read config data: %w", err)
	}

	// Keys absent from the file keep their defaults; system_language 0 is a
	// valid language so it cannot be defaulted after the fact.
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %w", errutils.ErrConfigParse, err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig saves configuration to a file, replacing it atomically.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errutils.ErrEmptyConfigPath
	}

	if err := fsutil.EnsureFileDir(path); err != nil {
		return fmt.Errorf("%w: %w", errutils.ErrConfigDirectory, err)
	}

	return fsutil.WriteFileAtomic(path, fsutil.FileModeDefault, func(w io.Writer) error {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(YAMLIndent)
		if err := encoder.Encode(c); err != nil {
			return fmt.Errorf("%w: %w", errutils.ErrConfigEncode, err)
		}
		return encoder.Close()
	})
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validateLocations(c.Locations); err != nil {
		return fmt.Errorf("%w: %w", errutils.ErrConfigValidation, err)
	}
	if err := validateSettings(c.Settings); err != nil {
		return fmt.Errorf("%w: %w", errutils.ErrConfigValidation, err)
	}
	return nil
}

func validateLocations(locations []string) error {
	seen := make(map[string]bool, len(locations))
	for i, loc := range locations {
		resolved, err := location.Resolve(loc)
		if err != nil {
			return fmt.Errorf("location %d: %w", i, err)
		}
		if seen[resolved] {
			return errutils.ErrLocationExistsWithName(loc)
		}
		seen[resolved] = true
	}
	return nil
}

func validateSettings(s Settings) error {
	if !loader.SystemLanguage(s.SystemLanguage).IsValid() {
		return errutils.ErrInvalidLanguageWithValue(fmt.Sprint(s.SystemLanguage))
	}
	if s.FormatFilter != "" {
		if _, ok := model.ParseFormat(s.FormatFilter); !ok {
			return errutils.ErrUnknownFormatWithName(s.FormatFilter)
		}
	}
	if !validOutputFormats[s.OutputFormat] {
		return errutils.ErrInvalidOutputFormatWithDetails(s.OutputFormat)
	}
	if !validLogFormats[s.LogFormat] {
		return errutils.ErrInvalidLogFormatWithDetails(s.LogFormat)
	}
	if !validLogLevels[strings.ToLower(s.LogLevel)] {
		return errutils.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// AddLocation appends a location to the scan list and marks the catalog as
// needing a rescan. Locations are compared after resolution, so "~/roms" and
// its absolute form are the same location.
func (c *Config) AddLocation(loc string) error {
	loc = strings.TrimSpace(loc)
	resolved, err := location.Resolve(loc)
	if err != nil {
		return err
	}

	if c.indexOf(resolved) >= 0 {
		return errutils.ErrLocationExistsWithName(loc)
	}

	c.Locations = append(c.Locations, loc)
	c.Settings.RefreshRequired = true
	return nil
}

// RemoveLocation removes a location from the scan list and marks the
// catalog as needing a rescan.
func (c *Config) RemoveLocation(loc string) error {
	resolved, err := location.Resolve(loc)
	if err != nil {
		return err
	}

	i := c.indexOf(resolved)
	if i < 0 {
		return errutils.ErrLocationNotFoundWithName(loc)
	}

	c.Locations = append(c.Locations[:i], c.Locations[i+1:]...)
	c.Settings.RefreshRequired = true
	return nil
}

func (c *Config) indexOf(resolved string) int {
	for i, existing := range c.Locations {
		if r, err := location.Resolve(existing); err == nil && r == resolved {
			return i
		}
	}
	return -1
}

// Language returns the configured system language.
func (c *Config) Language() loader.SystemLanguage {
	return loader.SystemLanguage(c.Settings.SystemLanguage)
}

// Format returns the configured format filter, if any.
func (c *Config) Format() (model.Format, bool) {
	if c.Settings.FormatFilter == "" {
		return "", false
	}
	return model.ParseFormat(c.Settings.FormatFilter)
}

// GetDataDir returns the data directory with "~" expanded.
func (c *Config) GetDataDir() string {
	return expand(c.Settings.DataDir)
}

// GetCacheFilePath returns the path of the catalog cache file.
func (c *Config) GetCacheFilePath() string {
	if c.Settings.CacheFile != "" {
		return expand(c.Settings.CacheFile)
	}
	return filepath.Join(c.GetDataDir(), fsutil.CacheFileName)
}

// GetKeysDir returns the directory holding imported key files.
func (c *Config) GetKeysDir() string {
	if c.Settings.KeysDir != "" {
		return expand(c.Settings.KeysDir)
	}
	return filepath.Join(c.GetDataDir(), fsutil.KeysDirName)
}

// GetHooksDir returns the directory holding hook scripts.
func (c *Config) GetHooksDir() string {
	return expand(c.Settings.HooksDir)
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Locations == nil {
		c.Locations = []string{}
	}
	if c.Settings.DataDir == "" {
		c.Settings.DataDir = defaults.Settings.DataDir
	}
	if c.Settings.HooksDir == "" {
		c.Settings.HooksDir = defaults.Settings.HooksDir
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
}

func expand(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}
