package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/glorpus-work/romcat/pkg/errutils"
	"github.com/glorpus-work/romcat/pkg/loader"
)

// SetValue sets a configuration value by key
// Supported keys:
//   - data_dir, cache_file, keys_dir, hooks_dir: string - storage paths
//   - system_language: language code or BCP 47 tag
//   - format_filter: string - package format shown by list, empty for all
//   - refresh_required: bool - bypass the cache on the next refresh
//   - output_format: string - text, json or yaml
//   - log_format: string - text, json or pretty
//   - log_level: string - debug, info, warn or error
//
// The value is not validated against the other settings; call Validate
// before saving.
func (c *Config) SetValue(key, value string) error {
	switch key {
	case "data_dir":
		c.Settings.DataDir = value
	case "cache_file":
		c.Settings.CacheFile = value
	case "keys_dir":
		c.Settings.KeysDir = value
	case "hooks_dir":
		c.Settings.HooksDir = value
	case "system_language":
		lang, err := loader.ParseSystemLanguage(value)
		if err != nil {
			return err
		}
		c.Settings.SystemLanguage = int(lang)
	case "format_filter":
		c.Settings.FormatFilter = value
	case "refresh_required":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w for %s: %s", errutils.ErrInvalidBoolValue, key, value)
		}
		c.Settings.RefreshRequired = boolVal
	case "output_format":
		c.Settings.OutputFormat = value
	case "log_format":
		c.Settings.LogFormat = value
	case "log_level":
		c.Settings.LogLevel = value
	default:
		return fmt.Errorf("%w: %s", errutils.ErrUnknownConfigKey, key)
	}
	return nil
}

// GetValue returns the value as a string and any error encountered.
func (c *Config) GetValue(key string) (string, error) {
	value, ok := c.ToMap()[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", errutils.ErrUnknownConfigKey, key)
	}
	return value, nil
}

// ToMap returns the settings keyed by their YAML names.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)

	settingsValue := reflect.ValueOf(c.Settings)
	settingsType := settingsValue.Type()

	for i := 0; i < settingsValue.NumField(); i++ {
		field := settingsType.Field(i)
		yamlTag := field.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		// Handle yaml tags with options (e.g., "cache_file,omitempty")
		yamlKey := strings.Split(yamlTag, ",")[0]

		fieldValue := settingsValue.Field(i)
		var strValue string

		switch fieldValue.Kind() {
		case reflect.Bool:
			strValue = strconv.FormatBool(fieldValue.Bool())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			strValue = strconv.FormatInt(fieldValue.Int(), 10)
		case reflect.String:
			strValue = fieldValue.String()
		default:
			strValue = fmt.Sprintf("%v", fieldValue.Interface())
		}

		result[yamlKey] = strValue
	}

	// Derived paths show where data actually goes.
	result["cache_file"] = c.GetCacheFilePath()
	result["keys_dir"] = c.GetKeysDir()

	return result
}
