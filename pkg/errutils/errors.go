// Package errutils provides the error handling vocabulary for romcat.
// It defines sentinel errors grouped by domain, wrapping helpers that keep
// errors.Is working across layers, and constructors for errors that carry a
// location, path or key name.
//
// The catalog refresh relies on these sentinels to decide how a failure
// propagates: cache errors are absorbed by the controller, scan errors are
// published as the refresh result.
package errutils

import (
	"fmt"
)

// Common error types used throughout the application.
// Errors are grouped by their domain or functionality.
var (
	// Cache errors are produced by the cache codec and absorbed by the controller.

	// ErrCacheMiss is returned when no cache file exists at the configured path.
	ErrCacheMiss = fmt.Errorf("catalog cache not found")

	// ErrCacheCorrupt is returned when the cache file cannot be decoded
	// (bad magic, truncated body, digest mismatch, malformed payload).
	ErrCacheCorrupt = fmt.Errorf("catalog cache is corrupt")

	// ErrCacheIncompatible is returned when the cache was written by an
	// incompatible schema or references formats this build does not know.
	// It always wraps ErrCacheCorrupt.
	ErrCacheIncompatible = fmt.Errorf("%w: incompatible cache schema", ErrCacheCorrupt)

	// ErrCacheWrite is returned when the catalog could not be persisted.
	ErrCacheWrite = fmt.Errorf("failed to write catalog cache")

	// ErrCacheClean is returned when the cache file could not be removed.
	ErrCacheClean = fmt.Errorf("failed to clean cache")

	// Scan errors abort a refresh and are published to observers.

	// ErrScan is returned when a location cannot be enumerated.
	ErrScan = fmt.Errorf("failed to scan location")

	// ErrLocationUnresolvable is returned when a location identifier does not
	// resolve to a readable directory or archive.
	ErrLocationUnresolvable = fmt.Errorf("location cannot be resolved")

	// ErrUnknownFormat is returned when a file does not match any package format.
	ErrUnknownFormat = fmt.Errorf("unknown package format")

	// ErrInvalidPackage is returned when a package header is present but malformed.
	ErrInvalidPackage = fmt.Errorf("invalid package")

	// Key errors.

	// ErrKeyImport is returned when key material at a location cannot be read.
	ErrKeyImport = fmt.Errorf("failed to import keys")

	// ErrInvalidKeyFile is returned for malformed key files or key lines.
	ErrInvalidKeyFile = fmt.Errorf("invalid key file")

	// ErrKeyNotFound is returned when a requested key is missing from the keyset.
	ErrKeyNotFound = fmt.Errorf("key not found")

	// Location management errors.

	// ErrEmptyLocation is returned when an empty location identifier is supplied.
	ErrEmptyLocation = fmt.Errorf("location cannot be empty")

	// ErrLocationExists is returned when adding a location that is already configured.
	ErrLocationExists = fmt.Errorf("location already configured")

	// ErrLocationNotFound is returned when removing a location that is not configured.
	ErrLocationNotFound = fmt.Errorf("location not configured")

	// Config errors are related to configuration file operations and validation.

	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")

	// ErrConfigValidation is returned when configuration values fail validation.
	ErrConfigValidation = fmt.Errorf("invalid configuration")

	ErrConfigEncode     = fmt.Errorf("failed to encode config")
	ErrConfigDirectory  = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate = fmt.Errorf("failed to create config file")

	// ErrConfigFileExists is returned when attempting to create a configuration file that already exists.
	ErrConfigFileExists = fmt.Errorf("configuration file already exists (use --force to overwrite)")

	// ErrConfigFileRename is returned when renaming the temporary config file fails.
	ErrConfigFileRename = fmt.Errorf("failed to rename temporary config file")

	// ErrUnknownConfigKey is returned when an unknown configuration key is encountered.
	ErrUnknownConfigKey = fmt.Errorf("unknown configuration key")

	// ErrInvalidBoolValue is returned when an invalid boolean value is provided in the configuration.
	ErrInvalidBoolValue = fmt.Errorf("invalid boolean value")

	// ErrInvalidOutputFormat is returned when an invalid output format is specified.
	ErrInvalidOutputFormat = fmt.Errorf("invalid output format")

	// ErrInvalidLogFormat is returned when an invalid log format is specified.
	ErrInvalidLogFormat = fmt.Errorf("invalid log format")

	// ErrInvalidLogLevel is returned when an invalid log level is specified.
	ErrInvalidLogLevel = fmt.Errorf("invalid log level")

	// ErrInvalidLanguage is returned when a system language code or tag is not recognised.
	ErrInvalidLanguage = fmt.Errorf("invalid system language")

	// Hook errors.

	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
	ErrHookLoad      = fmt.Errorf("failed to load hook")
)

// Wrap wraps an error with additional context.
// If the error is nil, Wrap returns nil.
//
// Example:
//
//	if err := someOperation(); err != nil {
//	    return errutils.Wrap(err, "failed to perform operation")
//	}
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
// If the error is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ErrScanWithLocation wraps a scan failure with the location that produced it.
func ErrScanWithLocation(location string, err error) error {
	return fmt.Errorf("%w %q: %w", ErrScan, location, err)
}

// ErrLocationUnresolvableWithName creates an error for a location that cannot be opened.
func ErrLocationUnresolvableWithName(location string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrLocationUnresolvable, location, err)
}

// ErrKeyImportWithLocation wraps a fatal key import failure with the location.
func ErrKeyImportWithLocation(location string, err error) error {
	return fmt.Errorf("%w from %s: %w", ErrKeyImport, location, err)
}

// ErrInvalidKeyLine creates an error for a malformed line in a key file.
func ErrInvalidKeyLine(path string, line int, reason string) error {
	return fmt.Errorf("%w: %s:%d: %s", ErrInvalidKeyFile, path, line, reason)
}

// ErrKeyNotFoundWithName creates an error for a missing key.
func ErrKeyNotFoundWithName(name string) error {
	return fmt.Errorf("%w: %s", ErrKeyNotFound, name)
}

// ErrCacheCorruptWithReason creates a corrupt-cache error with a short reason.
func ErrCacheCorruptWithReason(reason string) error {
	return fmt.Errorf("%w: %s", ErrCacheCorrupt, reason)
}

// ErrCacheIncompatibleWithReason creates an incompatible-cache error with a short reason.
func ErrCacheIncompatibleWithReason(reason string) error {
	return fmt.Errorf("%w: %s", ErrCacheIncompatible, reason)
}

// ErrLocationExistsWithName is a helper to create a wrapped error with the location.
func ErrLocationExistsWithName(location string) error {
	return fmt.Errorf("%w: %s", ErrLocationExists, location)
}

// ErrLocationNotFoundWithName is a helper to create a wrapped error with the location.
func ErrLocationNotFoundWithName(location string) error {
	return fmt.Errorf("%w: %s", ErrLocationNotFound, location)
}

// ErrUnknownFormatWithName creates an error for an unrecognised format name.
func ErrUnknownFormatWithName(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// ErrInvalidOutputFormatWithDetails is a helper to create a wrapped error with the invalid format and valid options.
func ErrInvalidOutputFormatWithDetails(format string) error {
	return fmt.Errorf("%w: '%s', must be one of: text, json, yaml", ErrInvalidOutputFormat, format)
}

// ErrInvalidLogFormatWithDetails is a helper to create a wrapped error with the invalid format and valid options.
func ErrInvalidLogFormatWithDetails(format string) error {
	return fmt.Errorf("%w: '%s', must be one of: text, json, pretty", ErrInvalidLogFormat, format)
}

// ErrInvalidLogLevelWithDetails is a helper to create a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: debug, info, warn, error", ErrInvalidLogLevel, level)
}

// ErrInvalidLanguageWithValue creates an error for an unsupported language code or tag.
func ErrInvalidLanguageWithValue(value string) error {
	return fmt.Errorf("%w: %s", ErrInvalidLanguage, value)
}
