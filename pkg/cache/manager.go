package cache

import (
	"fmt"
	"os"
	"time"

	"github.com/glorpus-work/romcat/pkg/errutils"
	"github.com/glorpus-work/romcat/pkg/model"
)

// Manager defines the cache management operations offered by the CLI.
type Manager interface {
	Clean() (*CleanResult, error)
	GetInfo() (*Info, error)
	GetPath() string
}

// CleanResult contains information about what was cleaned.
type CleanResult struct {
	Path       string
	TotalFreed int64
}

// Info describes the cache file.
type Info struct {
	Path    string
	Exists  bool
	Size    int64
	ModTime time.Time
	// Schema is the schema version from the file header.
	Schema string
	// Counts holds the number of entries per format when the file is valid.
	Counts map[model.Format]int
	// Problem explains why the file cannot be used, if it cannot.
	Problem string
}

// DefaultManager implements Manager on top of a cache File.
type DefaultManager struct {
	file *File
}

// NewManager creates a cache manager for the cache file at path.
func NewManager(path string) *DefaultManager {
	return &DefaultManager{file: NewFile(path)}
}

// Clean removes the cache file.
func (cm *DefaultManager) Clean() (*CleanResult, error) {
	freed, err := cm.file.Remove()
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", errutils.ErrCacheClean, cm.file.Path(), err)
	}
	return &CleanResult{Path: cm.file.Path(), TotalFreed: freed}, nil
}

// GetInfo returns information about the cache file. A missing or unusable
// file is reported in the result rather than as an error.
func (cm *DefaultManager) GetInfo() (*Info, error) {
	info := &Info{Path: cm.file.Path()}

	stat, err := os.Stat(cm.file.Path())
	if os.IsNotExist(err) {
		return info, nil
	}
	if err != nil {
		return nil, errutils.Wrapf(err, "failed to stat cache file %s", cm.file.Path())
	}
	info.Exists = true
	info.Size = stat.Size()
	info.ModTime = stat.ModTime()

	data, err := os.ReadFile(cm.file.Path())
	if err != nil {
		return nil, errutils.Wrapf(err, "failed to read cache file %s", cm.file.Path())
	}
	if header, _, err := DecodeHeader(data); err == nil {
		info.Schema = header.Schema
	}
	catalog, err := Decode(data)
	if err != nil {
		info.Problem = err.Error()
		return info, nil
	}
	info.Counts = catalog.Counts()
	return info, nil
}

// GetPath returns the cache file path.
func (cm *DefaultManager) GetPath() string {
	return cm.file.Path()
}
