package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/glorpus-work/romcat/internal/logger"
	"github.com/glorpus-work/romcat/pkg/model"
)

// Operation renders cache management results for the CLI.
type Operation struct {
	manager Manager
}

// NewOperation creates a new cache operation instance.
func NewOperation(manager Manager) *Operation {
	return &Operation{
		manager: manager,
	}
}

// Clean removes the cache file and describes the result.
func (op *Operation) Clean() (string, error) {
	logger.Debug("Cleaning cache", logger.Fields{"path": op.manager.GetPath()})

	result, err := op.manager.Clean()
	if err != nil {
		return "", fmt.Errorf("failed to clean cache: %w", err)
	}

	if result.TotalFreed == 0 {
		return "No cache file was removed.", nil
	}
	return fmt.Sprintf("Successfully cleaned cache. Freed %s of disk space.", formatBytes(result.TotalFreed)), nil
}

// GetInfo describes the cache file.
func (op *Operation) GetInfo() (string, error) {
	info, err := op.manager.GetInfo()
	if err != nil {
		return "", fmt.Errorf("failed to get cache info: %w", err)
	}

	if !info.Exists {
		return fmt.Sprintf(`Cache Information:
  Path:     %s
  Status:   not present`, info.Path), nil
	}

	status := "valid"
	if info.Problem != "" {
		status = "unusable (" + info.Problem + ")"
	}
	schema := info.Schema
	if schema == "" {
		schema = "unknown"
	}

	return fmt.Sprintf(`Cache Information:
  Path:     %s
  Status:   %s
  Size:     %s
  Modified: %s
  Schema:   %s
  Entries:  %s`,
		info.Path,
		status,
		formatBytes(info.Size),
		info.ModTime.Format(time.RFC1123),
		schema,
		formatCounts(info.Counts),
	), nil
}

// GetPath returns the cache file path.
func (op *Operation) GetPath() string {
	return op.manager.GetPath()
}

func formatCounts(counts map[model.Format]int) string {
	if len(counts) == 0 {
		return "0"
	}
	total := 0
	parts := make([]string, 0, len(counts))
	for _, f := range model.Formats() {
		if n := counts[f]; n > 0 {
			total += n
			parts = append(parts, fmt.Sprintf("%s %d", f, n))
		}
	}
	return fmt.Sprintf("%d (%s)", total, strings.Join(parts, ", "))
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"K", "M", "G", "T", "P", "E"}
	if exp < len(units) {
		return fmt.Sprintf("%.1f %sB", float64(bytes)/float64(div), units[exp])
	}
	return fmt.Sprintf("%d B", bytes)
}
