package cli

import (
	"fmt"
	"io"

	"github.com/glorpus-work/romcat/pkg/cache"
	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command with subcommands
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the catalog cache",
		Long:  "Clean, show information about, and locate the catalog cache file",
	}

	cmd.AddCommand(
		newCacheCleanCmd(),
		newCacheInfoCmd(),
		newCachePathCmd(),
	)

	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the catalog cache",
		Long:  "Remove the catalog cache file so the next refresh scans every location",
		Args:  cobra.NoArgs,
		RunE:  runCacheClean,
	}
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Long:  "Display the path, size, schema version and entry counts of the catalog cache",
		Args:  cobra.NoArgs,
		RunE:  runCacheInfo,
	}
}

func newCachePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the cache file path",
		Args:  cobra.NoArgs,
		RunE:  runCachePath,
	}
}

func newCacheOperation() (*cache.Operation, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cache.NewOperation(cache.NewManager(cfg.GetCacheFilePath())), nil
}

func runCacheClean(cmd *cobra.Command, _ []string) error {
	cacheOp, err := newCacheOperation()
	if err != nil {
		return err
	}

	result, err := cacheOp.Clean()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), result)
	return err
}

// cacheInfoOutput is the structured form of cache info.
type cacheInfoOutput struct {
	Path    string         `json:"path" yaml:"path"`
	Exists  bool           `json:"exists" yaml:"exists"`
	Size    int64          `json:"size" yaml:"size"`
	Schema  string         `json:"schema,omitempty" yaml:"schema,omitempty"`
	Entries map[string]int `json:"entries,omitempty" yaml:"entries,omitempty"`
	Problem string         `json:"problem,omitempty" yaml:"problem,omitempty"`
}

func runCacheInfo(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	manager := cache.NewManager(cfg.GetCacheFilePath())
	cacheOp := cache.NewOperation(manager)

	info, err := manager.GetInfo()
	if err != nil {
		return err
	}

	out := cacheInfoOutput{
		Path:    info.Path,
		Exists:  info.Exists,
		Size:    info.Size,
		Schema:  info.Schema,
		Problem: info.Problem,
	}
	if len(info.Counts) > 0 {
		out.Entries = make(map[string]int, len(info.Counts))
		for format, n := range info.Counts {
			out.Entries[format.String()] = n
		}
	}

	return writeOutput(cmd.OutOrStdout(), cfg, out, func(w io.Writer) error {
		text, err := cacheOp.GetInfo()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, text)
		return err
	})
}

func runCachePath(cmd *cobra.Command, _ []string) error {
	cacheOp, err := newCacheOperation()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cacheOp.GetPath())
	return err
}
