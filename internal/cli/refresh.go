package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/glorpus-work/romcat/internal/logger"
	"github.com/glorpus-work/romcat/pkg/model"
	"github.com/spf13/cobra"
)

// NewRefreshCmd creates the refresh command.
func NewRefreshCmd() *cobra.Command {
	var opts refreshOptions

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the ROM catalog",
		Long: `Refresh the ROM catalog from the configured locations.

The catalog is read from the cache file when it is usable. Use --no-cache to
scan every location and rewrite the cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRefresh(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Scan locations even if a cache file exists")
	cmd.Flags().StringVar(&opts.language, "language", "", "System language code or tag (defaults to config)")

	return cmd
}

// refreshSummary is the structured result of the refresh command.
type refreshSummary struct {
	Source  string         `json:"source" yaml:"source"`
	Entries int            `json:"entries" yaml:"entries"`
	Formats map[string]int `json:"formats" yaml:"formats"`
}

func runRefresh(cmd *cobra.Command, opts refreshOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	state, err := refreshCatalog(cmd.Context(), cfg, opts)
	if err != nil {
		return fmt.Errorf("failed to refresh catalog: %w", err)
	}

	catalog := state.Catalog()
	summary := refreshSummary{
		Source:  "scan",
		Entries: catalog.Len(),
		Formats: make(map[string]int),
	}
	if state.FromCache() {
		summary.Source = "cache"
	}
	for format, n := range catalog.Counts() {
		summary.Formats[format.String()] = n
	}

	logger.Debug("Catalog refreshed", logger.Fields{"source": summary.Source, "entries": summary.Entries})

	return writeOutput(cmd.OutOrStdout(), cfg, summary, func(w io.Writer) error {
		tabWriter := tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
		_, _ = fmt.Fprintln(tabWriter, "FORMAT\tENTRIES")
		for _, format := range model.Formats() {
			if n := summary.Formats[format.String()]; n > 0 {
				_, _ = fmt.Fprintf(tabWriter, "%s\t%d\n", format, n)
			}
		}
		_, _ = fmt.Fprintf(tabWriter, "TOTAL\t%d\n", summary.Entries)
		if err := tabWriter.Flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "Loaded from %s.\n", summary.Source)
		return err
	})
}
