package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/glorpus-work/romcat/pkg/errutils"
	"github.com/glorpus-work/romcat/pkg/model"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	var (
		opts   refreshOptions
		format string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		Long: `List the entries of the ROM catalog grouped by package format.

The catalog is refreshed first, from the cache file when it is usable.
Use --format to show a single format (NRO, NSO, NCA, XCI or NSP).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Only list entries of this format (defaults to config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Scan locations even if a cache file exists")
	cmd.Flags().StringVar(&opts.language, "language", "", "System language code or tag (defaults to config)")

	return cmd
}

func runList(cmd *cobra.Command, opts refreshOptions, formatName string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if formatName == "" {
		formatName = cfg.Settings.FormatFilter
	}
	var filter model.Format
	if formatName != "" {
		f, ok := model.ParseFormat(formatName)
		if !ok {
			return errutils.ErrUnknownFormatWithName(formatName)
		}
		filter = f
	}

	state, err := refreshCatalog(cmd.Context(), cfg, opts)
	if err != nil {
		return fmt.Errorf("failed to refresh catalog: %w", err)
	}

	catalog := state.Catalog()
	if filter != "" {
		catalog = catalog.Only(filter)
	}

	entries := make([]model.Entry, 0, catalog.Len())
	for _, f := range catalog.Formats() {
		entries = append(entries, catalog[f]...)
	}

	return writeOutput(cmd.OutOrStdout(), cfg, entries, func(w io.Writer) error {
		if len(entries) == 0 {
			_, err := fmt.Fprintln(w, "No entries found")
			return err
		}

		tabWriter := tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
		_, _ = fmt.Fprintln(tabWriter, "FORMAT\tTITLE\tAUTHOR\tVERSION\tPATH")
		for _, e := range entries {
			_, _ = fmt.Fprintf(tabWriter, "%s\t%s\t%s\t%s\t%s\n",
				e.Format, truncate(e.Title, MaxTitleLength), e.Author, e.Version, e.Path)
		}
		return tabWriter.Flush()
	})
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
