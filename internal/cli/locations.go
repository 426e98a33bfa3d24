package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/glorpus-work/romcat/internal/logger"
	"github.com/glorpus-work/romcat/pkg/location"
	"github.com/spf13/cobra"
)

// NewLocationsCmd creates the locations command with subcommands.
func NewLocationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Manage scan locations",
		Long: `List, add and remove the locations scanned for packages.

A location is a directory, an archive holding packages, or a single package
file. Locations are scanned in the order they were added. Changing the list
makes the next refresh bypass the cache.`,
	}

	cmd.AddCommand(
		newLocationsListCmd(),
		newLocationsAddCmd(),
		newLocationsRemoveCmd(),
	)

	return cmd
}

func newLocationsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scan locations",
		Args:  cobra.NoArgs,
		RunE:  runLocationsList,
	}
}

func newLocationsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add LOCATION...",
		Short: "Add scan locations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runLocationsAdd(args)
		},
	}
}

func newLocationsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove LOCATION...",
		Aliases: []string{"rm"},
		Short:   "Remove scan locations",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runLocationsRemove(args)
		},
	}
}

type locationInfo struct {
	Location string `json:"location" yaml:"location"`
	Resolved string `json:"resolved" yaml:"resolved"`
}

func runLocationsList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	infos := make([]locationInfo, 0, len(cfg.Locations))
	for _, loc := range cfg.Locations {
		resolved, err := location.Resolve(loc)
		if err != nil {
			resolved = ""
		}
		infos = append(infos, locationInfo{Location: loc, Resolved: resolved})
	}

	return writeOutput(cmd.OutOrStdout(), cfg, infos, func(w io.Writer) error {
		if len(infos) == 0 {
			_, err := fmt.Fprintln(w, "No locations configured")
			return err
		}
		tabWriter := tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
		_, _ = fmt.Fprintln(tabWriter, "#\tLOCATION\tRESOLVED")
		for i, info := range infos {
			_, _ = fmt.Fprintf(tabWriter, "%d\t%s\t%s\n", i+1, info.Location, info.Resolved)
		}
		return tabWriter.Flush()
	})
}

func runLocationsAdd(locations []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	for _, loc := range locations {
		if err := cfg.AddLocation(loc); err != nil {
			return fmt.Errorf("failed to add location: %w", err)
		}
	}

	if err := saveConfig(cfg); err != nil {
		return err
	}

	logger.Success("Locations added", logger.Fields{"count": len(locations)})
	return nil
}

func runLocationsRemove(locations []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	for _, loc := range locations {
		if err := cfg.RemoveLocation(loc); err != nil {
			return fmt.Errorf("failed to remove location: %w", err)
		}
	}

	if err := saveConfig(cfg); err != nil {
		return err
	}

	logger.Success("Locations removed", logger.Fields{"count": len(locations)})
	return nil
}
