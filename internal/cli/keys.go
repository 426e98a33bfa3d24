package cli

import (
	"fmt"
	"io"

	"github.com/glorpus-work/romcat/internal/logger"
	"github.com/glorpus-work/romcat/pkg/keys"
	"github.com/spf13/cobra"
)

// NewKeysCmd creates the keys command with subcommands.
func NewKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage imported console keys",
		Long: `Inspect the key store. Key files (prod.keys, title.keys) found at the
root of a location are imported into the store on every scan.`,
	}

	cmd.AddCommand(
		newKeysListCmd(),
		newKeysImportCmd(),
	)

	return cmd
}

func newKeysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the names of imported keys",
		Args:  cobra.NoArgs,
		RunE:  runKeysList,
	}
}

func newKeysImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import LOCATION...",
		Short: "Import key files without scanning",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runKeysImport,
	}
}

type keysOutput struct {
	Dir  string   `json:"dir" yaml:"dir"`
	Keys []string `json:"keys" yaml:"keys"`
}

func runKeysList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := keys.NewStore(cfg.GetKeysDir())
	keyset, err := store.Keys()
	if err != nil {
		return fmt.Errorf("failed to load key store: %w", err)
	}

	out := keysOutput{Dir: store.Dir(), Keys: keyset.Names()}

	return writeOutput(cmd.OutOrStdout(), cfg, out, func(w io.Writer) error {
		if len(out.Keys) == 0 {
			_, err := fmt.Fprintf(w, "No keys imported (%s)\n", out.Dir)
			return err
		}
		for _, name := range out.Keys {
			if _, err := fmt.Fprintln(w, name); err != nil {
				return err
			}
		}
		return nil
	})
}

func runKeysImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := keys.NewStore(cfg.GetKeysDir())
	for _, loc := range args {
		if err := store.Import(cmd.Context(), loc); err != nil {
			return err
		}
	}

	keyset, err := store.Keys()
	if err != nil {
		return fmt.Errorf("failed to load key store: %w", err)
	}
	logger.Success("Keys imported", logger.Fields{"dir": store.Dir(), "keys": len(keyset)})
	return nil
}
