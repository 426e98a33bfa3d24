package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/glorpus-work/romcat/internal/logger"
	"github.com/glorpus-work/romcat/pkg/errutils"
	"github.com/glorpus-work/romcat/pkg/fsutil"
	"github.com/glorpus-work/romcat/pkg/hooks"
	"github.com/spf13/cobra"
)

// NewHooksCmd creates the hooks command with subcommands.
func NewHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Manage refresh hook scripts",
		Long: `Tengo scripts in the hooks directory run around a refresh:
pre-scan.tengo before each location is scanned and post-refresh.tengo after
the catalog is loaded. Hook failures are logged and never fail a refresh.`,
	}

	cmd.AddCommand(
		newHooksListCmd(),
		newHooksInitCmd(),
	)

	return cmd
}

func newHooksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List hook scripts",
		Args:  cobra.NoArgs,
		RunE:  runHooksList,
	}
}

func newHooksInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init HOOK_TYPE",
		Short: "Create a hook script from a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runHooksInit(hooks.HookType(args[0]), force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing hook script")

	return cmd
}

type hookInfo struct {
	Type    string `json:"type" yaml:"type"`
	Path    string `json:"path" yaml:"path"`
	Present bool   `json:"present" yaml:"present"`
}

func runHooksList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	manager := hooks.NewHookManager()
	if err := hooks.LoadHooksFromDir(manager, cfg.GetHooksDir()); err != nil {
		logger.Warn("Some hooks could not be loaded", logger.Fields{"error": err.Error()})
	}

	infos := make([]hookInfo, 0, len(hooks.Types))
	for _, hookType := range hooks.Types {
		infos = append(infos, hookInfo{
			Type:    string(hookType),
			Path:    hooks.HookPath(cfg.GetHooksDir(), hookType),
			Present: manager.HasHook(hookType),
		})
	}

	return writeOutput(cmd.OutOrStdout(), cfg, infos, func(w io.Writer) error {
		for _, info := range infos {
			status := "absent"
			if info.Present {
				status = "loaded"
			}
			if _, err := fmt.Fprintf(w, "%-13s %-7s %s\n", info.Type, status, info.Path); err != nil {
				return err
			}
		}
		return nil
	})
}

func runHooksInit(hookType hooks.HookType, force bool) error {
	if !hookType.IsValid() {
		return hooks.ErrUnsupportedHookType(hookType)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := hooks.HookPath(cfg.GetHooksDir(), hookType)
	if fsutil.Exists(path) && !force {
		return fmt.Errorf("hook script already exists at %s (use --force to overwrite): %w", path, os.ErrExist)
	}

	err = fsutil.WriteFileAtomic(path, fsutil.FileModeDefault, func(w io.Writer) error {
		_, err := io.WriteString(w, hooks.HookTemplate(hookType))
		return err
	})
	if err != nil {
		return errutils.Wrapf(err, "failed to write hook script %s", path)
	}

	logger.Success("Hook script created", logger.Fields{"type": string(hookType), "path": path})
	return nil
}
