package cli

import (
	"context"
	"fmt"

	"github.com/glorpus-work/romcat/internal/logger"
	"github.com/glorpus-work/romcat/pkg/cache"
	"github.com/glorpus-work/romcat/pkg/catalog"
	"github.com/glorpus-work/romcat/pkg/config"
	"github.com/glorpus-work/romcat/pkg/hooks"
	"github.com/glorpus-work/romcat/pkg/keys"
	"github.com/glorpus-work/romcat/pkg/loader"
	"github.com/glorpus-work/romcat/pkg/model"
	"github.com/glorpus-work/romcat/pkg/scanner"
)

// These variables will be set by the main package
var (
	ConfigPath   *string
	Verbose      *bool
	NoColor      *bool
	OutputFormat *string
)

// loadConfig loads the configuration, applies the global flags and sets up
// logging.
func loadConfig() (*config.Config, error) {
	configPath := getConfigPath()
	if configPath == "" {
		return nil, fmt.Errorf("failed to determine config path")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with CLI flags if provided
	if OutputFormat != nil && *OutputFormat != "" {
		cfg.Settings.OutputFormat = *OutputFormat
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	initLogging(cfg)
	return cfg, nil
}

func initLogging(cfg *config.Config) {
	level := cfg.Settings.LogLevel
	if Verbose != nil && *Verbose {
		level = "debug"
	}
	format := logger.OutputFormat(cfg.Settings.LogFormat)
	if format == logger.FormatPretty && NoColor != nil && *NoColor {
		format = logger.FormatText
	}
	logger.InitLogger(level, format)
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		// An empty path fails with a descriptive error when the config is read
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err.Error()})
		return ""
	}
	return defaultPath
}

// newController wires the refresh controller to the key store, the scanner,
// the cache file and the hook scripts configured in cfg.
func newController(cfg *config.Config) *catalog.Controller {
	keyStore := keys.NewStore(cfg.GetKeysDir())
	cacheFile := cache.NewFile(cfg.GetCacheFilePath())

	hookManager := hooks.NewHookManager()
	if err := hooks.LoadHooksFromDir(hookManager, cfg.GetHooksDir()); err != nil {
		logger.Warn("Some hooks could not be loaded", logger.Fields{"dir": cfg.GetHooksDir(), "error": err.Error()})
	}

	progress := catalog.Hooks{OnEvent: func(e catalog.Event) {
		fields := logger.Fields{"phase": e.Phase, "refresh": e.ID}
		if e.Msg != "" {
			fields["detail"] = e.Msg
		}
		logger.Debug("Refresh progress", fields)
	}}

	return catalog.NewController(
		scanner.New(keyStore),
		keyStore,
		cacheFile,
		catalog.WithHooks(progress),
		catalog.WithHookRunner(hookManager),
	)
}

// refreshOptions are the per-command overrides of a refresh.
type refreshOptions struct {
	noCache  bool
	language string
}

// refreshCatalog runs one refresh to completion and returns the terminal
// state. A pending refresh_required flag bypasses the cache and is cleared
// once a scan succeeds.
func refreshCatalog(ctx context.Context, cfg *config.Config, opts refreshOptions) (model.State, error) {
	lang := cfg.Language()
	if opts.language != "" {
		parsed, err := loader.ParseSystemLanguage(opts.language)
		if err != nil {
			return model.State{}, err
		}
		lang = parsed
	}

	ctrl := newController(cfg)
	req := catalog.Request{
		LoadFromCache: !opts.noCache && !cfg.Settings.RefreshRequired,
		Locations:     cfg.Locations,
		Language:      lang,
	}

	updates, stop := ctrl.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for state := range updates {
			logger.Debug("Catalog state changed", logger.Fields{"state": state.String()})
		}
	}()

	ctrl.Refresh(ctx, req)
	ctrl.Wait()
	stop()
	<-done

	state := ctrl.State()
	if state.Phase() == model.PhaseError {
		return state, state.Err()
	}

	if cfg.Settings.RefreshRequired && !state.FromCache() {
		cfg.Settings.RefreshRequired = false
		if err := cfg.SaveConfig(getConfigPath()); err != nil {
			logger.Warn("Failed to clear refresh_required", logger.Fields{"error": err.Error()})
		}
	}

	return state, nil
}

// saveConfig writes cfg back to the active config path.
func saveConfig(cfg *config.Config) error {
	if err := cfg.SaveConfig(getConfigPath()); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}
