package cli

import (
	"encoding/json"
	"io"

	"github.com/glorpus-work/romcat/pkg/config"
	"github.com/glorpus-work/romcat/pkg/errutils"
	"gopkg.in/yaml.v3"
)

// writeOutput renders v in the configured output format. text is used for
// the text format.
func writeOutput(w io.Writer, cfg *config.Config, v interface{}, text func(io.Writer) error) error {
	switch cfg.Settings.OutputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(config.YAMLIndent)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return text(w)
	default:
		return errutils.ErrInvalidOutputFormatWithDetails(cfg.Settings.OutputFormat)
	}
}
