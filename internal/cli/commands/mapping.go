package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modelparity/modelparity/internal/discovery"
	"github.com/modelparity/modelparity/internal/report"
	"github.com/modelparity/modelparity/internal/watch"
	"github.com/modelparity/modelparity/pkg/catalog"
)

// MappingOptions holds options for the mapping command.
type MappingOptions struct {
	Out   string
	Watch bool
}

// NewMappingCommand creates the mapping command.
func NewMappingCommand() *cobra.Command {
	opts := &MappingOptions{}

	cmd := &cobra.Command{
		Use:   "mapping [path]",
		Short: "Generate the column mapping document for one repository",
		Long: `Flatten a repository inventory into one row per column: layer, domain,
model, column name, logical name, rule label, transformation logic,
accepted values, upstream sources, data type and owning team.

Teams come from the teams mapping in modelparity.yaml, keyed by domain.
Domains without an entry fall back to the default team.

With --out the document goes to a file: a .csv extension selects CSV,
anything else markdown. Without --out it renders to stdout in the
active output mode.`,
		Example: `  # Mapping document for the configured left repository
  modelparity mapping

  # Write a CSV for the data governance sheet
  modelparity mapping ./bank_a --out mapping.csv

  # Keep the document current while editing models
  modelparity mapping ./bank_a --out mapping.csv --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMapping(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "Write the document to this file (.csv selects CSV)")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Regenerate whenever model files change")

	return cmd
}

func runMapping(cmd *cobra.Command, args []string, opts *MappingOptions) error {
	cctx := NewCommandContext(cmd)
	cfg := cctx.Cfg

	path := cfg.LeftPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("repository path is required\nHint: pass it as an argument or set left_path in modelparity.yaml")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("repository does not exist: %s", path)
	}

	var cache discovery.Cache
	if !cfg.NoCache {
		st, err := openStore(cfg)
		if err != nil {
			cctx.Renderer.Warning(fmt.Sprintf("cache unavailable: %v", err))
		} else {
			defer st.Close()
			cache = st
		}
	}

	teams := report.TeamMapping(cfg.Teams)

	generate := func() error {
		inv, res, err := cctx.loadSide(cmd.Context(), cache, side{path: path})
		if err != nil {
			return err
		}
		cctx.reportBuild(res)

		if opts.Out != "" {
			if err := writeMappingFile(opts.Out, inv, teams); err != nil {
				return err
			}
			cctx.Renderer.Success(fmt.Sprintf("Mapping written to %s", opts.Out))
			return nil
		}
		return renderMapping(cctx.Renderer, inv, teams)
	}

	if err := generate(); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}

	w, err := watch.New(watch.Options{
		Dirs:   []string{path},
		Logger: cctx.Logger,
	})
	if err != nil {
		return err
	}

	cctx.Renderer.Muted(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", path))
	return w.Run(cmd.Context(), func() {
		if err := generate(); err != nil {
			cctx.Renderer.Error(err.Error())
		}
	})
}

// writeMappingFile writes the mapping document to path, CSV for .csv
// files and markdown for everything else.
func writeMappingFile(path string, inv *catalog.Inventory, teams report.TeamMapping) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mapping file: %w", err)
	}

	var werr error
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		werr = report.WriteMappingCSV(f, inv, teams)
	} else {
		werr = report.WriteMappingMarkdown(f, inv, teams)
	}
	if werr != nil {
		_ = f.Close()
		return fmt.Errorf("write mapping: %w", werr)
	}
	return f.Close()
}
