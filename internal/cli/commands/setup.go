package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modelparity/modelparity/internal/cli/config"
	"github.com/modelparity/modelparity/internal/cli/output"
	"github.com/modelparity/modelparity/internal/discovery"
	"github.com/modelparity/modelparity/internal/report"
	"github.com/modelparity/modelparity/internal/store"
	"github.com/modelparity/modelparity/pkg/catalog"
	"github.com/modelparity/modelparity/pkg/diff"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext assembles the shared command dependencies from the
// loaded configuration and the command's writers.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	return &config.Config{
		LeftPath:         os.Getenv("MODELPARITY_LEFT_PATH"),
		RightPath:        os.Getenv("MODELPARITY_RIGHT_PATH"),
		Layers:           config.DefaultLayers(),
		Workers:          config.DefaultWorkers,
		Strategy:         getEnvOrDefault("MODELPARITY_STRATEGY", config.DefaultStrategy),
		SimilarThreshold: config.DefaultSimilarThreshold,
		OverlapPercent:   config.DefaultOverlapPercent,
		StorePath:        getEnvOrDefault("MODELPARITY_STORE_PATH", config.DefaultStoreFile),
		Verbose:          os.Getenv("MODELPARITY_VERBOSE") == "true",
		OutputFormat:     os.Getenv("MODELPARITY_OUTPUT"),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// openStore opens the history database, creating its directory and
// applying pending migrations. The caller closes it.
func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	storeDir := filepath.Dir(cfg.StorePath)
	if storeDir != "." && storeDir != "" {
		if err := os.MkdirAll(storeDir, 0750); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	st := store.NewSQLiteStore()
	if err := st.Open(cfg.StorePath); err != nil {
		return nil, err
	}
	if err := st.Migrate(); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// side is one comparison input: a SQL tree to walk, or a previously
// written snapshot file that replaces the walk entirely.
type side struct {
	path     string
	label    string
	snapshot string
}

// loadSide produces the inventory for one side. The build result is nil
// when the side came from a snapshot file.
func (c *CommandContext) loadSide(ctx context.Context, cache discovery.Cache, s side) (*catalog.Inventory, *discovery.Result, error) {
	if s.snapshot != "" {
		f, err := os.Open(s.snapshot)
		if err != nil {
			return nil, nil, fmt.Errorf("open snapshot: %w", err)
		}
		defer f.Close()

		inv, err := catalog.LoadSnapshot(f)
		if err != nil {
			return nil, nil, fmt.Errorf("load snapshot %s: %w", s.snapshot, err)
		}
		return inv, nil, nil
	}

	b, err := discovery.NewBuilder(discovery.Options{
		Root:    s.path,
		Label:   s.label,
		Layers:  c.Cfg.Layers,
		Workers: c.Cfg.Workers,
		Cache:   cache,
		Logger:  c.Logger,
	})
	if err != nil {
		return nil, nil, err
	}

	res, err := b.Build(ctx)
	if err != nil {
		return nil, nil, err
	}
	return res.Inventory, res, nil
}

// writeSnapshotFile writes an inventory snapshot to path.
func writeSnapshotFile(path string, inv *catalog.Inventory) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := inv.WriteSnapshot(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	return f.Close()
}

// reportBuild surfaces warnings and the build summary on stderr so
// stdout stays parseable.
func (c *CommandContext) reportBuild(res *discovery.Result) {
	if res == nil {
		return
	}
	for _, w := range res.Warnings {
		c.Renderer.Warning(fmt.Sprintf("%s: %s", w.Path, w.Message))
	}
	c.Renderer.Muted(res.Summary())
}

// buildStrategy maps the configured strategy name onto a comparator
// strategy with its threshold applied.
func buildStrategy(cfg *config.Config) (diff.Strategy, error) {
	switch cfg.Strategy {
	case "", "logic":
		return &diff.LogicDiffStrategy{SimilarThreshold: cfg.SimilarThreshold}, nil
	case "schema":
		return &diff.SchemaOverlapStrategy{SimilarPercent: cfg.OverlapPercent}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (valid: logic, schema)", cfg.Strategy)
	}
}

// renderInventory writes an inventory to stdout in the renderer's
// effective mode.
func renderInventory(r *output.Renderer, inv *catalog.Inventory) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return report.WriteInventoryJSON(r.Out(), inv)
	case output.ModeMarkdown:
		return report.WriteInventoryMarkdown(r.Out(), inv)
	default:
		return report.WriteInventoryTable(r.Out(), inv)
	}
}

// renderComparison writes a comparison report to stdout in the
// renderer's effective mode.
func renderComparison(r *output.Renderer, rep *diff.Report) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return report.WriteComparisonJSON(r.Out(), rep)
	case output.ModeMarkdown:
		return report.WriteComparisonMarkdown(r.Out(), rep)
	default:
		return report.WriteComparisonTable(r.Out(), rep)
	}
}

// renderMapping writes the column mapping document to stdout in the
// renderer's effective mode. JSON mode falls back to CSV rows encoded
// as arrays, keeping every mode machine-readable.
func renderMapping(r *output.Renderer, inv *catalog.Inventory, teams report.TeamMapping) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(report.MappingRows(inv, teams))
	case output.ModeMarkdown:
		return report.WriteMappingMarkdown(r.Out(), inv, teams)
	default:
		return report.WriteMappingTable(r.Out(), inv, teams)
	}
}
