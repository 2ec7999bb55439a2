package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/modelparity/modelparity/internal/discovery"
	"github.com/modelparity/modelparity/internal/report"
	"github.com/modelparity/modelparity/internal/store"
	"github.com/modelparity/modelparity/pkg/catalog"
	"github.com/modelparity/modelparity/pkg/diff"
)

// CompareOptions holds options for the compare command.
type CompareOptions struct {
	Strategy         string
	LeftLabel        string
	RightLabel       string
	LeftSnapshot     string
	RightSnapshot    string
	SimilarThreshold int
	OverlapPercent   float64
	Save             bool
	CSVPath          string
}

// NewCompareCommand creates the compare command.
func NewCompareCommand() *cobra.Command {
	opts := &CompareOptions{}

	cmd := &cobra.Command{
		Use:   "compare [left] [right]",
		Short: "Compare the model inventories of two repositories",
		Long: `Build the inventory of both repositories and classify every model
present on both sides as identical, similar or divergent.

Positional arguments fill the left then the right repository path; a
side backed by a snapshot file drops out of that ordering. Paths fall
back to left_path and right_path from the configuration.`,
		Example: `  # Compare two repository trees
  modelparity compare ./bank_a ./bank_b

  # Schema overlap strategy with a custom threshold
  modelparity compare ./bank_a ./bank_b --strategy schema --overlap-percent 80

  # Compare a pulled warehouse snapshot against a SQL tree
  modelparity compare --left-snapshot warehouse.json ./bank_b --strategy schema

  # Persist the run and export a CSV
  modelparity compare ./bank_a ./bank_b --save --csv comparison.csv`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "Comparison strategy (logic|schema)")
	cmd.Flags().StringVar(&opts.LeftLabel, "left-label", "", "Label for the left side (default: directory name)")
	cmd.Flags().StringVar(&opts.RightLabel, "right-label", "", "Label for the right side (default: directory name)")
	cmd.Flags().StringVar(&opts.LeftSnapshot, "left-snapshot", "", "Load the left side from a snapshot file instead of a SQL tree")
	cmd.Flags().StringVar(&opts.RightSnapshot, "right-snapshot", "", "Load the right side from a snapshot file instead of a SQL tree")
	cmd.Flags().IntVar(&opts.SimilarThreshold, "similar-threshold", 0, "Logic diffs per model still categorized similar")
	cmd.Flags().Float64Var(&opts.OverlapPercent, "overlap-percent", 0, "Lowest column overlap percentage still categorized similar")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "Persist the run in the history database")
	cmd.Flags().StringVar(&opts.CSVPath, "csv", "", "Write a flat CSV export to this file")

	return cmd
}

func runCompare(cmd *cobra.Command, args []string, opts *CompareOptions) error {
	cctx := NewCommandContext(cmd)
	cfg := cctx.Cfg

	// Command flags win over the loaded configuration.
	if cmd.Flags().Changed("strategy") {
		cfg.Strategy = opts.Strategy
	}
	if cmd.Flags().Changed("similar-threshold") {
		cfg.SimilarThreshold = opts.SimilarThreshold
	}
	if cmd.Flags().Changed("overlap-percent") {
		cfg.OverlapPercent = opts.OverlapPercent
	}

	strategy, err := buildStrategy(cfg)
	if err != nil {
		return err
	}

	left := side{path: cfg.LeftPath, label: cfg.LeftLabel, snapshot: opts.LeftSnapshot}
	right := side{path: cfg.RightPath, label: cfg.RightLabel, snapshot: opts.RightSnapshot}
	if opts.LeftLabel != "" {
		left.label = opts.LeftLabel
	}
	if opts.RightLabel != "" {
		right.label = opts.RightLabel
	}

	switch len(args) {
	case 2:
		left.path, right.path = args[0], args[1]
	case 1:
		if opts.LeftSnapshot != "" {
			right.path = args[0]
		} else {
			left.path = args[0]
		}
	}

	if err := checkSide("left", left); err != nil {
		return err
	}
	if err := checkSide("right", right); err != nil {
		return err
	}

	var st *store.SQLiteStore
	if opts.Save || !cfg.NoCache {
		st, err = openStore(cfg)
		if err != nil {
			if opts.Save {
				return err
			}
			cctx.Renderer.Warning(fmt.Sprintf("cache unavailable: %v", err))
		} else {
			defer st.Close()
		}
	}
	var cache discovery.Cache
	if st != nil && !cfg.NoCache {
		cache = st
	}

	startedAt := time.Now()
	sp := cctx.Renderer.NewSpinner("Building inventories")
	sp.Start()

	var (
		leftInv, rightInv *catalog.Inventory
		leftRes, rightRes *discovery.Result
	)
	g, gctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		leftInv, leftRes, err = cctx.loadSide(gctx, cache, left)
		return err
	})
	g.Go(func() error {
		var err error
		rightInv, rightRes, err = cctx.loadSide(gctx, cache, right)
		return err
	})
	if err := g.Wait(); err != nil {
		sp.Fail(err.Error())
		return err
	}

	comparator := diff.NewComparator(diff.Options{
		Strategy:      strategy,
		LayerPriority: cfg.Layers,
		Logger:        cctx.Logger,
	})
	rep := comparator.Compare(leftInv, rightInv)

	sp.Success(fmt.Sprintf("Compared %s against %s: %d matched, %d only left, %d only right",
		rep.LeftLabel, rep.RightLabel,
		rep.Summary.MatchedCount, rep.Summary.LeftOnlyCount, rep.Summary.RightOnlyCount))
	cctx.reportBuild(leftRes)
	cctx.reportBuild(rightRes)

	if opts.Save {
		run, err := st.SaveRun(rep, startedAt, time.Since(startedAt))
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		cctx.Renderer.Success(fmt.Sprintf("Run %s saved to %s", run.ID, cfg.StorePath))
	}

	if opts.CSVPath != "" {
		if err := writeComparisonCSVFile(opts.CSVPath, rep); err != nil {
			return err
		}
		cctx.Renderer.Success(fmt.Sprintf("CSV written to %s", opts.CSVPath))
	}

	return renderComparison(cctx.Renderer, rep)
}

// checkSide validates that one comparison input is usable before any
// tree walk starts.
func checkSide(name string, s side) error {
	if s.snapshot != "" {
		if _, err := os.Stat(s.snapshot); os.IsNotExist(err) {
			return fmt.Errorf("%s snapshot does not exist: %s", name, s.snapshot)
		}
		return nil
	}
	if s.path == "" {
		return fmt.Errorf("%s repository path is not set\nHint: pass it as an argument or set %s_path in modelparity.yaml", name, name)
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("%s repository does not exist: %s", name, s.path)
	}
	return nil
}

func writeComparisonCSVFile(path string, rep *diff.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := report.WriteComparisonCSV(f, rep); err != nil {
		_ = f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}
