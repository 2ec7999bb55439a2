package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modelparity/modelparity/internal/discovery"
)

// InventoryOptions holds options for the inventory command.
type InventoryOptions struct {
	Label    string
	Snapshot string
}

// NewInventoryCommand creates the inventory command.
func NewInventoryCommand() *cobra.Command {
	opts := &InventoryOptions{}

	cmd := &cobra.Command{
		Use:   "inventory [path]",
		Short: "Build the model inventory of one repository",
		Long: `Walk a repository's layer directories, extract the column projection
of every model file and print the resulting inventory.

Without a path argument the configured left repository is used.`,
		Example: `  # Inventory of the configured left repository
  modelparity inventory

  # Explicit path with a label
  modelparity inventory ./bank_a --label bank_a

  # Write a snapshot file for later comparisons
  modelparity inventory ./bank_a --snapshot bank_a.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInventory(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Label, "label", "l", "", "Inventory label (default: directory name)")
	cmd.Flags().StringVar(&opts.Snapshot, "snapshot", "", "Write the inventory snapshot to this file")

	return cmd
}

func runInventory(cmd *cobra.Command, args []string, opts *InventoryOptions) error {
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

	inv, res, err := cctx.loadSide(cmd.Context(), cache, side{path: path, label: opts.Label})
	if err != nil {
		return err
	}
	cctx.reportBuild(res)

	if opts.Snapshot != "" {
		if err := writeSnapshotFile(opts.Snapshot, inv); err != nil {
			return err
		}
		cctx.Renderer.Success(fmt.Sprintf("Snapshot written to %s", opts.Snapshot))
	}

	return renderInventory(cctx.Renderer, inv)
}
