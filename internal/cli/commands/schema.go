package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modelparity/modelparity/internal/adapter"
	"github.com/modelparity/modelparity/internal/cli/config"
)

// SchemaPullOptions holds options for the schema pull command.
type SchemaPullOptions struct {
	Driver   string
	DSN      string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Path     string
	Label    string
	Out      string
}

// NewSchemaCommand creates the schema command group.
func NewSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Warehouse schema operations",
	}
	cmd.AddCommand(newSchemaPullCommand())
	return cmd
}

func newSchemaPullCommand() *cobra.Command {
	opts := &SchemaPullOptions{}

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Pull a schema inventory from a live warehouse",
		Long: `Read information_schema.columns through a warehouse adapter and shape
the listing into an inventory: every table becomes a model keyed
layer.domain.table with name-and-type columns and no SQL analysis.

Connection settings fall back to the schema section of
modelparity.yaml; credential values there support ${VAR} expansion.
The resulting snapshot pairs with the schema comparison strategy.`,
		Example: `  # Pull from the configured connection into a snapshot file
  modelparity schema pull --out warehouse.json

  # Explicit Postgres connection
  modelparity schema pull --driver postgres --host db.internal --database core --username reader --out warehouse.json

  # Local DuckDB file
  modelparity schema pull --driver duckdb --path warehouse.duckdb --out warehouse.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSchemaPull(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Driver, "driver", "", fmt.Sprintf("Warehouse driver (%s)", strings.Join(adapter.ListAdapters(), "|")))
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "Full connection string (wins over discrete settings)")
	cmd.Flags().StringVar(&opts.Host, "host", "", "Database host")
	cmd.Flags().IntVar(&opts.Port, "port", 0, "Database port")
	cmd.Flags().StringVar(&opts.Database, "database", "", "Database to pull from")
	cmd.Flags().StringVar(&opts.Username, "username", "", "Database user")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Database password")
	cmd.Flags().StringVar(&opts.Path, "path", "", "Database file for embedded engines")
	cmd.Flags().StringVar(&opts.Label, "label", "", "Inventory label (default: database, then driver name)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Write the snapshot to this file instead of stdout")

	return cmd
}

func runSchemaPull(cmd *cobra.Command, opts *SchemaPullOptions) error {
	cctx := NewCommandContext(cmd)

	acfg := adapterConfig(cctx.Cfg.Schema)
	if opts.Driver != "" {
		acfg.Driver = opts.Driver
	}
	if opts.DSN != "" {
		acfg.DSN = opts.DSN
	}
	if opts.Host != "" {
		acfg.Host = opts.Host
	}
	if cmd.Flags().Changed("port") {
		acfg.Port = opts.Port
	}
	if opts.Database != "" {
		acfg.Database = opts.Database
	}
	if opts.Username != "" {
		acfg.Username = opts.Username
	}
	if opts.Password != "" {
		acfg.Password = opts.Password
	}
	if opts.Path != "" {
		acfg.Path = opts.Path
	}

	if acfg.Driver == "" {
		return fmt.Errorf("driver is required\nHint: pass --driver or set schema.driver in modelparity.yaml (available: %s)",
			strings.Join(adapter.ListAdapters(), ", "))
	}

	a, err := adapter.NewAdapter(acfg, cctx.Logger)
	if err != nil {
		return err
	}

	sp := cctx.Renderer.NewSpinner(fmt.Sprintf("Pulling schema via %s", a.Name()))
	sp.Start()

	ctx := cmd.Context()
	if err := a.Connect(ctx, acfg); err != nil {
		sp.Fail(err.Error())
		return err
	}
	defer a.Close()

	inv, err := adapter.PullInventory(ctx, a, adapter.PullOptions{
		Label:    opts.Label,
		Database: acfg.Database,
	})
	if err != nil {
		sp.Fail(err.Error())
		return err
	}
	sp.Success(fmt.Sprintf("Pulled %d models from %s", inv.Len(), a.Name()))

	if opts.Out != "" {
		if err := writeSnapshotFile(opts.Out, inv); err != nil {
			return err
		}
		cctx.Renderer.Success(fmt.Sprintf("Snapshot written to %s", opts.Out))
		return nil
	}
	return renderInventory(cctx.Renderer, inv)
}

// adapterConfig maps the schema section of the configuration onto an
// adapter configuration.
func adapterConfig(sc *config.SchemaConfig) adapter.Config {
	if sc == nil {
		return adapter.Config{}
	}
	return adapter.Config{
		Driver:   sc.Driver,
		DSN:      sc.DSN,
		Host:     sc.Host,
		Port:     sc.Port,
		Database: sc.Database,
		Username: sc.Username,
		Password: sc.Password,
		Path:     sc.Path,
		Options:  sc.Options,
	}
}
