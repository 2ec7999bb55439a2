package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/modelparity/modelparity/internal/discovery"
	"github.com/modelparity/modelparity/internal/server"
	"github.com/modelparity/modelparity/internal/watch"
	"github.com/modelparity/modelparity/pkg/catalog"
	"github.com/modelparity/modelparity/pkg/diff"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Addr  string
	Watch bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the comparison as a JSON API",
		Long: `Build both inventories, compare them and serve the result over HTTP:

  GET /api/health                  server state and loaded labels
  GET /api/inventories/{side}      full inventory snapshot (left|right)
  GET /api/models/{side}/{key}     one model record
  GET /api/comparison              the full comparison report

With --watch the comparison rebuilds whenever a model file changes in
either repository.`,
		Example: `  # Serve the configured comparison
  modelparity serve

  # Custom address, rebuilding on model changes
  modelparity serve --addr :9000 --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default: :8722)")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Rebuild the comparison on model changes")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cctx := NewCommandContext(cmd)
	cfg := cctx.Cfg

	srvCfg := cfg.GetServerConfig()
	if opts.Addr != "" {
		srvCfg.Addr = opts.Addr
	}
	watchFiles := srvCfg.Watch
	if cmd.Flags().Changed("watch") {
		watchFiles = opts.Watch
	}

	if err := cfg.ValidateRepoPaths(); err != nil {
		return err
	}

	strategy, err := buildStrategy(cfg)
	if err != nil {
		return err
	}
	comparator := diff.NewComparator(diff.Options{
		Strategy:      strategy,
		LayerPriority: cfg.Layers,
		Logger:        cctx.Logger,
	})

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

	srv := server.New(server.Config{
		Addr:   srvCfg.Addr,
		Logger: cctx.Logger,
	})

	rebuild := func(ctx context.Context) error {
		var leftInv, rightInv *catalog.Inventory
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			leftInv, _, err = cctx.loadSide(gctx, cache, side{path: cfg.LeftPath, label: cfg.LeftLabel})
			return err
		})
		g.Go(func() error {
			var err error
			rightInv, _, err = cctx.loadSide(gctx, cache, side{path: cfg.RightPath, label: cfg.RightLabel})
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}
		srv.Update(leftInv, rightInv, comparator.Compare(leftInv, rightInv))
		return nil
	}

	if err := rebuild(cmd.Context()); err != nil {
		return err
	}

	cctx.Renderer.Success(fmt.Sprintf("Serving comparison API on %s", srvCfg.Addr))
	cctx.Renderer.Muted("Press Ctrl+C to stop")

	g, gctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return srv.Serve(gctx)
	})

	if watchFiles {
		w, err := watch.New(watch.Options{
			Dirs:   []string{cfg.LeftPath, cfg.RightPath},
			Logger: cctx.Logger,
		})
		if err != nil {
			return err
		}
		g.Go(func() error {
			return w.Run(gctx, func() {
				cctx.Logger.Info("model change detected, rebuilding comparison")
				if err := rebuild(gctx); err != nil {
					cctx.Logger.Error("rebuild failed", "error", err)
				}
			})
		})
	}

	return g.Wait()
}
