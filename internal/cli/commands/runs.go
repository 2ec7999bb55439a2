package commands

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/modelparity/modelparity/internal/cli/output"
	"github.com/modelparity/modelparity/internal/store"
)

// NewRunsCommand creates the runs command group.
func NewRunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse stored comparison runs",
		Long: `Browse the comparison history persisted by compare --save.

Runs live in the history database next to the model cache.`,
	}
	cmd.AddCommand(newRunsListCommand())
	cmd.AddCommand(newRunsShowCommand())
	return cmd
}

func newRunsListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent comparison runs",
		Example: `  # Twenty most recent runs
  modelparity runs list

  # Machine-readable history
  modelparity runs list --limit 100 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRunsList(cmd, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Most recent runs to list")
	return cmd
}

func runRunsList(cmd *cobra.Command, limit int) error {
	cctx := NewCommandContext(cmd)

	st, err := openStore(cctx.Cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		cctx.Renderer.Muted("No runs stored yet. Use compare --save to persist one.")
		return nil
	}

	r := cctx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(runs)
	case output.ModeMarkdown:
		writeRunsMarkdown(r, runs)
		return nil
	default:
		writeRunsTable(r, runs)
		return nil
	}
}

func writeRunsTable(r *output.Renderer, runs []*store.Run) {
	t := table.NewWriter()
	t.SetOutputMirror(r.Out())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Started", "Comparison", "Strategy", "Matched", "Divergent", "Exclusive", "Duration"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%s vs %s", run.LeftLabel, run.RightLabel),
			run.Strategy,
			run.Matched,
			run.Divergent,
			fmt.Sprintf("%d/%d", run.LeftOnly, run.RightOnly),
			run.Duration.Round(time.Millisecond),
		})
	}
	t.Render()
	r.Printf("(%d runs)\n", len(runs))
}

func writeRunsMarkdown(r *output.Renderer, runs []*store.Run) {
	r.Println("| ID | Started | Comparison | Strategy | Matched | Divergent | Exclusive | Duration |")
	r.Println("| --- | --- | --- | --- | --- | --- | --- | --- |")
	for _, run := range runs {
		r.Printf("| %s | %s | %s vs %s | %s | %d | %d | %d/%d | %s |\n",
			run.ID,
			run.StartedAt.UTC().Format(time.RFC3339),
			run.LeftLabel, run.RightLabel,
			run.Strategy,
			run.Matched, run.Divergent,
			run.LeftOnly, run.RightOnly,
			run.Duration.Round(time.Millisecond),
		)
	}
}

func newRunsShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored run with its full report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsShow(cmd, args[0])
		},
	}
	return cmd
}

func runRunsShow(cmd *cobra.Command, id string) error {
	cctx := NewCommandContext(cmd)

	st, err := openStore(cctx.Cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.GetRun(id)
	if err != nil {
		return err
	}

	r := cctx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(run)
	}

	r.Printf("Run %s | started %s | took %s\n\n",
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.Duration.Round(time.Millisecond))
	return renderComparison(r, run.Report)
}
