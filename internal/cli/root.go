// Package cli provides the command-line interface for ModelParity.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/modelparity/modelparity/internal/cli/commands"
	"github.com/modelparity/modelparity/internal/cli/config"
	"github.com/modelparity/modelparity/internal/cli/output"
)

var (
	cfgFile     string
	profileFlag string
	cfg         *config.Config
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// rendererKey is used to store renderer in context.
type rendererKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modelparity",
		Short: "ModelParity - Cross-Repository Model Comparison",
		Long: `ModelParity compares the SQL model inventories of two repositories.

It walks layer directories, extracts every model's column projection,
and classifies matched models as identical, similar or divergent, with
exclusive models grouped per layer. Inventories can also be pulled from
a live warehouse's information_schema for schema-level comparison.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			cfg, err = config.LoadConfigWithProfile(cfgFile, profileFlag, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)

			logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			ctx = context.WithValue(ctx, config.LoggerKey(), logger)

			mode := output.Mode(cfg.OutputFormat)
			renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
			ctx = context.WithValue(ctx, rendererKey{}, renderer)
			cmd.SetContext(ctx)

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
				if profileFlag != "" {
					fmt.Fprintf(os.Stderr, "Using profile: %s\n", profileFlag)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Cross-repository model comparison for SQL warehouses
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./modelparity.yaml)")
	rootCmd.PersistentFlags().StringVarP(&profileFlag, "profile", "p", "", "Named comparison profile from the config file")
	rootCmd.PersistentFlags().String("left", "", "Path to the left repository")
	rootCmd.PersistentFlags().String("right", "", "Path to the right repository")
	rootCmd.PersistentFlags().String("store", "", "Path to the history database")
	rootCmd.PersistentFlags().StringSlice("layers", nil, "Layer directories in priority order")
	rootCmd.PersistentFlags().Int("workers", 0, "Parse parallelism for inventory builds")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Skip the fingerprint cache")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Register completion for profile flag from the loaded config
	_ = rootCmd.RegisterFlagCompletionFunc("profile", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		current := config.GetCurrentConfig()
		if current == nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		names := make([]string, 0, len(current.Profiles))
		for name := range current.Profiles {
			names = append(names, name)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewInventoryCommand())
	rootCmd.AddCommand(commands.NewCompareCommand())
	rootCmd.AddCommand(commands.NewMappingCommand())
	rootCmd.AddCommand(commands.NewSchemaCommand())
	rootCmd.AddCommand(commands.NewRunsCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// newLogger builds the CLI logger: debug level when verbose, warnings
// only otherwise, always on stderr.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command with signal-aware cancellation so
// long-running commands shut down cleanly on Ctrl+C.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	// Return default config if none in context
	return &config.Config{
		Layers:           config.DefaultLayers(),
		Workers:          config.DefaultWorkers,
		Strategy:         config.DefaultStrategy,
		SimilarThreshold: config.DefaultSimilarThreshold,
		OverlapPercent:   config.DefaultOverlapPercent,
		StorePath:        config.DefaultStoreFile,
	}
}

// GetRenderer retrieves the renderer from the command context.
func GetRenderer(ctx context.Context) *output.Renderer {
	if r, ok := ctx.Value(rendererKey{}).(*output.Renderer); ok {
		return r
	}
	// Return default renderer if none in context
	return output.NewRenderer(os.Stdout, os.Stderr, output.ModeAuto)
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for ModelParity.

To load completions:

Bash:
  $ source <(modelparity completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ modelparity completion bash > /etc/bash_completion.d/modelparity
  # macOS:
  $ modelparity completion bash > $(brew --prefix)/etc/bash_completion.d/modelparity

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ modelparity completion zsh > "${fpath[1]}/_modelparity"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ modelparity completion fish | source

  # To load completions for each session, execute once:
  $ modelparity completion fish > ~/.config/fish/completions/modelparity.fish

PowerShell:
  PS> modelparity completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> modelparity completion powershell > modelparity.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
