package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/modelparity/modelparity/internal/cli/output"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ModelParity project",
		Long: `Create a modelparity.yaml configuration in the target directory.

Use --example to also scaffold two small banking repositories with
deliberate drift between them, ready for a first comparison.`,
		Example: `  # Initialize in the current directory
  modelparity init

  # Initialize with the example repositories
  modelparity init --example

  # Initialize in a new directory
  modelparity init my-comparison --example

  # Force overwrite existing config
  modelparity init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			mode := output.Mode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			if example {
				return runInitExample(r, dir, force)
			}
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Scaffold two example repositories alongside the config")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if err := prepareTarget(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("minimal", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("minimal")
	for _, f := range files {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("ModelParity project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Point left_path and right_path at your repositories")
	r.Println("  2. Run 'modelparity compare' to see the drift")
	r.Println("  3. Run 'modelparity mapping --out mapping.csv' for the column document")

	return nil
}

func runInitExample(r *output.Renderer, dir string, force bool) error {
	if err := prepareTarget(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("example", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("example")
	groups := groupTemplateFiles(files)

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		r.Header(2, name)
		for _, f := range groups[name] {
			r.StatusLine(f, "success", "")
		}
		r.Println("")
	}

	r.Success("ModelParity example project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  modelparity compare            Classify the drift between bank_a and bank_b")
	r.Println("  modelparity inventory bank_a   Inspect one side's models")
	r.Println("  modelparity mapping bank_a     Generate the column mapping document")
	r.Println("  modelparity serve --watch      Browse the comparison over HTTP")

	return nil
}

// prepareTarget creates the target directory and guards against
// clobbering an existing configuration.
func prepareTarget(dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "modelparity.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("modelparity.yaml already exists. Use --force to overwrite")
	}
	return nil
}
