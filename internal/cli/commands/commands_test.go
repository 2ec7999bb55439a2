// Package commands_test provides tests for CLI command creation.
package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelparity/modelparity/internal/cli/config"
	"github.com/modelparity/modelparity/pkg/diff"
)

func TestNewInventoryCommand(t *testing.T) {
	cmd := NewInventoryCommand()

	assert.Equal(t, "inventory [path]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	// Verify flags exist (output is a global flag on root, not local)
	flags := []string{"label", "snapshot"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewCompareCommand(t *testing.T) {
	cmd := NewCompareCommand()

	assert.Equal(t, "compare [left] [right]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{
		"strategy", "left-label", "right-label",
		"left-snapshot", "right-snapshot",
		"similar-threshold", "overlap-percent",
		"save", "csv",
	}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewMappingCommand(t *testing.T) {
	cmd := NewMappingCommand()

	assert.Equal(t, "mapping [path]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	flags := []string{"out", "watch"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewSchemaCommand(t *testing.T) {
	cmd := NewSchemaCommand()

	assert.Equal(t, "schema", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	// schema pull is registered as a subcommand
	pull, _, err := cmd.Find([]string{"pull"})
	require.NoError(t, err)
	assert.Equal(t, "pull", pull.Use)

	flags := []string{"driver", "dsn", "host", "port", "database", "username", "password", "path", "label", "out"}
	for _, flag := range flags {
		assert.NotNil(t, pull.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewRunsCommand(t *testing.T) {
	cmd := NewRunsCommand()

	assert.Equal(t, "runs", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	list, _, err := cmd.Find([]string{"list"})
	require.NoError(t, err)
	assert.NotNil(t, list.Flags().Lookup("limit"), "--limit flag should exist")

	show, _, err := cmd.Find([]string{"show"})
	require.NoError(t, err)
	assert.Equal(t, "show <id>", show.Use)
}

func TestNewServeCommand(t *testing.T) {
	cmd := NewServeCommand()

	assert.Equal(t, "serve", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	flags := []string{"addr", "watch"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestBuildStrategy(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.Config
		wantName string
		wantErr  string
	}{
		{
			name:     "empty defaults to logic",
			cfg:      &config.Config{},
			wantName: "logic",
		},
		{
			name:     "logic",
			cfg:      &config.Config{Strategy: "logic", SimilarThreshold: 3},
			wantName: "logic",
		},
		{
			name:     "schema",
			cfg:      &config.Config{Strategy: "schema", OverlapPercent: 80},
			wantName: "schema",
		},
		{
			name:    "unknown strategy",
			cfg:     &config.Config{Strategy: "vibes"},
			wantErr: `unknown strategy "vibes"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strat, err := buildStrategy(tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, strat.Name())
		})
	}
}

func TestBuildStrategyThresholds(t *testing.T) {
	cfg := &config.Config{Strategy: "logic", SimilarThreshold: 5}
	strat, err := buildStrategy(cfg)
	require.NoError(t, err)

	logic, ok := strat.(*diff.LogicDiffStrategy)
	require.True(t, ok)
	assert.Equal(t, 5, logic.SimilarThreshold)

	cfg = &config.Config{Strategy: "schema", OverlapPercent: 62.5}
	strat, err = buildStrategy(cfg)
	require.NoError(t, err)

	schema, ok := strat.(*diff.SchemaOverlapStrategy)
	require.True(t, ok)
	assert.Equal(t, 62.5, schema.SimilarPercent)
}
