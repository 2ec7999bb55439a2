package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "modelparity.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0600))
	return cfgPath
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   bool
		errSubstr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(_ *Config) {},
		},
		{
			name:      "unknown strategy",
			mutate:    func(c *Config) { c.Strategy = "fuzzy" },
			wantErr:   true,
			errSubstr: "invalid strategy",
		},
		{
			name:      "negative similar threshold",
			mutate:    func(c *Config) { c.SimilarThreshold = -1 },
			wantErr:   true,
			errSubstr: "similar_threshold",
		},
		{
			name:      "overlap percent above 100",
			mutate:    func(c *Config) { c.OverlapPercent = 120 },
			wantErr:   true,
			errSubstr: "overlap_percent",
		},
		{
			name:      "negative workers",
			mutate:    func(c *Config) { c.Workers = -2 },
			wantErr:   true,
			errSubstr: "workers",
		},
		{
			name:      "duplicate layer",
			mutate:    func(c *Config) { c.Layers = []string{"silver", "silver"} },
			wantErr:   true,
			errSubstr: "duplicate layer",
		},
		{
			name:      "empty layer entry",
			mutate:    func(c *Config) { c.Layers = []string{"silver", ""} },
			wantErr:   true,
			errSubstr: "empty",
		},
		{
			name:      "unknown output format",
			mutate:    func(c *Config) { c.OutputFormat = "yaml" },
			wantErr:   true,
			errSubstr: "invalid output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Strategy:         DefaultStrategy,
				SimilarThreshold: DefaultSimilarThreshold,
				OverlapPercent:   DefaultOverlapPercent,
				Workers:          DefaultWorkers,
				Layers:           DefaultLayers(),
				OutputFormat:     DefaultOutput,
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfigFile(t, "left_path: repos/banka\nright_path: repos/bankb\n")
	projectRoot := filepath.Dir(cfgPath)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultStrategy, cfg.Strategy)
	assert.Equal(t, DefaultSimilarThreshold, cfg.SimilarThreshold)
	assert.Equal(t, DefaultOverlapPercent, cfg.OverlapPercent)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, []string{"silver", "gold", "bronze"}, cfg.Layers)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)

	assert.Equal(t, projectRoot, cfg.ProjectRoot)

	// Relative paths resolve against the config file's directory
	assert.Equal(t, filepath.Join(projectRoot, "repos", "banka"), cfg.LeftPath)
	assert.Equal(t, filepath.Join(projectRoot, "repos", "bankb"), cfg.RightPath)
	assert.Equal(t, filepath.Join(projectRoot, ".modelparity", "history.db"), cfg.StorePath)

	assert.Equal(t, cfg, GetCurrentConfig())
	assert.Equal(t, cfgPath, GetConfigFileUsed())
}

func TestLoadConfig_FileValues(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfigFile(t, `left_path: /abs/banka
right_path: /abs/bankb
left_label: banka
right_label: bankb
strategy: schema
overlap_percent: 85
layers: [staging, marts]
workers: 2
teams:
  Finance: Core Banking
  risk: Risk Engineering
`)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "/abs/banka", cfg.LeftPath, "absolute paths stay untouched")
	assert.Equal(t, "banka", cfg.LeftLabel)
	assert.Equal(t, "bankb", cfg.RightLabel)
	assert.Equal(t, "schema", cfg.Strategy)
	assert.InDelta(t, 85.0, cfg.OverlapPercent, 0.001)
	assert.Equal(t, []string{"staging", "marts"}, cfg.Layers)
	assert.Equal(t, 2, cfg.Workers)

	// Team mapping keys are lowercased for case-insensitive lookup
	assert.Equal(t, "Core Banking", cfg.Teams["finance"])
	assert.Equal(t, "Risk Engineering", cfg.Teams["risk"])
}

func TestLoadConfig_InvalidStrategyRejected(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfigFile(t, "strategy: fuzzy\n")
	_, err := LoadConfig(cfgPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid strategy")
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfigFile(t, "strategy: logic\n")

	require.NoError(t, os.Setenv("MODELPARITY_STRATEGY", "schema"))
	defer func() { _ = os.Unsetenv("MODELPARITY_STRATEGY") }()

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "schema", cfg.Strategy, "env var should override config file")
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfigFile(t, "left_path: from_file\n")

	require.NoError(t, os.Setenv("MODELPARITY_LEFT_PATH", "from_env"))
	defer func() { _ = os.Unsetenv("MODELPARITY_LEFT_PATH") }()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("left", "", "left repository path")
	require.NoError(t, flags.Set("left", "from_flag"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	// Flag paths are made absolute against the working directory
	wantLeft, err := filepath.Abs("from_flag")
	require.NoError(t, err)
	assert.Equal(t, wantLeft, cfg.LeftPath, "flag value should override config file and env var")
}

func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfigFile(t, "strategy: logic\n")

	require.NoError(t, os.Setenv("MODELPARITY_STRATEGY", "schema"))
	defer func() { _ = os.Unsetenv("MODELPARITY_STRATEGY") }()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("strategy", "", "comparison strategy")
	// Note: not calling flags.Set(), so Changed is false

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, "schema", cfg.Strategy, "env var should be used when flag is not set")
}

func TestLoadConfigWithProfile(t *testing.T) {
	cfgPath := writeConfigFile(t, `left_path: /base/left
right_path: /base/right
profiles:
  banka-vs-bankb:
    left_path: /repos/banka
    right_path: /repos/bankb
    left_label: banka
    right_label: bankb
    strategy: schema
  quick:
    strategy: logic
`)

	t.Run("profile overrides base settings", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfigWithProfile(cfgPath, "banka-vs-bankb", nil)
		require.NoError(t, err)

		assert.Equal(t, "banka-vs-bankb", cfg.Profile)
		assert.Equal(t, "/repos/banka", cfg.LeftPath)
		assert.Equal(t, "/repos/bankb", cfg.RightPath)
		assert.Equal(t, "banka", cfg.LeftLabel)
		assert.Equal(t, "bankb", cfg.RightLabel)
		assert.Equal(t, "schema", cfg.Strategy)
	})

	t.Run("partial profile keeps base values", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfigWithProfile(cfgPath, "quick", nil)
		require.NoError(t, err)

		assert.Equal(t, "/base/left", cfg.LeftPath)
		assert.Equal(t, "logic", cfg.Strategy)
	})

	t.Run("unknown profile fails", func(t *testing.T) {
		ResetConfig()
		_, err := LoadConfigWithProfile(cfgPath, "nope", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown profile")
		assert.Contains(t, err.Error(), "banka-vs-bankb")
	})
}

func TestExpandEnvVars(t *testing.T) {
	require.NoError(t, os.Setenv("TEST_VAR_ONE", "value_one"))
	defer func() { _ = os.Unsetenv("TEST_VAR_ONE") }()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain string untouched", "hello", "hello"},
		{"single variable", "${TEST_VAR_ONE}", "value_one"},
		{"embedded variable", "user:${TEST_VAR_ONE}@host", "user:value_one@host"},
		{"unset variable preserved", "${TEST_VAR_MISSING}", "${TEST_VAR_MISSING}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestLoadConfig_SchemaCredentialExpansion(t *testing.T) {
	ResetConfig()

	require.NoError(t, os.Setenv("MP_TEST_PASSWORD", "s3cret"))
	defer func() { _ = os.Unsetenv("MP_TEST_PASSWORD") }()

	cfgPath := writeConfigFile(t, `schema:
  driver: postgres
  host: db.internal
  username: parity
  password: ${MP_TEST_PASSWORD}
`)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	require.NotNil(t, cfg.Schema)

	assert.Equal(t, "postgres", cfg.Schema.Driver)
	assert.Equal(t, "s3cret", cfg.Schema.Password)
}

func TestGetServerConfig(t *testing.T) {
	t.Run("nil server config returns defaults", func(t *testing.T) {
		cfg := &Config{}
		srv := cfg.GetServerConfig()
		assert.Equal(t, DefaultServerAddr, srv.Addr)
		assert.False(t, srv.Watch)
	})

	t.Run("partial server config gets addr filled", func(t *testing.T) {
		cfg := &Config{Server: &ServerConfig{Watch: true}}
		srv := cfg.GetServerConfig()
		assert.Equal(t, DefaultServerAddr, srv.Addr)
		assert.True(t, srv.Watch)
	})

	t.Run("explicit addr preserved", func(t *testing.T) {
		cfg := &Config{Server: &ServerConfig{Addr: ":9000"}}
		assert.Equal(t, ":9000", cfg.GetServerConfig().Addr)
	})
}

func TestValidateRepoPaths(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()

	t.Run("both paths exist", func(t *testing.T) {
		cfg := &Config{LeftPath: left, RightPath: right}
		assert.NoError(t, cfg.ValidateRepoPaths())
	})

	t.Run("missing path reported with side", func(t *testing.T) {
		cfg := &Config{LeftPath: left, RightPath: filepath.Join(right, "gone")}
		err := cfg.ValidateRepoPaths()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "right repository does not exist")
	})

	t.Run("unset path reported with hint", func(t *testing.T) {
		cfg := &Config{LeftPath: left}
		err := cfg.ValidateRepoPaths()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "right repository path is not set")
		assert.Contains(t, err.Error(), "modelparity.yaml")
	})
}
