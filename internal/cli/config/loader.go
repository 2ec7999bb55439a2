package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store the logger in context.
// This key is shared with root.go via both using the same type.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// configFileNames are the recognized config file names, in priority order.
var configFileNames = []string{"modelparity.yaml", "modelparity.yml"}

// configExistsIn checks if a modelparity config file exists in the directory.
func configExistsIn(dir string) bool {
	for _, name := range configFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// findProjectRootUpward searches upward from startDir for a modelparity
// config file. Returns empty string if not found within
// maxUpwardSearchLevels.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if configExistsIn(dir) {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// inferProjectRoot determines the project root.
// Priority:
//  1. Directory of an explicit --config file
//  2. Search upward from CWD for modelparity.yaml
//  3. Current working directory
func inferProjectRoot(cfgFile string) string {
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			return filepath.Dir(abs)
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		if root := findProjectRootUpward(cwd); root != "" {
			return root
		}
	}

	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not
// absolute. Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	return LoadConfigWithProfile(cfgFile, "", flags)
}

// LoadConfigWithProfile loads configuration with an optional profile
// override. The profileOverride parameter selects which configured
// comparison profile to apply on top of the base settings.
func LoadConfigWithProfile(cfgFile string, profileOverride string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	projectRoot := inferProjectRoot(cfgFile)

	// Track paths that were explicitly provided as flags. Those are
	// relative to CWD, not the project root, so convert them to absolute
	// before the normal resolution step.
	var flagLeft, flagRight, flagStore string
	if flags != nil {
		if flags.Changed("left") {
			if v, _ := flags.GetString("left"); v != "" {
				flagLeft, _ = filepath.Abs(v)
			}
		}
		if flags.Changed("right") {
			if v, _ := flags.GetString("right"); v != "" {
				flagRight, _ = filepath.Abs(v)
			}
		}
		if flags.Changed("store") {
			if v, _ := flags.GetString("store"); v != "" {
				flagStore, _ = filepath.Abs(v)
			}
		}
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"layers":            DefaultLayers(),
		"workers":           DefaultWorkers,
		"strategy":          DefaultStrategy,
		"similar_threshold": DefaultSimilarThreshold,
		"overlap_percent":   DefaultOverlapPercent,
		"store_path":        DefaultStoreFile,
		"verbose":           false,
		"output":            DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	if cfgFile == "" {
		for _, name := range configFileNames {
			candidate := filepath.Join(projectRoot, name)
			if _, err := os.Stat(candidate); err == nil {
				cfgFile = candidate
				break
			}
		}
	}
	configFileUsed = cfgFile
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (MODELPARITY_ prefix)
	// Transform: MODELPARITY_LEFT_PATH -> left_path
	if err := k.Load(env.Provider("MODELPARITY_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "MODELPARITY_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")

			// The CLI uses short flag names for brevity; map them onto
			// the longer config keys.
			switch key {
			case "left":
				return "left_path", posflag.FlagVal(flags, f)
			case "right":
				return "right_path", posflag.FlagVal(flags, f)
			case "store":
				return "store_path", posflag.FlagVal(flags, f)
			}

			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Apply the selected comparison profile, if any
	profile := cfg.Profile
	if profileOverride != "" {
		profile = profileOverride
		cfg.Profile = profileOverride
	}
	if profile != "" {
		p, ok := cfg.Profiles[profile]
		if !ok {
			return nil, fmt.Errorf("unknown profile %q (defined: %s)", profile, strings.Join(profileNames(cfg.Profiles), ", "))
		}
		applyProfile(&cfg, p)
	}

	// 7. Set project root and resolve relative paths.
	// Paths given as flags were made absolute against CWD above; paths
	// from the config file or defaults resolve against the project root.
	cfg.ProjectRoot = projectRoot

	if flagLeft != "" {
		cfg.LeftPath = flagLeft
	} else {
		cfg.LeftPath = resolvePathRelativeTo(cfg.LeftPath, projectRoot)
	}
	if flagRight != "" {
		cfg.RightPath = flagRight
	} else {
		cfg.RightPath = resolvePathRelativeTo(cfg.RightPath, projectRoot)
	}
	if flagStore != "" {
		cfg.StorePath = flagStore
	} else {
		cfg.StorePath = resolvePathRelativeTo(cfg.StorePath, projectRoot)
	}

	// Team mapping lookups are case-insensitive on the domain
	if len(cfg.Teams) > 0 {
		teams := make(map[string]string, len(cfg.Teams))
		for domain, owner := range cfg.Teams {
			teams[strings.ToLower(domain)] = owner
		}
		cfg.Teams = teams
	}

	// Expand environment variables in warehouse credentials
	expandSchemaEnvVars(cfg.Schema)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// applyProfile overlays non-empty profile fields onto the base config.
func applyProfile(cfg *Config, p ProfileConfig) {
	if p.LeftPath != "" {
		cfg.LeftPath = p.LeftPath
	}
	if p.RightPath != "" {
		cfg.RightPath = p.RightPath
	}
	if p.LeftLabel != "" {
		cfg.LeftLabel = p.LeftLabel
	}
	if p.RightLabel != "" {
		cfg.RightLabel = p.RightLabel
	}
	if p.Strategy != "" {
		cfg.Strategy = p.Strategy
	}
}

func profileNames(profiles map[string]ProfileConfig) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	return names
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig or LoadConfigWithProfile is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandSchemaEnvVars expands environment variables in sensitive
// warehouse connection fields.
func expandSchemaEnvVars(sc *SchemaConfig) {
	if sc == nil {
		return
	}
	sc.DSN = expandEnvVars(sc.DSN)
	sc.Host = expandEnvVars(sc.Host)
	sc.Database = expandEnvVars(sc.Database)
	sc.Username = expandEnvVars(sc.Username)
	sc.Password = expandEnvVars(sc.Password)
}
