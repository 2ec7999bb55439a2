package config

import (
	"fmt"
	"os"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Strategy {
	case "", "logic", "schema":
	default:
		return fmt.Errorf("invalid strategy %q (valid: logic, schema)", c.Strategy)
	}

	if c.SimilarThreshold < 0 {
		return fmt.Errorf("similar_threshold must not be negative, got %d", c.SimilarThreshold)
	}
	if c.OverlapPercent < 0 || c.OverlapPercent > 100 {
		return fmt.Errorf("overlap_percent must be between 0 and 100, got %g", c.OverlapPercent)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}

	seen := make(map[string]bool, len(c.Layers))
	for _, layer := range c.Layers {
		if layer == "" {
			return fmt.Errorf("layers must not contain empty entries")
		}
		if seen[layer] {
			return fmt.Errorf("duplicate layer %q in layers", layer)
		}
		seen[layer] = true
	}

	switch c.OutputFormat {
	case "", "auto", "text", "markdown", "json":
	default:
		return fmt.Errorf("invalid output format %q (valid: auto, text, markdown, json)", c.OutputFormat)
	}

	return nil
}

// ValidateRepoPaths checks that the configured repository paths exist.
// Commands that read model trees call this; commands working from
// snapshots or the store do not.
func (c *Config) ValidateRepoPaths() error {
	for side, path := range map[string]string{"left": c.LeftPath, "right": c.RightPath} {
		if path == "" {
			return fmt.Errorf("%s repository path is not set\nHint: pass it as an argument or set %s_path in modelparity.yaml", side, side)
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("%s repository does not exist: %s", side, path)
		}
	}
	return nil
}
