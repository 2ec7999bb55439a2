// Package discovery builds model inventories by walking a repository's
// layer/domain/model tree and extracting every model file.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/modelparity/modelparity/pkg/catalog"
	"github.com/modelparity/modelparity/pkg/modelsql"
)

// Options configures a Builder.
type Options struct {
	// Root is the directory containing the layer directories.
	Root string

	// Label names the repository side, stamped on every record.
	Label string

	// Layers lists the layer directories to walk, in priority order.
	// Nil means catalog.DefaultLayerPriority. Missing directories are
	// silently skipped.
	Layers []string

	// Workers sets the parse parallelism. Values below 2 parse
	// sequentially. Results merge by key either way, so completion
	// order never shows in the inventory.
	Workers int

	// Cache reuses previously extracted records whose fingerprint still
	// matches. Optional.
	Cache Cache

	// Logger receives per-file debug events and the build summary.
	// Nil discards.
	Logger *slog.Logger
}

// Cache is the fingerprint-keyed reuse contract the store satisfies.
type Cache interface {
	// GetModel returns the cached record for key when its fingerprint
	// matches, with ok=false on any miss.
	GetModel(key, fingerprint string) (catalog.Model, bool, error)
	// PutModel stores a freshly extracted record.
	PutModel(m catalog.Model) error
}

// Builder walks one repository tree and produces an Inventory.
type Builder struct {
	root    string
	label   string
	layers  []string
	workers int
	cache   Cache
	log     *slog.Logger

	mu      sync.Mutex
	schemas map[string]*schemaFile // dir -> parsed schema.yml, nil when absent
}

// NewBuilder validates the options and returns a Builder.
func NewBuilder(opts Options) (*Builder, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("discovery: root directory is required")
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("discovery: resolve root: %w", err)
	}

	b := &Builder{
		root:    root,
		label:   opts.Label,
		layers:  opts.Layers,
		workers: opts.Workers,
		cache:   opts.Cache,
		log:     opts.Logger,
		schemas: make(map[string]*schemaFile),
	}
	if b.label == "" {
		b.label = filepath.Base(root)
	}
	if len(b.layers) == 0 {
		b.layers = catalog.DefaultLayerPriority
	}
	if b.log == nil {
		b.log = slog.New(slog.DiscardHandler)
	}
	return b, nil
}

// Warning is a non-fatal problem found during a build.
type Warning struct {
	Path    string
	Type    string // "read", "duplicate", "best_effort", "schema", "cache"
	Message string
}

// Result carries the built inventory and build statistics.
type Result struct {
	Inventory    *catalog.Inventory
	FilesScanned int
	Degraded     int
	CacheHits    int
	Warnings     []Warning
	Duration     time.Duration
}

// HasWarnings returns true if any non-fatal problem occurred.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Summary returns a one-line human-readable account of the build.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"Models: %d built from %d files (%d degraded, %d cache hits, %d warnings) | Duration: %s",
		r.Inventory.Len(), r.FilesScanned, r.Degraded, r.CacheHits, len(r.Warnings),
		r.Duration.Round(time.Millisecond),
	)
}

// task is one model file waiting for extraction.
type task struct {
	layer string
	path  string
}

// Build walks the configured layers and extracts every model file.
// Unreadable or unparseable files become degraded records; only a
// missing root or a cancelled context fails the build.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()

	if _, err := os.Stat(b.root); err != nil {
		return nil, fmt.Errorf("discovery: models root: %w", err)
	}

	tasks, err := b.collect()
	if err != nil {
		return nil, err
	}

	result := &Result{FilesScanned: len(tasks)}
	b.log.Info("starting inventory build",
		"root", b.root, "label", b.label, "files", len(tasks), "workers", b.workers)

	byKey := make(map[string]catalog.Model, len(tasks))
	record := func(m catalog.Model, warns []Warning, cacheHit bool) {
		if cacheHit {
			result.CacheHits++
		}
		result.Warnings = append(result.Warnings, warns...)
		if prev, dup := byKey[m.Key]; dup {
			b.log.Warn("duplicate model key, keeping later file",
				"key", m.Key, "dropped", prev.Path, "kept", m.Path)
			result.Warnings = append(result.Warnings, Warning{
				Path:    m.Path,
				Type:    "duplicate",
				Message: fmt.Sprintf("key %s already built from %s", m.Key, prev.Path),
			})
		}
		byKey[m.Key] = m
	}

	if b.workers > 1 {
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(b.workers)
		for _, t := range tasks {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				m, warns, hit := b.parseFile(t)
				mu.Lock()
				record(m, warns, hit)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("discovery: build cancelled: %w", err)
		}
	} else {
		for _, t := range tasks {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("discovery: build cancelled: %w", err)
			}
			m, warns, hit := b.parseFile(t)
			record(m, warns, hit)
		}
	}

	models := make([]catalog.Model, 0, len(byKey))
	for _, m := range byKey {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Key < models[j].Key })

	result.Inventory = catalog.NewInventory(b.label, models)
	result.Degraded = result.Inventory.DegradedCount()
	result.Duration = time.Since(start)

	b.log.Info("inventory build completed",
		"models", result.Inventory.Len(),
		"degraded", result.Degraded,
		"cache_hits", result.CacheHits,
		"warnings", len(result.Warnings),
		"duration_ms", result.Duration.Milliseconds())
	return result, nil
}

// collect walks every existing layer directory and lists model files.
func (b *Builder) collect() ([]task, error) {
	var tasks []task
	for _, layer := range b.layers {
		layerDir := filepath.Join(b.root, layer)
		if _, err := os.Stat(layerDir); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(layerDir, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".sql") {
				return nil
			}
			tasks = append(tasks, task{layer: layer, path: path})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("discovery: walk %s: %w", layerDir, err)
		}
	}
	return tasks, nil
}

// parseFile turns one model file into a record. Failures degrade, they
// never abort the build.
func (b *Builder) parseFile(t task) (catalog.Model, []Warning, bool) {
	rel, err := filepath.Rel(b.root, t.path)
	if err != nil {
		rel = t.path
	}
	domain := filepath.Base(filepath.Dir(t.path))
	name := strings.TrimSuffix(filepath.Base(t.path), filepath.Ext(t.path))
	key := catalog.MakeKey(t.layer, domain, name)

	model := catalog.Model{Key: key, Repo: b.label, Path: rel}

	content, err := os.ReadFile(t.path)
	if err != nil {
		model.Degraded = true
		return model, []Warning{{Path: rel, Type: "read", Message: err.Error()}}, false
	}
	model.Fingerprint = catalog.Fingerprint(content)

	if b.cache != nil {
		cached, ok, cerr := b.cache.GetModel(key, model.Fingerprint)
		if cerr != nil {
			b.log.Debug("cache lookup failed", "key", key, "error", cerr)
		} else if ok {
			cached.Repo = b.label
			cached.Path = rel
			b.log.Debug("cache hit", "key", key)
			return cached, nil, true
		}
	}

	var warns []Warning
	res := modelsql.Extract(string(content))
	model.Columns = convertColumns(res.Columns)
	model.Upstream = res.References
	model.Degraded = res.Degraded
	model.BestEffort = res.BestEffort
	if res.BestEffort {
		warns = append(warns, Warning{
			Path:    rel,
			Type:    "best_effort",
			Message: "unterminated conditional truncated at end of input",
		})
	}

	if w := b.enrich(&model, filepath.Dir(t.path), name); w != nil {
		warns = append(warns, *w)
	}

	if b.cache != nil {
		if err := b.cache.PutModel(model); err != nil {
			warns = append(warns, Warning{Path: rel, Type: "cache", Message: err.Error()})
		}
	}

	b.log.Debug("extracted model",
		"key", key, "columns", len(model.Columns), "degraded", model.Degraded)
	return model, warns, false
}

func convertColumns(cols []modelsql.Column) []catalog.Column {
	if len(cols) == 0 {
		return nil
	}
	out := make([]catalog.Column, len(cols))
	for i, c := range cols {
		out[i] = catalog.Column{
			Name:        c.Name,
			Expression:  c.Expression,
			Transformed: c.Transformed,
			EnumValues:  c.EnumValues,
		}
	}
	return out
}
