//go:build governance

package catalog_test

import (
	"go/types"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/modelparity/modelparity"

// =============================================================================
// PURITY TEST - catalog must not import beyond the standard library
// =============================================================================

// TestGovernance_CatalogStdlibOnly verifies the rule documented in doc.go:
// pkg/catalog imports only the standard library, so every other package can
// depend on it without dragging in drivers or renderers.
func TestGovernance_CatalogStdlibOnly(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports,
	}
	pkgs, err := packages.Load(cfg, modulePath+"/pkg/catalog")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	for _, p := range pkgs {
		for path := range p.Imports {
			first, _, _ := strings.Cut(path, "/")
			if strings.Contains(first, ".") {
				t.Errorf("PURITY VIOLATION: pkg/catalog imports %q.\n"+
					"   Fix: move the code needing it up into its consumer.", path)
			}
		}
	}
}

// =============================================================================
// COHESION TEST - catalog types must be shared by multiple packages
// =============================================================================

// TestGovernance_CatalogCohesion verifies that exported types in pkg/catalog
// are genuinely shared across multiple packages. A type with a single
// consumer should be moved to that consumer.
func TestGovernance_CatalogCohesion(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports | packages.NeedTypes |
			packages.NeedTypesInfo | packages.NeedDeps,
	}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	// Find pkg/catalog and collect its exported type names
	catalogTypes := make(map[types.Object]string)
	var catalogPkg *packages.Package

	for _, p := range pkgs {
		if p.PkgPath == modulePath+"/pkg/catalog" {
			catalogPkg = p
			scope := p.Types.Scope()
			for _, name := range scope.Names() {
				obj := scope.Lookup(name)
				if _, isType := obj.(*types.TypeName); isType && obj.Exported() {
					catalogTypes[obj] = name
				}
			}
			break
		}
	}

	if catalogPkg == nil {
		t.Fatal("Could not find pkg/catalog")
	}

	// Count usages: type name -> set of importing packages
	usageMap := make(map[string]map[string]bool)
	for _, name := range catalogTypes {
		usageMap[name] = make(map[string]bool)
	}

	base := modulePath + "/"

	for _, p := range pkgs {
		// Skip catalog itself and test packages
		if p.PkgPath == catalogPkg.PkgPath || strings.HasSuffix(p.PkgPath, "_test") {
			continue
		}
		if p.TypesInfo == nil {
			continue
		}

		for _, obj := range p.TypesInfo.Uses {
			if name, exists := catalogTypes[obj]; exists {
				importer := strings.TrimPrefix(p.PkgPath, base)
				usageMap[name][importer] = true
			}
		}
	}

	// Report violations
	for typeName, importers := range usageMap {
		if len(importers) == 0 {
			t.Logf("WARNING: Unused catalog type: %s (consider deleting)", typeName)
		} else if len(importers) == 1 {
			var user string
			for k := range importers {
				user = k
			}
			t.Errorf("COHESION VIOLATION: 'catalog.%s' is used ONLY by '%s'.\n"+
				"   Fix: Move the type from pkg/catalog to %s.",
				typeName, user, user)
		}
	}
}
