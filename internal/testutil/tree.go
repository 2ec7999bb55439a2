package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTree materializes a model repository under a fresh temp
// directory and returns its root. Keys are slash-separated paths
// relative to the root, e.g. "silver/core/accounts.sql".
func WriteTree(t testing.TB, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return root
}
