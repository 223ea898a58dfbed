package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFiles materializes files (relative path -> content) under a fresh
// temporary directory and returns that directory.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// WriteGraph writes a single graph file and returns its path.
func WriteGraph(t *testing.T, content string) string {
	t.Helper()
	dir := WriteFiles(t, map[string]string{"main.hcl": content})
	return filepath.Join(dir, "main.hcl")
}
