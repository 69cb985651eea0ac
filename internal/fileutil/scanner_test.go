package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates the given relative files under dir
func writeTree(t *testing.T, dir string, files []string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(dir, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("### UseCase: x\n"), 0644))
	}
}

func relPaths(t *testing.T, root string, files []string) []string {
	t.Helper()
	absRoot, err := filepath.Abs(root)
	require.NoError(t, err)
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(absRoot, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestScanDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{
		"billing.md",
		"base_rules.md",
		"notes.txt",
		"Greeting.MD",
		"support/refunds.md",
		"support/base_shared.md",
		"support/archive/old.md",
		".drafts/draft.md",
		"vendor/vendored.md",
	})

	tests := []struct {
		name string
		opts ScanOptions
		want []string
	}{
		{
			name: "markdown recursive",
			opts: ScanOptions{Extensions: []string{".md"}, Recursive: true},
			want: []string{"Greeting.MD", "base_rules.md", "billing.md", "support/archive/old.md", "support/base_shared.md", "support/refunds.md", "vendor/vendored.md"},
		},
		{
			name: "skip base fragments",
			opts: ScanOptions{Extensions: []string{".md"}, Recursive: true, ExcludePrefixes: []string{"base_"}},
			want: []string{"Greeting.MD", "billing.md", "support/archive/old.md", "support/refunds.md", "vendor/vendored.md"},
		},
		{
			name: "non recursive",
			opts: ScanOptions{Extensions: []string{"md"}},
			want: []string{"Greeting.MD", "base_rules.md", "billing.md"},
		},
		{
			name: "max depth",
			opts: ScanOptions{Extensions: []string{".md"}, Recursive: true, MaxDepth: 2, ExcludeDirs: []string{"vendor"}},
			want: []string{"Greeting.MD", "base_rules.md", "billing.md", "support/base_shared.md", "support/refunds.md"},
		},
		{
			name: "pattern on name without extension",
			opts: ScanOptions{Pattern: "^b", Extensions: []string{".md"}, Recursive: true},
			want: []string{"base_rules.md", "billing.md", "support/base_shared.md"},
		},
		{
			name: "no extension filter",
			opts: ScanOptions{},
			want: []string{"Greeting.MD", "base_rules.md", "billing.md", "notes.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ScanDirectory(tmpDir, tt.opts)
			require.NoError(t, err)
			assert.Empty(t, result.Errors)
			assert.Equal(t, tt.want, relPaths(t, tmpDir, result.Files))
		})
	}
}

func TestScanDirectory_AbsoluteAndSorted(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{"c.md", "a.md", "b.md"})

	result, err := ScanDirectory(tmpDir, ScanOptions{Extensions: []string{".md"}})
	require.NoError(t, err)
	require.Len(t, result.Files, 3)
	for _, f := range result.Files {
		assert.True(t, filepath.IsAbs(f), "expected absolute path: %s", f)
	}
	assert.IsIncreasing(t, result.Files)
}

func TestScanDirectory_Errors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := ScanDirectory(filepath.Join(t.TempDir(), "missing"), ScanOptions{})
		assert.Error(t, err)
	})

	t.Run("file instead of directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeTree(t, tmpDir, []string{"file.md"})
		_, err := ScanDirectory(filepath.Join(tmpDir, "file.md"), ScanOptions{})
		assert.ErrorContains(t, err, "not a directory")
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := ScanDirectory(t.TempDir(), ScanOptions{Pattern: "(unclosed"})
		assert.ErrorContains(t, err, "invalid pattern")
	})
}

func TestScanDirectory_Empty(t *testing.T) {
	result, err := ScanDirectory(t.TempDir(), ScanOptions{Recursive: true})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
}
