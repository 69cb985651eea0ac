package display

import (
	"path/filepath"
	"strings"

	"github.com/harrison/adl/internal/fileutil"
)

// basePrefix marks fragment documents that directory scans skip
const basePrefix = "base_"

// IsBaseFile reports whether filename is a base_ fragment document
func IsBaseFile(filename string) bool {
	name := filepath.Base(filename)
	if !strings.HasPrefix(name, basePrefix) {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return strings.TrimSuffix(name, filepath.Ext(name)) != basePrefix
	default:
		return false
	}
}

// FindBaseFiles returns the paths, relative to dir, of base_ fragments
// below dir in sorted order
func FindBaseFiles(dir string) ([]string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	result, err := fileutil.ScanDirectory(root, fileutil.ScanOptions{
		Pattern:     `^` + basePrefix,
		Extensions:  []string{".md", ".markdown"},
		Recursive:   true,
		ExcludeDirs: []string{".git", ".adl"},
	})
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(result.Files))
	for _, abs := range result.Files {
		if !IsBaseFile(abs) {
			continue
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			rel = abs
		}
		files = append(files, rel)
	}
	return files, nil
}
