package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ScanOptions configures the directory scanning behavior
type ScanOptions struct {
	// Pattern is a regex matched against file names without extension
	Pattern string
	// Extensions to include, with or without the leading dot; empty accepts all
	Extensions []string
	// Recursive descends into subdirectories
	Recursive bool
	// ExcludeDirs are directory names never entered
	ExcludeDirs []string
	// MaxDepth limits recursion (0 = unlimited, 1 = dir itself only)
	MaxDepth int
	// ExcludePrefixes skips files whose name starts with any of the prefixes (e.g., "base_")
	ExcludePrefixes []string
}

// ScanResult contains the results of a directory scan
type ScanResult struct {
	// Files are absolute paths in sorted order
	Files []string
	// Errors are entries that could not be read; the walk went on without them
	Errors []error
}

// filter is ScanOptions prepared for matching
type filter struct {
	opts       ScanOptions
	pattern    *regexp.Regexp
	extensions map[string]bool
	skipDirs   map[string]bool
}

func newFilter(opts ScanOptions) (*filter, error) {
	f := &filter{
		opts:       opts,
		extensions: make(map[string]bool, len(opts.Extensions)),
		skipDirs:   make(map[string]bool, len(opts.ExcludeDirs)),
	}
	if opts.Pattern != "" {
		re, err := regexp.Compile(opts.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
		f.pattern = re
	}
	for _, ext := range opts.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.extensions[strings.ToLower(ext)] = true
	}
	for _, name := range opts.ExcludeDirs {
		f.skipDirs[name] = true
	}
	return f, nil
}

// enter reports whether the walk descends into the directory at rel
func (f *filter) enter(rel, name string) bool {
	if f.skipDirs[name] || strings.HasPrefix(name, ".") || !f.opts.Recursive {
		return false
	}
	if f.opts.MaxDepth > 0 {
		depth := strings.Count(rel, string(filepath.Separator)) + 1
		return depth < f.opts.MaxDepth
	}
	return true
}

// accept reports whether a file name passes the prefix, extension and pattern filters
func (f *filter) accept(name string) bool {
	for _, prefix := range f.opts.ExcludePrefixes {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}
	ext := filepath.Ext(name)
	if len(f.extensions) > 0 && !f.extensions[strings.ToLower(ext)] {
		return false
	}
	return f.pattern == nil || f.pattern.MatchString(strings.TrimSuffix(name, ext))
}

// ScanDirectory scans a directory for files matching the provided options
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	f, err := newFilter(opts)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{Files: []string{}, Errors: []error{}}
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, walkErr))
			return nil
		}
		if path == dir {
			return nil
		}

		if d.IsDir() {
			rel, _ := filepath.Rel(dir, path)
			if !f.enter(rel, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !f.accept(d.Name()) {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to resolve path %s: %w", path, err))
			return nil
		}
		result.Files = append(result.Files, abs)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Strings(result.Files)
	return result, nil
}
