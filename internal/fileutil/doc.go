// Package fileutil locates use case documents on disk.
//
// ScanDirectory walks a directory tree and returns the absolute, sorted paths
// of files that pass the configured filters:
//   - Extensions: case-insensitive extension allow list (".md", ".markdown")
//   - Pattern: regex matched against the file name without extension
//   - ExcludePrefixes: file name prefixes to skip, e.g. "base_" fragments
//   - ExcludeDirs: directory names to skip; hidden directories are always skipped
//   - Recursive / MaxDepth: traversal limits
//
// Non-fatal errors such as unreadable subdirectories are collected in
// ScanResult.Errors and the walk continues.
//
//	result, err := fileutil.ScanDirectory("use_cases", fileutil.ScanOptions{
//	    Extensions:      []string{".md"},
//	    Recursive:       true,
//	    ExcludePrefixes: []string{"base_"},
//	})
package fileutil
