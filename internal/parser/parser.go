package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harrison/adl/internal/fileutil"
	"github.com/harrison/adl/internal/models"
)

// useCaseExtensions are the file extensions of use case documents
var useCaseExtensions = []string{".md", ".markdown"}

// basePrefix marks documents that hold shared fragments, not use cases
const basePrefix = "base_"

// IsUseCaseFile reports whether the file name looks like a loadable use case document
func IsUseCaseFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, basePrefix) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range useCaseExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ParseFile reads and parses a single use case document
func ParseFile(path string) (*models.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	doc, err := ParseDocument(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// ParseFiles parses every document in paths and concatenates their use cases
// in the given order.
func ParseFiles(paths []string) ([]models.UseCase, error) {
	var useCases []models.UseCase
	for _, path := range paths {
		doc, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		useCases = append(useCases, doc.UseCases...)
	}
	return useCases, nil
}

// FilterUseCaseFiles accepts file and/or directory paths and returns a
// deduplicated, sorted list of absolute use case document paths.
//
// Directories are scanned recursively, skipping hidden directories and
// "base_" documents. Files given explicitly are kept when they have a
// markdown extension, even if they carry the "base_" prefix.
//
// Returns an error if no paths are given, a path does not exist, or no
// documents were found.
func FilterUseCaseFiles(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths provided")
	}

	files := make(map[string]bool)
	opts := fileutil.ScanOptions{
		Extensions:      useCaseExtensions,
		Recursive:       true,
		ExcludePrefixes: []string{basePrefix},
	}

	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %q: %w", path, err)
		}

		info, err := os.Stat(absPath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("path %q does not exist", absPath)
			}
			return nil, fmt.Errorf("failed to access path %q: %w", absPath, err)
		}

		if info.IsDir() {
			result, err := fileutil.ScanDirectory(absPath, opts)
			if err != nil {
				return nil, fmt.Errorf("failed to scan directory %q: %w", absPath, err)
			}
			for _, file := range result.Files {
				files[file] = true
			}
			continue
		}

		ext := strings.ToLower(filepath.Ext(absPath))
		if ext == ".md" || ext == ".markdown" {
			files[absPath] = true
		}
	}

	if len(files) == 0 {
		return nil, ErrNoUseCaseFiles
	}

	result := make([]string, 0, len(files))
	for path := range files {
		result = append(result, path)
	}
	sort.Strings(result)

	return result, nil
}
