package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv overrides project discovery
const HomeEnv = "ADL_HOME"

// FindProjectDir returns the directory whose .adl folder applies to start.
// Priority order:
//  1. ADL_HOME environment variable (if set)
//  2. The nearest ancestor of start containing .adl
//  3. start itself
func FindProjectDir(start string) (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return home, nil
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}

	for current := abs; ; {
		if info, err := os.Stat(filepath.Join(current, DirName)); err == nil && info.IsDir() {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return abs, nil
}

// ResolvePath anchors relative paths from the config at the project dir
func ResolvePath(projectDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectDir, path)
}
