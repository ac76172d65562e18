package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDataDir is where the cache and log live unless configured.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pdbscope"), nil
}

// PrepareFilePath checks that path can hold a regular file and creates its
// parent directory. It returns the cleaned absolute path.
func PrepareFilePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("path contains null bytes")
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	if info, statErr := os.Stat(abs); statErr == nil && info.IsDir() {
		return "", fmt.Errorf("%s is a directory", abs)
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	return abs, nil
}
