package utils

import (
	"os"
	"path/filepath"
)

// EnsureAbsPath converts a path to absolute, resolving against the current
// working directory. Returns the input unchanged if resolution fails.
func EnsureAbsPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// DefaultDownloadsDir returns the platform downloads directory for the
// current user. Falls back to the working directory when the home directory
// cannot be determined.
func DefaultDownloadsDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		wd, _ := os.Getwd()
		return wd
	}
	return filepath.Join(homeDir, "Downloads")
}
