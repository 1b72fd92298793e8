package config

import (
	"os"
	"path/filepath"
)

// appDirEnv overrides the state directory location, mainly for tests.
const appDirEnv = "KINOPUB_WNLDR_HOME"

// GetAppDir returns the directory holding settings, logs and the history
// database, creating nothing. Defaults to ~/.kinopub-wnldr.
func GetAppDir() string {
	if dir := os.Getenv(appDirEnv); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".kinopub-wnldr"
	}
	return filepath.Join(homeDir, ".kinopub-wnldr")
}

// GetLogsDir returns the directory for per-run debug logs.
func GetLogsDir() string {
	return filepath.Join(GetAppDir(), "logs")
}

// GetHistoryPath returns the path of the download history database.
func GetHistoryPath() string {
	return filepath.Join(GetAppDir(), "history.db")
}

// GetLockPath returns the path of the single-instance lock file.
func GetLockPath() string {
	return filepath.Join(GetAppDir(), "app.lock")
}
