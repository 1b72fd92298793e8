package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

var (
	debugMu   sync.Mutex
	debugFile *os.File
	debugDir  string
)

// ConfigureDebug sets the directory where debug logs are written.
// Each run gets its own timestamped log file.
func ConfigureDebug(logsDir string) {
	debugMu.Lock()
	defer debugMu.Unlock()

	if debugFile != nil {
		return
	}
	debugDir = logsDir
	name := fmt.Sprintf("debug-%s.log", time.Now().Format("20060102-150405"))
	debugFile, _ = os.Create(filepath.Join(logsDir, name))
}

// Debug writes a timestamped message to the debug log file.
// It is a no-op until ConfigureDebug has been called.
func Debug(format string, args ...any) {
	debugMu.Lock()
	defer debugMu.Unlock()

	if debugFile == nil {
		return
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(debugFile, "[%s] %s\n", timestamp, fmt.Sprintf(format, args...))
	debugFile.Sync() // Flush immediately
}

// CleanupLogs removes old debug logs, keeping the most recent `keep` files.
func CleanupLogs(keep int) {
	debugMu.Lock()
	dir := debugDir
	debugMu.Unlock()

	if dir == "" || keep <= 0 {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	var logs []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".log" {
			logs = append(logs, e.Name())
		}
	}
	if len(logs) <= keep {
		return
	}

	// Timestamped names sort chronologically
	sort.Strings(logs)
	for _, name := range logs[:len(logs)-keep] {
		os.Remove(filepath.Join(dir, name))
	}
}
