package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/whiterabbit74/kinopub-wnldr/internal/utils"
)

// Settings holds all user-configurable application settings organized by category.
type Settings struct {
	General GeneralSettings `json:"general"`
	Network NetworkSettings `json:"network"`
	Engine  EngineSettings  `json:"engine"`
}

// GeneralSettings contains application behavior settings.
type GeneralSettings struct {
	DefaultDownloadDir string `json:"default_download_dir"`
	ClipboardFallback  bool   `json:"clipboard_fallback"`
	Theme              int    `json:"theme"`
	LogRetentionCount  int    `json:"log_retention_count"`
}

const (
	ThemeAdaptive = 0
	ThemeLight    = 1
	ThemeDark     = 2
)

// NetworkSettings contains manifest-fetch parameters.
type NetworkSettings struct {
	UserAgent    string        `json:"user_agent"`
	ProxyURL     string        `json:"proxy_url"`
	FetchTimeout time.Duration `json:"fetch_timeout"`
}

// EngineSettings contains download-job parameters.
type EngineSettings struct {
	DefaultThreads    int           `json:"default_threads"`
	JobTimeout        time.Duration `json:"job_timeout"`
	MaxConcurrentJobs int           `json:"max_concurrent_jobs"`
}

// SettingMeta provides metadata for a single setting (for UI rendering).
type SettingMeta struct {
	Key         string // JSON key name
	Label       string // Human-readable label
	Description string // Help text
	Type        string // "string", "int", "bool", "duration"
}

// GetSettingsMetadata returns metadata for all settings organized by category.
func GetSettingsMetadata() map[string][]SettingMeta {
	return map[string][]SettingMeta{
		"General": {
			{Key: "default_download_dir", Label: "Default Download Dir", Description: "Default directory for finished videos. Leave empty to use ~/Downloads.", Type: "string"},
			{Key: "clipboard_fallback", Label: "Clipboard Fallback", Description: "Read the playlist URL from the clipboard when no source argument is given.", Type: "bool"},
			{Key: "theme", Label: "App Theme", Description: "UI theme (System, Light, Dark).", Type: "int"},
			{Key: "log_retention_count", Label: "Log Retention Count", Description: "Number of recent log files to keep.", Type: "int"},
		},
		"Network": {
			{Key: "user_agent", Label: "User Agent", Description: "Custom User-Agent string for playlist requests. Leave empty for default.", Type: "string"},
			{Key: "proxy_url", Label: "Proxy URL", Description: "HTTP or SOCKS5 proxy URL (e.g. socks5://127.0.0.1:1080). Leave empty to use system default.", Type: "string"},
			{Key: "fetch_timeout", Label: "Fetch Timeout", Description: "Timeout for a single playlist request (e.g. 30s).", Type: "duration"},
		},
		"Engine": {
			{Key: "default_threads", Label: "Default Threads", Description: "Decode threads passed to ffmpeg (1-16).", Type: "int"},
			{Key: "job_timeout", Label: "Job Timeout", Description: "Abort a download job after this long (e.g. 10m). Zero disables the limit.", Type: "duration"},
			{Key: "max_concurrent_jobs", Label: "Max Concurrent Jobs", Description: "Maximum jobs the serve API runs at once (1-10).", Type: "int"},
		},
	}
}

// CategoryOrder returns the order of categories for display.
func CategoryOrder() []string {
	return []string{"General", "Network", "Engine"}
}

// DefaultSettings returns a new Settings instance with sensible defaults.
func DefaultSettings() *Settings {
	return &Settings{
		General: GeneralSettings{
			DefaultDownloadDir: utils.DefaultDownloadsDir(),
			ClipboardFallback:  true,
			Theme:              ThemeAdaptive,
			LogRetentionCount:  5,
		},
		Network: NetworkSettings{
			UserAgent:    "", // Empty means use default UA
			ProxyURL:     "",
			FetchTimeout: 30 * time.Second,
		},
		Engine: EngineSettings{
			DefaultThreads:    4,
			JobTimeout:        10 * time.Minute,
			MaxConcurrentJobs: 2,
		},
	}
}

// GetSettingsPath returns the path to the settings JSON file.
func GetSettingsPath() string {
	return filepath.Join(GetAppDir(), "settings.json")
}

// LoadSettings loads settings from disk. Returns defaults if the file doesn't exist.
func LoadSettings() (*Settings, error) {
	data, err := os.ReadFile(GetSettingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings() // Start with defaults to fill any missing fields
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// SaveSettings saves settings to disk atomically.
func SaveSettings(s *Settings) error {
	path := GetSettingsPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	// Atomic write: write to temp file, then rename
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, path)
}

// RuntimeConfig carries the subset of settings the download engine needs.
type RuntimeConfig struct {
	DefaultDownloadDir string
	UserAgent          string
	ProxyURL           string
	FetchTimeout       time.Duration
	DefaultThreads     int
	JobTimeout         time.Duration
	MaxConcurrentJobs  int
}

// ToRuntimeConfig creates a RuntimeConfig from user Settings.
func (s *Settings) ToRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		DefaultDownloadDir: s.General.DefaultDownloadDir,
		UserAgent:          s.Network.UserAgent,
		ProxyURL:           s.Network.ProxyURL,
		FetchTimeout:       s.Network.FetchTimeout,
		DefaultThreads:     s.Engine.DefaultThreads,
		JobTimeout:         s.Engine.JobTimeout,
		MaxConcurrentJobs:  s.Engine.MaxConcurrentJobs,
	}
}
