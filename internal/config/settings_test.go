package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if settings == nil {
		t.Fatal("DefaultSettings returned nil")
	}

	t.Run("GeneralSettings", func(t *testing.T) {
		if settings.General.DefaultDownloadDir == "" {
			t.Error("Default download directory should not be empty")
		}
		if !settings.General.ClipboardFallback {
			t.Error("ClipboardFallback should be true by default")
		}
		if settings.General.Theme != ThemeAdaptive {
			t.Errorf("Theme should default to adaptive, got %d", settings.General.Theme)
		}
		if settings.General.LogRetentionCount <= 0 {
			t.Errorf("LogRetentionCount should be positive, got %d", settings.General.LogRetentionCount)
		}
	})

	t.Run("NetworkSettings", func(t *testing.T) {
		// UserAgent and ProxyURL can be empty (means use defaults)
		if settings.Network.FetchTimeout <= 0 {
			t.Errorf("FetchTimeout should be positive, got %v", settings.Network.FetchTimeout)
		}
	})

	t.Run("EngineSettings", func(t *testing.T) {
		if settings.Engine.DefaultThreads < 1 || settings.Engine.DefaultThreads > 16 {
			t.Errorf("DefaultThreads should be within 1-16, got %d", settings.Engine.DefaultThreads)
		}
		if settings.Engine.JobTimeout <= 0 {
			t.Errorf("JobTimeout should be positive by default, got %v", settings.Engine.JobTimeout)
		}
		if settings.Engine.MaxConcurrentJobs <= 0 {
			t.Errorf("MaxConcurrentJobs should be positive, got %d", settings.Engine.MaxConcurrentJobs)
		}
	})
}

func TestDefaultSettings_Consistency(t *testing.T) {
	s1 := DefaultSettings()
	s2 := DefaultSettings()

	if s1 == s2 {
		t.Error("DefaultSettings should return new instance each time")
	}
	if s1.Engine.DefaultThreads != s2.Engine.DefaultThreads {
		t.Error("Default settings should be consistent")
	}
}

func TestGetAppDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(appDirEnv, dir)

	if got := GetAppDir(); got != dir {
		t.Errorf("GetAppDir = %s, want env override %s", got, dir)
	}
	if !strings.HasPrefix(GetSettingsPath(), dir) {
		t.Errorf("Settings path should be under app dir, got %s", GetSettingsPath())
	}
	if !strings.HasSuffix(GetSettingsPath(), "settings.json") {
		t.Errorf("Settings path should end with settings.json, got %s", GetSettingsPath())
	}
	if !strings.HasPrefix(GetLogsDir(), dir) {
		t.Errorf("Logs dir should be under app dir, got %s", GetLogsDir())
	}
	if !strings.HasSuffix(GetHistoryPath(), "history.db") {
		t.Errorf("History path should end with history.db, got %s", GetHistoryPath())
	}
}

func TestSaveAndLoadSettings_RoundTrip(t *testing.T) {
	t.Setenv(appDirEnv, t.TempDir())

	original := DefaultSettings()
	original.General.DefaultDownloadDir = "/test/path"
	original.General.ClipboardFallback = false
	original.Network.UserAgent = "RoundTripTest/1.0"
	original.Network.ProxyURL = "socks5://127.0.0.1:1080"
	original.Network.FetchTimeout = 45 * time.Second
	original.Engine.DefaultThreads = 8
	original.Engine.JobTimeout = 20 * time.Minute

	if err := SaveSettings(original); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	if _, err := os.Stat(GetSettingsPath()); err != nil {
		t.Fatalf("Settings file was not created: %v", err)
	}

	loaded, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if loaded.General.DefaultDownloadDir != "/test/path" {
		t.Errorf("DefaultDownloadDir mismatch: got %q", loaded.General.DefaultDownloadDir)
	}
	if loaded.General.ClipboardFallback {
		t.Error("ClipboardFallback should round-trip as false")
	}
	if loaded.Network.UserAgent != "RoundTripTest/1.0" {
		t.Errorf("UserAgent mismatch: got %q", loaded.Network.UserAgent)
	}
	if loaded.Network.FetchTimeout != 45*time.Second {
		t.Errorf("FetchTimeout mismatch: got %v", loaded.Network.FetchTimeout)
	}
	if loaded.Engine.DefaultThreads != 8 {
		t.Errorf("DefaultThreads mismatch: got %d", loaded.Engine.DefaultThreads)
	}
	if loaded.Engine.JobTimeout != 20*time.Minute {
		t.Errorf("JobTimeout mismatch: got %v", loaded.Engine.JobTimeout)
	}
}

func TestLoadSettings_MissingFile(t *testing.T) {
	t.Setenv(appDirEnv, t.TempDir())

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings with no file should return defaults, got error: %v", err)
	}
	if settings.Engine.DefaultThreads <= 0 {
		t.Error("Should return default settings with valid values")
	}
}

func TestLoadSettings_CorruptedJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(appDirEnv, dir)

	if err := os.WriteFile(filepath.Join(dir, "settings.json"), []byte("{invalid json"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if _, err := LoadSettings(); err == nil {
		t.Error("Expected error when loading invalid JSON")
	}
}

func TestLoadSettings_PartialJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(appDirEnv, dir)

	partial := `{
		"general": {
			"default_download_dir": "/custom/path"
		}
	}`
	if err := os.WriteFile(filepath.Join(dir, "settings.json"), []byte(partial), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if settings.General.DefaultDownloadDir != "/custom/path" {
		t.Errorf("Custom field not set: %s", settings.General.DefaultDownloadDir)
	}
	// Missing fields keep their defaults
	if settings.Engine.DefaultThreads <= 0 {
		t.Error("Default values should be preserved for missing fields")
	}
	if settings.Network.FetchTimeout <= 0 {
		t.Error("Default FetchTimeout should be preserved")
	}
}

func TestToRuntimeConfig(t *testing.T) {
	settings := DefaultSettings()
	settings.Network.ProxyURL = "http://127.0.0.1:8080"
	rc := settings.ToRuntimeConfig()

	if rc == nil {
		t.Fatal("ToRuntimeConfig returned nil")
	}
	if rc.DefaultDownloadDir != settings.General.DefaultDownloadDir {
		t.Error("DefaultDownloadDir not correctly mapped")
	}
	if rc.UserAgent != settings.Network.UserAgent {
		t.Error("UserAgent not correctly mapped")
	}
	if rc.ProxyURL != "http://127.0.0.1:8080" {
		t.Error("ProxyURL not correctly mapped")
	}
	if rc.FetchTimeout != settings.Network.FetchTimeout {
		t.Error("FetchTimeout not correctly mapped")
	}
	if rc.DefaultThreads != settings.Engine.DefaultThreads {
		t.Error("DefaultThreads not correctly mapped")
	}
	if rc.JobTimeout != settings.Engine.JobTimeout {
		t.Error("JobTimeout not correctly mapped")
	}
	if rc.MaxConcurrentJobs != settings.Engine.MaxConcurrentJobs {
		t.Error("MaxConcurrentJobs not correctly mapped")
	}
}

func TestGetSettingsMetadata(t *testing.T) {
	metadata := GetSettingsMetadata()
	if metadata == nil {
		t.Fatal("GetSettingsMetadata returned nil")
	}

	for _, cat := range CategoryOrder() {
		if _, ok := metadata[cat]; !ok {
			t.Errorf("Missing metadata for category: %s", cat)
		}
	}

	validTypes := map[string]bool{
		"string": true, "int": true, "bool": true, "duration": true,
	}
	for category, settings := range metadata {
		for _, setting := range settings {
			if setting.Key == "" || setting.Label == "" || setting.Description == "" {
				t.Errorf("Category %s, key %q: incomplete metadata", category, setting.Key)
			}
			if !validTypes[setting.Type] {
				t.Errorf("Category %s, key %s: invalid type %q", category, setting.Key, setting.Type)
			}
		}
	}
}

func TestSettingsJSON_Serialization(t *testing.T) {
	original := DefaultSettings()

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	loaded := &Settings{}
	if err := json.Unmarshal(data, loaded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if loaded.Engine.DefaultThreads != original.Engine.DefaultThreads {
		t.Error("Round-trip failed for DefaultThreads")
	}
	if loaded.Network.FetchTimeout != original.Network.FetchTimeout {
		t.Error("Round-trip failed for FetchTimeout (duration)")
	}
}
