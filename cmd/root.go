package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whiterabbit74/kinopub-wnldr/internal/config"
	"github.com/whiterabbit74/kinopub-wnldr/internal/engine"
	"github.com/whiterabbit74/kinopub-wnldr/internal/history"
	"github.com/whiterabbit74/kinopub-wnldr/internal/sandbox"
	"github.com/whiterabbit74/kinopub-wnldr/internal/tui"
	"github.com/whiterabbit74/kinopub-wnldr/internal/utils"
)

// Version information - set via ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// allowDirs are extra directories authorized for output via --allow.
var allowDirs []string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "kinopub-wnldr",
	Short:   "Download HLS video streams into local MP4 files",
	Long: `kinopub-wnldr resolves HLS master playlists, lets you pick video and
audio tracks, and remuxes them into an MP4 with ffmpeg.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initializeGlobalState()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringArrayVar(&allowDirs, "allow", nil, "Authorize an extra output directory (repeatable)")
	rootCmd.SetVersionTemplate("kinopub-wnldr version {{.Version}}\n")
}

// initializeGlobalState sets up the application directories and logging.
func initializeGlobalState() {
	appDir := config.GetAppDir()
	logsDir := config.GetLogsDir()

	os.MkdirAll(appDir, 0755)
	os.MkdirAll(logsDir, 0755)

	utils.ConfigureDebug(logsDir)

	settings := loadSettings()
	utils.CleanupLogs(settings.General.LogRetentionCount)
	tui.ApplyTheme(settings.General.Theme)
}

// loadSettings reads the settings file, falling back to defaults on any error.
func loadSettings() *config.Settings {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: settings unreadable, using defaults: %v\n", err)
		return config.DefaultSettings()
	}
	return settings
}

// buildGuard seeds the path guard with the configured download directory and
// any --allow flags.
func buildGuard(rc *config.RuntimeConfig) *sandbox.Guard {
	guard := sandbox.NewGuard()
	if rc.DefaultDownloadDir != "" {
		guard.Remember(rc.DefaultDownloadDir)
	}
	for _, dir := range allowDirs {
		guard.Remember(dir)
	}
	return guard
}

// buildOrchestrator assembles the engine from settings. The history store is
// optional: a broken database degrades to no recording, not a dead CLI.
func buildOrchestrator() (*engine.Orchestrator, *history.Store, *config.RuntimeConfig) {
	rc := loadSettings().ToRuntimeConfig()
	guard := buildGuard(rc)

	store, err := history.Open(config.GetHistoryPath())
	if err != nil {
		utils.Debug("History unavailable: %v", err)
		fmt.Fprintf(os.Stderr, "Warning: download history disabled: %v\n", err)
		store = nil
	}

	var recorder engine.Recorder
	if store != nil {
		recorder = store
	}
	return engine.New(rc, guard, recorder), store, rc
}
