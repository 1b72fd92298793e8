package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/whiterabbit74/kinopub-wnldr/internal/engine"
	"github.com/whiterabbit74/kinopub-wnldr/internal/engine/events"
	"github.com/whiterabbit74/kinopub-wnldr/internal/tui"
)

var getCmd = &cobra.Command{
	Use:   "get [source]",
	Short: "Download a playlist into an MP4 file",
	Long: `get fetches an HLS master playlist, picks the requested video and audio
tracks, and remuxes them into an MP4 with ffmpeg. Track indexes come from
'tracks'. With no argument the clipboard is consulted for a URL.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings()
		source, err := resolveSource(args, settings.General.ClipboardFallback)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		videoIndex, _ := cmd.Flags().GetInt("video")
		audioIndex, _ := cmd.Flags().GetInt("audio")
		outputDir, _ := cmd.Flags().GetString("output")
		name, _ := cmd.Flags().GetString("name")
		threads, _ := cmd.Flags().GetInt("threads")
		headless, _ := cmd.Flags().GetBool("headless")

		orch, store, rc := buildOrchestrator()
		if store != nil {
			defer store.Close()
		}

		if outputDir == "" {
			outputDir = rc.DefaultDownloadDir
		}
		if name == "" {
			name = "video"
		}
		if threads <= 0 {
			threads = rc.DefaultThreads
		}

		job := &engine.Job{
			ID:         uuid.New().String(),
			Source:     source,
			VideoIndex: videoIndex,
			AudioIndex: audioIndex,
			OutputDir:  outputDir,
			Filename:   name,
			Threads:    threads,
		}

		if headless {
			runHeadless(orch, job)
			return
		}
		runWithTUI(orch, job)
	},
}

// runWithTUI shows a live progress view while the job runs.
func runWithTUI(orch *engine.Orchestrator, job *engine.Job) {
	evts := make(chan any, 100)
	m := tui.New(evts)
	p := tea.NewProgram(m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		orch.Download(ctx, job, evts)
		close(evts)
	}()

	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
	cancel()

	if m, ok := final.(tui.Model); ok {
		if m.Err() != nil {
			os.Exit(1)
		}
		if !m.Done() {
			// User aborted before completion
			os.Exit(130)
		}
	}
}

// runHeadless prints progress lines to stdout, for scripts and CI.
func runHeadless(orch *engine.Orchestrator, job *engine.Job) {
	evts := make(chan any, 100)
	done := make(chan error, 1)
	go func() {
		done <- orch.Download(context.Background(), job, evts)
		close(evts)
	}()

	lastPercent := -1
	for msg := range evts {
		switch e := msg.(type) {
		case events.JobStartedMsg:
			fmt.Printf("Started: %s\n", e.Filename)
		case events.ProgressMsg:
			if e.Percent != lastPercent {
				fmt.Printf("%3d%%  %s\n", e.Percent, e.Status)
				lastPercent = e.Percent
			}
		case events.JobCompleteMsg:
			fmt.Printf("Completed: %s (in %s)\n", e.OutputPath, e.Elapsed.Round(time.Second))
		case events.JobErrorMsg:
			fmt.Fprintf(os.Stderr, "Error: %v\n", e.Err)
		}
	}
	if err := <-done; err != nil {
		os.Exit(1)
	}
}

func init() {
	getCmd.Flags().IntP("video", "v", 0, "Video track index from 'tracks'")
	getCmd.Flags().IntP("audio", "a", -1, "Audio track index, -1 for the variant's own audio")
	getCmd.Flags().StringP("output", "o", "", "Output directory (default: configured download dir)")
	getCmd.Flags().StringP("name", "n", "", "Output filename without extension")
	getCmd.Flags().IntP("threads", "t", 0, "ffmpeg decode threads (1-16)")
	getCmd.Flags().Bool("headless", false, "Print progress to stdout instead of the TUI")
	rootCmd.AddCommand(getCmd)
}
