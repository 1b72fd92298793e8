// Package events defines the messages the download engine emits. The TUI
// feeds them into its update loop; the headless consumer prints them.
package events

import (
	"time"

	"github.com/whiterabbit74/kinopub-wnldr/internal/ffmpeg"
)

// JobStartedMsg is sent once the playlist has been fetched and the tool run
// is about to begin.
type JobStartedMsg struct {
	JobID      string
	Filename   string
	OutputPath string
}

// ProgressMsg is one monotonic progress reading for a running job.
type ProgressMsg struct {
	JobID   string
	Percent int
	Stage   ffmpeg.Stage
	Status  string
}

// JobCompleteMsg signals that the output file was written successfully.
type JobCompleteMsg struct {
	JobID      string
	OutputPath string
	Elapsed    time.Duration
}

// JobErrorMsg signals that the job failed or was cancelled.
type JobErrorMsg struct {
	JobID string
	Err   error
}
