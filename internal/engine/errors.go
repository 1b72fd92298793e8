package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidJob is returned when a job fails validation before any work starts.
var ErrInvalidJob = errors.New("invalid download job")

// ErrTrackNotFound is returned when a requested track index does not exist in
// the playlist, or when the playlist carries no video variants at all.
var ErrTrackNotFound = errors.New("requested track not found in playlist")

// ErrCancelled is returned when a job is stopped by the caller.
var ErrCancelled = errors.New("download cancelled")

// ToolError carries the exit status of a failed ffmpeg run together with the
// tail of its diagnostic output.
type ToolError struct {
	ExitCode int
	Tail     []string
}

func (e *ToolError) Error() string {
	if len(e.Tail) == 0 {
		return fmt.Sprintf("ffmpeg exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("ffmpeg exited with code %d: %s", e.ExitCode, strings.Join(e.Tail, "\n"))
}
