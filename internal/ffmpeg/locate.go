// Package ffmpeg locates the external ffmpeg binary, builds remux argument
// lists, and turns the tool's diagnostic stream into stage-aware progress.
package ffmpeg

import (
	"context"
	"errors"
	"os/exec"
	"strconv"

	"github.com/whiterabbit74/kinopub-wnldr/internal/utils"
)

// ErrNotFound is returned when no ffmpeg candidate responds to probing.
var ErrNotFound = errors.New("ffmpeg not found on this system")

// DefaultCandidates are the probed install locations, in order. The bare
// name goes through the command search path.
var DefaultCandidates = []string{
	"ffmpeg",
	"/usr/local/bin/ffmpeg",
	"/opt/homebrew/bin/ffmpeg",
	"/usr/bin/ffmpeg",
}

// Locate probes each candidate by invoking it with -version and returns the
// first one that exits successfully. With no explicit candidates the default
// list is probed.
func Locate(ctx context.Context, candidates ...string) (string, error) {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	for _, candidate := range candidates {
		cmd := exec.CommandContext(ctx, candidate, "-version")
		cmd.Stdout = nil
		cmd.Stderr = nil
		if err := cmd.Run(); err == nil {
			utils.Debug("Found ffmpeg at %s", candidate)
			return candidate, nil
		}
	}
	return "", ErrNotFound
}

// OutputExt is the fixed container extension; ffmpeg always produces MP4 here.
const OutputExt = ".mp4"

const (
	minThreads = 1
	maxThreads = 16
)

// ClampThreads bounds the decode-thread hint to [1,16].
func ClampThreads(n int) int {
	if n < minThreads {
		return minThreads
	}
	if n > maxThreads {
		return maxThreads
	}
	return n
}

// RemuxArgs builds the argument list for a stream-copy remux of the given
// inputs into outputPath. With both a video and an audio input, the first
// input's video stream and the second input's audio stream are mapped
// explicitly; with a single input everything is copied. Progress reporting
// is requested on the diagnostic stream (fd 2).
func RemuxArgs(videoInput, audioInput string, threads int, outputPath string) []string {
	args := []string{"-y", "-nostdin", "-threads", strconv.Itoa(ClampThreads(threads))}

	args = append(args, "-i", videoInput)
	if audioInput != "" {
		args = append(args, "-i", audioInput)
		args = append(args, "-map", "0:v:0", "-map", "1:a:0", "-c:v", "copy", "-c:a", "copy")
	} else {
		args = append(args, "-c", "copy")
	}

	return append(args, "-progress", "pipe:2", "-nostats", outputPath)
}
