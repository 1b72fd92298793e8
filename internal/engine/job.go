package engine

import "fmt"

// Job describes one download request. VideoIndex selects a variant from the
// playlist's video list, or -1 for the first variant; AudioIndex selects an
// alternate audio rendition, or -1 to take the audio muxed into the video
// variant.
type Job struct {
	ID         string
	Source     string
	VideoIndex int
	AudioIndex int
	OutputDir  string
	Filename   string
	Threads    int
}

// Validate rejects jobs that cannot possibly run. Track existence is checked
// later, against the parsed playlist.
func (j *Job) Validate() error {
	if j.Source == "" {
		return fmt.Errorf("%w: empty source", ErrInvalidJob)
	}
	if j.VideoIndex < -1 {
		return fmt.Errorf("%w: video index %d", ErrInvalidJob, j.VideoIndex)
	}
	if j.AudioIndex < -1 {
		return fmt.Errorf("%w: audio index %d", ErrInvalidJob, j.AudioIndex)
	}
	if j.OutputDir == "" {
		return fmt.Errorf("%w: empty output directory", ErrInvalidJob)
	}
	if j.Filename == "" {
		return fmt.Errorf("%w: empty filename", ErrInvalidJob)
	}
	return nil
}
