// Package engine turns a playlist source and a pair of track choices into a
// finished MP4 on disk, with ffmpeg doing the stream work.
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/h2non/filetype"
	"golang.org/x/sync/errgroup"

	"github.com/whiterabbit74/kinopub-wnldr/internal/config"
	"github.com/whiterabbit74/kinopub-wnldr/internal/engine/events"
	"github.com/whiterabbit74/kinopub-wnldr/internal/ffmpeg"
	"github.com/whiterabbit74/kinopub-wnldr/internal/hls"
	"github.com/whiterabbit74/kinopub-wnldr/internal/manifest"
	"github.com/whiterabbit74/kinopub-wnldr/internal/sandbox"
	"github.com/whiterabbit74/kinopub-wnldr/internal/utils"
)

// tailLines is how many trailing diagnostic lines a ToolError keeps.
const tailLines = 50

// estimateInterval is how often the time-based progress path runs while the
// tool is quiet.
const estimateInterval = 500 * time.Millisecond

// Recorder persists finished and failed jobs. The history store implements
// it; tests substitute their own.
type Recorder interface {
	RecordCompleted(source, outputPath string, sizeBytes int64, elapsed time.Duration) error
	RecordFailed(source, reason string) error
}

// Orchestrator coordinates one download end to end: authorization, playlist
// resolution, track selection and the ffmpeg run.
type Orchestrator struct {
	Fetcher        *manifest.Fetcher
	Guard          *sandbox.Guard
	History        Recorder
	ToolCandidates []string
	Runtime        *config.RuntimeConfig
}

// New builds an orchestrator from runtime configuration.
func New(rc *config.RuntimeConfig, guard *sandbox.Guard, history Recorder) *Orchestrator {
	return &Orchestrator{
		Fetcher: manifest.NewFetcher(rc.FetchTimeout, rc.ProxyURL, rc.UserAgent),
		Guard:   guard,
		History: history,
		Runtime: rc,
	}
}

// ListTracks fetches the playlist behind source and returns its track
// catalog. Content that is not a playlist at all is rejected.
func (o *Orchestrator) ListTracks(ctx context.Context, source string) (*hls.Catalog, error) {
	m, err := o.Fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	if !hls.IsPlaylist(m.Content) {
		return nil, manifest.ErrUnsupportedFormat
	}
	return hls.Parse(m.Content, m.BaseURL), nil
}

// Download runs one job to completion. Progress and lifecycle messages are
// sent to emit as the job advances; the channel is never closed here.
// On success the output directory joins the authorized set and the result is
// recorded in history. A partially written file is left in place on failure
// so the user can inspect it.
func (o *Orchestrator) Download(ctx context.Context, job *Job, emit chan<- any) error {
	start := time.Now()
	err := o.download(ctx, job, emit)
	if err != nil {
		utils.Debug("Job %s failed after %s: %v", job.ID, time.Since(start).Round(time.Millisecond), err)
		if o.History != nil {
			if herr := o.History.RecordFailed(job.Source, err.Error()); herr != nil {
				utils.Debug("History write failed: %v", herr)
			}
		}
		o.send(emit, events.JobErrorMsg{JobID: job.ID, Err: err})
	}
	return err
}

func (o *Orchestrator) download(ctx context.Context, job *Job, emit chan<- any) error {
	if err := job.Validate(); err != nil {
		return err
	}

	// Authorization comes first: nothing is fetched for a destination the
	// user never approved.
	if err := o.Guard.Check(job.OutputDir); err != nil {
		return err
	}

	catalog, err := o.ListTracks(ctx, job.Source)
	if err != nil {
		return err
	}

	videoURL, audioURL, err := selectTracks(catalog, job.VideoIndex, job.AudioIndex)
	if err != nil {
		return err
	}

	tool, err := ffmpeg.Locate(ctx, o.ToolCandidates...)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(job.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	name := EnsureExtension(SanitizeFilename(job.Filename), ffmpeg.OutputExt)
	outputPath := filepath.Join(job.OutputDir, name)

	o.send(emit, events.JobStartedMsg{JobID: job.ID, Filename: name, OutputPath: outputPath})

	start := time.Now()
	if err := o.runTool(ctx, job, tool, videoURL, audioURL, outputPath, emit); err != nil {
		return err
	}

	// The destination proved itself writable; remember it for next time.
	o.Guard.Remember(job.OutputDir)

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("output file missing after successful run: %w", err)
	}
	sniffOutput(outputPath)

	if o.History != nil {
		if herr := o.History.RecordCompleted(job.Source, outputPath, info.Size(), time.Since(start)); herr != nil {
			utils.Debug("History write failed: %v", herr)
		}
	}

	o.send(emit, events.JobCompleteMsg{
		JobID:      job.ID,
		OutputPath: outputPath,
		Elapsed:    time.Since(start),
	})
	return nil
}

// selectTracks resolves the job's indexes against the catalog. A playlist
// with no video variants cannot be downloaded. Video index -1 means the
// first variant; audio index -1 means the video variant's own audio.
func selectTracks(catalog *hls.Catalog, videoIndex, audioIndex int) (videoURL, audioURL string, err error) {
	if len(catalog.Video) == 0 {
		return "", "", fmt.Errorf("%w: playlist has no video variants", ErrTrackNotFound)
	}
	if videoIndex < 0 {
		videoIndex = 0
	}
	if videoIndex >= len(catalog.Video) {
		return "", "", fmt.Errorf("%w: video index %d of %d", ErrTrackNotFound, videoIndex, len(catalog.Video))
	}
	videoURL = catalog.Video[videoIndex].URL

	if audioIndex >= 0 {
		if audioIndex >= len(catalog.Audio) {
			return "", "", fmt.Errorf("%w: audio index %d of %d", ErrTrackNotFound, audioIndex, len(catalog.Audio))
		}
		audioURL = catalog.Audio[audioIndex].URL
	}
	return videoURL, audioURL, nil
}

// runTool executes ffmpeg and converts its diagnostic stream into progress
// messages. Exact tool-reported progress and the time-based estimates share
// one tracker, so the displayed percentage never regresses.
func (o *Orchestrator) runTool(ctx context.Context, job *Job, tool, videoURL, audioURL, outputPath string, emit chan<- any) error {
	runCtx := ctx
	var cancel context.CancelFunc
	if o.Runtime != nil && o.Runtime.JobTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, o.Runtime.JobTimeout)
		defer cancel()
	}

	args := ffmpeg.RemuxArgs(videoURL, audioURL, job.Threads, outputPath)
	utils.Debug("Running %s %v", tool, args)

	cmd := exec.CommandContext(runCtx, tool, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	tracker := ffmpeg.NewTracker(ffmpeg.DefaultPolicy())
	estimator := ffmpeg.NewEstimator(ffmpeg.DefaultPolicy())
	var tail []string

	lines := make(chan string, 64)
	var g errgroup.Group
	g.Go(func() error {
		defer close(lines)
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		return scanner.Err()
	})

	ticker := time.NewTicker(estimateInterval)
	defer ticker.Stop()

	lastPercent := 0
	stageStart := time.Now()
	lastStage := tracker.Stage()

	report := func(s ffmpeg.Sample) {
		if s.Stage != lastStage {
			lastStage = s.Stage
			stageStart = time.Now()
		}
		lastPercent = s.Percent
		o.send(emit, events.ProgressMsg{JobID: job.ID, Percent: s.Percent, Stage: s.Stage, Status: s.Status})
	}

	for lines != nil {
		select {
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			tail = append(tail, line)
			if len(tail) > tailLines {
				tail = tail[1:]
			}
			if s, ok := tracker.ObserveLine(line); ok {
				report(s)
			}
		case <-ticker.C:
			if tracker.Done() {
				continue
			}
			target, ok := estimator.Estimate(tracker.Stage(), tracker.HasDuration(), float64(lastPercent), time.Since(stageStart))
			if !ok {
				continue
			}
			if s, ok := tracker.BumpEstimated(target); ok {
				report(s)
			}
		}
	}
	scanErr := g.Wait()

	waitErr := cmd.Wait()
	if waitErr == nil {
		if scanErr != nil {
			utils.Debug("Diagnostic stream read error: %v", scanErr)
		}
		if !tracker.Done() {
			report(ffmpeg.Sample{Percent: 100, Stage: ffmpeg.StageDone, Status: ffmpeg.StageDone.Status()})
		}
		return nil
	}

	// Cancellation and timeout are reported as such, not as tool failures.
	if ctx.Err() != nil {
		return ErrCancelled
	}
	if runCtx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("job timed out after %s", o.Runtime.JobTimeout)
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return &ToolError{ExitCode: exitErr.ExitCode(), Tail: tail}
	}
	return waitErr
}

// send delivers a message unless no consumer was attached.
func (o *Orchestrator) send(emit chan<- any, msg any) {
	if emit != nil {
		emit <- msg
	}
}

// sniffOutput verifies the finished file actually looks like a video
// container. A mismatch is only logged; the remux already succeeded.
func sniffOutput(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	head := make([]byte, 261)
	n, _ := f.Read(head)
	kind, err := filetype.Match(head[:n])
	if err != nil || !filetype.IsVideo(head[:n]) {
		utils.Debug("Output %s does not sniff as video (kind=%v)", path, kind)
	}
}
