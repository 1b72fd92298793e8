package ffmpeg

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Stage identifies the phase a download job is in. Stages only move forward.
type Stage int

const (
	StagePreparing Stage = iota
	StageAnalyzing
	StageVideo
	StageAudio
	StageMerging
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StagePreparing:
		return "preparing"
	case StageAnalyzing:
		return "analyzing"
	case StageVideo:
		return "video"
	case StageAudio:
		return "audio"
	case StageMerging:
		return "merging"
	case StageDone:
		return "done"
	}
	return "unknown"
}

// Status returns the human text shown for a stage.
func (s Stage) Status() string {
	switch s {
	case StagePreparing:
		return "Preparing ffmpeg"
	case StageAnalyzing:
		return "Analyzing sources"
	case StageVideo:
		return "Downloading video"
	case StageAudio:
		return "Downloading audio"
	case StageMerging:
		return "Merging and finalizing"
	case StageDone:
		return "Completed"
	}
	return ""
}

// Span is a stage's slice of the overall 0-100 percentage range.
type Span struct {
	Start float64
	End   float64
}

// Policy maps stages onto percentage sub-ranges. The numbers are one
// consistent choice, not an exact contract with ffmpeg.
type Policy struct {
	Preparing Span
	Analyzing Span
	Video     Span
	Audio     Span
	Merging   Span
}

// DefaultPolicy is the stage split shown to users: short ramp-in, the bulk
// of the range on video, then audio and the merge tail.
func DefaultPolicy() Policy {
	return Policy{
		Preparing: Span{0, 5},
		Analyzing: Span{5, 10},
		Video:     Span{10, 70},
		Audio:     Span{70, 85},
		Merging:   Span{85, 100},
	}
}

func (p Policy) span(s Stage) Span {
	switch s {
	case StagePreparing:
		return p.Preparing
	case StageAnalyzing:
		return p.Analyzing
	case StageVideo:
		return p.Video
	case StageAudio:
		return p.Audio
	case StageMerging:
		return p.Merging
	}
	return Span{100, 100}
}

// Sample is one progress reading. Percent is monotonic within a job.
type Sample struct {
	Percent int
	Stage   Stage
	Status  string
}

var (
	durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+(?:\.\d+)?)`)
	outTimeRe  = regexp.MustCompile(`out_time=(\d+):(\d+):(\d+(?:\.\d+)?)`)
)

// Tracker converts ffmpeg's diagnostic lines into stage-aware progress.
// This is the exact path: every sample is derived from what the tool
// actually reported. The time-based fallback lives in Estimator.
type Tracker struct {
	policy     Policy
	stage      Stage
	percent    float64
	durationUS int64
}

// NewTracker returns a tracker starting in the preparing stage.
func NewTracker(policy Policy) *Tracker {
	return &Tracker{policy: policy}
}

// Stage returns the current stage.
func (t *Tracker) Stage() Stage { return t.stage }

// Done reports whether ffmpeg has signalled end of progress.
func (t *Tracker) Done() bool { return t.stage == StageDone }

// HasDuration reports whether a total media duration has been seen.
func (t *Tracker) HasDuration() bool { return t.durationUS > 0 }

// ObserveLine feeds one diagnostic line to the tracker. It returns a sample
// and true when the line changed the progress reading.
func (t *Tracker) ObserveLine(line string) (Sample, bool) {
	line = strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(line, "Duration:"):
		if m := durationRe.FindStringSubmatch(line); m != nil {
			t.durationUS = clockToMicros(m[1], m[2], m[3])
			// Duration arriving means analysis is over
			if t.stage < StageVideo {
				t.stage = StageVideo
				t.bump(t.policy.Video.Start)
				return t.sample(), true
			}
		}

	case strings.HasPrefix(line, "out_time_ms="):
		// Despite the name, ffmpeg reports microseconds here
		us, err := strconv.ParseInt(line[len("out_time_ms="):], 10, 64)
		if err == nil && t.durationUS > 0 {
			return t.observeElapsed(us)
		}

	case strings.HasPrefix(line, "out_time="):
		if m := outTimeRe.FindStringSubmatch(line); m != nil && t.durationUS > 0 {
			return t.observeElapsed(clockToMicros(m[1], m[2], m[3]))
		}

	case line == "progress=continue":
		return t.sample(), true

	case line == "progress=end":
		t.stage = StageDone
		t.percent = 100
		return t.sample(), true
	}

	return Sample{}, false
}

// observeElapsed maps a tool-reported media position into the current
// stage's percentage span and hands the stage forward near its end.
func (t *Tracker) observeElapsed(us int64) (Sample, bool) {
	completed := float64(us) / float64(t.durationUS) * 100
	if completed > 100 {
		completed = 100
	}

	switch t.stage {
	case StageVideo:
		t.bump(mapInto(t.policy.Video, completed))
		if completed >= 95 {
			t.stage = StageAudio
		}
	case StageAudio:
		t.bump(mapInto(t.policy.Audio, completed))
		if completed >= 95 {
			t.stage = StageMerging
		}
	default:
		return Sample{}, false
	}
	return t.sample(), true
}

// BumpEstimated merges an estimated percentage into the tracker, advancing
// from preparing to analyzing once the ramp-in span is exhausted. Estimated
// values obey the same monotonic gate as exact ones.
func (t *Tracker) BumpEstimated(percent float64) (Sample, bool) {
	before := t.percent
	t.bump(percent)
	if t.stage == StagePreparing && t.percent >= t.policy.Preparing.End {
		t.stage = StageAnalyzing
	}
	if t.percent <= before {
		return Sample{}, false
	}
	return t.sample(), true
}

func (t *Tracker) bump(p float64) {
	if p > 100 {
		p = 100
	}
	if p > t.percent {
		t.percent = p
	}
}

func (t *Tracker) sample() Sample {
	return Sample{
		Percent: int(t.percent + 0.5),
		Stage:   t.stage,
		Status:  t.stage.Status(),
	}
}

func mapInto(span Span, completed float64) float64 {
	return span.Start + completed*(span.End-span.Start)/100
}

func clockToMicros(hh, mm, ss string) int64 {
	hours, _ := strconv.Atoi(hh)
	minutes, _ := strconv.Atoi(mm)
	seconds, _ := strconv.ParseFloat(ss, 64)
	total := float64(hours*3600+minutes*60) + seconds
	return int64(total * 1e6)
}

// Estimator is the time-based progress policy used where ffmpeg gives no
// signal: the ramp-in before the tool prints anything, a stalled video
// stage, and the merge tail. It is a pure function of stage, elapsed time
// in that stage, and the current percentage, so tests need no wall clock.
type Estimator struct {
	policy Policy
}

// NewEstimator returns an estimator for the given stage policy.
func NewEstimator(policy Policy) *Estimator {
	return &Estimator{policy: policy}
}

// Estimate returns a target percentage for the estimated path, or false when
// the current stage should be left to tool-reported progress.
func (e *Estimator) Estimate(stage Stage, hasDuration bool, current float64, elapsedInStage time.Duration) (float64, bool) {
	switch stage {
	case StagePreparing:
		if elapsedInStage > 500*time.Millisecond {
			return min(e.policy.Preparing.End, current+1), true
		}
	case StageAnalyzing:
		if elapsedInStage > time.Second {
			return min(e.policy.Analyzing.End, current+1), true
		}
	case StageVideo:
		// Creep forward only when the tool has gone quiet
		if !hasDuration && elapsedInStage > 5*time.Second {
			return min(e.policy.Video.End-5, current+0.3), true
		}
	case StageMerging:
		return min(100, e.policy.Merging.Start+elapsedInStage.Seconds()*7.5), true
	}
	return 0, false
}
