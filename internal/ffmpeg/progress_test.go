package ffmpeg

import (
	"testing"
	"time"
)

func feed(t *testing.T, tr *Tracker, lines []string) []Sample {
	t.Helper()
	var samples []Sample
	for _, line := range lines {
		if s, ok := tr.ObserveLine(line); ok {
			samples = append(samples, s)
		}
	}
	return samples
}

func TestTrackerDuration(t *testing.T) {
	tr := NewTracker(DefaultPolicy())

	s, ok := tr.ObserveLine("  Duration: 00:01:40.00, start: 0.000000, bitrate: 1280 kb/s")
	if !ok {
		t.Fatal("duration line should produce a sample")
	}
	if tr.Stage() != StageVideo {
		t.Errorf("stage = %v, want video after duration", tr.Stage())
	}
	if !tr.HasDuration() {
		t.Error("duration should be recorded")
	}
	if s.Percent != 10 {
		t.Errorf("percent = %d, want video span start 10", s.Percent)
	}
}

func TestTrackerOutTimeMapping(t *testing.T) {
	tr := NewTracker(DefaultPolicy())

	// 100 seconds of media
	feed(t, tr, []string{"Duration: 00:01:40.00, start: 0.000000"})

	// Halfway through: video span is 10-70, so 10 + 50*0.6 = 40
	s, ok := tr.ObserveLine("out_time_ms=50000000")
	if !ok {
		t.Fatal("out_time_ms should produce a sample")
	}
	if s.Percent != 40 {
		t.Errorf("percent = %d, want 40 at half duration", s.Percent)
	}
	if s.Stage != StageVideo {
		t.Errorf("stage = %v, want video", s.Stage)
	}
	if s.Status != "Downloading video" {
		t.Errorf("status = %q", s.Status)
	}
}

func TestTrackerOutTimeClockFormat(t *testing.T) {
	tr := NewTracker(DefaultPolicy())
	feed(t, tr, []string{"Duration: 00:01:40.00"})

	s, ok := tr.ObserveLine("out_time=00:00:50.000000")
	if !ok {
		t.Fatal("out_time should produce a sample")
	}
	if s.Percent != 40 {
		t.Errorf("percent = %d, want 40", s.Percent)
	}
}

func TestTrackerStageHandoff(t *testing.T) {
	tr := NewTracker(DefaultPolicy())
	feed(t, tr, []string{"Duration: 00:01:40.00"})

	// 96% of media time hands video off to audio
	tr.ObserveLine("out_time_ms=96000000")
	if tr.Stage() != StageAudio {
		t.Errorf("stage = %v, want audio after 95%% of video", tr.Stage())
	}

	tr.ObserveLine("out_time_ms=97000000")
	if tr.Stage() != StageMerging {
		t.Errorf("stage = %v, want merging after 95%% of audio", tr.Stage())
	}
}

func TestTrackerMonotonic(t *testing.T) {
	tr := NewTracker(DefaultPolicy())

	lines := []string{
		"Duration: 00:01:40.00",
		"out_time_ms=50000000",
		"out_time_ms=20000000", // tool regressed; display must not
		"progress=continue",
		"out_time_ms=60000000",
		"progress=end",
	}

	last := -1
	for _, s := range feed(t, tr, lines) {
		if s.Percent < last {
			t.Fatalf("percent regressed: %d after %d", s.Percent, last)
		}
		last = s.Percent
	}
	if last != 100 {
		t.Errorf("final percent = %d, want 100", last)
	}
}

func TestTrackerProgressEnd(t *testing.T) {
	tr := NewTracker(DefaultPolicy())

	s, ok := tr.ObserveLine("progress=end")
	if !ok {
		t.Fatal("progress=end should produce a sample")
	}
	if s.Percent != 100 || s.Stage != StageDone {
		t.Errorf("sample = %+v, want 100/done", s)
	}
	if !tr.Done() {
		t.Error("tracker should be done")
	}
	if s.Status != "Completed" {
		t.Errorf("status = %q, want Completed", s.Status)
	}
}

func TestTrackerIgnoresNoise(t *testing.T) {
	tr := NewTracker(DefaultPolicy())

	noise := []string{
		"",
		"frame=  123 fps= 25",
		"out_time_ms=garbage",
		"out_time_ms=50000000", // no duration known yet, must be ignored
		"[https @ 0x7f] Opening 'seg1.ts' for reading",
	}
	if samples := feed(t, tr, noise); len(samples) != 0 {
		t.Errorf("noise produced %d samples, want 0", len(samples))
	}
}

func TestTrackerEstimatedPathAdvancesRampIn(t *testing.T) {
	tr := NewTracker(DefaultPolicy())

	var last Sample
	for i := 0; i < 10; i++ {
		if s, ok := tr.BumpEstimated(float64(i)); ok {
			last = s
		}
	}
	if tr.Stage() != StageAnalyzing {
		t.Errorf("stage = %v, want analyzing after crossing ramp-in span", tr.Stage())
	}
	if last.Percent < 5 {
		t.Errorf("percent = %d, want at least 5", last.Percent)
	}

	// Estimated values cannot move the percentage backwards
	if _, ok := tr.BumpEstimated(1); ok {
		t.Error("lower estimate must not produce a sample")
	}
}

func TestEstimator(t *testing.T) {
	e := NewEstimator(DefaultPolicy())

	t.Run("PreparingRampsAfterGrace", func(t *testing.T) {
		if _, ok := e.Estimate(StagePreparing, false, 0, 100*time.Millisecond); ok {
			t.Error("no estimate expected inside the grace period")
		}
		p, ok := e.Estimate(StagePreparing, false, 0, time.Second)
		if !ok || p != 1 {
			t.Errorf("estimate = %v,%v, want 1,true", p, ok)
		}
	})

	t.Run("PreparingCapsAtSpanEnd", func(t *testing.T) {
		p, _ := e.Estimate(StagePreparing, false, 4.5, time.Second)
		if p != 5 {
			t.Errorf("estimate = %v, want cap at 5", p)
		}
	})

	t.Run("VideoOnlyWhenToolSilent", func(t *testing.T) {
		if _, ok := e.Estimate(StageVideo, true, 20, time.Minute); ok {
			t.Error("no estimate while tool reports real progress")
		}
		p, ok := e.Estimate(StageVideo, false, 20, 6*time.Second)
		if !ok || p <= 20 {
			t.Errorf("estimate = %v,%v, want slow creep", p, ok)
		}
	})

	t.Run("MergingRampsOut", func(t *testing.T) {
		p, ok := e.Estimate(StageMerging, true, 85, 2*time.Second)
		if !ok || p != 100 {
			t.Errorf("estimate = %v,%v, want 100,true after 2s", p, ok)
		}
	})

	t.Run("AudioLeftToTool", func(t *testing.T) {
		if _, ok := e.Estimate(StageAudio, true, 75, time.Minute); ok {
			t.Error("audio stage must be driven by tool progress only")
		}
	})

	t.Run("DoneNothing", func(t *testing.T) {
		if _, ok := e.Estimate(StageDone, true, 100, time.Minute); ok {
			t.Error("no estimates after done")
		}
	})
}
