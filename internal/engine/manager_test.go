package engine

import (
	"errors"
	"testing"
	"time"
)

func waitForStatus(t *testing.T, m *Manager, id string, want JobStatus) JobState {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if state, ok := m.Status(id); ok && state.Status == want {
			return state
		}
		time.Sleep(20 * time.Millisecond)
	}
	state, _ := m.Status(id)
	t.Fatalf("job %s never reached %s, last state: %+v", id, want, state)
	return JobState{}
}

func TestManagerRejectsInvalidJob(t *testing.T) {
	m := NewManager(testOrchestrator(t, t.TempDir(), "", nil), 1)

	if _, err := m.Start(&Job{}); !errors.Is(err, ErrInvalidJob) {
		t.Fatalf("Start = %v, want ErrInvalidJob", err)
	}
}

func TestManagerRunsJobToCompletion(t *testing.T) {
	tool := writeTool(t, `#!/bin/sh
[ "$1" = "-version" ] && exit 0
for last; do :; done
printf 'Duration: 00:00:10.00\n' >&2
printf 'out_time_ms=10000000\n' >&2
printf 'progress=end\n' >&2
printf 'payload' > "$last"
`)
	outDir := t.TempDir()
	m := NewManager(testOrchestrator(t, outDir, tool, &fakeRecorder{}), 2)

	id, err := m.Start(&Job{
		Source:     writeMaster(t),
		AudioIndex: -1,
		OutputDir:  outDir,
		Filename:   "managed",
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if id == "" {
		t.Fatal("Start returned empty ID")
	}

	state := waitForStatus(t, m, id, StatusCompleted)
	if state.Percent != 100 {
		t.Errorf("percent = %d, want 100", state.Percent)
	}
	if state.OutputPath == "" {
		t.Error("completed job should carry its output path")
	}
	if state.FinishedAt.IsZero() {
		t.Error("completed job should carry a finish time")
	}

	if got := m.List(); len(got) != 1 || got[0].ID != id {
		t.Errorf("List = %+v, want the one job", got)
	}
}

func TestManagerFailedJob(t *testing.T) {
	tool := writeTool(t, `#!/bin/sh
[ "$1" = "-version" ] && exit 0
printf 'broken\n' >&2
exit 1
`)
	outDir := t.TempDir()
	m := NewManager(testOrchestrator(t, outDir, tool, nil), 1)

	id, err := m.Start(&Job{
		Source:     writeMaster(t),
		AudioIndex: -1,
		OutputDir:  outDir,
		Filename:   "doomed",
	})
	if err != nil {
		t.Fatal(err)
	}

	state := waitForStatus(t, m, id, StatusFailed)
	if state.Error == "" {
		t.Error("failed job should carry an error message")
	}
}

func TestManagerCancel(t *testing.T) {
	tool := writeTool(t, `#!/bin/sh
[ "$1" = "-version" ] && exit 0
sleep 30
`)
	outDir := t.TempDir()
	m := NewManager(testOrchestrator(t, outDir, tool, nil), 1)

	id, err := m.Start(&Job{
		Source:     writeMaster(t),
		AudioIndex: -1,
		OutputDir:  outDir,
		Filename:   "stopped",
	})
	if err != nil {
		t.Fatal(err)
	}

	waitForStatus(t, m, id, StatusRunning)
	if !m.Cancel(id) {
		t.Fatal("Cancel reported unknown ID")
	}
	waitForStatus(t, m, id, StatusCancelled)

	if m.Cancel("no-such-id") {
		t.Error("Cancel of unknown ID should report false")
	}
}

func TestManagerStatusUnknownID(t *testing.T) {
	m := NewManager(testOrchestrator(t, t.TempDir(), "", nil), 1)
	if _, ok := m.Status("missing"); ok {
		t.Error("Status of unknown ID should report false")
	}
}
