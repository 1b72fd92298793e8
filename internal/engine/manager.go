package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/whiterabbit74/kinopub-wnldr/internal/engine/events"
	"github.com/whiterabbit74/kinopub-wnldr/internal/utils"
)

// JobStatus is the lifecycle state of a managed job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// JobState is a point-in-time snapshot of a managed job.
type JobState struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Status     JobStatus `json:"status"`
	Percent    int       `json:"percent"`
	Stage      string    `json:"stage"`
	StatusText string    `json:"status_text"`
	OutputPath string    `json:"output_path,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

type jobEntry struct {
	state  JobState
	cancel context.CancelFunc
}

// Manager runs download jobs concurrently and tracks their state. It backs
// the local HTTP API, where jobs outlive the request that started them.
type Manager struct {
	orch *Orchestrator
	sem  chan struct{}

	mu   sync.RWMutex
	jobs map[string]*jobEntry
}

// NewManager wraps an orchestrator with a registry bounded to maxConcurrent
// simultaneously running jobs.
func NewManager(orch *Orchestrator, maxConcurrent int) *Manager {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Manager{
		orch: orch,
		sem:  make(chan struct{}, maxConcurrent),
		jobs: make(map[string]*jobEntry),
	}
}

// Start validates the job, assigns it an ID and launches it in the
// background. The returned ID is usable with Status and Cancel immediately.
func (m *Manager) Start(job *Job) (string, error) {
	if err := job.Validate(); err != nil {
		return "", err
	}
	job.ID = uuid.New().String()

	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.jobs[job.ID] = &jobEntry{
		state: JobState{
			ID:        job.ID,
			Source:    job.Source,
			Status:    StatusQueued,
			StartedAt: time.Now(),
		},
		cancel: cancel,
	}
	m.mu.Unlock()

	go m.run(ctx, job)
	return job.ID, nil
}

func (m *Manager) run(ctx context.Context, job *Job) {
	select {
	case m.sem <- struct{}{}:
		defer func() { <-m.sem }()
	case <-ctx.Done():
		m.finish(job.ID, StatusCancelled, "", ErrCancelled.Error())
		return
	}
	m.setStatus(job.ID, StatusRunning)

	evts := make(chan any, 16)
	done := make(chan error, 1)
	go func() {
		done <- m.orch.Download(ctx, job, evts)
		close(evts)
	}()

	var outputPath string
	for msg := range evts {
		switch e := msg.(type) {
		case events.JobStartedMsg:
			outputPath = e.OutputPath
		case events.ProgressMsg:
			m.setProgress(job.ID, e.Percent, e.Stage.String(), e.Status)
		case events.JobCompleteMsg:
			outputPath = e.OutputPath
		}
	}

	if err := <-done; err != nil {
		status := StatusFailed
		if ctx.Err() != nil {
			status = StatusCancelled
		}
		m.finish(job.ID, status, "", err.Error())
		return
	}
	m.finish(job.ID, StatusCompleted, outputPath, "")
}

// Status returns a snapshot of one job.
func (m *Manager) Status(id string) (JobState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.jobs[id]
	if !ok {
		return JobState{}, false
	}
	return entry.state, true
}

// List returns snapshots of all known jobs, newest first.
func (m *Manager) List() []JobState {
	m.mu.RLock()
	states := make([]JobState, 0, len(m.jobs))
	for _, entry := range m.jobs {
		states = append(states, entry.state)
	}
	m.mu.RUnlock()

	sort.Slice(states, func(i, j int) bool {
		return states[i].StartedAt.After(states[j].StartedAt)
	})
	return states
}

// Cancel stops a running or queued job. It reports whether the ID was known.
func (m *Manager) Cancel(id string) bool {
	m.mu.RLock()
	entry, ok := m.jobs[id]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	utils.Debug("Cancelling job %s", id)
	entry.cancel()
	return true
}

func (m *Manager) setStatus(id string, status JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.jobs[id]; ok {
		entry.state.Status = status
	}
}

func (m *Manager) setProgress(id string, percent int, stage, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.jobs[id]; ok {
		entry.state.Percent = percent
		entry.state.Stage = stage
		entry.state.StatusText = text
	}
}

func (m *Manager) finish(id string, status JobStatus, outputPath, errText string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.jobs[id]
	if !ok {
		return
	}
	entry.state.Status = status
	entry.state.FinishedAt = time.Now()
	entry.state.Error = errText
	if outputPath != "" {
		entry.state.OutputPath = outputPath
	}
	if status == StatusCompleted {
		entry.state.Percent = 100
	}
}
