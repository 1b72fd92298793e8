// Package tui renders a single download job as a live progress view.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/whiterabbit74/kinopub-wnldr/internal/engine/events"
)

const progressBarWidth = 50

// Model is the bubbletea model for one running job.
type Model struct {
	events chan any

	filename   string
	outputPath string
	percent    int
	status     string
	start      time.Time

	bar  progress.Model
	done bool
	err  error

	width int
}

// New builds a model that consumes engine messages from evts.
func New(evts chan any) Model {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = progressBarWidth
	return Model{
		events: evts,
		status: "Preparing ffmpeg",
		start:  time.Now(),
		bar:    bar,
	}
}

func (m Model) Init() tea.Cmd {
	return listenForActivity(m.events)
}

func listenForActivity(sub chan any) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-sub
		if !ok {
			return nil
		}
		return msg
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 10; w > 10 && w < progressBarWidth {
			m.bar.Width = w
		}

	case events.JobStartedMsg:
		m.filename = msg.Filename
		m.outputPath = msg.OutputPath
		return m, listenForActivity(m.events)

	case events.ProgressMsg:
		m.percent = msg.Percent
		m.status = msg.Status
		cmd := m.bar.SetPercent(float64(msg.Percent) / 100)
		return m, tea.Batch(cmd, listenForActivity(m.events))

	case events.JobCompleteMsg:
		m.percent = 100
		m.status = "Completed"
		m.outputPath = msg.OutputPath
		m.done = true
		return m, tea.Sequence(m.bar.SetPercent(1), tea.Quit)

	case events.JobErrorMsg:
		m.err = msg.Err
		return m, tea.Quit

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	title := TitleStyle.Render("kinopub-wnldr")

	name := m.filename
	if name == "" {
		name = "resolving playlist"
	}

	body := fmt.Sprintf("%s\n\n%s  %3d%%\n%s",
		name,
		m.bar.View(),
		m.percent,
		StatusStyle.Render(m.status),
	)

	var footer string
	switch {
	case m.err != nil:
		footer = ErrorStyle.Render("Error: " + m.err.Error())
	case m.done:
		footer = SuccessStyle.Render("Saved to "+m.outputPath) +
			StatusStyle.Render(fmt.Sprintf("  (%s)", time.Since(m.start).Round(time.Second)))
	default:
		footer = HelpStyle.Render("q to abort")
	}

	return title + "\n" + PanelStyle.Render(body) + "\n" + footer + "\n"
}

// Done reports whether the job finished successfully.
func (m Model) Done() bool { return m.done }

// Err returns the job error shown to the user, if any.
func (m Model) Err() error { return m.err }
