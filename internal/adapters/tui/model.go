// Package tui provides a terminal progress view for batch marker generation.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	statusRunning   = "running"
	statusCompleted = "completed"
	statusCached    = "cached"
	statusFailed    = "failed"
)

// VertexState represents the current state of one generation in the TUI.
type VertexState struct {
	ID     string
	Name   string
	Status string // statusRunning, statusCompleted, statusCached, statusFailed
	// Message is the last warning or error logged by the generation.
	Message string
}

type styles struct {
	running   lipgloss.Style
	completed lipgloss.Style
	cached    lipgloss.Style
	failed    lipgloss.Style
	message   lipgloss.Style
	summary   lipgloss.Style
}

// Model is the Bubble Tea model for the TUI, tracking the generations of one batch.
type Model struct {
	events   <-chan tea.Msg
	vertices []VertexState
	index    map[string]int
	total    int
	width    int
	height   int
	spinner  spinner.Model
	styles   styles
}

// NewModel creates a new TUI model reading from events. Total is the number
// of generations expected in the batch.
func NewModel(events <-chan tea.Msg, total int) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow"))

	return &Model{
		events:  events,
		index:   make(map[string]int),
		total:   total,
		spinner: s,
		styles: styles{
			running:   lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")),
			completed: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),  // Green
			cached:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")), // Gray
			failed:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")), // Red
			message:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Faint(true),
			summary:   lipgloss.NewStyle().Bold(true),
		},
	}
}

// Init initializes the model and starts reading events.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForEvent(m.events),
		m.spinner.Tick,
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case MsgVertexStarted:
		m.index[msg.ID] = len(m.vertices)
		m.vertices = append(m.vertices, VertexState{ID: msg.ID, Name: msg.Name, Status: statusRunning})
	case MsgVertexCached:
		if v := m.vertex(msg.ID); v != nil {
			v.Status = statusCached
		}
	case MsgVertexLog:
		if v := m.vertex(msg.ID); v != nil {
			v.Message = msg.Text
		}
	case MsgVertexCompleted:
		if v := m.vertex(msg.ID); v != nil {
			switch {
			case msg.Err != nil:
				v.Status = statusFailed
			case v.Status != statusCached:
				v.Status = statusCompleted
			}
		}
	case MsgStreamEnded:
		return m, tea.Quit
	default:
		return m, nil
	}
	return m, WaitForEvent(m.events)
}

func (m *Model) vertex(id string) *VertexState {
	i, ok := m.index[id]
	if !ok {
		return nil
	}
	return &m.vertices[i]
}

// View renders the current state of the model as a string.
func (m *Model) View() string {
	var s strings.Builder

	// Keep the most recent generations and the summary line on screen.
	start := 0
	if m.height > 1 && len(m.vertices) > m.height-1 {
		start = len(m.vertices) - (m.height - 1)
	}

	done, failed := 0, 0
	for _, v := range m.vertices {
		switch v.Status {
		case statusCompleted, statusCached:
			done++
		case statusFailed:
			failed++
		}
	}

	for i := start; i < len(m.vertices); i++ {
		v := m.vertices[i]
		var icon string
		var style lipgloss.Style
		switch v.Status {
		case statusRunning:
			icon = m.spinner.View()
			style = m.styles.running
		case statusCompleted:
			icon = "✓"
			style = m.styles.completed
		case statusCached:
			icon = "⚡"
			style = m.styles.cached
		default:
			icon = "✗"
			style = m.styles.failed
		}

		line := fmt.Sprintf("%s %s", style.Render(icon), v.Name)
		if v.Message != "" {
			line += " " + m.styles.message.Render(v.Message)
		}
		s.WriteString(line + "\n")
	}

	s.WriteString(m.styles.summary.Render(fmt.Sprintf("%d/%d done, %d failed", done, m.total, failed)) + "\n")
	return s.String()
}
