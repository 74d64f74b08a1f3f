// Package tui draws the widget in a terminal with bubbletea. A line slides
// in from the right when it enters and slides back out when it leaves; the
// element's transition-end signal fires on the last frame of the exit.
package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/thruflo/marquee/internal/display"
)

// frameInterval is the animation tick.
const frameInterval = 16 * time.Millisecond

type appendMsg struct{ el *display.Element }

type leaveMsg struct{ el *display.Element }

type removeMsg struct{ el *display.Element }

type frameMsg struct{ id string }

// Model is the bubbletea model for one container.
type Model struct {
	containerID string
	width       int
	frames      int

	el    *display.Element
	phase display.Phase
	frame int
}

// NewModel creates a model whose transitions last roughly transition.
func NewModel(containerID string, width int, transition time.Duration) Model {
	if width <= 0 {
		width = DefaultWidth
	}
	frames := int(transition / frameInterval)
	if transition > 0 && frames == 0 {
		frames = 1
	}
	return Model{
		containerID: containerID,
		width:       width,
		frames:      frames,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

func tick(id string) tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{id: id}
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case appendMsg:
		m.el = msg.el
		m.phase = display.PhaseEntering
		m.frame = 0
		if m.frames == 0 {
			return m, nil
		}
		return m, tick(msg.el.ID)
	case leaveMsg:
		if m.el == nil || m.el.ID != msg.el.ID {
			// Nothing to animate; don't leave the cycler waiting.
			msg.el.CompleteTransition()
			return m, nil
		}
		m.phase = display.PhaseLeaving
		m.frame = 0
		if m.frames == 0 {
			m.el.CompleteTransition()
			return m, nil
		}
		return m, tick(msg.el.ID)
	case removeMsg:
		if m.el != nil && m.el.ID == msg.el.ID {
			m.el = nil
		}
	case frameMsg:
		if m.el == nil || m.el.ID != msg.id || m.frame >= m.frames {
			return m, nil
		}
		m.frame++
		if m.frame < m.frames {
			return m, tick(msg.id)
		}
		if m.phase == display.PhaseLeaving {
			m.el.CompleteTransition()
		}
	}
	return m, nil
}

// offset is how many columns the line is pushed right by the current frame.
func (m Model) offset() int {
	inner := m.innerWidth()
	if m.frames == 0 {
		if m.phase == display.PhaseLeaving {
			return inner
		}
		return 0
	}
	switch m.phase {
	case display.PhaseEntering:
		return inner * (m.frames - m.frame) / m.frames
	default:
		return inner * m.frame / m.frames
	}
}

func (m Model) innerWidth() int {
	// Border and padding take two columns on each side.
	w := m.width - 4
	if w < 1 {
		w = 1
	}
	return w
}

// Current returns the live element, if any.
func (m Model) Current() *display.Element {
	return m.el
}

// View implements tea.Model.
func (m Model) View() string {
	inner := m.innerWidth()
	content := ""
	if m.el != nil {
		style := enteringStyle
		if m.phase == display.PhaseLeaving {
			style = leavingStyle
		}
		content = style.Render(strings.Repeat(" ", m.offset()) + m.el.Text)
	}
	box := containerStyle.Width(inner + 2).Render(
		lipgloss.NewStyle().MaxWidth(inner).Render(content),
	)
	return box + "\n" + hintStyle.Render(m.containerID+" · q to quit") + "\n"
}
