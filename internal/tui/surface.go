package tui

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/thruflo/marquee/internal/display"
)

// Sender delivers messages to a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Surface adapts a bubbletea program to display.Surface. It exposes a
// single container named after the model's container id.
type Surface struct {
	id     string
	sender Sender

	mu   sync.Mutex
	live *display.Element
}

// NewSurface creates a Surface that forwards to sender.
func NewSurface(id string, sender Sender) *Surface {
	return &Surface{id: id, sender: sender}
}

// Container implements display.Surface.
func (s *Surface) Container(id string) (display.Container, error) {
	if id != s.id {
		return nil, fmt.Errorf("%w: %q", display.ErrMissingContainer, id)
	}
	return s, nil
}

// Append implements display.Container.
func (s *Surface) Append(el *display.Element) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live != nil {
		return fmt.Errorf("container %q already shows element %s", s.id, s.live.ID)
	}
	s.live = el
	el.SetPhase(display.PhaseEntering)
	s.sender.Send(appendMsg{el: el})
	return nil
}

// Leave implements display.Container.
func (s *Surface) Leave(el *display.Element) (<-chan struct{}, error) {
	el.SetPhase(display.PhaseLeaving)
	s.sender.Send(leaveMsg{el: el})
	return el.TransitionEnd(), nil
}

// Remove implements display.Container.
func (s *Surface) Remove(el *display.Element) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live == nil || s.live.ID != el.ID {
		return fmt.Errorf("element %s is not attached to %q", el.ID, s.id)
	}
	s.live = nil
	s.sender.Send(removeMsg{el: el})
	return nil
}
