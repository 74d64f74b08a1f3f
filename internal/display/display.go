// Package display defines the rendering boundary between the cycler and
// whatever actually draws a line.
//
// The cycler creates one Element per step, appends it to a Container in the
// entering phase, switches it to the leaving phase after the dwell time and
// waits for the container to report that the exit transition finished.
// How the phases look is entirely up to the container.
package display

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrMissingContainer is returned when a surface has no container with the
// requested id.
var ErrMissingContainer = errors.New("display container not found")

// Phase is the visual state of an element.
type Phase int

const (
	PhaseEntering Phase = iota
	PhaseLeaving
)

// String returns the phase's style name.
func (p Phase) String() string {
	switch p {
	case PhaseEntering:
		return "entering"
	case PhaseLeaving:
		return "leaving"
	default:
		return "unknown"
	}
}

// Element is one rendered line. It lives for exactly one display step.
type Element struct {
	ID   string
	Text string

	mu    sync.Mutex
	phase Phase
	done  chan struct{}
	once  sync.Once
}

// NewElement creates an element in the entering phase.
func NewElement(text string) *Element {
	return &Element{
		ID:    uuid.NewString(),
		Text:  text,
		phase: PhaseEntering,
		done:  make(chan struct{}),
	}
}

// Phase returns the element's current phase.
func (e *Element) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// SetPhase changes the element's phase. Containers call this; the cycler
// goes through Container.Leave.
func (e *Element) SetPhase(p Phase) {
	e.mu.Lock()
	e.phase = p
	e.mu.Unlock()
}

// CompleteTransition fires the element's one-shot transition-end signal.
// Calls after the first are no-ops.
func (e *Element) CompleteTransition() {
	e.once.Do(func() { close(e.done) })
}

// TransitionEnd is closed once the exit transition has finished.
func (e *Element) TransitionEnd() <-chan struct{} {
	return e.done
}

// Container holds at most one live element at a time.
type Container interface {
	// Append attaches el in the entering phase.
	Append(el *Element) error
	// Leave moves el to the leaving phase and returns the signal that fires
	// when the exit transition completes.
	Leave(el *Element) (<-chan struct{}, error)
	// Remove detaches el.
	Remove(el *Element) error
}

// Surface resolves containers by id.
type Surface interface {
	Container(id string) (Container, error)
}
