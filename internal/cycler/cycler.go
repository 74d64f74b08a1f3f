// Package cycler runs the display loop: one line at a time, each shown for
// the dwell duration and removed only after its exit transition completes.
package cycler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/thruflo/marquee/internal/display"
	"github.com/thruflo/marquee/internal/lines"
	"github.com/thruflo/marquee/internal/logging"
)

// ErrEmptyBuffer is returned by Step when there is nothing to show.
var ErrEmptyBuffer = errors.New("line buffer is empty")

// State is the cycler's position in a display step.
type State int

const (
	// StateIdle means no element is live; the cycler is between steps or
	// waiting for the buffer to be filled.
	StateIdle State = iota
	// StateShowing means an element is being attached.
	StateShowing
	// StateWaiting means the element is fully visible for the dwell time.
	StateWaiting
	// StateExiting means the element is leaving and the cycler waits for the
	// transition-end signal.
	StateExiting
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateShowing:
		return "showing"
	case StateWaiting:
		return "waiting"
	case StateExiting:
		return "exiting"
	default:
		return "unknown"
	}
}

// StepEvent describes one completed display step.
type StepEvent struct {
	Line      string
	Index     int
	NextIndex int
}

// Cycler shows the lines of a lines.State in a display.Container.
type Cycler struct {
	state     *lines.State
	container display.Container
	dwell     time.Duration
	log       *logging.Logger

	// OnStep, if set, is called after each completed step.
	OnStep func(StepEvent)

	mu  sync.RWMutex
	cur State
}

// New creates a Cycler.
func New(state *lines.State, container display.Container, dwell time.Duration, log *logging.Logger) *Cycler {
	if log == nil {
		log = logging.Default()
	}
	return &Cycler{
		state:     state,
		container: container,
		dwell:     dwell,
		log:       log.With("component", "cycler"),
	}
}

// State returns the cycler's current state.
func (c *Cycler) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cur
}

func (c *Cycler) set(s State) {
	c.mu.Lock()
	c.cur = s
	c.mu.Unlock()
}

// Step shows the line at the cursor, waits for the dwell time, starts the
// exit transition, waits for it to complete, removes the element and
// advances the cursor. It returns ErrEmptyBuffer without rendering anything
// if the buffer is empty. If ctx ends mid-step the element is removed and
// the cursor is left where it was.
func (c *Cycler) Step(ctx context.Context) error {
	line, index, ok := c.state.Current()
	if !ok {
		c.set(StateIdle)
		return ErrEmptyBuffer
	}

	c.set(StateShowing)
	el := display.NewElement(line)
	if err := c.container.Append(el); err != nil {
		c.set(StateIdle)
		return fmt.Errorf("failed to show line: %w", err)
	}
	c.log.Debug("showing line", "index", index, "element", el.ID)

	c.set(StateWaiting)
	timer := time.NewTimer(c.dwell)
	select {
	case <-ctx.Done():
		timer.Stop()
		c.abort(el)
		return ctx.Err()
	case <-timer.C:
	}

	c.set(StateExiting)
	done, err := c.container.Leave(el)
	if err != nil {
		c.abort(el)
		return fmt.Errorf("failed to start exit transition: %w", err)
	}
	select {
	case <-ctx.Done():
		c.abort(el)
		return ctx.Err()
	case <-done:
	}

	if err := c.container.Remove(el); err != nil {
		c.set(StateIdle)
		return fmt.Errorf("failed to remove line: %w", err)
	}
	next := c.state.Advance()
	c.set(StateIdle)

	if c.OnStep != nil {
		c.OnStep(StepEvent{Line: line, Index: index, NextIndex: next})
	}
	return nil
}

func (c *Cycler) abort(el *display.Element) {
	if err := c.container.Remove(el); err != nil {
		c.log.Debug("failed to remove element on abort", "element", el.ID, "error", err)
	}
	c.set(StateIdle)
}

// Run steps until ctx is done. When the buffer is empty it stays idle until
// the buffer is refilled, then resumes from the cursor.
func (c *Cycler) Run(ctx context.Context) error {
	for {
		err := c.Step(ctx)
		switch {
		case err == nil:
			continue
		case errors.Is(err, ErrEmptyBuffer):
			c.log.Debug("buffer empty, waiting for content")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.state.Updated():
			}
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			return err
		}
	}
}
