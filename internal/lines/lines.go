// Package lines holds the LineBuffer and CursorIndex shared by the loader
// and the cycler.
//
// The loader is the only writer of the buffer; the cycler is the only writer
// of the cursor. A buffer replacement can land between any two display
// steps, so every cursor computation uses the length of the most recently
// committed buffer.
package lines

import (
	"strings"
	"sync"
)

// Parse splits text on newlines and drops every line that is empty after
// trimming whitespace. Kept lines are otherwise returned verbatim, minus a
// trailing carriage return.
func Parse(text string) []string {
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSuffix(p, "\r")
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// State is the widget's shared LineBuffer and CursorIndex.
type State struct {
	mu      sync.RWMutex
	lines   []string
	cursor  int
	updated chan struct{}
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		updated: make(chan struct{}, 1),
	}
}

// Replace swaps in a new buffer wholesale. Blank lines are filtered so the
// buffer invariant holds no matter what the caller passes. A non-empty
// buffer wakes anyone waiting on Updated.
func (s *State) Replace(lines []string) {
	next := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			next = append(next, l)
		}
	}

	s.mu.Lock()
	s.lines = next
	s.mu.Unlock()

	if len(next) == 0 {
		return
	}
	select {
	case s.updated <- struct{}{}:
	default:
	}
}

// Updated signals after a Replace that left the buffer non-empty. Signals
// coalesce: several replacements between reads produce one wake-up.
func (s *State) Updated() <-chan struct{} {
	return s.updated
}

// Lines returns a copy of the current buffer.
func (s *State) Lines() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len returns the current buffer length.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

// Cursor returns the raw cursor value. It may be out of range for the
// current buffer if the buffer shrank since the last advance.
func (s *State) Cursor() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor
}

// SetCursor positions the cursor. Negative values are clamped to zero.
func (s *State) SetCursor(i int) {
	if i < 0 {
		i = 0
	}
	s.mu.Lock()
	s.cursor = i
	s.mu.Unlock()
}

// Current returns the line the cursor points at. If the cursor is out of
// range for the current buffer it is re-wrapped against the current length
// first. ok is false when the buffer is empty.
func (s *State) Current() (line string, index int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lines) == 0 {
		return "", 0, false
	}
	if s.cursor >= len(s.lines) {
		s.cursor %= len(s.lines)
	}
	return s.lines[s.cursor], s.cursor, true
}

// Peek returns what Current would, without writing the cursor. It is for
// readers other than the cycler.
func (s *State) Peek() (line string, index int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.lines) == 0 {
		return "", 0, false
	}
	index = s.cursor % len(s.lines)
	return s.lines[index], index, true
}

// Advance moves the cursor to (cursor+1) mod len, using the length of the
// buffer as it is now. On an empty buffer the cursor resets to zero.
func (s *State) Advance() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lines) == 0 {
		s.cursor = 0
		return 0
	}
	s.cursor = (s.cursor + 1) % len(s.lines)
	return s.cursor
}
