package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/thruflo/marquee/internal/display"
)

// Recorder is an in-memory display.Surface with one container.
type Recorder struct {
	ID string

	// OnAppend runs after an element is attached, before Append returns.
	OnAppend func(el *display.Element)

	hold    bool
	leaving chan *display.Element

	mu      sync.Mutex
	live    map[string]*display.Element
	maxLive int
	shown   []string
	removed int
}

// NewRecorder creates a Recorder whose exit transitions complete at once.
func NewRecorder(id string) *Recorder {
	return &Recorder{
		ID:   id,
		live: make(map[string]*display.Element),
	}
}

// NewHoldingRecorder creates a Recorder that sends each leaving element on
// Leaving() and does not complete its transition; the test calls
// CompleteTransition itself.
func NewHoldingRecorder(id string) *Recorder {
	r := NewRecorder(id)
	r.hold = true
	r.leaving = make(chan *display.Element, 16)
	return r
}

// Container implements display.Surface.
func (r *Recorder) Container(id string) (display.Container, error) {
	if id != r.ID {
		return nil, fmt.Errorf("%w: %q", display.ErrMissingContainer, id)
	}
	return r, nil
}

// Append implements display.Container.
func (r *Recorder) Append(el *display.Element) error {
	r.mu.Lock()
	r.live[el.ID] = el
	if len(r.live) > r.maxLive {
		r.maxLive = len(r.live)
	}
	r.shown = append(r.shown, el.Text)
	hook := r.OnAppend
	r.mu.Unlock()

	if hook != nil {
		hook(el)
	}
	return nil
}

// Leave implements display.Container.
func (r *Recorder) Leave(el *display.Element) (<-chan struct{}, error) {
	el.SetPhase(display.PhaseLeaving)
	if r.hold {
		r.leaving <- el
	} else {
		el.CompleteTransition()
	}
	return el.TransitionEnd(), nil
}

// Remove implements display.Container.
func (r *Recorder) Remove(el *display.Element) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live[el.ID]; !ok {
		return fmt.Errorf("element %s not attached", el.ID)
	}
	delete(r.live, el.ID)
	r.removed++
	return nil
}

// Leaving delivers elements whose exit is held.
func (r *Recorder) Leaving() <-chan *display.Element {
	return r.leaving
}

// Shown returns the texts appended so far, in order.
func (r *Recorder) Shown() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.shown))
	copy(out, r.shown)
	return out
}

// Live returns the number of attached elements.
func (r *Recorder) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// MaxLive returns the most elements that were ever attached at once.
func (r *Recorder) MaxLive() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxLive
}

// Removed returns how many elements were detached.
func (r *Recorder) Removed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removed
}

// WriteResource writes content to name inside dir and returns the path. The
// file is replaced by rename so a concurrent reader never sees a partial body.
func WriteResource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write resource: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("failed to replace resource: %v", err)
	}
	return path
}
