package display

import (
	"fmt"
	"io"
	"sync"
)

// Writer is a Surface with a single container that prints each line as it
// enters. Transitions complete immediately. It is used when output is not a
// terminal.
type Writer struct {
	id  string
	out io.Writer

	mu   sync.Mutex
	live *Element
}

// NewWriter creates a Writer surface exposing one container named id.
func NewWriter(id string, out io.Writer) *Writer {
	return &Writer{id: id, out: out}
}

// Container returns the writer itself when id matches.
func (w *Writer) Container(id string) (Container, error) {
	if id != w.id {
		return nil, fmt.Errorf("%w: %q", ErrMissingContainer, id)
	}
	return w, nil
}

// Append prints the element's text.
func (w *Writer) Append(el *Element) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.live != nil {
		return fmt.Errorf("container %q already shows element %s", w.id, w.live.ID)
	}
	w.live = el
	el.SetPhase(PhaseEntering)
	_, err := fmt.Fprintln(w.out, el.Text)
	return err
}

// Leave completes the exit transition at once.
func (w *Writer) Leave(el *Element) (<-chan struct{}, error) {
	el.SetPhase(PhaseLeaving)
	el.CompleteTransition()
	return el.TransitionEnd(), nil
}

// Remove detaches the element.
func (w *Writer) Remove(el *Element) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.live == nil || w.live.ID != el.ID {
		return fmt.Errorf("element %s is not attached to %q", el.ID, w.id)
	}
	w.live = nil
	return nil
}
