// Package loader fetches the polled text resource and commits its lines to
// the shared buffer.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/thruflo/marquee/internal/lines"
	"github.com/thruflo/marquee/internal/logging"
)

// FetchError reports a failed read of the resource: a network failure, a
// non-2xx response, a missing file or an undecodable body.
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError checks if an error is a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// Loader keeps a lines.State in sync with a Source.
type Loader struct {
	source   Source
	state    *lines.State
	interval time.Duration
	log      *logging.Logger

	// now is overridable for tests.
	now         func() time.Time
	mu          sync.RWMutex
	lastFetched time.Time
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(ld *Loader) {
		ld.log = l
	}
}

// New creates a Loader that polls source every interval.
func New(source Source, state *lines.State, interval time.Duration, opts ...Option) *Loader {
	ld := &Loader{
		source:   source,
		state:    state,
		interval: interval,
		log:      logging.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(ld)
	}
	ld.log = ld.log.With("component", "loader").With("resource", source.Name())
	return ld
}

// Fetch reads the resource once and returns its non-blank lines.
func (l *Loader) Fetch(ctx context.Context) ([]string, error) {
	text, err := l.source.Read(ctx)
	if err != nil {
		return nil, &FetchError{Resource: l.source.Name(), Err: err}
	}
	return lines.Parse(text), nil
}

// Refresh fetches the resource and replaces the buffer. On failure it logs
// one warning and leaves the buffer untouched.
func (l *Loader) Refresh(ctx context.Context) error {
	parsed, err := l.Fetch(ctx)
	if err != nil {
		l.log.Warn("failed to fetch content", "error", err)
		return err
	}
	l.state.Replace(parsed)
	l.mu.Lock()
	l.lastFetched = l.now()
	l.mu.Unlock()
	l.log.Debug("buffer replaced", "lines", len(parsed))
	return nil
}

// LastFetched returns when the buffer was last replaced, or the zero time.
func (l *Loader) LastFetched() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastFetched
}

// Run calls Refresh every interval until ctx is done. It does not fetch
// eagerly; callers do that before starting the display loop.
func (l *Loader) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_ = l.Refresh(ctx)
		}
	}
}
