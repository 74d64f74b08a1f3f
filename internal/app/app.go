// Package app wires the loader and the cycler into the running widget.
package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/thruflo/marquee/internal/config"
	"github.com/thruflo/marquee/internal/cycler"
	"github.com/thruflo/marquee/internal/display"
	"github.com/thruflo/marquee/internal/lines"
	"github.com/thruflo/marquee/internal/loader"
	"github.com/thruflo/marquee/internal/logging"
)

// Widget is one running marquee: a loader polling the resource and a cycler
// showing its lines in a container.
type Widget struct {
	cfg     *config.Config
	surface display.Surface
	source  loader.Source
	log     *logging.Logger
	state   *lines.State

	onStep func(cycler.StepEvent)
}

// Option configures a Widget.
type Option func(*Widget)

// WithSource overrides the source derived from the config.
func WithSource(src loader.Source) Option {
	return func(w *Widget) {
		w.source = src
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Widget) {
		w.log = l
	}
}

// WithStepHook registers a callback for every completed display step.
func WithStepHook(fn func(cycler.StepEvent)) Option {
	return func(w *Widget) {
		w.onStep = fn
	}
}

// New creates a Widget.
func New(cfg *config.Config, surface display.Surface, opts ...Option) (*Widget, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if surface == nil {
		return nil, errors.New("display surface is required")
	}
	w := &Widget{
		cfg:     cfg,
		surface: surface,
		log:     logging.Default(),
		state:   lines.NewState(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.source == nil {
		src, err := loader.NewSource(cfg.Resource)
		if err != nil {
			return nil, err
		}
		w.source = src
	}
	return w, nil
}

// State exposes the shared line buffer.
func (w *Widget) State() *lines.State {
	return w.state
}

// Run resolves the container, fetches the resource once, then runs the
// polling loop and the display loop until ctx is done or the display fails.
// A missing container is reported before anything is fetched.
func (w *Widget) Run(ctx context.Context) error {
	container, err := w.surface.Container(w.cfg.Display.Container)
	if err != nil {
		return fmt.Errorf("failed to resolve display container: %w", err)
	}

	ld := loader.New(w.source, w.state, w.cfg.PollInterval(), loader.WithLogger(w.log))
	if err := ld.Refresh(ctx); err == nil {
		w.log.Info("initial content loaded", "lines", w.state.Len())
	}

	cyc := cycler.New(w.state, container, w.cfg.DwellDuration(), w.log)
	cyc.OnStep = w.onStep

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ld.Run(gctx)
	})
	g.Go(func() error {
		return cyc.Run(gctx)
	})
	return g.Wait()
}
