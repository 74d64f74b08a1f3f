package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/thruflo/marquee/internal/config"
	"github.com/thruflo/marquee/internal/cycler"
	"github.com/thruflo/marquee/internal/display"
	"github.com/thruflo/marquee/internal/lines"
	"github.com/thruflo/marquee/internal/loader"
	"github.com/thruflo/marquee/internal/logging"
)

// WidgetSettings is the body of GET /api/config, read by the browser widget
// on load.
type WidgetSettings struct {
	ResourcePath    string `json:"resource_path"`
	Container       string `json:"container"`
	DwellDurationMs int    `json:"dwell_duration_ms"`
	PollIntervalMs  int    `json:"poll_interval_ms"`
}

// Server hosts the resource directory and the browser widget.
type Server struct {
	port   int
	dir    string
	assets fs.FS
	widget WidgetSettings
	log    *logging.Logger

	state  *lines.State
	loader *loader.Loader
	cycler *cycler.Cycler

	// HTTP server
	mu       sync.RWMutex
	server   *http.Server
	listener net.Listener
	started  bool

	// background loader and cycler of the current run
	cancel  context.CancelFunc
	stopped chan struct{}
	wg      sync.WaitGroup
}

// Config holds server configuration options.
type Config struct {
	Port         int
	Dir          string
	ResourcePath string
	PollInterval time.Duration
	Assets       fs.FS
	Logger       *logging.Logger

	// Widget overrides the settings handed to the browser. Empty fields are
	// filled from ResourcePath, PollInterval and the config defaults.
	Widget WidgetSettings
}

// LinesResponse is the body of GET /api/lines.
type LinesResponse struct {
	Lines     []string   `json:"lines"`
	Cursor    int        `json:"cursor"`
	Current   string     `json:"current,omitempty"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
}

// NewServer creates a new Server instance.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.Assets == nil {
		return nil, errors.New("assets are required")
	}
	if cfg.ResourcePath == "" {
		return nil, errors.New("resource path is required")
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}

	dir := cfg.Dir
	if dir == "" {
		dir = config.DefaultServerDir
	}
	stat, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open resource directory: %w", err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("resource directory %s is not a directory", dir)
	}

	log := cfg.Logger
	if log == nil {
		log = logging.Default()
	}
	log = log.With("component", "server")

	widget := cfg.Widget
	if widget.ResourcePath == "" {
		widget.ResourcePath = cfg.ResourcePath
	}
	if widget.Container == "" {
		widget.Container = config.DefaultContainer
	}
	if widget.DwellDurationMs == 0 {
		widget.DwellDurationMs = config.DefaultDwellDurationMs
	}
	if widget.PollIntervalMs == 0 {
		widget.PollIntervalMs = int(cfg.PollInterval / time.Millisecond)
	}

	state := lines.NewState()
	src := &loader.FileSource{Path: filepath.Join(dir, filepath.FromSlash(cfg.ResourcePath))}

	// The server keeps its own display loop running against a surface that
	// draws nothing, so /api/lines reports the line a browser would show.
	headless := display.NewWriter(widget.Container, io.Discard)
	container, err := headless.Container(widget.Container)
	if err != nil {
		return nil, err
	}
	dwell := time.Duration(widget.DwellDurationMs) * time.Millisecond

	return &Server{
		port:   cfg.Port,
		dir:    dir,
		assets: cfg.Assets,
		widget: widget,
		log:    log,
		state:  state,
		loader: loader.New(src, state, cfg.PollInterval, loader.WithLogger(log)),
		cycler: cycler.New(state, container, dwell, log),
	}, nil
}

// NewServerFromConfig creates a new Server from the marquee config.
func NewServerFromConfig(cfg *config.Config, assets fs.FS, log *logging.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	srv := cfg.Server
	if srv == nil {
		srv = config.DefaultServerConfig()
	}
	return NewServer(&Config{
		Port:         srv.Port,
		Dir:          srv.Dir,
		ResourcePath: cfg.Resource.Path,
		PollInterval: cfg.PollInterval(),
		Assets:       assets,
		Logger:       log,
		Widget: WidgetSettings{
			ResourcePath:    cfg.Resource.Path,
			Container:       cfg.Display.Container,
			DwellDurationMs: cfg.Display.DwellDurationMs,
			PollIntervalMs:  cfg.Poll.IntervalMs,
		},
	})
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Start starts the HTTP server and the server-side loader and cycler.
// The server runs until ctx is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("server already started")
	}

	addr := fmt.Sprintf(":%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	runCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	s.cancel = cancel
	s.stopped = stopped
	s.started = true
	s.wg.Add(2)
	s.mu.Unlock()

	_ = s.loader.Refresh(runCtx)
	go func() {
		defer s.wg.Done()
		_ = s.loader.Run(runCtx)
	}()
	go func() {
		defer s.wg.Done()
		_ = s.cycler.Run(runCtx)
	}()
	go func() {
		select {
		case <-ctx.Done():
			_ = s.stop(stopped)
		case <-stopped:
		}
	}()

	s.log.Info("serving", "addr", listener.Addr().String(), "dir", s.dir)
	err = s.server.Serve(listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the server and waits for the background
// loader and cycler to exit.
func (s *Server) Stop() error {
	s.mu.RLock()
	stopped := s.stopped
	s.mu.RUnlock()
	return s.stop(stopped)
}

// stop shuts down the run identified by stopped. It is a no-op if that run
// has already been stopped.
func (s *Server) stop(stopped chan struct{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.server == nil || s.stopped != stopped {
		return nil
	}

	s.cancel()
	close(s.stopped)
	s.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	s.started = false
	s.listener = nil
	if err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}

// ListenAddr returns the actual address the server is listening on.
// Useful when port 0 is used to get an available port.
// Returns empty string if not started.
func (s *Server) ListenAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// State exposes the server-side line buffer.
func (s *Server) State() *lines.State {
	return s.state
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/lines", s.handleLines)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/", s.handleStatic)
	return mux
}

func (s *Server) handleLines(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := LinesResponse{
		Lines: s.state.Lines(),
	}
	if line, index, ok := s.state.Peek(); ok {
		resp.Cursor = index
		resp.Current = line
	}
	if fetched := s.loader.LastFetched(); !fetched.IsZero() {
		resp.FetchedAt = &fetched
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warn("failed to encode lines", "error", err)
	}
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.widget); err != nil {
		s.log.Warn("failed to encode widget settings", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// handleStatic serves files from the resource directory, falling back to
// the embedded widget assets.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name != "" && s.serveFile(w, r, os.DirFS(s.dir), name, true) {
		return
	}
	if name == "" {
		name = "index.html"
	}
	if s.serveFile(w, r, s.assets, name, false) {
		return
	}
	http.NotFound(w, r)
}

// serveFile writes name from fsys and reports whether it existed.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, fsys fs.FS, name string, noCache bool) bool {
	if !fs.ValidPath(name) {
		return false
	}
	stat, err := fs.Stat(fsys, name)
	if err != nil || stat.IsDir() {
		return false
	}
	if noCache {
		w.Header().Set("Cache-Control", "no-cache")
	}
	http.ServeFileFS(w, r, fsys, name)
	return true
}
