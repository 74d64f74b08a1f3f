package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/thruflo/marquee/internal/config"
)

var testAssets = fstest.MapFS{
	"index.html": {Data: []byte(`<div id="text-container"></div>`)},
	"script.js":  {Data: []byte(`fetch("pending_jobs.txt")`)},
}

// createTestServer creates a server over a temp directory holding the
// resource.
func createTestServer(t *testing.T, body string) (*Server, string) {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pending_jobs.txt"), []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write resource: %v", err)
	}

	server, err := NewServer(&Config{
		Port:         0, // random available port
		Dir:          dir,
		ResourcePath: "pending_jobs.txt",
		PollInterval: 10 * time.Millisecond,
		Assets:       testAssets,
	})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return server, dir
}

func TestNewServer(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{"nil config", nil, "config is required"},
		{"no assets", &Config{Dir: dir, ResourcePath: "a.txt", PollInterval: time.Second}, "assets are required"},
		{"no resource", &Config{Dir: dir, Assets: testAssets, PollInterval: time.Second}, "resource path is required"},
		{"no interval", &Config{Dir: dir, Assets: testAssets, ResourcePath: "a.txt"}, "poll interval must be positive"},
		{"missing dir", &Config{Dir: filepath.Join(dir, "nope"), Assets: testAssets, ResourcePath: "a.txt", PollInterval: time.Second}, "failed to open resource directory"},
		{"dir is file", &Config{Dir: file, Assets: testAssets, ResourcePath: "a.txt", PollInterval: time.Second}, "is not a directory"},
		{"valid", &Config{Port: 8000, Dir: dir, Assets: testAssets, ResourcePath: "a.txt", PollInterval: time.Second}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewServer(tt.cfg)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if server.Port() != 8000 {
				t.Errorf("expected port 8000, got %d", server.Port())
			}
		})
	}
}

func TestNewServerFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server = &config.ServerConfig{Port: 9123, Dir: t.TempDir()}

	server, err := NewServerFromConfig(&cfg, testAssets, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.Port() != 9123 {
		t.Errorf("expected port 9123, got %d", server.Port())
	}
}

func TestHandleStatic(t *testing.T) {
	server, dir := createTestServer(t, "Job 1\n")
	if err := os.WriteFile(filepath.Join(dir, "now.txt"), []byte("News | ops"), 0o644); err != nil {
		t.Fatal(err)
	}
	handler := server.Handler()

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/", http.StatusOK, `id="text-container"`},
		{"/script.js", http.StatusOK, "pending_jobs.txt"},
		{"/pending_jobs.txt", http.StatusOK, "Job 1"},
		{"/now.txt", http.StatusOK, "News | ops"},
		{"/missing.txt", http.StatusNotFound, ""},
		{"/../etc/passwd", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("expected body containing %q, got %q", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestHandleStatic_ResourceNotCached(t *testing.T) {
	server, _ := createTestServer(t, "Job 1\n")

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pending_jobs.txt", nil))

	if got := rec.Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("expected Cache-Control no-cache, got %q", got)
	}
}

func TestHandleStatic_MethodNotAllowed(t *testing.T) {
	server, _ := createTestServer(t, "Job 1\n")

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/pending_jobs.txt", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}
}

func TestHandleLines(t *testing.T) {
	server, _ := createTestServer(t, "Job 1\n\nJob 2\n  \nJob 3\n")
	if err := server.loader.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	server.State().SetCursor(2)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lines", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp LinesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if fmt.Sprint(resp.Lines) != "[Job 1 Job 2 Job 3]" {
		t.Errorf("unexpected lines: %v", resp.Lines)
	}
	if resp.Cursor != 2 {
		t.Errorf("expected cursor 2, got %d", resp.Cursor)
	}
	if resp.Current != "Job 3" {
		t.Errorf("expected current line Job 3, got %q", resp.Current)
	}
	if resp.FetchedAt == nil {
		t.Error("expected fetched_at to be set")
	}
}

func TestHandleLines_StaleCursorIsReadOnly(t *testing.T) {
	server, _ := createTestServer(t, "Job 1\nJob 2\n")
	if err := server.loader.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	server.State().SetCursor(3)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lines", nil))

	var resp LinesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Cursor != 1 || resp.Current != "Job 2" {
		t.Errorf("expected cursor 1 (Job 2), got %d (%q)", resp.Cursor, resp.Current)
	}
	if got := server.State().Cursor(); got != 3 {
		t.Errorf("handler moved the cursor to %d", got)
	}
}

func TestHandleLines_BeforeFirstFetch(t *testing.T) {
	server, _ := createTestServer(t, "Job 1\n")

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lines", nil))

	if !strings.Contains(rec.Body.String(), `"lines":[]`) {
		t.Errorf("expected empty lines array, got %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "fetched_at") {
		t.Errorf("fetched_at should be omitted, got %s", rec.Body.String())
	}
}

func TestHandleConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Resource.Path = "Info/pending_jobs.txt"
	cfg.Display.DwellDurationMs = 4500
	cfg.Server = &config.ServerConfig{Dir: t.TempDir()}

	server, err := NewServerFromConfig(&cfg, testAssets, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	var got WidgetSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := WidgetSettings{
		ResourcePath:    "Info/pending_jobs.txt",
		Container:       "text-container",
		DwellDurationMs: 4500,
		PollIntervalMs:  5000,
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestHandleConfig_Defaults(t *testing.T) {
	server, _ := createTestServer(t, "Job 1\n")

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	var got WidgetSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.ResourcePath != "pending_jobs.txt" || got.PollIntervalMs != 10 || got.DwellDurationMs != 3000 {
		t.Errorf("unexpected settings %+v", got)
	}
}

func TestServerStartStop(t *testing.T) {
	server, dir := createTestServer(t, "Job 1\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(ctx)
	}()

	var addr string
	for i := 0; i < 100; i++ {
		if addr = server.ListenAddr(); addr != "" {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if addr == "" {
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr + "/healthz")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok\n" {
		t.Errorf("unexpected health body %q", body)
	}

	// The server-side loader picks up changes to the resource.
	if err := os.WriteFile(filepath.Join(dir, "pending_jobs.txt"), []byte("Job 1\nJob 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for server.State().Len() != 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if server.State().Len() != 2 {
		t.Errorf("expected 2 lines after refresh, got %d", server.State().Len())
	}

	if err := server.Start(ctx); err == nil {
		t.Error("expected error starting twice")
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("unexpected error from Start: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

// startTestServer runs Start in the background and waits for the listener.
func startTestServer(t *testing.T, server *Server, ctx context.Context) (string, chan error) {
	t.Helper()
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(ctx)
	}()
	for i := 0; i < 100; i++ {
		if addr := server.ListenAddr(); addr != "" {
			return addr, errCh
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("server did not start")
	return "", nil
}

func TestServerStopHaltsPolling(t *testing.T) {
	server, dir := createTestServer(t, "Job 1\n")
	resource := filepath.Join(dir, "pending_jobs.txt")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, errCh := startTestServer(t, server, ctx)
	if err := server.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("unexpected error from Start: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	if addr := server.ListenAddr(); addr != "" {
		t.Errorf("expected no listen address after Stop, got %q", addr)
	}

	// No loader is left polling once Stop returns.
	if err := os.WriteFile(resource, []byte("Job 1\nJob 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if n := server.State().Len(); n != 1 {
		t.Errorf("expected buffer untouched after Stop, got %d lines", n)
	}

	// A restart picks the resource up again with a single loader and cycler.
	_, errCh = startTestServer(t, server, ctx)
	deadline := time.Now().Add(2 * time.Second)
	for server.State().Len() != 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := server.State().Len(); n != 2 {
		t.Errorf("expected 2 lines after restart, got %d", n)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("unexpected error from Start: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
