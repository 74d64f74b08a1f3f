package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
	"unicode/utf8"

	"github.com/thruflo/marquee/internal/config"
)

// DefaultHTTPTimeout bounds a single resource request.
const DefaultHTTPTimeout = 10 * time.Second

// MaxBodyBytes is the largest resource accepted. Larger bodies are an
// error rather than being cut short.
const MaxBodyBytes = 1 << 20

// Source reads the raw text of the polled resource.
type Source interface {
	// Name identifies the resource in diagnostics.
	Name() string
	// Read returns the decoded body.
	Read(ctx context.Context) (string, error)
}

// HTTPSource reads the resource with a GET request.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource resolves path against baseURL.
func NewHTTPSource(baseURL, path string) (*HTTPSource, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid resource path %q: %w", path, err)
	}
	return &HTTPSource{
		URL:    base.ResolveReference(ref).String(),
		Client: &http.Client{Timeout: DefaultHTTPTimeout},
	}, nil
}

// Name returns the resolved URL.
func (s *HTTPSource) Name() string {
	return s.URL
}

// Read fetches the resource. Non-2xx responses and bodies that are not
// valid UTF-8 are errors.
func (s *HTTPSource) Read(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := readBody(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return decode(body)
}

// FileSource reads the resource from the local filesystem.
type FileSource struct {
	Path string
}

// Name returns the file path.
func (s *FileSource) Name() string {
	return s.Path
}

// Read returns the file contents.
func (s *FileSource) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open resource: %w", err)
	}
	defer f.Close()

	body, err := readBody(f)
	if err != nil {
		return "", fmt.Errorf("failed to read resource: %w", err)
	}
	return decode(body)
}

// ErrUndecodable is returned for bodies that are not valid UTF-8 text.
var ErrUndecodable = errors.New("body is not valid UTF-8 text")

// ErrTooLarge is returned for bodies over MaxBodyBytes.
var ErrTooLarge = fmt.Errorf("resource exceeds %d bytes", MaxBodyBytes)

// readBody reads at most MaxBodyBytes, failing if there is more.
func readBody(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, MaxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxBodyBytes {
		return nil, ErrTooLarge
	}
	return body, nil
}

func decode(body []byte) (string, error) {
	if !utf8.Valid(body) {
		return "", ErrUndecodable
	}
	return string(body), nil
}

// NewSource picks an HTTP source when a base URL is configured and a file
// source otherwise.
func NewSource(res config.Resource) (Source, error) {
	if res.BaseURL != "" {
		return NewHTTPSource(res.BaseURL, res.Path)
	}
	return &FileSource{Path: res.Path}, nil
}
