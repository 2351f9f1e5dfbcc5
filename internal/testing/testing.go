// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/ytz/internal/extract"
)

// MockExtractor is a test double for the extraction stage.
//
// Metadata and Err control the return values; Calls records every reference
// passed in, in call order.
type MockExtractor struct {
	Metadata *extract.Metadata
	Err      error
	Audio    []byte

	mu    sync.Mutex
	Calls []string
}

func (m *MockExtractor) Extract(ctx context.Context, ref, dest string) (*extract.Metadata, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, ref)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	audio := m.Audio
	if audio == nil {
		audio = []byte("raw audio")
	}
	if err := os.WriteFile(dest, audio, 0644); err != nil {
		return nil, err
	}

	meta := m.Metadata
	if meta == nil {
		meta = &extract.Metadata{ID: "mock", Title: "Mock Title", Uploader: "Mock Uploader"}
	}
	return meta, nil
}

// MockTranscoder copies the source file to the destination unchanged.
type MockTranscoder struct {
	Err error
}

func (m *MockTranscoder) Transcode(ctx context.Context, src, dst string) error {
	if m.Err != nil {
		return m.Err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

// MockTagWriter records tag writes without touching the file.
type MockTagWriter struct {
	Err      error
	CoverErr error

	mu      sync.Mutex
	Titles  []string
	Artists []string
	Covers  int
}

func (m *MockTagWriter) WriteTags(path, title, artist string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	m.Titles = append(m.Titles, title)
	m.Artists = append(m.Artists, artist)
	m.mu.Unlock()
	return nil
}

func (m *MockTagWriter) EmbedCover(path string, art []byte) error {
	if m.CoverErr != nil {
		return m.CoverErr
	}
	m.mu.Lock()
	m.Covers++
	m.mu.Unlock()
	return nil
}

// MockArtFetcher returns fixed cover bytes.
type MockArtFetcher struct {
	Art []byte
	Err error
}

func (m *MockArtFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Art == nil {
		return []byte("jpeg bytes"), nil
	}
	return m.Art, nil
}

// MockExpander is a test double for playlist expansion.
type MockExpander struct {
	URLs []string
}

func (m *MockExpander) ExpandPlaylist(ctx context.Context, ref string) []string {
	return m.URLs
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
