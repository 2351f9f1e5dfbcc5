package tag

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultArtTimeout = 15 * time.Second
	artUserAgent      = "ytz"
	// Thumbnails are small; anything larger is not a cover image.
	maxArtBytes = 10 << 20
)

// ArtFetcher downloads cover art with a bounded timeout.
//
// Failures here never fail an item; the caller degrades to
// success-without-cover-art.
type ArtFetcher struct {
	httpClient *http.Client
}

// NewArtFetcher creates a fetcher with the given timeout.
//
// A zero timeout uses the 15 second default.
func NewArtFetcher(timeout time.Duration) *ArtFetcher {
	if timeout <= 0 {
		timeout = defaultArtTimeout
	}
	return &ArtFetcher{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the image bytes at url.
func (f *ArtFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", artUserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxArtBytes))
}
