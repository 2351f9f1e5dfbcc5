package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytz/internal/shared"
)

// Metadata holds the descriptive fields returned by extraction for one item.
//
// Read-only within a single item invocation; Thumbnail and Artist may be empty.
type Metadata struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Uploader  string `json:"uploader"`
	Thumbnail string `json:"thumbnail"`
}

// DisplayArtist returns the artist field, falling back to the uploader.
func (m *Metadata) DisplayArtist() string {
	if m.Artist != "" {
		return m.Artist
	}
	return m.Uploader
}

// DisplayTitle returns the title, falling back to a placeholder when absent.
func (m *Metadata) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return "audio"
}

// flatEntry is one entry of a flat playlist extraction.
//
// Depending on the extractor, the id lives in the id field or, for flat
// YouTube entries, in the url field alongside an ie_key.
type flatEntry struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	IEKey string `json:"ie_key"`
}

type flatPlaylist struct {
	Entries []json.RawMessage `json:"entries"`
}

// YTDLP invokes the yt-dlp binary.
//
// The binary path is injected from configuration and validated at startup.
type YTDLP struct {
	bin    string
	logger *log.Logger
}

// NewYTDLP creates a yt-dlp wrapper for the given binary path.
func NewYTDLP(bin string, logger *log.Logger) *YTDLP {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &YTDLP{bin: bin, logger: logger}
}

// Extract downloads the best audio stream for one reference to dest and returns its metadata.
//
// dest must be unique per invocation; concurrent extractions share the scratch
// directory and must never collide.
func (y *YTDLP) Extract(ctx context.Context, ref, dest string) (*Metadata, error) {
	args := []string{
		"--no-progress",
		"--no-warnings",
		"--no-playlist",
		"-f", "bestaudio/best",
		"-o", dest,
		"--print-json",
		ref,
	}

	cmd := exec.CommandContext(ctx, y.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v%s", shared.ErrExtraction, ref, err, stderrTail(&stderr))
	}

	var meta Metadata
	if err := json.Unmarshal(stdout.Bytes(), &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: unparsable metadata: %v", shared.ErrExtraction, ref, err)
	}

	return &meta, nil
}

// ExpandPlaylist resolves a playlist reference into ordered watch URLs without downloading.
//
// Collaborator failures (network errors, not-a-playlist, restricted content)
// are logged and collapse to an empty result. Callers must treat an empty
// result as "extraction failed or playlist empty" and raise a user-facing
// error instead of proceeding with zero items.
func (y *YTDLP) ExpandPlaylist(ctx context.Context, ref string) []string {
	args := []string{
		"-J",
		"--flat-playlist",
		"--no-warnings",
		ref,
	}

	cmd := exec.CommandContext(ctx, y.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		y.logger.Warn("playlist expansion failed", "ref", ref, "error", err, "stderr", strings.TrimSpace(stderr.String()))
		return nil
	}

	urls, err := watchURLsFromFlat(stdout.Bytes())
	if err != nil {
		y.logger.Warn("playlist expansion unparsable", "ref", ref, "error", err)
		return nil
	}
	return urls
}

// watchURLsFromFlat derives ordered watch URLs from a flat playlist JSON document.
//
// The id field is preferred; flat YouTube entries carry the id in the url
// field next to an ie_key, and some extractors emit entries as bare strings.
func watchURLsFromFlat(data []byte) ([]string, error) {
	var playlist flatPlaylist
	if err := json.Unmarshal(data, &playlist); err != nil {
		return nil, err
	}

	var urls []string
	for _, raw := range playlist.Entries {
		var entry flatEntry
		if err := json.Unmarshal(raw, &entry); err == nil && (entry.ID != "" || entry.URL != "") {
			urls = append(urls, watchURLFromEntry(entry))
			continue
		}

		var id string
		if err := json.Unmarshal(raw, &id); err == nil && id != "" {
			urls = append(urls, WatchURL(id))
		}
	}
	return urls, nil
}

func watchURLFromEntry(entry flatEntry) string {
	if entry.ID != "" {
		return WatchURL(entry.ID)
	}
	if videoIDPattern.MatchString(entry.URL) {
		return WatchURL(entry.URL)
	}
	return entry.URL
}

// stderrTail formats the last portion of captured stderr for error messages.
func stderrTail(buf *bytes.Buffer) string {
	s := strings.TrimSpace(buf.String())
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 3 {
		lines = lines[len(lines)-3:]
	}
	return ": " + strings.Join(lines, "; ")
}
