package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/ytz/internal/extract"
	"github.com/desertthunder/ytz/internal/shared"
	mocks "github.com/desertthunder/ytz/internal/testing"
)

func newTestProcessor(t *testing.T, opts ProcessorOpts) *Processor {
	t.Helper()
	if opts.ScratchDir == "" {
		opts.ScratchDir = t.TempDir()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	return NewProcessor(opts)
}

func TestProcess(t *testing.T) {
	t.Run("successful item", func(t *testing.T) {
		extractor := &mocks.MockExtractor{
			Metadata: &extract.Metadata{
				ID:        "abc",
				Title:     "Artist Name - Song Title (Official Music Video)",
				Artist:    "Artist Name",
				Thumbnail: "https://img.example/t.jpg",
			},
			Audio: []byte("encoded"),
		}
		tags := &mocks.MockTagWriter{}
		p := newTestProcessor(t, ProcessorOpts{
			Extractor:  extractor,
			Transcoder: &mocks.MockTranscoder{},
			Tags:       tags,
			Art:        &mocks.MockArtFetcher{},
		})

		res := p.Process(context.Background(), "https://www.youtube.com/watch?v=abc")
		if !res.Success() {
			t.Fatalf("expected success, got %v", res.Err)
		}
		if res.Filename != "Artist Name - Song Title.mp3" {
			t.Errorf("unexpected filename %q", res.Filename)
		}
		if string(res.Payload) != "encoded" {
			t.Errorf("unexpected payload %q", res.Payload)
		}
		if tags.Covers != 1 {
			t.Errorf("expected 1 cover embed, got %d", tags.Covers)
		}
	})

	t.Run("extraction failure", func(t *testing.T) {
		wantErr := errors.New("video unavailable")
		p := newTestProcessor(t, ProcessorOpts{
			Extractor:  &mocks.MockExtractor{Err: wantErr},
			Transcoder: &mocks.MockTranscoder{},
			Tags:       &mocks.MockTagWriter{},
			Art:        &mocks.MockArtFetcher{},
		})

		res := p.Process(context.Background(), "ref")
		if res.Success() {
			t.Fatal("expected failure")
		}
		if !errors.Is(res.Err, wantErr) {
			t.Errorf("expected %v, got %v", wantErr, res.Err)
		}
		if res.Reason() == "" {
			t.Error("expected a failure reason for the manifest")
		}
	})

	t.Run("tag write failure fails the item", func(t *testing.T) {
		p := newTestProcessor(t, ProcessorOpts{
			Extractor:  &mocks.MockExtractor{},
			Transcoder: &mocks.MockTranscoder{},
			Tags:       &mocks.MockTagWriter{Err: shared.ErrTagWrite},
			Art:        &mocks.MockArtFetcher{},
		})

		res := p.Process(context.Background(), "ref")
		if res.Success() {
			t.Fatal("expected failure")
		}
		if !errors.Is(res.Err, shared.ErrTagWrite) {
			t.Errorf("expected tag write error, got %v", res.Err)
		}
	})

	t.Run("cover art failure does not fail the item", func(t *testing.T) {
		extractor := &mocks.MockExtractor{
			Metadata: &extract.Metadata{ID: "abc", Title: "Song", Thumbnail: "https://img.example/t.jpg"},
		}
		p := newTestProcessor(t, ProcessorOpts{
			Extractor:  extractor,
			Transcoder: &mocks.MockTranscoder{},
			Tags:       &mocks.MockTagWriter{},
			Art:        &mocks.MockArtFetcher{Err: errors.New("timeout")},
		})

		res := p.Process(context.Background(), "ref")
		if !res.Success() {
			t.Fatalf("expected success, got %v", res.Err)
		}
	})

	t.Run("uploader fallback when artist missing", func(t *testing.T) {
		extractor := &mocks.MockExtractor{
			Metadata: &extract.Metadata{ID: "abc", Title: "Song Title", Uploader: "Channel"},
		}
		tags := &mocks.MockTagWriter{}
		p := newTestProcessor(t, ProcessorOpts{
			Extractor:  extractor,
			Transcoder: &mocks.MockTranscoder{},
			Tags:       tags,
			Art:        &mocks.MockArtFetcher{},
		})

		res := p.Process(context.Background(), "ref")
		if !res.Success() {
			t.Fatalf("expected success, got %v", res.Err)
		}
		if res.Filename != "Channel - Song Title.mp3" {
			t.Errorf("unexpected filename %q", res.Filename)
		}
		if len(tags.Artists) != 1 || tags.Artists[0] != "Channel" {
			t.Errorf("expected uploader written as artist, got %v", tags.Artists)
		}
	})

	t.Run("scratch files removed", func(t *testing.T) {
		scratch := t.TempDir()
		p := newTestProcessor(t, ProcessorOpts{
			Extractor:  &mocks.MockExtractor{},
			Transcoder: &mocks.MockTranscoder{},
			Tags:       &mocks.MockTagWriter{},
			Art:        &mocks.MockArtFetcher{},
			ScratchDir: scratch,
		})

		res := p.Process(context.Background(), "ref")
		if !res.Success() {
			t.Fatalf("expected success, got %v", res.Err)
		}

		entries, err := os.ReadDir(scratch)
		if err != nil {
			t.Fatalf("failed to read scratch dir: %v", err)
		}
		for _, e := range entries {
			t.Errorf("scratch file left behind: %s", filepath.Join(scratch, e.Name()))
		}
	})
}
