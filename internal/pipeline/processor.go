package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytz/internal/extract"
	"github.com/desertthunder/ytz/internal/shared"
)

// Extractor resolves one reference into metadata plus a downloaded audio file.
type Extractor interface {
	// Extract downloads the audio stream for ref to dest and returns its metadata.
	Extract(ctx context.Context, ref, dest string) (*extract.Metadata, error)
}

// Transcoder converts a raw audio file into an encoded MP3 file.
type Transcoder interface {
	Transcode(ctx context.Context, src, dst string) error
}

// TagWriter embeds descriptive metadata into an encoded MP3 file.
type TagWriter interface {
	WriteTags(path, title, artist string) error
	EmbedCover(path string, art []byte) error
}

// ArtFetcher retrieves cover image bytes with a bounded timeout.
type ArtFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Result is the outcome of processing one reference.
//
// Exactly one Result is produced per submitted reference. A nil Err carries
// the final filename and encoded payload; a non-nil Err carries the failure
// reason for the manifest.
type Result struct {
	Reference string
	Filename  string
	Payload   []byte
	Err       error
}

// Success reports whether the item completed.
func (r Result) Success() bool {
	return r.Err == nil
}

// Reason returns the failure reason for the error manifest.
func (r Result) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Outcome is the full set of per-item results for one batch invocation,
// partitioned into successes and failures. Order within each partition is
// completion order and carries no meaning.
type Outcome struct {
	Successes []Result
	Failures  []Result
}

// Total returns the number of results collected.
func (o *Outcome) Total() int {
	return len(o.Successes) + len(o.Failures)
}

func (o *Outcome) add(res Result) {
	if res.Success() {
		o.Successes = append(o.Successes, res)
	} else {
		o.Failures = append(o.Failures, res)
	}
}

// Processor runs single references through the extract → name → transcode →
// tag → cover-art sequence.
//
// A Processor is stateless across invocations apart from the shared scratch
// directory, so one instance serves all workers concurrently.
type Processor struct {
	extractor  Extractor
	transcoder Transcoder
	tags       TagWriter
	art        ArtFetcher
	scratchDir string
	logger     *log.Logger
}

// ProcessorOpts contains the collaborators and settings for a Processor.
type ProcessorOpts struct {
	Extractor  Extractor
	Transcoder Transcoder
	Tags       TagWriter
	Art        ArtFetcher
	ScratchDir string
	Logger     *log.Logger
}

// NewProcessor creates a Processor with the provided collaborators.
func NewProcessor(opts ProcessorOpts) *Processor {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Processor{
		extractor:  opts.Extractor,
		transcoder: opts.Transcoder,
		tags:       opts.Tags,
		art:        opts.Art,
		scratchDir: opts.ScratchDir,
		logger:     opts.Logger,
	}
}

// Process runs one reference through all stages and returns its Result.
//
// Scratch files use fresh uuid names per invocation so concurrent workers
// never collide, and are removed on every exit path. Cover art is best
// effort: any failure there degrades to success without an embedded image.
// A tag-write failure fails the item; delivering some files tagged and some
// silently untagged would hide inconsistent behavior from the user.
func (p *Processor) Process(ctx context.Context, ref string) Result {
	rawPath := filepath.Join(p.scratchDir, shared.GenerateID()+".webm")
	mp3Path := filepath.Join(p.scratchDir, shared.GenerateID()+".mp3")
	defer p.cleanup(rawPath, mp3Path)

	meta, err := p.extractor.Extract(ctx, ref, rawPath)
	if err != nil {
		return Result{Reference: ref, Err: err}
	}

	artist := Sanitize(meta.DisplayArtist())
	title := Sanitize(CleanTitle(meta.DisplayTitle(), meta.DisplayArtist()))
	filename := Filename(artist, title)

	if err := p.transcoder.Transcode(ctx, rawPath, mp3Path); err != nil {
		return Result{Reference: ref, Err: err}
	}

	if err := p.tags.WriteTags(mp3Path, title, artist); err != nil {
		return Result{Reference: ref, Err: err}
	}

	if meta.Thumbnail != "" {
		p.embedCover(ctx, ref, mp3Path, meta.Thumbnail)
	}

	payload, err := os.ReadFile(mp3Path)
	if err != nil {
		return Result{Reference: ref, Err: fmt.Errorf("failed to read encoded file: %w", err)}
	}

	return Result{Reference: ref, Filename: filename, Payload: payload}
}

// embedCover fetches and embeds the thumbnail, swallowing all errors.
func (p *Processor) embedCover(ctx context.Context, ref, mp3Path, thumbnail string) {
	art, err := p.art.Fetch(ctx, thumbnail)
	if err != nil {
		p.logger.Warn("cover art fetch failed", "ref", ref, "error", err)
		return
	}
	if err := p.tags.EmbedCover(mp3Path, art); err != nil {
		p.logger.Warn("cover art embed failed", "ref", ref, "error", err)
	}
}

// cleanup removes scratch files, logging failures without raising them.
func (p *Processor) cleanup(paths ...string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("scratch cleanup failed", "path", path, "error", err)
		}
	}
}
