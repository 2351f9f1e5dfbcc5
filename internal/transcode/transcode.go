// Package transcode converts raw audio streams into MP3 via the ffmpeg binary.
package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/desertthunder/ytz/internal/shared"
)

// FFmpeg encoder settings.
const (
	AudioCodec    = "libmp3lame"
	AudioQuality  = "2" // VBR ~190kbps
	OutputFormat  = "mp3"
	FFmpegCommand = "ffmpeg"
)

// FFmpeg transcodes audio files by shelling out to the ffmpeg binary.
//
// The binary path is injected from configuration and validated at startup,
// never hardcoded.
type FFmpeg struct {
	bin string
}

// NewFFmpeg creates an ffmpeg wrapper for the given binary path.
//
// An empty path falls back to resolving "ffmpeg" on PATH.
func NewFFmpeg(bin string) *FFmpeg {
	if bin == "" {
		bin = FFmpegCommand
	}
	return &FFmpeg{bin: bin}
}

// BuildArgs builds the ffmpeg argument list for one transcode invocation.
func (f *FFmpeg) BuildArgs(src, dst string) []string {
	return []string{
		"-y",
		"-i", src,
		"-vn",
		"-c:a", AudioCodec,
		"-q:a", AudioQuality,
		"-f", OutputFormat,
		dst,
	}
}

// Transcode converts the raw audio file at src into an MP3 file at dst.
func (f *FFmpeg) Transcode(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, f.bin, f.BuildArgs(src, dst)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > 200 {
			detail = detail[len(detail)-200:]
		}
		if detail != "" {
			return fmt.Errorf("%w: %v: %s", shared.ErrTranscode, err, detail)
		}
		return fmt.Errorf("%w: %v", shared.ErrTranscode, err)
	}
	return nil
}
