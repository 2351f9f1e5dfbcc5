// Package tag embeds descriptive ID3v2 metadata and cover art into encoded MP3 files.
package tag

import (
	"fmt"

	"github.com/bogem/id3v2"
	"github.com/desertthunder/ytz/internal/shared"
)

// Writer writes ID3v2 tags to MP3 files.
//
// Title (TIT2) is always written; artist (TPE1) only when non-empty. Cover art
// is embedded as an APIC front-cover frame.
type Writer struct{}

// NewWriter creates a tag writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteTags embeds title and artist text frames into the MP3 file at path.
func (w *Writer) WriteTags(path, title, artist string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTagWrite, err)
	}
	defer tag.Close()

	tag.SetTitle(title)
	if artist != "" {
		tag.SetArtist(artist)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTagWrite, err)
	}
	return nil
}

// EmbedCover embeds image bytes as the front cover of the MP3 file at path.
func (w *Writer) EmbedCover(path string, art []byte) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTagWrite, err)
	}
	defer tag.Close()

	tag.DeleteFrames(tag.CommonID("Attached picture"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     art,
	})

	if err := tag.Save(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTagWrite, err)
	}
	return nil
}
