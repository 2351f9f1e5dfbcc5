package pipeline

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/desertthunder/ytz/internal/shared"
)

const (
	// ArchiveName is the suggested download name for batch archives.
	ArchiveName = "youtube_batch.zip"
	// manifestName is the fixed archive entry listing failures.
	manifestName = "errors.txt"
)

// BuildArchive assembles the batch outcome into a single zip.
//
// Entry names are unique: a success whose filename is already taken gets a
// " (n)" suffix before the extension, n incrementing until free. When any
// failures exist, an errors.txt entry lists one "reference -> reason" line
// per failure. An outcome with zero successes still yields a valid archive
// containing only the manifest.
func BuildArchive(outcome *Outcome) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	taken := make(map[string]bool, len(outcome.Successes))
	for _, res := range outcome.Successes {
		name := uniqueName(taken, res.Filename)
		taken[name] = true

		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", shared.ErrArchive, name, err)
		}
		if _, err := w.Write(res.Payload); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", shared.ErrArchive, name, err)
		}
	}

	if len(outcome.Failures) > 0 {
		lines := make([]string, 0, len(outcome.Failures))
		for _, res := range outcome.Failures {
			lines = append(lines, fmt.Sprintf("%s -> %s", res.Reference, res.Reason()))
		}

		w, err := zw.Create(manifestName)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", shared.ErrArchive, manifestName, err)
		}
		if _, err := w.Write([]byte(strings.Join(lines, "\n"))); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", shared.ErrArchive, manifestName, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrArchive, err)
	}
	return buf.Bytes(), nil
}

// uniqueName resolves a filename collision by suffixing " (n)" before the extension.
func uniqueName(taken map[string]bool, name string) string {
	if !taken[name] {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if !taken[candidate] {
			return candidate
		}
	}
}
