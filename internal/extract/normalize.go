package extract

import (
	"fmt"
	"regexp"
	"strings"
)

const watchURLTemplate = "https://www.youtube.com/watch?v=%s"

// videoIDPattern matches a bare 11-character YouTube video id.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// WatchURL builds a canonical watch URL from a bare video id.
func WatchURL(id string) string {
	return fmt.Sprintf(watchURLTemplate, id)
}

// NormalizeLines converts raw multi-line text into an ordered list of item references.
//
// Each line is trimmed; blank lines produce no output. Lines matching the bare
// video id shape are expanded into full watch URLs, all other lines pass
// through unchanged. Output order matches input order, and no deduplication is
// performed: a reference submitted twice is processed twice.
func NormalizeLines(text string) []string {
	var refs []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if videoIDPattern.MatchString(line) {
			refs = append(refs, WatchURL(line))
		} else {
			refs = append(refs, line)
		}
	}
	return refs
}
