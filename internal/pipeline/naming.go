package pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// noisePhrases is the ordered list of boilerplate phrases excised from titles.
//
// Each phrase is removed at its first case-insensitive occurrence, in this
// order. "- -" is the separator artifact left behind when an artist name is
// excised from between dashes.
var noisePhrases = []string{
	"official music video",
	"official lyric video",
	"official video",
	"lyric video",
	"lyrics",
	"mv",
	"- -",
}

var (
	trailingSeparators = regexp.MustCompile(`[-|]+$`)
	whitespaceRuns     = regexp.MustCompile(`\s{2,}`)
)

// exciseFirst removes the first case-insensitive occurrence of phrase from s.
//
// The match is found by folding rune by rune rather than lowering a copy of
// s: ToLower can change a rune's encoded length, so byte indexes into a
// lowered copy do not line up with s.
func exciseFirst(s, phrase string) string {
	if phrase == "" {
		return s
	}
	for i := range s {
		if n, ok := foldPrefixLen(s[i:], phrase); ok {
			return s[:i] + s[i+n:]
		}
	}
	return s
}

// foldPrefixLen reports whether s starts with a case-insensitive match of
// phrase, and the byte length of the matched prefix of s.
func foldPrefixLen(s, phrase string) (int, bool) {
	n := 0
	for _, pr := range phrase {
		sr, size := utf8.DecodeRuneInString(s[n:])
		if size == 0 {
			return 0, false
		}
		if unicode.ToLower(sr) != unicode.ToLower(pr) {
			return 0, false
		}
		n += size
	}
	return n, true
}

// CleanTitle strips the artist name and known boilerplate phrases from a raw title.
//
// The artist occurrence is excised first, then each noise phrase in order,
// then trailing '-'/'|' runs, and finally internal whitespace runs collapse to
// a single space.
func CleanTitle(title, artist string) string {
	if artist != "" {
		title = strings.TrimSpace(exciseFirst(title, artist))
	}

	for _, phrase := range noisePhrases {
		title = exciseFirst(title, phrase)
	}

	title = trailingSeparators.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)
	return whitespaceRuns.ReplaceAllString(title, " ")
}

// Sanitize reduces a string to an archive-safe form: alphanumeric runes,
// spaces and underscores only, trimmed, with whitespace runs collapsed.
//
// Sanitizing an already-sanitized string is a no-op.
func Sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimSpace(b.String())
	return whitespaceRuns.ReplaceAllString(cleaned, " ")
}

// Filename composes the final archive entry name from sanitized artist and title.
//
// The artist prefix is omitted when empty; an empty title falls back to
// "audio" so the entry name is never bare ".mp3".
func Filename(artist, title string) string {
	if title == "" {
		title = "audio"
	}
	if artist == "" {
		return title + ".mp3"
	}
	return fmt.Sprintf("%s - %s.mp3", artist, title)
}
