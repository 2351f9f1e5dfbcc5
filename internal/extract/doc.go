// Package extract resolves user-supplied references into fetchable items and wraps the yt-dlp extraction binary.
//
// # Reference Normalization
//
// [NormalizeLines] turns raw multi-line input into an ordered list of item
// references. Bare 11-character video ids are expanded into canonical watch
// URLs; everything else passes through trimmed and unchanged, failing later at
// extraction if malformed. Duplicates are preserved deliberately.
//
// # Extraction
//
// [YTDLP] shells out to the yt-dlp binary in two modes:
//
//  1. [YTDLP.Extract] : download-enabled extraction of one item to a caller
//     provided scratch path, returning descriptive [Metadata]
//  2. [YTDLP.ExpandPlaylist] : flat playlist expansion without downloading,
//     returning ordered watch URLs
//
// ExpandPlaylist never propagates collaborator errors; it returns an empty
// slice, and callers must surface "failed or empty" to the user rather than
// treating zero items as success.
package extract
