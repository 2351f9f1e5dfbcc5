package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrMissingTool   = fmt.Errorf("external tool not found")

	// Input validation errors
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrNoReferences  = fmt.Errorf("no references provided")
	ErrEmptyPlaylist = fmt.Errorf("playlist expansion returned no entries")

	// Per-item pipeline errors
	ErrExtraction = fmt.Errorf("extraction failed")
	ErrTranscode  = fmt.Errorf("transcode failed")
	ErrTagWrite   = fmt.Errorf("tag write failed")

	// Archive errors
	ErrArchive = fmt.Errorf("archive assembly failed")
)
