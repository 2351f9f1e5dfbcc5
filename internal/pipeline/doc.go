// Package pipeline implements the batch fetch-convert-package core: per-item processing, bounded-concurrency scheduling, and archive assembly.
//
// # Item Processing
//
// [Processor.Process] runs one reference through five sequential stages:
//
//  1. Extract : download the audio stream to a uniquely named scratch path
//  2. Derive name : clean and sanitize artist/title into the final filename
//  3. Transcode : scratch audio → MP3
//  4. Tag : embed title/artist ID3 frames (a failure here fails the item)
//  5. Cover art : fetch and embed the thumbnail, best effort
//
// Every exit path removes the scratch files; cleanup failures are logged and
// never surfaced. Stage failures become [Result] values, never panics across
// the scheduler boundary.
//
// # Batch Scheduling
//
// [Processor.Run] fans the references out over a fixed-size worker pool
// (jobs/results channels, clamped worker count) and collects results as they
// complete. Every submitted reference yields exactly one [Result]; a worker
// panic is recovered and converted into a failure for that reference. A single
// item's failure never aborts the batch; only an empty reference list is a
// batch-level error.
//
// # Archive Assembly
//
// [BuildArchive] writes all successes into one in-memory zip, resolving
// filename collisions with " (n)" suffixes, and appends an errors.txt manifest
// when any item failed. An archive holding only the manifest is still valid.
package pipeline
