package pipeline

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func readArchive(t *testing.T, payload []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}

	entries := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read entry %s: %v", f.Name, err)
		}
		entries[f.Name] = string(data)
	}
	return entries
}

func TestBuildArchive(t *testing.T) {
	t.Run("successes only", func(t *testing.T) {
		outcome := &Outcome{
			Successes: []Result{
				{Reference: "a", Filename: "Artist - One.mp3", Payload: []byte("one")},
				{Reference: "b", Filename: "Artist - Two.mp3", Payload: []byte("two")},
			},
		}

		payload, err := BuildArchive(outcome)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		entries := readArchive(t, payload)
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries["Artist - One.mp3"] != "one" {
			t.Errorf("wrong payload for first entry")
		}
		if _, ok := entries["errors.txt"]; ok {
			t.Error("manifest present without failures")
		}
	})

	t.Run("colliding filenames get numbered", func(t *testing.T) {
		outcome := &Outcome{
			Successes: []Result{
				{Filename: "Song.mp3", Payload: []byte("first")},
				{Filename: "Song.mp3", Payload: []byte("second")},
				{Filename: "Song.mp3", Payload: []byte("third")},
			},
		}

		payload, err := BuildArchive(outcome)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		entries := readArchive(t, payload)
		for name, want := range map[string]string{
			"Song.mp3":     "first",
			"Song (1).mp3": "second",
			"Song (2).mp3": "third",
		} {
			if entries[name] != want {
				t.Errorf("entry %s = %q, want %q", name, entries[name], want)
			}
		}
	})

	t.Run("failures listed in manifest", func(t *testing.T) {
		outcome := &Outcome{
			Successes: []Result{
				{Filename: "Good.mp3", Payload: []byte("audio")},
			},
			Failures: []Result{
				{Reference: "https://www.youtube.com/watch?v=badbadbad01", Err: errors.New("video unavailable")},
			},
		}

		payload, err := BuildArchive(outcome)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		entries := readArchive(t, payload)
		manifest, ok := entries["errors.txt"]
		if !ok {
			t.Fatal("expected errors.txt entry")
		}
		want := "https://www.youtube.com/watch?v=badbadbad01 -> video unavailable"
		if manifest != want {
			t.Errorf("manifest = %q, want %q", manifest, want)
		}
	})

	t.Run("all failures still yields archive", func(t *testing.T) {
		outcome := &Outcome{
			Failures: []Result{
				{Reference: "a", Err: errors.New("one")},
				{Reference: "b", Err: errors.New("two")},
			},
		}

		payload, err := BuildArchive(outcome)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		entries := readArchive(t, payload)
		if len(entries) != 1 {
			t.Fatalf("expected only the manifest, got %d entries", len(entries))
		}
		lines := strings.Split(entries["errors.txt"], "\n")
		if len(lines) != 2 {
			t.Errorf("expected 2 manifest lines, got %d", len(lines))
		}
	})
}
