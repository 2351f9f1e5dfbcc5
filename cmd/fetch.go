package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/desertthunder/ytz/internal/extract"
	"github.com/desertthunder/ytz/internal/pipeline"
	"github.com/desertthunder/ytz/internal/shared"
	"github.com/desertthunder/ytz/internal/store"
	"github.com/desertthunder/ytz/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// expandConcurrency caps simultaneous playlist metadata fetches.
const expandConcurrency = 4

// Fetch downloads every reference as an MP3 and writes the zip archive.
func (r *Runner) Fetch(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	refs, err := r.collectRefs(ctx, cmd)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return fmt.Errorf("%w: no references given", shared.ErrNoReferences)
	}

	workers := int(cmd.Int("workers"))
	if workers == 0 {
		workers = r.config.Downloads.Workers
	}
	if workers == 0 {
		workers = pipeline.DefaultWorkers
	}
	workers = pipeline.ClampWorkers(workers)
	r.logger.Infof("fetching %d references with %d workers", len(refs), workers)

	outcome, err := r.pipe.Run(ctx, refs, pipeline.BatchOpts{
		Workers:   workers,
		RateLimit: r.config.Downloads.RateLimit,
	})
	if err != nil {
		return err
	}

	r.recordOutcome(outcome)

	payload, err := pipeline.BuildArchive(outcome)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if err := os.WriteFile(output, payload, 0644); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	r.writeSummary(outcome, output)

	if len(outcome.Successes) == 0 {
		return fmt.Errorf("all %d references failed, see errors.txt in %s", len(outcome.Failures), output)
	}
	return nil
}

// collectRefs gathers references from positional args, --file and --playlist,
// in that order. Playlists expand concurrently but splice back in flag order.
func (r *Runner) collectRefs(ctx context.Context, cmd *cli.Command) ([]string, error) {
	refs := extract.NormalizeLines(strings.Join(cmd.Args().Slice(), "\n"))

	if path := cmd.String("file"); path != "" {
		fromFile, err := readRefFile(path)
		if err != nil {
			return nil, err
		}
		refs = append(refs, fromFile...)
	}

	playlists := cmd.StringSlice("playlist")
	if len(playlists) == 0 {
		return refs, nil
	}

	expanded := make([][]string, len(playlists))
	var mu sync.Mutex
	empty := []string{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(expandConcurrency)
	for i, playlist := range playlists {
		g.Go(func() error {
			urls := r.expander.ExpandPlaylist(gctx, playlist)
			if len(urls) == 0 {
				mu.Lock()
				empty = append(empty, playlist)
				mu.Unlock()
				return nil
			}
			expanded[i] = urls
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(empty) > 0 {
		sort.Strings(empty)
		return nil, fmt.Errorf("%w: %s", shared.ErrEmptyPlaylist, strings.Join(empty, ", "))
	}

	for _, urls := range expanded {
		refs = append(refs, urls...)
	}
	return refs, nil
}

func readRefFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference file: %w", err)
	}
	defer f.Close()

	refs := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		refs = append(refs, extract.NormalizeLines(scanner.Text())...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reference file: %w", err)
	}
	return refs, nil
}

// recordOutcome persists the batch to the local database when one is
// configured. Failures only warn, fetch output is already on disk.
func (r *Runner) recordOutcome(outcome *pipeline.Outcome) {
	if r.config.Database.Path == "" {
		return
	}

	db, err := store.Open(r.config.Database.Path, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if err != nil {
		r.logger.Warn("failed to open database", "error", err)
		return
	}
	defer db.Close()

	id, err := db.RecordBatch(outcome)
	if err != nil {
		r.logger.Warn("failed to record batch", "error", err)
		return
	}
	r.logger.Infof("recorded batch %s", id)
}

func (r *Runner) writeSummary(outcome *pipeline.Outcome, output string) {
	r.writePlain("%s\n", ui.Title("Batch complete"))
	r.writePlain("%s\n", ui.OK(fmt.Sprintf("✓ %d succeeded", len(outcome.Successes))))
	if len(outcome.Failures) > 0 {
		r.writePlain("%s\n", ui.Err(fmt.Sprintf("✗ %d failed", len(outcome.Failures))))
		for _, res := range outcome.Failures {
			r.writePlain("  %s\n", ui.Warn(fmt.Sprintf("%s: %s", res.Reference, res.Reason())))
		}
	}
	r.writePlain("%s\n", ui.Help(fmt.Sprintf("archive written to %s", output)))
}
