package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/ytz/internal/formatter"
	"github.com/desertthunder/ytz/internal/shared"
	"github.com/desertthunder/ytz/internal/store"
	"github.com/desertthunder/ytz/internal/ui"
	"github.com/urfave/cli/v3"
)

// History prints recent batch runs, or the report of one batch with --batch.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if r.config.Database.Path == "" {
		return fmt.Errorf("%w: no database path configured", shared.ErrMissingConfig)
	}

	db, err := store.Open(r.config.Database.Path, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if err != nil {
		return err
	}
	defer db.Close()

	if batchID := cmd.String("batch"); batchID != "" {
		return r.batchReport(db, batchID, cmd.String("format"), cmd.Bool("json"))
	}

	batches, err := db.RecentBatches(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(batches, true)
	}

	if len(batches) == 0 {
		r.writePlain("%s\n", ui.Help("no batches recorded yet"))
		return nil
	}

	for _, b := range batches {
		r.writePlain("%s  %s\n", b.ID, b.CreatedAt.Format(time.RFC3339))
		r.writePlain("  %s", ui.OK(fmt.Sprintf("%d/%d succeeded", b.Succeeded, b.Total)))
		if b.Failed > 0 {
			r.writePlain("  %s", ui.Err(fmt.Sprintf("%d failed", b.Failed)))
		}
		r.writePlain("\n")
	}
	return nil
}

// batchReport renders one batch in the requested format.
func (r *Runner) batchReport(db *store.Store, batchID, format string, useJSON bool) error {
	items, err := db.BatchItems(batchID)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(items, true)
	}

	batch, err := db.GetBatch(batchID)
	if err != nil {
		return err
	}

	var render func(store.Batch, []store.Item) ([]byte, error)
	switch format {
	case "csv":
		render = formatter.ReportToCSV
	case "markdown", "md":
		render = formatter.ReportToMarkdown
	case "", "text":
		render = formatter.ReportToText
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidInput, format)
	}

	out, err := render(batch, items)
	if err != nil {
		return err
	}
	return r.writePlain("%s", out)
}
