// package formatter provides functions to export batch reports to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/desertthunder/ytz/internal/store"
)

// ReportToCSV converts a batch record to CSV format with columns: Reference, Filename, Status, Error
func ReportToCSV(batch store.Batch, items []store.Item) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Reference", "Filename", "Status", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		record := []string{
			item.Reference,
			item.Filename,
			statusString(item),
			item.Error,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportToMarkdown converts a batch record to Markdown format
func ReportToMarkdown(batch store.Batch, items []store.Item) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Batch %s\n\n", batch.ID))
	buf.WriteString(fmt.Sprintf("**Date**: %s\n", batch.CreatedAt.Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("**Total**: %d\n", batch.Total))
	buf.WriteString(fmt.Sprintf("**Succeeded**: %d\n", batch.Succeeded))
	buf.WriteString(fmt.Sprintf("**Failed**: %d\n\n", batch.Failed))

	buf.WriteString("## Items\n\n")
	for i, item := range items {
		if item.Error == "" {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, item.Filename))
		} else {
			buf.WriteString(fmt.Sprintf("%d. ~~%s~~ %s\n", i+1, item.Reference, item.Error))
		}
	}

	return buf.Bytes(), nil
}

// ReportToText converts a batch record to plain text format
func ReportToText(batch store.Batch, items []store.Item) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Batch: %s\n", batch.ID))
	buf.WriteString(fmt.Sprintf("Date: %s\n", batch.CreatedAt.Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("Succeeded: %d/%d\n\n", batch.Succeeded, batch.Total))

	for i, item := range items {
		if item.Error == "" {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, item.Filename))
		} else {
			buf.WriteString(fmt.Sprintf("%d. %s failed: %s\n", i+1, item.Reference, item.Error))
		}
	}

	return buf.Bytes(), nil
}

func statusString(item store.Item) string {
	if item.Error == "" {
		return "ok"
	}
	return "failed"
}
