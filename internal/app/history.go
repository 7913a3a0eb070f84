package app

import (
	"context"
	"fmt"
	"time"

	"resumectl/internal/history"
	"resumectl/internal/ui"
	"resumectl/pkg/utils"
)

// ShowHistory prints up to limit recorded submissions, newest first.
func ShowHistory(ctx context.Context, store *history.Store, out *ui.ConsoleUI, limit int) error {
	records, err := store.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if len(records) == 0 {
		out.ShowMessage("No submissions recorded yet.")
		return nil
	}
	for _, r := range records {
		out.ShowMessage("%s  %-36s  %s (%s)",
			r.RecordedAt.Local().Format(time.DateTime), r.ResumeID, r.FileName, utils.FormatFileSize(r.SizeBytes))
	}
	return nil
}
