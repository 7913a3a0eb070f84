package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"resumectl/internal/intake"
	"resumectl/internal/modal"
	"resumectl/internal/reconcile"
	"resumectl/pkg/utils"
)

// newProgressBar creates a percentage bar for one submission.
func (c *ConsoleUI) newProgressBar(file intake.CandidateFile) *progressbar.ProgressBar {
	return progressbar.NewOptions64(100,
		progressbar.OptionSetDescription(fmt.Sprintf("Uploading %s", file.Name)),
		progressbar.OptionSetWriter(c.barOut),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetPredictTime(false),
	)
}

// TrackSubmission renders updates until the submission is reconciled, the
// channel closes or ctx is done. It returns the final update and whether one
// arrived.
func (c *ConsoleUI) TrackSubmission(ctx context.Context, file intake.CandidateFile, updates <-chan modal.Update) (modal.Update, bool) {
	var bar *progressbar.ProgressBar
	if c.showProgress {
		bar = c.newProgressBar(file)
	}
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			c.stopProgress(bar, false)
			return modal.Update{}, false
		case u, ok := <-updates:
			if !ok {
				c.stopProgress(bar, false)
				return modal.Update{}, false
			}
			if !u.Done {
				if bar != nil {
					_ = bar.Set64(int64(u.Percent))
				}
				continue
			}

			succeeded := u.Outcome == reconcile.OutcomeSucceeded
			c.stopProgress(bar, succeeded)
			if succeeded {
				c.showTransferSummary(file, time.Since(start))
			}
			return u, true
		}
	}
}

func (c *ConsoleUI) stopProgress(bar *progressbar.ProgressBar, complete bool) {
	if bar == nil {
		return
	}
	if complete {
		_ = bar.Finish()
		return
	}
	_ = bar.Exit()
}

// showTransferSummary displays a summary of the completed submission
func (c *ConsoleUI) showTransferSummary(file intake.CandidateFile, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "+ Total bytes sent: %s\n", utils.FormatFileSize(file.SizeBytes))
	fmt.Fprintf(c.out, "+ Transfer time: %s\n", elapsed.Round(time.Millisecond))
}
