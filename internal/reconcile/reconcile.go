// Package reconcile turns the terminal event of a transfer into the
// user-visible outcome.
package reconcile

import (
	"sync"

	"github.com/rs/zerolog"

	xlog "resumectl/internal/log"
	"resumectl/internal/notice"
	"resumectl/internal/transfer"
)

const (
	SuccessTitle       = "Success!"
	SuccessDescription = "Your resume has been uploaded and analyzed."
	FailureTitle       = "Upload Failed"
	FailureFallback    = "Failed to upload resume. Please try again."

	// ErrorBanner is shown next to the retained file after a failure.
	ErrorBanner = "Upload failed. Please try again."
)

// Outcome is what Reconcile did with an event.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	default:
		return "ignored"
	}
}

// SuccessFunc receives the identifier of a stored resume.
type SuccessFunc func(resumeID string)

// Target is the modal surface the reconciler drives.
type Target interface {
	// Claim reports whether the outcome still belongs to the target and
	// commits it to reconciliation. A dismissed target returns false.
	Claim() bool
	// Close clears the candidate, resets the session and hides the modal.
	Close()
	// ResetProgress zeroes the visible progress and keeps the candidate.
	ResetProgress()
}

// Reconciler maps terminal events to notices, the success callback and
// modal actions. Retries are left to the user.
type Reconciler struct {
	notifier  notice.Notifier
	onSuccess SuccessFunc
	logger    zerolog.Logger

	mu   sync.Mutex
	last string
}

func New(notifier notice.Notifier, onSuccess SuccessFunc, logger zerolog.Logger) *Reconciler {
	if notifier == nil {
		notifier = notice.Discard
	}
	return &Reconciler{
		notifier:  notifier,
		onSuccess: onSuccess,
		logger:    logger,
	}
}

// Reconcile handles ev against target. Progress events, a repeated terminal
// event for the session just reconciled and events the target refuses to
// claim are ignored.
func (r *Reconciler) Reconcile(ev transfer.Event, target Target) Outcome {
	if !ev.Terminal() || !r.claim(ev.SessionID) {
		return OutcomeIgnored
	}
	if !target.Claim() {
		r.logger.Debug().Str(xlog.FieldSessionID, ev.SessionID).Msg("outcome discarded, target dismissed")
		return OutcomeIgnored
	}

	if ev.Kind == transfer.EventSucceeded {
		r.notifier.Notify(notice.Notice{
			Title:       SuccessTitle,
			Description: SuccessDescription,
			Variant:     notice.VariantDefault,
		})
		r.logger.Info().
			Str(xlog.FieldSessionID, ev.SessionID).
			Str(xlog.FieldResumeID, ev.Result.ResumeID).
			Msg("submission reconciled")
		if r.onSuccess != nil {
			r.onSuccess(ev.Result.ResumeID)
		}
		target.Close()
		return OutcomeSucceeded
	}

	r.notifier.Notify(notice.Notice{
		Title:       FailureTitle,
		Description: failureDescription(ev.Err),
		Variant:     notice.VariantDestructive,
	})
	target.ResetProgress()

	logEvent := r.logger.Warn().Str(xlog.FieldSessionID, ev.SessionID)
	if ev.Err != nil {
		logEvent = logEvent.Str(xlog.FieldReason, string(ev.Err.Reason))
	}
	logEvent.Msg("submission failed, file kept for retry")
	return OutcomeFailed
}

func (r *Reconciler) claim(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sessionID == r.last {
		return false
	}
	r.last = sessionID
	return true
}

func failureDescription(f *transfer.Failure) string {
	if f == nil || f.Detail == "" {
		return FailureFallback
	}
	return f.Message()
}
