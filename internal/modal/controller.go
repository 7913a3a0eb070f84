// Package modal owns one upload modal: its visibility, the candidate file and
// the transfer session, and guarantees a clean baseline on every exit path.
package modal

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"resumectl/internal/intake"
	xlog "resumectl/internal/log"
	"resumectl/internal/reconcile"
	"resumectl/internal/transfer"
	"resumectl/pkg/types"
)

// updateBuffer bounds undelivered updates per submission. Progress beyond it
// is dropped; the Done update always fits.
const updateBuffer = 16

// Update reports submission progress. The last update of a reconciled
// submission has Done set and carries the Outcome.
type Update struct {
	SessionID string
	Percent   float64
	Done      bool
	Outcome   reconcile.Outcome
	Result    types.SubmissionResult
	Err       *transfer.Failure
}

// Snapshot is a copy of the modal state.
type Snapshot struct {
	Open         bool
	Candidate    *intake.CandidateFile
	Session      transfer.Snapshot
	Transferring bool
	Banner       string
}

// Controller coordinates intake, transfer and reconciliation for one modal.
type Controller struct {
	mu         sync.Mutex
	state      OpenState
	intake     *intake.Controller
	session    *transfer.Session
	reconciler *reconcile.Reconciler
	logger     zerolog.Logger

	transferring bool
	gen          uint64
	wg           sync.WaitGroup
}

func NewController(state OpenState, in *intake.Controller, session *transfer.Session, rec *reconcile.Reconciler, logger zerolog.Logger) *Controller {
	return &Controller{
		state:      state,
		intake:     in,
		session:    session,
		reconciler: rec,
		logger:     logger.With().Str(xlog.FieldComponent, "modal").Logger(),
	}
}

// Open shows the modal from the clean baseline.
func (c *Controller) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.state.SetOpen(true)
	c.logger.Debug().Msg("modal opened")
}

// Close clears the candidate, resets the session and hides the modal. A
// transfer in flight is aborted and its outcome discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

// Cancel is the user's cancel control. It is refused while a transfer runs.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transferring {
		return ErrTransferInProgress
	}
	c.closeLocked()
	return nil
}

func (c *Controller) closeLocked() {
	if c.transferring {
		c.logger.Info().Msg("modal dismissed during transfer, aborting")
	}
	c.resetLocked()
	c.state.SetOpen(false)
	c.logger.Debug().Msg("modal closed")
}

func (c *Controller) resetLocked() {
	c.gen++
	c.transferring = false
	c.session.Reset()
	c.intake.Reset()
}

// Drop selects a file from dropped text.
func (c *Controller) Drop(text string) (intake.CandidateFile, error) {
	if !c.state.Open() {
		return intake.CandidateFile{}, ErrModalClosed
	}
	return c.intake.Drop(text)
}

// Pick selects a file by path.
func (c *Controller) Pick(path string) (intake.CandidateFile, error) {
	if !c.state.Open() {
		return intake.CandidateFile{}, ErrModalClosed
	}
	return c.intake.Pick(path)
}

// Remove discards the selected file.
func (c *Controller) Remove() error {
	if !c.state.Open() {
		return ErrModalClosed
	}
	return c.intake.Clear()
}

// Submit starts transferring the selected file. The returned channel is
// closed once the submission is reconciled or the modal is closed, in which
// case no Done update is sent. A reader that stops early never stalls the
// submission. Cancelling ctx aborts the upload and reconciles it as a failure.
func (c *Controller) Submit(ctx context.Context) (<-chan Update, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Open() {
		return nil, ErrModalClosed
	}
	if c.transferring {
		return nil, ErrTransferInProgress
	}
	file, ok := c.intake.Current()
	if !ok {
		return nil, ErrNoCandidate
	}

	events, err := c.session.Start(ctx, file)
	if err != nil {
		return nil, err
	}
	c.transferring = true
	c.intake.SetLocked(true)

	updates := make(chan Update, updateBuffer)
	c.wg.Add(1)
	go c.observe(c.gen, events, updates)
	return updates, nil
}

func (c *Controller) observe(gen uint64, events <-chan transfer.Event, updates chan<- Update) {
	defer c.wg.Done()
	defer close(updates)

	var sessionID string
	reconciled := false
	for ev := range events {
		sessionID = ev.SessionID
		if !ev.Terminal() {
			// The last slot is kept for the Done update.
			if c.current(gen) && len(updates) < cap(updates)-1 {
				updates <- Update{SessionID: ev.SessionID, Percent: ev.Percent}
			}
			continue
		}
		reconciled = true
		c.finalize(gen, ev, updates)
	}

	if reconciled || !c.current(gen) {
		return
	}
	// The stream ended without an outcome while the submission is still
	// ours; report it as failed so the modal does not stay locked.
	if sessionID == "" {
		sessionID = c.session.Snapshot().ID
	}
	c.logger.Warn().Str(xlog.FieldSessionID, sessionID).Msg("transfer stream ended without an outcome")
	c.finalize(gen, transfer.Event{
		Kind:      transfer.EventFailed,
		SessionID: sessionID,
		Err:       &transfer.Failure{Reason: transfer.ReasonTransportFailure, Detail: "transfer ended unexpectedly"},
	}, updates)
}

func (c *Controller) finalize(gen uint64, ev transfer.Event, updates chan<- Update) {
	outcome := c.reconciler.Reconcile(ev, target{c: c, gen: gen})
	if outcome == reconcile.OutcomeIgnored {
		return
	}

	c.mu.Lock()
	if gen == c.gen {
		c.transferring = false
		c.intake.SetLocked(false)
	}
	c.mu.Unlock()

	final := Update{SessionID: ev.SessionID, Done: true, Outcome: outcome, Result: ev.Result, Err: ev.Err}
	if ev.Kind == transfer.EventSucceeded {
		final.Percent = 100
	}
	updates <- final
}

func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen
}

// Snapshot returns the current modal state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Open:         c.state.Open(),
		Session:      c.session.Snapshot(),
		Transferring: c.transferring,
	}
	if f, ok := c.intake.Current(); ok {
		snap.Candidate = &f
	}
	if snap.Session.Status == transfer.StatusFailed && !c.transferring {
		snap.Banner = reconcile.ErrorBanner
	}
	return snap
}

// Wait blocks until all observers and transfers have finished.
func (c *Controller) Wait() {
	c.wg.Wait()
	c.session.Wait()
}

// target lets the reconciler act on the modal only while the submission it
// reconciles is still the current one.
type target struct {
	c   *Controller
	gen uint64
}

// Claim commits the outcome to the submission if the modal has not been
// closed or reopened since it started. A Close that comes later finds a
// finished submission.
func (t target) Claim() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	return t.gen == t.c.gen
}

func (t target) Close() {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.gen != t.c.gen {
		return
	}
	t.c.transferring = false
	t.c.closeLocked()
}

func (t target) ResetProgress() {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.gen != t.c.gen {
		return
	}
	t.c.session.ResetProgress()
}
