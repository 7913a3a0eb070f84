package modal

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"resumectl/internal/intake"
	"resumectl/internal/reconcile"
	"resumectl/internal/transfer"
	"resumectl/pkg/types"
)

func TestDroppedPDFUploadsAndCloses(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := newHarness(t, attempt{
		steps:  []int64{0, 25, 60, 100},
		result: types.SubmissionResult{ResumeID: "r-1", Timestamp: "2024-01-01T00:00:00Z"},
	})
	h.ctl.Open()

	f, err := h.ctl.Drop("'" + writePDF(t, 2*1024*1024) + "'")
	require.NoError(t, err)
	assert.Equal(t, intake.OriginDrag, f.Origin)
	assert.Equal(t, intake.MimePDF, f.MimeType)

	updates, err := h.ctl.Submit(context.Background())
	require.NoError(t, err)
	got := drain(t, updates)
	h.ctl.Wait()

	assert.Equal(t, []float64{0, 25, 60, 100}, progressOf(got))
	last := got[len(got)-1]
	assert.True(t, last.Done)
	assert.Equal(t, reconcile.OutcomeSucceeded, last.Outcome)
	assert.Equal(t, "r-1", last.Result.ResumeID)

	assert.Equal(t, []string{"r-1"}, h.resumeIDs())
	assert.False(t, h.vis.Open())
	if diff := cmp.Diff(baseline(), h.ctl.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	n, ok := h.notices.Last()
	require.True(t, ok)
	assert.Equal(t, "Success!", n.Title)
}

func TestOversizedPickIsRejected(t *testing.T) {
	h := newHarness(t, attempt{result: types.SubmissionResult{ResumeID: "never"}})
	h.ctl.Open()

	_, err := h.ctl.Pick(writePDF(t, 6*1024*1024))
	var rej *intake.Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, intake.ReasonFileTooLarge, rej.Reason)

	n, ok := h.notices.Last()
	require.True(t, ok)
	assert.Equal(t, "File Too Large", n.Title)
	assert.Equal(t, "Please upload a file smaller than 5 MB.", n.Description)

	_, err = h.ctl.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNoCandidate)
	assert.Zero(t, h.uploader.Calls())

	snap := h.ctl.Snapshot()
	assert.Nil(t, snap.Candidate)
	assert.Equal(t, transfer.StatusIdle, snap.Session.Status)
	assert.True(t, snap.Open)
}

func TestFailureKeepsFileForRetry(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := newHarness(t,
		attempt{steps: []int64{40}, err: errors.New("network error")},
		attempt{steps: []int64{100}, result: types.SubmissionResult{ResumeID: "r-2"}},
	)
	h.ctl.Open()
	_, err := h.ctl.Pick(writePDF(t, 1024))
	require.NoError(t, err)

	updates, err := h.ctl.Submit(context.Background())
	require.NoError(t, err)
	got := drain(t, updates)

	assert.Equal(t, []float64{0, 40}, progressOf(got))
	last := got[len(got)-1]
	require.True(t, last.Done)
	assert.Equal(t, reconcile.OutcomeFailed, last.Outcome)
	require.NotNil(t, last.Err)
	assert.Equal(t, transfer.ReasonTransportFailure, last.Err.Reason)

	snap := h.ctl.Snapshot()
	assert.True(t, snap.Open)
	require.NotNil(t, snap.Candidate)
	assert.Equal(t, "resume.pdf", snap.Candidate.Name)
	assert.Equal(t, transfer.StatusFailed, snap.Session.Status)
	assert.Zero(t, snap.Session.Progress)
	assert.False(t, snap.Transferring)
	assert.Equal(t, reconcile.ErrorBanner, snap.Banner)
	assert.Empty(t, h.resumeIDs())

	n, ok := h.notices.Last()
	require.True(t, ok)
	assert.Equal(t, "Upload Failed", n.Title)
	assert.Equal(t, "Upload failed: network error", n.Description)

	updates, err = h.ctl.Submit(context.Background())
	require.NoError(t, err)
	got = drain(t, updates)
	h.ctl.Wait()

	assert.Equal(t, []float64{0, 100}, progressOf(got))
	assert.Equal(t, []string{"r-2"}, h.resumeIDs())
	assert.False(t, h.vis.Open())
}

func TestTransferLocksTheModal(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := newHarness(t, attempt{steps: []int64{10}, block: true, result: types.SubmissionResult{ResumeID: "r-3"}})
	h.ctl.Open()
	path := writePDF(t, 1024)
	_, err := h.ctl.Pick(path)
	require.NoError(t, err)

	updates, err := h.ctl.Submit(context.Background())
	require.NoError(t, err)
	<-h.uploader.started

	assert.ErrorIs(t, h.ctl.Cancel(), ErrTransferInProgress)
	_, err = h.ctl.Submit(context.Background())
	assert.ErrorIs(t, err, ErrTransferInProgress)
	_, err = h.ctl.Pick(path)
	assert.ErrorIs(t, err, intake.ErrIntakeLocked)
	assert.ErrorIs(t, h.ctl.Remove(), intake.ErrIntakeLocked)

	snap := h.ctl.Snapshot()
	assert.True(t, snap.Open)
	assert.True(t, snap.Transferring)
	assert.Equal(t, transfer.StatusTransferring, snap.Session.Status)
	assert.Empty(t, snap.Banner)

	close(h.uploader.release)
	got := drain(t, updates)
	h.ctl.Wait()
	assert.Equal(t, reconcile.OutcomeSucceeded, got[len(got)-1].Outcome)
	assert.Equal(t, []string{"r-3"}, h.resumeIDs())
}

func TestCloseDuringTransferDiscardsOutcome(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := newHarness(t, attempt{steps: []int64{30}, block: true, result: types.SubmissionResult{ResumeID: "late"}})
	h.ctl.Open()
	_, err := h.ctl.Pick(writePDF(t, 1024))
	require.NoError(t, err)

	updates, err := h.ctl.Submit(context.Background())
	require.NoError(t, err)
	<-h.uploader.started

	h.ctl.Close()
	got := drain(t, updates)
	h.ctl.Wait()

	for _, u := range got {
		assert.False(t, u.Done)
	}
	assert.Empty(t, h.resumeIDs())
	if diff := cmp.Diff(baseline(), h.ctl.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestCloseBeforeReconciliationSuppressesSuccess(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := newHarness(t, attempt{steps: []int64{30}, block: true, result: types.SubmissionResult{ResumeID: "late"}})
	h.ctl.Open()
	_, err := h.ctl.Pick(writePDF(t, 1024))
	require.NoError(t, err)

	updates, err := h.ctl.Submit(context.Background())
	require.NoError(t, err)
	<-h.uploader.started

	h.ctl.mu.Lock()
	gen := h.ctl.gen
	h.ctl.mu.Unlock()
	sessionID := h.ctl.Snapshot().Session.ID

	// The success event was already read when the modal is dismissed.
	h.ctl.Close()
	late := make(chan Update, 1)
	h.ctl.finalize(gen, transfer.Event{
		Kind:      transfer.EventSucceeded,
		SessionID: sessionID,
		Result:    types.SubmissionResult{ResumeID: "late"},
	}, late)

	assert.Len(t, late, 0)
	assert.Empty(t, h.resumeIDs())
	assert.Empty(t, h.notices.Notices())
	assert.False(t, target{c: h.ctl, gen: gen}.Claim())

	drain(t, updates)
	h.ctl.Wait()
	if diff := cmp.Diff(baseline(), h.ctl.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestCallerCancellationFailsTheSubmission(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := writePDF(t, 1024)
	for i := 0; i < 20; i++ {
		h := newHarness(t, attempt{steps: []int64{20}, block: true, result: types.SubmissionResult{ResumeID: "never"}})
		h.ctl.Open()
		_, err := h.ctl.Pick(path)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		updates, err := h.ctl.Submit(ctx)
		require.NoError(t, err)
		<-h.uploader.started
		cancel()

		got := drain(t, updates)
		h.ctl.Wait()

		require.NotEmpty(t, got, "run %d", i)
		last := got[len(got)-1]
		require.True(t, last.Done, "run %d", i)
		assert.Equal(t, reconcile.OutcomeFailed, last.Outcome)
		require.NotNil(t, last.Err)
		assert.ErrorIs(t, last.Err, context.Canceled)

		snap := h.ctl.Snapshot()
		assert.True(t, snap.Open)
		assert.False(t, snap.Transferring)
		require.NotNil(t, snap.Candidate)
		assert.Equal(t, transfer.StatusFailed, snap.Session.Status)
		assert.Equal(t, reconcile.ErrorBanner, snap.Banner)
		assert.Empty(t, h.resumeIDs())

		n, ok := h.notices.Last()
		require.True(t, ok)
		assert.Equal(t, "Upload Failed", n.Title)

		// Intake is unlocked again, so the user can retry or leave.
		_, err = h.ctl.Pick(path)
		assert.NoError(t, err)
		assert.NoError(t, h.ctl.Cancel())
	}
}

func TestCloseFromEveryStateRestoresBaseline(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, h *harness) <-chan Update
	}{
		{"never opened", func(t *testing.T, h *harness) <-chan Update { return nil }},
		{"open and empty", func(t *testing.T, h *harness) <-chan Update {
			h.ctl.Open()
			return nil
		}},
		{"file selected", func(t *testing.T, h *harness) <-chan Update {
			h.ctl.Open()
			_, err := h.ctl.Pick(writePDF(t, 1024))
			require.NoError(t, err)
			return nil
		}},
		{"transferring", func(t *testing.T, h *harness) <-chan Update {
			h.uploader.attempts = []attempt{{steps: []int64{50}, block: true}}
			h.ctl.Open()
			_, err := h.ctl.Pick(writePDF(t, 1024))
			require.NoError(t, err)
			updates, err := h.ctl.Submit(context.Background())
			require.NoError(t, err)
			<-h.uploader.started
			return updates
		}},
		{"failed", func(t *testing.T, h *harness) <-chan Update {
			h.uploader.attempts = []attempt{{steps: []int64{40}, err: errors.New("boom")}}
			h.ctl.Open()
			_, err := h.ctl.Pick(writePDF(t, 1024))
			require.NoError(t, err)
			updates, err := h.ctl.Submit(context.Background())
			require.NoError(t, err)
			drain(t, updates)
			return nil
		}},
		{"succeeded", func(t *testing.T, h *harness) <-chan Update {
			h.uploader.attempts = []attempt{{result: types.SubmissionResult{ResumeID: "r"}}}
			h.ctl.Open()
			_, err := h.ctl.Pick(writePDF(t, 1024))
			require.NoError(t, err)
			updates, err := h.ctl.Submit(context.Background())
			require.NoError(t, err)
			drain(t, updates)
			return nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, attempt{})
			updates := tt.setup(t, h)

			h.ctl.Close()
			if updates != nil {
				drain(t, updates)
			}
			h.ctl.Wait()

			if diff := cmp.Diff(baseline(), h.ctl.Snapshot()); diff != "" {
				t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOpenStartsFromCleanBaseline(t *testing.T) {
	h := newHarness(t, attempt{steps: []int64{40}, err: errors.New("boom")})
	h.ctl.Open()
	_, err := h.ctl.Pick(writePDF(t, 1024))
	require.NoError(t, err)
	updates, err := h.ctl.Submit(context.Background())
	require.NoError(t, err)
	drain(t, updates)
	h.ctl.Wait()

	h.ctl.Open()
	want := baseline()
	want.Open = true
	if diff := cmp.Diff(want, h.ctl.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestCancelWhenIdleCloses(t *testing.T) {
	h := newHarness(t, attempt{})
	h.ctl.Open()
	_, err := h.ctl.Pick(writePDF(t, 1024))
	require.NoError(t, err)

	require.NoError(t, h.ctl.Cancel())
	if diff := cmp.Diff(baseline(), h.ctl.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestClosedModalRefusesInput(t *testing.T) {
	h := newHarness(t, attempt{})
	path := writePDF(t, 1024)

	_, err := h.ctl.Pick(path)
	assert.ErrorIs(t, err, ErrModalClosed)
	_, err = h.ctl.Drop(path)
	assert.ErrorIs(t, err, ErrModalClosed)
	assert.ErrorIs(t, h.ctl.Remove(), ErrModalClosed)
	_, err = h.ctl.Submit(context.Background())
	assert.ErrorIs(t, err, ErrModalClosed)
}

func TestRemoveClearsCandidate(t *testing.T) {
	h := newHarness(t, attempt{})
	h.ctl.Open()
	_, err := h.ctl.Pick(writePDF(t, 1024))
	require.NoError(t, err)

	require.NoError(t, h.ctl.Remove())
	assert.Nil(t, h.ctl.Snapshot().Candidate)
	_, err = h.ctl.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNoCandidate)
}

func TestVisibilityReportsChanges(t *testing.T) {
	var seen []bool
	v := NewVisibility(func(open bool) { seen = append(seen, open) })

	v.SetOpen(true)
	v.SetOpen(true)
	v.SetOpen(false)
	assert.Equal(t, []bool{true, false}, seen)
	assert.False(t, v.Open())
}
