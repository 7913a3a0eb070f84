package modal

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"resumectl/internal/intake"
	"resumectl/internal/notice"
	"resumectl/internal/reconcile"
	"resumectl/internal/transfer"
	"resumectl/pkg/types"
)

type attempt struct {
	steps  []int64
	result types.SubmissionResult
	err    error
	block  bool
}

// scriptedUploader plays one attempt per Upload call; the last attempt
// repeats.
type scriptedUploader struct {
	mu       sync.Mutex
	attempts []attempt
	calls    int
	started  chan struct{}
	release  chan struct{}
}

func (u *scriptedUploader) Upload(ctx context.Context, _ intake.CandidateFile, progress transfer.ProgressFunc) (types.SubmissionResult, error) {
	u.mu.Lock()
	a := u.attempts[min(u.calls, len(u.attempts)-1)]
	u.calls++
	u.mu.Unlock()

	for _, s := range a.steps {
		progress(s, 100)
	}
	u.started <- struct{}{}
	if a.block {
		select {
		case <-u.release:
		case <-ctx.Done():
			return types.SubmissionResult{}, ctx.Err()
		}
	}
	return a.result, a.err
}

func (u *scriptedUploader) Calls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

type harness struct {
	ctl      *Controller
	vis      *Visibility
	notices  *notice.Recorder
	uploader *scriptedUploader

	mu  sync.Mutex
	ids []string
}

func newHarness(t *testing.T, attempts ...attempt) *harness {
	t.Helper()
	h := &harness{
		vis:     NewVisibility(nil),
		notices: &notice.Recorder{},
		uploader: &scriptedUploader{
			attempts: attempts,
			started:  make(chan struct{}, 8),
			release:  make(chan struct{}),
		},
	}
	logger := zerolog.New(io.Discard)
	in := intake.NewController(intake.DefaultValidator(), h.notices, logger)
	session := transfer.NewSession(h.uploader, logger)
	rec := reconcile.New(h.notices, h.record, logger)
	h.ctl = NewController(h.vis, in, session, rec, logger)
	return h
}

func (h *harness) record(id string) {
	h.mu.Lock()
	h.ids = append(h.ids, id)
	h.mu.Unlock()
}

func (h *harness) resumeIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.ids...)
}

func writePDF(t *testing.T, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.pdf")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = f.Write([]byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"))
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
	return path
}

func drain(t *testing.T, updates <-chan Update) []Update {
	t.Helper()
	var out []Update
	timeout := time.After(5 * time.Second)
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return out
			}
			out = append(out, u)
		case <-timeout:
			t.Fatal("updates channel did not close")
			return out
		}
	}
}

func progressOf(updates []Update) []float64 {
	var out []float64
	for _, u := range updates {
		if !u.Done {
			out = append(out, u.Percent)
		}
	}
	return out
}

func baseline() Snapshot {
	return Snapshot{Session: transfer.Snapshot{Status: transfer.StatusIdle}}
}
