package transfer

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
	"resumectl/pkg/types"
)

// fakeUploader reports the configured byte counts and then returns result or
// err. With block set it waits for release or cancellation first.
type fakeUploader struct {
	steps  []int64
	total  int64
	result types.SubmissionResult
	err    error
	block  bool

	mu       sync.Mutex
	calls    int
	started  chan struct{}
	release  chan struct{}
	progress ProgressFunc
}

func newFake(total int64, steps ...int64) *fakeUploader {
	return &fakeUploader{
		steps:   steps,
		total:   total,
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
}

func (f *fakeUploader) Upload(ctx context.Context, _ intake.CandidateFile, progress ProgressFunc) (types.SubmissionResult, error) {
	f.mu.Lock()
	f.calls++
	f.progress = progress
	f.mu.Unlock()

	for _, s := range f.steps {
		progress(s, f.total)
	}
	f.started <- struct{}{}
	if f.block {
		select {
		case <-f.release:
		case <-ctx.Done():
			return types.SubmissionResult{}, ctx.Err()
		}
	}
	return f.result, f.err
}

func (f *fakeUploader) lastProgress() ProgressFunc {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progress
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testFile(t *testing.T, size int) intake.CandidateFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.pdf")
	data := make([]byte, size)
	copy(data, "%PDF-1.4\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return intake.CandidateFile{
		Name:      "resume.pdf",
		SizeBytes: int64(size),
		MimeType:  intake.MimePDF,
		Origin:    intake.OriginPicker,
		Path:      path,
	}
}

// collect drains events until the stream closes.
func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var out []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("event stream did not close")
			return out
		}
	}
}

func percents(events []Event) []float64 {
	var out []float64
	for _, ev := range events {
		if ev.Kind == EventProgress {
			out = append(out, ev.Percent)
		}
	}
	return out
}
