package transfer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"resumectl/internal/intake"
	xlog "resumectl/internal/log"
	"resumectl/pkg/types"
)

// eventBuffer absorbs progress bursts. A full buffer slows the upload down
// until the consumer catches up.
const eventBuffer = 32

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	ID           string
	Status       Status
	Progress     float64
	ErrorMessage string
}

// Session runs at most one transfer at a time. Start, Reset and Snapshot are
// safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	uploader Uploader
	logger   zerolog.Logger

	id       string
	status   Status
	progress float64
	errMsg   string
	gen      uint64
	cancel   context.CancelFunc
	detach   chan struct{}
	wg       sync.WaitGroup
}

func NewSession(uploader Uploader, logger zerolog.Logger) *Session {
	return &Session{
		uploader: uploader,
		logger:   logger,
		status:   StatusIdle,
	}
}

// Start begins a transfer of file and returns its event stream. The stream
// starts with a 0% progress event, ends with exactly one terminal event and
// is then closed, also when ctx is cancelled. Only a Reset or the next Start
// closes the stream without a terminal event.
func (s *Session) Start(ctx context.Context, file intake.CandidateFile) (<-chan Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusTransferring {
		return nil, ErrSessionActive
	}

	s.gen++
	gen := s.gen
	s.id = uuid.NewString()
	s.setStatusLocked(StatusTransferring)
	s.progress = 0
	s.errMsg = ""

	// A previous stream whose terminal event was never read is released.
	if s.cancel != nil {
		s.cancel()
	}
	s.detachLocked()
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.detach = make(chan struct{})

	events := make(chan Event, eventBuffer)
	em := &emitter{
		ctx:      runCtx,
		detached: s.detach,
		session:  s,
		gen:      gen,
		id:       s.id,
		events:   events,
		logger:   s.logger.With().Str(xlog.FieldSessionID, s.id).Logger(),
		every:    rate.Sometimes{First: 1, Interval: 500 * time.Millisecond},
	}

	em.logger.Info().
		Str(xlog.FieldFile, file.Name).
		Int64(xlog.FieldSize, file.SizeBytes).
		Str(xlog.FieldMimeType, file.MimeType).
		Msg("transfer started")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(events)
		defer cancel()
		em.run(file)
	}()
	return events, nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{ID: s.id, Status: s.status, Progress: s.progress, ErrorMessage: s.errMsg}
}

// Reset returns the session to Idle with zero progress. An in-flight
// transfer is aborted and its remaining events are never delivered.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.detachLocked()
	s.setStatusLocked(StatusIdle)
	s.id = ""
	s.progress = 0
	s.errMsg = ""
}

// detachLocked releases the current stream's emitter from any pending send.
func (s *Session) detachLocked() {
	if s.detach != nil {
		close(s.detach)
		s.detach = nil
	}
}

// ResetProgress zeroes the progress without touching the status.
func (s *Session) ResetProgress() {
	s.mu.Lock()
	s.progress = 0
	s.mu.Unlock()
}

// Wait blocks until every transfer goroutine has returned.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) setStatusLocked(next Status) {
	if s.status == next {
		return
	}
	if !s.status.CanTransition(next) {
		s.logger.Error().
			Str(xlog.FieldOldState, string(s.status)).
			Str(xlog.FieldNewState, string(next)).
			Msg("illegal transfer state transition")
		return
	}
	s.logger.Debug().
		Str(xlog.FieldOldState, string(s.status)).
		Str(xlog.FieldNewState, string(next)).
		Msg("transfer state changed")
	s.status = next
}

// applyProgress records p if gen is still current.
func (s *Session) applyProgress(gen uint64, p float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.progress = p
	return true
}

// finish records the terminal outcome if gen is still current.
func (s *Session) finish(gen uint64, f *Failure) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	if f != nil {
		s.setStatusLocked(StatusFailed)
		s.errMsg = f.Message()
		return true
	}
	s.setStatusLocked(StatusSucceeded)
	return true
}

// emitter serializes one session's events. Once sealed, further progress is
// discarded. Sends block until the consumer reads or the stream is detached;
// cancelling ctx only aborts the upload.
type emitter struct {
	ctx      context.Context
	detached <-chan struct{}
	session  *Session
	gen      uint64
	id       string
	events   chan Event
	logger   zerolog.Logger
	every    rate.Sometimes

	mu     sync.Mutex
	last   float64
	began  bool
	sealed bool
}

func (e *emitter) run(file intake.CandidateFile) {
	e.progress(0)

	result, err := e.session.uploader.Upload(e.ctx, file, func(sent, total int64) {
		e.progress(Percent(sent, total))
	})
	e.terminal(result, AsFailure(err))
}

func (e *emitter) progress(p float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sealed || (e.began && p <= e.last) {
		return
	}
	if !e.session.applyProgress(e.gen, p) {
		return
	}
	e.began = true
	e.last = p

	e.every.Do(func() {
		e.logger.Debug().Float64(xlog.FieldPercent, p).Msg("transfer progress")
	})

	select {
	case e.events <- Event{Kind: EventProgress, SessionID: e.id, Percent: p}:
	case <-e.detached:
	}
}

func (e *emitter) terminal(result types.SubmissionResult, f *Failure) {
	e.mu.Lock()
	e.sealed = true
	e.mu.Unlock()

	if !e.session.finish(e.gen, f) {
		e.logger.Debug().Msg("transfer detached, outcome discarded")
		return
	}

	ev := Event{Kind: EventSucceeded, SessionID: e.id, Result: result}
	if f != nil {
		ev = Event{Kind: EventFailed, SessionID: e.id, Err: f}
		e.logger.Warn().
			Str(xlog.FieldReason, string(f.Reason)).
			Int(xlog.FieldStatus, f.StatusCode).
			Err(f.Err).
			Msg(f.Message())
	} else {
		e.logger.Info().Str(xlog.FieldResumeID, result.ResumeID).Msg("transfer succeeded")
	}

	select {
	case e.events <- ev:
	case <-e.detached:
	}
}
