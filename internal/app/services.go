package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"resumectl/internal/config"
	"resumectl/internal/history"
	"resumectl/internal/intake"
	xlog "resumectl/internal/log"
	"resumectl/internal/modal"
	"resumectl/internal/reconcile"
	"resumectl/internal/transfer"
	"resumectl/internal/ui"
)

// ErrSubmissionFailed is returned when a submission ends without a resume id.
var ErrSubmissionFailed = errors.New("resume submission failed")

// Services wires the upload pipeline for one modal.
type Services struct {
	Config  *config.Config
	UI      *ui.ConsoleUI
	Modal   *modal.Controller
	History *history.Store // nil when history is disabled
	logger  zerolog.Logger
}

// ServiceOptions overrides the defaults derived from the configuration.
type ServiceOptions struct {
	HTTPClient *http.Client
	Uploader   transfer.Uploader
	// OnSubmissionSuccess is the external collaborator notified with each
	// new resume id.
	OnSubmissionSuccess reconcile.SuccessFunc
	// OnVisibilityChange observes the modal opening and closing.
	OnVisibilityChange func(open bool)
}

// NewServices creates all the application services
func NewServices(ctx context.Context, cfg *config.Config, console *ui.ConsoleUI, logger zerolog.Logger, opts ServiceOptions) (*Services, error) {
	uploader := opts.Uploader
	if uploader == nil {
		httpUploader, err := transfer.NewHTTPUploader(cfg.Endpoint, opts.HTTPClient, xlog.WithComponentFrom(logger, "uploader"))
		if err != nil {
			return nil, err
		}
		uploader = httpUploader
	}

	var store *history.Store
	if cfg.History.Enabled {
		var err error
		store, err = history.Open(ctx, cfg.History.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
	}

	onSuccess := opts.OnSubmissionSuccess
	if onSuccess == nil {
		onSuccess = func(resumeID string) {
			console.ShowMessage("Resume ID: %s", resumeID)
		}
	}

	in := intake.NewController(cfg.Validator(), console, logger)
	session := transfer.NewSession(uploader, xlog.WithComponentFrom(logger, "transfer"))
	rec := reconcile.New(console, onSuccess, xlog.WithComponentFrom(logger, "reconcile"))
	visibility := modal.NewVisibility(opts.OnVisibilityChange)

	return &Services{
		Config:  cfg,
		UI:      console,
		Modal:   modal.NewController(visibility, in, session, rec, logger),
		History: store,
		logger:  logger,
	}, nil
}

// Close closes the modal and releases the history database.
func (s *Services) Close() error {
	s.Modal.Close()
	s.Modal.Wait()
	if s.History != nil {
		return s.History.Close()
	}
	return nil
}

// track renders one submission and records it when it succeeds.
func (s *Services) track(ctx context.Context, file intake.CandidateFile, updates <-chan modal.Update) error {
	final, ok := s.UI.TrackSubmission(ctx, file, updates)
	if !ok {
		return fmt.Errorf("%w: submission of %s was aborted", ErrSubmissionFailed, file.Name)
	}
	if final.Outcome != reconcile.OutcomeSucceeded {
		if final.Err != nil {
			return fmt.Errorf("%w: %w", ErrSubmissionFailed, final.Err)
		}
		return ErrSubmissionFailed
	}

	if s.History == nil {
		return nil
	}
	err := s.History.Add(ctx, history.Record{
		ResumeID:  final.Result.ResumeID,
		Timestamp: final.Result.Timestamp,
		FileName:  file.Name,
		SizeBytes: file.SizeBytes,
		SessionID: final.SessionID,
	})
	if err != nil {
		// The submission itself succeeded; a history failure is only logged.
		s.logger.Error().Err(err).Str(xlog.FieldResumeID, final.Result.ResumeID).Msg("failed to record submission")
	}
	return nil
}
