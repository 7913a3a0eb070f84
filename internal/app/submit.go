package app

import (
	"context"
	"fmt"

	"resumectl/internal/intake"
)

// SubmitOptions configures the one-shot submit application
type SubmitOptions struct {
	FilePath string // Required: path to the resume
	Drop     bool   // treat FilePath as dropped text (quotes, escapes, file:// URLs)
}

// SubmitApp opens the modal, selects one file, submits it and waits for the
// outcome.
type SubmitApp struct {
	services *Services
}

func NewSubmitApp(services *Services) *SubmitApp {
	return &SubmitApp{services: services}
}

// Run submits the file named in opts. Rejections and failures are returned
// as errors after the user has been notified.
func (a *SubmitApp) Run(ctx context.Context, opts *SubmitOptions) error {
	if opts.FilePath == "" {
		return fmt.Errorf("file path is required")
	}

	m := a.services.Modal
	m.Open()
	defer m.Close()

	var (
		file intake.CandidateFile
		err  error
	)
	if opts.Drop {
		file, err = m.Drop(opts.FilePath)
	} else {
		file, err = m.Pick(opts.FilePath)
	}
	if err != nil {
		return fmt.Errorf("failed to select file: %w", err)
	}

	a.services.UI.ShowMessage("Submitting %s to %s", file.Name, a.services.Config.Endpoint.URL)

	updates, err := m.Submit(ctx)
	if err != nil {
		return fmt.Errorf("failed to start submission: %w", err)
	}
	return a.services.track(ctx, file, updates)
}
