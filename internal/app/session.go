package app

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"resumectl/internal/intake"
	"resumectl/internal/modal"
	"resumectl/internal/transfer"
	"resumectl/pkg/utils"
)

const sessionHelp = `Commands:
  open            open the upload modal
  drop <text>     select a file by pasting or dragging it into the terminal
  pick <path>     select a file by path
  remove          discard the selected file
  submit          upload the selected file
  status          show the modal state
  cancel          cancel and close the modal (not while uploading)
  close           close the modal, aborting any upload
  history         list recorded submissions
  help            show this help
  exit            leave`

// SessionApp drives the upload modal from line-oriented input.
type SessionApp struct {
	services *Services
	prompt   string
}

func NewSessionApp(services *Services) *SessionApp {
	return &SessionApp{services: services, prompt: "resumectl> "}
}

// Run reads commands from in until exit, end of input or ctx cancellation.
// Submissions are tracked concurrently so the modal can be closed while an
// upload runs.
func (a *SessionApp) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The reader goroutine ends with the session or when in is exhausted.
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer a.services.Modal.Close()
		a.services.UI.ShowMessage("Type help for commands.")
		for {
			a.services.UI.ShowMessage("%s", a.prompt)
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				if a.exec(gctx, g, line) {
					return nil
				}
			}
		}
	})
	return g.Wait()
}

// exec runs one command line and reports whether the session should end.
func (a *SessionApp) exec(ctx context.Context, g *errgroup.Group, line string) bool {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)
	m := a.services.Modal
	out := a.services.UI

	switch strings.ToLower(cmd) {
	case "":
	case "help":
		out.ShowMessage("%s", sessionHelp)

	case "open":
		m.Open()
		out.ShowMessage("Upload modal opened. Drop a file or pick one.")

	case "drop":
		a.selected(m.Drop(rest))

	case "pick":
		a.selected(m.Pick(rest))

	case "remove":
		if err := m.Remove(); err != nil {
			a.report(err)
			return false
		}
		out.ShowMessage("File removed.")

	case "submit":
		snap := m.Snapshot()
		updates, err := m.Submit(ctx)
		if err != nil {
			a.report(err)
			return false
		}
		file := *snap.Candidate
		g.Go(func() error {
			// Failures were already shown as notices.
			_ = a.services.track(ctx, file, updates)
			return nil
		})

	case "status":
		out.ShowSnapshot(m.Snapshot())

	case "cancel":
		if err := m.Cancel(); err != nil {
			a.report(err)
			return false
		}
		out.ShowMessage("Upload modal closed.")

	case "close":
		m.Close()
		out.ShowMessage("Upload modal closed.")

	case "history":
		a.showHistory(ctx)

	case "exit", "quit":
		out.ShowMessage("Bye!")
		return true

	default:
		out.ShowMessage("Unknown command: %s", cmd)
	}
	return false
}

func (a *SessionApp) selected(file intake.CandidateFile, err error) {
	if err != nil {
		a.report(err)
		return
	}
	a.services.UI.ShowMessage("Selected %s (%s)", file.Name, utils.FormatFileSize(file.SizeBytes))
}

// report explains errors that were not already surfaced as notices.
func (a *SessionApp) report(err error) {
	out := a.services.UI
	var rej *intake.Rejection
	switch {
	case errors.As(err, &rej):
		// notified by intake
	case errors.Is(err, modal.ErrModalClosed):
		out.ShowMessage("The upload modal is closed. Type open first.")
	case errors.Is(err, modal.ErrNoCandidate):
		out.ShowMessage("No file selected. Use drop or pick.")
	case errors.Is(err, modal.ErrTransferInProgress),
		errors.Is(err, intake.ErrIntakeLocked),
		errors.Is(err, transfer.ErrSessionActive):
		out.ShowMessage("An upload is in progress.")
	case errors.Is(err, intake.ErrEmptyDrop):
		out.ShowMessage("Nothing was dropped.")
	default:
		out.ShowMessage("Error: %v", err)
	}
}

func (a *SessionApp) showHistory(ctx context.Context) {
	if a.services.History == nil {
		a.services.UI.ShowMessage("Submission history is disabled.")
		return
	}
	if err := ShowHistory(ctx, a.services.History, a.services.UI, 20); err != nil {
		a.report(err)
	}
}
