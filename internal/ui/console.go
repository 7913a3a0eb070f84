package ui

import (
	"fmt"
	"io"
	"sync"

	"resumectl/internal/modal"
	"resumectl/internal/notice"
	"resumectl/pkg/utils"
)

// ConsoleUI renders notices, modal state and submission progress on a
// terminal. It implements notice.Notifier.
type ConsoleUI struct {
	mu           sync.Mutex
	out          io.Writer // notices and messages
	barOut       io.Writer // progress bar, normally stderr
	showProgress bool
}

// NewConsoleUI creates a console UI. With showProgress false submissions are
// reported only by their outcome.
func NewConsoleUI(out, barOut io.Writer, showProgress bool) *ConsoleUI {
	return &ConsoleUI{out: out, barOut: barOut, showProgress: showProgress}
}

// Notify prints a notice as a single toast-style line.
func (c *ConsoleUI) Notify(n notice.Notice) {
	marker := "[ok]"
	if n.Variant == notice.VariantDestructive {
		marker = "[!!]"
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if n.Description == "" {
		fmt.Fprintf(c.out, "%s %s\n", marker, n.Title)
		return
	}
	fmt.Fprintf(c.out, "%s %s %s\n", marker, n.Title, n.Description)
}

// ShowMessage displays a message to the user
func (c *ConsoleUI) ShowMessage(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format+"\n", args...)
}

// ShowSnapshot prints the modal state.
func (c *ConsoleUI) ShowSnapshot(s modal.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !s.Open {
		fmt.Fprintln(c.out, "Upload modal: closed")
		return
	}
	fmt.Fprintln(c.out, "Upload modal: open")
	if s.Candidate == nil {
		fmt.Fprintln(c.out, "+ File: none (use drop or pick)")
	} else {
		fmt.Fprintf(c.out, "+ File: %s (%s, %s, via %s)\n",
			s.Candidate.Name, utils.FormatFileSize(s.Candidate.SizeBytes), s.Candidate.MimeType, s.Candidate.Origin)
	}
	fmt.Fprintf(c.out, "+ Transfer: %s (%.0f%%)\n", s.Session.Status, s.Session.Progress)
	if s.Banner != "" {
		fmt.Fprintf(c.out, "+ %s\n", s.Banner)
	}
}
