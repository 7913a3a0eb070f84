package intake

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"resumectl/internal/log"
	"resumectl/internal/notice"
	"resumectl/pkg/utils"
)

// Controller holds at most one accepted candidate file. Both input sources
// funnel into SubmitCandidate.
type Controller struct {
	mu        sync.Mutex
	validator Validator
	notifier  notice.Notifier
	logger    zerolog.Logger

	current *CandidateFile
	locked  bool
}

// NewController creates an intake controller.
func NewController(v Validator, n notice.Notifier, logger zerolog.Logger) *Controller {
	if n == nil {
		n = notice.Discard
	}
	return &Controller{
		validator: v,
		notifier:  n,
		logger:    logger.With().Str(log.FieldComponent, "intake").Logger(),
	}
}

// Drop handles text dropped onto the terminal.
func (c *Controller) Drop(text string) (CandidateFile, error) {
	path, err := ParseDropped(text)
	if err != nil {
		c.notifier.Notify(unavailableNotice("the dropped item"))
		return CandidateFile{}, err
	}
	return c.selectPath(path, OriginDrag)
}

// Pick handles a path chosen through the file picker.
func (c *Controller) Pick(path string) (CandidateFile, error) {
	return c.selectPath(path, OriginPicker)
}

func (c *Controller) selectPath(path string, origin Origin) (CandidateFile, error) {
	if c.Locked() {
		return CandidateFile{}, ErrIntakeLocked
	}

	f, err := Describe(path, origin)
	if err != nil {
		c.notifier.Notify(unavailableNotice(path))
		return CandidateFile{}, err
	}

	if err := c.SubmitCandidate(f, origin); err != nil {
		return CandidateFile{}, err
	}
	return f, nil
}

// SubmitCandidate validates f and, when accepted, replaces the current
// candidate. A rejected file never disturbs an existing selection.
func (c *Controller) SubmitCandidate(f CandidateFile, origin Origin) error {
	f.Origin = origin

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.locked {
		return ErrIntakeLocked
	}

	if err := c.validator.Validate(f); err != nil {
		var rej *Rejection
		if errors.As(err, &rej) {
			c.notifier.Notify(rejectionNotice(rej))
			c.logger.Warn().
				Str(log.FieldFile, f.Name).
				Str(log.FieldOrigin, string(origin)).
				Str(log.FieldMimeType, f.MimeType).
				Int64(log.FieldSize, f.SizeBytes).
				Str(log.FieldReason, string(rej.Reason)).
				Msg("candidate rejected")
		}
		return err
	}

	c.current = &f
	c.logger.Info().
		Str(log.FieldFile, f.Name).
		Str(log.FieldOrigin, string(origin)).
		Str(log.FieldMimeType, f.MimeType).
		Int64(log.FieldSize, f.SizeBytes).
		Msg("candidate accepted")
	return nil
}

// Clear removes the current candidate.
func (c *Controller) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return ErrIntakeLocked
	}
	c.current = nil
	return nil
}

// Reset drops the candidate and re-enables intake regardless of state.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.current = nil
	c.locked = false
	c.mu.Unlock()
}

// Current returns the accepted candidate, if any.
func (c *Controller) Current() (CandidateFile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return CandidateFile{}, false
	}
	return *c.current, true
}

// SetLocked disables (true) or re-enables intake.
func (c *Controller) SetLocked(locked bool) {
	c.mu.Lock()
	c.locked = locked
	c.mu.Unlock()
}

// Locked reports whether intake is disabled.
func (c *Controller) Locked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

func unavailableNotice(what string) notice.Notice {
	return notice.Notice{
		Title:       "File Unavailable",
		Description: fmt.Sprintf("Could not read %s.", what),
		Variant:     notice.VariantDestructive,
	}
}

func rejectionNotice(r *Rejection) notice.Notice {
	switch r.Reason {
	case ReasonFileTooLarge:
		return notice.Notice{
			Title:       "File Too Large",
			Description: fmt.Sprintf("Please upload a file smaller than %s.", utils.FormatFileSize(r.Limit)),
			Variant:     notice.VariantDestructive,
		}
	default:
		return notice.Notice{
			Title:       "Invalid File Type",
			Description: "Please upload a PDF, DOC, DOCX, or TXT file.",
			Variant:     notice.VariantDestructive,
		}
	}
}
