package intake

import (
	"fmt"
	"mime"
	"slices"
	"strings"
)

// MaxResumeBytes is the default size ceiling; a file of exactly this size is
// accepted.
const MaxResumeBytes int64 = 5 * 1024 * 1024

const (
	MimePDF  = "application/pdf"
	MimeText = "text/plain"
	MimeDoc  = "application/msword"
	MimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// DefaultAllowedTypes is the resume MIME whitelist.
var DefaultAllowedTypes = []string{MimePDF, MimeText, MimeDoc, MimeDocx}

// Reason tags why a candidate was rejected.
type Reason string

const (
	ReasonInvalidFileType Reason = "InvalidFileType"
	ReasonFileTooLarge    Reason = "FileTooLarge"
)

// Rejection is returned by Validate for unacceptable files.
type Rejection struct {
	Reason Reason
	File   CandidateFile
	Limit  int64 // size ceiling in effect, set for ReasonFileTooLarge
}

func (r *Rejection) Error() string {
	switch r.Reason {
	case ReasonFileTooLarge:
		return fmt.Sprintf("file %q is too large: %d bytes exceeds %d", r.File.Name, r.File.SizeBytes, r.Limit)
	case ReasonInvalidFileType:
		return fmt.Sprintf("file %q has unsupported type %q", r.File.Name, r.File.MimeType)
	default:
		return fmt.Sprintf("file %q rejected: %s", r.File.Name, r.Reason)
	}
}

// Validator decides whether a candidate file is acceptable. The zero value
// uses the defaults.
type Validator struct {
	MaxBytes     int64
	AllowedTypes []string
}

// DefaultValidator returns the resume validator: PDF, TXT, DOC, DOCX up to 5 MB.
func DefaultValidator() Validator {
	return Validator{MaxBytes: MaxResumeBytes, AllowedTypes: DefaultAllowedTypes}
}

// Validate returns nil when f is acceptable and a *Rejection otherwise.
// Type is checked before size.
func (v Validator) Validate(f CandidateFile) error {
	allowed := v.AllowedTypes
	if len(allowed) == 0 {
		allowed = DefaultAllowedTypes
	}
	mt := MediaType(f.MimeType)
	if !slices.ContainsFunc(allowed, func(a string) bool { return MediaType(a) == mt }) {
		return &Rejection{Reason: ReasonInvalidFileType, File: f}
	}

	limit := v.limit()
	if f.SizeBytes > limit {
		return &Rejection{Reason: ReasonFileTooLarge, File: f, Limit: limit}
	}
	return nil
}

func (v Validator) limit() int64 {
	if v.MaxBytes <= 0 {
		return MaxResumeBytes
	}
	return v.MaxBytes
}

// MediaType strips parameters and normalizes case: "Text/Plain; charset=utf-8"
// becomes "text/plain".
func MediaType(s string) string {
	if mt, _, err := mime.ParseMediaType(s); err == nil {
		return mt
	}
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(strings.TrimSpace(s))
}
