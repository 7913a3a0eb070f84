// Package intake turns drop and picker selections into a single validated
// candidate file awaiting submission.
package intake

// Origin records which input surface produced a candidate.
type Origin string

const (
	OriginDrag   Origin = "drag"
	OriginPicker Origin = "picker"
)

// CandidateFile is a locally selected file that has not been submitted yet.
type CandidateFile struct {
	Name      string
	SizeBytes int64
	MimeType  string
	Origin    Origin
	Path      string // local path the transfer reads from
}
