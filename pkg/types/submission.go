package types

// SubmissionResult is the success payload of the resume upload endpoint.
type SubmissionResult struct {
	ResumeID  string `json:"resumeId"`
	Timestamp string `json:"timestamp"`
}
