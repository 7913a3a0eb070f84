package transfer

import (
	"errors"
	"fmt"
)

// ErrSessionActive is returned by Start while a transfer is running.
var ErrSessionActive = errors.New("a transfer is already in progress")

// FailureReason classifies remote failures.
type FailureReason string

const (
	ReasonTransportFailure  FailureReason = "TransportFailure"
	ReasonNonSuccessStatus  FailureReason = "NonSuccessStatus"
	ReasonMalformedResponse FailureReason = "MalformedResponse"
)

// Failure describes why a transfer did not succeed. Every failure is
// retryable by starting a new session.
type Failure struct {
	Reason     FailureReason
	Detail     string // transport error text or response status text
	StatusCode int    // zero when no response arrived
	Err        error
}

func (f *Failure) Error() string {
	if f.Detail == "" {
		return "upload failed"
	}
	return "upload failed: " + f.Detail
}

func (f *Failure) Unwrap() error { return f.Err }

// Message is the user-facing description of the failure.
func (f *Failure) Message() string {
	if f.Detail == "" {
		return "Upload failed"
	}
	return "Upload failed: " + f.Detail
}

// AsFailure converts any upload error into a *Failure. Errors that are not
// already classified count as transport failures.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Reason: ReasonTransportFailure, Detail: err.Error(), Err: err}
}

func malformed(code int, format string, args ...any) *Failure {
	err := fmt.Errorf(format, args...)
	return &Failure{Reason: ReasonMalformedResponse, Detail: "malformed response: " + err.Error(), StatusCode: code, Err: err}
}
