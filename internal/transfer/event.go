package transfer

import "resumectl/pkg/types"

// EventKind discriminates Event.
type EventKind int

const (
	EventProgress EventKind = iota
	EventSucceeded
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventSucceeded:
		return "succeeded"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is one element of a session's stream. Progress events carry Percent;
// the single terminal event carries Result or Err and is always last.
type Event struct {
	Kind      EventKind
	SessionID string
	Percent   float64
	Result    types.SubmissionResult
	Err       *Failure
}

// Terminal reports whether e ends its stream.
func (e Event) Terminal() bool {
	return e.Kind == EventSucceeded || e.Kind == EventFailed
}
