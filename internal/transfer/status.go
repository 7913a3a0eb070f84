// Package transfer drives a single resume upload and reports its progress as
// an ordered event stream.
package transfer

import "slices"

// Status is the lifecycle state of a transfer session.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusTransferring Status = "transferring"
	StatusSucceeded    Status = "succeeded"
	StatusFailed       Status = "failed"
)

// Terminal states never advance on their own; a new Start is required.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

var transitions = map[Status][]Status{
	StatusIdle:         {StatusTransferring},
	StatusTransferring: {StatusSucceeded, StatusFailed, StatusIdle},
	StatusSucceeded:    {StatusTransferring, StatusIdle},
	StatusFailed:       {StatusTransferring, StatusIdle},
}

// CanTransition reports whether the session may move from s to next.
// Resetting to idle is always allowed.
func (s Status) CanTransition(next Status) bool {
	if next == StatusIdle {
		return true
	}
	return slices.Contains(transitions[s], next)
}
