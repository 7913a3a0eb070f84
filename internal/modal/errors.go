package modal

import "errors"

var (
	ErrModalClosed        = errors.New("upload modal is closed")
	ErrNoCandidate        = errors.New("no file selected")
	ErrTransferInProgress = errors.New("a transfer is in progress")
)
