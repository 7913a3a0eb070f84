package intake

import "errors"

var (
	ErrIntakeLocked = errors.New("file selection is disabled while a transfer is running")
	ErrEmptyDrop    = errors.New("nothing was dropped")
	ErrNotRegular   = errors.New("not a regular file")
)
