// Package notice carries transient, toast-style messages from the upload
// pipeline to whatever surface displays them.
package notice

import "sync"

// Variant selects how a notice is presented.
type Variant int

const (
	VariantDefault Variant = iota
	VariantDestructive
)

func (v Variant) String() string {
	if v == VariantDestructive {
		return "destructive"
	}
	return "default"
}

// Notice is a single user-facing message.
type Notice struct {
	Title       string
	Description string
	Variant     Variant
}

// Notifier displays notices.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = NotifierFunc(func(Notice) {})

// Recorder keeps every notice it receives. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

// Notices returns a copy of the recorded notices in arrival order.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Last returns the most recent notice, if any.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}
