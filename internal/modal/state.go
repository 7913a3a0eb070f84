package modal

import "sync"

// OpenState is the caller-owned visibility of the modal.
type OpenState interface {
	Open() bool
	SetOpen(open bool)
}

// Visibility is a concurrency-safe OpenState that can report changes.
type Visibility struct {
	mu       sync.Mutex
	open     bool
	onChange func(open bool)
}

// NewVisibility returns a closed Visibility. onChange may be nil.
func NewVisibility(onChange func(open bool)) *Visibility {
	return &Visibility{onChange: onChange}
}

func (v *Visibility) Open() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open
}

func (v *Visibility) SetOpen(open bool) {
	v.mu.Lock()
	changed := v.open != open
	v.open = open
	fn := v.onChange
	v.mu.Unlock()

	if changed && fn != nil {
		fn(open)
	}
}
