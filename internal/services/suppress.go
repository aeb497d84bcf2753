package services

import "sync/atomic"

// Suppressor temporarily disables the automatic sync triggers during bulk
// writes, so that loading hundreds of definitions or roster rows does not
// schedule hundreds of overlapping synchronizer runs. It is an explicit
// injected dependency rather than ambient state, and re-entrant: nested
// Suppress calls stay suppressed until the outermost one returns.
type Suppressor struct {
	depth atomic.Int64
}

// NewSuppressor creates a Suppressor.
func NewSuppressor() *Suppressor {
	return &Suppressor{}
}

// Suppress runs fn with automatic triggers disabled.
func (s *Suppressor) Suppress(fn func() error) error {
	s.depth.Add(1)
	defer s.depth.Add(-1)
	return fn()
}

// Suppressed reports whether automatic triggers should be skipped.
func (s *Suppressor) Suppressed() bool {
	return s.depth.Load() > 0
}
