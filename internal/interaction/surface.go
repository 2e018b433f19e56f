package interaction

import "sync"

// placeholder is shown before the first frame settles.
const placeholder = "x"

// Surface is the single readout area of the page: the last published
// elapsed time and the label of the current point count. Each publish
// overwrites the previous value.
type Surface struct {
	mu          sync.RWMutex
	last        Readout
	has         bool
	pointsLabel string
}

// NewSurface returns an empty surface.
func NewSurface() *Surface {
	return &Surface{}
}

// Publish implements Display.
func (s *Surface) Publish(r Readout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.PointsLabel == "" {
		r.PointsLabel = s.pointsLabel
	}
	s.last = r
	s.has = true
}

// SetPointsLabel replaces the human-readable point count.
func (s *Surface) SetPointsLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointsLabel = label
}

// Snapshot returns the current readout. ok is false before the first publish;
// the points label is always current.
func (s *Surface) Snapshot() (r Readout, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r = s.last
	r.PointsLabel = s.pointsLabel
	if !s.has {
		r.Text = placeholder
	}
	return r, s.has
}

// Text returns the seconds readout, or the placeholder before any publish.
func (s *Surface) Text() string {
	r, _ := s.Snapshot()
	return r.Text
}
