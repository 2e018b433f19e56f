// Package interaction times a configuration change from the moment it is
// committed until the display reports that the resulting frame has settled.
package interaction

import (
	"fmt"
	"sync"
	"time"

	"github.com/banshee-data/heatmap.report/internal/timeutil"
)

// Readout is one published measurement.
type Readout struct {
	Token       uint64    `json:"token"`
	Seconds     float64   `json:"seconds"`
	Text        string    `json:"text"`
	PointsLabel string    `json:"points_label"`
	At          time.Time `json:"at"`
}

// Display receives published readouts.
type Display interface {
	Publish(Readout)
}

// FormatSeconds renders d in seconds with millisecond precision.
func FormatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

// Timer hands out one token per Start. Only the most recent token may
// publish, and it may publish once; a settle notification for an older
// cycle is dropped.
type Timer struct {
	clock   timeutil.Clock
	display Display

	mu      sync.Mutex
	seq     uint64
	latest  time.Time
	settled bool
	onStale func(token uint64)
}

// NewTimer returns a timer publishing to display. A nil clock uses the real clock.
func NewTimer(clock timeutil.Clock, display Display) *Timer {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Timer{clock: clock, display: display}
}

// OnStale registers a callback invoked for each dropped notification.
func (t *Timer) OnStale(fn func(token uint64)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStale = fn
}

// Handle identifies one timing cycle.
type Handle struct {
	timer *Timer
	token uint64
	start time.Time
}

// Token is the sequence number of the cycle.
func (h Handle) Token() uint64 { return h.token }

// Start records the commit time of a new cycle and supersedes any cycle
// still waiting for its frame.
func (t *Timer) Start() Handle {
	now := t.clock.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.latest = now
	t.settled = false
	return Handle{timer: t, token: t.seq, start: now}
}

// End is the frame-settled callback for this cycle. It returns false when
// a newer cycle has started or the cycle was already settled.
func (h Handle) End() (Readout, bool) {
	if h.timer == nil {
		return Readout{}, false
	}
	return h.timer.Settle(h.token)
}

// Settle completes the cycle identified by token.
func (t *Timer) Settle(token uint64) (Readout, bool) {
	end := t.clock.Now()

	t.mu.Lock()
	if token == 0 || token != t.seq || t.settled {
		stale := t.onStale
		t.mu.Unlock()
		if stale != nil {
			stale(token)
		}
		return Readout{}, false
	}
	t.settled = true
	elapsed := end.Sub(t.latest)
	t.mu.Unlock()

	if elapsed < 0 {
		elapsed = 0
	}
	r := Readout{
		Token:   token,
		Seconds: elapsed.Seconds(),
		Text:    FormatSeconds(elapsed),
		At:      end,
	}
	if t.display != nil {
		t.display.Publish(r)
	}
	return r, true
}

// Latest returns the token of the most recent cycle, zero before any Start.
func (t *Timer) Latest() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq
}
