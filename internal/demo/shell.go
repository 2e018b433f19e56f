// Package demo serves the interactive heat map page.
package demo

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/banshee-data/heatmap.report/internal/chart"
	"github.com/banshee-data/heatmap.report/internal/heatmap"
	"github.com/banshee-data/heatmap.report/internal/interaction"
	"github.com/banshee-data/heatmap.report/internal/metrics"
	"github.com/banshee-data/heatmap.report/internal/presets"
	"github.com/banshee-data/heatmap.report/internal/timeutil"
)

// Selection is the state of the four controls.
type Selection struct {
	Size         presets.Size
	Mode         heatmap.Mode
	ColorScale   string
	Downsampling bool
}

// RenderConfig returns the display options of s.
func (s Selection) RenderConfig() chart.RenderConfig {
	return chart.RenderConfig{ColorScale: s.ColorScale, Downsampling: s.Downsampling}
}

// Change holds raw control values; nil fields keep the current selection.
type Change struct {
	Size         *string
	Mode         *string
	ColorScale   *string
	Downsampling *string
}

// Frame is what one committed configuration cycle renders.
type Frame struct {
	Selection Selection
	Grid      *heatmap.Grid
	Token     uint64
}

// Shell owns the page state: the current selection, the grid generated for
// it, the generator and the interaction timer. Commits are serialized so a
// state change, its Generate call and its timer start happen together.
type Shell struct {
	log     *slog.Logger
	clock   timeutil.Clock
	metrics *metrics.Recorder
	timer   *interaction.Timer
	surface *interaction.Surface

	mu   sync.Mutex
	gen  *heatmap.Generator
	sel  Selection
	grid *heatmap.Grid
}

// ShellOptions configures NewShell.
type ShellOptions struct {
	Logger    *slog.Logger
	Clock     timeutil.Clock
	Metrics   *metrics.Recorder
	Generator *heatmap.Generator
	Initial   Selection
}

// NewShell validates the initial selection. The first grid is generated by
// the first Commit.
func NewShell(o ShellOptions) (*Shell, error) {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Clock == nil {
		o.Clock = timeutil.RealClock{}
	}
	if o.Metrics == nil {
		o.Metrics = metrics.NewRecorder()
	}
	if o.Generator == nil {
		o.Generator = heatmap.NewGenerator(nil)
	}
	if err := o.Initial.Mode.Validate(); err != nil {
		return nil, err
	}
	if _, err := chart.LookupColorScale(o.Initial.ColorScale); err != nil {
		return nil, err
	}
	if !presets.IsValidSize(o.Initial.Size.N) {
		return nil, fmt.Errorf("%w: initial size %d", heatmap.ErrInvalidArgument, o.Initial.Size.N)
	}

	surface := interaction.NewSurface()
	surface.SetPointsLabel(o.Initial.Size.Label())
	s := &Shell{
		log:     o.Logger,
		clock:   o.Clock,
		metrics: o.Metrics,
		surface: surface,
		gen:     o.Generator,
		sel:     o.Initial,
	}
	s.timer = interaction.NewTimer(o.Clock, surface)
	s.timer.OnStale(func(token uint64) {
		s.metrics.StaleSettle()
		s.log.Debug("dropped stale settle", "token", token)
	})
	return s, nil
}

// apply resolves c against the current selection without mutating it.
func (s Selection) apply(c Change) (Selection, error) {
	next := s
	if c.Size != nil {
		size, err := presets.ParseSize(*c.Size)
		if err != nil {
			return s, err
		}
		next.Size = size
	}
	if c.Mode != nil {
		mode, err := presets.ParseMode(*c.Mode)
		if err != nil {
			return s, err
		}
		next.Mode = mode
	}
	if c.ColorScale != nil {
		name, err := presets.ParseColorScale(*c.ColorScale)
		if err != nil {
			return s, err
		}
		next.ColorScale = name
	}
	if c.Downsampling != nil {
		on, err := presets.ParseDownsampling(*c.Downsampling)
		if err != nil {
			return s, err
		}
		next.Downsampling = on
	}
	return next, nil
}

// Commit applies c and starts a timing cycle for the frame it produces. The
// grid is regenerated when size or mode changed, or when none exists yet.
// An invalid change leaves the state untouched.
func (s *Shell) Commit(c Change) (Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.sel.apply(c)
	if err != nil {
		return Frame{}, err
	}

	handle := s.timer.Start()
	if s.grid == nil || next.Size.N != s.sel.Size.N || next.Mode != s.sel.Mode {
		start := s.clock.Now()
		grid, err := s.gen.Generate(next.Size.N, next.Mode)
		if err != nil {
			return Frame{}, err
		}
		elapsed := s.clock.Since(start)
		s.metrics.ObserveGenerate(next.Mode, next.Size.N, elapsed)
		s.log.Info("generated grid",
			"size", int(next.Size.N),
			"points", next.Size.Label(),
			"mode", next.Mode.String(),
			"elapsed", elapsed,
			"token", handle.Token(),
		)
		s.grid = grid
	}
	s.sel = next
	s.surface.SetPointsLabel(next.Size.Label())
	return Frame{Selection: next, Grid: s.grid, Token: handle.Token()}, nil
}

// Settle handles a frame-settled notification for token.
func (s *Shell) Settle(token uint64) (interaction.Readout, bool) {
	r, ok := s.timer.Settle(token)
	if ok {
		s.metrics.ObserveInteraction(r.Seconds)
		s.log.Info("frame settled", "token", token, "seconds", r.Text)
	}
	return r, ok
}

// Current returns the last committed frame. ok is false before the first commit.
func (s *Shell) Current() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grid == nil {
		return Frame{}, false
	}
	return Frame{Selection: s.sel, Grid: s.grid, Token: s.timer.Latest()}, true
}

// Readout returns the display surface contents.
func (s *Shell) Readout() (interaction.Readout, bool) {
	return s.surface.Snapshot()
}

// Click records a cell click reported by the page.
func (s *Shell) Click(x, y int, value float64) {
	s.metrics.Click()
	s.log.Debug("cell clicked", "x", x, "y", y, "value", value)
}
