package heatmap

// Fixed canvas used whenever the grid is not scaled to its data.
const (
	DefaultCanvasWidth  = 600
	DefaultCanvasHeight = 570

	// gapThreshold is the size below which cells are always separated.
	gapThreshold = 50
	// scaleThreshold is the size above which an undownsampled canvas grows.
	scaleThreshold = 90
	// pixelsPerCell applies to undownsampled canvases above scaleThreshold.
	pixelsPerCell = 10
	// downsampledTickInterval labels every fifth index.
	downsampledTickInterval = 5
)

// Geometry is the rendering layout derived from the grid size and the
// downsampling flag. TickInterval zero means the renderer picks ticks.
type Geometry struct {
	GapX         int `json:"gap_x"`
	GapY         int `json:"gap_y"`
	Width        int `json:"width"`
	Height       int `json:"height"`
	TickInterval int `json:"tick_interval,omitempty"`
}

// GeometryFor derives the layout for a size and downsampling selection.
func GeometryFor(size GridSize, downsampling bool) Geometry {
	n := int(size)
	g := Geometry{
		Width:  DefaultCanvasWidth,
		Height: DefaultCanvasHeight,
	}
	if !downsampling || n < gapThreshold {
		g.GapX, g.GapY = 1, 1
	}
	if !downsampling && n > scaleThreshold {
		g.Width, g.Height = n*pixelsPerCell, n*pixelsPerCell
	}
	if downsampling {
		g.TickInterval = downsampledTickInterval
	}
	return g
}

// AutoTicks reports whether the renderer should choose tick spacing.
func (g Geometry) AutoTicks() bool {
	return g.TickInterval == 0
}
