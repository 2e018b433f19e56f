package chart

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/heatmap.report/internal/heatmap"
)

// pngPaletteSize is the number of colors the PNG export quantizes values to.
const pngPaletteSize = 256

// pixels converts a canvas size in pixels to a vg length at the default 96 DPI.
func pixels(px int) vg.Length {
	return vg.Length(float64(px) * 72 / vgimg.DefaultDPI)
}

// gridXYZ adapts a Grid to plotter.GridXYZ. Rows run bottom to top, as on
// the page.
type gridXYZ struct {
	g *heatmap.Grid
}

func (a gridXYZ) Dims() (c, r int)   { return a.g.Dims() }
func (a gridXYZ) Z(c, r int) float64 { return a.g.At(c, r) }
func (a gridXYZ) X(c int) float64    { return float64(a.g.X[c]) }
func (a gridXYZ) Y(r int) float64    { return float64(a.g.Y[r]) }

// rasterHeatMap draws a rasterized heat map without reporting per-cell glyph
// boxes, which would allocate one box per cell.
type rasterHeatMap struct {
	h *plotter.HeatMap
}

func (r rasterHeatMap) Plot(c draw.Canvas, p *plot.Plot) { r.h.Plot(c, p) }

func (r rasterHeatMap) DataRange() (xmin, xmax, ymin, ymax float64) { return r.h.DataRange() }

// NewPlot builds a gonum/plot heat map of g sized per its geometry.
func NewPlot(g *heatmap.Grid, cfg RenderConfig) (*plot.Plot, vg.Length, vg.Length, error) {
	scale, err := LookupColorScale(cfg.ColorScale)
	if err != nil {
		return nil, 0, 0, err
	}
	geom := heatmap.GeometryFor(g.Size, cfg.Downsampling)

	h := plotter.NewHeatMap(gridXYZ{g}, scale.Palette(pngPaletteSize))
	h.Rasterized = true
	if h.Max <= h.Min {
		h.Max = h.Min + 1
	}
	h.NaN = color.Transparent

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s %dx%d", g.Mode, g.Size, g.Size)
	p.Add(rasterHeatMap{h})
	p.X.Min, p.X.Max, p.Y.Min, p.Y.Max = h.DataRange()

	return p, pixels(geom.Width), pixels(geom.Height), nil
}

// WritePNG renders g as a PNG to w.
func WritePNG(w io.Writer, g *heatmap.Grid, cfg RenderConfig) error {
	p, width, height, err := NewPlot(g, cfg)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
