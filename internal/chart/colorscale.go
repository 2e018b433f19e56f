// Package chart turns generated grids into heat map renderings: an ECharts
// page for the browser and a PNG for headless export.
package chart

import (
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/palette/moreland"

	"github.com/banshee-data/heatmap.report/internal/heatmap"
	"github.com/banshee-data/heatmap.report/internal/presets"
)

// Stop pins a color at a position in [0, 1].
type Stop struct {
	At    float64
	Color color.RGBA
}

// ColorScale is a piecewise linear color ramp.
type ColorScale struct {
	Name  string
	Stops []Stop
}

func rgb(r, g, b uint8) color.RGBA { return color.RGBA{R: r, G: g, B: b, A: 0xff} }

var explicitScales = map[string][]Stop{
	presets.RdBu: {
		{0, rgb(5, 10, 172)}, {0.35, rgb(106, 137, 247)}, {0.5, rgb(190, 190, 190)},
		{0.6, rgb(220, 170, 132)}, {0.7, rgb(230, 145, 90)}, {1, rgb(178, 10, 28)},
	},
	presets.Portland: {
		{0, rgb(12, 51, 131)}, {0.25, rgb(10, 136, 186)}, {0.5, rgb(242, 211, 56)},
		{0.75, rgb(242, 143, 56)}, {1, rgb(217, 30, 30)},
	},
	presets.Picnic: {
		{0, rgb(0, 0, 255)}, {0.1, rgb(51, 153, 255)}, {0.2, rgb(102, 204, 255)},
		{0.3, rgb(153, 204, 255)}, {0.4, rgb(204, 204, 255)}, {0.5, rgb(255, 255, 255)},
		{0.6, rgb(255, 204, 255)}, {0.7, rgb(255, 153, 255)}, {0.8, rgb(255, 102, 204)},
		{0.9, rgb(255, 102, 102)}, {1, rgb(255, 0, 0)},
	},
	presets.Jet: {
		{0, rgb(0, 0, 131)}, {0.125, rgb(0, 60, 170)}, {0.375, rgb(5, 255, 255)},
		{0.625, rgb(255, 255, 0)}, {0.875, rgb(250, 0, 0)}, {1, rgb(128, 0, 0)},
	},
	presets.Hot: {
		{0, rgb(0, 0, 0)}, {0.3, rgb(230, 0, 0)}, {0.6, rgb(255, 210, 0)}, {1, rgb(255, 255, 255)},
	},
	presets.Electric: {
		{0, rgb(0, 0, 0)}, {0.15, rgb(30, 0, 100)}, {0.4, rgb(120, 0, 100)},
		{0.6, rgb(160, 90, 0)}, {0.8, rgb(230, 200, 0)}, {1, rgb(255, 250, 220)},
	},
	presets.Earth: {
		{0, rgb(0, 0, 130)}, {0.1, rgb(0, 180, 180)}, {0.2, rgb(40, 210, 40)},
		{0.4, rgb(230, 230, 50)}, {0.6, rgb(120, 70, 20)}, {1, rgb(255, 255, 255)},
	},
	presets.Bluered: {
		{0, rgb(0, 0, 255)}, {1, rgb(255, 0, 0)},
	},
}

// brewerClasses is the largest class count every sequential brewer palette supports.
const brewerClasses = 9

// LookupColorScale resolves a scale name from the presets.
func LookupColorScale(name string) (ColorScale, error) {
	if stops, ok := explicitScales[name]; ok {
		return ColorScale{Name: name, Stops: stops}, nil
	}
	switch name {
	case presets.YlOrRd, presets.YlGnBu, presets.Greys, presets.Greens:
		p, err := brewer.GetPalette(brewer.TypeSequential, name, brewerClasses)
		if err != nil {
			return ColorScale{}, fmt.Errorf("brewer palette %s: %w", name, err)
		}
		return fromPalette(name, p), nil
	case presets.Blackbody:
		return fromPalette(name, moreland.BlackBody().Palette(brewerClasses)), nil
	}
	return ColorScale{}, fmt.Errorf("%w: color scale %q", heatmap.ErrInvalidArgument, name)
}

func fromPalette(name string, p palette.Palette) ColorScale {
	colors := p.Colors()
	stops := make([]Stop, len(colors))
	for i, c := range colors {
		at := 0.0
		if len(colors) > 1 {
			at = float64(i) / float64(len(colors)-1)
		}
		stops[i] = Stop{At: at, Color: color.RGBAModel.Convert(c).(color.RGBA)}
	}
	return ColorScale{Name: name, Stops: stops}
}

// At interpolates the scale at t, clamped to [0, 1].
func (s ColorScale) At(t float64) color.RGBA {
	if len(s.Stops) == 0 {
		return color.RGBA{A: 0xff}
	}
	if t <= s.Stops[0].At {
		return s.Stops[0].Color
	}
	last := s.Stops[len(s.Stops)-1]
	if t >= last.At {
		return last.Color
	}
	k := sort.Search(len(s.Stops), func(i int) bool { return s.Stops[i].At >= t })
	lo, hi := s.Stops[k-1], s.Stops[k]
	f := (t - lo.At) / (hi.At - lo.At)
	return color.RGBA{
		R: lerp(lo.Color.R, hi.Color.R, f),
		G: lerp(lo.Color.G, hi.Color.G, f),
		B: lerp(lo.Color.B, hi.Color.B, f),
		A: 0xff,
	}
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*f + 0.5)
}

// Hex samples n evenly spaced colors as #rrggbb strings.
func (s ColorScale) Hex(n int) []string {
	out := make([]string, 0, n)
	for _, c := range s.sample(n) {
		out = append(out, fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
	}
	return out
}

// Palette samples n evenly spaced colors for gonum/plot.
func (s ColorScale) Palette(n int) palette.Palette {
	colors := make([]color.Color, 0, n)
	for _, c := range s.sample(n) {
		colors = append(colors, c)
	}
	return rampPalette(colors)
}

func (s ColorScale) sample(n int) []color.RGBA {
	if n < 2 {
		n = 2
	}
	out := make([]color.RGBA, n)
	for i := range out {
		out[i] = s.At(float64(i) / float64(n-1))
	}
	return out
}

type rampPalette []color.Color

func (p rampPalette) Colors() []color.Color { return p }
