// Package presets holds the enumerated options offered by the demo controls
// and the parsing used to validate user selections against them.
package presets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/banshee-data/heatmap.report/internal/heatmap"
)

// Size is one entry of the size control: a nominal point count and the
// grid side length that approximates it.
type Size struct {
	Points int64           `json:"points"`
	N      heatmap.GridSize `json:"n"`
}

// Label returns the point count with thousands separators.
func (s Size) Label() string {
	return humanize.Comma(s.Points)
}

// Sizes is ordered from smallest to largest.
var Sizes = []Size{
	{100, 10},
	{1_000, 33},
	{10_000, 100},
	{100_000, 333},
	{1_000_000, 1000},
	{4_000_000, 2000},
	{9_000_000, 3000},
	{16_000_000, 4000},
	{25_000_000, 5000},
	{36_000_000, 6000},
}

// Color scale identifiers.
const (
	YlOrRd    = "YlOrRd"
	YlGnBu    = "YlGnBu"
	RdBu      = "RdBu"
	Portland  = "Portland"
	Picnic    = "Picnic"
	Jet       = "Jet"
	Hot       = "Hot"
	Greys     = "Greys"
	Greens    = "Greens"
	Electric  = "Electric"
	Earth     = "Earth"
	Bluered   = "Bluered"
	Blackbody = "Blackbody"
)

// ColorScales lists the scales in control order.
var ColorScales = []string{
	YlOrRd, YlGnBu, RdBu, Portland, Picnic, Jet, Hot,
	Greys, Greens, Electric, Earth, Bluered, Blackbody,
}

// Defaults for a fresh session.
const (
	DefaultSize         heatmap.GridSize = 10
	DefaultMode                          = heatmap.Random
	DefaultColorScale                    = YlGnBu
	DefaultDownsampling                  = true
)

// ModeLabels are the captions the controls show for each mode.
var ModeLabels = map[heatmap.Mode]string{
	heatmap.Sequential: "Sequential",
	heatmap.Random:     "Random",
	heatmap.Noise:      "Perlin noise",
}

// SizeFor returns the preset whose side length is n.
func SizeFor(n heatmap.GridSize) (Size, bool) {
	for _, s := range Sizes {
		if s.N == n {
			return s, true
		}
	}
	return Size{}, false
}

// IsValidSize reports whether n is one of the preset side lengths.
func IsValidSize(n heatmap.GridSize) bool {
	_, ok := SizeFor(n)
	return ok
}

// ParseSize accepts a preset side length ("100") or its point label
// ("10,000" or "10000").
func ParseSize(s string) (Size, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if p, ok := SizeFor(heatmap.GridSize(n)); ok {
			return p, nil
		}
	}
	points, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err == nil {
		for _, p := range Sizes {
			if p.Points == points {
				return p, nil
			}
		}
	}
	return Size{}, fmt.Errorf("%w: size %q (valid: %s)", heatmap.ErrInvalidArgument, s, ValidSizesString())
}

// ValidSizesString returns the preset side lengths for error messages.
func ValidSizesString() string {
	parts := make([]string, len(Sizes))
	for i, s := range Sizes {
		parts[i] = strconv.Itoa(int(s.N))
	}
	return strings.Join(parts, ", ")
}

// ParseMode validates a mode name.
func ParseMode(s string) (heatmap.Mode, error) {
	return heatmap.ParseMode(s)
}

// IsValidColorScale reports whether name is a known scale. Matching is exact.
func IsValidColorScale(name string) bool {
	for _, c := range ColorScales {
		if c == name {
			return true
		}
	}
	return false
}

// ParseColorScale returns the canonical scale name, ignoring case.
func ParseColorScale(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, c := range ColorScales {
		if strings.EqualFold(c, s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: color scale %q (valid: %s)", heatmap.ErrInvalidArgument, s, GetValidColorScalesString())
}

// GetValidColorScalesString returns a comma-separated list of scale names.
func GetValidColorScalesString() string {
	return strings.Join(ColorScales, ", ")
}

// ParseDownsampling accepts On/Off as shown on the control, plus the usual
// boolean spellings.
func ParseDownsampling(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("%w: downsampling %q (valid: On, Off)", heatmap.ErrInvalidArgument, s)
	}
	return b, nil
}

// DownsamplingLabel is the control caption for b.
func DownsamplingLabel(b bool) string {
	if b {
		return "On"
	}
	return "Off"
}
