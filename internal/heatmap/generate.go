package heatmap

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/ojrac/opensimplex-go"
)

// Mode selects the formula used to fill a grid.
type Mode int

const (
	Sequential Mode = iota
	Random
	Noise
)

var modeNames = map[Mode]string{
	Sequential: "sequential",
	Random:     "random",
	Noise:      "noise",
}

// Modes lists every mode in display order.
var Modes = []Mode{Sequential, Random, Noise}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Validate rejects values outside the closed set of modes.
func (m Mode) Validate() error {
	if _, ok := modeNames[m]; !ok {
		return fmt.Errorf("%w: unknown generation mode %d", ErrInvalidArgument, int(m))
	}
	return nil
}

// ParseMode accepts the mode names case-insensitively. "perlin" and
// "perlin noise" are accepted for Noise, matching the page label.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sequential":
		return Sequential, nil
	case "random":
		return Random, nil
	case "noise", "perlin", "perlin noise":
		return Noise, nil
	}
	return 0, fmt.Errorf("%w: unknown generation mode %q", ErrInvalidArgument, s)
}

// MarshalText encodes the mode name.
func (m Mode) MarshalText() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// noiseScale is the ratio between grid size and the noise smoothing divisor.
const noiseScale = 5

// Generator fills grids. Random and Noise modes draw from the handle passed
// to NewGenerator, so a seeded handle gives reproducible output.
// A Generator is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator drawing from rng. A nil rng is replaced
// by a randomly seeded PCG source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng}
}

// NewSeededGenerator returns a generator whose output is reproducible for seed.
func NewSeededGenerator(seed uint64) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Generate builds a size×size grid using mode.
func (g *Generator) Generate(size GridSize, mode Mode) (*Grid, error) {
	if err := size.Validate(); err != nil {
		return nil, err
	}
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	n := int(size)
	grid := &Grid{
		Size: size,
		Mode: mode,
		X:    indexSequence(n),
		Y:    indexSequence(n),
		Z:    make([][]float64, n),
	}

	switch mode {
	case Sequential:
		for i := 0; i < n; i++ {
			row := make([]float64, n)
			for j := range row {
				row[j] = float64(i + j)
			}
			grid.Z[i] = row
		}
	case Random:
		for i := 0; i < n; i++ {
			row := make([]float64, n)
			for j := range row {
				row[j] = g.rng.Float64()*float64(j) + g.rng.Float64()*float64(i)
			}
			grid.Z[i] = row
		}
	case Noise:
		field := g.NoiseField(size)
		for i := 0; i < n; i++ {
			row := make([]float64, n)
			for j := range row {
				row[j] = field.Value(i, j)
			}
			grid.Z[i] = row
		}
	}
	return grid, nil
}

// NoiseField is a single seeded coherent-noise instance scaled for one grid
// size. Repeated calls to Value with the same indices return the same value.
type NoiseField struct {
	noise   opensimplex.Noise
	divisor float64
}

// NoiseField draws a fresh seed from the generator's handle.
func (g *Generator) NoiseField(size GridSize) *NoiseField {
	return &NoiseField{
		noise:   opensimplex.New(g.rng.Int64()),
		divisor: float64(NoiseDivisor(size)),
	}
}

// Value evaluates the field at row i, column j and rescales it to [0, 100].
func (f *NoiseField) Value(i, j int) float64 {
	v := f.noise.Eval2(float64(j)/f.divisor, float64(i)/f.divisor)
	switch {
	case v < -1:
		v = -1
	case v > 1:
		v = 1
	}
	return (v + 1) * 50
}

// NoiseDivisor is floor(size/5), never less than 1. Grids smaller than five
// cells would otherwise divide by zero.
func NoiseDivisor(size GridSize) int {
	d := int(size) / noiseScale
	if d < 1 {
		return 1
	}
	return d
}
