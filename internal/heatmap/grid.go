// Package heatmap generates the synthetic datasets shown by the demo and
// derives the rendering geometry handed to the chart layer.
package heatmap

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrInvalidArgument is returned for sizes, modes or other selections outside
// the supported domain. Callers should test for it with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// GridSize is the edge length N of an N×N grid.
type GridSize int

// Validate reports whether the size is usable for generation.
func (s GridSize) Validate() error {
	if s < 1 {
		return fmt.Errorf("%w: grid size must be >= 1, got %d", ErrInvalidArgument, int(s))
	}
	return nil
}

// Cells returns N².
func (s GridSize) Cells() int {
	return int(s) * int(s)
}

// Grid is a row-major N×N dataset plus the axis index sequences.
type Grid struct {
	Size GridSize
	Mode Mode
	X    []int
	Y    []int
	Z    [][]float64
}

// Summary holds the value statistics used for visual map ranges.
type Summary struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// Dims returns the column and row counts.
func (g *Grid) Dims() (c, r int) {
	return int(g.Size), int(g.Size)
}

// At returns the value at column c, row r.
func (g *Grid) At(c, r int) float64 {
	return g.Z[r][c]
}

// Summarize computes min, max and mean over every cell.
func (g *Grid) Summarize() Summary {
	if len(g.Z) == 0 {
		return Summary{}
	}
	s := Summary{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, row := range g.Z {
		s.Min = math.Min(s.Min, floats.Min(row))
		s.Max = math.Max(s.Max, floats.Max(row))
		sum += stat.Mean(row, nil) * float64(len(row))
	}
	s.Mean = sum / float64(g.Size.Cells())
	return s
}

// indexSequence returns 0..n-1.
func indexSequence(n int) []int {
	seq := make([]int, n)
	for i := range seq {
		seq[i] = i
	}
	return seq
}
