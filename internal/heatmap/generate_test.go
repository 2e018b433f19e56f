package heatmap

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertShape(t *testing.T, g *Grid, n int) {
	t.Helper()
	require.Len(t, g.Z, n)
	require.Len(t, g.X, n)
	require.Len(t, g.Y, n)
	for i, row := range g.Z {
		require.Lenf(t, row, n, "row %d", i)
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("grid[%d][%d] = %v, want finite", i, j, v)
			}
		}
	}
	for i := 0; i < n; i++ {
		assert.Equal(t, i, g.X[i])
		assert.Equal(t, i, g.Y[i])
	}
}

func TestGenerate_Sequential(t *testing.T) {
	gen := NewSeededGenerator(1)
	for _, n := range []int{1, 2, 10, 33} {
		g, err := gen.Generate(GridSize(n), Sequential)
		require.NoError(t, err)
		assertShape(t, g, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if g.Z[i][j] != float64(i+j) {
					t.Fatalf("n=%d grid[%d][%d] = %v, want %d", n, i, j, g.Z[i][j], i+j)
				}
			}
		}
	}
}

func TestGenerate_SingleCell(t *testing.T) {
	gen := NewSeededGenerator(7)
	for _, mode := range Modes {
		t.Run(mode.String(), func(t *testing.T) {
			g, err := gen.Generate(1, mode)
			require.NoError(t, err)
			assertShape(t, g, 1)
			if mode == Sequential {
				assert.Equal(t, 0.0, g.Z[0][0])
			}
		})
	}
}

func TestGenerate_RandomBounds(t *testing.T) {
	gen := NewSeededGenerator(42)
	n := 40
	g, err := gen.Generate(GridSize(n), Random)
	require.NoError(t, err)
	assertShape(t, g, n)

	upper := 2 * float64(n-1)
	for i, row := range g.Z {
		for j, v := range row {
			if v < 0 || v > upper {
				t.Fatalf("grid[%d][%d] = %v outside [0, %v]", i, j, v, upper)
			}
			// each term is below its index, so the sum is below i+j (or zero at the origin)
			if i+j > 0 && v >= float64(i+j) {
				t.Fatalf("grid[%d][%d] = %v, want < %d", i, j, v, i+j)
			}
		}
	}
	assert.Equal(t, 0.0, g.Z[0][0])
}

func TestGenerate_RandomSeeded(t *testing.T) {
	a, err := NewSeededGenerator(99).Generate(20, Random)
	require.NoError(t, err)
	b, err := NewSeededGenerator(99).Generate(20, Random)
	require.NoError(t, err)
	assert.Equal(t, a.Z, b.Z)

	c, err := NewSeededGenerator(100).Generate(20, Random)
	require.NoError(t, err)
	assert.NotEqual(t, a.Z, c.Z)
}

func TestGenerate_NoiseRange(t *testing.T) {
	gen := NewSeededGenerator(3)
	for _, n := range []int{5, 10, 33, 100} {
		g, err := gen.Generate(GridSize(n), Noise)
		require.NoError(t, err)
		assertShape(t, g, n)
		for i, row := range g.Z {
			for j, v := range row {
				if v < 0 || v > 100 {
					t.Fatalf("n=%d grid[%d][%d] = %v outside [0, 100]", n, i, j, v)
				}
			}
		}
	}
}

func TestGenerate_NoiseSmallSizesStayFinite(t *testing.T) {
	gen := NewSeededGenerator(5)
	for n := 1; n < 5; n++ {
		g, err := gen.Generate(GridSize(n), Noise)
		require.NoError(t, err)
		assertShape(t, g, n)
		for _, row := range g.Z {
			for _, v := range row {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 100.0)
			}
		}
	}
}

func TestNoiseField_DeterministicWithinInstance(t *testing.T) {
	field := NewSeededGenerator(11).NoiseField(50)
	for i := 0; i < 50; i += 7 {
		for j := 0; j < 50; j += 3 {
			assert.Equal(t, field.Value(i, j), field.Value(i, j))
		}
	}
}

func TestNoiseDivisor(t *testing.T) {
	tests := []struct {
		size GridSize
		want int
	}{
		{1, 1},
		{4, 1},
		{5, 1},
		{9, 1},
		{10, 2},
		{33, 6},
		{6000, 1200},
	}
	for _, tt := range tests {
		if got := NoiseDivisor(tt.size); got != tt.want {
			t.Errorf("NoiseDivisor(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestGenerate_InvalidArguments(t *testing.T) {
	gen := NewSeededGenerator(1)

	_, err := gen.Generate(0, Sequential)
	assert.True(t, errors.Is(err, ErrInvalidArgument), "size 0: %v", err)

	_, err = gen.Generate(-3, Random)
	assert.True(t, errors.Is(err, ErrInvalidArgument), "size -3: %v", err)

	_, err = gen.Generate(10, Mode(42))
	assert.True(t, errors.Is(err, ErrInvalidArgument), "mode 42: %v", err)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"sequential", Sequential, false},
		{"Random", Random, false},
		{"noise", Noise, false},
		{"Perlin noise", Noise, false},
		{" perlin ", Noise, false},
		{"fractal", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMode_TextRoundTrip(t *testing.T) {
	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("noise")))
	assert.Equal(t, Noise, m)

	b, err := Random.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "random", string(b))

	_, err = Mode(9).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGrid_Summarize(t *testing.T) {
	g, err := NewSeededGenerator(1).Generate(3, Sequential)
	require.NoError(t, err)

	s := g.Summarize()
	assert.Equal(t, 0.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.InDelta(t, 2.0, s.Mean, 1e-12)

	c, r := g.Dims()
	assert.Equal(t, 3, c)
	assert.Equal(t, 3, r)
	assert.Equal(t, 3.0, g.At(2, 1))

	assert.Equal(t, Summary{}, (&Grid{}).Summarize())
}
