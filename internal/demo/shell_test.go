package demo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/heatmap.report/internal/heatmap"
	"github.com/banshee-data/heatmap.report/internal/monitoring"
	"github.com/banshee-data/heatmap.report/internal/presets"
	"github.com/banshee-data/heatmap.report/internal/timeutil"
)

func strp(s string) *string { return &s }

func newTestShell(t *testing.T, clock timeutil.Clock) *Shell {
	t.Helper()
	shell, err := NewShell(ShellOptions{
		Logger:    monitoring.NewNop(),
		Clock:     clock,
		Generator: heatmap.NewSeededGenerator(11),
		Initial: Selection{
			Size:         presets.Sizes[0],
			Mode:         heatmap.Random,
			ColorScale:   presets.YlGnBu,
			Downsampling: true,
		},
	})
	require.NoError(t, err)
	return shell
}

func TestNewShell_RejectsInvalidInitial(t *testing.T) {
	tests := []struct {
		name string
		sel  Selection
	}{
		{"size", Selection{Size: presets.Size{Points: 4, N: 2}, Mode: heatmap.Random, ColorScale: presets.Jet}},
		{"mode", Selection{Size: presets.Sizes[0], Mode: heatmap.Mode(9), ColorScale: presets.Jet}},
		{"color", Selection{Size: presets.Sizes[0], Mode: heatmap.Random, ColorScale: "Viridis"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewShell(ShellOptions{Logger: monitoring.NewNop(), Initial: tt.sel})
			assert.True(t, errors.Is(err, heatmap.ErrInvalidArgument), "got %v", err)
		})
	}
}

func TestShell_RegeneratesOnlyOnSizeOrMode(t *testing.T) {
	shell := newTestShell(t, timeutil.NewMockClock(time.Unix(0, 0)))

	_, ok := shell.Current()
	assert.False(t, ok)

	first, err := shell.Commit(Change{})
	require.NoError(t, err)
	require.NotNil(t, first.Grid)
	assert.Equal(t, uint64(1), first.Token)

	recolored, err := shell.Commit(Change{ColorScale: strp("jet"), Downsampling: strp("Off")})
	require.NoError(t, err)
	assert.Same(t, first.Grid, recolored.Grid)
	assert.Equal(t, presets.Jet, recolored.Selection.ColorScale)
	assert.False(t, recolored.Selection.Downsampling)
	assert.Equal(t, uint64(2), recolored.Token)

	remoded, err := shell.Commit(Change{Mode: strp("sequential")})
	require.NoError(t, err)
	assert.NotSame(t, first.Grid, remoded.Grid)
	assert.Equal(t, heatmap.Sequential, remoded.Grid.Mode)

	resized, err := shell.Commit(Change{Size: strp("1,000")})
	require.NoError(t, err)
	assert.Equal(t, heatmap.GridSize(33), resized.Grid.Size)
	assert.Len(t, resized.Grid.Z, 33)

	readout, published := shell.Readout()
	assert.False(t, published)
	assert.Equal(t, "1,000", readout.PointsLabel)
}

func TestShell_InvalidChangeKeepsState(t *testing.T) {
	shell := newTestShell(t, timeutil.NewMockClock(time.Unix(0, 0)))
	before, err := shell.Commit(Change{})
	require.NoError(t, err)

	_, err = shell.Commit(Change{Mode: strp("sequential"), Size: strp("12")})
	require.ErrorIs(t, err, heatmap.ErrInvalidArgument)

	after, ok := shell.Current()
	require.True(t, ok)
	assert.Equal(t, before.Selection, after.Selection)
	assert.Same(t, before.Grid, after.Grid)
	assert.Equal(t, before.Token, after.Token, "a rejected change starts no cycle")
}

func TestShell_LastCommitWins(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(100, 0))
	shell := newTestShell(t, clock)

	a, err := shell.Commit(Change{Size: strp("10")})
	require.NoError(t, err)
	clock.Advance(40 * time.Millisecond)
	b, err := shell.Commit(Change{Size: strp("33")})
	require.NoError(t, err)
	clock.Advance(60 * time.Millisecond)

	_, ok := shell.Settle(a.Token)
	assert.False(t, ok)

	r, ok := shell.Settle(b.Token)
	require.True(t, ok)
	assert.Equal(t, "0.060", r.Text)

	readout, published := shell.Readout()
	assert.True(t, published)
	assert.Equal(t, "0.060", readout.Text)
	assert.Equal(t, "1,000", readout.PointsLabel)
}
