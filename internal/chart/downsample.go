package chart

import "github.com/banshee-data/heatmap.report/internal/heatmap"

// MaxDownsampledSide caps the side length sent to the browser when
// downsampling is on. The fixed 600px canvas cannot show more cells than this.
const MaxDownsampledSide = 300

// Downsample averages square blocks of g so that neither side exceeds
// maxSide. Axis values are the index of each block's first row or column.
// g is returned unchanged when it already fits.
func Downsample(g *heatmap.Grid, maxSide int) *heatmap.Grid {
	cols, rows := g.Dims()
	if maxSide < 1 || (cols <= maxSide && rows <= maxSide) {
		return g
	}
	block := (max(cols, rows) + maxSide - 1) / maxSide
	outCols := (cols + block - 1) / block
	outRows := (rows + block - 1) / block

	out := &heatmap.Grid{
		Size: heatmap.GridSize(max(outCols, outRows)),
		Mode: g.Mode,
		X:    make([]int, outCols),
		Y:    make([]int, outRows),
		Z:    make([][]float64, outRows),
	}
	for c := range out.X {
		out.X[c] = g.X[c*block]
	}
	for r := range out.Y {
		out.Y[r] = g.Y[r*block]
		row := make([]float64, outCols)
		for c := range row {
			var sum float64
			var n int
			for i := r * block; i < min((r+1)*block, rows); i++ {
				for j := c * block; j < min((c+1)*block, cols); j++ {
					sum += g.Z[i][j]
					n++
				}
			}
			row[c] = sum / float64(n)
		}
		out.Z[r] = row
	}
	return out
}
