package main

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/banshee-data/heatmap.report/internal/chart"
	"github.com/banshee-data/heatmap.report/internal/fsutil"
	"github.com/banshee-data/heatmap.report/internal/heatmap"
	"github.com/banshee-data/heatmap.report/internal/interaction"
	"github.com/banshee-data/heatmap.report/internal/presets"
	"github.com/banshee-data/heatmap.report/internal/security"
	"github.com/banshee-data/heatmap.report/internal/timeutil"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Generate one grid and write it as a PNG",
		Args:  cobra.NoArgs,
		RunE:  runRender,
	}
	cmd.Flags().String("size", "10", "Grid side length or point count ("+presets.ValidSizesString()+")")
	cmd.Flags().String("mode", presets.DefaultMode.String(), "Generation mode: sequential, random or noise")
	cmd.Flags().String("color", presets.DefaultColorScale, "Color scale ("+presets.GetValidColorScalesString()+")")
	cmd.Flags().String("downsampling", presets.DownsamplingLabel(presets.DefaultDownsampling), "On or Off")
	cmd.Flags().Uint64("seed", 0, "Seed for a reproducible grid (random when unset)")
	cmd.Flags().String("out", "", "Output PNG path (default derived from the selection)")
	return cmd
}

func defaultPNGName(size presets.Size, mode heatmap.Mode, color string) string {
	return security.SanitizeFilename(fmt.Sprintf("heatmap_%d_%s_%s", size.N, mode, color)) + ".png"
}

// writePNGFile renders grid to path, creating missing parent directories.
// Nothing is written when rendering fails.
func writePNGFile(fsys fsutil.FileSystem, path string, grid *heatmap.Grid, cfg chart.RenderConfig) error {
	var buf bytes.Buffer
	if err := chart.WritePNG(&buf, grid, cfg); err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := buf.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	sizeArg, _ := flags.GetString("size")
	modeArg, _ := flags.GetString("mode")
	colorArg, _ := flags.GetString("color")
	downArg, _ := flags.GetString("downsampling")
	out, _ := flags.GetString("out")

	size, err := presets.ParseSize(sizeArg)
	if err != nil {
		return err
	}
	mode, err := presets.ParseMode(modeArg)
	if err != nil {
		return err
	}
	color, err := presets.ParseColorScale(colorArg)
	if err != nil {
		return err
	}
	downsampling, err := presets.ParseDownsampling(downArg)
	if err != nil {
		return err
	}
	if out == "" {
		out = defaultPNGName(size, mode, color)
	}
	if err := security.ValidateExportPath(out); err != nil {
		return err
	}

	gen := heatmap.NewGenerator(nil)
	if flags.Changed("seed") {
		seed, _ := flags.GetUint64("seed")
		gen = heatmap.NewSeededGenerator(seed)
	} else if seed, ok := cfg.GetSeed(); ok {
		gen = heatmap.NewSeededGenerator(seed)
	}

	surface := interaction.NewSurface()
	surface.SetPointsLabel(size.Label())
	timer := interaction.NewTimer(timeutil.RealClock{}, surface)

	handle := timer.Start()
	grid, err := gen.Generate(size.N, mode)
	if err != nil {
		return err
	}
	if err := writePNGFile(fsutil.OSFileSystem{}, out, grid, chart.RenderConfig{ColorScale: color, Downsampling: downsampling}); err != nil {
		return err
	}
	readout, _ := handle.End()

	logger.Info("wrote png", "path", out, "size", int(size.N), "mode", mode.String(), "color", color)
	fmt.Fprintf(cmd.OutOrStdout(), "This component rendered %s data points in %s seconds!\n", size.Label(), readout.Text)
	return nil
}
