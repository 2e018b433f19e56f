package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/banshee-data/heatmap.report/internal/config"
	"github.com/banshee-data/heatmap.report/internal/demo"
	"github.com/banshee-data/heatmap.report/internal/heatmap"
	"github.com/banshee-data/heatmap.report/internal/metrics"
	"github.com/banshee-data/heatmap.report/internal/presets"
	"github.com/banshee-data/heatmap.report/internal/timeutil"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive heat map page",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("listen", ":8080", "Listen address")
	cmd.Flags().Uint64("seed", 0, "Seed for reproducible grids (random when unset)")
	cmd.Flags().String("assets-host", "", "Base URL serving echarts.min.js")
	return cmd
}

// serveSettings merges the config file with flags that were set explicitly.
type serveSettings struct {
	listen     string
	assetsHost string
	seed       uint64
	seeded     bool
}

func resolveServe(cmd *cobra.Command, cfg *config.Config) serveSettings {
	s := serveSettings{listen: cfg.GetListen(), assetsHost: cfg.GetAssetsHost()}
	s.seed, s.seeded = cfg.GetSeed()
	if cmd.Flags().Changed("listen") {
		s.listen, _ = cmd.Flags().GetString("listen")
	}
	if cmd.Flags().Changed("assets-host") {
		s.assetsHost, _ = cmd.Flags().GetString("assets-host")
	}
	if cmd.Flags().Changed("seed") {
		s.seed, _ = cmd.Flags().GetUint64("seed")
		s.seeded = true
	}
	return s
}

func initialSelection(cfg *config.Config) (demo.Selection, error) {
	size, ok := presets.SizeFor(cfg.GetSize())
	if !ok {
		return demo.Selection{}, fmt.Errorf("%w: size %d (valid: %s)", heatmap.ErrInvalidArgument, cfg.GetSize(), presets.ValidSizesString())
	}
	return demo.Selection{
		Size:         size,
		Mode:         cfg.GetMode(),
		ColorScale:   cfg.GetColorScale(),
		Downsampling: cfg.GetDownsampling(),
	}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	settings := resolveServe(cmd, cfg)
	initial, err := initialSelection(cfg)
	if err != nil {
		return err
	}

	gen := heatmap.NewGenerator(nil)
	if settings.seeded {
		gen = heatmap.NewSeededGenerator(settings.seed)
		logger.Info("using fixed seed", "seed", settings.seed)
	}

	rec := metrics.NewRecorder()
	shell, err := demo.NewShell(demo.ShellOptions{
		Logger:    logger,
		Clock:     timeutil.RealClock{},
		Metrics:   rec,
		Generator: gen,
		Initial:   initial,
	})
	if err != nil {
		return err
	}
	server := demo.NewServer(shell, rec, logger, settings.assetsHost)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return server.ListenAndServe(ctx, settings.listen, cfg.GetShutdownTimeout())
}
