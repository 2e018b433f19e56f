package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/banshee-data/heatmap.report/internal/config"
	"github.com/banshee-data/heatmap.report/internal/monitoring"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "heatmap",
		Short:         "Heat map rendering demo",
		Long:          `heatmap generates square grids of values and renders them as interactive heat maps or PNG images, timing each render.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Path to a JSON or YAML config file")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides config)")

	root.AddCommand(newServeCmd(), newRenderCmd(), newVersionCmd())
	return root
}

// loadConfig reads --config, or returns an empty config when it is unset.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return &config.Config{}, nil
	}
	return config.Load(path)
}

// newLogger builds the process logger and routes package-level Logf calls to it.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	levelName := cfg.GetLogLevel()
	if cmd.Flags().Changed("log-level") {
		levelName, _ = cmd.Flags().GetString("log-level")
	}
	level, err := monitoring.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	logger := monitoring.NewWithWriter(cmd.ErrOrStderr(), level)
	slog.SetDefault(logger)
	monitoring.Bridge(logger)
	return logger, nil
}
