package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"dailystart-tray/pkg/config"
	"dailystart-tray/pkg/launcher"
	"dailystart-tray/pkg/logger"
)

// Version information (set by GoReleaser during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	app := &cli.Command{
		Name:    "dailystart-tray",
		Usage:   "Run the DailyStart dev server from the system tray",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to optional YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the log level (debug, info, warn, error)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			configPath := cmd.String("config")

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if level := cmd.String("log-level"); level != "" {
				cfg.Logging.Level = level
			}

			log := logger.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

			log.Info("Starting DailyStart tray launcher",
				"version", version,
				"commit", commit,
				"built", date)

			log.Info("Configuration loaded",
				"config_file", configPath,
				"app_root", cfg.App.Root,
				"port", cfg.Server.Port,
				"log_file", cfg.Server.LogFile)

			exe, err := os.Executable()
			if err != nil {
				log.Warn("Failed to locate launcher executable", "error", err)
			} else {
				log = log.With("launcher", filepath.Base(exe))
			}

			app := launcher.New(cfg, launcher.DefaultDependencies(cfg, log), log)
			if err := app.Run(ctx); err != nil {
				return err
			}

			log.Info("Shutdown complete")
			return nil
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
