package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/javi11/filecache/cache"
	"github.com/javi11/filecache/internal/config"
	"github.com/javi11/filecache/internal/logging"
	"github.com/javi11/filecache/internal/vfs"
)

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start every named cache in the config file and run its cleaners",
		Long:  `Start every named cache in the config file, running its Stale and Temp Cleaners until interrupted.`,
		RunE:  runServe,
	}
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		slog.Default().Error("failed to load config", "err", err)
		return err
	}

	handler := logging.NewHandler(&logging.Config{LogPath: cfg.Log.File})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	var caches []*cache.Cache
	for _, cc := range cfg.Caches {
		c, err := cache.StartWithFS(cc.ToOptions(), vfs.OS(), logger)
		if err != nil {
			logger.Error("failed to start cache", "cache", cc.Name, "err", err)
			return err
		}
		logger.Info("cache started", "cache", cc.Name, "dir", cc.Dir)
		caches = append(caches, c)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	for _, c := range caches {
		if err := c.Stop(context.Background()); err != nil {
			logger.Error("failed to stop cache", "cache", c.Name(), "err", err)
		}
	}
	return nil
}
