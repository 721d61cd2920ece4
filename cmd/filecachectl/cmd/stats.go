package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javi11/filecache/cache"
	"github.com/javi11/filecache/internal/config"
	"github.com/javi11/filecache/internal/vfs"
)

func init() {
	statsCmd := &cobra.Command{
		Use:   "stats <cache-name>",
		Short: "Print one named cache's current/in_progress file counts",
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cc, err := lookupCache(args[0])
	if err != nil {
		return err
	}

	c, err := cache.StartWithFS(cc.ToOptions(), vfs.OS(), nil)
	if err != nil {
		return err
	}
	defer c.Stop(context.Background())

	stats, err := c.Stats()
	if err != nil {
		return err
	}
	fmt.Printf("cache=%s current=%d in_progress=%d\n", cc.Name, stats.Current, stats.InProgress)
	return nil
}

func lookupCache(name string) (config.CacheConfig, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return config.CacheConfig{}, err
	}
	for _, cc := range cfg.Caches {
		if cc.Name == name {
			return cc, nil
		}
	}
	return config.CacheConfig{}, fmt.Errorf("filecachectl: no cache named %q in %s", name, configFile)
}
