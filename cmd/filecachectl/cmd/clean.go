package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javi11/filecache/cache"
	"github.com/javi11/filecache/internal/vfs"
)

func init() {
	cleanCmd := &cobra.Command{
		Use:   "clean <cache-name>",
		Short: "Force a full sweep, unlinking every permanent file in the named cache",
		Args:  cobra.ExactArgs(1),
		RunE:  runClean,
	}
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	cc, err := lookupCache(args[0])
	if err != nil {
		return err
	}

	c, err := cache.StartWithFS(cc.ToOptions(), vfs.OS(), nil)
	if err != nil {
		return err
	}
	defer c.Stop(context.Background())

	if err := c.Clean(); err != nil {
		return err
	}
	fmt.Printf("cache=%s cleaned\n", cc.Name)
	return nil
}
