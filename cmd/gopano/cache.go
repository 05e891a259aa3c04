package main

import (
	"fmt"

	"cogentcore.org/core/base/errors"
	"github.com/philipparndt/gopano/internal/imagecache"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the image cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the number of cached images",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cache, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer func() { errors.Log(cache.Close()) }()
		fmt.Fprintf(cmd.OutOrStdout(), "Cached images: %d\n", cache.Len())
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cache, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer func() { errors.Log(cache.Close()) }()
		n := cache.Len()
		if err := cache.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached image(s)\n", n)
		return nil
	},
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&flags.CacheDir, "cache-dir", "", "image cache directory")
	cacheCmd.AddCommand(cacheInfoCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openCache(cmd *cobra.Command) (*imagecache.Cache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return imagecache.Open(cmd.Context(), imagecache.Options{Dir: cfg.Cache.Dir})
}
