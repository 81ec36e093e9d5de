package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tuff/internal/driver"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the verdict cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clean",
		Short: "Drop every cached verdict",
		Args:  cobra.NoArgs,
		RunE:  runCacheClean,
	})
	return cmd
}

func runCacheClean(cmd *cobra.Command, _ []string) error {
	_, m, baseDir, err := loadProject()
	if err != nil {
		return err
	}
	dir, err := cacheDirFor(m)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "cache directory not found")
		return nil
	}
	cache, err := driver.OpenDiskCache(dir)
	if err != nil {
		return err
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to clean cache: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", displayPath(baseDir, dir))
	return nil
}
