// Package cli provides command-line interface handlers for the comunicado application.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/olafkfreund/comunicado-sub004/internal/adapter/presenter"
)

// cacheCmd represents the AI response cache command group.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the AI response cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Show cache statistics",
	Aliases: []string{"status"},
	RunE:    runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every TTL-expired entry from the cache",
	RunE:  runCacheClear,
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate <pattern>",
	Short: "Invalidate entries whose key contains pattern, or \"*\" for all",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheInvalidate,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	d, err := GetDependencies()
	if err != nil {
		return err
	}
	stats := d.Cache.Stats()
	p := presenter.New(formatFlag)
	cmd.Println(p.RenderCacheStats(&stats))
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	d, err := GetDependencies()
	if err != nil {
		return err
	}
	removed := d.Cache.CleanupExpired()
	p := presenter.New(formatFlag)
	cmd.Println(p.RenderSuccess(fmt.Sprintf("removed %d expired entries", removed)))
	return nil
}

func runCacheInvalidate(cmd *cobra.Command, args []string) error {
	d, err := GetDependencies()
	if err != nil {
		return err
	}
	removed := d.Cache.InvalidatePattern(args[0])
	p := presenter.New(formatFlag)
	cmd.Println(p.RenderSuccess(fmt.Sprintf("invalidated %d entries matching %q", removed, args[0])))
	return nil
}
