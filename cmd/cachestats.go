package cmd

import (
	"fmt"
	"time"

	"github.com/meysamhadeli/assetcore/cache_store"
	"github.com/meysamhadeli/assetcore/constants/lipgloss"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var cacheStatsCmd = &cobra.Command{
	Use:   "cache-stats",
	Short: "Show cache statistics and optionally clean up old entries.",
	Long: `The 'cache-stats' command prints the size and age of the file cache. With --cleanup it removes
entries older than --max-age and then the oldest entries until the cache fits --max-size and --max-files.`,
	Run: func(cmd *cobra.Command, args []string) {
		cleanup, _ := cmd.Flags().GetBool("cleanup")
		options := cache_store.DefaultCleanupOptions
		options.DryRun, _ = cmd.Flags().GetBool("dry-run")
		options.MaxAge, _ = cmd.Flags().GetDuration("max-age")
		maxSizeMB, _ := cmd.Flags().GetInt64("max-size")
		options.MaxSize = maxSizeMB * 1024 * 1024
		options.MaxFiles, _ = cmd.Flags().GetInt("max-files")

		handleCacheStatsCommand(cmd, cleanup, options)
	},
}

func init() {
	defaults := cache_store.DefaultCleanupOptions
	cacheStatsCmd.Flags().Bool("cleanup", false, "Remove old entries after showing statistics")
	cacheStatsCmd.Flags().Bool("dry-run", false, "Report what --cleanup would remove without removing it")
	cacheStatsCmd.Flags().Duration("max-age", defaults.MaxAge, "Entries older than this are removed by --cleanup")
	cacheStatsCmd.Flags().Int64("max-size", defaults.MaxSize/(1024*1024), "Maximum cache size in MB kept by --cleanup")
	cacheStatsCmd.Flags().Int("max-files", defaults.MaxFiles, "Maximum number of entries kept by --cleanup")

	rootCmd.AddCommand(cacheStatsCmd)
}

func handleCacheStatsCommand(cmd *cobra.Command, cleanup bool, options cache_store.CleanupOptions) {
	rootDependencies := handleRootCommand(cmd)
	if rootDependencies == nil {
		return
	}
	defer rootDependencies.Close()

	store, ok := rootDependencies.Cache.Unwrap().(*cache_store.FileStore)
	if !ok {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Statistics are only available for the '%s' backend.", cache_store.BackendFS)))
		return
	}

	stats, err := store.Stats()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error reading cache statistics: %v", err)))
		return
	}

	fmt.Println(lipgloss.Info.Render("Cache Statistics:"))
	data := pterm.TableData{
		{"Directory", stats.Dir},
		{"Entries", fmt.Sprintf("%d", stats.Entries)},
		{"Total Size", fmt.Sprintf("%.2f MB", float64(stats.TotalSize)/(1024*1024))},
		{"Compression", stats.Compression.String()},
	}
	if stats.Entries > 0 {
		data = append(data,
			[]string{"Oldest", stats.Oldest.Format(time.DateTime)},
			[]string{"Newest", stats.Newest.Format(time.DateTime)})
	}
	_ = pterm.DefaultTable.WithData(data).Render()

	if !cleanup {
		return
	}

	report, err := store.SmartCleanup(options)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error cleaning up cache: %v", err)))
		return
	}

	verb := "Removed"
	if report.DryRun {
		verb = "Would remove"
	}
	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✓ %s %d of %d entries (%.2f MB): %d by age, %d by size, %d by count",
		verb, report.Marked, report.EntriesBefore, float64(report.MarkedSize)/(1024*1024),
		report.DeletedByAge, report.DeletedBySize, report.DeletedByCount)))
}
