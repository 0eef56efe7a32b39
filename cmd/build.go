package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/meysamhadeli/assetcore/cache_store"
	"github.com/meysamhadeli/assetcore/constants/lipgloss"
	"github.com/meysamhadeli/assetcore/pipeline"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// watchDebounce collapses bursts of file events into one rebuild.
const watchDebounce = 300 * time.Millisecond

var buildCmd = &cobra.Command{
	Use:   "build [dir]",
	Short: "Run every file of a project through its transformer chain.",
	Long: `The 'build' command walks the project (default: the working directory), transforms every
file that is not ignored and commits the output of each stage to the cache. With --watch the
project is rebuilt whenever a file below it changes.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		watch, _ := cmd.Flags().GetBool("watch")
		verbose, _ := cmd.Flags().GetBool("verbose")
		handleBuildCommand(cmd, args, watch, verbose)
	},
}

func init() {
	buildCmd.Flags().BoolP("watch", "w", false, "Rebuild when files change")
	buildCmd.Flags().Bool("verbose", false, "List every built asset")
	rootCmd.AddCommand(buildCmd)
}

func handleBuildCommand(cmd *cobra.Command, args []string, watch bool, verbose bool) {
	rootDependencies := handleRootCommand(cmd)
	if rootDependencies == nil {
		return
	}
	defer rootDependencies.Close()

	root := rootDependencies.Cwd
	if len(args) == 1 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner := rootDependencies.Runner(root)
	runBuild(ctx, rootDependencies, runner, root, verbose)
	if !watch {
		return
	}

	if err := watchProject(ctx, rootDependencies.Logger, root, func() {
		pipeline.ClearIgnoreCache()
		runBuild(ctx, rootDependencies, rootDependencies.Runner(root), root, verbose)
	}); err != nil && ctx.Err() == nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Watch failed: %v", err)))
	}
}

func runBuild(ctx context.Context, rootDependencies *RootDependencies, runner *pipeline.Runner, root string, verbose bool) {
	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).WithRemoveWhenDone(true)
	spinnerInstance, _ := spinner.Start("Building project...")

	rootDependencies.Cache.ResetStats()
	start := time.Now()
	results, err := runner.Run(ctx, root)

	_ = spinnerInstance.Stop()
	fmt.Print("\r")

	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Build failed: %v", err)))
		return
	}

	var total int64
	for _, result := range results {
		total += result.Size
	}

	if verbose {
		data := pterm.TableData{{"File", "Type", "Size", "Time", "Dependencies"}}
		for _, result := range results {
			relative, err := filepath.Rel(root, result.FilePath)
			if err != nil {
				relative = result.FilePath
			}
			data = append(data, []string{
				relative,
				result.Type,
				fmt.Sprintf("%d B", result.Size),
				result.Duration.Round(time.Microsecond).String(),
				fmt.Sprintf("%d", len(result.Dependencies)),
			})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}

	if store, ok := rootDependencies.Cache.Unwrap().(*cache_store.FileStore); ok {
		if report, err := store.SmartCleanup(cache_store.DefaultCleanupOptions); err != nil {
			rootDependencies.Logger.Warn("cache cleanup failed", zap.Error(err))
		} else if report.Deleted > 0 {
			rootDependencies.Logger.Info("cache cleaned up", zap.Int("deleted", report.Deleted))
		}
	}

	stats := rootDependencies.Cache.Stats()
	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✓ Built %d assets (%.2f KB) in %s", len(results), float64(total)/1024, time.Since(start).Round(time.Millisecond))))
	fmt.Println(lipgloss.Faint.Render(fmt.Sprintf("  cache: %d reads, %.1f%% hits, %d writes", stats.CacheHits+stats.CacheMisses, stats.HitRate(), stats.Writes)))
	fmt.Println(lipgloss.Faint.Render("  build: " + runner.BuildID()))
}

// watchProject calls rebuild after files below root change, until ctx is
// done. fsnotify does not recurse, so every directory is added and new
// directories are added as they appear.
func watchProject(ctx context.Context, logger *zap.Logger, root string, rebuild func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	addTree := func(dir string) error {
		return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !entry.IsDir() {
				return nil
			}
			if relative, _ := filepath.Rel(root, path); relative != "." && pipeline.IsDefaultIgnored(filepath.ToSlash(relative)) {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		})
	}
	if err := addTree(root); err != nil {
		return err
	}
	fmt.Println(lipgloss.Info.Render(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", root)))

	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			relative, err := filepath.Rel(root, event.Name)
			if err != nil || pipeline.IsDefaultIgnored(filepath.ToSlash(relative)) {
				continue
			}
			if event.Has(fsnotify.Create) {
				_ = addTree(event.Name)
			}
			logger.Debug("file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))

		case <-timer.C:
			rebuild()
		}
	}
}
