package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/meysamhadeli/assetcore/asset"
	"github.com/meysamhadeli/assetcore/cache_store"
	"github.com/meysamhadeli/assetcore/config"
	"github.com/meysamhadeli/assetcore/constants/lipgloss"
	"github.com/meysamhadeli/assetcore/logging"
	"github.com/meysamhadeli/assetcore/pipeline"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootDependencies are built once per command invocation.
type RootDependencies struct {
	Cwd    string
	Config *config.Config
	Logger *zap.Logger
	Cache  *cache_store.Instrumented
}

var rootCmd = &cobra.Command{
	Use:   "assetcore",
	Short: "Transform, cache and inspect the assets of a project.",
	Long: `assetcore runs every file of a project through its transformer chain
(tree-sitter for source code, goldmark for markdown) and keeps each stage's
output in a content-addressed cache, so unchanged work is read back instead of redone.`,
	Run: func(cmd *cobra.Command, args []string) {
		if version, _ := cmd.Flags().GetBool("version"); version {
			rootDependencies := handleRootCommand(cmd)
			if rootDependencies == nil {
				return
			}
			defer rootDependencies.Close()
			fmt.Println(lipgloss.Info.Render("assetcore " + rootDependencies.Config.ToolVersion))
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	config.InitFlags(rootCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(err.Error()))
		os.Exit(1)
	}
}

// handleRootCommand loads the configuration and opens the logger and the
// cache store. Failures are printed and yield nil.
func handleRootCommand(cmd *cobra.Command) *RootDependencies {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error getting current directory: %v", err)))
		return nil
	}

	cfg, err := config.LoadConfigWithCache(cmd.Root(), cwd)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(err.Error()))
		return nil
	}

	logger, err := logging.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(err.Error()))
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cache, err := cache_store.Open(ctx, cfg.CacheOptions(), logger)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error opening cache: %v", err)))
		_ = logger.Sync()
		return nil
	}

	return &RootDependencies{
		Cwd:    cwd,
		Config: cfg,
		Logger: logger,
		Cache:  cache,
	}
}

// Options wires the asset collaborators for a build rooted at root.
func (d *RootDependencies) Options(root string) *asset.Options {
	return pipeline.NewOptions(afero.NewOsFs(), root, d.Config.ToolVersion, d.Cache, d.Logger)
}

// Runner returns a pipeline runner for root with the built-in transformers.
func (d *RootDependencies) Runner(root string) *pipeline.Runner {
	return pipeline.NewRunner(d.Options(root), pipeline.DefaultTransformers(), d.Config.Workers)
}

func (d *RootDependencies) Close() {
	if err := d.Cache.Close(); err != nil {
		d.Logger.Warn("failed to close cache", zap.Error(err))
	}
	_ = d.Logger.Sync()
}
