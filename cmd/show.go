package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/meysamhadeli/assetcore/constants/lipgloss"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Build one file and print its final output.",
	Long: `The 'show' command runs a single file through its transformer chain and prints every
resulting asset as read back from the cache, highlighted with the configured theme.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		plain, _ := cmd.Flags().GetBool("plain")
		handleShowCommand(cmd, args[0], plain)
	},
}

func init() {
	showCmd.Flags().Bool("plain", false, "Print without syntax highlighting")
	rootCmd.AddCommand(showCmd)
}

func handleShowCommand(cmd *cobra.Command, file string, plain bool) {
	rootDependencies := handleRootCommand(cmd)
	if rootDependencies == nil {
		return
	}
	defer rootDependencies.Close()

	path, err := filepath.Abs(file)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	ctx := context.Background()
	runner := rootDependencies.Runner(filepath.Dir(path))
	results, err := runner.BuildFile(ctx, path)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	for _, result := range results {
		header := fmt.Sprintf("%s  [%s, %d B]", result.FilePath, result.Type, result.Size)
		if len(result.Dependencies) > 0 {
			header += "\ndependencies: " + strings.Join(result.Dependencies, ", ")
		}
		fmt.Println(lipgloss.BoxStyle.Render(header))

		code, err := readOutput(ctx, rootDependencies, result.ContentKey)
		if err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
			return
		}

		if plain {
			fmt.Println(code)
			continue
		}
		if err := quick.Highlight(os.Stdout, code, result.Type, "terminal256", rootDependencies.Config.Theme); err != nil {
			fmt.Println(code)
		}
		fmt.Println()
	}
}

func readOutput(ctx context.Context, rootDependencies *RootDependencies, key string) (string, error) {
	reader, err := rootDependencies.Cache.GetStream(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to read output %s: %w", key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read output %s: %w", key, err)
	}
	return string(data), nil
}
