package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// IgnoreFile holds extra ignore patterns, one per line, at the project root.
const IgnoreFile = ".assetcore-ignore"

// ignoreCacheEntry holds cached ignore patterns with metadata
type ignoreCacheEntry struct {
	patterns []string
	modTime  time.Time
}

// Global cache for ignore patterns
var (
	ignoreCache = make(map[string]*ignoreCacheEntry)
	cacheMutex  sync.RWMutex
)

var defaultIgnorePatterns = []string{
	"assetcore-config.yml",
	"assetcore-config.yaml",
	"assetcore-config.json",
	IgnoreFile,
	".git",
	".svn",
	".idea",
	".vscode",
	".cache",
	"node_modules",
	"dist",
	"*.log",
	"*.tmp",
	"*.bak",
}

// GetIgnorePatterns reads the patterns from the ignore file under root.
// A missing file yields no patterns. Parsed files are cached by
// modification time.
func GetIgnorePatterns(fs afero.Fs, root string) ([]string, error) {
	ignorePath := filepath.Join(root, IgnoreFile)

	fileInfo, err := fs.Stat(ignorePath)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("error checking %s: %w", IgnoreFile, err)
	}

	cacheMutex.RLock()
	if cached, exists := ignoreCache[ignorePath]; exists && fileInfo.ModTime().Equal(cached.modTime) {
		cacheMutex.RUnlock()
		return cached.patterns, nil
	}
	cacheMutex.RUnlock()

	content, err := afero.ReadFile(fs, ignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFile, err)
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}

	cacheMutex.Lock()
	ignoreCache[ignorePath] = &ignoreCacheEntry{patterns: patterns, modTime: fileInfo.ModTime()}
	cacheMutex.Unlock()

	return patterns, nil
}

// ClearIgnoreCache drops all cached ignore files.
func ClearIgnoreCache() {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	ignoreCache = make(map[string]*ignoreCacheEntry)
}

// IsDefaultIgnored reports whether any segment of the slash separated
// relative path matches a built-in pattern.
func IsDefaultIgnored(relativePath string) bool {
	for _, part := range strings.Split(relativePath, "/") {
		part = strings.ToLower(part)
		for _, pattern := range defaultIgnorePatterns {
			if suffix, ok := strings.CutPrefix(pattern, "*"); ok {
				if strings.HasSuffix(part, suffix) {
					return true
				}
				continue
			}
			if part == pattern {
				return true
			}
		}
	}
	return false
}

// IsIgnored checks a slash separated relative path against patterns.
// A pattern ending in "/" ignores everything below that directory.
func IsIgnored(relativePath string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.HasSuffix(pattern, "/") {
			if strings.HasPrefix(relativePath+"/", pattern) {
				return true
			}
			continue
		}
		if match, _ := filepath.Match(pattern, relativePath); match {
			return true
		}
		if match, _ := filepath.Match(pattern, filepath.Base(relativePath)); match {
			return true
		}
	}
	return false
}
