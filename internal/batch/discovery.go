// Package batch expands command-line arguments into the model files of a
// multi-model run.
package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultIncludePatterns matches every model encoding the loader understands.
var DefaultIncludePatterns = []string{"*.txt", "*.yaml", "*.yml", "*.json"}

// DiscoveryOptions controls how directories are expanded.
type DiscoveryOptions struct {
	Recursive       bool
	IncludePatterns []string // base-name globs; empty includes everything
	ExcludePatterns []string // base-name globs checked before includes
}

// DiscoverModelFiles returns the model files named by args. Files are kept
// when they pass the patterns; directories are expanded in lexical order,
// descending into subdirectories only when opts.Recursive is set.
func DiscoverModelFiles(args []string, opts DiscoveryOptions) ([]string, error) {
	var modelFiles []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			files, err := discoverInDirectory(arg, opts)
			if err != nil {
				return nil, err
			}
			modelFiles = append(modelFiles, files...)
		} else if shouldIncludeFile(arg, opts.IncludePatterns, opts.ExcludePatterns) {
			modelFiles = append(modelFiles, arg)
		}
	}

	return modelFiles, nil
}

func discoverInDirectory(dir string, opts DiscoveryOptions) ([]string, error) {
	var files []string

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if !opts.Recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		if shouldIncludeFile(path, opts.IncludePatterns, opts.ExcludePatterns) {
			files = append(files, path)
		}
		return nil
	}

	if err := filepath.WalkDir(dir, walkFn); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	return files, nil
}

// shouldIncludeFile applies exclude patterns first, then include patterns.
func shouldIncludeFile(path string, includePatterns, excludePatterns []string) bool {
	if matchesAnyPattern(path, excludePatterns) {
		return false
	}
	if len(includePatterns) == 0 {
		return true
	}
	return matchesAnyPattern(path, includePatterns)
}

func matchesAnyPattern(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
