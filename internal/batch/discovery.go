// Package batch expands command-line arguments into the list of PDF files to
// process.
package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultInclude matches PDF files regardless of the extension's case.
var DefaultInclude = []string{"*.pdf", "*.PDF"}

// Discovery controls how directories are expanded.
type Discovery struct {
	Recursive bool
	Include   []string
	Exclude   []string
}

// DiscoverPDFs expands args into files. Plain file arguments are kept unless
// they match an exclude pattern; directories contribute the files matching the
// include patterns (DefaultInclude when empty), descending into subdirectories
// only when Recursive is set. The result is sorted per directory and
// duplicates are dropped.
func (d Discovery) DiscoverPDFs(args []string) ([]string, error) {
	include := d.Include
	if len(include) == 0 {
		include = DefaultInclude
	}

	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if !info.IsDir() {
			if !matchesAnyPattern(arg, d.Exclude) {
				add(arg)
			}
			continue
		}

		found, err := discoverInDirectory(arg, d.Recursive, include, d.Exclude)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}

	return files, nil
}

// discoverInDirectory lists matching files below dir in lexical order.
func discoverInDirectory(dir string, recursive bool, include, exclude []string) ([]string, error) {
	var files []string

	walkFn := func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		if shouldIncludeFile(path, include, exclude) {
			files = append(files, path)
		}
		return nil
	}

	if err := filepath.WalkDir(dir, walkFn); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	slices.Sort(files)
	return files, nil
}

// shouldIncludeFile determines if a file should be included based on include/exclude patterns.
func shouldIncludeFile(path string, include, exclude []string) bool {
	if matchesAnyPattern(path, exclude) {
		return false
	}
	return matchesAnyPattern(path, include)
}

// matchesAnyPattern checks the file's base name against patterns.
func matchesAnyPattern(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(strings.TrimSpace(pattern), base); matched {
			return true
		}
	}
	return false
}
