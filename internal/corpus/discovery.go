package corpus

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// stateDir is never scanned.
const stateDir = ".docq"

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery finds library units with include globs and ignore rules.
type Discovery struct {
	rootDir        string
	includes       []compiledPattern
	ignorePatterns []compiledPattern
}

// NewDiscovery compiles the patterns, which match slash-separated paths
// relative to rootDir.
func NewDiscovery(rootDir string, include, ignore []string) (*Discovery, error) {
	d := &Discovery{rootDir: rootDir}

	var err error
	if d.includes, err = compileAll(include); err != nil {
		return nil, err
	}
	if d.ignorePatterns, err = compileAll(ignore); err != nil {
		return nil, err
	}
	return d, nil
}

func compileAll(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		out = append(out, compiledPattern{pattern: pattern, glob: g})
	}
	return out, nil
}

// Root returns the directory being scanned.
func (d *Discovery) Root() string {
	return d.rootDir
}

// Discover walks the tree and returns the relative paths of matching
// files in sorted order.
func (d *Discovery) Discover() ([]string, error) {
	var files []string
	err := filepath.WalkDir(d.rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if entry.IsDir() {
			if relPath != "." && d.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Matches(relPath) {
			files = append(files, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover units in %s: %w", d.rootDir, err)
	}

	slices.Sort(files)
	return files, nil
}

// Matches reports whether a relative path is a unit to process.
func (d *Discovery) Matches(relPath string) bool {
	return !d.shouldIgnore(relPath) && matchesAnyPattern(relPath, d.includes)
}

// shouldIgnore checks if a path matches any ignore pattern.
func (d *Discovery) shouldIgnore(relPath string) bool {
	if relPath == stateDir || strings.HasPrefix(relPath, stateDir+"/") {
		return true
	}
	if matchesAnyPattern(relPath, d.ignorePatterns) {
		return true
	}

	// a directory "_build" is ignored by the pattern "_build/**"
	return matchesAnyPattern(relPath+"/**", d.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// "**/*.v" also matches "Top.v" at the root
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if !strings.HasPrefix(cp.pattern, "**/") {
				continue
			}
			simplified, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/')
			if err == nil && simplified.Match(path) {
				return true
			}
		}
	}
	return false
}
