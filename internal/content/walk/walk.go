// Package walk enumerates the source files of a content directory.
package walk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// EntryType identifies how the builder treats a source file.
type EntryType string

// Entry type constants.
const (
	EntryMarkdown EntryType = "markdown"
	EntryAsset    EntryType = "asset"
)

// Entry is one regular file found below the content root.
type Entry struct {
	// AbsPath is the absolute filesystem path.
	AbsPath string
	// RelativePath is slash-separated and relative to the content root.
	RelativePath string
	Type         EntryType
	Size         int64
}

// Options control which files are returned. The zero value returns every
// regular file below the root, dot-files included.
type Options struct {
	// ExcludeDirs lists directory names to skip (case-insensitive).
	ExcludeDirs []string
	// SkipPaths lists absolute directories to skip, such as an output root
	// nested inside the content root.
	SkipPaths []string
	// SkipHidden drops dot-files and dot-directories.
	SkipHidden bool
}

// Files walks root and returns every regular file in lexical path order.
// Symlinks and other special files are skipped.
func Files(ctx context.Context, root string, opts Options) ([]Entry, error) {
	if root == "" {
		return nil, errors.New("root directory must be provided")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", absRoot)
	}

	w := newWalker(opts)
	var entries []Entry
	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == absRoot {
			return nil
		}
		if d.IsDir() {
			if w.skipDir(p, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if opts.SkipHidden && isHidden(d.Name()) {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat file %s: %w", p, err)
		}
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", p, err)
		}
		entry := Entry{
			AbsPath:      p,
			RelativePath: filepath.ToSlash(rel),
			Type:         EntryAsset,
			Size:         fi.Size(),
		}
		if IsMarkdown(d.Name()) {
			entry.Type = EntryMarkdown
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RelativePath < entries[j].RelativePath
	})
	return entries, nil
}

type walker struct {
	exclude map[string]struct{}
	skip    []string
	opts    Options
}

func newWalker(opts Options) *walker {
	exclude := make(map[string]struct{})
	for _, name := range opts.ExcludeDirs {
		if name = strings.TrimSpace(name); name != "" {
			exclude[strings.ToLower(name)] = struct{}{}
		}
	}
	skip := make([]string, 0, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		if abs, err := filepath.Abs(p); err == nil {
			skip = append(skip, filepath.Clean(abs))
		}
	}
	return &walker{exclude: exclude, skip: skip, opts: opts}
}

func (w *walker) skipDir(abs, name string) bool {
	if w.opts.SkipHidden && isHidden(name) {
		return true
	}
	if _, ok := w.exclude[strings.ToLower(name)]; ok {
		return true
	}
	for _, s := range w.skip {
		if abs == s {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// IsMarkdown reports whether a file name has a markdown extension.
func IsMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}

// OutputPath maps a slash-separated markdown source path to its .html output
// path.
func OutputPath(rel string) string {
	ext := filepath.Ext(rel)
	return strings.TrimSuffix(rel, ext) + ".html"
}
