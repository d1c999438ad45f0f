// Package assets copies files into the output tree and writes generated
// files atomically.
package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

// WriteFile replaces target with data via a temp file in the same directory,
// so a failed write never leaves a truncated target behind. Missing parent
// directories are created.
func WriteFile(target string, data []byte, perm fs.FileMode) error {
	return writeAtomic(target, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// CopyFile copies src to dst byte for byte, keeping the permission bits of
// src.
func CopyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // src comes from a walked source tree
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("source %s is not a regular file", src)
	}

	return writeAtomic(dst, info.Mode().Perm(), func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}

// CopyDir mirrors every regular file below src into dst and returns the
// number of files copied. Directories listed in skip are not descended into;
// dst is always skipped when it lies inside src.
func CopyDir(src, dst string, skip ...string) (int, error) {
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("directory %s does not exist: %w", src, err)
		}
		return 0, err
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("path %s is not a directory", src)
	}

	skipped := make(map[string]struct{}, len(skip)+1)
	for _, p := range append([]string{dst}, skip...) {
		if abs, err := filepath.Abs(p); err == nil {
			skipped[abs] = struct{}{}
		}
	}
	if abs, err := filepath.Abs(src); err == nil {
		src = abs
	}

	copied := 0
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			if _, ok := skipped[p]; ok {
				return filepath.SkipDir
			}
			return os.MkdirAll(target, dirMode)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := CopyFile(p, target); err != nil {
			return fmt.Errorf("copy %s: %w", rel, err)
		}
		copied++
		return nil
	})
	return copied, err
}

func writeAtomic(target string, perm fs.FileMode, fill func(io.Writer) error) error {
	if perm == 0 {
		perm = fileMode
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".mdsite-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	keep := false
	defer func() {
		if !keep {
			_ = os.Remove(tmpName)
		}
	}()

	if err := fill(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(target), err)
	}
	keep = true
	return nil
}
