// Package layout normalizes the staging tree produced by the library
// installs. Each normalization is a named shape predicate paired with an
// action; shapes that are absent are skipped, never errors, because the
// directory layout depends on the host/target combination.
package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Shape pairs a filesystem-shape predicate with its normalization action.
type Shape struct {
	Name      string
	Present   func(stage string) (bool, error)
	Normalize func(stage string) error
}

// Shapes returns the normalizations for a staging tree, in application
// order, for the given target triplet and GCC version.
func Shapes(target, gccVersion string) []Shape {
	return []Shape{
		{
			// Installs nest everything under an extra target-named
			// directory only when host and target triplets differ.
			Name:      "target-nested directory",
			Present:   func(stage string) (bool, error) { return isDir(filepath.Join(stage, target)) },
			Normalize: func(stage string) error { return collapseSubdir(stage, target) },
		},
		{
			// Some targets split 64-bit libraries into lib64.
			Name:      "lib64 directory",
			Present:   func(stage string) (bool, error) { return isDir(filepath.Join(stage, "lib64")) },
			Normalize: mergeLib64,
		},
		{
			// Headers land under include/c++/<version>; consumers should
			// not need to know the exact compiler version.
			Name: "versioned include directory",
			Present: func(stage string) (bool, error) {
				return isDir(filepath.Join(stage, "include", "c++", gccVersion))
			},
			Normalize: func(stage string) error { return flattenInclude(stage, gccVersion) },
		},
	}
}

// Normalize applies every applicable shape to the staging tree.
func Normalize(stage, target, gccVersion string) error {
	for _, s := range Shapes(target, gccVersion) {
		ok, err := s.Present(stage)
		if err != nil {
			return fmt.Errorf("layout: checking %s: %w", s.Name, err)
		}
		if !ok {
			continue
		}
		if err := s.Normalize(stage); err != nil {
			return fmt.Errorf("layout: normalizing %s: %w", s.Name, err)
		}
	}
	return nil
}

func isDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// collapseSubdir lifts the contents of stage/<name> into stage and removes
// the now-empty directory.
func collapseSubdir(stage, name string) error {
	src := filepath.Join(stage, name)
	if err := mergeDir(src, stage); err != nil {
		return err
	}
	return os.Remove(src)
}

// mergeLib64 folds lib64 into lib, creating lib when missing. Exactly one
// library directory remains afterwards.
func mergeLib64(stage string) error {
	lib := filepath.Join(stage, "lib")
	if err := os.MkdirAll(lib, 0o755); err != nil {
		return err
	}
	src := filepath.Join(stage, "lib64")
	if err := mergeDir(src, lib); err != nil {
		return err
	}
	return os.Remove(src)
}

// flattenInclude collapses include/c++/<version> into include and drops the
// emptied c++ directory.
func flattenInclude(stage, version string) error {
	include := filepath.Join(stage, "include")
	versioned := filepath.Join(include, "c++", version)
	if err := mergeDir(versioned, include); err != nil {
		return err
	}
	if err := os.Remove(versioned); err != nil {
		return err
	}
	// include/c++ may hold more than the version directory; leave it alone
	// unless it is now empty.
	return removeIfEmpty(filepath.Join(include, "c++"))
}

func removeIfEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		return nil
	}
	return os.Remove(dir)
}

// mergeDir moves every entry of src into dst, merging directories that
// already exist on both sides.
func mergeDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		from := filepath.Join(src, e.Name())
		to := filepath.Join(dst, e.Name())
		info, err := os.Stat(to)
		switch {
		case errors.Is(err, os.ErrNotExist):
			if err := os.Rename(from, to); err != nil {
				return err
			}
		case err != nil:
			return err
		case info.IsDir() && e.IsDir():
			if err := mergeDir(from, to); err != nil {
				return err
			}
			if err := os.Remove(from); err != nil {
				return err
			}
		default:
			return fmt.Errorf("cannot merge %s over existing %s", from, to)
		}
	}
	return nil
}
