package archive

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Rule names a class of files that is useless for static linking and must
// not reach the output archive.
type Rule struct {
	Name  string
	Match func(rel string, d fs.DirEntry) bool
}

// StripRules lists everything deleted from the staging tree before
// packaging.
var StripRules = []Rule{
	{
		Name: "libtool archives",
		Match: func(rel string, d fs.DirEntry) bool {
			return !d.IsDir() && strings.HasSuffix(rel, ".la")
		},
	},
	{
		Name: "debugger pretty-printers",
		Match: func(rel string, d fs.DirEntry) bool {
			if d.IsDir() {
				return filepath.Base(rel) == "python"
			}
			return strings.HasSuffix(rel, "-gdb.py")
		},
	},
	{
		Name: "shared objects",
		Match: func(rel string, d fs.DirEntry) bool {
			if d.IsDir() {
				return false
			}
			base := filepath.Base(rel)
			return strings.HasSuffix(base, ".so") || strings.Contains(base, ".so.")
		},
	},
	{
		// Startup/shutdown objects are supplied by the consumer's libc.
		Name: "CRT objects",
		Match: func(rel string, d fs.DirEntry) bool {
			base := filepath.Base(rel)
			return !d.IsDir() && strings.HasPrefix(base, "crt") && strings.HasSuffix(base, ".o")
		},
	},
	{
		Name: "coverage archives",
		Match: func(rel string, d fs.DirEntry) bool {
			return !d.IsDir() && filepath.Base(rel) == "libgcov.a"
		},
	},
	{
		// DESTDIR installs drop documentation trees next to lib/.
		Name: "documentation trees",
		Match: func(rel string, d fs.DirEntry) bool {
			if !d.IsDir() {
				return false
			}
			switch rel {
			case "share", "info", "man":
				return true
			}
			return false
		},
	},
}

// Strip removes every file matching a strip rule from the staging tree,
// then prunes directories left empty.
func Strip(stage string) error {
	var doomed []string
	err := filepath.WalkDir(stage, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == stage {
			return nil
		}
		rel, err := filepath.Rel(stage, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, rule := range StripRules {
			if rule.Match(rel, d) {
				doomed = append(doomed, path)
				if d.IsDir() {
					return filepath.SkipDir
				}
				break
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, path := range doomed {
		if err := os.RemoveAll(path); err != nil {
			return err
		}
	}
	return pruneEmptyDirs(stage)
}

// pruneEmptyDirs removes directories under root that no longer contain any
// files. root itself is kept.
func pruneEmptyDirs(root string) error {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	// Deepest first so parents empty out as children are removed.
	for i := len(dirs) - 1; i >= 0; i-- {
		entries, err := os.ReadDir(dirs[i])
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			if err := os.Remove(dirs[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
