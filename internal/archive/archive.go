// Package archive emits the final per-target tarball. Emission is
// all-or-nothing: the archive is produced at a temporary path and renamed
// into place only after it is fully written, so a failed packaging step
// never leaves a corrupt file in the dist directory.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"fortio.org/safecast"
)

// topLevel are the only directories allowed into the archive.
var topLevel = []string{"lib", "include"}

// Create packages stage into a gzip tarball at dest, with every entry
// prefixed by root (the synthetic top-level directory). The staging tree
// must contain lib/ and include/ and nothing else at the top level.
func Create(stage, root, dest string) (err error) {
	if err := checkTopLevel(stage); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	partial := dest + ".partial"
	f, err := os.Create(partial)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(partial)
		}
	}()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	// Fixed timestamps keep archives reproducible for identical inputs.
	stamp := time.Unix(0, 0).UTC()
	if err = writeDirHeader(tw, root+"/", stamp); err != nil {
		return err
	}
	for _, top := range topLevel {
		dir := filepath.Join(stage, top)
		if _, statErr := os.Stat(dir); statErr != nil {
			return fmt.Errorf("archive: missing %s tree in staging dir: %w", top, statErr)
		}
		if err = addTree(tw, dir, root+"/"+top, stamp); err != nil {
			return err
		}
	}

	if err = tw.Close(); err != nil {
		return err
	}
	if err = gz.Close(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(partial, dest)
}

// checkTopLevel rejects staging trees with anything besides lib/ and
// include/ at the top, which would mean normalization went wrong.
func checkTopLevel(stage string) error {
	entries, err := os.ReadDir(stage)
	if err != nil {
		return err
	}
	for _, e := range entries {
		ok := false
		for _, top := range topLevel {
			if e.Name() == top && e.IsDir() {
				ok = true
			}
		}
		if !ok {
			return fmt.Errorf("archive: unexpected entry %q in staging tree", e.Name())
		}
	}
	return nil
}

func addTree(tw *tar.Writer, dir, prefix string, stamp time.Time) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := prefix
		if rel != "." {
			name = prefix + "/" + filepath.ToSlash(rel)
		}
		if d.IsDir() {
			return writeDirHeader(tw, name+"/", stamp)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("archive: %s is not a regular file", path)
		}
		mode, err := safecast.Conv[int64](uint32(info.Mode().Perm()))
		if err != nil {
			return err
		}
		if err := tw.WriteHeader(&tar.Header{
			Name:    name,
			Mode:    mode,
			Size:    info.Size(),
			ModTime: stamp,
		}); err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		if _, err := io.Copy(tw, in); err != nil {
			return err
		}
		return nil
	})
}

func writeDirHeader(tw *tar.Writer, name string, stamp time.Time) error {
	return tw.WriteHeader(&tar.Header{
		Name:     name,
		Typeflag: tar.TypeDir,
		Mode:     0o755,
		ModTime:  stamp,
	})
}
