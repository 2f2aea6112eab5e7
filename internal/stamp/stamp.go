// Package stamp persists which pipeline stages have completed so re-runs
// can skip work that is already done. It replaces ad-hoc marker files with
// a single versioned record under the work tree.
package stamp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when the document format changes.
const schemaVersion uint16 = 1

type document struct {
	Schema uint16
	// Stages maps a stamp key to its completion time.
	Stages map[string]time.Time
}

// File is a loaded stamp file. Safe for concurrent use.
type File struct {
	mu   sync.Mutex
	path string
	doc  document
}

// Key builds a stamp key for a per-target stage.
func Key(gccVersion, target, stage string) string {
	return gccVersion + "/" + target + "/" + stage
}

// TargetPrefix is the key prefix covering every stage of one target.
func TargetPrefix(gccVersion, target string) string {
	return gccVersion + "/" + target + "/"
}

// Load reads the stamp file at path. A missing file yields an empty record;
// a record with a different schema is discarded rather than misread.
func Load(path string) (*File, error) {
	f := &File{path: path, doc: document{Schema: schemaVersion, Stages: map[string]time.Time{}}}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stamp: read %s: %w", path, err)
	}
	var doc document
	if err := msgpack.Unmarshal(data, &doc); err != nil || doc.Schema != schemaVersion {
		return f, nil
	}
	if doc.Stages == nil {
		doc.Stages = map[string]time.Time{}
	}
	f.doc = doc
	return f, nil
}

// Done reports whether key has been marked complete.
func (f *File) Done(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.doc.Stages[key]
	return ok
}

// Mark records key as complete and persists the file.
func (f *File) Mark(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doc.Stages[key] = time.Now().UTC()
	return f.save()
}

// Clear removes every key with the given prefix and persists the file.
// Used when a target's transient state is purged.
func (f *File) Clear(prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.doc.Stages {
		if strings.HasPrefix(k, prefix) {
			delete(f.doc.Stages, k)
		}
	}
	return f.save()
}

// Keys returns all recorded keys, sorted.
func (f *File) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.doc.Stages))
	for k := range f.doc.Stages {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (f *File) save() error {
	data, err := msgpack.Marshal(f.doc)
	if err != nil {
		return fmt.Errorf("stamp: encode: %w", err)
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "stamp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
