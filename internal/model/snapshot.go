package model

import (
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotPath returns the cache location of an activity's canonical binary
// snapshot: "<source-filename>.avro" under cacheDir.
func SnapshotPath(cacheDir, filename string) string {
	return filepath.Join(cacheDir, filename+".avro")
}

// WriteSnapshot marshals a and writes it under cacheDir via a temp file and
// rename, so a concurrent reader never sees a half-written snapshot.
func (a *Activity) WriteSnapshot(cacheDir string) error {
	data, err := a.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshaling snapshot for %s: %w", a.Filename, err)
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	dest := SnapshotPath(cacheDir, a.Filename)
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming snapshot into place: %w", err)
	}
	return nil
}

// ReadSnapshot loads an activity back from its canonical binary snapshot.
func ReadSnapshot(path string) (*Activity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	var a Activity
	if err := a.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", path, err)
	}
	return &a, nil
}
