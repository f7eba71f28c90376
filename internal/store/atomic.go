package store

import (
	"os"
	"path/filepath"
	"strings"

	"notas/internal/logger"
)

// rename is swapped out by tests to simulate a crash between writing the
// temporary file and moving it into place.
var rename = os.Rename

const tempMarker = ".tmp-"

// WriteFileAtomic replaces path with data so that readers observe either the
// old content or the new content, never a mix: the bytes go to a temporary
// file in the same directory, are synced, and the file is renamed over path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+tempMarker+"*")
	if err != nil {
		return &IOError{Op: "create temp", Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	cleanupTmp := true
	defer func() {
		if cleanupTmp {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return &IOError{Op: "write", Path: tmpPath, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &IOError{Op: "sync", Path: tmpPath, Err: err}
	}
	if err := tmp.Chmod(perm); err != nil {
		return &IOError{Op: "chmod", Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: "close", Path: tmpPath, Err: err}
	}

	if err := rename(tmpPath, path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	cleanupTmp = false

	if err := syncDir(dir); err != nil {
		// The rename already happened; the new content is in place.
		log := logger.WithComponent("store")
		log.Debug().Err(err).Str("dir", dir).Msg("Directory sync failed after rename")
	}

	return nil
}

// syncDir flushes a directory entry so the rename survives power loss.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

// removeStaleTemps deletes temporary files left behind by an interrupted write.
func removeStaleTemps(path string) []string {
	pattern := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+tempMarker+"*")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil
	}

	var removed []string
	for _, m := range matches {
		if !strings.Contains(filepath.Base(m), tempMarker) {
			continue
		}
		if err := os.Remove(m); err == nil {
			removed = append(removed, m)
		}
	}
	return removed
}
