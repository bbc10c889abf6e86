package walk

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	cgbi "github.com/928799934/cgbi-png-fix"
)

// writeFile writes s to dst through a temporary file in dst's directory, which is renamed over
// dst only once everything is on disk. dst never holds a partial stream.
func writeFile(dst string, s cgbi.Stream, idat *cgbi.Chunk) (retErr error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &cgbi.WriteError{Err: errors.Wrapf(err, "create directory %q", dir)}
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(dst)+"-*")
	if err != nil {
		return &cgbi.WriteError{Err: errors.Wrapf(err, "create temporary file in %q", dir)}
	}
	defer func() {
		if retErr == nil {
			return
		}
		f.Close()
		os.Remove(f.Name())
	}()
	if err := cgbi.WriteStream(f, s, idat); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return &cgbi.WriteError{Err: errors.Wrapf(err, "sync %q", f.Name())}
	}
	if err := f.Chmod(0o644); err != nil {
		return &cgbi.WriteError{Err: errors.Wrapf(err, "chmod %q", f.Name())}
	}
	if err := f.Close(); err != nil {
		return &cgbi.WriteError{Err: errors.Wrapf(err, "close %q", f.Name())}
	}
	if err := os.Rename(f.Name(), dst); err != nil {
		return &cgbi.WriteError{Err: errors.Wrapf(err, "rename to %q", dst)}
	}
	return nil
}
