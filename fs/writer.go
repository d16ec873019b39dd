// Package fs provides file-based record writers for the text and JSON formats.
package fs

import (
	"os"
	"path/filepath"

	"github.com/fwojciec/harvest"
)

// Path returns the file a recipe's records are written to: dir/name.ext.
func Path(dir, name string, format harvest.Format) string {
	return filepath.Join(dir, name+"."+string(format))
}

// WriteFileAtomic replaces path with data. The data is written to a temporary
// file in the same directory which is then renamed over path, so readers see
// either the old or the new content, never a partial write.
func WriteFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
