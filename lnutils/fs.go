package lnutils

import (
	"errors"
	"fmt"
	"os"
)

// CreateDir creates dir and any missing parents with perm. A dangling symlink
// in place of dir is reported with its target, which usually means an
// unmounted volume.
func CreateDir(dir string, perm os.FileMode) error {
	err := os.MkdirAll(dir, perm)
	if err == nil {
		return nil
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) && os.IsExist(err) {
		if target, lerr := os.Readlink(pathErr.Path); lerr == nil {
			err = fmt.Errorf("%s is a symlink to missing %s: %w",
				pathErr.Path, target, err)
		}
	}

	return fmt.Errorf("create directory %s: %w", dir, err)
}
