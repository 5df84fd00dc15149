package fileio

import (
	"os"
	"strings"

	"github.com/google/renameio/v2"
	cp "github.com/otiai10/copy"

	"github.com/rmera/ligpatch/internal/errors"
)

// Backup copies path to path+suffix, unless that file already exists, in
// which case it is kept: a backup always holds the content from before the
// first run. It returns the backup name and whether a copy was made.
func Backup(path, suffix string) (string, bool, error) {
	bname := path + suffix
	if _, err := os.Stat(bname); err == nil {
		return bname, false, nil
	}
	if err := CopyFile(path, bname); err != nil {
		return "", false, errors.IO(err, "backup failed").WithDetail(path)
	}
	return bname, true, nil
}

// copyOpts keeps permission bits and times, and copies symbolic links as
// links.
var copyOpts = cp.Options{
	OnSymlink:     func(string) cp.SymlinkAction { return cp.Shallow },
	PreserveTimes: true,
}

// CopyFile copies src to dst, keeping the permission bits and the
// modification time of src.
func CopyFile(src, dst string) error {
	return cp.Copy(src, dst, copyOpts)
}

// WriteLines replaces the content of name with lines. The data goes to a
// temporary file in the same directory which is then renamed over name, so
// a failed write leaves the old file in place. An existing file keeps its
// permission bits.
func WriteLines(name string, lines []string) error {
	err := renameio.WriteFile(name, []byte(strings.Join(lines, "")), 0o644, renameio.WithExistingPermissions())
	if err != nil {
		return errors.IO(err, "can't write file").WithDetail(name)
	}
	return nil
}

// CopyTree copies the directory src to dst. An existing dst is removed
// first. Symbolic links are recreated, not followed.
func CopyTree(src, dst string) error {
	if err := os.RemoveAll(dst); err != nil {
		return errors.IO(err, "can't clear output directory").WithDetail(dst)
	}
	if err := cp.Copy(src, dst, copyOpts); err != nil {
		return errors.IO(err, "can't copy directory").WithDetail(src + " -> " + dst)
	}
	return nil
}
