// Package fileutil provides file copy and backup helpers used by commands
// that patch transcripts in place.
package fileutil

import (
	"io"
	"os"
)

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	return CopyFileMode(src, dst, 0o644)
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// BackupOnce copies path to path+suffix unless the backup already exists.
// The first backup wins so repeated patch runs never clobber the original.
func BackupOnce(path, suffix string) (string, bool, error) {
	backup := path + suffix
	if _, err := os.Stat(backup); err == nil {
		return backup, false, nil
	} else if !os.IsNotExist(err) {
		return "", false, err
	}
	if err := CopyFile(path, backup); err != nil {
		return "", false, err
	}
	return backup, true, nil
}
