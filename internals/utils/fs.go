package utils

import (
	"io"
	"os"
	"path/filepath"

	"github.com/dchest/uniuri"
	"github.com/pkg/errors"
)

// EnsureDir makes sure the directory exists. It is safe to call concurrently
// for the same path. It only returns nil if the directory exists afterwards
func EnsureDir(dir string) error {
	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return errors.Errorf("%s exists but is not a directory", dir)
		}
		return nil
	}

	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		// someone else might have created it in the meantime
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			return nil
		}
		return errors.Wrapf(err, "could not create directory %s", dir)
	}
	return nil
}

// TempSibling returns a unique temporary file name next to target
func TempSibling(target string) string {
	dir, name := filepath.Split(target)
	return filepath.Join(dir, "."+name+"."+uniuri.NewLen(10)+".tmp")
}

// WriteFileAtomic writes data to a temporary sibling and renames it into place.
// Readers never see a partially written file
func WriteFileAtomic(target string, data []byte) error {
	if err := EnsureDir(filepath.Dir(target)); err != nil {
		return err
	}

	tmp := TempSibling(target)
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// CopyFileAtomic copies src to dst using a temporary sibling file
func CopyFileAtomic(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}

	tmp := TempSibling(dst)
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
