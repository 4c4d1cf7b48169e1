// Package fileutil copies files through an afero filesystem, optionally
// verifying the copy with a SHA-256 checksum.
package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// ErrVerifyMismatch is returned when a copied file does not hash like its source.
var ErrVerifyMismatch = errors.New("copy verification failed")

// CopyFile streams src to dst, truncating dst and giving it src's permission bits.
func CopyFile(fsys afero.Fs, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return err
	}
	return copyStream(fsys, src, dst, info.Mode().Perm())
}

// CopyFileVerified copies src to dst, then re-reads both and compares their
// SHA-256 sums. dst is removed on mismatch.
func CopyFileVerified(fsys afero.Fs, src, dst string) error {
	if err := CopyFile(fsys, src, dst); err != nil {
		return err
	}
	same, err := SameContent(fsys, src, dst)
	if err != nil {
		return err
	}
	if !same {
		_ = fsys.Remove(dst)
		return fmt.Errorf("%w: %s -> %s", ErrVerifyMismatch, src, dst)
	}
	return nil
}

// Checksum returns the hex SHA-256 of a file.
func Checksum(fsys afero.Fs, path string) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SameContent reports whether two files hash identically.
func SameContent(fsys afero.Fs, a, b string) (bool, error) {
	left, err := Checksum(fsys, a)
	if err != nil {
		return false, err
	}
	right, err := Checksum(fsys, b)
	if err != nil {
		return false, err
	}
	return left == right, nil
}

func copyStream(fsys afero.Fs, src, dst string, mode os.FileMode) error {
	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fsys.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
