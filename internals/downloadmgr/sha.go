package downloadmgr

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
	"strings"
)

// FileSha1 returns the hex encoded sha1 of the file. The file is streamed, never loaded into memory
func FileSha1(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	hasher := sha1.New()
	// probably io error during hashing
	if _, err := io.Copy(hasher, src); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Sha1Matches returns true if the file exists and has the expected hash (case insensitive)
func Sha1Matches(path string, expected string) (bool, error) {
	actual, err := FileSha1(path)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(actual, expected), nil
}
