package assets

import (
	"os"

	"github.com/minepkg/prelaunch/internals/downloadmgr"
)

// Reason explains why a file is not valid
type Reason string

const (
	ReasonNotFound     Reason = "not_found"
	ReasonHashMismatch Reason = "hash_mismatch"
	ReasonIOError      Reason = "io_error"
)

// VerifyResult is the outcome of Verify
type VerifyResult struct {
	Valid  bool
	Reason Reason
	// Err is only set for ReasonIOError
	Err error
}

// Verify checks that the file at path has the given sha1 (case insensitive).
// The file is streamed, never read into memory at once
func Verify(path string, hash string) VerifyResult {
	ok, err := downloadmgr.Sha1Matches(path, hash)
	switch {
	case os.IsNotExist(err):
		return VerifyResult{Reason: ReasonNotFound}
	case err != nil:
		return VerifyResult{Reason: ReasonIOError, Err: err}
	case !ok:
		return VerifyResult{Reason: ReasonHashMismatch}
	}
	return VerifyResult{Valid: true}
}
