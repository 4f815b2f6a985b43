package launcher

import (
	"errors"
	"time"

	"github.com/minepkg/prelaunch/internals/assets"
	"github.com/minepkg/prelaunch/internals/downloadmgr"
	"github.com/minepkg/prelaunch/internals/minecraft"
	"github.com/minepkg/prelaunch/internals/resolver"
)

// Request selects what to prepare
type Request struct {
	// Version is the minecraft version. "" or "latest" selects the latest release
	Version string
	// Loader is "fabric" or empty for vanilla
	Loader string
	// LoaderVersion "" or "latest" selects the newest stable loader
	LoaderVersion string
	SkipAssets    bool
}

// Failure reasons of artifacts
const (
	ReasonHashMismatch = "hash_mismatch"
	ReasonTimeout      = "timeout"
	ReasonNetwork      = "network"
	ReasonOther        = "other"
)

// FailedArtifact is a file that could not be downloaded
type FailedArtifact struct {
	Target string `json:"target"`
	Reason string `json:"reason"`
	Error  string `json:"error"`
}

// failureReason classifies a download error
func failureReason(err error) string {
	var netErr *downloadmgr.NetworkError
	switch {
	case downloadmgr.IsHashMismatch(err):
		return ReasonHashMismatch
	case errors.As(err, &netErr) && netErr.Timeout():
		return ReasonTimeout
	case netErr != nil:
		return ReasonNetwork
	}
	return ReasonOther
}

// AssetsSummary describes the state of the asset store after a run
type AssetsSummary struct {
	Index        string                    `json:"index"`
	Objects      int                       `json:"objects"`
	Valid        int                       `json:"valid"`
	Repaired     int                       `json:"repaired"`
	Materialized *assets.MaterializeReport `json:"materialized,omitempty"`
}

// Result is the outcome of Prepare. Missing artifacts are advisory, Success only
// requires the client jar and the libraries providing the main class
type Result struct {
	// Manifest is the merged descriptor used to compose the launch command
	Manifest *minecraft.LaunchManifest `json:"-"`
	// BaseID is the vanilla version, VersionID the merged (maybe loader) version
	BaseID    string `json:"baseId"`
	VersionID string `json:"versionId"`

	Conflicts        []resolver.Conflict `json:"conflicts"`
	Downloaded       int                 `json:"downloaded"`
	Failed           []FailedArtifact    `json:"failed"`
	MissingLibraries []string            `json:"missingLibraries"`
	MissingAssets    []string            `json:"missingAssets"`
	Assets           *AssetsSummary      `json:"assets,omitempty"`

	// RestoreErr is set if the descriptors could not be restored after the run
	RestoreErr error `json:"-"`
	Success    bool  `json:"success"`

	Duration time.Duration `json:"duration"`
}
