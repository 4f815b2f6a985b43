package manifests

import "errors"

var (
	// ErrMetadataUnavailable is returned when no endpoint could deliver a document
	ErrMetadataUnavailable = errors.New("metadata unavailable")
	// ErrVersionNotFound is returned when the requested version is not part of the catalog
	ErrVersionNotFound = errors.New("version not found")
	// ErrInheritanceCycle is returned when `inheritsFrom` references form a loop
	ErrInheritanceCycle = errors.New("descriptor inheritance cycle")
	// ErrRequestTimeout is returned when a single request exceeded Loader.Timeout
	ErrRequestTimeout = errors.New("request timed out")
)
