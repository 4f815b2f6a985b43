package minecraft

// AssetIndexRef points to an asset index document
type AssetIndexRef struct {
	ID        string `json:"id"`
	Sha1      string `json:"sha1"`
	Size      int64  `json:"size,omitempty"`
	TotalSize int64  `json:"totalSize,omitempty"`
	URL       string `json:"url"`
}

// AssetIndex is just a map containing AssetObjects
type AssetIndex struct {
	// Virtual indexes are used by old versions (pre 1.7) that expect
	// the assets as a plain file tree instead of hash addressed objects
	Virtual bool `json:"virtual,omitempty"`
	// MapToResources is set for very old versions (pre 1.6) that read their
	// assets from the "resources" directory inside the game directory
	MapToResources bool                   `json:"map_to_resources,omitempty"`
	Objects        map[string]AssetObject `json:"objects"`
}

// AssetObject is one minecraft asset
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// UnixPath returns the path including the folder
// example: fe/fe32f3b8…
func (a *AssetObject) UnixPath() string {
	if len(a.Hash) < 2 {
		return a.Hash
	}
	return a.Hash[:2] + "/" + a.Hash
}

// IsLegacy returns true if the index has to be materialized as a flat file tree
func (i *AssetIndex) IsLegacy() bool {
	return i.Virtual || i.MapToResources
}
