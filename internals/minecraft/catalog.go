package minecraft

var (
	// TypeSnapshot is a snapshot release
	TypeSnapshot = "snapshot"
	// TypeRelease is a full "normal" release
	TypeRelease = "release"
	// TypeOldBeta is a "old_beta" release
	TypeOldBeta = "old_beta"
	// TypeOldAlpha is a "old_alpha" release
	TypeOldAlpha = "old_alpha"
)

// Release is a released minecraft version
type Release struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Time        string `json:"time"`
	ReleaseTime string `json:"releaseTime"`
	Sha1        string `json:"sha1,omitempty"`
}

// VersionCatalog is the response from the "launchermeta" mojang api
type VersionCatalog struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []Release `json:"versions"`
}

// Find returns the release with the given id
func (c *VersionCatalog) Find(id string) (*Release, bool) {
	if id == "latest" {
		id = c.Latest.Release
	}
	for i := range c.Versions {
		if c.Versions[i].ID == id {
			return &c.Versions[i], true
		}
	}
	return nil, false
}

// LoaderVersion is one fabric loader version
type LoaderVersion struct {
	Separator string `json:"separator"`
	Build     int    `json:"build"`
	Maven     string `json:"maven"`
	Version   string `json:"version"`
	Stable    bool   `json:"stable"`
}

// LoaderEntry is one entry of the loader list for a minecraft version
type LoaderEntry struct {
	Loader       LoaderVersion `json:"loader"`
	Intermediary struct {
		Maven   string `json:"maven"`
		Version string `json:"version"`
		Stable  bool   `json:"stable"`
	} `json:"intermediary"`
}
