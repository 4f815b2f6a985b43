package manifests

import (
	"net/url"
	"strings"

	"github.com/samber/lo"
)

// Endpoint is a metadata host with an optional fallback host
type Endpoint struct {
	Primary  string `json:"primary" mapstructure:"primary"`
	Fallback string `json:"fallback" mapstructure:"fallback"`
}

var (
	// DefaultBase serves the vanilla version catalog and descriptors
	DefaultBase = Endpoint{
		Primary:  "https://piston-meta.mojang.com",
		Fallback: "https://launchermeta.mojang.com",
	}
	// DefaultOverlay serves the fabric loader catalog and profiles
	DefaultOverlay = Endpoint{
		Primary: "https://meta.fabricmc.net",
	}
)

func (e Endpoint) hosts() []string {
	return lo.Filter([]string{e.Primary, e.Fallback}, func(h string, _ int) bool { return h != "" })
}

// URLs returns the ranked urls for the given path
func (e Endpoint) URLs(path string) []string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return lo.Map(e.hosts(), func(h string, _ int) string {
		return strings.TrimSuffix(h, "/") + path
	})
}

// Rebase returns rawURL followed by rawURL moved to each host of this endpoint.
// Catalogs contain absolute descriptor urls, this lets them fall back to the mirror
func (e Endpoint) Rebase(rawURL string) []string {
	urls := []string{rawURL}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return urls
	}
	for _, h := range e.hosts() {
		host, err := url.Parse(h)
		if err != nil || host.Host == "" {
			continue
		}
		moved := *parsed
		moved.Scheme = host.Scheme
		moved.Host = host.Host
		urls = append(urls, moved.String())
	}
	return lo.Uniq(urls)
}
