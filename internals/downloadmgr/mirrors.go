package downloadmgr

import (
	"strings"

	"github.com/samber/lo"
)

var (
	// DefaultLibraryRepositories are tried (in order) for libraries without a full url
	DefaultLibraryRepositories = []string{
		"https://libraries.minecraft.net/",
		"https://maven.fabricmc.net/",
		"https://repo1.maven.org/maven2/",
	}
	// DefaultResourcesURL is the root of the asset object storage
	DefaultResourcesURL = "https://resources.download.minecraft.net/"
)

// MirrorURLs returns the ranked list of urls for a file: the primary url first, then `relPath`
// resolved against every repository root. Empty and duplicate entries are removed
func MirrorURLs(primary string, relPath string, roots ...string) []string {
	urls := []string{primary}
	if relPath != "" {
		relPath = strings.TrimPrefix(relPath, "/")
		for _, root := range roots {
			if root == "" {
				continue
			}
			urls = append(urls, strings.TrimSuffix(root, "/")+"/"+relPath)
		}
	}
	return lo.Uniq(lo.Filter(urls, func(u string, _ int) bool { return u != "" }))
}

// ObjectURL returns the url of an asset object hash at the given resources root
func ObjectURL(root string, hash string) string {
	if root == "" {
		root = DefaultResourcesURL
	}
	if len(hash) < 2 {
		return strings.TrimSuffix(root, "/") + "/" + hash
	}
	return strings.TrimSuffix(root, "/") + "/" + hash[:2] + "/" + hash
}
