package main

import (
	"net/http"

	"github.com/minepkg/prelaunch/cmd"
	"github.com/minepkg/prelaunch/internals/ownhttp"
)

// set by goreleaser
var (
	version string
	commit  string
)

func main() {
	// replace default http client
	http.DefaultClient = ownhttp.New()

	if version != "" {
		cmd.Version = version
		ownhttp.UserAgent = "prelaunch/" + version + " (https://github.com/minepkg/prelaunch)"
	}
	cmd.Commit = commit
	cmd.Execute()
}
