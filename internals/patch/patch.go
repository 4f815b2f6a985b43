// Package patch applies changes to descriptor files on disk and restores the
// original files afterwards
package patch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// Patch is a list of operations applied to one descriptor file
type Patch struct {
	// Name is the name of the patch
	Name string `json:"name"`
	// Description is a description of the patch
	Description string `json:"description"`

	// For is the id of the descriptor the patch is for. Empty means the base descriptor
	For string `json:"for"`
	// Patches is the list of patches
	Patches []Operation `json:"patches"`
}

// Operation is one action of a patch
type Operation struct {
	// Action is the action to perform
	Action string `json:"action"`
	// With are the arguments for the action
	With json.RawMessage `json:"with"`
}

// Operator changes a raw descriptor document
type Operator interface {
	// Apply applies the operation to the document
	Apply(doc Document, with json.RawMessage) error
}

var (
	Operations = map[string]Operator{
		"removeLibraries": &RemoveLibraries{},
		"addLibraries":    &AddLibraries{},
	}
)

// RemoveLibrariesPatch returns a patch removing the libraries with the given `group:artifact` keys
func RemoveLibrariesPatch(keys []string) *Patch {
	with, _ := json.Marshal(removeLibrariesArgs{Keys: keys})
	return &Patch{
		Name:    "resolve-conflicts",
		Patches: []Operation{{Action: "removeLibraries", With: with}},
	}
}

// ApplyTo applies all operations to the document
func (p *Patch) ApplyTo(doc Document) error {
	for _, operation := range p.Patches {
		operator := Operations[operation.Action]
		if operator == nil {
			return fmt.Errorf("unknown patcher %q", operation.Action)
		}
		if err := operator.Apply(doc, operation.With); err != nil {
			return fmt.Errorf("%s: %w", operation.Action, err)
		}
	}
	return nil
}

// FetchPatch fetches a patch from the given location (can be a URL or a local path)
func FetchPatch(ctx context.Context, client *http.Client, location string) (*Patch, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return FetchPatchFromURL(ctx, client, location)
	}

	return FetchPatchFromFile(location)
}

// FetchPatchFromURL fetches a patch from a URL
func FetchPatchFromURL(ctx context.Context, client *http.Client, url string) (*Patch, error) {
	if client == nil {
		client = http.DefaultClient
	}
	request, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	response, err := client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != 200 {
		return nil, fmt.Errorf("failed to fetch patch: %s", response.Status)
	}

	var patch Patch
	if err := json.NewDecoder(response.Body).Decode(&patch); err != nil {
		return nil, err
	}

	return &patch, nil
}

// FetchPatchFromFile reads a patch from a local file
func FetchPatchFromFile(path string) (*Patch, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var patch Patch
	if err := json.NewDecoder(file).Decode(&patch); err != nil {
		return nil, err
	}

	return &patch, nil
}
