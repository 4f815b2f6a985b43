package patch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/minepkg/prelaunch/internals/minecraft"
)

// RemoveLibraries removes libraries by `group:artifact` key or by name prefix.
// Libraries with invalid names are only removed by prefix
type RemoveLibraries struct{}

type removeLibrariesArgs struct {
	Keys   []string `json:"keys,omitempty"`
	Prefix string   `json:"prefix,omitempty"`
}

func (r *RemoveLibraries) Apply(doc Document, with json.RawMessage) error {
	var args removeLibrariesArgs
	if err := json.Unmarshal(with, &args); err != nil {
		return fmt.Errorf("failed to unmarshal patcher arguments: %w", err)
	}
	if len(args.Keys) == 0 && args.Prefix == "" {
		return fmt.Errorf("keys and prefix are empty")
	}

	drop := make(map[string]bool, len(args.Keys))
	for _, k := range args.Keys {
		drop[k] = true
	}

	libs, err := doc.Libraries()
	if err != nil {
		return err
	}
	filtered := make([]json.RawMessage, 0, len(libs))
	for _, raw := range libs {
		var lib struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &lib); err != nil {
			return err
		}
		if args.Prefix != "" && strings.HasPrefix(lib.Name, args.Prefix) {
			continue
		}
		if c, err := minecraft.ParseCoordinate(lib.Name); err == nil && drop[c.Key()] {
			continue
		}
		filtered = append(filtered, raw)
	}
	return doc.SetLibraries(filtered)
}

// AddLibraries appends libraries to the document
type AddLibraries struct{}

type addLibrariesArgs struct {
	Libraries []json.RawMessage `json:"libraries"`
}

func (a *AddLibraries) Apply(doc Document, with json.RawMessage) error {
	var args addLibrariesArgs
	if err := json.Unmarshal(with, &args); err != nil {
		return fmt.Errorf("failed to unmarshal patcher arguments: %w", err)
	}
	for _, raw := range args.Libraries {
		var lib minecraft.Library
		if err := json.Unmarshal(raw, &lib); err != nil {
			return err
		}
		if lib.Name == "" {
			return fmt.Errorf("library without name")
		}
	}

	libs, err := doc.Libraries()
	if err != nil {
		return err
	}
	return doc.SetLibraries(append(libs, args.Libraries...))
}
