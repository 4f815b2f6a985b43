package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/minepkg/prelaunch/internals/launcher"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

type reportFailure struct {
	Target string `json:"target" yaml:"target" toml:"target"`
	Reason string `json:"reason" yaml:"reason" toml:"reason"`
	Error  string `json:"error" yaml:"error" toml:"error"`
}

// runReport is the machine readable form of a result
type runReport struct {
	Base             string          `json:"base" yaml:"base" toml:"base"`
	Version          string          `json:"version" yaml:"version" toml:"version"`
	MainClass        string          `json:"mainClass" yaml:"mainClass" toml:"mainClass"`
	Success          bool            `json:"success" yaml:"success" toml:"success"`
	DurationMs       int64           `json:"durationMs" yaml:"durationMs" toml:"durationMs"`
	Downloaded       int             `json:"downloaded" yaml:"downloaded" toml:"downloaded"`
	Conflicts        []string        `json:"conflicts" yaml:"conflicts" toml:"conflicts"`
	MissingLibraries []string        `json:"missingLibraries" yaml:"missingLibraries" toml:"missingLibraries"`
	MissingAssets    []string        `json:"missingAssets" yaml:"missingAssets" toml:"missingAssets"`
	RestoreError     string          `json:"restoreError,omitempty" yaml:"restoreError,omitempty" toml:"restoreError,omitempty"`
	Failed           []reportFailure `json:"failed" yaml:"failed" toml:"failed"`
}

func newReport(result *launcher.Result) *runReport {
	r := &runReport{
		Base:             result.BaseID,
		Version:          result.VersionID,
		Success:          result.Success,
		DurationMs:       result.Duration.Milliseconds(),
		Downloaded:       result.Downloaded,
		Conflicts:        []string{},
		MissingLibraries: append([]string{}, result.MissingLibraries...),
		MissingAssets:    append([]string{}, result.MissingAssets...),
		Failed:           []reportFailure{},
	}
	if result.Manifest != nil {
		r.MainClass = result.Manifest.MainClass
	}
	for _, c := range result.Conflicts {
		r.Conflicts = append(r.Conflicts, c.String())
	}
	for _, f := range result.Failed {
		r.Failed = append(r.Failed, reportFailure{Target: f.Target, Reason: f.Reason, Error: f.Error})
	}
	if result.RestoreErr != nil {
		r.RestoreError = result.RestoreErr.Error()
	}
	return r
}

func reportEncoder(format string) (func(v interface{}) ([]byte, error), error) {
	switch format {
	case "json":
		return func(v interface{}) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }, nil
	case "yaml", "yml":
		return yaml.Marshal, nil
	case "toml":
		return toml.Marshal, nil
	}
	return nil, fmt.Errorf("unknown report format %q (use json, yaml or toml)", format)
}

func writeReport(w io.Writer, result *launcher.Result, format string) error {
	encode, err := reportEncoder(format)
	if err != nil {
		return err
	}
	data, err := encode(newReport(result))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
