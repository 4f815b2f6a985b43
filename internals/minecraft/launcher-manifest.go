package minecraft

import (
	"encoding/json"
	"strings"
)

// LaunchManifest is a version.json manifest that is used to launch minecraft instances
type LaunchManifest struct {
	ID string `json:"id"`
	// InheritsFrom is the id of the parent manifest (fabric profiles inherit from vanilla)
	InheritsFrom string `json:"inheritsFrom,omitempty"`
	// MinecraftArguments are used before 1.13
	MinecraftArguments string `json:"minecraftArguments,omitempty"`
	// Arguments is the new (complicated) system
	Arguments   Arguments `json:"arguments,omitempty"`
	Downloads   Downloads `json:"downloads,omitempty"`
	Libraries   Libraries `json:"libraries"`
	Type        string    `json:"type,omitempty"`
	MainClass   string    `json:"mainClass,omitempty"`
	Jar         string    `json:"jar,omitempty"`
	Assets      string    `json:"assets,omitempty"`
	ReleaseTime string    `json:"releaseTime,omitempty"`
	// AssetIndex references the asset index document
	AssetIndex  AssetIndexRef `json:"assetIndex,omitempty"`
	JavaVersion struct {
		Component    string `json:"component,omitempty"`
		MajorVersion int    `json:"majorVersion,omitempty"`
	} `json:"javaVersion,omitempty"`
}

// Arguments contains the jvm and game arguments
type Arguments struct {
	Game []Argument `json:"game,omitempty"`
	JVM  []Argument `json:"jvm,omitempty"`
}

// Downloads contains the client and server jars
type Downloads struct {
	Client *Artifact `json:"client,omitempty"`
	Server *Artifact `json:"server,omitempty"`
}

// Argument is a launch argument. It is either a plain string or
// a conditional argument with rules
type Argument struct {
	// Value is the actual argument
	Value stringSlice `json:"value"`
	Rules Rules       `json:"rules,omitempty"`
}

// UnmarshalJSON is needed because argument sometimes is a string
func (a *Argument) UnmarshalJSON(data []byte) error {
	if len(data) != 0 && data[0] == '{' {
		type plain Argument
		var arg plain
		if err := json.Unmarshal(data, &arg); err != nil {
			return err
		}
		*a = Argument(arg)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	a.Value = stringSlice{str}
	a.Rules = nil
	return nil
}

// MarshalJSON writes unconditional arguments as plain strings
func (a Argument) MarshalJSON() ([]byte, error) {
	if len(a.Rules) == 0 && len(a.Value) == 1 {
		return json.Marshal(a.Value[0])
	}
	type plain Argument
	return json.Marshal(plain(a))
}

// Values returns the argument values
func (a Argument) Values() []string {
	return []string(a.Value)
}

// NewArgument returns a plain argument
func NewArgument(value string) Argument {
	return Argument{Value: stringSlice{value}}
}

// MinecraftVersion returns the minecraft version this manifest is for
func (l *LaunchManifest) MinecraftVersion() string {
	if l.InheritsFrom != "" {
		return l.InheritsFrom
	}
	return l.ID
}

// MergeWith merges important properties with the parent manifest
// if they are not present in the current one.
// Libraries of the parent are appended, arguments of the parent come first.
func (l *LaunchManifest) MergeWith(parent *LaunchManifest) {
	l.Libraries = append(l.Libraries, parent.Libraries...)

	if l.MainClass == "" {
		l.MainClass = parent.MainClass
	}
	if l.Assets == "" {
		l.Assets = parent.Assets
	}
	if l.AssetIndex.ID == "" {
		l.AssetIndex = parent.AssetIndex
	}
	if l.Downloads.Client == nil {
		l.Downloads.Client = parent.Downloads.Client
	}
	if l.Downloads.Server == nil {
		l.Downloads.Server = parent.Downloads.Server
	}
	if l.Type == "" {
		l.Type = parent.Type
	}
	if l.MinecraftArguments == "" {
		l.MinecraftArguments = parent.MinecraftArguments
	}
	if l.JavaVersion.MajorVersion == 0 {
		l.JavaVersion = parent.JavaVersion
	}
	if l.Jar == "" {
		l.Jar = parent.Jar
	}

	l.Arguments.JVM = append(append([]Argument{}, parent.Arguments.JVM...), l.Arguments.JVM...)
	l.Arguments.Game = append(append([]Argument{}, parent.Arguments.Game...), l.Arguments.Game...)
}

// Clone returns a copy of this manifest that does not share any slices with the original
func (l *LaunchManifest) Clone() *LaunchManifest {
	c := *l
	c.Libraries = append(Libraries(nil), l.Libraries...)
	c.Arguments.Game = append([]Argument(nil), l.Arguments.Game...)
	c.Arguments.JVM = append([]Argument(nil), l.Arguments.JVM...)
	return &c
}

// Inherit returns a new merged manifest using parent as the base. l and parent are not modified
func (l *LaunchManifest) Inherit(parent *LaunchManifest) *LaunchManifest {
	merged := l.Clone()
	merged.MergeWith(parent)
	return merged
}

// LegacyArgs returns the old style minecraftArguments split into single arguments
func (l *LaunchManifest) LegacyArgs() []string {
	return strings.Fields(l.MinecraftArguments)
}
