package minecraft

import (
	"errors"
	"path"
	"strings"
)

// ErrInvalidCoordinate is returned for library names that do not have
// at least a group, artifact and version segment
var ErrInvalidCoordinate = errors.New("invalid library coordinate")

// Coordinate is a maven style library identifier
// like `net.fabricmc:fabric-loader:0.14.21` or `org.lwjgl:lwjgl:3.3.1:natives-linux`
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
	// Extension defaults to "jar" and can be changed with a `@ext` suffix
	Extension string
}

// ParseCoordinate parses a `group:artifact:version[:classifier][@extension]` string
func ParseCoordinate(name string) (Coordinate, error) {
	ext := "jar"
	if i := strings.LastIndex(name, "@"); i >= 0 {
		ext = name[i+1:]
		name = name[:i]
	}

	parts := strings.Split(name, ":")
	if len(parts) < 3 {
		return Coordinate{}, ErrInvalidCoordinate
	}
	for _, p := range parts[:3] {
		if p == "" {
			return Coordinate{}, ErrInvalidCoordinate
		}
	}

	c := Coordinate{
		Group:     parts[0],
		Artifact:  parts[1],
		Version:   parts[2],
		Extension: ext,
	}
	if len(parts) > 3 {
		c.Classifier = parts[3]
	}
	return c, nil
}

// Key identifies a library independent of its version (`group:artifact`)
func (c Coordinate) Key() string {
	return c.Group + ":" + c.Artifact
}

// String returns the coordinate in its `group:artifact:version[:classifier]` form
func (c Coordinate) String() string {
	s := c.Group + ":" + c.Artifact + ":" + c.Version
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	if c.Extension != "" && c.Extension != "jar" {
		s += "@" + c.Extension
	}
	return s
}

// WithClassifier returns a copy of this coordinate using the given classifier
func (c Coordinate) WithClassifier(classifier string) Coordinate {
	c.Classifier = classifier
	return c
}

// Path returns the slash separated repository path of this coordinate
// example: net/fabricmc/fabric-loader/0.14.21/fabric-loader-0.14.21.jar
func (c Coordinate) Path() string {
	file := c.Artifact + "-" + c.Version
	if c.Classifier != "" {
		file += "-" + c.Classifier
	}
	ext := c.Extension
	if ext == "" {
		ext = "jar"
	}
	file += "." + ext

	groupPath := strings.ReplaceAll(c.Group, ".", "/")
	return path.Join(groupPath, c.Artifact, c.Version, file)
}
