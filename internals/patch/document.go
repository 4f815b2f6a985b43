package patch

import (
	"encoding/json"
	"os"
)

// Document is a descriptor kept as raw json. Only fields touched by an operation are re-encoded,
// everything else is written back as it was read
type Document map[string]json.RawMessage

// ReadDocument parses the json object at path
func ReadDocument(path string) (Document, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := Document{}
	if err := json.Unmarshal(buf, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Libraries returns the raw library entries of the document
func (d Document) Libraries() ([]json.RawMessage, error) {
	raw, ok := d["libraries"]
	if !ok {
		return []json.RawMessage{}, nil
	}
	libs := []json.RawMessage{}
	if err := json.Unmarshal(raw, &libs); err != nil {
		return nil, err
	}
	return libs, nil
}

// SetLibraries replaces the libraries of the document
func (d Document) SetLibraries(libs []json.RawMessage) error {
	raw, err := json.Marshal(libs)
	if err != nil {
		return err
	}
	d["libraries"] = raw
	return nil
}

// Marshal encodes the document with indentation
func (d Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
