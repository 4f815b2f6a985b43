package utils

import (
	"encoding/json"
	"os"
)

// ReadJSONFile parses the given file into i
func ReadJSONFile(filename string, i interface{}) error {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, i)
}

// FileExists returns true if something exists at the given path
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
