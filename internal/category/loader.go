package category

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// file is the on-disk layout of a categories override.
type file struct {
	Categories []Config `yaml:"categories"`
}

// Parse decodes a YAML category document. Unknown keys are rejected so a
// typo doesn't silently drop a field.
func Parse(data []byte) ([]Config, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	if err := Validate(f.Categories); err != nil {
		return nil, err
	}
	return f.Categories, nil
}

// LoadFile reads and parses the YAML file at path.
func LoadFile(path string) ([]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	return Parse(data)
}
