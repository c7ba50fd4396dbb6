package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Equipment []EquipmentType `yaml:"equipment"`
}

// LoadFile reads a YAML catalog of the form `equipment: [...]`.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document and validates it.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	return New(file.Equipment)
}
