// Package file reads catalog snapshots from YAML files.
package file

import (
	"fmt"
	"io"
	"os"

	"github.com/dwikikusuma/foodstore/internal/catalog/domain"
	"gopkg.in/yaml.v3"
)

// Load reads a snapshot from path. It does not validate it.
func Load(path string) (domain.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("open catalog %q: %w", path, err)
	}
	defer f.Close()

	snap, err := Decode(f)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("catalog %q: %w", path, err)
	}
	return snap, nil
}

func Decode(r io.Reader) (domain.Snapshot, error) {
	var snap domain.Snapshot
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode yaml: %w", err)
	}
	return snap, nil
}
