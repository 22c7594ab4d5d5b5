package series

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
)

// Load decodes a JSON array of graphs and validates each one
func Load(r io.Reader) ([]*Series, error) {
	var graphs []*Series
	if err := json.NewDecoder(r).Decode(&graphs); err != nil {
		return nil, fmt.Errorf("unable to decode graphs, %w", err)
	}
	for i, g := range graphs {
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("graph %d, %w", i, err)
		}
	}
	return graphs, nil
}

// LoadFile reads a JSON array of graphs from path
func LoadFile(path string) ([]*Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	graphs, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("%s, %w", path, err)
	}
	return graphs, nil
}
