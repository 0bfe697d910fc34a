package layout

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileLayout is the on-disk YAML form of a layout.
//
//	name: compact
//	keys_per_row: 11
//	rows:
//	  - [q, w, e, r, t, y, u, i, o, p, "*bs"]
type fileLayout struct {
	Name       string     `yaml:"name"`
	KeysPerRow int        `yaml:"keys_per_row"`
	Rows       [][]string `yaml:"rows"`
}

// Parse decodes a YAML layout document.
func Parse(data []byte) (*Geometry, error) {
	var fl fileLayout
	if err := yaml.Unmarshal(data, &fl); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	if fl.Name == "" {
		fl.Name = "custom"
	}
	rows := make([]Row, len(fl.Rows))
	for i, r := range fl.Rows {
		row := make(Row, len(r))
		for j, tok := range r {
			row[j] = Token(tok)
		}
		rows[i] = row
	}
	return New(fl.Name, fl.KeysPerRow, rows)
}

// Load reads a YAML layout file.
func Load(path string) (*Geometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout file: %w", err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("layout file %s: %w", path, err)
	}
	return g, nil
}

// Resolve returns the layout from file when path is set, else the named
// built-in layout.
func Resolve(name, path string) (*Geometry, error) {
	if path != "" {
		return Load(path)
	}
	return Builtin(name)
}
