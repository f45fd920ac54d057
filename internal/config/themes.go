package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Theme is a parsed themes/*.toml file, kept as a raw table since its
// schema is owned by the (out-of-scope) CSS/SCSS pipeline; wayle only
// needs to load, name, and hot-reload it.
type Theme struct {
	Name   string
	Values map[string]any
}

// LoadThemes reads every *.toml file directly under ThemesDir into a
// name-keyed map. A missing themes directory yields an empty map, not
// an error — themes are optional.
func (p Paths) LoadThemes() (map[string]Theme, error) {
	entries, err := os.ReadDir(p.ThemesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Theme{}, nil
		}
		return nil, err
	}

	themes := make(map[string]Theme, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".toml")
		var values map[string]any
		if _, err := toml.DecodeFile(filepath.Join(p.ThemesDir(), entry.Name()), &values); err != nil {
			return nil, err
		}
		themes[name] = Theme{Name: name, Values: values}
	}
	return themes, nil
}
