package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// WriteRuntime persists only the leaves carrying a runtime-layer
// override, via write → fsync → rename so a crash mid-write never
// corrupts runtime.toml.
func (l *Loader) WriteRuntime() error {
	doc := rawDoc{}
	for path, leaf := range l.Tree.leafPaths() {
		switch p := leaf.(type) {
		case *Property[string]:
			if p.HasRuntimeLayer() {
				setPath(doc, path, p.Get())
			}
		case *Property[int]:
			if p.HasRuntimeLayer() {
				setPath(doc, path, p.Get())
			}
		case *Property[bool]:
			if p.HasRuntimeLayer() {
				setPath(doc, path, p.Get())
			}
		case *Property[time.Duration]:
			if p.HasRuntimeLayer() {
				setPath(doc, path, p.Get().String())
			}
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("config: encode runtime.toml: %w", err)
	}
	return atomicWrite(l.Paths.RuntimeFile(), buf.Bytes())
}

// setPath assigns value at a dotted path within doc, creating
// intermediate tables as needed — the inverse of lookupPath.
func setPath(doc rawDoc, path string, value any) {
	parts := splitPath(path)
	cur := doc
	for i, part := range parts {
		if i == len(parts)-1 {
			cur[part] = value
			return
		}
		next, ok := cur[part].(rawDoc)
		if !ok {
			next = rawDoc{}
			cur[part] = next
		}
		cur = next
	}
}

func splitPath(path string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			parts = append(parts, path[start:i])
			start = i + 1
		}
	}
	parts = append(parts, path[start:])
	return parts
}

// atomicWrite implements write → fsync → rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".wayle-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
