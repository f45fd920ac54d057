package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"dario.cat/mergo"

	"github.com/pozitronik/wayle/pkg/service"
)

// rawDoc is a parsed TOML file prior to being applied against Tree's
// typed leaves.
type rawDoc = map[string]any

// loadWithImports implements the loader's import-cycle detection and
// deep-right merge: main overrides all imports, accumulated-imports are
// merged in declaration order before main is layered on top.
func loadWithImports(path string) (rawDoc, error) {
	return loadChain(path, nil)
}

func loadChain(path string, chain []string) (rawDoc, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// File may not exist yet on a fresh install; treat as empty.
		if os.IsNotExist(err) {
			return rawDoc{}, nil
		}
		resolved = abs
	}

	for _, seen := range chain {
		if seen == resolved {
			full := append(append([]string{}, chain...), resolved)
			return nil, service.New("config", service.KindCircularImport, "loadChain",
				fmt.Errorf("import chain %s", strings.Join(full, " -> ")))
		}
	}
	chain = append(chain, resolved)

	var doc rawDoc
	if _, err := toml.DecodeFile(resolved, &doc); err != nil {
		if os.IsNotExist(err) {
			return rawDoc{}, nil
		}
		return nil, service.New("config", service.KindConfigDeserialization, "parse "+resolved, err)
	}

	imports, _ := doc["imports"].([]any)
	merged := rawDoc{}
	dir := filepath.Dir(resolved)
	for _, imp := range imports {
		rel, ok := imp.(string)
		if !ok {
			continue
		}
		if filepath.Ext(rel) == "" {
			rel += ".toml"
		}
		importPath := rel
		if !filepath.IsAbs(importPath) {
			importPath = filepath.Join(dir, rel)
		}
		importedDoc, err := loadChain(importPath, chain)
		if err != nil {
			return nil, err
		}
		if err := mergeDocs(&merged, importedDoc); err != nil {
			return nil, err
		}
	}

	delete(doc, "imports")
	if err := mergeDocs(&merged, doc); err != nil {
		return nil, err
	}
	return merged, nil
}

// mergeDocs deep-merges src into dst: table keys merge recursively,
// arrays and primitives overlay-wins (src wins over dst).
func mergeDocs(dst *rawDoc, src rawDoc) error {
	return mergo.Merge(dst, src, mergo.WithOverride)
}
