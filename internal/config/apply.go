package config

import (
	"strings"
	"time"

	"github.com/pozitronik/wayle/internal/log"
	"github.com/pozitronik/wayle/pkg/service"
)

// layerKind selects which Property layer a parsed document is applied
// to.
type layerKind int

const (
	layerConfig layerKind = iota
	layerRuntime
)

// applyLayer walks doc by dotted path and assigns each matching leaf in
// tree's leafPaths, coercing TOML's decoded Go types (string, int64,
// float64, bool) to the leaf's type.
func applyLayer(tree *Tree, doc rawDoc, layer layerKind) {
	for path, leaf := range tree.leafPaths() {
		value, ok := lookupPath(doc, path)
		if !ok {
			continue
		}
		switch p := leaf.(type) {
		case *Property[string]:
			if s, ok := value.(string); ok {
				resolved, present := Resolve(s)
				if !present {
					// A "$NAME" leaf whose variable is unset in both the
					// process environment and any .env file: this is a
					// misconfigured field, not a parse failure, so it's
					// logged and the leaf keeps its previous layer rather
					// than being set to "".
					log.WithComponent("config").Warn().
						Err(service.New("config", service.KindInvalidConfigField, "resolve "+path, nil)).
						Str("path", path).Msg("secret reference could not be resolved")
					continue
				}
				setLayer(p, resolved, layer)
			}
		case *Property[int]:
			switch n := value.(type) {
			case int64:
				setLayer(p, int(n), layer)
			case int:
				setLayer(p, n, layer)
			case float64:
				setLayer(p, int(n), layer)
			}
		case *Property[bool]:
			if b, ok := value.(bool); ok {
				setLayer(p, b, layer)
			}
		case *Property[time.Duration]:
			// Durations are written in config.toml as a Go duration
			// string ("5s", "500ms"); a value that doesn't parse is
			// left at the previous layer rather than zeroing it out.
			if str, ok := value.(string); ok {
				if d, err := time.ParseDuration(str); err == nil {
					setLayer(p, d, layer)
				}
			}
		}
	}
}

func setLayer[T comparable](p *Property[T], v T, layer layerKind) {
	if layer == layerConfig {
		p.ApplyConfigLayer(v)
	} else {
		p.ApplyRuntimeLayer(v)
	}
}

// lookupPath resolves a dotted path ("general.log_format") against
// nested rawDoc tables produced by the TOML decoder.
func lookupPath(doc rawDoc, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = doc
	for _, part := range parts {
		table, ok := cur.(rawDoc)
		if !ok {
			return nil, false
		}
		v, ok := table[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}
