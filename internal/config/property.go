package config

import (
	"github.com/pozitronik/wayle/pkg/reactive"
)

// Property is a config-tree leaf: a three-slot layered value (compiled
// default, config-file layer, runtime-file layer) whose effective value
// is runtime, else config, else default. It embeds a
// reactive.Property[T] so UI/service code can Get/Watch it exactly like
// any other reactive primitive; Set, ApplyConfigLayer, ClearConfigLayer
// and ApplyRuntimeLayer only ever change which slot feeds that embedded
// property.
type Property[T comparable] struct {
	live *reactive.Property[T]

	def    T
	config *T
	rt     *T
}

// NewProperty creates a config leaf with the given compiled default.
func NewProperty[T comparable](def T) *Property[T] {
	return &Property[T]{
		live: reactive.New(def),
		def:  def,
	}
}

// Get returns the effective value: runtime if set, else config, else
// default.
func (p *Property[T]) Get() T {
	return p.live.Get()
}

// Watch subscribes to effective-value changes.
func (p *Property[T]) Watch() (<-chan T, func()) {
	return p.live.Watch()
}

// Set writes the runtime layer (the only layer user/GUI code may write
// to directly) and republishes if the effective value changed.
func (p *Property[T]) Set(v T) {
	p.rt = &v
	p.recompute()
}

// ApplyConfigLayer assigns the config-file layer, matching
// apply_config_layer's per-path assignment in the loader's walk over
// the parsed tree.
func (p *Property[T]) ApplyConfigLayer(v T) {
	p.config = &v
	p.recompute()
}

// ClearConfigLayer removes the config-file layer, e.g. when a key
// disappears from config.toml on reload.
func (p *Property[T]) ClearConfigLayer() {
	p.config = nil
	p.recompute()
}

// ApplyRuntimeLayer assigns the runtime-file layer, used when
// runtime.toml is parsed back in (as opposed to Set, which is the
// live in-process write path).
func (p *Property[T]) ApplyRuntimeLayer(v T) {
	p.rt = &v
	p.recompute()
}

// HasRuntimeLayer reports whether a runtime override exists, so the
// persistence writer can skip leaves with nothing to persist.
func (p *Property[T]) HasRuntimeLayer() bool {
	return p.rt != nil
}

func (p *Property[T]) recompute() {
	switch {
	case p.rt != nil:
		p.live.Set(*p.rt)
	case p.config != nil:
		p.live.Set(*p.config)
	default:
		p.live.Set(p.def)
	}
}
