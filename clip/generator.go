package clip

import (
	"github.com/lixenwraith/animotion/clip/category"
	"github.com/lixenwraith/animotion/host"
)

// Category is the clip-category key a GeneratorBank indexes entries by.
type Category = category.Tag

// EffectFrequency controls when a generator's output is recomputed
// across repeated plays of the same clip (spec.md §6).
type EffectFrequency int

const (
	OnFirstPlayOnly EffectFrequency = iota
	EveryPlay
)

// KeyframesFn is generator shape 1: generateKeyframes(args) returning a
// forward frame set and an optional backward frame set.
type KeyframesFn func(c *Clip, args []any) (forward, backward []host.Keyframe)

// KeyframeGeneratorsFn is generator shape 2: generateKeyframeGenerators,
// deferred keyframe construction (used with computeNow == false).
type KeyframeGeneratorsFn func(c *Clip, args []any) (forward, backward func() []host.Keyframe)

// Mutator is a per-frame callback scheduled against the host's RAF-like
// tick, used when an effect cannot be expressed as keyframes.
type Mutator func(c *Clip, progress float64)

// RafMutatorsFn is generator shape 3: generateRafMutators.
type RafMutatorsFn func(c *Clip, args []any) (forward, backward Mutator)

// RafMutatorGeneratorsFn is generator shape 4: generateRafMutatorGenerators,
// deferred mutator construction.
type RafMutatorGeneratorsFn func(c *Clip, args []any) (forward, backward func() Mutator)

// GeneratorShape reports which of the four generator contracts a bank
// entry implements; probed in this order (spec.md §4.2).
type GeneratorShape int

const (
	ShapeKeyframes GeneratorShape = iota
	ShapeKeyframeGenerators
	ShapeRafMutators
	ShapeRafMutatorGenerators
)

// BankEntry is one generator-bank record: the effect function plus its
// optional config layers, merged per spec.md Design Note §9's
// precedence (lowest to highest): clip-class defaults → DefaultConfig →
// Config → author-supplied → ImmutableConfig.
type BankEntry struct {
	Shape GeneratorShape

	Keyframes         KeyframesFn
	KeyframeGenerator KeyframeGeneratorsFn
	RafMutators       RafMutatorsFn
	RafMutatorGens    RafMutatorGeneratorsFn

	Config          Config
	DefaultConfig   Config
	ImmutableConfig Config

	Frequency EffectFrequency
}

// GeneratorBank maps effect name to BankEntry, scoped per clip category.
// User-supplied entries merge over built-ins category by category
// (spec.md Design Note §9, "Effect bank extensibility").
type GeneratorBank struct {
	byCategory map[Category]map[string]BankEntry
}

// NewGeneratorBank creates an empty bank.
func NewGeneratorBank() *GeneratorBank {
	return &GeneratorBank{byCategory: make(map[Category]map[string]BankEntry)}
}

// Register adds or overwrites one effect entry for a category.
func (b *GeneratorBank) Register(cat Category, effect string, entry BankEntry) {
	m, ok := b.byCategory[cat]
	if !ok {
		m = make(map[string]BankEntry)
		b.byCategory[cat] = m
	}
	m[effect] = entry
}

// Merge overlays other's entries onto b, category by category, effect
// by effect — other wins on key collision. Used to layer a user bank
// over the built-in presets shipped with a deployment.
func (b *GeneratorBank) Merge(other *GeneratorBank) {
	for cat, effects := range other.byCategory {
		for name, entry := range effects {
			b.Register(cat, name, entry)
		}
	}
}

// Lookup finds the bank entry for (category, effect).
func (b *GeneratorBank) Lookup(cat Category, effect string) (BankEntry, bool) {
	m, ok := b.byCategory[cat]
	if !ok {
		return BankEntry{}, false
	}
	e, ok := m[effect]
	return e, ok
}

// ResolveConfig applies the merge precedence from Design Note §9 to
// produce a clip's effective Config: classDefaults, then
// entry.DefaultConfig, then entry.Config, then the author-supplied
// config, then entry.ImmutableConfig (which always wins).
func ResolveConfig(classDefaults Config, entry BankEntry, authored Config) Config {
	cfg := classDefaults
	cfg = cfg.overlay(entry.DefaultConfig)
	cfg = cfg.overlay(entry.Config)
	cfg = cfg.overlay(authored)
	cfg = cfg.overlay(entry.ImmutableConfig)
	return cfg
}
