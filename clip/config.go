package clip

import (
	"time"

	"github.com/lixenwraith/animotion/clip/category"
	"github.com/lixenwraith/animotion/host"
)

// Config is a clip's author-facing configuration surface (spec.md §3
// "modifiers" plus timing and sequencing flags). Every field is a
// pointer so partial configs (bank DefaultConfig/Config/ImmutableConfig
// layers, spec.md Design Note §9) can be overlaid without clobbering
// fields the layer doesn't mention.
type Config struct {
	Delay        *time.Duration
	Duration     *time.Duration
	EndDelay     *time.Duration
	Easing       *string
	PlaybackRate *float64

	ClassesToAddOnStart    []string
	ClassesToAddOnFinish   []string
	ClassesToRemoveOnStart []string
	ClassesToRemoveOnFinish []string

	Composite              *host.Composite
	CommitsStyles          *bool
	CommitStylesForcefully *bool

	StartsWithPrevious *bool
	StartsNextClipToo  *bool

	ComputeNow *bool

	HideNowType                *category.HideType
	ExitHideType                *category.HideType
	RemoveInlineStylesOnFinish *bool
}

// overlay returns a copy of c with every non-nil field of o applied on
// top — the building block for ResolveConfig's precedence chain.
func (c Config) overlay(o Config) Config {
	if o.Delay != nil {
		c.Delay = o.Delay
	}
	if o.Duration != nil {
		c.Duration = o.Duration
	}
	if o.EndDelay != nil {
		c.EndDelay = o.EndDelay
	}
	if o.Easing != nil {
		c.Easing = o.Easing
	}
	if o.PlaybackRate != nil {
		c.PlaybackRate = o.PlaybackRate
	}
	if o.ClassesToAddOnStart != nil {
		c.ClassesToAddOnStart = o.ClassesToAddOnStart
	}
	if o.ClassesToAddOnFinish != nil {
		c.ClassesToAddOnFinish = o.ClassesToAddOnFinish
	}
	if o.ClassesToRemoveOnStart != nil {
		c.ClassesToRemoveOnStart = o.ClassesToRemoveOnStart
	}
	if o.ClassesToRemoveOnFinish != nil {
		c.ClassesToRemoveOnFinish = o.ClassesToRemoveOnFinish
	}
	if o.Composite != nil {
		c.Composite = o.Composite
	}
	if o.CommitsStyles != nil {
		c.CommitsStyles = o.CommitsStyles
	}
	if o.CommitStylesForcefully != nil {
		c.CommitStylesForcefully = o.CommitStylesForcefully
	}
	if o.StartsWithPrevious != nil {
		c.StartsWithPrevious = o.StartsWithPrevious
	}
	if o.StartsNextClipToo != nil {
		c.StartsNextClipToo = o.StartsNextClipToo
	}
	if o.ComputeNow != nil {
		c.ComputeNow = o.ComputeNow
	}
	if o.HideNowType != nil {
		c.HideNowType = o.HideNowType
	}
	if o.ExitHideType != nil {
		c.ExitHideType = o.ExitHideType
	}
	if o.RemoveInlineStylesOnFinish != nil {
		c.RemoveInlineStylesOnFinish = o.RemoveInlineStylesOnFinish
	}
	return c
}

func boolVal(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func durVal(p *time.Duration, def time.Duration) time.Duration {
	if p == nil {
		return def
	}
	return *p
}

func floatVal(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func strVal(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
