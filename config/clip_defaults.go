package config

import "github.com/lixenwraith/animotion/clip"

// ToClipConfig converts the YAML-facing ClipDefaults into a clip.Config
// layer suitable for animotion.Config.ClassDefaults — the lowest
// precedence layer in clip.ResolveConfig's chain.
func (d ClipDefaults) ToClipConfig() clip.Config {
	var cfg clip.Config
	if d.DelayMS != nil {
		v := d.Delay(0)
		cfg.Delay = &v
	}
	if d.DurationMS != nil {
		v := d.Duration(0)
		cfg.Duration = &v
	}
	if d.EndDelayMS != nil {
		v := d.EndDelay(0)
		cfg.EndDelay = &v
	}
	if d.Easing != nil {
		cfg.Easing = d.Easing
	}
	if d.PlaybackRate != nil {
		cfg.PlaybackRate = d.PlaybackRate
	}
	if d.CommitsStyles != nil {
		cfg.CommitsStyles = d.CommitsStyles
	}
	return cfg
}
