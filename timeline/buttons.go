package timeline

import (
	"context"
	"log"
)

// ButtonAction identifies one of the five playback-button purposes
// (spec.md §6 "Playback-button contract").
type ButtonAction int

const (
	ActionStepForward ButtonAction = iota
	ActionStepBackward
	ActionPause
	ActionFastForward
	ActionToggleSkipping
)

// ButtonElement is the small DOM-button-like adapter a host UI
// framework implements so Timeline can bind playback behavior without
// depending on any specific UI framework (spec.md §6, out of scope per
// §1 "Custom HTML element widgets").
type ButtonElement interface {
	Action() ButtonAction
	TimelineName() string
	Activate(fn func())
	Deactivate(fn func())
	StyleActivation()
	StyleDeactivation()
}

// ButtonBinding records the currently bound button per purpose
// (spec.md §6 "playbackButtons").
type ButtonBinding struct {
	ForwardButton        ButtonElement
	BackwardButton       ButtonElement
	PauseButton          ButtonElement
	FastForwardButton    ButtonElement
	ToggleSkippingButton ButtonElement
}

type bindings struct {
	ButtonBinding
}

// LinkPlaybackButtons matches candidates against this timeline's name
// and assigns each the appropriate activate/deactivate behavior,
// tracking the result in PlaybackButtons(). Locating candidate buttons
// in the DOM (searchRoot/buttonsSubset) is the host UI's job — out of
// scope here per spec.md §1; this takes the already-located set.
// Missing purposes are logged as a warning (spec.md §6, §7
// "Warnings").
func (t *Timeline) LinkPlaybackButtons(candidates []ButtonElement) ButtonBinding {
	t.mu.Lock()
	name := t.cfg.TimelineName
	t.mu.Unlock()

	b := &bindings{}
	var missing []string
	assign := func(purpose string, slot *ButtonElement, action ButtonAction) {
		for _, c := range candidates {
			if c.TimelineName() != name || c.Action() != action {
				continue
			}
			*slot = c
			return
		}
		missing = append(missing, purpose)
	}

	assign("step-forward", &b.ForwardButton, ActionStepForward)
	assign("step-backward", &b.BackwardButton, ActionStepBackward)
	assign("pause", &b.PauseButton, ActionPause)
	assign("fast-forward", &b.FastForwardButton, ActionFastForward)
	assign("toggle-skipping", &b.ToggleSkippingButton, ActionToggleSkipping)

	t.wireButton(b.ForwardButton, func() { _ = t.Step(context.Background(), DirectionForward) })
	t.wireButton(b.BackwardButton, func() { _ = t.Step(context.Background(), DirectionBackward) })
	t.wireButton(b.PauseButton, t.togglePause)
	t.wireFastForward(b.FastForwardButton)
	t.wireButton(b.ToggleSkippingButton, t.ToggleSkipping)

	t.mu.Lock()
	t.buttons = b
	t.mu.Unlock()

	if len(missing) > 0 {
		log.Printf("timeline %q: linkPlaybackButtons missing buttons for: %v", name, missing)
	}
	return b.ButtonBinding
}

func (t *Timeline) wireButton(btn ButtonElement, fn func()) {
	if btn == nil {
		return
	}
	btn.Activate(func() {
		fn()
		btn.StyleActivation()
	})
}

// wireFastForward maps activation to setPlaybackRate(7) and
// deactivation to setPlaybackRate(1), per spec.md §6.
func (t *Timeline) wireFastForward(btn ButtonElement) {
	if btn == nil {
		return
	}
	btn.Activate(func() {
		t.SetPlaybackRate(7)
		btn.StyleActivation()
	})
	btn.Deactivate(func() {
		t.SetPlaybackRate(1)
		btn.StyleDeactivation()
	})
}

func (t *Timeline) togglePause() {
	if t.IsPaused() {
		_ = t.Unpause()
	} else {
		_ = t.Pause()
	}
}

// PlaybackButtons returns the currently bound buttons, or a zero value
// if LinkPlaybackButtons has not been called.
func (t *Timeline) PlaybackButtons() ButtonBinding {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.buttons == nil {
		return ButtonBinding{}
	}
	return t.buttons.ButtonBinding
}
