//go:build js && wasm

package host

import (
	"fmt"
	"syscall/js"
	"time"
)

// jsAnimation wraps a browser Animation object returned by
// element.animate(keyframes, options). Go holds only a js.Value handle
// and the one finish-event callback it registers on it.
type jsAnimation struct {
	val        js.Value
	finishCb   js.Func
	onFinished []func()
}

func (a *jsAnimation) Play()  { a.val.Call("play") }
func (a *jsAnimation) Pause() { a.val.Call("pause") }
func (a *jsAnimation) Finish() {
	a.val.Call("finish")
}
func (a *jsAnimation) Cancel() { a.val.Call("cancel") }

func (a *jsAnimation) SetKeyframes(kf []Keyframe) {
	effect := a.val.Get("effect")
	if effect.IsUndefined() || effect.IsNull() {
		return
	}
	effect.Call("setKeyframes", keyframesToJS(kf))
}

func (a *jsAnimation) SetPlaybackRate(rate float64) {
	a.val.Set("playbackRate", rate)
}

func (a *jsAnimation) CurrentTime() time.Duration {
	ms := a.val.Get("currentTime")
	if ms.IsUndefined() || ms.IsNull() {
		return 0
	}
	return time.Duration(ms.Float() * float64(time.Millisecond))
}

func (a *jsAnimation) SetCurrentTime(t time.Duration) {
	a.val.Set("currentTime", float64(t)/float64(time.Millisecond))
}

func (a *jsAnimation) OnFinish(fn func()) {
	a.onFinished = append(a.onFinished, fn)
	if a.finishCb.Truthy() {
		return
	}
	a.finishCb = js.FuncOf(func(_ js.Value, _ []js.Value) any {
		for _, cb := range a.onFinished {
			cb()
		}
		return nil
	})
	a.val.Call("addEventListener", "finish", a.finishCb)
}

// jsElement wraps a DOM Element.
type jsElement struct {
	val js.Value
	tag string
}

// NewJSElement wraps an existing DOM element handle. Root's element
// resolution (spec.md §1, "each element is resolved once at
// construction") calls this once per clip target.
func NewJSElement(val js.Value) *jsElement {
	return &jsElement{val: val, tag: val.Get("outerHTML").String()}
}

func (e *jsElement) Animate(kf []Keyframe, timing Timing, composite Composite) Animation {
	opts := js.Global().Get("Object").New()
	opts.Set("delay", float64(timing.Delay)/float64(time.Millisecond))
	opts.Set("duration", float64(timing.Duration)/float64(time.Millisecond))
	opts.Set("endDelay", float64(timing.EndDelay)/float64(time.Millisecond))
	opts.Set("easing", orDefault(timing.Easing, "linear"))
	opts.Set("fill", "both")
	if timing.Direction != "" {
		opts.Set("direction", timing.Direction)
	}
	opts.Set("composite", compositeToJS(composite))

	val := e.val.Call("animate", keyframesToJS(kf), opts)
	if timing.PlaybackRate != 0 {
		val.Set("playbackRate", timing.PlaybackRate)
	}
	return &jsAnimation{val: val}
}

func (e *jsElement) AddClass(name string)    { e.val.Get("classList").Call("add", name) }
func (e *jsElement) RemoveClass(name string) { e.val.Get("classList").Call("remove", name) }
func (e *jsElement) HasClass(name string) bool {
	return e.val.Get("classList").Call("contains", name).Bool()
}

func (e *jsElement) CommitStyles() error {
	box := e.val.Call("getBoundingClientRect")
	if box.Get("width").Float() == 0 && box.Get("height").Float() == 0 && !e.isConnected() {
		return fmt.Errorf("host: element %s is not rendered", e.tag)
	}
	e.val.Call("commitStyles")
	return nil
}

func (e *jsElement) isConnected() bool {
	v := e.val.Get("isConnected")
	return !v.IsUndefined() && v.Bool()
}

func (e *jsElement) ComputedStyle(property string) string {
	style := js.Global().Get("getComputedStyle").Invoke(e.val)
	return style.Call("getPropertyValue", property).String()
}

func (e *jsElement) ClearInlineStyle(properties []string) {
	style := e.val.Get("style")
	for _, p := range properties {
		style.Call("removeProperty", p)
	}
}

func (e *jsElement) BoundingBox() (x, y, width, height float64) {
	box := e.val.Call("getBoundingClientRect")
	return box.Get("x").Float(), box.Get("y").Float(), box.Get("width").Float(), box.Get("height").Float()
}

func (e *jsElement) ScrollIntoView(opts ScrollOptions) {
	jsOpts := js.Global().Get("Object").New()
	jsOpts.Set("behavior", orDefault(opts.Behavior, "auto"))
	jsOpts.Set("block", orDefault(opts.Block, "start"))
	jsOpts.Set("inline", orDefault(opts.Inline, "nearest"))
	e.val.Call("scrollIntoView", jsOpts)
}

func (e *jsElement) OpeningTag() string { return e.tag }

func keyframesToJS(kf []Keyframe) js.Value {
	arr := js.Global().Get("Array").New(len(kf))
	for i, k := range kf {
		obj := js.Global().Get("Object").New()
		if k.Offset != nil {
			obj.Set("offset", *k.Offset)
		}
		if k.Easing != "" {
			obj.Set("easing", k.Easing)
		}
		for prop, val := range k.Properties {
			obj.Set(prop, val)
		}
		arr.SetIndex(i, obj)
	}
	return arr
}

func compositeToJS(c Composite) string {
	switch c {
	case CompositeAccumulate:
		return "accumulate"
	case CompositeAdd:
		return "add"
	default:
		return "replace"
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func init() {
	RegisterCustomProperties = func() {
		css := js.Global().Get("CSS")
		if css.IsUndefined() {
			return
		}
		for _, prop := range []string{"--a-marker-opacity", "--b-marker-opacity"} {
			opts := js.Global().Get("Object").New()
			opts.Set("name", prop)
			opts.Set("syntax", "'<number>'")
			opts.Set("inherits", true)
			opts.Set("initialValue", "1")
			css.Call("registerProperty", opts)
		}
	}
}

var _ Element = (*jsElement)(nil)
var _ Animation = (*jsAnimation)(nil)
